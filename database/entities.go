package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	loadSql "github.com/sarda-devesh/unsupervised-kg/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.Entity) error
	UpdateEntityExternalID(id uuid.UUID, externalID *string) error
	DeleteEntity(id uuid.UUID) error
	SelectEntity(id uuid.UUID) (*model.Entity, error)
	SelectEntityByName(name string, entityType string) (*model.Entity, error)
	SelectEntitiesByType(entityType string, limit int) ([]*model.Entity, error)
	SelectEntitiesBySimilarity(embedding []float32, entityType *string, limit int) ([]*model.EntityMatch, error)
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, embeddingDim int, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim < 1 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables, triggers, and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities($1);`, h.embeddingDim)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts a new entity. An existing entity with the same name
// and type keeps its id and takes over the non-empty fields.
func (h *EntitiesDBHandler) InsertEntity(entity *model.Entity) error {
	embedding, err := h.embeddingParam(entity.Embedding)
	if err != nil {
		return err
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5)`,
		entity.Name,
		entity.Type,
		entity.ExternalID,
		embedding,
		entity.Metadata,
	)

	err = row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.ExternalID,
		pq.Array(&entity.Embedding),
		&entity.Metadata,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// UpdateEntityExternalID sets or clears the external id of an entity
func (h *EntitiesDBHandler) UpdateEntityExternalID(id uuid.UUID, externalID *string) error {
	_, err := h.db.Instance.Exec(
		`SELECT update_entity_external_id($1, $2)`,
		id,
		externalID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntity retrieves an entity by ID
func (h *EntitiesDBHandler) SelectEntity(id uuid.UUID) (*model.Entity, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		id,
	)

	entity := &model.Entity{}
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.ExternalID,
		pq.Array(&entity.Embedding),
		&entity.Metadata,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by name and type
func (h *EntitiesDBHandler) SelectEntityByName(name string, entityType string) (*model.Entity, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_name($1, $2)`,
		name,
		entityType,
	)

	entity := &model.Entity{}
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.ExternalID,
		pq.Array(&entity.Embedding),
		&entity.Metadata,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByType retrieves entities by type ordered by name
func (h *EntitiesDBHandler) SelectEntitiesByType(entityType string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_type($1, $2)`,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.Type,
			&entity.ExternalID,
			pq.Array(&entity.Embedding),
			&entity.Metadata,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// SelectEntitiesBySimilarity returns the entities closest to embedding by
// cosine distance. If entityType is nil, all types are searched.
func (h *EntitiesDBHandler) SelectEntitiesBySimilarity(embedding []float32, entityType *string, limit int) ([]*model.EntityMatch, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("embedding validation", fmt.Errorf("embedding is empty"))
	}
	embeddingVector, err := h.embeddingParam(embedding)
	if err != nil {
		return nil, err
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_similarity($1, $2, $3)`,
		embeddingVector,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var matches []*model.EntityMatch
	for rows.Next() {
		match := &model.EntityMatch{Entity: &model.Entity{}}
		err := rows.Scan(
			&match.Entity.ID,
			&match.Entity.Name,
			&match.Entity.Type,
			&match.Entity.ExternalID,
			pq.Array(&match.Entity.Embedding),
			&match.Entity.Metadata,
			&match.Entity.CreatedAt,
			&match.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		matches = append(matches, match)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return matches, nil
}

// embeddingParam converts an embedding to a query parameter. Missing
// embeddings are stored as NULL.
func (h *EntitiesDBHandler) embeddingParam(embedding []float32) (interface{}, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if len(embedding) != h.embeddingDim {
		return nil, helper.NewError("embedding validation", fmt.Errorf("expected %d dimensions, got %d", h.embeddingDim, len(embedding)))
	}
	return pgvector.NewVector(embedding), nil
}
