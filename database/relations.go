package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	loadSql "github.com/sarda-devesh/unsupervised-kg/sql"
)

// RelationsDBHandlerFunctions defines the interface for Relations database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(ctx context.Context, relation *model.Relation, runID *string) error
	SelectRelation(key model.RelationKey) (*model.Relation, error)
	SelectAllRelations(limit int) ([]*model.Relation, error)
	RelationsOf(ctx context.Context, entity string, relationTypes []string) ([]*model.Relation, error)
	DeleteRelation(id uuid.UUID) error
}

// RelationsDBHandler handles relation-related database operations
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// It initializes the database connection and loads relation-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' and 'relation_sources' tables in the database.
// If the tables already exist, it does not create them again.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		log.Panicf("error initializing relations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables relations, relation_sources")

	return nil
}

// InsertRelation upserts the relation by (head, type, tail) and appends all
// of its snippets to relation_sources in one transaction. Stored details of an
// existing relation are kept and copied back into relation.
func (h *RelationsDBHandler) InsertRelation(ctx context.Context, relation *model.Relation, runID *string) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(
		ctx,
		`SELECT * FROM insert_relation($1, $2, $3, $4, $5, $6)`,
		relation.Head,
		relation.Type,
		relation.Tail,
		relation.HumanType,
		relation.SrcType,
		relation.DstType,
	)
	err = scanRelation(row, relation)
	if err != nil {
		return helper.NewError("scan", err)
	}

	if relation.Sources != nil {
		for pair := relation.Sources.Oldest(); pair != nil; pair = pair.Next() {
			for _, snippet := range pair.Value {
				_, err = tx.ExecContext(
					ctx,
					`SELECT insert_relation_source($1, $2, $3, $4)`,
					relation.ID,
					pair.Key,
					snippet,
					runID,
				)
				if err != nil {
					return helper.NewError("insert relation source", err)
				}
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectRelation retrieves a relation with all stored snippets
func (h *RelationsDBHandler) SelectRelation(key model.RelationKey) (*model.Relation, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_relation($1, $2, $3)`,
		key.Head,
		key.Type,
		key.Tail,
	)

	relation := model.NewRelation("", "", "", model.RelationDetails{})
	err := scanRelation(row, relation)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	err = h.selectSources(relation)
	if err != nil {
		return nil, err
	}

	return relation, nil
}

// SelectAllRelations retrieves up to limit relations in insertion order
func (h *RelationsDBHandler) SelectAllRelations(limit int) ([]*model.Relation, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_relations($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return h.collectRelations(rows)
}

// RelationsOf retrieves the relations with entity as head or tail. If
// relationTypes is empty all types are returned.
func (h *RelationsDBHandler) RelationsOf(ctx context.Context, entity string, relationTypes []string) ([]*model.Relation, error) {
	var types interface{}
	if len(relationTypes) > 0 {
		types = pq.Array(relationTypes)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_of_entity($1, $2)`,
		entity,
		types,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return h.collectRelations(rows)
}

// DeleteRelation deletes a relation and its sources by ID
func (h *RelationsDBHandler) DeleteRelation(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// collectRelations scans and closes rows, then loads the sources of each relation
func (h *RelationsDBHandler) collectRelations(rows *sql.Rows) ([]*model.Relation, error) {
	var relations []*model.Relation
	for rows.Next() {
		relation := model.NewRelation("", "", "", model.RelationDetails{})
		err := scanRelation(rows, relation)
		if err != nil {
			rows.Close()
			return nil, helper.NewError("scan", err)
		}

		relations = append(relations, relation)
	}

	err := rows.Err()
	rows.Close()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	for _, relation := range relations {
		err = h.selectSources(relation)
		if err != nil {
			return nil, err
		}
	}

	return relations, nil
}

func (h *RelationsDBHandler) selectSources(relation *model.Relation) error {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relation_sources($1)`,
		relation.ID,
	)
	if err != nil {
		return helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID, snippet string
		err := rows.Scan(&articleID, &snippet)
		if err != nil {
			return helper.NewError("scan", err)
		}
		relation.AddSource(articleID, snippet)
	}

	err = rows.Err()
	if err != nil {
		return helper.NewError("rows error", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRelation(row rowScanner, relation *model.Relation) error {
	return row.Scan(
		&relation.ID,
		&relation.Head,
		&relation.Type,
		&relation.Tail,
		&relation.HumanType,
		&relation.SrcType,
		&relation.DstType,
	)
}
