package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// indexStatement builds the CREATE INDEX statement for the entity
// embedding index. Zero parameters fall back to the pgvector defaults.
func indexStatement(config model.IndexConfig) (string, error) {
	switch config.Type {
	case model.IndexHNSW:
		m, ef := config.M, config.EfConstruction
		if m <= 0 {
			m = 16
		}
		if ef <= 0 {
			ef = 64
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_entities_embedding ON entities USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, ef,
		), nil
	case model.IndexIVFFlat:
		lists := config.Lists
		if lists <= 0 {
			lists = 100
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_entities_embedding ON entities USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		), nil
	default:
		return "", fmt.Errorf("unsupported index type %q", config.Type)
	}
}

// RebuildIndex replaces the entity embedding index with the configured one.
// Drop and create run in one transaction.
func (h *EntitiesDBHandler) RebuildIndex(ctx context.Context, config model.IndexConfig) error {
	statement, err := indexStatement(config)
	if err != nil {
		return helper.NewError("rebuild entity index", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin index rebuild", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_entities_embedding;`); err != nil {
		return helper.NewError("drop entity index", err)
	}
	if _, err := tx.ExecContext(ctx, statement); err != nil {
		return helper.NewError("create entity index", err)
	}
	if err := tx.Commit(); err != nil {
		return helper.NewError("commit index rebuild", err)
	}

	h.db.Logger.Info("Rebuilt entity embedding index", "type", config.Type)
	return nil
}

// IndexMethod returns the access method of the entity embedding index
func (h *EntitiesDBHandler) IndexMethod(ctx context.Context) (string, error) {
	var method string
	err := h.db.Instance.QueryRowContext(ctx,
		`SELECT am.amname FROM pg_class c JOIN pg_am am ON am.oid = c.relam WHERE c.relname = 'idx_entities_embedding';`,
	).Scan(&method)
	if err != nil {
		return "", helper.NewError("select entity index method", err)
	}
	return method, nil
}
