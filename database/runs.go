package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	loadSql "github.com/sarda-devesh/unsupervised-kg/sql"
)

// RunsDBHandlerFunctions defines the interface for Runs database operations.
type RunsDBHandlerFunctions interface {
	InsertRun(ctx context.Context, run *model.Run) error
	SelectRun(runID string) (*model.Run, error)
	DeleteRun(runID string) error
}

// RunsDBHandler handles run-related database operations
type RunsDBHandler struct {
	db *helper.Database
}

// NewRunsDBHandler creates a new runs database handler.
// It initializes the database connection and loads run-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRunsDBHandler(db *helper.Database, force bool) (*RunsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	runsDbHandler := &RunsDBHandler{
		db: db,
	}

	err := loadSql.LoadRunsSql(runsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load runs sql", err)
	}

	err = runsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RunsDBHandler")

	return runsDbHandler, nil
}

// CreateTable creates the 'runs' and 'run_sources' tables in the database.
// If the tables already exist, it does not create them again.
func (h *RunsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_runs();`)
	if err != nil {
		log.Panicf("error initializing runs table: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables runs, run_sources")

	return nil
}

// InsertRun validates the run and stores it with one run_sources row per
// result in a single transaction. Paragraph text is stored as ASCII.
func (h *RunsDBHandler) InsertRun(ctx context.Context, run *model.Run) error {
	err := run.Validate()
	if err != nil {
		return helper.NewError("run validation", err)
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(
		ctx,
		`SELECT * FROM insert_run($1, $2, $3, $4, $5)`,
		run.RunID,
		run.ExtractionPipelineID,
		run.ModelID,
		run.UserName,
		run.Metadata,
	)
	err = row.Scan(
		&run.ID,
		&run.RunID,
		&run.ExtractionPipelineID,
		&run.ModelID,
		&run.UserName,
		&run.Metadata,
		&run.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	for _, result := range run.Results {
		relationships, err := json.Marshal(result.Relationships)
		if err != nil {
			return helper.NewError("marshal relationships", err)
		}
		justEntities, err := json.Marshal(result.JustEntities)
		if err != nil {
			return helper.NewError("marshal just entities", err)
		}

		text := result.Text
		_, err = tx.ExecContext(
			ctx,
			`SELECT insert_run_source($1, $2, $3, $4, $5, $6, $7, $8)`,
			run.ID,
			text.PreprocessorID,
			text.PaperID,
			text.HashedText,
			text.WeaviateID,
			helper.ToASCII(text.Text),
			string(relationships),
			string(justEntities),
		)
		if err != nil {
			return helper.NewError("insert run source", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectRun retrieves a run with its results in insertion order
func (h *RunsDBHandler) SelectRun(runID string) (*model.Run, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_run($1)`,
		runID,
	)

	run := &model.Run{}
	err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.ExtractionPipelineID,
		&run.ModelID,
		&run.UserName,
		&run.Metadata,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_run_sources($1)`,
		run.ID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result model.ParagraphResult
		var relationships, justEntities []byte
		err := rows.Scan(
			&result.Text.PreprocessorID,
			&result.Text.PaperID,
			&result.Text.HashedText,
			&result.Text.WeaviateID,
			&result.Text.Text,
			&relationships,
			&justEntities,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		err = json.Unmarshal(relationships, &result.Relationships)
		if err != nil {
			return nil, helper.NewError("unmarshal relationships", err)
		}
		err = json.Unmarshal(justEntities, &result.JustEntities)
		if err != nil {
			return nil, helper.NewError("unmarshal just entities", err)
		}

		run.Results = append(run.Results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return run, nil
}

// DeleteRun deletes a run and its results
func (h *RunsDBHandler) DeleteRun(runID string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_run($1)`,
		runID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
