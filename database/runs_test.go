package database

import (
	"context"
	"testing"

	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun(runID string) *model.Run {
	userName := "tester"
	return &model.Run{
		RunID:                runID,
		ExtractionPipelineID: "pipeline-1",
		ModelID:              "model-1",
		UserName:             &userName,
		Metadata:             model.Metadata{"workers": 2},
		Results: []model.ParagraphResult{
			{
				Text: model.Paragraph{
					PreprocessorID: "pre-1",
					PaperID:        "paper-1",
					HashedText:     "hash-1",
					WeaviateID:     "weaviate-1",
					Text:           "The Mount Galen Volcanics consists of basalt – andesite",
				},
				Relationships: []model.Relationship{
					{Src: "mount galen volcanics", RelationshipType: model.RelationStratToLith, Dst: "basalt"},
				},
				JustEntities: []model.JustEntity{},
			},
		},
	}
}

func TestRunsNewRunsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewRunsDBHandler", func(t *testing.T) {
		runsDbHandler, err := NewRunsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewRunsDBHandler to not return an error")
		require.NotNil(t, runsDbHandler, "Expected NewRunsDBHandler to return a non-nil instance")
	})

	t.Run("Invalid call NewRunsDBHandler with nil database", func(t *testing.T) {
		_, err := NewRunsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating RunsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestRunsInsert(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	runsDbHandler, err := NewRunsDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Insert and select run", func(t *testing.T) {
		run := newTestRun("run-insert")
		err := runsDbHandler.InsertRun(ctx, run)
		assert.NoError(t, err, "Expected InsertRun to not return an error")
		assert.NotEmpty(t, run.ID)
		defer runsDbHandler.DeleteRun(run.RunID)

		stored, err := runsDbHandler.SelectRun("run-insert")
		require.NoError(t, err)
		assert.Equal(t, run.ID, stored.ID)
		require.NotNil(t, stored.UserName)
		assert.Equal(t, "tester", *stored.UserName)
		require.Len(t, stored.Results, 1)
		assert.Equal(t, run.Results[0].Relationships, stored.Results[0].Relationships)
		assert.Equal(t, "The Mount Galen Volcanics consists of basalt  andesite", stored.Results[0].Text.Text, "Expected paragraph text to be stored as ASCII")
	})

	t.Run("Invalid run is rejected before writing", func(t *testing.T) {
		run := newTestRun("run-invalid")
		run.Results[0].Text.WeaviateID = ""

		err := runsDbHandler.InsertRun(ctx, run)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "weaviate_id")

		_, err = runsDbHandler.SelectRun("run-invalid")
		assert.Error(t, err, "Expected nothing to be stored")
	})

	t.Run("Duplicate run id is rejected", func(t *testing.T) {
		run := newTestRun("run-duplicate")
		require.NoError(t, runsDbHandler.InsertRun(ctx, run))
		defer runsDbHandler.DeleteRun(run.RunID)

		err := runsDbHandler.InsertRun(ctx, newTestRun("run-duplicate"))
		assert.Error(t, err)
	})
}
