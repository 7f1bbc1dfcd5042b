package database

import (
	"context"
	"testing"

	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelation(head, relType, tail, articleID string, snippets ...string) *model.Relation {
	details, _ := model.DefaultRelationCatalog().Lookup(relType)
	r := model.NewRelation(head, relType, tail, details)
	r.AddSource(articleID, snippets...)
	return r
}

func TestRelationsNewRelationsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewRelationsDBHandler", func(t *testing.T) {
		relationsDbHandler, err := NewRelationsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewRelationsDBHandler to not return an error")
		require.NotNil(t, relationsDbHandler, "Expected NewRelationsDBHandler to return a non-nil instance")
		require.NotNil(t, relationsDbHandler.db, "Expected NewRelationsDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewRelationsDBHandler with nil database", func(t *testing.T) {
		_, err := NewRelationsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating RelationsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestRelationsInsert(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	relationsDbHandler, err := NewRelationsDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Insert relation with sources", func(t *testing.T) {
		relation := newTestRelation("insert volcanics", model.RelationStratToLith, "basalt", "paper-1", "first", "second")
		runID := "run-insert"

		err := relationsDbHandler.InsertRelation(ctx, relation, &runID)
		assert.NoError(t, err, "Expected InsertRelation to not return an error")
		assert.NotEmpty(t, relation.ID, "Expected inserted relation to have an ID")

		stored, err := relationsDbHandler.SelectRelation(relation.Key())
		require.NoError(t, err)
		assert.Equal(t, relation.ID, stored.ID)
		assert.Equal(t, "strat has lithology", stored.HumanType)
		assert.Equal(t, relation.Record().Sources, stored.Record().Sources)

		relationsDbHandler.DeleteRelation(relation.ID)
	})

	t.Run("Inserting the same key appends sources", func(t *testing.T) {
		first := newTestRelation("append volcanics", model.RelationStratToLith, "dacite", "paper-1", "a")
		require.NoError(t, relationsDbHandler.InsertRelation(ctx, first, nil))

		second := newTestRelation("append volcanics", model.RelationStratToLith, "dacite", "paper-2", "b")
		second.HumanType = "changed"
		require.NoError(t, relationsDbHandler.InsertRelation(ctx, second, nil))

		assert.Equal(t, first.ID, second.ID, "Expected the upsert to keep the id")
		assert.Equal(t, "strat has lithology", second.HumanType, "Expected stored details to win")

		stored, err := relationsDbHandler.SelectRelation(first.Key())
		require.NoError(t, err)
		assert.Equal(t, []model.SourceRecord{
			{ArticleID: "paper-1", TxtUsed: []string{"a"}},
			{ArticleID: "paper-2", TxtUsed: []string{"b"}},
		}, stored.Record().Sources)

		relationsDbHandler.DeleteRelation(first.ID)
	})

	t.Run("Select missing relation", func(t *testing.T) {
		_, err := relationsDbHandler.SelectRelation(model.RelationKey{Head: "missing", Type: "none", Tail: "missing"})
		assert.Error(t, err)
	})
}

func TestRelationsOf(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	relationsDbHandler, err := NewRelationsDBHandler(database, true)
	require.NoError(t, err)

	relations := []*model.Relation{
		newTestRelation("lookup formation", model.RelationStratToLith, "lookup sandstone", "paper-1", "a"),
		newTestRelation("lookup sandstone", model.RelationAttOfLith, "lookup red", "paper-1", "a"),
		newTestRelation("lookup formation", model.RelationStratToLith, "lookup shale", "paper-1", "b"),
	}
	for _, relation := range relations {
		require.NoError(t, relationsDbHandler.InsertRelation(ctx, relation, nil))
		defer relationsDbHandler.DeleteRelation(relation.ID)
	}

	t.Run("Relations of an entity in insertion order", func(t *testing.T) {
		found, err := relationsDbHandler.RelationsOf(ctx, "lookup sandstone", nil)
		assert.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "lookup formation", found[0].Head)
		assert.Equal(t, "lookup red", found[1].Tail)
		assert.Equal(t, 1, found[0].SnippetCount(), "Expected sources to be loaded")
	})

	t.Run("Relations of an entity filtered by type", func(t *testing.T) {
		found, err := relationsDbHandler.RelationsOf(ctx, "lookup sandstone", []string{model.RelationAttOfLith})
		assert.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, model.RelationAttOfLith, found[0].Type)
	})

	t.Run("Select all relations", func(t *testing.T) {
		all, err := relationsDbHandler.SelectAllRelations(1000)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 3)
	})
}
