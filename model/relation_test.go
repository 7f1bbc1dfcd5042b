package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationSources(t *testing.T) {
	details := DefaultRelationCatalog()[RelationStratToLith]

	t.Run("Snippets are appended per article in first-seen order", func(t *testing.T) {
		r := NewRelation("mount galen volcanics", RelationStratToLith, "basalt", details)
		r.AddSource("paper-b", "first")
		r.AddSource("paper-a", "second")
		r.AddSource("paper-b", "first")

		record := r.Record()
		require.Len(t, record.Sources, 2)
		assert.Equal(t, "paper-b", record.Sources[0].ArticleID)
		assert.Equal(t, []string{"first", "first"}, record.Sources[0].TxtUsed, "Expected duplicate snippets to be kept")
		assert.Equal(t, "paper-a", record.Sources[1].ArticleID)
		assert.Equal(t, 3, r.SnippetCount())
	})

	t.Run("Clone does not share snippet slices", func(t *testing.T) {
		r := NewRelation("a", RelationStratToLith, "b", details)
		r.AddSource("paper", "one")

		c := r.Clone()
		c.AddSource("paper", "two")

		assert.Equal(t, 1, r.SnippetCount())
		assert.Equal(t, 2, c.SnippetCount())
	})

	t.Run("Record round trips through RelationFromRecord", func(t *testing.T) {
		r := NewRelation("a", RelationStratToLith, "b", details)
		r.AddSource("paper", "one", "two")

		back := RelationFromRecord(r.Record())

		assert.Equal(t, r.Key(), back.Key())
		assert.Equal(t, r.Record(), back.Record())
	})

	t.Run("Record carries catalog details", func(t *testing.T) {
		record := NewRelation("a", RelationStratToLith, "b", details).Record()
		assert.Equal(t, "strat has lithology", record.HumanType)
		assert.Equal(t, "strat_name", record.SrcType)
		assert.Equal(t, "lith", record.DstType)
		assert.NotNil(t, record.Sources, "Expected empty sources to export as an empty list")
	})
}
