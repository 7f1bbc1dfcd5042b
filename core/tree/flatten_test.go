package tree

import (
	"testing"

	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	paragraph := model.Paragraph{PaperID: "paper-1"}

	t.Run("Strat names own their lithologies", func(t *testing.T) {
		ex := newExtraction("the mount galen volcanics consists of basalt andesite dacite and rhyolite")
		ex.AddRoot("strat_name", model.Span{Start: 1, End: 4})
		for _, i := range []int{6, 7, 8, 10} {
			ex.AddRoot("lith", model.Span{Start: i, End: i + 1})
		}
		forest, err := NewMerger(DefaultHierarchy(), constantScorer(0.9, nil)).Merge(ex)
		require.NoError(t, err)

		result, err := Flatten(ex, forest, DefaultHierarchy(), paragraph)
		require.NoError(t, err)

		assert.Equal(t, paragraph, result.Text)
		require.Len(t, result.Relationships, 4)
		var dsts []string
		for _, rel := range result.Relationships {
			assert.Equal(t, "mount galen volcanics", rel.Src)
			assert.Equal(t, model.RelationStratToLith, rel.RelationshipType)
			dsts = append(dsts, rel.Dst)
		}
		assert.Equal(t, []string{"basalt", "andesite", "dacite", "rhyolite"}, dsts)
		assert.Empty(t, result.JustEntities)
	})

	t.Run("Attributes below lithologies", func(t *testing.T) {
		ex := newExtraction("alpha formation red sandstone")
		strat := ex.AddRoot("strat_name", model.Span{Start: 0, End: 2})
		head := ex.AddRoot("lith_NOUN", model.Span{Start: 3, End: 4})
		modifier := ex.AddRoot("att_amod", model.Span{Start: 2, End: 3})
		require.True(t, ex.Attach(head, modifier, nil))
		p := 0.8
		require.True(t, ex.Attach(strat, head, &p))

		result, err := Flatten(ex, []model.TermID{strat}, DefaultHierarchy(), paragraph)
		require.NoError(t, err)
		assert.Equal(t, []model.Relationship{
			{Src: "alpha formation", RelationshipType: model.RelationStratToLith, Dst: "sandstone"},
			{Src: "sandstone", RelationshipType: model.RelationAttOfLith, Dst: "red"},
		}, result.Relationships)
	})

	t.Run("Attribute parents emit nothing", func(t *testing.T) {
		ex := newExtraction("coarse grained")
		parent := ex.AddRoot("att_grains", model.Span{Start: 0, End: 1})
		child := ex.AddRoot("att_amod", model.Span{Start: 1, End: 2})
		require.True(t, ex.Attach(parent, child, nil))

		result, err := Flatten(ex, []model.TermID{parent}, DefaultHierarchy(), paragraph)
		require.NoError(t, err)
		assert.Empty(t, result.Relationships)
	})

	t.Run("Childless strat terms are just entities", func(t *testing.T) {
		ex := newExtraction("alpha formation Hayhook")
		ex.AddRoot("strat_name", model.Span{Start: 0, End: 2})
		ex.AddRoot("proper_noun", model.Span{Start: 2, End: 3})
		h := NewHierarchy(model.HierarchyConfig{
			Prefixes: []string{"strat", "lith", "att"},
			Aliases:  map[string]string{"proper_noun": "strat"},
		})

		forest, err := NewMerger(h, constantScorer(0.5, nil)).Merge(ex)
		require.NoError(t, err)
		require.Len(t, forest, 2)

		result, err := Flatten(ex, forest, h, paragraph)
		require.NoError(t, err)
		assert.Empty(t, result.Relationships)
		assert.Equal(t, []model.JustEntity{{Entity: "alpha formation", EntityType: "strat_name"}}, result.JustEntities)
	})

	t.Run("Lith only paragraphs produce nothing", func(t *testing.T) {
		ex := newExtraction("basalt andesite")
		ex.AddRoot("lith", model.Span{Start: 0, End: 1})
		ex.AddRoot("lith", model.Span{Start: 1, End: 2})

		forest, err := NewMerger(DefaultHierarchy(), constantScorer(0.5, nil)).Merge(ex)
		require.NoError(t, err)
		result, err := Flatten(ex, forest, DefaultHierarchy(), paragraph)
		require.NoError(t, err)
		assert.NotNil(t, result.Relationships)
		assert.Empty(t, result.Relationships)
		assert.NotNil(t, result.JustEntities)
		assert.Empty(t, result.JustEntities)
	})
}
