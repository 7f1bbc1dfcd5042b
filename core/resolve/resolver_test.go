package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	matches   []*model.EntityMatch
	err       error
	gotType   string
	callCount int
}

func (m *mockStore) SelectEntitiesBySimilarity(embedding []float32, entityType *string, limit int) ([]*model.EntityMatch, error) {
	m.callCount++
	if entityType != nil {
		m.gotType = *entityType
	}
	return m.matches, m.err
}

func fixedEmbedder(text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func stringPtr(s string) *string {
	return &s
}

func TestCategory(t *testing.T) {
	tests := []struct {
		entityType string
		category   string
	}{
		{"strat_name", CategoryStratName},
		{"proper_noun", CategoryStratName},
		{"lith", CategoryLith},
		{"lith_NOUN", CategoryLith},
		{"lithology", CategoryLith},
		{"lith_att", CategoryLithAtt},
		{"att_amod", CategoryLithAtt},
		{"lith attribute color", CategoryLithAtt},
	}
	for _, tt := range tests {
		category, ok := Category(tt.entityType)
		assert.True(t, ok, "Expected %q to have a category", tt.entityType)
		assert.Equal(t, tt.category, category, "Expected category of %q", tt.entityType)
	}

	_, ok := Category("mineral")
	assert.False(t, ok)
}

func TestLoadIDMap(t *testing.T) {
	dir := t.TempDir()

	t.Run("Numeric and string ids", func(t *testing.T) {
		path := filepath.Join(dir, "lith_id_map.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"basalt": 12, "Andesite": "A-3"}`), 0o600))

		m, err := LoadIDMap(path)
		require.NoError(t, err)
		assert.Equal(t, IDMap{"basalt": "12", "Andesite": "A-3"}, m)
	})

	t.Run("Invalid id type", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"basalt": [1]}`), 0o600))

		_, err := LoadIDMap(path)
		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadIDMap(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("Resolver from config skips empty paths", func(t *testing.T) {
		path := filepath.Join(dir, "strat_names_map.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"mount galen volcanics": 9001}`), 0o600))

		resolver, err := LoadResolver(model.IDMapsConfig{StratNames: path})
		require.NoError(t, err)

		resolution, ok, err := resolver.Resolve(context.Background(), "Mount Galen Volcanics", "strat_name")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "9001", resolution.ExternalID)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	maps := map[string]IDMap{
		CategoryLith:    {"Basalt": "1"},
		CategoryLithAtt: {"red": "2"},
	}

	t.Run("Exact lookup ignores case", func(t *testing.T) {
		resolution, ok, err := NewResolver(maps).Resolve(ctx, "BASALT", "lith_NOUN")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Resolution{Name: "BASALT", Category: CategoryLith, ExternalID: "1", Method: MethodExact}, resolution)
	})

	t.Run("Names are looked up in their own category", func(t *testing.T) {
		_, ok, err := NewResolver(maps).Resolve(ctx, "red", "lith")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unknown type is not resolved", func(t *testing.T) {
		_, ok, err := NewResolver(maps).Resolve(ctx, "basalt", "mineral")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Vector fallback takes the first close match with an id", func(t *testing.T) {
		store := &mockStore{matches: []*model.EntityMatch{
			{Entity: &model.Entity{Name: "basaltic rock"}, Distance: 0.05},
			{Entity: &model.Entity{Name: "basalts", ExternalID: stringPtr("1")}, Distance: 0.1},
		}}
		resolver := NewResolver(maps).WithVectorFallback(store, fixedEmbedder, 0.2)

		resolution, ok, err := resolver.Resolve(ctx, "basaltic lava", "lith")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, MethodVector, resolution.Method)
		assert.Equal(t, "basalts", resolution.MatchedAs)
		assert.Equal(t, "1", resolution.ExternalID)
		assert.Equal(t, "lith", store.gotType)
	})

	t.Run("Vector fallback ignores far matches", func(t *testing.T) {
		store := &mockStore{matches: []*model.EntityMatch{
			{Entity: &model.Entity{Name: "granite", ExternalID: stringPtr("5")}, Distance: 0.6},
		}}
		resolver := NewResolver(maps).WithVectorFallback(store, fixedEmbedder, 0.2)

		_, ok, err := resolver.Resolve(ctx, "gneiss", "lith")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Exact matches skip the store", func(t *testing.T) {
		store := &mockStore{}
		resolver := NewResolver(maps).WithVectorFallback(store, fixedEmbedder, 0.2)

		_, ok, err := resolver.Resolve(ctx, "basalt", "lith")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, store.callCount)
	})

	t.Run("Store errors are returned", func(t *testing.T) {
		store := &mockStore{err: assert.AnError}
		resolver := NewResolver(maps).WithVectorFallback(store, fixedEmbedder, 0.2)

		_, _, err := resolver.Resolve(ctx, "gneiss", "lith")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Embedder errors are returned", func(t *testing.T) {
		failing := func(text string) ([]float32, error) { return nil, assert.AnError }
		resolver := NewResolver(maps).WithVectorFallback(&mockStore{}, failing, 0.2)

		_, _, err := resolver.Resolve(ctx, "gneiss", "lith")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestResolveRelations(t *testing.T) {
	catalog := model.DefaultRelationCatalog()
	resolver := NewResolver(map[string]IDMap{
		CategoryStratName: {"mount galen volcanics": "100"},
		CategoryLith:      {"basalt": "1", "andesite": "2"},
	})

	relations := []*model.Relation{
		model.NewRelation("mount galen volcanics", model.RelationStratToLith, "basalt", catalog[model.RelationStratToLith]),
		model.NewRelation("mount galen volcanics", model.RelationStratToLith, "andesite", catalog[model.RelationStratToLith]),
		model.NewRelation("mount galen volcanics", model.RelationStratToLith, "obsidian", catalog[model.RelationStratToLith]),
	}

	resolutions, err := resolver.ResolveRelations(context.Background(), relations)
	require.NoError(t, err)

	var ids []string
	for _, resolution := range resolutions {
		ids = append(ids, resolution.Name+"="+resolution.ExternalID)
	}
	assert.Equal(t, []string{"mount galen volcanics=100", "basalt=1", "andesite=2"}, ids)
}
