// Package resolve links extracted entity names to external ids.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/core/pipeline"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Entity categories with their own id map
const (
	CategoryLith      = "lith"
	CategoryLithAtt   = "lith_att"
	CategoryStratName = "strat_name"
)

// Resolution methods
const (
	MethodExact  = "exact"
	MethodVector = "vector"
)

// IDMap maps lowercase entity names to external ids
type IDMap map[string]string

// EntityStore finds stored entities close to an embedding
type EntityStore interface {
	SelectEntitiesBySimilarity(embedding []float32, entityType *string, limit int) ([]*model.EntityMatch, error)
}

// Resolution is the external id found for a name
type Resolution struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	ExternalID string  `json:"external_id"`
	Method     string  `json:"method"`
	MatchedAs  string  `json:"matched_as,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
}

// Resolver looks names up in the id maps first and falls back to the
// nearest stored entity when a vector store is attached.
type Resolver struct {
	maps      map[string]IDMap
	store     EntityStore
	embed     pipeline.EmbedFunc
	threshold float64
}

// NewResolver creates a resolver over id maps keyed by category
func NewResolver(maps map[string]IDMap) *Resolver {
	normalized := make(map[string]IDMap, len(maps))
	for category, m := range maps {
		lowered := make(IDMap, len(m))
		for name, id := range m {
			lowered[strings.ToLower(name)] = id
		}
		normalized[category] = lowered
	}
	return &Resolver{maps: normalized}
}

// LoadResolver reads the id map files named in config. Empty paths are skipped.
func LoadResolver(config model.IDMapsConfig) (*Resolver, error) {
	paths := map[string]string{
		CategoryLith:      config.Lith,
		CategoryLithAtt:   config.LithAtt,
		CategoryStratName: config.StratNames,
	}

	maps := make(map[string]IDMap, len(paths))
	for category, path := range paths {
		if path == "" {
			continue
		}
		m, err := LoadIDMap(path)
		if err != nil {
			return nil, err
		}
		maps[category] = m
	}
	return NewResolver(maps), nil
}

// LoadIDMap reads a JSON object of name to id. Ids may be numbers or strings.
func LoadIDMap(path string) (IDMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open id map", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, helper.NewError("decode id map "+path, err)
	}

	m := make(IDMap, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case json.Number:
			m[name] = v.String()
		case string:
			m[name] = v
		default:
			return nil, helper.NewError("decode id map "+path, fmt.Errorf("id of %q has unsupported type %T", name, value))
		}
	}
	return m, nil
}

// WithVectorFallback attaches a store searched by embedding when a name is
// not in the id maps. Matches farther than threshold cosine distance are ignored.
func (r *Resolver) WithVectorFallback(store EntityStore, embed pipeline.EmbedFunc, threshold float64) *Resolver {
	r.store = store
	r.embed = embed
	r.threshold = threshold
	return r
}

// Category maps an entity type to the id map that covers it
func Category(entityType string) (string, bool) {
	t := strings.ToLower(entityType)
	switch {
	case strings.HasPrefix(t, "strat"), t == pipeline.ProperNounType:
		return CategoryStratName, true
	case strings.HasPrefix(t, "att"), strings.HasPrefix(t, "lith_att"), strings.HasPrefix(t, "lith attribute"):
		return CategoryLithAtt, true
	case strings.HasPrefix(t, "lith"):
		return CategoryLith, true
	default:
		return "", false
	}
}

// Resolve returns the external id of name. ok is false when neither the id
// maps nor the vector fallback know the name.
func (r *Resolver) Resolve(ctx context.Context, name string, entityType string) (resolution Resolution, ok bool, err error) {
	category, known := Category(entityType)
	if !known {
		return Resolution{}, false, nil
	}

	resolution = Resolution{Name: name, Category: category}
	if id, found := r.maps[category][strings.ToLower(name)]; found {
		resolution.ExternalID = id
		resolution.Method = MethodExact
		return resolution, true, nil
	}

	if r.store == nil || r.embed == nil {
		return resolution, false, nil
	}
	if err := ctx.Err(); err != nil {
		return resolution, false, err
	}

	embedding, err := r.embed(name)
	if err != nil {
		return resolution, false, helper.NewError("embed entity", err)
	}
	matches, err := r.store.SelectEntitiesBySimilarity(embedding, &entityType, 5)
	if err != nil {
		return resolution, false, helper.NewError("similarity search", err)
	}

	for _, match := range matches {
		if match.Distance > r.threshold {
			break
		}
		if match.Entity.ExternalID == nil {
			continue
		}
		resolution.ExternalID = *match.Entity.ExternalID
		resolution.Method = MethodVector
		resolution.MatchedAs = match.Entity.Name
		resolution.Distance = match.Distance
		return resolution, true, nil
	}

	return resolution, false, nil
}

// ResolveRelations resolves the head and tail of every relation using the
// relation's source and destination types. Each (name, category) pair is
// resolved once; unresolved names are left out.
func (r *Resolver) ResolveRelations(ctx context.Context, relations []*model.Relation) ([]Resolution, error) {
	type key struct{ name, category string }
	seen := make(map[key]bool)

	var resolutions []Resolution
	resolve := func(name, entityType string) error {
		category, known := Category(entityType)
		if !known || seen[key{name, category}] {
			return nil
		}
		seen[key{name, category}] = true

		resolution, ok, err := r.Resolve(ctx, name, entityType)
		if err != nil {
			return err
		}
		if ok {
			resolutions = append(resolutions, resolution)
		}
		return nil
	}

	for _, relation := range relations {
		if err := resolve(relation.Head, relation.SrcType); err != nil {
			return nil, err
		}
		if err := resolve(relation.Tail, relation.DstType); err != nil {
			return nil, err
		}
	}
	return resolutions, nil
}
