// Package graph holds the knowledge graph built from extracted relations
// and traversals over it.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// KnowledgeGraph deduplicates relations by (head, type, tail) and
// accumulates their provenance. It is not safe for concurrent mutation.
type KnowledgeGraph struct {
	relations []*model.Relation
	// entity name to the number of relations mentioning it
	entities *orderedmap.OrderedMap[string, int]
}

// NewKnowledgeGraph creates an empty graph
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		entities: orderedmap.New[string, int](),
	}
}

// FromRecords rebuilds a graph from exported records
func FromRecords(records []model.RelationRecord) *KnowledgeGraph {
	g := NewKnowledgeGraph()
	for _, record := range records {
		g.AddRelation(model.RelationFromRecord(record))
	}
	return g
}

// FromParagraphResult turns the relationships of one paragraph into a graph.
// Every relation is sourced from the paragraph text under its article id.
func FromParagraphResult(result model.ParagraphResult, catalog model.RelationCatalog) *KnowledgeGraph {
	g := NewKnowledgeGraph()
	articleID := result.Text.ArticleID()
	for _, rel := range result.Relationships {
		details, _ := catalog.Lookup(rel.RelationshipType)
		relation := model.NewRelation(rel.Src, rel.RelationshipType, rel.Dst, details)
		relation.AddSource(articleID, result.Text.Text)
		g.AddRelation(relation)
	}
	return g
}

// ReadJSON decodes a graph written by WriteJSON
func ReadJSON(r io.Reader) (*KnowledgeGraph, error) {
	var records []model.RelationRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, helper.NewError("decode knowledge graph", err)
	}
	return FromRecords(records), nil
}

// AddRelation stores a copy of r, or appends its snippets to the relation
// with the same key. The stored details of an existing relation are kept.
func (g *KnowledgeGraph) AddRelation(r *model.Relation) {
	if existing := g.find(r.Key()); existing != nil {
		if r.Sources == nil {
			return
		}
		for pair := r.Sources.Oldest(); pair != nil; pair = pair.Next() {
			existing.AddSource(pair.Key, pair.Value...)
		}
		return
	}

	stored := r.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	g.relations = append(g.relations, stored)
	g.registerEntity(stored.Head)
	g.registerEntity(stored.Tail)
}

// MergeWith adds every relation of other in order. other is left untouched.
// Snippet order per article follows the merge order.
func (g *KnowledgeGraph) MergeWith(other *KnowledgeGraph) {
	if other == nil {
		return
	}
	for _, r := range other.relations {
		g.AddRelation(r)
	}
}

// Relation returns the stored relation with the given key
func (g *KnowledgeGraph) Relation(key model.RelationKey) (*model.Relation, bool) {
	r := g.find(key)
	return r, r != nil
}

// Relations returns the stored relations in insertion order
func (g *KnowledgeGraph) Relations() []*model.Relation {
	relations := make([]*model.Relation, len(g.relations))
	copy(relations, g.relations)
	return relations
}

// Entities returns every head and tail in first-seen order
func (g *KnowledgeGraph) Entities() []string {
	entities := make([]string, 0, g.entities.Len())
	for pair := g.entities.Oldest(); pair != nil; pair = pair.Next() {
		entities = append(entities, pair.Key)
	}
	return entities
}

// Degree returns the number of relations an entity takes part in
func (g *KnowledgeGraph) Degree(entity string) int {
	degree, _ := g.entities.Get(entity)
	return degree
}

// Len returns the number of distinct relations
func (g *KnowledgeGraph) Len() int {
	return len(g.relations)
}

// ToJSON exports every relation with its sources
func (g *KnowledgeGraph) ToJSON() []model.RelationRecord {
	records := make([]model.RelationRecord, 0, len(g.relations))
	for _, r := range g.relations {
		records = append(records, r.Record())
	}
	return records
}

// WriteJSON encodes the exported records as an indented JSON array
func (g *KnowledgeGraph) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g.ToJSON()); err != nil {
		return helper.NewError("encode knowledge graph", err)
	}
	return nil
}

// RelationsOf returns the relations with entity as head or tail, optionally
// restricted to relationTypes.
func (g *KnowledgeGraph) RelationsOf(ctx context.Context, entity string, relationTypes []string) ([]*model.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := g.entities.Get(entity); !ok {
		return nil, fmt.Errorf("entity %q not in graph", entity)
	}

	var relations []*model.Relation
	for _, r := range g.relations {
		if (r.Head == entity || r.Tail == entity) && matchesType(r.Type, relationTypes) {
			relations = append(relations, r)
		}
	}
	return relations, nil
}

func (g *KnowledgeGraph) find(key model.RelationKey) *model.Relation {
	for _, r := range g.relations {
		if r.Key() == key {
			return r
		}
	}
	return nil
}

func (g *KnowledgeGraph) registerEntity(name string) {
	degree, _ := g.entities.Get(name)
	g.entities.Set(name, degree+1)
}

func matchesType(relType string, relationTypes []string) bool {
	if len(relationTypes) == 0 {
		return true
	}
	for _, t := range relationTypes {
		if t == relType {
			return true
		}
	}
	return false
}
