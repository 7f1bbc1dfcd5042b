package model

import (
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RelationKey is the structural identity of a relation
type RelationKey struct {
	Head string
	Type string
	Tail string
}

// Relation is a typed head/tail pair with the snippets it was read from,
// grouped by article in first-seen order.
type Relation struct {
	ID        uuid.UUID
	Head      string
	Tail      string
	Type      string
	HumanType string
	SrcType   string
	DstType   string
	Sources   *orderedmap.OrderedMap[string, []string]
}

// NewRelation creates a relation without sources
func NewRelation(head, relType, tail string, details RelationDetails) *Relation {
	return &Relation{
		Head:      head,
		Tail:      tail,
		Type:      relType,
		HumanType: details.HumanType,
		SrcType:   details.SrcType,
		DstType:   details.DstType,
		Sources:   orderedmap.New[string, []string](),
	}
}

// Key returns the (head, type, tail) identity
func (r *Relation) Key() RelationKey {
	return RelationKey{Head: r.Head, Type: r.Type, Tail: r.Tail}
}

// AddSource appends snippets for an article. Snippets are never deduplicated.
func (r *Relation) AddSource(articleID string, snippets ...string) {
	if r.Sources == nil {
		r.Sources = orderedmap.New[string, []string]()
	}
	existing, _ := r.Sources.Get(articleID)
	merged := make([]string, 0, len(existing)+len(snippets))
	merged = append(merged, existing...)
	merged = append(merged, snippets...)
	r.Sources.Set(articleID, merged)
}

// SnippetCount returns the number of snippets over all articles
func (r *Relation) SnippetCount() int {
	if r.Sources == nil {
		return 0
	}
	count := 0
	for pair := r.Sources.Oldest(); pair != nil; pair = pair.Next() {
		count += len(pair.Value)
	}
	return count
}

// Clone deep copies the relation so later merges never alias the original
func (r *Relation) Clone() *Relation {
	c := *r
	c.Sources = orderedmap.New[string, []string]()
	if r.Sources != nil {
		for pair := r.Sources.Oldest(); pair != nil; pair = pair.Next() {
			snippets := make([]string, len(pair.Value))
			copy(snippets, pair.Value)
			c.Sources.Set(pair.Key, snippets)
		}
	}
	return &c
}

// SourceRecord is one article's provenance in exported form
type SourceRecord struct {
	ArticleID string   `json:"article_id"`
	TxtUsed   []string `json:"txt_used"`
}

// RelationRecord is the exported form of a relation
type RelationRecord struct {
	Head      string         `json:"head"`
	Type      string         `json:"type"`
	Tail      string         `json:"tail"`
	HumanType string         `json:"human_type"`
	SrcType   string         `json:"src_type"`
	DstType   string         `json:"dst_type"`
	Sources   []SourceRecord `json:"sources"`
}

// Record converts the relation to its exported form
func (r *Relation) Record() RelationRecord {
	record := RelationRecord{
		Head:      r.Head,
		Type:      r.Type,
		Tail:      r.Tail,
		HumanType: r.HumanType,
		SrcType:   r.SrcType,
		DstType:   r.DstType,
		Sources:   []SourceRecord{},
	}
	if r.Sources == nil {
		return record
	}
	for pair := r.Sources.Oldest(); pair != nil; pair = pair.Next() {
		snippets := make([]string, len(pair.Value))
		copy(snippets, pair.Value)
		record.Sources = append(record.Sources, SourceRecord{ArticleID: pair.Key, TxtUsed: snippets})
	}
	return record
}

// RelationFromRecord rebuilds a relation from its exported form
func RelationFromRecord(record RelationRecord) *Relation {
	r := NewRelation(record.Head, record.Type, record.Tail, RelationDetails{
		HumanType: record.HumanType,
		SrcType:   record.SrcType,
		DstType:   record.DstType,
	})
	for _, source := range record.Sources {
		r.AddSource(source.ArticleID, source.TxtUsed...)
	}
	return r
}
