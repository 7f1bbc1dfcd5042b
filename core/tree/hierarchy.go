// Package tree arranges the terms of a paragraph into a strat, lith and
// attribute hierarchy and flattens it into relationships.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Hierarchy ranks term types by prefix. Level 0 is the shallowest.
type Hierarchy struct {
	prefixes []string
	// aliases sorted longest first, then alphabetically
	aliases       []alias
	relationTypes []string
}

type alias struct {
	prefix string
	target string
}

// NewHierarchy creates a hierarchy from its configuration
func NewHierarchy(config model.HierarchyConfig) *Hierarchy {
	aliases := make([]alias, 0, len(config.Aliases))
	for prefix, target := range config.Aliases {
		aliases = append(aliases, alias{prefix: prefix, target: target})
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].prefix) != len(aliases[j].prefix) {
			return len(aliases[i].prefix) > len(aliases[j].prefix)
		}
		return aliases[i].prefix < aliases[j].prefix
	})

	return &Hierarchy{
		prefixes:      config.Prefixes,
		aliases:       aliases,
		relationTypes: []string{model.RelationStratToLith, model.RelationAttOfLith},
	}
}

// DefaultHierarchy is strat, lith, att without aliases
func DefaultHierarchy() *Hierarchy {
	return NewHierarchy(model.DefaultConfig().Hierarchy)
}

// Level returns the rank of the first prefix termType starts with.
// Aliases are only consulted when no prefix matches; the longest matching
// alias wins.
func (h *Hierarchy) Level(termType string) (int, error) {
	for i, prefix := range h.prefixes {
		if strings.HasPrefix(termType, prefix) {
			return i, nil
		}
	}
	for _, a := range h.aliases {
		if !strings.HasPrefix(termType, a.prefix) {
			continue
		}
		for i, prefix := range h.prefixes {
			if prefix == a.target {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %q matches none of %v", model.ErrInvalidTermType, termType, h.prefixes)
}

// Depth returns the number of levels
func (h *Hierarchy) Depth() int {
	return len(h.prefixes)
}

// Label returns the prefix naming a level
func (h *Hierarchy) Label(level int) string {
	return h.prefixes[level]
}

// RelationType names the relationship emitted below a parent at level.
// The deepest level has none.
func (h *Hierarchy) RelationType(parentLevel int) (string, bool) {
	if parentLevel < 0 || parentLevel >= len(h.relationTypes) {
		return "", false
	}
	return h.relationTypes[parentLevel], true
}
