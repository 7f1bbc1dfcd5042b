package model

import "strings"

// TermID indexes a Term inside its TermArena
type TermID int

// Child is an attached term with the score that won the attachment.
// Probability is nil for structural attachments such as promoted modifiers.
type Child struct {
	ID          TermID
	Probability *float64
}

// Term is a typed token span recognised in a paragraph. The first
// occurrence is the one used for its text; coreference adds more.
type Term struct {
	Type        string
	Occurrences []Span
	Children    []Child
}

// TermArena stores all terms of one paragraph. Terms reference children by id.
type TermArena struct {
	terms []Term
}

// NewTermArena creates an empty arena
func NewTermArena() *TermArena {
	return &TermArena{}
}

// Add stores a new term with a single occurrence
func (a *TermArena) Add(termType string, span Span) TermID {
	a.terms = append(a.terms, Term{
		Type:        termType,
		Occurrences: []Span{span},
	})
	return TermID(len(a.terms) - 1)
}

// Get returns the term with the given id
func (a *TermArena) Get(id TermID) *Term {
	return &a.terms[id]
}

// Len returns the number of terms ever added
func (a *TermArena) Len() int {
	return len(a.terms)
}

// Extraction is the per-paragraph result of term extraction.
// Roots lists the terms not owned by any other term.
type Extraction struct {
	Tokens []Token
	Words  []string
	Terms  *TermArena
	Roots  []TermID
}

// NewExtraction creates an empty extraction over tokens
func NewExtraction(tokens []Token) *Extraction {
	return &Extraction{
		Tokens: tokens,
		Words:  Words(tokens),
		Terms:  NewTermArena(),
	}
}

// AddRoot creates a term and registers it as a root
func (e *Extraction) AddRoot(termType string, span Span) TermID {
	id := e.Terms.Add(termType, span)
	e.Roots = append(e.Roots, id)
	return id
}

// RemoveRoot drops id from the roots. It reports whether id was a root.
func (e *Extraction) RemoveRoot(id TermID) bool {
	for i, root := range e.Roots {
		if root == id {
			e.Roots = append(e.Roots[:i], e.Roots[i+1:]...)
			return true
		}
	}
	return false
}

// IsRoot reports whether id is currently a root
func (e *Extraction) IsRoot(id TermID) bool {
	for _, root := range e.Roots {
		if root == id {
			return true
		}
	}
	return false
}

// Attach moves child out of the roots and appends it to parent's children.
// A term that is not a root is already owned and is left untouched.
func (e *Extraction) Attach(parent, child TermID, probability *float64) bool {
	if parent == child || !e.RemoveRoot(child) {
		return false
	}
	p := e.Terms.Get(parent)
	p.Children = append(p.Children, Child{ID: child, Probability: probability})
	return true
}

// RootCovering returns the root whose occurrences contain token index i
func (e *Extraction) RootCovering(i int) (TermID, bool) {
	for _, id := range e.Roots {
		for _, occ := range e.Terms.Get(id).Occurrences {
			if occ.Contains(i) {
				return id, true
			}
		}
	}
	return 0, false
}

// SpanText joins the words of span with single spaces
func (e *Extraction) SpanText(span Span) string {
	return strings.Join(e.Words[span.Start:span.End], " ")
}

// Text returns the text of the term's first occurrence
func (e *Extraction) Text(id TermID) string {
	t := e.Terms.Get(id)
	if len(t.Occurrences) == 0 {
		return ""
	}
	return e.SpanText(t.Occurrences[0])
}
