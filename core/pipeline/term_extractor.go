package pipeline

import (
	"fmt"
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/core/trie"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

const (
	// ProperNounType is the type of uncovered proper noun runs
	ProperNounType = "proper_noun"
	// ModifierType is the type of promoted adjectival modifiers
	ModifierType = "att_amod"

	properNounTag   = "PROPN"
	amodDependency  = "amod"
	unknownTermBase = "lith_"
)

// TermExtractor turns a paragraph into a flat list of typed terms
type TermExtractor struct {
	trie       *trie.Trie
	tag        TagFunc
	coref      CorefFunc
	lithPrefix string
}

// NewTermExtractor creates an extractor. coref may be nil.
func NewTermExtractor(vocabulary *trie.Trie, tag TagFunc, coref CorefFunc) *TermExtractor {
	if coref == nil {
		coref = NoCoref
	}
	return &TermExtractor{
		trie:       vocabulary,
		tag:        tag,
		coref:      coref,
		lithPrefix: "lith",
	}
}

// Extract tags the paragraph and collects its terms. Tagging and coreference
// errors are returned wrapped in model.ErrTaggingFailure.
func (e *TermExtractor) Extract(text string) (*model.Extraction, error) {
	normalized := trie.NormalizeText(helper.NormalizeUnicode(text))

	tokens, err := e.tag(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTaggingFailure, err)
	}

	ex := model.NewExtraction(tokens)
	covered := make([]bool, len(tokens))

	e.addKnownTerms(ex, covered)
	e.addProperNouns(ex, covered)
	e.promoteModifiers(ex, covered)

	// Promoted modifiers are no longer roots, so coreference leaves them alone
	clusters, err := e.coref(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: coreference: %w", model.ErrTaggingFailure, err)
	}
	linkCoreferences(ex, clusters)

	return ex, nil
}

func (e *TermExtractor) addKnownTerms(ex *model.Extraction, covered []bool) {
	lowered := make([]string, len(ex.Words))
	for i, w := range ex.Words {
		lowered[i] = strings.ToLower(w)
	}

	for _, match := range e.trie.Scan(lowered) {
		ex.AddRoot(match.Label, match.Span)
		markCovered(covered, match.Span)
	}
}

func (e *TermExtractor) addProperNouns(ex *model.Extraction, covered []bool) {
	for i := 0; i < len(ex.Tokens); i++ {
		if covered[i] || ex.Tokens[i].POS != properNounTag {
			continue
		}
		end := i + 1
		for end < len(ex.Tokens) && !covered[end] && ex.Tokens[end].POS == properNounTag {
			end++
		}
		span := model.Span{Start: i, End: end}
		ex.AddRoot(ProperNounType, span)
		markCovered(covered, span)
		i = end - 1
	}
}

// matchingTerm creates a term for an uncovered token: the maximal run of
// uncovered neighbours sharing its part of speech, typed lith_<POS>.
func (e *TermExtractor) matchingTerm(ex *model.Extraction, covered []bool, index int) model.TermID {
	pos := ex.Tokens[index].POS
	start, end := expandRun(ex.Tokens, covered, index, pos)
	span := model.Span{Start: start, End: end}
	markCovered(covered, span)
	return ex.AddRoot(unknownTermBase+pos, span)
}

// promoteModifiers moves lith terms that modify another term under it as att_amod.
// Terms created on the way are promoted as well.
func (e *TermExtractor) promoteModifiers(ex *model.Extraction, covered []bool) {
	queue := append([]model.TermID(nil), ex.Roots...)

	for q := 0; q < len(queue); q++ {
		id := queue[q]
		term := ex.Terms.Get(id)
		if !ex.IsRoot(id) || !strings.HasPrefix(term.Type, e.lithPrefix) {
			continue
		}

		for _, occ := range term.Occurrences {
			parent, found := e.modifiedTerm(ex, covered, id, occ, &queue)
			if !found {
				continue
			}
			if ex.Attach(parent, id, nil) {
				ex.Terms.Get(id).Type = ModifierType
				break
			}
		}
	}
}

// modifiedTerm finds the term an amod token of occ points at, creating it if needed
func (e *TermExtractor) modifiedTerm(ex *model.Extraction, covered []bool, id model.TermID, occ model.Span, queue *[]model.TermID) (model.TermID, bool) {
	for i := occ.Start; i < occ.End; i++ {
		token := ex.Tokens[i]
		if token.Dep != amodDependency {
			continue
		}
		head := token.Head
		if head < 0 || head >= len(ex.Tokens) || occ.Contains(head) {
			continue
		}

		parent, ok := termCovering(ex, head)
		if !ok {
			if covered[head] {
				continue
			}
			parent = e.matchingTerm(ex, covered, head)
			*queue = append(*queue, parent)
		}
		if parent == id || isDescendant(ex, id, parent) {
			continue
		}
		return parent, true
	}
	return 0, false
}

// termCovering finds the term holding token index among the roots and
// everything they own. Terms folded away by coreference are not reachable.
func termCovering(ex *model.Extraction, index int) (model.TermID, bool) {
	if id, ok := ex.RootCovering(index); ok {
		return id, true
	}
	var walk func(id model.TermID) (model.TermID, bool)
	walk = func(id model.TermID) (model.TermID, bool) {
		for _, child := range ex.Terms.Get(id).Children {
			for _, occ := range ex.Terms.Get(child.ID).Occurrences {
				if occ.Contains(index) {
					return child.ID, true
				}
			}
			if found, ok := walk(child.ID); ok {
				return found, true
			}
		}
		return 0, false
	}
	for _, root := range ex.Roots {
		if found, ok := walk(root); ok {
			return found, true
		}
	}
	return 0, false
}

// isDescendant reports whether candidate sits below ancestor
func isDescendant(ex *model.Extraction, ancestor, candidate model.TermID) bool {
	for _, child := range ex.Terms.Get(ancestor).Children {
		if child.ID == candidate || isDescendant(ex, child.ID, candidate) {
			return true
		}
	}
	return false
}

// linkCoreferences adds the spans of each cluster to the first term that
// already has one of them. A term made only of such a span is folded in.
func linkCoreferences(ex *model.Extraction, clusters [][]model.Span) {
	for _, cluster := range clusters {
		anchor, ok := anchorTerm(ex, cluster)
		if !ok {
			continue
		}

		for _, span := range cluster {
			if hasOccurrence(ex.Terms.Get(anchor), span) {
				continue
			}
			if other, ok := singleOccurrenceRoot(ex, span); ok {
				if other == anchor {
					continue
				}
				ex.RemoveRoot(other)
			}
			a := ex.Terms.Get(anchor)
			a.Occurrences = append(a.Occurrences, span)
		}
	}
}

func anchorTerm(ex *model.Extraction, cluster []model.Span) (model.TermID, bool) {
	for _, id := range ex.Roots {
		for _, span := range cluster {
			if hasOccurrence(ex.Terms.Get(id), span) {
				return id, true
			}
		}
	}
	return 0, false
}

func singleOccurrenceRoot(ex *model.Extraction, span model.Span) (model.TermID, bool) {
	for _, id := range ex.Roots {
		t := ex.Terms.Get(id)
		if len(t.Occurrences) == 1 && t.Occurrences[0] == span && len(t.Children) == 0 {
			return id, true
		}
	}
	return 0, false
}

func hasOccurrence(t *model.Term, span model.Span) bool {
	for _, occ := range t.Occurrences {
		if occ == span {
			return true
		}
	}
	return false
}

func expandRun(tokens []model.Token, covered []bool, index int, pos string) (int, int) {
	start, end := index, index+1
	for start > 0 && !covered[start-1] && tokens[start-1].POS == pos {
		start--
	}
	for end < len(tokens) && !covered[end] && tokens[end].POS == pos {
		end++
	}
	return start, end
}

func markCovered(covered []bool, span model.Span) {
	for i := span.Start; i < span.End; i++ {
		covered[i] = true
	}
}
