// Package trie holds the vocabulary of known geology terms as a token trie.
package trie

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/model"
)

const root = 0

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['.][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

// WordIndexes returns the byte ranges of the words and punctuation marks of
// text. Paragraphs and vocabulary entries are split the same way.
func WordIndexes(text string) [][]int {
	return wordPattern.FindAllStringIndex(text, -1)
}

// Words splits text like WordIndexes
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

type node struct {
	children map[string]int
	label    string
}

// Trie maps token sequences to a term type. Nodes live in one slice and
// reference their children by index. It must not be modified once it is
// shared between goroutines.
type Trie struct {
	nodes []node
	terms int
}

// Match is a known term found by Scan
type Match struct {
	Span  model.Span
	Label string
}

// New creates an empty trie
func New() *Trie {
	return &Trie{nodes: []node{{children: map[string]int{}}}}
}

// NormalizeText replaces hyphens with spaces and drops parentheses.
// It is applied to vocabulary entries and to paragraphs alike.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "-", " ")
	text = strings.ReplaceAll(text, "(", "")
	return strings.ReplaceAll(text, ")", "")
}

// NormalizeTokens lowercases tokens and splits them again after punctuation normalization
func NormalizeTokens(tokens []string) []string {
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized = append(normalized, strings.Fields(strings.ToLower(NormalizeText(token)))...)
	}
	return normalized
}

// Insert adds a token sequence with its label. If the path already carried
// a label it is overwritten and ErrDuplicateTrieInsertion is returned.
func (t *Trie) Insert(tokens []string, label string) error {
	tokens = NormalizeTokens(tokens)
	if len(tokens) == 0 {
		return fmt.Errorf("empty term for label %s", label)
	}

	current := root
	for _, token := range tokens {
		next, ok := t.nodes[current].children[token]
		if !ok {
			t.nodes = append(t.nodes, node{children: map[string]int{}})
			next = len(t.nodes) - 1
			t.nodes[current].children[token] = next
		}
		current = next
	}

	previous := t.nodes[current].label
	t.nodes[current].label = label
	if previous == "" {
		t.terms++
		return nil
	}
	if previous == label {
		return nil
	}
	return fmt.Errorf("%w: %q relabelled from %s to %s", model.ErrDuplicateTrieInsertion, strings.Join(tokens, " "), previous, label)
}

// InsertTerm splits a term into words and inserts it
func (t *Trie) InsertTerm(term string, label string) error {
	return t.Insert(Words(term), label)
}

// LongestMatch walks from start and returns the end of the longest labelled
// prefix. Tokens are expected to be lowercase already.
func (t *Trie) LongestMatch(tokens []string, start int) (int, string, bool) {
	end, label := start, ""
	current := root
	for i := start; i < len(tokens); i++ {
		next, ok := t.nodes[current].children[tokens[i]]
		if !ok {
			break
		}
		current = next
		if t.nodes[current].label != "" {
			end, label = i+1, t.nodes[current].label
		}
	}
	return end, label, label != ""
}

// Scan greedily matches known terms left to right. After a match the
// cursor jumps to its end, so matches never overlap.
func (t *Trie) Scan(tokens []string) []Match {
	var matches []Match
	for i := 0; i < len(tokens); {
		end, label, ok := t.LongestMatch(tokens, i)
		if !ok {
			i++
			continue
		}
		matches = append(matches, Match{Span: model.Span{Start: i, End: end}, Label: label})
		i = end
	}
	return matches
}

// Lookup returns the label of an exact term
func (t *Trie) Lookup(term string) (string, bool) {
	tokens := NormalizeTokens(Words(term))
	end, label, ok := t.LongestMatch(tokens, 0)
	if !ok || end != len(tokens) {
		return "", false
	}
	return label, true
}

// Len returns the number of labelled terms
func (t *Trie) Len() int {
	return t.terms
}
