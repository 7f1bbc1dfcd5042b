package model

// Token is one tagged token of a paragraph
type Token struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
	Dep  string `json:"dep"`
	// Head is the index of the syntactic head. A root token points at itself.
	Head int `json:"head"`
	// Start and End are byte offsets into the tagged text
	Start int `json:"start"`
	End   int `json:"end"`
}

// Span is a half-open [Start, End) range of token indices
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of tokens in the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether token index i lies inside the span
func (s Span) Contains(i int) bool {
	return i >= s.Start && i < s.End
}

// Overlaps reports whether both spans share at least one token
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Words returns the token texts of tokens
func Words(tokens []Token) []string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	return words
}
