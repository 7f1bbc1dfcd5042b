package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtraction() *Extraction {
	return NewExtraction([]Token{
		{Text: "the"}, {Text: "mount"}, {Text: "galen"}, {Text: "volcanics"},
		{Text: "consists"}, {Text: "of"}, {Text: "basalt"},
	})
}

func TestExtractionAttach(t *testing.T) {
	t.Run("Attach moves the child out of the roots", func(t *testing.T) {
		ex := newTestExtraction()
		strat := ex.AddRoot("strat_name", Span{Start: 1, End: 4})
		lith := ex.AddRoot("lith", Span{Start: 6, End: 7})

		score := 0.8
		ok := ex.Attach(strat, lith, &score)

		require.True(t, ok, "Expected Attach to succeed for a root child")
		assert.Equal(t, []TermID{strat}, ex.Roots)
		require.Len(t, ex.Terms.Get(strat).Children, 1)
		assert.Equal(t, lith, ex.Terms.Get(strat).Children[0].ID)
		assert.InDelta(t, 0.8, *ex.Terms.Get(strat).Children[0].Probability, 1e-9)
	})

	t.Run("Attaching an owned term is refused", func(t *testing.T) {
		ex := newTestExtraction()
		a := ex.AddRoot("strat_name", Span{Start: 1, End: 4})
		b := ex.AddRoot("lith", Span{Start: 6, End: 7})
		c := ex.AddRoot("strat_name", Span{Start: 0, End: 1})

		require.True(t, ex.Attach(a, b, nil))
		assert.False(t, ex.Attach(c, b, nil), "Expected a term to have at most one owner")
		assert.Empty(t, ex.Terms.Get(c).Children)
	})

	t.Run("Self attachment is refused", func(t *testing.T) {
		ex := newTestExtraction()
		a := ex.AddRoot("lith", Span{Start: 6, End: 7})
		assert.False(t, ex.Attach(a, a, nil))
		assert.True(t, ex.IsRoot(a))
	})
}

func TestExtractionText(t *testing.T) {
	t.Run("Text joins the first occurrence", func(t *testing.T) {
		ex := newTestExtraction()
		id := ex.AddRoot("strat_name", Span{Start: 1, End: 4})
		ex.Terms.Get(id).Occurrences = append(ex.Terms.Get(id).Occurrences, Span{Start: 6, End: 7})

		assert.Equal(t, "mount galen volcanics", ex.Text(id))
	})

	t.Run("RootCovering finds terms by token index", func(t *testing.T) {
		ex := newTestExtraction()
		id := ex.AddRoot("strat_name", Span{Start: 1, End: 4})

		found, ok := ex.RootCovering(2)
		assert.True(t, ok)
		assert.Equal(t, id, found)

		_, ok = ex.RootCovering(5)
		assert.False(t, ok)
	})
}
