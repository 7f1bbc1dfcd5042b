package pipeline

import (
	"testing"

	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalCoref(t *testing.T) {
	coref := LexicalCoref(newTestTrie(t))

	t.Run("Repeated terms form one cluster", func(t *testing.T) {
		clusters, err := coref(Tokenize("Basalt flows cut basalt and dacite"))
		require.NoError(t, err)

		require.Len(t, clusters, 1)
		assert.Equal(t, []model.Span{{Start: 0, End: 1}, {Start: 3, End: 4}}, clusters[0])
	})

	t.Run("Single mentions produce nothing", func(t *testing.T) {
		clusters, err := coref(Tokenize("basalt and dacite"))
		require.NoError(t, err)
		assert.Empty(t, clusters)
	})
}
