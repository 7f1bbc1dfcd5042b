package pipeline

import (
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/core/trie"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// LexicalCoref links repeated mentions of the same known term. Mentions are
// grouped by their lowercase surface form; singletons produce no cluster.
func LexicalCoref(vocabulary *trie.Trie) CorefFunc {
	return func(tokens []model.Token) ([][]model.Span, error) {
		lowered := make([]string, len(tokens))
		for i, t := range tokens {
			lowered[i] = strings.ToLower(t.Text)
		}

		index := map[string]int{}
		var clusters [][]model.Span
		for _, match := range vocabulary.Scan(lowered) {
			key := strings.Join(lowered[match.Span.Start:match.Span.End], " ")
			i, ok := index[key]
			if !ok {
				index[key] = len(clusters)
				clusters = append(clusters, []model.Span{match.Span})
				continue
			}
			clusters[i] = append(clusters[i], match.Span)
		}

		linked := clusters[:0]
		for _, cluster := range clusters {
			if len(cluster) > 1 {
				linked = append(linked, cluster)
			}
		}
		return linked, nil
	}
}
