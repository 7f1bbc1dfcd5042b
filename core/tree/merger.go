package tree

import (
	"errors"
	"fmt"

	"github.com/sarda-devesh/unsupervised-kg/core/pipeline"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Merger attaches every term to the best scoring term of the nearest
// populated shallower level. Each child picks its parent on its own.
type Merger struct {
	hierarchy *Hierarchy
	score     pipeline.RelationScoreFunc
}

// NewMerger creates a merger
func NewMerger(hierarchy *Hierarchy, score pipeline.RelationScoreFunc) *Merger {
	return &Merger{
		hierarchy: hierarchy,
		score:     score,
	}
}

// Merge builds the forest in place and returns its roots: the terms of the
// shallowest populated level. A term type outside the hierarchy aborts
// before anything is attached.
func (m *Merger) Merge(ex *model.Extraction) ([]model.TermID, error) {
	buckets := make([][]model.TermID, m.hierarchy.Depth())
	for _, id := range ex.Roots {
		level, err := m.hierarchy.Level(ex.Terms.Get(id).Type)
		if err != nil {
			return nil, err
		}
		buckets[level] = append(buckets[level], id)
	}

	for lower := len(buckets) - 1; lower >= 1; lower-- {
		if len(buckets[lower]) == 0 {
			continue
		}
		upper := lower - 1
		for upper >= 0 && len(buckets[upper]) == 0 {
			upper--
		}
		if upper < 0 {
			continue
		}

		for _, child := range buckets[lower] {
			parent, score, err := m.bestParent(ex, child, buckets[upper], lower, upper)
			if err != nil {
				return nil, err
			}
			ex.Attach(parent, child, &score)
		}
	}

	for _, bucket := range buckets {
		if len(bucket) > 0 {
			return bucket, nil
		}
	}
	return nil, nil
}

// bestParent returns the first candidate with the strictly highest score
func (m *Merger) bestParent(ex *model.Extraction, child model.TermID, candidates []model.TermID, childLevel, parentLevel int) (model.TermID, float64, error) {
	childSpan := ex.Terms.Get(child).Occurrences[0]

	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		score, err := m.score(
			ex.Tokens,
			childSpan,
			ex.Terms.Get(candidate).Occurrences[0],
			m.hierarchy.Label(childLevel),
			m.hierarchy.Label(parentLevel),
		)
		if err != nil {
			if !errors.Is(err, model.ErrOracleFailure) {
				err = fmt.Errorf("%w: %w", model.ErrOracleFailure, err)
			}
			return 0, 0, fmt.Errorf("score %q under %q: %w", ex.Text(child), ex.Text(candidate), err)
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}

	return candidates[best], bestScore, nil
}
