package pipeline

import (
	"strings"
	"testing"

	"github.com/knights-analytics/hugot/pipelines"
	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildRelationInput(t *testing.T) {
	words := strings.Fields("the mount galen volcanics consists of basalt")

	t.Run("Child and parent are wrapped in typed markers", func(t *testing.T) {
		input := BuildRelationInput(words, model.Span{Start: 6, End: 7}, model.Span{Start: 1, End: 4}, "lith", "strat", 0)

		assert.Equal(t,
			"the [OBJ_START=strat] mount galen volcanics [OBJ_END=strat] consists of [SUBJ_START=lith] basalt [SUBJ_END=lith]",
			input,
		)
	})

	t.Run("Long sentences keep a window around both spans", func(t *testing.T) {
		long := make([]string, 300)
		for i := range long {
			long[i] = "w"
		}
		long[150], long[160] = "basalt", "formation"

		input := BuildRelationInput(long, model.Span{Start: 150, End: 151}, model.Span{Start: 160, End: 161}, "lith", "strat", 20)

		assert.Contains(t, input, "[SUBJ_START=lith] basalt [SUBJ_END=lith]")
		assert.Contains(t, input, "[OBJ_START=strat] formation [OBJ_END=strat]")
		assert.Equal(t, 20+4, len(strings.Fields(input)), "Expected the window plus four markers")
	})
}

func TestRelationWindow(t *testing.T) {
	t.Run("Window is clamped to the sentence", func(t *testing.T) {
		start, end := relationWindow(100, model.Span{Start: 0, End: 1}, model.Span{Start: 2, End: 3}, 10)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)

		start, end = relationWindow(100, model.Span{Start: 98, End: 99}, model.Span{Start: 95, End: 96}, 10)
		assert.Equal(t, 90, start)
		assert.Equal(t, 100, end)
	})

	t.Run("Spans further apart than the window are kept whole", func(t *testing.T) {
		start, end := relationWindow(100, model.Span{Start: 5, End: 6}, model.Span{Start: 50, End: 51}, 10)
		assert.Equal(t, 5, start)
		assert.Equal(t, 51, end)
	})
}

func TestRelatedProbability(t *testing.T) {
	t.Run("Top label only", func(t *testing.T) {
		assert.InDelta(t, 0.9, relatedProbability([]pipelines.ClassificationOutput{{Label: "strat_to_lith", Score: 0.9}}), 1e-6)
		assert.InDelta(t, 0.2, relatedProbability([]pipelines.ClassificationOutput{{Label: NoRelationLabel, Score: 0.8}}), 1e-6)
	})

	t.Run("All labels sum the related mass", func(t *testing.T) {
		outputs := []pipelines.ClassificationOutput{
			{Label: NoRelationLabel, Score: 0.5},
			{Label: "strat_to_lith", Score: 0.3},
			{Label: "att_of_lith", Score: 0.2},
		}
		assert.InDelta(t, 0.5, relatedProbability(outputs), 1e-6)
	})
}
