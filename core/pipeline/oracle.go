package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

const (
	// NoRelationLabel is the classifier label for unrelated pairs
	NoRelationLabel = "no_relation"
	// MaxRelationWords bounds the words handed to the classifier
	MaxRelationWords = 128
)

// DefaultRelationScorer creates a scorer from a sequence classification model
// fine-tuned on marker annotated sentences. The score is the probability that
// the pair is related.
func DefaultRelationScorer(modelName string) (RelationScoreFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "relation-pipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
		},
	}
	relationPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create relation pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create relation pipeline: %w", err)
	}

	return func(tokens []model.Token, child model.Span, parent model.Span, childLevel string, parentLevel string) (float64, error) {
		input := BuildRelationInput(model.Words(tokens), child, parent, childLevel, parentLevel, MaxRelationWords)

		result, err := relationPipeline.RunPipeline([]string{input})
		if err != nil {
			return 0, fmt.Errorf("%w: %w", model.ErrOracleFailure, err)
		}
		if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
			return 0, fmt.Errorf("%w: classifier returned no labels", model.ErrOracleFailure)
		}

		return relatedProbability(result.ClassificationOutputs[0]), nil
	}, nil
}

// relatedProbability returns the probability mass outside NoRelationLabel.
// With only the top label reported the complement of a negative is used.
func relatedProbability(outputs []pipelines.ClassificationOutput) float64 {
	if len(outputs) == 1 {
		score := float64(outputs[0].Score)
		if outputs[0].Label == NoRelationLabel {
			return 1 - score
		}
		return score
	}

	related := 0.0
	for _, output := range outputs {
		if output.Label != NoRelationLabel {
			related += float64(output.Score)
		}
	}
	return related
}

// BuildRelationInput wraps the child span in subject markers and the parent
// span in object markers, each tagged with its level. When the sentence is
// longer than maxWords a window around both spans is kept.
func BuildRelationInput(words []string, child model.Span, parent model.Span, childLevel string, parentLevel string, maxWords int) string {
	start, end := 0, len(words)
	if maxWords > 0 && len(words) > maxWords {
		start, end = relationWindow(len(words), child, parent, maxWords)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i == child.Start {
			fmt.Fprintf(&b, "[SUBJ_START=%s] ", childLevel)
		}
		if i == parent.Start {
			fmt.Fprintf(&b, "[OBJ_START=%s] ", parentLevel)
		}
		b.WriteString(words[i])
		b.WriteByte(' ')
		if i == child.End-1 {
			fmt.Fprintf(&b, "[SUBJ_END=%s] ", childLevel)
		}
		if i == parent.End-1 {
			fmt.Fprintf(&b, "[OBJ_END=%s] ", parentLevel)
		}
	}
	return strings.TrimSpace(b.String())
}

// relationWindow centres a window of maxWords on the region holding both spans
func relationWindow(n int, child model.Span, parent model.Span, maxWords int) (int, int) {
	lo, hi := min(child.Start, parent.Start), max(child.End, parent.End)
	if hi-lo >= maxWords {
		return lo, hi
	}
	start := lo - (maxWords-(hi-lo))/2
	start = max(0, min(start, n-maxWords))
	return start, start + maxWords
}
