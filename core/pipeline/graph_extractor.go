package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Triplet represents a relation triplet extracted by REBEL
type Triplet struct {
	Head     string
	Relation string
	Tail     string
}

var tripletPattern = regexp.MustCompile(`<triplet>([^<]+)<subj>([^<]+)<obj>([^<]+)`)

// DefaultGraphExtractor creates a graph extractor from a REBEL model
// fine-tuned on geology relations. Triplets whose relation is not in the
// catalog are dropped.
func DefaultGraphExtractor(modelName string, catalog model.RelationCatalog) (GraphExtractFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with generation support
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextGenerationConfig{
		ModelPath: modelPath,
		Name:      "rebel-pipeline",
	}
	generationPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create REBEL pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create REBEL pipeline: %w", err)
	}

	return func(text string) ([]*model.Relation, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}

		output, err := generationPipeline.RunPipeline(context.Background(), []string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate with REBEL: %w", err)
		}

		if len(output.Responses) == 0 || output.Responses[0] == "" {
			return nil, nil
		}

		return TripletsToRelations(parseREBELOutput(output.Responses[0]), catalog), nil
	}, nil
}

// TripletsToRelations keeps the triplets with a catalogued relation and
// drops repeats of the same (head, relation, tail).
func TripletsToRelations(triplets []Triplet, catalog model.RelationCatalog) []*model.Relation {
	seen := map[model.RelationKey]bool{}
	var relations []*model.Relation
	for _, triplet := range triplets {
		relType := normalizeRelationType(triplet.Relation)
		details, ok := catalog.Lookup(relType)
		if !ok {
			continue
		}
		r := model.NewRelation(triplet.Head, relType, triplet.Tail, details)
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		relations = append(relations, r)
	}
	return relations
}

// parseREBELOutput parses REBEL model output into triplets.
// REBEL outputs format: "<triplet> head <subj> tail <obj> relation <triplet> ..."
func parseREBELOutput(generated string) []Triplet {
	generated = strings.NewReplacer("<s>", "", "</s>", "", "<pad>", "").Replace(generated)

	var triplets []Triplet
	for _, match := range tripletPattern.FindAllStringSubmatch(generated, -1) {
		head := strings.TrimSpace(match[1])
		tail := strings.TrimSpace(match[2])
		relation := strings.TrimSpace(match[3])
		if head == "" || tail == "" || relation == "" {
			continue
		}
		triplets = append(triplets, Triplet{Head: head, Relation: relation, Tail: tail})
	}

	return triplets
}

// normalizeRelationType normalizes relation names for consistency
func normalizeRelationType(relation string) string {
	normalized := strings.ToLower(strings.TrimSpace(relation))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}
