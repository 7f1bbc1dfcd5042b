package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/sarda-devesh/unsupervised-kg/core/trie"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Tokenize splits text into word and punctuation tokens with byte offsets.
// Tags are left empty and every token is its own head.
func Tokenize(text string) []model.Token {
	locs := trie.WordIndexes(text)
	tokens := make([]model.Token, 0, len(locs))
	for i, loc := range locs {
		tokens = append(tokens, model.Token{
			Text:  text[loc[0]:loc[1]],
			Head:  i,
			Start: loc[0],
			End:   loc[1],
		})
	}
	return tokens
}

// DefaultTagger creates a tagger from a part of speech token classification
// model. Dependencies are derived by AttachModifiers.
func DefaultTagger(modelName string) (TagFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "pos-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
		},
	}
	posPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create POS pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create POS pipeline: %w", err)
	}

	return func(text string) ([]model.Token, error) {
		tokens := Tokenize(text)
		if len(tokens) == 0 {
			return tokens, nil
		}

		result, err := posPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run POS tagging: %w", err)
		}

		var spans []TaggedSpan
		if len(result.Entities) > 0 {
			for _, entity := range result.Entities[0] {
				spans = append(spans, TaggedSpan{
					Start: int(entity.Start),
					End:   int(entity.End),
					Tag:   normalizeEntityType(entity.Entity),
				})
			}
		}

		AlignTags(tokens, spans)
		AttachModifiers(tokens)
		return tokens, nil
	}, nil
}

// TaggedSpan is a labelled byte range returned by a token classifier
type TaggedSpan struct {
	Start int
	End   int
	Tag   string
}

// AlignTags copies the tag of the span overlapping each token's first byte.
// Punctuation without a tag becomes PUNCT, everything else X.
func AlignTags(tokens []model.Token, spans []TaggedSpan) {
	s := 0
	for i := range tokens {
		for s < len(spans) && spans[s].End <= tokens[i].Start {
			s++
		}
		if s < len(spans) && spans[s].Start <= tokens[i].Start && tokens[i].Start < spans[s].End {
			tokens[i].POS = strings.ToUpper(spans[s].Tag)
			continue
		}
		if isPunctuation(tokens[i].Text) {
			tokens[i].POS = "PUNCT"
		} else {
			tokens[i].POS = "X"
		}
	}
}

// AttachModifiers gives tokens a shallow dependency structure. Inside a run
// of ADJ, NUM, NOUN and PROPN tokens the last noun is the head, adjectives
// become amod and other nouns compound. Everything else heads itself.
func AttachModifiers(tokens []model.Token) {
	for i := range tokens {
		tokens[i].Head = i
		tokens[i].Dep = "dep"
	}

	for i := 0; i < len(tokens); {
		if !isNominal(tokens[i].POS) {
			i++
			continue
		}
		end := i
		for end < len(tokens) && isNominal(tokens[end].POS) {
			end++
		}

		head := -1
		for j := end - 1; j >= i; j-- {
			if tokens[j].POS == "NOUN" || tokens[j].POS == "PROPN" {
				head = j
				break
			}
		}
		if head >= 0 {
			for j := i; j < end; j++ {
				if j == head {
					continue
				}
				tokens[j].Head = head
				switch tokens[j].POS {
				case "ADJ":
					tokens[j].Dep = "amod"
				case "NUM":
					tokens[j].Dep = "nummod"
				default:
					tokens[j].Dep = "compound"
				}
			}
		}
		i = end
	}
}

func isNominal(pos string) bool {
	switch pos {
	case "ADJ", "NUM", "NOUN", "PROPN":
		return true
	}
	return false
}

func isPunctuation(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return text != ""
}

// normalizeEntityType removes B- and I- prefixes from tagger labels
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
