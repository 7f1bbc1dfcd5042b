package pipeline

import "github.com/sarda-devesh/unsupervised-kg/model"

// TagFunc tokenizes text and tags every token with its part of speech,
// dependency label and head index.
type TagFunc func(text string) ([]model.Token, error)

// CorefFunc returns clusters of token spans that refer to the same entity
type CorefFunc func(tokens []model.Token) ([][]model.Span, error)

// RelationScoreFunc scores how likely the child span is a semantic child of
// the parent span. Only the ordering of scores matters.
type RelationScoreFunc func(tokens []model.Token, child model.Span, parent model.Span, childLevel string, parentLevel string) (float64, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// GraphExtractFunc extracts typed relations from text in a single pass.
// Used by models like REBEL that jointly extract entities and relations.
// The returned relations carry no sources.
type GraphExtractFunc func(text string) ([]*model.Relation, error)

// Pipeline bundles the model capabilities used per paragraph
type Pipeline struct {
	Tagger         TagFunc
	Scorer         RelationScoreFunc
	Coref          CorefFunc        // Optional
	GraphExtractor GraphExtractFunc // Optional - adds REBEL relations next to the term tree
	Embedder       EmbedFunc        // Optional - embeds entity names for similarity lookup
}

// NewPipeline creates a new processing pipeline
func NewPipeline(tagger TagFunc, scorer RelationScoreFunc) *Pipeline {
	return &Pipeline{
		Tagger: tagger,
		Scorer: scorer,
	}
}

// SetCoref sets the coreference function
func (p *Pipeline) SetCoref(coref CorefFunc) {
	p.Coref = coref
}

// SetGraphExtractor sets the joint relation extraction function
func (p *Pipeline) SetGraphExtractor(extractor GraphExtractFunc) {
	p.GraphExtractor = extractor
}

// SetEmbedder sets the embedding function
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// NoCoref never links any mentions
func NoCoref(tokens []model.Token) ([][]model.Span, error) {
	return nil, nil
}
