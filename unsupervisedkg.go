// Package unsupervisedkg builds geology knowledge graphs from paragraphs by
// extracting typed terms, arranging them into stratigraphy, lithology and
// attribute trees and collecting the tree edges as relations.
package unsupervisedkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sarda-devesh/unsupervised-kg/core/graph"
	"github.com/sarda-devesh/unsupervised-kg/core/pipeline"
	"github.com/sarda-devesh/unsupervised-kg/core/resolve"
	"github.com/sarda-devesh/unsupervised-kg/core/tree"
	"github.com/sarda-devesh/unsupervised-kg/core/trie"
	"github.com/sarda-devesh/unsupervised-kg/database"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	loadSql "github.com/sarda-devesh/unsupervised-kg/sql"
	"golang.org/x/sync/errgroup"
)

// Builder runs the extraction pipeline over paragraphs and optionally
// persists the resulting knowledge graph.
type Builder struct {
	Config    model.Config
	Terms     *trie.Trie
	Pipeline  *pipeline.Pipeline
	Hierarchy *tree.Hierarchy
	Catalog   model.RelationCatalog
	Resolver  *resolve.Resolver // Optional
	Metrics   *Metrics
	// Database, set by ConnectDatabase
	DB        *helper.Database
	Entities  *database.EntitiesDBHandler
	Relations *database.RelationsDBHandler
	Runs      *database.RunsDBHandler
	// Logging
	log *slog.Logger
}

// BatchResult is the outcome of ProcessParagraphs. Results and Failures
// keep the input order.
type BatchResult struct {
	Results  []model.ParagraphResult
	Failures []model.ParagraphFailure
	Graph    *graph.KnowledgeGraph
}

// NewBuilder creates a builder around an already loaded vocabulary and pipeline
func NewBuilder(config model.Config, terms *trie.Trie, p *pipeline.Pipeline) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}
	if terms == nil {
		return nil, helper.NewError("create builder", fmt.Errorf("vocabulary is nil"))
	}
	if p == nil || p.Tagger == nil || p.Scorer == nil {
		return nil, helper.NewError("create builder", fmt.Errorf("pipeline needs a tagger and a scorer"))
	}

	logger := helper.NewLogger(os.Stdout, config.LogLevel)

	return &Builder{
		Config:    config,
		Terms:     terms,
		Pipeline:  p,
		Hierarchy: tree.NewHierarchy(config.Hierarchy),
		Catalog:   config.Catalog(),
		Metrics:   NewMetrics(),
		log:       logger,
	}, nil
}

// NewDefaultBuilder loads the vocabulary, the models and the id maps named in config
func NewDefaultBuilder(config model.Config) (*Builder, error) {
	terms, err := trie.LoadFile(config.TermsPath, slog.Default())
	if err != nil {
		return nil, helper.NewError("load vocabulary", err)
	}

	tagger, err := pipeline.DefaultTagger(config.TaggerModel)
	if err != nil {
		return nil, helper.NewError("create default tagger", err)
	}
	scorer, err := pipeline.DefaultRelationScorer(config.ScorerModel)
	if err != nil {
		return nil, helper.NewError("create default scorer", err)
	}

	p := pipeline.NewPipeline(tagger, scorer)
	if config.Coref {
		p.SetCoref(pipeline.LexicalCoref(terms))
	}
	if config.RebelModel != "" {
		extractor, err := pipeline.DefaultGraphExtractor(config.RebelModel, config.Catalog())
		if err != nil {
			return nil, helper.NewError("create graph extractor", err)
		}
		p.SetGraphExtractor(extractor)
	}
	if config.EmbedderModel != "" {
		embedder, err := pipeline.DefaultEmbedder(config.EmbedderModel)
		if err != nil {
			return nil, helper.NewError("create default embedder", err)
		}
		p.SetEmbedder(embedder)
	}

	b, err := NewBuilder(config, terms, p)
	if err != nil {
		return nil, err
	}

	if config.IDMaps != (model.IDMapsConfig{}) {
		resolver, err := resolve.LoadResolver(config.IDMaps)
		if err != nil {
			return nil, helper.NewError("load id maps", err)
		}
		b.Resolver = resolver
	}

	return b, nil
}

// ConnectDatabase opens the database and creates the tables used by Persist.
// A configured index type replaces the entity embedding index.
// With an embedder in the pipeline the resolver also falls back to the
// nearest stored entity.
func (b *Builder) ConnectDatabase(config *helper.DatabaseConfiguration) error {
	db := helper.NewDatabase("unsupervised-kg", config, b.log)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, b.Config.EmbeddingDim, false)
	if err != nil {
		return helper.NewError("create entities handler", err)
	}

	relations, err := database.NewRelationsDBHandler(db, false)
	if err != nil {
		return helper.NewError("create relations handler", err)
	}

	runs, err := database.NewRunsDBHandler(db, false)
	if err != nil {
		return helper.NewError("create runs handler", err)
	}

	if b.Config.Index.Type != "" {
		err = entities.RebuildIndex(context.Background(), b.Config.Index)
		if err != nil {
			return helper.NewError("apply entity index", err)
		}
	}

	b.DB = db
	b.Entities = entities
	b.Relations = relations
	b.Runs = runs

	if b.Resolver != nil && b.Pipeline.Embedder != nil {
		b.Resolver.WithVectorFallback(entities, b.Pipeline.Embedder, b.Config.ResolveThreshold)
	}
	return nil
}

// Close closes the database connection
func (b *Builder) Close() error {
	if b.DB != nil && b.DB.Instance != nil {
		return b.DB.Instance.Close()
	}
	return nil
}

// SetPipeline replaces the model capabilities
func (b *Builder) SetPipeline(p *pipeline.Pipeline) {
	b.Pipeline = p
}

// ProcessParagraph extracts the term trees of one paragraph and returns them
// flattened together with a graph holding the paragraph's relations.
// Relations from the graph extractor, if set, are added to the graph only.
func (b *Builder) ProcessParagraph(paragraph model.Paragraph) (model.ParagraphResult, *graph.KnowledgeGraph, error) {
	extractor := pipeline.NewTermExtractor(b.Terms, b.Pipeline.Tagger, b.Pipeline.Coref)
	ex, err := extractor.Extract(paragraph.Text)
	if err != nil {
		return model.ParagraphResult{}, nil, helper.NewError("extract terms", err)
	}

	forest, err := tree.NewMerger(b.Hierarchy, b.Pipeline.Scorer).Merge(ex)
	if err != nil {
		return model.ParagraphResult{}, nil, helper.NewError("merge levels", err)
	}

	result, err := tree.Flatten(ex, forest, b.Hierarchy, paragraph)
	if err != nil {
		return model.ParagraphResult{}, nil, helper.NewError("flatten", err)
	}

	kg := graph.FromParagraphResult(result, b.Catalog)

	if b.Pipeline.GraphExtractor != nil {
		relations, err := b.Pipeline.GraphExtractor(paragraph.Text)
		if err != nil {
			return model.ParagraphResult{}, nil, helper.NewError("extract graph", err)
		}
		for _, relation := range relations {
			relation.AddSource(paragraph.ArticleID(), paragraph.Text)
			kg.AddRelation(relation)
		}
	}

	return result, kg, nil
}

// ProcessParagraphs processes paragraphs on up to Config.Workers goroutines.
// A failing paragraph is recorded and skipped. The per paragraph graphs are
// merged in input order after all workers are done, so the merged graph does
// not depend on scheduling.
func (b *Builder) ProcessParagraphs(ctx context.Context, paragraphs []model.Paragraph) (*BatchResult, error) {
	type outcome struct {
		result model.ParagraphResult
		graph  *graph.KnowledgeGraph
		err    error
	}
	outcomes := make([]outcome, len(paragraphs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.Workers)

	for i, paragraph := range paragraphs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			start := time.Now()
			result, kg, err := b.ProcessParagraph(paragraph)
			b.Metrics.duration.Observe(time.Since(start).Seconds())

			outcomes[i] = outcome{result: result, graph: kg, err: err}
			return nil // Paragraph errors are recorded, not propagated
		})
	}

	if err := g.Wait(); err != nil {
		return nil, helper.NewError("process paragraphs", err)
	}

	batch := &BatchResult{
		Results:  []model.ParagraphResult{},
		Failures: []model.ParagraphFailure{},
		Graph:    graph.NewKnowledgeGraph(),
	}
	for i, o := range outcomes {
		if o.err != nil {
			b.log.Warn(
				"Skipping paragraph",
				slog.String("paragraph", paragraphs[i].Identifier()),
				slog.String("error", o.err.Error()),
			)
			b.Metrics.paragraphs.WithLabelValues("failed").Inc()
			b.Metrics.failures.WithLabelValues(failureKind(o.err)).Inc()
			batch.Failures = append(batch.Failures, model.ParagraphFailure{Paragraph: paragraphs[i], Err: o.err})
			continue
		}

		b.Metrics.paragraphs.WithLabelValues("ok").Inc()
		for _, relation := range o.graph.Relations() {
			b.Metrics.relations.WithLabelValues(relation.Type).Inc()
		}
		batch.Results = append(batch.Results, o.result)
		batch.Graph.MergeWith(o.graph)
	}

	b.log.Info(
		"Processed paragraphs",
		slog.Int("paragraphs", len(paragraphs)),
		slog.Int("failed", len(batch.Failures)),
		slog.Int("relations", batch.Graph.Len()),
	)

	return batch, nil
}

// NewRun wraps results into a run record using the configured run metadata
func (b *Builder) NewRun(results []model.ParagraphResult) *model.Run {
	run := &model.Run{
		RunID:                uuid.NewString(),
		ExtractionPipelineID: b.Config.Run.ExtractionPipelineID,
		ModelID:              b.Config.Run.ModelID,
		Results:              results,
	}
	if b.Config.Run.UserName != "" {
		userName := b.Config.Run.UserName
		run.UserName = &userName
	}
	return run
}

// Persist writes the run, every relation with its snippets and every entity
// of kg. run may be nil. Entities get an external id when the resolver
// knows them and an embedding when the pipeline has an embedder.
func (b *Builder) Persist(ctx context.Context, kg *graph.KnowledgeGraph, run *model.Run) error {
	if b.DB == nil || b.Relations == nil || b.Entities == nil || b.Runs == nil {
		return helper.NewError("persist", fmt.Errorf("database not connected, use ConnectDatabase() first"))
	}

	var runID *string
	if run != nil {
		if err := b.Runs.InsertRun(ctx, run); err != nil {
			return helper.NewError("insert run", err)
		}
		runID = &run.RunID
	}

	type entityKey struct{ name, entityType string }
	stored := make(map[entityKey]bool)
	storeEntity := func(name, entityType string) error {
		key := entityKey{name, entityType}
		if stored[key] {
			return nil
		}
		stored[key] = true
		return b.insertEntity(ctx, name, entityType)
	}

	for _, relation := range kg.Relations() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := b.Relations.InsertRelation(ctx, relation.Clone(), runID); err != nil {
			return helper.NewError(fmt.Sprintf("insert relation %v", relation.Key()), err)
		}
		b.Metrics.persisted.Inc()

		if err := storeEntity(relation.Head, relation.SrcType); err != nil {
			return err
		}
		if err := storeEntity(relation.Tail, relation.DstType); err != nil {
			return err
		}
	}

	b.log.Info("Persisted knowledge graph", slog.Int("relations", kg.Len()), slog.Int("entities", len(stored)))
	return nil
}

func (b *Builder) insertEntity(ctx context.Context, name, entityType string) error {
	entity := &model.Entity{Name: name, Type: entityType}

	if b.Resolver != nil {
		resolution, ok, err := b.Resolver.Resolve(ctx, name, entityType)
		if err != nil {
			return helper.NewError("resolve entity", err)
		}
		if ok {
			entity.ExternalID = &resolution.ExternalID
			entity.Metadata = model.Metadata{"resolved_by": resolution.Method}
		}
	}

	if b.Pipeline.Embedder != nil {
		embedding, err := b.Pipeline.Embedder(name)
		if err != nil {
			return helper.NewError("embed entity", err)
		}
		entity.Embedding = embedding
	}

	if err := b.Entities.InsertEntity(entity); err != nil {
		return helper.NewError("insert entity", err)
	}
	return nil
}

// Traverse walks the persisted relations breadth first from entity
func (b *Builder) Traverse(ctx context.Context, entity string, maxHops int, relationTypes []string) ([]*graph.TraversalResult, error) {
	if b.Relations == nil {
		return nil, helper.NewError("traverse", fmt.Errorf("database not connected, use ConnectDatabase() first"))
	}
	return graph.BFS(ctx, b.Relations, entity, maxHops, relationTypes, true)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, model.ErrTaggingFailure):
		return "tagging"
	case errors.Is(err, model.ErrOracleFailure):
		return "oracle"
	case errors.Is(err, model.ErrInvalidTermType):
		return "invalid_term_type"
	default:
		return "other"
	}
}
