package main

import (
	"context"
	"fmt"
	"log"
	"os"

	unsupervisedkg "github.com/sarda-devesh/unsupervised-kg"
	"github.com/sarda-devesh/unsupervised-kg/core/pipeline"
	"github.com/sarda-devesh/unsupervised-kg/core/trie"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

var sampleParagraphs = []model.Paragraph{
	{
		PreprocessorID: "basic_example",
		PaperID:        "paper-galen",
		HashedText:     "galen-1",
		WeaviateID:     "00000000-0000-4000-8000-000000000001",
		Text:           "The Mount Galen Volcanics consists of basalt, andesite, dacite, and rhyolite lavas.",
	},
	{
		PreprocessorID: "basic_example",
		PaperID:        "paper-hayhook",
		HashedText:     "hayhook-1",
		WeaviateID:     "00000000-0000-4000-8000-000000000002",
		Text:           "The Hayhook Formation overlies red sandstone and grey shale.",
	},
}

var sampleTerms = map[string]string{
	"mount galen volcanics": "strat_name",
	"hayhook formation":     "strat_name",
	"basalt":                "lith",
	"andesite":              "lith",
	"dacite":                "lith",
	"rhyolite":              "lith",
	"sandstone":             "lith",
	"shale":                 "lith",
	"red":                   "att_color",
	"grey":                  "att_color",
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	config := model.DefaultConfig()
	config.Run = model.RunConfig{ExtractionPipelineID: "basic_example", ModelID: config.ScorerModel}

	terms, err := trie.FromMap(sampleTerms)
	if err != nil {
		log.Fatalf("Failed to build vocabulary: %v", err)
	}

	// Default models for tagging and relation scoring
	tagger, err := pipeline.DefaultTagger(config.TaggerModel)
	if err != nil {
		log.Fatalf("Failed to create tagger: %v", err)
	}
	scorer, err := pipeline.DefaultRelationScorer(config.ScorerModel)
	if err != nil {
		log.Fatalf("Failed to create scorer: %v", err)
	}
	p := pipeline.NewPipeline(tagger, scorer)
	p.SetCoref(pipeline.LexicalCoref(terms))

	b, err := unsupervisedkg.NewBuilder(config, terms, p)
	if err != nil {
		log.Fatalf("Failed to create builder: %v", err)
	}
	defer b.Close()

	if err := b.ConnectDatabase(dbConfig); err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	ctx := context.Background()

	fmt.Println("Extracting relations...")
	batch, err := b.ProcessParagraphs(ctx, sampleParagraphs)
	if err != nil {
		log.Fatalf("Failed to process paragraphs: %v", err)
	}
	for _, result := range batch.Results {
		fmt.Printf("\n%s\n", result.Text.Text)
		for _, rel := range result.Relationships {
			fmt.Printf("  %s -[%s]-> %s\n", rel.Src, rel.RelationshipType, rel.Dst)
		}
		for _, entity := range result.JustEntities {
			fmt.Printf("  entity %s (%s)\n", entity.Entity, entity.EntityType)
		}
	}

	if err := b.Persist(ctx, batch.Graph, b.NewRun(batch.Results)); err != nil {
		log.Fatalf("Failed to persist graph: %v", err)
	}

	// Walk the stored graph from one lithology
	fmt.Println("\nTraversing from basalt:")
	reached, err := b.Traverse(ctx, "basalt", 2, nil)
	if err != nil {
		log.Fatalf("Failed to traverse: %v", err)
	}
	for _, r := range reached {
		fmt.Printf("  %d hops: %s\n", r.Distance, r.Entity)
	}

	fmt.Println("\nKnowledge graph:")
	if err := batch.Graph.WriteJSON(os.Stdout); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}
}
