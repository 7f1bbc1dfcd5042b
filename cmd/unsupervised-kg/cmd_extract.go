package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	unsupervisedkg "github.com/sarda-devesh/unsupervised-kg"
	"github.com/sarda-devesh/unsupervised-kg/core/source"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/spf13/cobra"
)

func runExtract(cmd *cobra.Command, args []string) error {
	config, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		config.Workers = workers
	}
	logger := helper.NewLogger(os.Stderr, config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paragraphs, err := loadParagraphs(ctx, config, logger)
	if err != nil {
		return err
	}

	builder, err := unsupervisedkg.NewDefaultBuilder(config)
	if err != nil {
		return err
	}
	defer builder.Close()

	batch, err := builder.ProcessParagraphs(ctx, paragraphs)
	if err != nil {
		return err
	}
	for _, failure := range batch.Failures {
		logger.Error("Paragraph failed", slog.String("paragraph", failure.Paragraph.Identifier()), slog.String("error", failure.Err.Error()))
	}

	if resultsPath != "" {
		if err := source.WriteJSONFile(resultsPath, batch.Results); err != nil {
			return err
		}
	}

	if err := writeGraph(batch.Graph, outputPath); err != nil {
		return err
	}

	if persist {
		dbConfig, err := helper.NewDatabaseConfiguration()
		if err != nil {
			return err
		}
		if err := builder.ConnectDatabase(dbConfig); err != nil {
			return err
		}
		if err := builder.Persist(ctx, batch.Graph, builder.NewRun(batch.Results)); err != nil {
			return err
		}
	}

	logger.Info(
		"Extraction finished",
		slog.Int("paragraphs", len(paragraphs)),
		slog.Int("failed", len(batch.Failures)),
		slog.Int("relations", batch.Graph.Len()),
	)
	return nil
}

func loadParagraphs(ctx context.Context, config model.Config, logger *slog.Logger) ([]model.Paragraph, error) {
	switch {
	case len(ids) > 0:
		weaviateSource, err := source.NewWeaviateSource(config.Weaviate, logger)
		if err != nil {
			return nil, err
		}
		return weaviateSource.Fetch(ctx, ids)
	case inputPath != "":
		return source.ReadParagraphsFile(inputPath)
	default:
		return nil, fmt.Errorf("either --input or --ids is required")
	}
}
