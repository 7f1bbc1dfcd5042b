package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sarda-devesh/unsupervised-kg/core/source"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/spf13/cobra"
)

func runFetch(cmd *cobra.Command, args []string) error {
	config, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := helper.NewLogger(os.Stderr, config.LogLevel)

	weaviateSource, err := source.NewWeaviateSource(config.Weaviate, logger)
	if err != nil {
		return err
	}

	paragraphs, err := weaviateSource.Fetch(context.Background(), ids)
	if err != nil {
		return err
	}

	if err := source.WriteJSONFile(fetchOutput, paragraphs); err != nil {
		return err
	}
	logger.Info("Fetched paragraphs", slog.Int("requested", len(ids)), slog.Int("found", len(paragraphs)), slog.String("output", fetchOutput))
	return nil
}
