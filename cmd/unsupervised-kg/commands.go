package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath  string
	inputPath   string
	outputPath  string
	fetchOutput string
	mergeOutput string
	resultsPath string
	ids         []string
	workers     int
	persist     bool

	rootCmd = &cobra.Command{
		Use:   "unsupervised-kg",
		Short: "Build geology knowledge graphs from paragraphs",
		Long: `unsupervised-kg extracts stratigraphic names, lithologies and their
attributes from paragraphs and collects them into a knowledge graph.`,
		SilenceUsage: true,
	}

	extractCmd = &cobra.Command{
		Use:   "extract",
		Short: "Extract relations from a paragraphs file or from weaviate ids",
		RunE:  runExtract, // Defined in cmd_extract.go
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch paragraphs from weaviate into a paragraphs file",
		RunE:  runFetch, // Defined in cmd_fetch.go
	}

	mergeCmd = &cobra.Command{
		Use:   "merge [graph.json...]",
		Short: "Merge knowledge graph files in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMerge, // Defined in cmd_merge.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	extractCmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file with an array of paragraphs")
	extractCmd.Flags().StringSliceVar(&ids, "ids", nil, "Weaviate paragraph ids to extract instead of --input")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Knowledge graph output file (stdout if empty)")
	extractCmd.Flags().StringVar(&resultsPath, "results", "", "Optional file for the per paragraph results")
	extractCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of paragraphs processed concurrently")
	extractCmd.Flags().BoolVar(&persist, "persist", false, "Write the run and the graph to the database")

	fetchCmd.Flags().StringSliceVar(&ids, "ids", nil, "Weaviate paragraph ids")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "paragraphs.json", "Paragraphs output file")
	fetchCmd.MarkFlagRequired("ids")

	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Merged knowledge graph file (stdout if empty)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(mergeCmd)
}
