package main

import (
	"io"
	"os"

	"github.com/sarda-devesh/unsupervised-kg/core/graph"
	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/spf13/cobra"
)

func runMerge(cmd *cobra.Command, args []string) error {
	merged, err := mergeFiles(args)
	if err != nil {
		return err
	}
	return writeGraph(merged, mergeOutput)
}

// mergeFiles folds the graphs of paths into one, first file first
func mergeFiles(paths []string) (*graph.KnowledgeGraph, error) {
	merged := graph.NewKnowledgeGraph()
	for _, path := range paths {
		kg, err := readGraph(path)
		if err != nil {
			return nil, err
		}
		merged.MergeWith(kg)
	}
	return merged, nil
}

func readGraph(path string) (*graph.KnowledgeGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open graph", err)
	}
	defer f.Close()
	return graph.ReadJSON(f)
}

func writeGraph(kg *graph.KnowledgeGraph, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return helper.NewError("create graph file", err)
		}
		defer f.Close()
		w = f
	}
	return kg.WriteJSON(w)
}
