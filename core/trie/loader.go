package trie

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// LoadCSV builds a trie from term,term_type rows. A header row is skipped.
// Duplicate terms are logged and the later row wins.
func LoadCSV(r io.Reader, logger *slog.Logger) (*Trie, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	t := New()
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, helper.NewError("read terms", err)
		}
		line++

		if len(record) < 2 {
			return nil, helper.NewError("read terms", fmt.Errorf("line %d: expected term and term_type", line))
		}
		term, label := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if line == 1 && term == "term" && label == "term_type" {
			continue
		}
		if term == "" || label == "" {
			continue
		}

		err = t.InsertTerm(term, label)
		if errors.Is(err, model.ErrDuplicateTrieInsertion) {
			logger.Warn("Duplicate term in vocabulary", slog.Int("line", line), slog.String("error", err.Error()))
		} else if err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert line %d", line), err)
		}
	}

	logger.Info("Loaded term vocabulary", slog.Int("terms", t.Len()))

	return t, nil
}

// LoadFile reads a term,term_type CSV file
func LoadFile(path string, logger *slog.Logger) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open terms file", err)
	}
	defer f.Close()

	return LoadCSV(f, logger)
}

// FromMap builds a trie from term to label pairs
func FromMap(terms map[string]string) (*Trie, error) {
	t := New()
	for term, label := range terms {
		if err := t.InsertTerm(term, label); err != nil && !errors.Is(err, model.ErrDuplicateTrieInsertion) {
			return nil, err
		}
	}
	return t, nil
}
