package source

import (
	"encoding/json"
	"os"

	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
)

// ReadParagraphsFile reads a JSON array of paragraphs
func ReadParagraphsFile(path string) ([]model.Paragraph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read paragraphs", err)
	}

	var paragraphs []model.Paragraph
	if err := json.Unmarshal(b, &paragraphs); err != nil {
		return nil, helper.NewError("decode paragraphs "+path, err)
	}
	return paragraphs, nil
}

// WriteJSONFile writes v as indented JSON, replacing the file
func WriteJSONFile(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return helper.NewError("encode "+path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return helper.NewError("write "+path, err)
	}
	return nil
}
