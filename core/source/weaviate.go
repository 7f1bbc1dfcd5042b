// Package source reads paragraphs from Weaviate or from JSON files.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarda-devesh/unsupervised-kg/helper"
	"github.com/sarda-devesh/unsupervised-kg/model"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Paragraph property names in Weaviate
const (
	fieldPreprocessorID = "preprocessor_id"
	fieldPaperID        = "paper_id"
	fieldHashedText     = "hashed_text"
	fieldTextContent    = "text_content"
)

// WeaviateSource fetches preprocessed paragraphs by their Weaviate id
type WeaviateSource struct {
	client    *weaviate.Client
	className string
	logger    *slog.Logger
}

// NewWeaviateSource creates a client for the configured instance
func NewWeaviateSource(config model.WeaviateConfig, logger *slog.Logger) (*WeaviateSource, error) {
	if config.Host == "" {
		return nil, helper.NewError("weaviate configuration", fmt.Errorf("host is empty"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := weaviate.Config{
		Host:   config.Host,
		Scheme: config.Scheme,
	}
	if clientConfig.Scheme == "" {
		clientConfig.Scheme = "http"
	}
	if config.APIKey != "" {
		clientConfig.AuthConfig = auth.ApiKey{Value: config.APIKey}
	}

	client, err := weaviate.NewClient(clientConfig)
	if err != nil {
		return nil, helper.NewError("create weaviate client", err)
	}

	className := config.ClassName
	if className == "" {
		className = "Paragraph"
	}

	return &WeaviateSource{
		client:    client,
		className: className,
		logger:    logger,
	}, nil
}

// Fetch returns the paragraphs with the given ids in the order of ids.
// Ids Weaviate does not know are logged and skipped.
func (s *WeaviateSource) Fetch(ctx context.Context, ids []string) ([]model.Paragraph, error) {
	if len(ids) == 0 {
		return []model.Paragraph{}, nil
	}

	operands := make([]*filters.WhereBuilder, 0, len(ids))
	for _, id := range ids {
		operands = append(operands, filters.Where().
			WithPath([]string{"id"}).
			WithOperator(filters.Equal).
			WithValueText(id))
	}
	whereFilter := filters.Where().
		WithOperator(filters.Or).
		WithOperands(operands)

	fields := []graphql.Field{
		{Name: fieldPreprocessorID},
		{Name: fieldPaperID},
		{Name: fieldHashedText},
		{Name: fieldTextContent},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithWhere(whereFilter).
		WithLimit(len(ids)).
		Do(ctx)
	if err != nil {
		return nil, helper.NewError("weaviate get", err)
	}

	found, err := parseParagraphs(result, s.className)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Paragraph, len(found))
	for _, p := range found {
		byID[p.WeaviateID] = p
	}

	paragraphs := make([]model.Paragraph, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			s.logger.Warn("Paragraph not found in weaviate", slog.String("id", id))
			continue
		}
		paragraphs = append(paragraphs, p)
	}

	return paragraphs, nil
}

// parseParagraphs reads the Get response of a paragraph query
func parseParagraphs(result *models.GraphQLResponse, className string) ([]model.Paragraph, error) {
	if len(result.Errors) > 0 {
		return nil, helper.NewError("weaviate get", fmt.Errorf("query error: %s", result.Errors[0].Message))
	}

	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return []model.Paragraph{}, nil
	}
	objects, ok := data[className].([]interface{})
	if !ok {
		return []model.Paragraph{}, nil
	}

	paragraphs := make([]model.Paragraph, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		p := model.Paragraph{
			PreprocessorID: getString(m, fieldPreprocessorID),
			PaperID:        getString(m, fieldPaperID),
			HashedText:     getString(m, fieldHashedText),
			Text:           getString(m, fieldTextContent),
		}
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			p.WeaviateID = getString(additional, "id")
		}
		paragraphs = append(paragraphs, p)
	}

	return paragraphs, nil
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
