package model

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// HierarchyConfig lists the level prefixes from the shallowest level down.
// Aliases map extra type prefixes onto one of the level prefixes. There are
// none by default, so a proper_noun term fails its paragraph unless mapped
// with e.g. {"proper_noun": "strat"}.
type HierarchyConfig struct {
	Prefixes []string          `json:"prefixes" yaml:"prefixes"`
	Aliases  map[string]string `json:"aliases" yaml:"aliases"`
}

// IDMapsConfig points at the JSON files mapping entity names to external ids
type IDMapsConfig struct {
	Lith       string `json:"lith" yaml:"lith"`
	LithAtt    string `json:"lith_att" yaml:"lith_att"`
	StratNames string `json:"strat_names" yaml:"strat_names"`
}

// WeaviateConfig configures the paragraph source
type WeaviateConfig struct {
	Host      string `json:"host" yaml:"host"`
	Scheme    string `json:"scheme" yaml:"scheme"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	ClassName string `json:"class_name" yaml:"class_name"`
}

// IndexConfig selects the vector index over stored entity embeddings.
// An empty Type keeps the HNSW index the schema creates.
type IndexConfig struct {
	Type string `json:"type" yaml:"type"`
	// HNSW
	M              int `json:"m,omitempty" yaml:"m"`
	EfConstruction int `json:"ef_construction,omitempty" yaml:"ef_construction"`
	// IVFFlat
	Lists int `json:"lists,omitempty" yaml:"lists"`
}

const (
	IndexHNSW    = "hnsw"
	IndexIVFFlat = "ivfflat"
)

// RunConfig holds the metadata recorded with a persisted run
type RunConfig struct {
	ExtractionPipelineID string `json:"extraction_pipeline_id" yaml:"extraction_pipeline_id"`
	ModelID              string `json:"model_id" yaml:"model_id"`
	UserName             string `json:"user_name" yaml:"user_name"`
}

// Config is the extraction configuration
type Config struct {
	TermsPath     string `json:"terms_path" yaml:"terms_path"`
	TaggerModel   string `json:"tagger_model" yaml:"tagger_model"`
	ScorerModel   string `json:"scorer_model" yaml:"scorer_model"`
	RebelModel    string `json:"rebel_model,omitempty" yaml:"rebel_model"`
	EmbedderModel string `json:"embedder_model,omitempty" yaml:"embedder_model"`

	// Coref enables clustering of repeated known terms
	Coref    bool   `json:"coref" yaml:"coref"`
	Workers  int    `json:"workers" yaml:"workers"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	Hierarchy        HierarchyConfig `json:"hierarchy" yaml:"hierarchy"`
	IDMaps           IDMapsConfig    `json:"id_maps" yaml:"id_maps"`
	ResolveThreshold float64         `json:"resolve_threshold" yaml:"resolve_threshold"`
	EmbeddingDim     int             `json:"embedding_dim" yaml:"embedding_dim"`
	Weaviate         WeaviateConfig  `json:"weaviate" yaml:"weaviate"`
	Index            IndexConfig     `json:"index" yaml:"index"`
	Run              RunConfig       `json:"run" yaml:"run"`
	RelationCatalog  RelationCatalog `json:"relation_catalog,omitempty" yaml:"relation_catalog"`
}

// DefaultConfig returns a configuration that works with the published models
func DefaultConfig() Config {
	return Config{
		TermsPath:   "all_terms.csv",
		TaggerModel: "KnightsAnalytics/bert-english-uncased-finetuned-pos",
		ScorerModel: "sarda-devesh/geology-relation-scorer",
		Coref:       true,
		Workers:     4,
		LogLevel:    "info",
		Hierarchy: HierarchyConfig{
			Prefixes: []string{"strat", "lith", "att"},
		},
		ResolveThreshold: 0.2,
		EmbeddingDim:     384,
		Weaviate: WeaviateConfig{
			Scheme:    "http",
			ClassName: "Paragraph",
		},
	}
}

// LoadConfig reads a YAML file over the defaults and applies UKG_* environment overrides
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("error reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &config); err != nil {
			return config, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return config, err
	}

	return config, config.Validate()
}

// ApplyEnv overrides fields from UKG_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("UKG_TERMS_PATH"); v != "" {
		c.TermsPath = v
	}
	if v := os.Getenv("UKG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("UKG_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid UKG_WORKERS %q: %w", v, err)
		}
		c.Workers = workers
	}
	if v := os.Getenv("UKG_WEAVIATE_HOST"); v != "" {
		c.Weaviate.Host = v
	}
	if v := os.Getenv("UKG_WEAVIATE_API_KEY"); v != "" {
		c.Weaviate.APIKey = v
	}
	return nil
}

// Validate rejects configurations the extractor cannot run with
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if len(c.Hierarchy.Prefixes) == 0 {
		return fmt.Errorf("hierarchy needs at least one prefix")
	}
	switch c.Index.Type {
	case "", IndexHNSW, IndexIVFFlat:
	default:
		return fmt.Errorf("unsupported index type %q, use %s or %s", c.Index.Type, IndexHNSW, IndexIVFFlat)
	}
	for alias, target := range c.Hierarchy.Aliases {
		found := false
		for _, prefix := range c.Hierarchy.Prefixes {
			if prefix == target {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("hierarchy alias %s points at unknown prefix %s", alias, target)
		}
	}
	return nil
}

// Catalog returns the configured relation catalog merged over the default one
func (c *Config) Catalog() RelationCatalog {
	catalog := DefaultRelationCatalog()
	for relType, details := range c.RelationCatalog {
		catalog[relType] = details
	}
	return catalog
}
