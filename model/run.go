package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is a recorded extraction run with its per-paragraph results
type Run struct {
	ID                   uuid.UUID         `json:"id"`
	RunID                string            `json:"run_id"`
	ExtractionPipelineID string            `json:"extraction_pipeline_id"`
	ModelID              string            `json:"model_id"`
	UserName             *string           `json:"user_name,omitempty"`
	Results              []ParagraphResult `json:"results"`
	Metadata             Metadata          `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// Validate checks the run metadata and that every result carries the source fields
func (r *Run) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if r.ExtractionPipelineID == "" {
		return fmt.Errorf("extraction_pipeline_id is required")
	}
	if r.ModelID == "" {
		return fmt.Errorf("model_id is required")
	}
	for i, result := range r.Results {
		text := result.Text
		missing := ""
		switch {
		case text.PreprocessorID == "":
			missing = "preprocessor_id"
		case text.PaperID == "":
			missing = "paper_id"
		case text.HashedText == "":
			missing = "hashed_text"
		case text.WeaviateID == "":
			missing = "weaviate_id"
		case text.Text == "":
			missing = "paragraph_text"
		}
		if missing != "" {
			return fmt.Errorf("result %d is missing text field %s", i, missing)
		}
	}
	return nil
}
