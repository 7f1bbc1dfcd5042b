package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a distinct term text of a given type across all runs
type Entity struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"entity_type"`
	ExternalID *string   `json:"external_id,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EntityMatch is an entity found by similarity with its distance to the query
type EntityMatch struct {
	Entity   *Entity `json:"entity"`
	Distance float64 `json:"distance"`
}
