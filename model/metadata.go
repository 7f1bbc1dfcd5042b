package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/sarda-devesh/unsupervised-kg/helper"
)

// Metadata represents JSONB metadata stored in PostgreSQL
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case Metadata:
		*m = v
		return nil
	case string:
		return json.Unmarshal([]byte(v), m)
	case []byte:
		return json.Unmarshal(v, m)
	default:
		return helper.NewError("metadata scan", errors.New("unsupported metadata column type"))
	}
}

// With returns a copy of m with key set to value
func (m Metadata) With(key string, value interface{}) Metadata {
	c := make(Metadata, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	c[key] = value
	return c
}
