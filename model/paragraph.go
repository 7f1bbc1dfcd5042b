package model

// Paragraph is a unit of text plus the metadata of the preprocessing run
// it came from.
type Paragraph struct {
	PreprocessorID string `json:"preprocessor_id"`
	PaperID        string `json:"paper_id"`
	HashedText     string `json:"hashed_text"`
	WeaviateID     string `json:"weaviate_id"`
	Text           string `json:"paragraph_text"`
}

// ArticleID identifies the article a paragraph provenance entry is filed under
func (p Paragraph) ArticleID() string {
	switch {
	case p.PaperID != "":
		return p.PaperID
	case p.WeaviateID != "":
		return p.WeaviateID
	default:
		return p.HashedText
	}
}

// Identifier names the paragraph in logs and failure reports
func (p Paragraph) Identifier() string {
	switch {
	case p.WeaviateID != "":
		return p.WeaviateID
	case p.HashedText != "":
		return p.HashedText
	default:
		return p.PaperID
	}
}

// Relationship is one parent to child edge of a term tree
type Relationship struct {
	Src              string `json:"src"`
	RelationshipType string `json:"relationship_type"`
	Dst              string `json:"dst"`
}

// JustEntity is a strat term that ended up without children
type JustEntity struct {
	Entity     string `json:"entity"`
	EntityType string `json:"entity_type"`
}

// ParagraphResult is the extraction output for one paragraph
type ParagraphResult struct {
	Text          Paragraph      `json:"text"`
	Relationships []Relationship `json:"relationships"`
	JustEntities  []JustEntity   `json:"just_entities"`
}

// ParagraphFailure records a paragraph that could not be processed
type ParagraphFailure struct {
	Paragraph Paragraph
	Err       error
}
