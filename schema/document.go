package schema

// Document represents a text entry with optional metadata and score.
// It is the unit exchanged with vector stores across this repository.
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	// Score is optional and populated by similarity search.
	Score float32 `json:"score,omitempty"`
}

// ID returns the document identity from metadata when present.
func (d *Document) ID() string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata["id"].(string); ok {
		return v
	}
	return ""
}
