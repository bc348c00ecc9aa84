package model

import "strings"

// Collection is a named, backend-managed group of ingested documents.
type Collection struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"collection_name"`
	OwnerID              int64  `json:"owner_id,omitempty"`
	VectorStoreSessionID string `json:"vector_store_session_id,omitempty"`
	LLMProvider          string `json:"llm_provider,omitempty"`
	LLMModel             string `json:"llm_model,omitempty"`
}

// DisplayName is the label shown for the collection in lists.
func (c Collection) DisplayName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "Untitled"
	}
	return name
}

// ModelLabel describes the answering engine the collection was processed with.
func (c Collection) ModelLabel() string {
	switch {
	case c.LLMProvider != "" && c.LLMModel != "":
		return c.LLMProvider + "/" + c.LLMModel
	case c.LLMModel != "":
		return c.LLMModel
	default:
		return c.LLMProvider
	}
}

// Insights are backend-generated summary artifacts for a collection.
type Insights struct {
	Summary            string         `json:"summary"`
	KeyConcepts        []string       `json:"key_concepts"`
	SuggestedQuestions []string       `json:"suggested_questions"`
	DocumentStats      map[string]int `json:"document_stats,omitempty"`
}

// Clone returns a deep copy so snapshots never alias live state.
func (i *Insights) Clone() *Insights {
	if i == nil {
		return nil
	}
	out := &Insights{
		Summary:            i.Summary,
		KeyConcepts:        append([]string(nil), i.KeyConcepts...),
		SuggestedQuestions: append([]string(nil), i.SuggestedQuestions...),
	}
	if i.DocumentStats != nil {
		out.DocumentStats = make(map[string]int, len(i.DocumentStats))
		for k, v := range i.DocumentStats {
			out.DocumentStats[k] = v
		}
	}
	return out
}

// TableInfo describes a table extracted from a collection's documents.
type TableInfo struct {
	TableIndex int      `json:"table_index"`
	Source     string   `json:"source"`
	Columns    []string `json:"columns"`
	RowCount   int      `json:"row_count"`
}

// LLMProvider is an answering engine the backend can process collections with.
type LLMProvider struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Models       []string `json:"models"`
	DefaultModel string   `json:"default_model"`
}
