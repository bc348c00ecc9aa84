package backend

import "violet-client/internal/model"

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UploadRequest struct {
	Files          []model.UploadFile
	CollectionName string
	LLMProvider    string
	LLMModel       string
}

type UploadResult struct {
	Collection      model.Collection       `json:"collection"`
	UploadedFiles   []string               `json:"uploaded_files"`
	ProcessingStats map[string]interface{} `json:"processing_stats,omitempty"`
	Insights        *model.Insights        `json:"insights,omitempty"`
}

type ChatRequest struct {
	CollectionID int64  `json:"collection_id"`
	Question     string `json:"question"`
	LLMProvider  string `json:"llm_provider,omitempty"`
	LLMModel     string `json:"llm_model,omitempty"`
}

type ChatAnswer struct {
	Answer  string         `json:"answer"`
	Sources []model.Source `json:"sources"`
	Type    string         `json:"type"`
}

type BulkDeleteResult struct {
	Message      string   `json:"message"`
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors,omitempty"`
}
