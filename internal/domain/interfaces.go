package domain

import (
	"context"
	"io"
)

// DocumentStore covers the document endpoints.
type DocumentStore interface {
	ListDocuments(ctx context.Context) ([]Document, error)
	UploadDocument(ctx context.Context, fileName string, r io.Reader) (UploadResult, error)
	DeleteDocument(ctx context.Context, name string) error
}

// Searcher queries the backend search index.
type Searcher interface {
	Search(ctx context.Context, query string, useVector bool, top int) ([]SearchResult, error)
}

// Assistant covers the language model endpoints.
type Assistant interface {
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
	Ask(ctx context.Context, question, contextText string) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}

// Admin covers index maintenance and the password protected endpoints.
type Admin interface {
	CreateIndex(ctx context.Context) (AdminResult, error)
	ReindexAll(ctx context.Context) (ReindexResult, error)
	AdminAuth(ctx context.Context, password string) (AdminResult, error)
	ClearSearch(ctx context.Context, password string) (ClearSearchResult, error)
	ClearStorage(ctx context.Context, password string) (ClearStorageResult, error)
}

// Backend is the full remote API consumed by the client.
type Backend interface {
	DocumentStore
	Searcher
	Assistant
	Admin
}
