package tui

import (
	"context"
	"time"

	"docsearch/internal/domain"
	"docsearch/internal/service"
)

// Port is the TUI-facing subset of the client service.
type Port interface {
	Documents(ctx context.Context) ([]domain.Document, error)
	Upload(ctx context.Context, path string) (service.UploadOutcome, error)
	Delete(ctx context.Context, name string) (service.RefreshOutcome, error)
	Reindex(ctx context.Context) (service.ReindexOutcome, error)
	CreateIndex(ctx context.Context) (domain.AdminResult, error)
	Search(ctx context.Context, query string, useVector bool, top int) ([]domain.SearchResult, error)
	Chat(ctx context.Context, history []domain.ChatMessage, opts domain.ChatOptions) (domain.ChatMessage, error)
	Authenticate(ctx context.Context, password string) error
	ClearSearch(ctx context.Context, password string) (domain.ClearSearchResult, error)
	ClearStorage(ctx context.Context, password string) (domain.ClearStorageResult, error)
	ClearAll(ctx context.Context, password string) (service.ClearAllOutcome, error)
}

// Options configures a new Model.
type Options struct {
	Chat       domain.ChatOptions
	SearchTop  int
	UseVector  bool
	NoticeTTL  time.Duration
	BaseURL    string
	WatchDir   string
	PickerRoot string
}

// env is shared by every panel.
type env struct {
	ctx       context.Context
	port      Port
	noticeTTL time.Duration
}

// WatchedFileMsg asks the documents panel to upload a file from the drop folder.
type WatchedFileMsg struct {
	Path string
}

type docsLoadedMsg struct {
	docs []domain.Document
	err  error
}

type uploadDoneMsg struct {
	name    string
	outcome service.UploadOutcome
	err     error
}

type deleteDoneMsg struct {
	name    string
	outcome service.RefreshOutcome
	err     error
}

type reindexDoneMsg struct {
	outcome service.ReindexOutcome
	err     error
}

type searchDoneMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

type chatReplyMsg struct {
	session int
	reply   domain.ChatMessage
	err     error
}

type authDoneMsg struct {
	session int
	err     error
}

type adminDoneMsg struct {
	session int
	action  string
	text    string
	err     error
}
