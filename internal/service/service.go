// Package service composes backend calls into the flows shared by the TUI
// and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"docsearch/internal/domain"
)

// ErrNoPassword is returned when an admin call is attempted without a password.
var ErrNoPassword = errors.New("enter a password")

// Service wraps a Backend with the multi-step client flows.
type Service struct {
	backend domain.Backend
	logger  *log.Logger
}

// New creates a Service. A nil logger discards output.
func New(backend domain.Backend, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{backend: backend, logger: logger}
}

// RefreshOutcome carries the document list fetched after a mutation.
// RefreshErr is set when the mutation succeeded but the list could not be
// loaded; Documents is nil in that case.
type RefreshOutcome struct {
	Documents  []domain.Document
	RefreshErr error
}

// UploadOutcome is the result of Upload.
type UploadOutcome struct {
	FileName string
	Result   domain.UploadResult
	RefreshOutcome
}

// ReindexOutcome is the result of Reindex.
type ReindexOutcome struct {
	Result domain.ReindexResult
	RefreshOutcome
}

// Summary is the line shown after a reindex run.
func (o ReindexOutcome) Summary() string {
	return fmt.Sprintf("Reindex complete: %d/%d files processed", o.Result.Indexed, o.Result.Total)
}

// ClearAllOutcome holds both clear results.
type ClearAllOutcome struct {
	Search  domain.ClearSearchResult
	Storage domain.ClearStorageResult
}

func (s *Service) Documents(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.backend.ListDocuments(ctx)
	if err != nil {
		s.logger.Printf("list documents: %v", err)
		return nil, err
	}
	return docs, nil
}

// Upload sends the file at path and then reloads the document list.
// The list is not fetched when the upload fails.
func (s *Service) Upload(ctx context.Context, path string) (UploadOutcome, error) {
	path = CleanDroppedPath(path)
	if path == "" {
		return UploadOutcome{}, errors.New("no file selected")
	}
	info, err := os.Stat(path)
	if err != nil {
		return UploadOutcome{}, err
	}
	if info.IsDir() {
		return UploadOutcome{}, fmt.Errorf("%s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return UploadOutcome{}, err
	}
	defer f.Close()
	return s.UploadReader(ctx, filepath.Base(path), f)
}

// UploadReader is Upload for content that is not on disk.
func (s *Service) UploadReader(ctx context.Context, name string, r io.Reader) (UploadOutcome, error) {
	res, err := s.backend.UploadDocument(ctx, name, r)
	if err != nil {
		s.logger.Printf("upload %s: %v", name, err)
		return UploadOutcome{}, err
	}
	s.logger.Printf("uploaded %s (doc %s)", name, res.DocID)
	return UploadOutcome{FileName: name, Result: res, RefreshOutcome: s.refresh(ctx)}, nil
}

// Delete removes a document and reloads the list.
func (s *Service) Delete(ctx context.Context, name string) (RefreshOutcome, error) {
	if err := s.backend.DeleteDocument(ctx, name); err != nil {
		s.logger.Printf("delete %s: %v", name, err)
		return RefreshOutcome{}, err
	}
	s.logger.Printf("deleted %s", name)
	return s.refresh(ctx), nil
}

// Reindex rebuilds the index from every stored file and reloads the list.
func (s *Service) Reindex(ctx context.Context) (ReindexOutcome, error) {
	res, err := s.backend.ReindexAll(ctx)
	if err != nil {
		s.logger.Printf("reindex: %v", err)
		return ReindexOutcome{}, err
	}
	for _, item := range res.Results {
		if item.Error != "" {
			s.logger.Printf("reindex %s: %s", item.File, item.Error)
		}
	}
	s.logger.Printf("reindexed %d/%d files", res.Indexed, res.Total)
	return ReindexOutcome{Result: res, RefreshOutcome: s.refresh(ctx)}, nil
}

func (s *Service) CreateIndex(ctx context.Context) (domain.AdminResult, error) {
	res, err := s.backend.CreateIndex(ctx)
	if err != nil {
		s.logger.Printf("create index: %v", err)
	}
	return res, err
}

func (s *Service) Search(ctx context.Context, query string, useVector bool, top int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("enter a search query")
	}
	res, err := s.backend.Search(ctx, query, useVector, top)
	if err != nil {
		s.logger.Printf("search %q: %v", query, err)
		return nil, err
	}
	return res, nil
}

// Chat sends the full history and returns the assistant reply as a message.
func (s *Service) Chat(ctx context.Context, history []domain.ChatMessage, opts domain.ChatOptions) (domain.ChatMessage, error) {
	reply, err := s.backend.Chat(ctx, history, opts)
	if err != nil {
		s.logger.Printf("chat (%d messages, search=%t): %v", len(history), opts.UseSearch, err)
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: reply}, nil
}

func (s *Service) Ask(ctx context.Context, question, contextText string) (string, error) {
	answer, err := s.backend.Ask(ctx, question, contextText)
	if err != nil {
		s.logger.Printf("question: %v", err)
	}
	return answer, err
}

func (s *Service) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	summary, err := s.backend.Summarize(ctx, text, maxLength)
	if err != nil {
		s.logger.Printf("summarize: %v", err)
	}
	return summary, err
}

// Authenticate checks the admin password. Blank passwords never reach the backend.
func (s *Service) Authenticate(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrNoPassword
	}
	if _, err := s.backend.AdminAuth(ctx, password); err != nil {
		s.logger.Printf("admin auth rejected: %v", err)
		return err
	}
	s.logger.Printf("admin authenticated")
	return nil
}

func (s *Service) ClearSearch(ctx context.Context, password string) (domain.ClearSearchResult, error) {
	res, err := s.backend.ClearSearch(ctx, password)
	if err != nil {
		s.logger.Printf("clear search: %v", err)
		return res, err
	}
	s.logger.Printf("cleared search index %s", res.IndexName)
	return res, nil
}

func (s *Service) ClearStorage(ctx context.Context, password string) (domain.ClearStorageResult, error) {
	res, err := s.backend.ClearStorage(ctx, password)
	if err != nil {
		s.logger.Printf("clear storage: %v", err)
		return res, err
	}
	s.logger.Printf("cleared storage, %d files deleted", res.DeletedCount)
	return res, nil
}

// ClearAll clears the search index and then the blob store, stopping at
// the first failure.
func (s *Service) ClearAll(ctx context.Context, password string) (ClearAllOutcome, error) {
	var out ClearAllOutcome
	var err error
	if out.Search, err = s.ClearSearch(ctx, password); err != nil {
		return out, err
	}
	if out.Storage, err = s.ClearStorage(ctx, password); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) refresh(ctx context.Context) RefreshOutcome {
	docs, err := s.Documents(ctx)
	if err != nil {
		return RefreshOutcome{RefreshErr: err}
	}
	return RefreshOutcome{Documents: docs}
}

// CleanDroppedPath normalizes a path pasted by a terminal drag and drop:
// surrounding quotes, a file:// prefix and backslash-escaped spaces.
func CleanDroppedPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	s = strings.ReplaceAll(s, `\ `, " ")
	return s
}
