package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"docsearch/internal/domain"
	"docsearch/internal/service"
)

// fakePort records every call and answers from memory.
type fakePort struct {
	mu        sync.Mutex
	calls     map[string]int
	docs      []domain.Document
	uploaded  []string
	histories [][]domain.ChatMessage
	chatOpts  []domain.ChatOptions
	results   []domain.SearchResult
	password  string

	uploadErr      error
	uploadErrs     map[string]error
	refreshErr     error
	listErr        error
	chatErr        error
	clearSearchErr error
}

func newFakePort() *fakePort {
	return &fakePort{calls: map[string]int{}, password: "letmein"}
}

func (f *fakePort) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakePort) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePort) snapshot() []domain.Document {
	return append([]domain.Document(nil), f.docs...)
}

func (f *fakePort) Documents(ctx context.Context) ([]domain.Document, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.snapshot(), nil
}

func (f *fakePort) Upload(ctx context.Context, path string) (service.UploadOutcome, error) {
	f.record("upload")
	f.mu.Lock()
	defer f.mu.Unlock()
	name := filepath.Base(path)
	if err := f.uploadErrs[name]; err != nil {
		return service.UploadOutcome{}, err
	}
	if f.uploadErr != nil {
		return service.UploadOutcome{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, name)
	f.docs = append(f.docs, domain.Document{Name: name, Size: 10})
	if f.refreshErr != nil {
		return service.UploadOutcome{FileName: name, RefreshOutcome: service.RefreshOutcome{RefreshErr: f.refreshErr}}, nil
	}
	return service.UploadOutcome{FileName: name, RefreshOutcome: service.RefreshOutcome{Documents: f.snapshot()}}, nil
}

func (f *fakePort) Delete(ctx context.Context, name string) (service.RefreshOutcome, error) {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.Document
	for _, d := range f.docs {
		if d.Name != name {
			kept = append(kept, d)
		}
	}
	f.docs = kept
	return service.RefreshOutcome{Documents: f.snapshot()}, nil
}

func (f *fakePort) Reindex(ctx context.Context) (service.ReindexOutcome, error) {
	f.record("reindex")
	f.mu.Lock()
	defer f.mu.Unlock()
	return service.ReindexOutcome{
		Result:         domain.ReindexResult{Success: true, Total: len(f.docs), Indexed: len(f.docs)},
		RefreshOutcome: service.RefreshOutcome{Documents: f.snapshot()},
	}, nil
}

func (f *fakePort) CreateIndex(ctx context.Context) (domain.AdminResult, error) {
	f.record("create-index")
	return domain.AdminResult{Success: true, Message: "Index created"}, nil
}

func (f *fakePort) Search(ctx context.Context, query string, useVector bool, top int) ([]domain.SearchResult, error) {
	f.record("search")
	return f.results, nil
}

func (f *fakePort) Chat(ctx context.Context, history []domain.ChatMessage, opts domain.ChatOptions) (domain.ChatMessage, error) {
	f.record("chat")
	f.mu.Lock()
	f.histories = append(f.histories, history)
	f.chatOpts = append(f.chatOpts, opts)
	f.mu.Unlock()
	if f.chatErr != nil {
		return domain.ChatMessage{}, f.chatErr
	}
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: "reply to " + history[len(history)-1].Content}, nil
}

func (f *fakePort) Authenticate(ctx context.Context, password string) error {
	f.record("auth")
	if password != f.password {
		return errInvalidPassword
	}
	return nil
}

func (f *fakePort) ClearSearch(ctx context.Context, password string) (domain.ClearSearchResult, error) {
	f.record("clear-search")
	if f.clearSearchErr != nil {
		return domain.ClearSearchResult{}, f.clearSearchErr
	}
	return domain.ClearSearchResult{Cleared: true, IndexName: "documents-index"}, nil
}

func (f *fakePort) ClearStorage(ctx context.Context, password string) (domain.ClearStorageResult, error) {
	f.record("clear-storage")
	return domain.ClearStorageResult{Cleared: true, DeletedCount: 5}, nil
}

func (f *fakePort) ClearAll(ctx context.Context, password string) (service.ClearAllOutcome, error) {
	f.record("clear-all")
	s, err := f.ClearSearch(ctx, password)
	if err != nil {
		return service.ClearAllOutcome{}, err
	}
	st, err := f.ClearStorage(ctx, password)
	return service.ClearAllOutcome{Search: s, Storage: st}, err
}

func newTestModel(t *testing.T, port *fakePort) Model {
	t.Helper()
	m := New(context.Background(), port, Options{
		Chat:      domain.ChatOptions{UseSearch: true},
		SearchTop: 5,
		NoticeTTL: time.Hour,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

// send feeds msg to the model and runs the resulting commands.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return run(t, next.(Model), cmd)
}

// run executes cmd and feeds request results back into the model. Timers
// (spinner ticks, cursor blinks, notice expiry) are dropped.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		next, more := m.Update(msg)
		m = run(t, next.(Model), more)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(150 * time.Millisecond):
		return nil
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case docsLoadedMsg, uploadDoneMsg, deleteDoneMsg, reindexDoneMsg,
		searchDoneMsg, chatReplyMsg, authDoneMsg, adminDoneMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return send(t, m, runes(s))
}
