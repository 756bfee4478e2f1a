package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"

	"docsearch/internal/api"
	"docsearch/internal/config"
	"docsearch/internal/service"
)

type hits struct {
	mu sync.Mutex
	n  map[string]int
}

func (h *hits) add(k string) {
	h.mu.Lock()
	h.n[k]++
	h.mu.Unlock()
}

func (h *hits) get(k string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n[k]
}

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, *hits) {
	t.Helper()
	color.NoColor = true
	h := &hits{n: map[string]int{}}
	r := chi.NewRouter()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	r.Get("/documents", func(w http.ResponseWriter, r *http.Request) {
		h.add("list")
		reply(w, http.StatusOK, map[string]any{"documents": []map[string]any{{"name": "policy.pdf", "size": 1536, "last_modified": nil}}})
	})
	r.Post("/admin/auth", func(w http.ResponseWriter, r *http.Request) {
		h.add("auth")
		var body struct{ Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "pw" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid password"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Post("/admin/clear-search", func(w http.ResponseWriter, r *http.Request) {
		h.add("clear-search")
		reply(w, http.StatusOK, map[string]any{"success": true, "index_name": "idx"})
	})
	r.Post("/admin/clear-storage", func(w http.ResponseWriter, r *http.Request) {
		h.add("clear-storage")
		reply(w, http.StatusOK, map[string]any{"success": true, "deleted_count": 3})
	})
	r.Post("/admin/reindex-all", func(w http.ResponseWriter, r *http.Request) {
		h.add("reindex")
		reply(w, http.StatusOK, map[string]any{"success": true, "total": 2, "indexed": 2, "results": []map[string]any{
			{"file": "policy.pdf", "status": "indexed"},
			{"file": "notes.txt", "status": "indexed"},
		}})
	})
	r.Post("/ai/chat", func(w http.ResponseWriter, r *http.Request) {
		h.add("chat")
		var body struct {
			Messages []map[string]string `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		reply(w, http.StatusOK, map[string]string{"response": "seen " + strings.Repeat("m", len(body.Messages))})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	return &app{svc: service.New(client, nil), cfg: cfg, in: strings.NewReader(stdin), out: out}, out, h
}

func TestListPrintsDocuments(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	if err := a.run(context.Background(), "ls", nil); err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out.String(), "policy.pdf") || !strings.Contains(out.String(), "1.5 KB") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestClearAllAbortsWithoutConfirmation(t *testing.T) {
	a, _, h := newTestApp(t, "n\n")
	err := a.run(context.Background(), "clear-all", []string{"-password", "pw"})
	if err != errAborted {
		t.Fatalf("expected abort, got %v", err)
	}
	if h.get("auth") != 1 || h.get("clear-search") != 0 || h.get("clear-storage") != 0 {
		t.Errorf("nothing should be cleared: %v", h.n)
	}
}

func TestClearAllConfirmed(t *testing.T) {
	a, out, h := newTestApp(t, "yes\n")
	if err := a.run(context.Background(), "clear-all", []string{"-password", "pw"}); err != nil {
		t.Fatalf("clear-all: %v", err)
	}
	if h.get("clear-search") != 1 || h.get("clear-storage") != 1 {
		t.Errorf("both stores should be cleared: %v", h.n)
	}
	if !strings.Contains(out.String(), "All data cleared (deleted files: 3)") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestClearRejectsWrongPassword(t *testing.T) {
	a, _, h := newTestApp(t, "")
	err := a.run(context.Background(), "clear-storage", []string{"-password", "nope", "-yes"})
	if err == nil || err.Error() != "invalid password" {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if h.get("clear-storage") != 0 {
		t.Errorf("storage must not be cleared")
	}
}

func TestChatKeepsHistory(t *testing.T) {
	a, out, h := newTestApp(t, "hello\n\nsecond\n/exit\n")
	if err := a.run(context.Background(), "chat", nil); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if h.get("chat") != 2 {
		t.Fatalf("expected 2 chat calls, got %d", h.get("chat"))
	}
	// second request carries user, assistant, user
	if !strings.Contains(out.String(), "seen mmm") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	if err := a.run(context.Background(), "frobnicate", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("a  b\n c", 10); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := excerpt("abcdef", 3); got != "abc…" {
		t.Errorf("got %q", got)
	}
}

func TestReindexYesSkipsPrompt(t *testing.T) {
	a, out, h := newTestApp(t, "")
	if err := a.run(context.Background(), "reindex", []string{"-yes"}); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if h.get("reindex") != 1 {
		t.Errorf("expected one reindex call, got %d", h.get("reindex"))
	}
	if !strings.Contains(out.String(), "Reindex complete: 2/2 files processed") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestReindexAbortsWithoutConfirmation(t *testing.T) {
	a, _, h := newTestApp(t, "n\n")
	if err := a.run(context.Background(), "reindex", nil); err != errAborted {
		t.Fatalf("expected abort, got %v", err)
	}
	if h.get("reindex") != 0 {
		t.Errorf("reindex must not run without confirmation")
	}
}
