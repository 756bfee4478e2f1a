// Package api is the HTTP client for the document search backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsearch/internal/domain"
)

const (
	fallbackMessage       = "request failed"
	uploadFallbackMessage = "upload failed"
	requestIDHeader       = "X-Request-ID"
)

// Client talks to the backend over JSON/HTTP. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// Config configures the backend client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// NewClient creates a client for the backend rooted at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", base, err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: base, client: hc}, nil
}

var _ domain.Backend = (*Client)(nil)

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var out struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/documents", nil, &out); err != nil {
		return nil, err
	}
	if out.Documents == nil {
		out.Documents = []domain.Document{}
	}
	return out.Documents, nil
}

// UploadDocument sends r as the multipart field "file".
func (c *Client) UploadDocument(ctx context.Context, fileName string, r io.Reader) (domain.UploadResult, error) {
	var res domain.UploadResult
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return res, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return res, fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return res, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/documents/upload", &buf)
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.send(req, &res, uploadFallbackMessage)
	return res, err
}

func (c *Client) DeleteDocument(ctx context.Context, name string) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(name), nil, &out)
}

func (c *Client) Search(ctx context.Context, query string, useVector bool, top int) ([]domain.SearchResult, error) {
	body := map[string]any{"query": query, "use_vector": useVector, "top": top}
	var out struct {
		Results []domain.SearchResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/search", body, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	body := map[string]any{"text": text, "max_length": maxLength}
	var out struct {
		Summary string `json:"summary"`
	}
	err := c.do(ctx, http.MethodPost, "/ai/summarize", body, &out)
	return out.Summary, err
}

// Ask answers a single question; an empty contextText is left out of the request.
func (c *Client) Ask(ctx context.Context, question, contextText string) (string, error) {
	body := map[string]any{"question": question}
	if contextText != "" {
		body["context"] = contextText
	}
	var out struct {
		Answer string `json:"answer"`
	}
	err := c.do(ctx, http.MethodPost, "/ai/question", body, &out)
	return out.Answer, err
}

func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	body := map[string]any{
		"messages":     messages,
		"use_search":   opts.UseSearch,
		"use_semantic": opts.UseSemantic,
	}
	var out struct {
		Response string `json:"response"`
	}
	err := c.do(ctx, http.MethodPost, "/ai/chat", body, &out)
	return out.Response, err
}

func (c *Client) CreateIndex(ctx context.Context) (domain.AdminResult, error) {
	var out domain.AdminResult
	err := c.do(ctx, http.MethodPost, "/admin/create-index", nil, &out)
	return out, err
}

func (c *Client) ReindexAll(ctx context.Context) (domain.ReindexResult, error) {
	var out domain.ReindexResult
	err := c.do(ctx, http.MethodPost, "/admin/reindex-all", nil, &out)
	return out, err
}

func (c *Client) AdminAuth(ctx context.Context, password string) (domain.AdminResult, error) {
	var out domain.AdminResult
	err := c.do(ctx, http.MethodPost, "/admin/auth", passwordBody(password), &out)
	return out, err
}

func (c *Client) ClearSearch(ctx context.Context, password string) (domain.ClearSearchResult, error) {
	var out domain.ClearSearchResult
	err := c.do(ctx, http.MethodPost, "/admin/clear-search", passwordBody(password), &out)
	return out, err
}

func (c *Client) ClearStorage(ctx context.Context, password string) (domain.ClearStorageResult, error) {
	var out domain.ClearStorageResult
	err := c.do(ctx, http.MethodPost, "/admin/clear-storage", passwordBody(password), &out)
	return out, err
}

func passwordBody(password string) map[string]string {
	return map[string]string{"password": password}
}

// do sends a JSON request (body may be nil) and decodes the reply into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out, fallbackMessage)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) send(req *http.Request, out any, fallback string) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return newError(resp.StatusCode, payload, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
