package domain

import (
	"encoding/json"
	"time"
)

// Document is a file held in the backend's blob store.
type Document struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified Timestamp `json:"last_modified"`
}

// SearchResult is a single hit returned by the search endpoint.
type SearchResult struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FileName   string    `json:"file_name"`
	UploadDate Timestamp `json:"upload_date"`
	Score      float64   `json:"score"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions toggles retrieval for a chat request.
type ChatOptions struct {
	UseSearch   bool
	UseSemantic bool
}

type UploadResult struct {
	Success  bool   `json:"success"`
	FileName string `json:"file_name"`
	BlobURL  string `json:"blob_url"`
	DocID    string `json:"doc_id"`
}

// ReindexItem reports the outcome for one file of a reindex run.
type ReindexItem struct {
	File       string `json:"file"`
	Status     string `json:"status"`
	FileType   string `json:"file_type,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ReindexResult struct {
	Success bool          `json:"success"`
	Total   int           `json:"total"`
	Indexed int           `json:"indexed"`
	Results []ReindexItem `json:"results"`
}

// AdminResult is the common acknowledgement of admin endpoints.
type AdminResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ClearSearchResult struct {
	AdminResult
	Cleared   bool   `json:"cleared"`
	IndexName string `json:"index_name"`
}

type ClearStorageResult struct {
	AdminResult
	Cleared      bool `json:"cleared"`
	DeletedCount int  `json:"deleted_count"`
}

// Timestamp is an optional point in time. Null or unparseable values
// decode to the zero value, which callers treat as unknown.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp tries the layouts the backend is known to emit.
func ParseTimestamp(s string) Timestamp {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}
		}
	}
	return Timestamp{}
}

// Valid reports whether the timestamp carries a value.
func (t Timestamp) Valid() bool { return !t.IsZero() }

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil || s == nil {
		*t = Timestamp{}
		return nil
	}
	*t = ParseTimestamp(*s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
