package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDocumentDecodeTimestamps(t *testing.T) {
	payload := `[
		{"name":"a.pdf","size":10,"last_modified":"2024-05-01T09:30:00+00:00"},
		{"name":"b.txt","size":0,"last_modified":null},
		{"name":"c.txt","size":3,"last_modified":"not a date"},
		{"name":"d.txt","size":4,"last_modified":"2024-05-01T09:30:00.123456"}
	]`
	var docs []Document
	if err := json.Unmarshal([]byte(payload), &docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 4 {
		t.Fatalf("expected 4 docs, got %d", len(docs))
	}
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	if !docs[0].LastModified.Equal(want) {
		t.Errorf("unexpected time %v", docs[0].LastModified)
	}
	if docs[1].LastModified.Valid() {
		t.Errorf("null timestamp should be invalid")
	}
	if docs[2].LastModified.Valid() {
		t.Errorf("garbage timestamp should be invalid")
	}
	if !docs[3].LastModified.Valid() {
		t.Errorf("naive timestamp should parse")
	}
}

func TestTimestampMarshalNull(t *testing.T) {
	data, err := json.Marshal(Document{Name: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"name":"x","size":0,"last_modified":null}` {
		t.Errorf("unexpected json %s", got)
	}
}
