package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"docsearch/internal/domain"
)

func TestSearchShowsAndBrowsesResults(t *testing.T) {
	port := newFakePort()
	port.results = []domain.SearchResult{
		{ID: "1", Title: "Leave", Content: "Employees get 20 days. Carry over is capped.", FileName: "hr.pdf", Score: 0.92},
		{ID: "2", Title: "Travel", Content: "Book through the portal.", FileName: "travel.pdf", Score: 0.41},
	}
	m := send(t, newTestModel(t, port), keyMsg(tea.KeyCtrlF))
	m = typeText(t, m, "leave days")
	m = send(t, m, keyMsg(tea.KeyEnter))

	if port.count("search") != 1 {
		t.Fatalf("expected one search, got %d", port.count("search"))
	}
	if len(m.search.results) != 2 || m.search.lastQuery != "leave days" {
		t.Fatalf("unexpected state %+v", m.search.results)
	}
	m = send(t, m, keyMsg(tea.KeyDown))
	if m.search.cursor != 1 {
		t.Errorf("cursor should move down")
	}
	m = send(t, m, keyMsg(tea.KeyDown))
	if m.search.cursor != 0 {
		t.Errorf("cursor should wrap")
	}
	if !strings.Contains(m.search.renderCurrentResult(), "hr.pdf") {
		t.Errorf("current result should show the source file")
	}
}

func TestSearchVectorToggle(t *testing.T) {
	m := send(t, newTestModel(t, newFakePort()), keyMsg(tea.KeyCtrlF))
	m = send(t, m, keyMsg(tea.KeyCtrlT))
	if !m.search.useVector {
		t.Errorf("ctrl+t should enable vector search")
	}
}

func TestHighlightBestSentence(t *testing.T) {
	text := "The office opens at nine. Parking is free for staff. Lunch is at noon."
	got := highlightBestSentence(text, "staff parking")
	want := highlightStyle.Render("Parking is free for staff.")
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in %q", want, got)
	}
	if plain := highlightBestSentence(text, ""); strings.Contains(plain, "\x1b[") {
		t.Errorf("empty query should not highlight")
	}
}
