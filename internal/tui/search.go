package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsearch/internal/api"
	"docsearch/internal/domain"
	"docsearch/internal/format"
)

// searchPanel runs keyword or vector searches against the index.
type searchPanel struct {
	env       *env
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	results   []domain.SearchResult
	cursor    int
	lastQuery string
	useVector bool
	top       int
	loading   bool
	searched  bool
	notice    notice
}

func newSearchPanel(e *env, top int, useVector bool) searchPanel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter"
	ti.CharLimit = 0
	if top <= 0 {
		top = 5
	}
	return searchPanel{
		env:       e,
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		useVector: useVector,
		top:       top,
		notice:    notice{panel: panelSearch},
	}
}

func (s *searchPanel) resize(width, height int) {
	_, rh := boxStyle.GetFrameSize()
	_, qh := inputBoxStyle.GetFrameSize()
	reserved := 2 + 1 + qh + 1
	s.input.Width = max(10, width-6)
	s.viewport.Width = max(20, width-2)
	s.viewport.Height = max(3, height-reserved-rh)
	s.viewport.SetContent(s.renderCurrentResult())
}

func (s *searchPanel) focus() tea.Cmd { return s.input.Focus() }

func (s *searchPanel) blur() { s.input.Blur() }

func (s *searchPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		q := strings.TrimSpace(s.input.Value())
		if q == "" || s.loading {
			return nil
		}
		s.loading = true
		s.results = nil
		s.cursor = 0
		s.notice.clear()
		s.viewport.SetContent(s.renderCurrentResult())
		e, useVector, top := s.env, s.useVector, s.top
		return tea.Batch(s.spinner.Tick, func() tea.Msg {
			res, err := e.port.Search(e.ctx, q, useVector, top)
			return searchDoneMsg{query: q, results: res, err: err}
		})
	case "ctrl+t":
		s.useVector = !s.useVector
		return nil
	case "down":
		if len(s.results) > 0 {
			s.cursor = (s.cursor + 1) % len(s.results)
			s.viewport.SetContent(s.renderCurrentResult())
		}
		return nil
	case "up":
		if len(s.results) > 0 {
			s.cursor = (s.cursor - 1 + len(s.results)) % len(s.results)
			s.viewport.SetContent(s.renderCurrentResult())
		}
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *searchPanel) handleResults(msg searchDoneMsg) {
	s.loading = false
	s.searched = true
	s.lastQuery = msg.query
	if msg.err != nil {
		s.notice.fail(api.Message(msg.err, "search failed"))
		s.results = nil
	} else {
		s.results = msg.results
	}
	s.cursor = 0
	s.viewport.SetContent(s.renderCurrentResult())
	s.viewport.GotoTop()
}

func (s *searchPanel) tick(msg spinner.TickMsg) tea.Cmd {
	if !s.loading {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *searchPanel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s searchPanel) view() string {
	mode := "keyword"
	if s.useVector {
		mode = "vector"
	}
	status := subtleStyle.Render("mode: ") + selectedStyle.Render(mode) +
		subtleStyle.Render(fmt.Sprintf("   top %d · ctrl+t toggle mode · ↑/↓ browse results", s.top))
	if s.loading {
		status = s.spinner.View() + " searching..."
	} else if s.searched && len(s.results) > 0 {
		status = successStyle.Render(fmt.Sprintf("%d results for %q", len(s.results), s.lastQuery)) + "   " + status
	}
	var parts []string
	if n := s.notice.view(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, boxStyle.Render(s.viewport.View()), status, inputBoxStyle.Render(s.input.View()))
	return strings.Join(parts, "\n")
}

func (s searchPanel) renderCurrentResult() string {
	if len(s.results) == 0 {
		if s.searched && !s.loading {
			return "No results."
		}
		return "No results yet."
	}
	r := s.results[s.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.3f", s.cursor+1, len(s.results), r.Score)
	meta := subtleStyle.Render(fmt.Sprintf("%s · uploaded %s", r.FileName, format.Date(r.UploadDate)))
	heading := selectedStyle.Render(r.Title)
	body := lipgloss.NewStyle().Width(max(20, s.viewport.Width-2)).Render(highlightBestSentence(r.Content, s.lastQuery))
	return title + "\n" + heading + "\n" + meta + "\n\n" + body
}
