package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubble Tea model for the TUI application. Chat is the main
// view; documents, search and admin open on top of it.
type Model struct {
	env     *env
	active  panelID
	chat    chatPanel
	docs    docsPanel
	search  searchPanel
	admin   adminPanel
	baseURL string
	width   int
	height  int
	ready   bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, port Port, opts Options) Model {
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	e := &env{ctx: ctx, port: port, noticeTTL: ttl}
	root := opts.PickerRoot
	if root == "" {
		root = "."
	}
	m := Model{
		env:     e,
		active:  panelChat,
		chat:    newChatPanel(e, opts.Chat),
		docs:    newDocsPanel(e, root, opts.WatchDir),
		search:  newSearchPanel(e, opts.SearchTop, opts.UseVector),
		admin:   newAdminPanel(e),
		baseURL: opts.BaseURL,
	}
	m.chat.focus()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and routes request results to the
// panel that issued them, whichever panel is on screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		// header, nav line, footer
		body := max(5, msg.Height-3)
		m.chat.resize(msg.Width, body)
		m.docs.resize(msg.Width, body)
		m.search.resize(msg.Width, body)
		m.admin.resize(msg.Width, body)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		cmd := tea.Batch(m.chat.tick(msg), m.docs.tick(msg), m.search.tick(msg), m.admin.tick(msg))
		return m, cmd
	case noticeExpiredMsg:
		switch msg.panel {
		case panelChat:
			m.chat.notice.expire(msg.seq)
		case panelDocuments:
			m.docs.notice.expire(msg.seq)
		case panelSearch:
			m.search.notice.expire(msg.seq)
		case panelAdmin:
			m.admin.notice.expire(msg.seq)
		}
		return m, nil
	case chatReplyMsg:
		m.chat.handleReply(msg)
		return m, nil
	case docsLoadedMsg:
		m.docs.handleLoaded(msg)
		return m, nil
	case uploadDoneMsg:
		cmd := m.docs.handleUpload(msg)
		return m, cmd
	case deleteDoneMsg:
		cmd := m.docs.handleDelete(msg)
		return m, cmd
	case reindexDoneMsg:
		cmd := m.docs.handleReindex(msg)
		return m, cmd
	case WatchedFileMsg:
		cmd := m.docs.startUpload(msg.Path)
		return m, cmd
	case searchDoneMsg:
		m.search.handleResults(msg)
		return m, nil
	case authDoneMsg:
		cmd := m.admin.handleAuth(msg)
		return m, cmd
	case adminDoneMsg:
		cmd := m.admin.handleDone(msg)
		return m, cmd
	}
	cmd := m.forward(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.modal() {
		cmd := m.activeKey(msg)
		return m, cmd
	}
	switch msg.String() {
	case "esc":
		if m.active != panelChat {
			cmd := m.switchTo(panelChat)
			return m, cmd
		}
		return m, nil
	case "ctrl+o":
		cmd := m.switchTo(panelDocuments)
		return m, cmd
	case "ctrl+f":
		cmd := m.switchTo(panelSearch)
		return m, cmd
	case "ctrl+a":
		cmd := m.switchTo(panelAdmin)
		return m, cmd
	}
	cmd := m.activeKey(msg)
	return m, cmd
}

func (m *Model) modal() bool {
	switch m.active {
	case panelDocuments:
		return m.docs.modal()
	case panelAdmin:
		return m.admin.modal()
	}
	return false
}

func (m *Model) activeKey(msg tea.KeyMsg) tea.Cmd {
	switch m.active {
	case panelDocuments:
		return m.docs.handleKey(msg)
	case panelSearch:
		return m.search.handleKey(msg)
	case panelAdmin:
		return m.admin.handleKey(msg)
	default:
		return m.chat.handleKey(msg)
	}
}

// forward passes other messages (cursor blinks, picker reads) along.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{m.docs.forward(msg)}
	switch m.active {
	case panelChat:
		cmds = append(cmds, m.chat.forward(msg))
	case panelSearch:
		cmds = append(cmds, m.search.forward(msg))
	case panelAdmin:
		cmds = append(cmds, m.admin.forward(msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) switchTo(p panelID) tea.Cmd {
	if p == m.active {
		return nil
	}
	m.chat.blur()
	m.docs.blur()
	m.search.blur()
	m.admin.blur()
	m.active = p
	switch p {
	case panelDocuments:
		return m.docs.open()
	case panelSearch:
		return m.search.focus()
	case panelAdmin:
		return m.admin.focus()
	default:
		return m.chat.focus()
	}
}

// View renders the header, the active panel and the key help.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Internal Search AI")
	if m.active == panelChat {
		header += subtleStyle.Render("  search and ask questions about internal documents")
	} else {
		header += subtleStyle.Render("  › ") + selectedStyle.Render(m.active.String()) + subtleStyle.Render("   esc back")
	}
	nav := subtleStyle.Render("ctrl+o documents · ctrl+f search · ctrl+a admin · ctrl+c quit")
	if m.baseURL != "" {
		nav += subtleStyle.Render("   backend " + m.baseURL)
	}

	var body string
	switch m.active {
	case panelDocuments:
		body = m.docs.view()
	case panelSearch:
		body = m.search.view()
	case panelAdmin:
		body = m.admin.view()
	default:
		body = m.chat.view()
	}
	return strings.Join([]string{header, nav, body}, "\n")
}
