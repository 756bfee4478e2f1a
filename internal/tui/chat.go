package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsearch/internal/api"
	"docsearch/internal/domain"
)

// chatPanel holds one chat session. History lives only in memory.
type chatPanel struct {
	env      *env
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	messages []domain.ChatMessage
	opts     domain.ChatOptions
	loading  bool
	// session invalidates replies that arrive after the history was cleared.
	session int
	notice  notice
	width   int
}

func newChatPanel(e *env, opts domain.ChatOptions) chatPanel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message (Enter to send)"
	ti.CharLimit = 0
	return chatPanel{
		env:      e,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		opts:     opts,
		notice:   notice{panel: panelChat},
	}
}

func (c *chatPanel) resize(width, height int) {
	c.width = width
	c.input.Width = max(10, width-6)
	_, fh := boxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()
	// notice + options line + input box
	reserved := 2 + 1 + ih + 1
	c.viewport.Width = max(20, width-2)
	c.viewport.Height = max(3, height-reserved-fh)
	c.refresh()
}

func (c *chatPanel) focus() tea.Cmd { return c.input.Focus() }

func (c *chatPanel) blur() { c.input.Blur() }

func (c *chatPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return c.send()
	case "ctrl+t":
		c.opts.UseSearch = !c.opts.UseSearch
		return nil
	case "ctrl+l":
		c.messages = nil
		c.loading = false
		c.session++
		c.notice.clear()
		c.refresh()
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// send appends the user message and requests a reply for the whole history.
func (c *chatPanel) send() tea.Cmd {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.loading {
		return nil
	}
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	c.input.Reset()
	c.loading = true
	c.notice.clear()
	c.refresh()

	history := append([]domain.ChatMessage(nil), c.messages...)
	opts, session, e := c.opts, c.session, c.env
	request := func() tea.Msg {
		reply, err := e.port.Chat(e.ctx, history, opts)
		return chatReplyMsg{session: session, reply: reply, err: err}
	}
	return tea.Batch(c.spinner.Tick, request)
}

func (c *chatPanel) handleReply(msg chatReplyMsg) {
	if msg.session != c.session {
		return
	}
	c.loading = false
	if msg.err != nil {
		c.notice.fail(api.Message(msg.err, "failed to get a response"))
	} else {
		c.messages = append(c.messages, msg.reply)
	}
	c.refresh()
}

func (c *chatPanel) tick(msg spinner.TickMsg) tea.Cmd {
	if !c.loading {
		return nil
	}
	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	c.refresh()
	return cmd
}

func (c *chatPanel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *chatPanel) refresh() {
	c.viewport.SetContent(c.renderHistory())
	c.viewport.GotoBottom()
}

func (c *chatPanel) renderHistory() string {
	if len(c.messages) == 0 && !c.loading {
		return strings.Join([]string{
			assistantStyle.Render("AI assistant"),
			"Ask anything about the documents you uploaded.",
			"",
			subtleStyle.Render("Examples:"),
			subtleStyle.Render("  \"Summarize the key points of this document\""),
			subtleStyle.Render("  \"Explain the expense policy in detail\""),
		}, "\n")
	}
	wrap := lipgloss.NewStyle().Width(max(20, c.viewport.Width-2))
	var b strings.Builder
	for i, m := range c.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if m.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render("AI"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(m.Content))
	}
	if c.loading {
		if len(c.messages) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(assistantStyle.Render("AI") + " " + c.spinner.View() + subtleStyle.Render(" thinking..."))
	}
	return b.String()
}

func (c chatPanel) view() string {
	rag := "off"
	if c.opts.UseSearch {
		rag = "on"
	}
	options := subtleStyle.Render("document search (RAG): ") + selectedStyle.Render(rag) +
		subtleStyle.Render("   ctrl+t toggle · ctrl+l clear chat · pgup/pgdown scroll")
	parts := []string{}
	if n := c.notice.view(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, boxStyle.Render(c.viewport.View()), options, inputBoxStyle.Render(c.input.View()))
	return strings.Join(parts, "\n")
}
