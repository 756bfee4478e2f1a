package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type panelID int

const (
	panelChat panelID = iota
	panelDocuments
	panelSearch
	panelAdmin
)

func (p panelID) String() string {
	switch p {
	case panelDocuments:
		return "Documents"
	case panelSearch:
		return "Search"
	case panelAdmin:
		return "Admin"
	default:
		return "Chat"
	}
}

type noticeExpiredMsg struct {
	panel panelID
	seq   int
}

// notice is the inline error/success area of a panel. Success text expires
// after a delay; errors stay until the next action.
type notice struct {
	panel panelID
	err   string
	ok    string
	seq   int
}

func (n *notice) clear() {
	n.err, n.ok = "", ""
	n.seq++
}

func (n *notice) fail(msg string) {
	n.ok = ""
	n.err = msg
}

func (n *notice) succeed(ttl time.Duration, msg string) tea.Cmd {
	n.err = ""
	n.ok = msg
	n.seq++
	seq, panel := n.seq, n.panel
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return noticeExpiredMsg{panel: panel, seq: seq}
	})
}

func (n *notice) expire(seq int) {
	if seq == n.seq {
		n.ok = ""
	}
}

func (n notice) view() string {
	var lines []string
	if n.err != "" {
		lines = append(lines, errorStyle.Render("✗ "+n.err))
	}
	if n.ok != "" {
		lines = append(lines, successStyle.Render("✓ "+n.ok))
	}
	return strings.Join(lines, "\n")
}

// confirm is a y/n prompt guarding a destructive action. It records the
// action by name so the answer is applied to the current panel state.
type confirm struct {
	prompt string
	action string
	arg    string
}

func (c *confirm) active() bool { return c.action != "" }

func (c *confirm) ask(prompt, action, arg string) {
	c.prompt, c.action, c.arg = prompt, action, arg
}

// answer consumes the key replying to the prompt. Only "y" confirms.
func (c *confirm) answer(msg tea.KeyMsg) (action, arg string, ok bool) {
	action, arg = c.action, c.arg
	c.prompt, c.action, c.arg = "", "", ""
	switch msg.String() {
	case "y", "Y":
		return action, arg, true
	}
	return "", "", false
}

func (c confirm) view() string {
	if !c.active() {
		return ""
	}
	return warnStyle.Render(c.prompt + "  [y/N]")
}
