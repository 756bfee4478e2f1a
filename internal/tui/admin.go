package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docsearch/internal/api"
)

const (
	actionClearSearch  = "search"
	actionClearStorage = "storage"
	actionClearAll     = "all"
	actionCreateIndex  = "index"
	actionAuth         = "auth"
)

// adminPanel gates the destructive maintenance actions behind a password.
type adminPanel struct {
	env           *env
	input         textinput.Model
	spinner       spinner.Model
	password      string
	authenticated bool
	busy          string
	// session changes on logout so late results are dropped.
	session int
	confirm confirm
	notice  notice
}

func newAdminPanel(e *env) adminPanel {
	ti := textinput.New()
	ti.Prompt = "password: "
	ti.Placeholder = "admin password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	return adminPanel{
		env:     e,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		notice:  notice{panel: panelAdmin},
	}
}

func (a *adminPanel) resize(width, _ int) {
	a.input.Width = max(10, width-16)
}

func (a *adminPanel) focus() tea.Cmd {
	if a.authenticated {
		return nil
	}
	return a.input.Focus()
}

func (a *adminPanel) blur() { a.input.Blur() }

func (a *adminPanel) modal() bool { return a.confirm.active() }

func (a *adminPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.confirm.active() {
		action, _, ok := a.confirm.answer(msg)
		if !ok {
			return nil
		}
		return a.run(action)
	}
	if !a.authenticated {
		return a.handleLoginKey(msg)
	}
	if a.busy != "" && msg.String() != "l" {
		return nil
	}
	switch msg.String() {
	case "s":
		a.confirm.ask("Delete every entry in the search index? This cannot be undone.", actionClearSearch, "")
	case "b":
		a.confirm.ask("Delete every file in blob storage? This cannot be undone.", actionClearStorage, "")
	case "a":
		a.confirm.ask("Delete both the search index and blob storage? This cannot be undone.", actionClearAll, "")
	case "i":
		return a.run(actionCreateIndex)
	case "l":
		a.logout()
		return a.input.Focus()
	}
	return nil
}

func (a *adminPanel) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd
	}
	if a.busy != "" {
		return nil
	}
	password := a.input.Value()
	if strings.TrimSpace(password) == "" {
		a.notice.fail("enter a password")
		return nil
	}
	a.password = password
	a.busy = actionAuth
	a.notice.clear()
	e, session := a.env, a.session
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return authDoneMsg{session: session, err: e.port.Authenticate(e.ctx, password)}
	})
}

func (a *adminPanel) handleAuth(msg authDoneMsg) tea.Cmd {
	if msg.session != a.session {
		return nil
	}
	a.busy = ""
	if msg.err != nil {
		a.authenticated = false
		var apiErr *api.Error
		if errors.As(msg.err, &apiErr) {
			a.notice.fail("invalid password")
		} else {
			a.notice.fail(api.Message(msg.err, "invalid password"))
		}
		return nil
	}
	a.authenticated = true
	a.input.Blur()
	return a.notice.succeed(a.env.noticeTTL, "authenticated")
}

// run starts a confirmed admin action.
func (a *adminPanel) run(action string) tea.Cmd {
	a.busy = action
	a.notice.clear()
	e, password, session := a.env, a.password, a.session
	request := func() tea.Msg {
		done := adminDoneMsg{session: session, action: action}
		switch action {
		case actionClearSearch:
			res, err := e.port.ClearSearch(e.ctx, password)
			done.err = err
			done.text = fmt.Sprintf("Search index cleared (index: %s)", res.IndexName)
		case actionClearStorage:
			res, err := e.port.ClearStorage(e.ctx, password)
			done.err = err
			done.text = fmt.Sprintf("Storage cleared (deleted files: %d)", res.DeletedCount)
		case actionClearAll:
			res, err := e.port.ClearAll(e.ctx, password)
			done.err = err
			done.text = fmt.Sprintf("All data cleared (deleted files: %d)", res.Storage.DeletedCount)
		case actionCreateIndex:
			res, err := e.port.CreateIndex(e.ctx)
			done.err = err
			done.text = "Index ready"
			if res.Message != "" {
				done.text = res.Message
			}
		}
		return done
	}
	return tea.Batch(a.spinner.Tick, request)
}

func (a *adminPanel) handleDone(msg adminDoneMsg) tea.Cmd {
	if msg.session != a.session {
		return nil
	}
	a.busy = ""
	if msg.err != nil {
		a.notice.fail(api.Message(msg.err, "clear failed"))
		return nil
	}
	return a.notice.succeed(a.env.noticeTTL, msg.text)
}

func (a *adminPanel) logout() {
	a.authenticated = false
	a.password = ""
	a.busy = ""
	a.session++
	a.input.Reset()
	a.confirm = confirm{}
	a.notice.clear()
}

func (a *adminPanel) tick(msg spinner.TickMsg) tea.Cmd {
	if a.busy == "" {
		return nil
	}
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return cmd
}

func (a *adminPanel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a adminPanel) view() string {
	var parts []string
	if !a.authenticated {
		parts = append(parts,
			headerStyle.Render("Administrator sign-in"),
			subtleStyle.Render("Enter the admin password to access maintenance actions."))
		if n := a.notice.view(); n != "" {
			parts = append(parts, n)
		}
		login := a.input.View()
		if a.busy == actionAuth {
			login = a.spinner.View() + " authenticating..."
		}
		parts = append(parts, inputBoxStyle.Render(login))
		return strings.Join(parts, "\n")
	}

	parts = append(parts, headerStyle.Render("Admin panel")+subtleStyle.Render("   l log out"))
	if n := a.notice.view(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, warnStyle.Render("The actions below cannot be undone. Check before running them."))
	rows := []struct {
		key, action, title, desc string
	}{
		{"s", actionClearSearch, "Clear search index", "drop and recreate the search index"},
		{"b", actionClearStorage, "Clear storage", "delete every file in blob storage"},
		{"a", actionClearAll, "Clear everything", "clear both the index and storage"},
		{"i", actionCreateIndex, "Create index", "create the search index if missing"},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		title := dangerStyle.Render(r.title)
		if r.action == actionCreateIndex {
			title = selectedStyle.Render(r.title)
		}
		line := fmt.Sprintf("[%s] %s  %s", r.key, title, subtleStyle.Render(r.desc))
		if a.busy == r.action {
			line += "  " + a.spinner.View() + " working..."
		}
		lines = append(lines, line)
	}
	parts = append(parts, boxStyle.Render(strings.Join(lines, "\n")))
	if a.confirm.active() {
		parts = append(parts, a.confirm.view())
	}
	return strings.Join(parts, "\n")
}
