package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"docsearch/internal/api"
)

func openAdmin(t *testing.T, port *fakePort) Model {
	t.Helper()
	return send(t, newTestModel(t, port), keyMsg(tea.KeyCtrlA))
}

func login(t *testing.T, m Model, password string) Model {
	t.Helper()
	m = typeText(t, m, password)
	return send(t, m, keyMsg(tea.KeyEnter))
}

func TestAdminBlankPasswordSkipsBackend(t *testing.T) {
	port := newFakePort()
	m := openAdmin(t, port)
	m = send(t, m, keyMsg(tea.KeyEnter))
	if port.count("auth") != 0 {
		t.Errorf("auth endpoint must not be called")
	}
	if m.admin.notice.err != "enter a password" {
		t.Errorf("unexpected notice %q", m.admin.notice.err)
	}
}

func TestAdminSubmitCallsAuthOnce(t *testing.T) {
	port := newFakePort()
	m := openAdmin(t, port)
	m = typeText(t, m, "letmein")

	next, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	// a second Enter while the first request is in flight is ignored
	next, again := m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	if again != nil {
		t.Errorf("second submit should not issue a request")
	}
	m = run(t, m, cmd)

	if port.count("auth") != 1 {
		t.Fatalf("expected exactly one auth call, got %d", port.count("auth"))
	}
	if !m.admin.authenticated {
		t.Fatal("expected to be authenticated")
	}
	if m.admin.notice.ok != "authenticated" {
		t.Errorf("unexpected notice %q", m.admin.notice.ok)
	}
}

func TestAdminWrongPassword(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "guess")
	if m.admin.authenticated {
		t.Fatal("wrong password must not unlock")
	}
	if m.admin.notice.err != "invalid password" {
		t.Errorf("unexpected notice %q", m.admin.notice.err)
	}
	m = send(t, m, runes("b"))
	if port.count("clear-storage") != 0 {
		t.Errorf("locked panel must not run actions")
	}
}

func TestAdminClearStorageNeedsConfirmation(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "letmein")

	m = send(t, m, runes("b"))
	m = send(t, m, runes("n"))
	if port.count("clear-storage") != 0 {
		t.Fatal("declined clear must not reach the backend")
	}

	m = send(t, m, runes("b"))
	m = send(t, m, runes("y"))
	if port.count("clear-storage") != 1 {
		t.Fatalf("expected one clear-storage call")
	}
	if m.admin.notice.ok != "Storage cleared (deleted files: 5)" {
		t.Errorf("unexpected notice %q", m.admin.notice.ok)
	}
}

func TestAdminClearSearch(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "letmein")
	m = send(t, m, runes("s"))
	m = send(t, m, runes("y"))
	if m.admin.notice.ok != "Search index cleared (index: documents-index)" {
		t.Errorf("unexpected notice %q", m.admin.notice.ok)
	}
}

func TestAdminClearAll(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "letmein")
	m = send(t, m, runes("a"))
	m = send(t, m, runes("y"))
	if m.admin.notice.ok != "All data cleared (deleted files: 5)" {
		t.Errorf("unexpected notice %q", m.admin.notice.ok)
	}
}

func TestAdminClearAllFailure(t *testing.T) {
	port := newFakePort()
	port.clearSearchErr = &api.Error{Status: 500, Message: "index busy"}
	m := login(t, openAdmin(t, port), "letmein")
	m = send(t, m, runes("a"))
	m = send(t, m, runes("y"))
	if m.admin.notice.err != "index busy" {
		t.Errorf("unexpected error %q", m.admin.notice.err)
	}
	if port.count("clear-storage") != 0 {
		t.Errorf("storage must not be cleared after a failed index clear")
	}
}

func TestAdminCreateIndex(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "letmein")
	m = send(t, m, runes("i"))
	if port.count("create-index") != 1 || m.admin.notice.ok != "Index created" {
		t.Errorf("unexpected create-index outcome %d %q", port.count("create-index"), m.admin.notice.ok)
	}
}

func TestAdminLogout(t *testing.T) {
	port := newFakePort()
	m := login(t, openAdmin(t, port), "letmein")
	m = send(t, m, runes("l"))
	if m.admin.authenticated || m.admin.password != "" || m.admin.input.Value() != "" {
		t.Errorf("logout should reset credentials")
	}
	if m.admin.notice.ok != "" || m.admin.notice.err != "" {
		t.Errorf("logout should clear notices")
	}
}
