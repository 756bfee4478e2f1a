package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docsearch/internal/api"
	"docsearch/internal/domain"
	"docsearch/internal/format"
	"docsearch/internal/service"
)

// docsPanel uploads files one at a time and manages the stored documents.
type docsPanel struct {
	env       *env
	input     textinput.Model
	picker    filepicker.Model
	picking   bool
	spinner   spinner.Model
	docs      []domain.Document
	cursor    int
	focusList bool
	uploading string
	queue     []string
	loading   bool
	deleting  bool
	reindex   bool
	confirm   confirm
	notice    notice
	watchDir  string
	height    int
}

func newDocsPanel(e *env, pickerRoot, watchDir string) docsPanel {
	ti := textinput.New()
	ti.Prompt = "file: "
	ti.Placeholder = "path to a file, or drop one onto the terminal"
	ti.CharLimit = 0

	fp := filepicker.New()
	fp.CurrentDirectory = pickerRoot
	fp.AutoHeight = false
	fp.Height = 10

	return docsPanel{
		env:      e,
		input:    ti,
		picker:   fp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		notice:   notice{panel: panelDocuments},
		watchDir: watchDir,
	}
}

func (d *docsPanel) resize(width, height int) {
	d.input.Width = max(10, width-10)
	d.height = height
	d.picker.Height = max(3, height-8)
}

func (d *docsPanel) focus() tea.Cmd {
	if d.focusList {
		return nil
	}
	return d.input.Focus()
}

func (d *docsPanel) blur() { d.input.Blur() }

// modal reports whether keys (including esc) belong to a prompt or the picker.
func (d *docsPanel) modal() bool { return d.confirm.active() || d.picking }

// open is called each time the panel is shown.
func (d *docsPanel) open() tea.Cmd {
	return tea.Batch(d.focus(), d.load())
}

func (d *docsPanel) load() tea.Cmd {
	if d.loading {
		return nil
	}
	d.loading = true
	e := d.env
	return func() tea.Msg {
		docs, err := e.port.Documents(e.ctx)
		return docsLoadedMsg{docs: docs, err: err}
	}
}

func (d *docsPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if d.confirm.active() {
		action, arg, ok := d.confirm.answer(msg)
		if !ok {
			return nil
		}
		switch action {
		case "delete":
			return d.startDelete(arg)
		case "reindex":
			return d.startReindex()
		}
		return nil
	}
	if d.picking {
		return d.updatePicker(msg)
	}
	switch msg.String() {
	case "tab", "shift+tab":
		d.focusList = !d.focusList
		if d.focusList {
			d.input.Blur()
			return nil
		}
		return d.input.Focus()
	case "ctrl+p":
		d.picking = true
		d.input.Blur()
		return d.picker.Init()
	case "ctrl+r":
		return d.askReindex()
	}
	if d.focusList {
		return d.handleListKey(msg)
	}
	if msg.String() == "enter" {
		path := d.input.Value()
		d.input.Reset()
		if strings.TrimSpace(path) == "" {
			d.notice.fail("choose a file to upload")
			return nil
		}
		return d.startUpload(path)
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *docsPanel) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if len(d.docs) > 0 {
			d.cursor = (d.cursor - 1 + len(d.docs)) % len(d.docs)
		}
	case "down", "j":
		if len(d.docs) > 0 {
			d.cursor = (d.cursor + 1) % len(d.docs)
		}
	case "r":
		return d.load()
	case "d", "delete":
		if len(d.docs) == 0 || d.deleting {
			return nil
		}
		name := d.docs[d.cursor].Name
		d.confirm.ask(fmt.Sprintf("Delete %q?", name), "delete", name)
	}
	return nil
}

func (d *docsPanel) updatePicker(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		d.picking = false
		return d.focus()
	}
	var cmd tea.Cmd
	d.picker, cmd = d.picker.Update(msg)
	if ok, path := d.picker.DidSelectFile(msg); ok {
		d.picking = false
		return tea.Batch(cmd, d.focus(), d.startUpload(path))
	}
	return cmd
}

// startUpload sends path now, or queues it behind the running upload.
func (d *docsPanel) startUpload(path string) tea.Cmd {
	path = service.CleanDroppedPath(path)
	if d.uploading != "" {
		d.queue = append(d.queue, path)
		return nil
	}
	d.notice.clear()
	return d.upload(path)
}

// upload sends path without touching the notices, so the outcome of the
// previous queued file stays visible.
func (d *docsPanel) upload(path string) tea.Cmd {
	d.uploading = filepath.Base(path)
	e, name := d.env, d.uploading
	upload := func() tea.Msg {
		out, err := e.port.Upload(e.ctx, path)
		return uploadDoneMsg{name: name, outcome: out, err: err}
	}
	return tea.Batch(d.spinner.Tick, upload)
}

func (d *docsPanel) handleUpload(msg uploadDoneMsg) tea.Cmd {
	d.uploading = ""
	var cmds []tea.Cmd
	if msg.err != nil {
		d.notice.fail(api.Message(msg.err, "upload failed"))
	} else {
		cmds = append(cmds, d.notice.succeed(d.env.noticeTTL, fmt.Sprintf("Uploaded %q and indexed it.", msg.name)))
		d.applyRefresh(msg.outcome.RefreshOutcome)
	}
	if len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		cmds = append(cmds, d.upload(next))
	}
	return tea.Batch(cmds...)
}

func (d *docsPanel) startDelete(name string) tea.Cmd {
	d.deleting = true
	d.notice.clear()
	e := d.env
	return func() tea.Msg {
		out, err := e.port.Delete(e.ctx, name)
		return deleteDoneMsg{name: name, outcome: out, err: err}
	}
}

func (d *docsPanel) handleDelete(msg deleteDoneMsg) tea.Cmd {
	d.deleting = false
	if msg.err != nil {
		d.notice.fail(api.Message(msg.err, "delete failed"))
		return nil
	}
	cmd := d.notice.succeed(d.env.noticeTTL, fmt.Sprintf("Deleted %q.", msg.name))
	d.applyRefresh(msg.outcome)
	return cmd
}

func (d *docsPanel) askReindex() tea.Cmd {
	if d.reindex {
		return nil
	}
	d.confirm.ask("Reindex every stored file? A missing index is created first.", "reindex", "")
	return nil
}

func (d *docsPanel) startReindex() tea.Cmd {
	d.reindex = true
	d.notice.clear()
	e := d.env
	return tea.Batch(d.spinner.Tick, func() tea.Msg {
		out, err := e.port.Reindex(e.ctx)
		return reindexDoneMsg{outcome: out, err: err}
	})
}

func (d *docsPanel) handleReindex(msg reindexDoneMsg) tea.Cmd {
	d.reindex = false
	if msg.err != nil {
		d.notice.fail(api.Message(msg.err, "reindex failed"))
		return nil
	}
	cmd := d.notice.succeed(d.env.noticeTTL, msg.outcome.Summary())
	d.applyRefresh(msg.outcome.RefreshOutcome)
	return cmd
}

func (d *docsPanel) handleLoaded(msg docsLoadedMsg) {
	d.loading = false
	if msg.err != nil {
		d.notice.fail(api.Message(msg.err, "failed to load documents"))
		return
	}
	d.setDocs(msg.docs)
}

// applyRefresh keeps the current list when the follow-up fetch failed.
func (d *docsPanel) applyRefresh(out service.RefreshOutcome) {
	if out.RefreshErr != nil {
		d.notice.err = api.Message(out.RefreshErr, "failed to load documents")
		return
	}
	d.setDocs(out.Documents)
}

func (d *docsPanel) setDocs(docs []domain.Document) {
	d.docs = docs
	if d.cursor >= len(d.docs) {
		d.cursor = max(0, len(d.docs)-1)
	}
}

func (d *docsPanel) busy() bool {
	return d.uploading != "" || d.reindex || d.loading
}

func (d *docsPanel) tick(msg spinner.TickMsg) tea.Cmd {
	if !d.busy() {
		return nil
	}
	var cmd tea.Cmd
	d.spinner, cmd = d.spinner.Update(msg)
	return cmd
}

func (d *docsPanel) forward(msg tea.Msg) tea.Cmd {
	if d.picking {
		return d.updatePicker(msg)
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d docsPanel) view() string {
	var parts []string
	if n := d.notice.view(); n != "" {
		parts = append(parts, n)
	}
	if d.picking {
		parts = append(parts,
			headerStyle.Render("Choose a file")+subtleStyle.Render("  enter select · esc cancel"),
			boxStyle.Render(d.picker.View()))
		return strings.Join(parts, "\n")
	}

	var upload string
	switch {
	case d.uploading != "":
		upload = d.spinner.View() + " Uploading and indexing " + selectedStyle.Render(d.uploading) + "..."
		if len(d.queue) > 0 {
			upload += subtleStyle.Render(fmt.Sprintf("  (%d queued)", len(d.queue)))
		}
	default:
		upload = d.input.View()
	}
	hint := "enter upload · ctrl+p browse · tab switch to list"
	if d.watchDir != "" {
		hint += " · drop folder: " + d.watchDir
	}
	parts = append(parts, inputBoxStyle.Render(upload), subtleStyle.Render(hint))

	header := headerStyle.Render("Uploaded files")
	switch {
	case d.loading:
		header += " " + d.spinner.View() + subtleStyle.Render(" loading...")
	case d.reindex:
		header += " " + d.spinner.View() + subtleStyle.Render(" reindexing...")
	}
	parts = append(parts, header, boxStyle.Render(d.renderList()))
	if d.confirm.active() {
		parts = append(parts, d.confirm.view())
	} else {
		parts = append(parts, subtleStyle.Render("↑/↓ select · d delete · r refresh · ctrl+r reindex"))
	}
	return strings.Join(parts, "\n")
}

func (d docsPanel) renderList() string {
	if len(d.docs) == 0 {
		return subtleStyle.Render("No files yet. Upload one above.")
	}
	rows := max(1, d.height-10)
	start := 0
	if d.cursor >= rows {
		start = d.cursor - rows + 1
	}
	end := min(len(d.docs), start+rows)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		doc := d.docs[i]
		line := fmt.Sprintf("%s  %s", doc.Name, subtleStyle.Render(format.Size(doc.Size)+" · "+format.Date(doc.LastModified)))
		if i == d.cursor && d.focusList {
			line = selectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
