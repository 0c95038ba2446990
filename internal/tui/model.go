// Package tui is the interactive terminal front-end over the mirror
// controller. It renders controller snapshots and turns key presses into
// controller operations; it holds no post data of its own.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"labposts/internal/mirror"
	"labposts/internal/service"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

const defaultWidth = 80

// opDoneMsg reports that a controller operation finished.
type opDoneMsg struct {
	op string
	ok bool
}

// Model is the bubbletea model for the posts list.
type Model struct {
	ctx   context.Context
	ctl   *mirror.Controller
	keys  KeyMap
	theme Theme

	state  mirror.State
	cursor int
	mode   mode
	form   form

	// confirmID is the item awaiting delete confirmation.
	confirmID int

	// busy is set from dispatch until the operation's opDoneMsg arrives.
	// The controller's own pending flag flips inside the command, so the
	// model cannot rely on a snapshot taken at dispatch time.
	busy    bool
	spinner spinner.Model

	width  int
	height int
}

// New creates a Model over ctl. Operations run with ctx.
func New(ctx context.Context, ctl *mirror.Controller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(DefaultTheme.SpinnerColor)

	return Model{
		ctx:     ctx,
		ctl:     ctl,
		keys:    DefaultKeyMap,
		theme:   DefaultTheme,
		state:   ctl.Snapshot(),
		busy:    true, // Init refreshes
		spinner: sp,
		width:   defaultWidth,
	}
}

// Init loads the list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctl *mirror.Controller, in io.Reader, out io.Writer) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	_, err := tea.NewProgram(New(ctx, ctl), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case opDoneMsg:
		m.busy = false
		m.sync()
		if m.mode == modeForm && msg.ok && (msg.op == "add" || msg.op == "edit") {
			m.mode = modeList
			if msg.op == "add" {
				m.cursor = 0
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	if m.mode == modeForm {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.ctl.DismissError()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		// Local only, so allowed while a request is in flight.
		if item, ok := m.selected(); ok {
			m.ctl.ToggleCompleted(item.ID)
			m.sync()
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(m.refreshCmd())

	case key.Matches(msg, m.keys.Add):
		draft := m.state.Draft
		m.form = newForm(0, draft.Title, draft.Description, m.width)
		m.mode = modeForm

	case key.Matches(msg, m.keys.Edit):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctl.BeginEdit(item.ID); err != nil {
			return m, nil
		}
		m.sync()
		session := m.state.EditSession
		m.form = newForm(item.ID, session.DraftTitle, session.DraftDescription, m.width)
		m.mode = modeForm

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			m.confirmID = item.ID
			m.mode = modeConfirm
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		title, description := m.form.values()
		if m.form.adding() {
			m.ctl.SetDraft(title, description)
		} else {
			m.ctl.CancelEdit()
		}
		m.sync()
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.form.switchField()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if m.busy {
			return m, nil
		}
		title, description := m.form.values()
		if m.form.adding() {
			return m.dispatch(func() tea.Msg {
				res := m.ctl.AddItem(m.ctx, title, description)
				return opDoneMsg{op: "add", ok: res.OK}
			})
		}
		m.ctl.SetEditDraft(title, description)
		return m.dispatch(func() tea.Msg {
			res := m.ctl.CommitEdit(m.ctx)
			return opDoneMsg{op: "edit", ok: res.OK}
		})
	}

	return m, m.form.update(msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirmID
		m.mode = modeList
		if m.busy {
			return m, nil
		}
		return m.dispatch(func() tea.Msg {
			res := m.ctl.RemoveItem(m.ctx, id)
			return opDoneMsg{op: "remove", ok: res.OK}
		})
	case key.Matches(msg, m.keys.Deny):
		m.mode = modeList
	}
	return m, nil
}

// dispatch marks the model busy and runs cmd alongside the spinner.
func (m Model) dispatch(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) refreshCmd() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		res := ctl.Refresh(ctx)
		return opDoneMsg{op: "refresh", ok: res.OK}
	}
}

// sync re-reads the controller state and clamps the cursor.
func (m *Model) sync() {
	m.state = m.ctl.Snapshot()
	if m.cursor >= len(m.state.Items) {
		m.cursor = len(m.state.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (service.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return service.Item{}, false
	}
	return m.state.Items[m.cursor], true
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	b.WriteString(header.Render("Posts"))
	if m.busy {
		b.WriteString("  " + m.spinner.View() + " working")
	}
	b.WriteString("\n")

	if m.state.LastError != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(m.theme.ErrorForeground).
			Background(m.theme.ErrorBackground).
			Padding(0, 1)
		b.WriteString(errStyle.Render("error: "+m.state.LastError) + " ")
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(helpLine(m.keys.Dismiss)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.viewForm())
	case modeConfirm:
		b.WriteString(m.viewConfirm())
	default:
		b.WriteString(m.viewList())
	}
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	if len(m.state.Items) == 0 {
		if m.busy {
			b.WriteString(faint.Render("Loading..."))
		} else {
			b.WriteString(faint.Render("No posts"))
		}
		b.WriteString("\n")
	}

	for i, item := range m.state.Items {
		b.WriteString(m.renderRow(item, i == m.cursor))
		b.WriteString("\n")
	}

	completed := m.state.CompletedCount()
	total := len(m.state.Items)
	b.WriteString("\n")
	b.WriteString(faint.Render(fmt.Sprintf("total %d  completed %d  in progress %d", total, completed, total-completed)))
	b.WriteString("\n")

	help := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	b.WriteString(help.Render(helpLine(m.keys.Down, m.keys.Up, m.keys.Toggle, m.keys.Add,
		m.keys.Edit, m.keys.Delete, m.keys.Refresh, m.keys.Quit)))
	return b.String()
}

func (m Model) renderRow(item service.Item, selected bool) string {
	mark := "[ ]"
	if item.Completed {
		mark = "[x]"
	}
	title := strings.ReplaceAll(item.Title, "\n", " ")
	line := fmt.Sprintf("%s #%-3d %s", mark, item.ID, title)
	if desc := strings.TrimSpace(strings.ReplaceAll(item.Description, "\n", " ")); desc != "" {
		line += "  " + desc
	}
	line = ansi.Truncate(line, max(m.width-2, 10), "…")

	style := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	if item.Completed {
		style = style.Foreground(m.theme.CompletedText).Strikethrough(true)
	}
	if selected {
		style = style.Background(m.theme.SelectedBackground).Foreground(m.theme.SelectedForeground)
		return style.Render("> " + line)
	}
	return style.Render("  " + line)
}

func (m Model) viewForm() string {
	var b strings.Builder
	title := "New post"
	if !m.form.adding() {
		title = fmt.Sprintf("Edit post #%d", m.form.targetID)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.form.title.View())
	b.WriteString("\n\n")
	b.WriteString(m.form.description.View())
	b.WriteString("\n\n")
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	b.WriteString(help.Render(helpLine(m.keys.NextField, m.keys.Save, m.keys.Cancel)))
	return b.String()
}

func (m Model) viewConfirm() string {
	label := fmt.Sprintf("#%d", m.confirmID)
	for _, item := range m.state.Items {
		if item.ID == m.confirmID {
			label = fmt.Sprintf("#%d %q", item.ID, ansi.Truncate(item.Title, 40, "…"))
			break
		}
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 2)
	return box.Render(fmt.Sprintf("Delete %s?\n\n%s", label, helpLine(m.keys.Confirm, m.keys.Deny)))
}
