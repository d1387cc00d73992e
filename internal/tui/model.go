// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/themekit/internal/config"
	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/selector"
	"github.com/jmylchreest/themekit/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusOKStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Model is the main TUI model.
type Model struct {
	store        *store.Store
	controls     []selector.Control
	clipboardCmd string

	snap  model.Snapshot
	focus int

	keys     KeyMap
	help     help.Model
	showHelp bool

	refreshCh <-chan store.ChangeEvent

	statusMsg string
	statusErr bool

	width  int
	height int
}

// New creates a new TUI model. cfg may be nil.
func New(cfg *config.Config, s *store.Store) Model {
	m := Model{
		store: s,
		controls: []selector.Control{
			selector.NewThemeSelector(s),
			selector.NewHeaderSelector(s),
			selector.NewFooterSelector(s),
		},
		snap: s.Snapshot(),
		keys: DefaultKeyMap(),
		help: help.New(),
	}
	if cfg != nil {
		m.clipboardCmd = cfg.Clipboard.Command
	}

	m.refreshCh = s.Subscribe()

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return m.watchForChanges
}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	if _, ok := <-m.refreshCh; !ok {
		return storeClosedMsg{}
	}
	return refreshMsg{}
}

type refreshMsg struct{}

type storeClosedMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	what string
	err  error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.snap = m.store.Snapshot()
		return m, m.watchForChanges

	case storeClosedMsg:
		m.refreshCh = nil
		return m, tea.Quit

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, setStatus("Copied "+msg.what+" to clipboard", false)
	}

	return m, nil
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.focus = (m.focus + len(m.controls) - 1) % len(m.controls)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.focus = (m.focus + 1) % len(m.controls)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		return m.step(-1)
	case key.Matches(msg, m.keys.Next):
		return m.step(1)
	case key.Matches(msg, m.keys.First):
		return m.jump(0)
	case key.Matches(msg, m.keys.Last):
		return m.jump(-1)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySelection()
	}
	return m, nil
}

// step moves the focused control's selection by delta, wrapping at either
// end. With nothing selected it starts from the first or last option.
func (m Model) step(delta int) (tea.Model, tea.Cmd) {
	w := m.controls[m.focus].Widget()
	n := len(w.Options)
	if n == 0 {
		return m, setStatus("Nothing to choose for "+w.Name, true)
	}

	idx := w.SelectedIndex()
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = n - 1
	default:
		idx = ((idx+delta)%n + n) % n
	}
	return m.choose(w, idx)
}

// jump selects the option at idx; a negative idx counts from the end.
func (m Model) jump(idx int) (tea.Model, tea.Cmd) {
	w := m.controls[m.focus].Widget()
	n := len(w.Options)
	if n == 0 {
		return m, setStatus("Nothing to choose for "+w.Name, true)
	}
	if idx < 0 {
		idx = n + idx
	}
	return m.choose(w, idx)
}

func (m Model) choose(w selector.Widget, idx int) (tea.Model, tea.Cmd) {
	if err := m.controls[m.focus].Choose(w.Options[idx].Value); err != nil {
		if errors.Is(err, store.ErrStoreClosed) {
			return m, tea.Quit
		}
		return m, setStatus(err.Error(), true)
	}
	m.snap = m.store.Snapshot()
	return m, nil
}

// copySelection copies the focused row's current selection.
func (m Model) copySelection() tea.Cmd {
	name := m.controls[m.focus].Widget().Name
	text, ok := selectionText(m.snap, name)
	if !ok {
		return setStatus("No "+name+" selected", true)
	}
	command := m.clipboardCmd
	return func() tea.Msg {
		return copyResultMsg{what: name, err: copyText(text, command)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Theme Selectors"))
	b.WriteString("\n\n")

	for i, c := range m.controls {
		b.WriteString(m.renderRow(c.Widget(), i == m.focus))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("revision %d", m.snap.Revision)))
	b.WriteString("\n")

	if m.statusMsg != "" {
		style := statusOKStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.statusMsg))
	}
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderRow renders one control as "› Title   ‹ label ›  (i/n)".
func (m Model) renderRow(w selector.Widget, focused bool) string {
	cursor := "  "
	title := labelStyle.Render(fmt.Sprintf("%-14s", w.Title))
	if focused {
		cursor = focusStyle.Render("› ")
		title = focusStyle.Render(fmt.Sprintf("%-14s", w.Title))
	}

	return cursor + title + "  " + m.renderValue(w)
}

func (m Model) renderValue(w selector.Widget) string {
	if kind, err := model.ParseKind(w.Name); err == nil {
		if errText := loadError(m.snap, kind); errText != "" {
			return errorStyle.Render("unavailable: " + errText)
		}
		if !m.snap.Loaded(kind) {
			return mutedStyle.Render("loading…")
		}
	}

	if len(w.Options) == 0 {
		return mutedStyle.Render("none")
	}

	idx := w.SelectedIndex()
	if idx < 0 {
		return mutedStyle.Render("‹ not in list ›") +
			labelStyle.Render(fmt.Sprintf("  (-/%d)", len(w.Options)))
	}
	return valueStyle.Render("‹ "+w.Options[idx].Label+" ›") +
		labelStyle.Render(fmt.Sprintf("  (%d/%d)", idx+1, len(w.Options)))
}

func loadError(snap model.Snapshot, kind model.Kind) string {
	if kind == model.KindFooter {
		return snap.FootersErr
	}
	return snap.HeadersErr
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config *config.Config
	Store  *store.Store
}

// Run starts the TUI and blocks until the user quits, ctx is cancelled or the
// store is closed.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Store == nil {
		return errors.New("tui: store is required")
	}

	m := New(opts.Config, opts.Store)
	defer opts.Store.Unsubscribe(m.refreshCh)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
