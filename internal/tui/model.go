package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	"github.com/msto63/mlang/foundation/lang"
	"github.com/msto63/mlang/internal/render"
	"github.com/msto63/mlang/pkg/core/cache"
)

// View represents the output panes of the playground
type View int

const (
	ViewTree View = iota
	ViewTokens
	ViewStats
)

var viewNames = []string{"AST", "Tokens", "Stats"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "?"
}

// Options configures the playground
type Options struct {
	Engine   *lang.Engine
	Renderer *render.Renderer
	// Cache memoizes parses; edits that return to earlier text are not parsed again
	Cache *cache.ParseCache
	// Path is where ctrl+s saves the source; empty disables saving
	Path   string
	Source string
}

// Model is the playground: an editor on top, the live parse result below
type Model struct {
	// State
	view   View
	width  int
	height int
	ready  bool
	status string

	// Components
	textarea textarea.Model
	viewport viewport.Model

	engine   *lang.Engine
	parses   *cache.ParseCache
	renderer *render.Renderer
	path     string

	// Last parse
	source string
	result *lang.Result
	err    error
}

// savedMsg reports the outcome of ctrl+s
type savedMsg struct {
	err error
}

// NewModel creates a playground model and parses the initial source
func NewModel(opts Options) (Model, error) {
	engine := opts.Engine
	if engine == nil {
		var err error
		engine, err = lang.NewEngine()
		if err != nil {
			return Model{}, err
		}
	}
	parses := opts.Cache
	if parses == nil {
		parses = cache.NewParseCache(engine, cache.DefaultConfig())
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(render.Options{Format: render.FormatTree, Color: true})
	}

	ta := textarea.New()
	ta.Placeholder = "Type mLANG source..."
	ta.CharLimit = engine.Options().MaxInputLength
	ta.ShowLineNumbers = true
	ta.SetWidth(80)
	ta.SetHeight(10)
	ta.SetValue(opts.Source)
	ta.Focus()

	m := Model{
		view:     ViewTree,
		textarea: ta,
		viewport: viewport.New(80, 10),
		engine:   engine,
		parses:   parses,
		renderer: renderer,
		path:     opts.Path,
	}
	m.reparse()

	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.view = (m.view + 1) % View(len(viewNames))
			m.updateContent()
			return m, nil

		case "ctrl+l":
			m.textarea.Reset()
			m.reparse()
			return m, nil

		case "ctrl+s":
			if m.path != "" {
				return m, m.save()
			}
			m.status = "no file to save to"
			return m, nil

		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		editorHeight := max(3, msg.Height/2-4)
		m.textarea.SetWidth(max(10, msg.Width-4))
		m.textarea.SetHeight(editorHeight)

		m.viewport.Width = max(10, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-editorHeight-9)
		m.ready = true
		m.updateContent()

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved " + m.path
		}
		return m, nil
	}

	// Update components
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.textarea.Value() != m.source {
		m.reparse()
	}

	return m, tea.Batch(cmds...)
}

// reparse runs the front end on the editor contents
func (m *Model) reparse() {
	m.source = m.textarea.Value()
	m.result, m.err = m.parses.Parse(m.source)
	m.status = ""
	m.updateContent()
}

func (m *Model) updateContent() {
	m.viewport.SetContent(m.renderOutput())
}

func (m *Model) renderOutput() string {
	if m.err != nil {
		out := m.renderer.Diagnostic(m.path, m.source, m.err)
		if m.view == ViewTokens {
			if tokens, err := m.engine.Tokenize(m.source); err == nil {
				out += "\n" + m.renderer.Tokens(tokens)
			}
		}
		return out
	}

	switch m.view {
	case ViewTokens:
		return m.renderer.Tokens(m.result.Tokens)
	case ViewStats:
		return m.renderer.Stats(m.result.Stats, m.result.Duration)
	default:
		return m.renderer.Program(m.result.Program)
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(FocusedBoxStyle.Render(m.textarea.View()))
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")
	s.WriteString(BoxStyle.Render(m.viewport.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) renderHeader() string {
	title := RenderTitle("mLANG playground")

	var state string
	if m.err != nil {
		state = StatusErrorStyle.Render("error " + string(mlerror.GetCode(m.err)))
	} else {
		state = StatusOKStyle.Render("ok")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", state)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if View(i) == m.view {
			tabs[i] = ActiveTabStyle.Render(name)
		} else {
			tabs[i] = TabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	help := "tab: switch view • ctrl+s: save • ctrl+l: clear • pgup/pgdown: scroll • esc: quit"
	if m.status != "" {
		return StatusBarStyle.Render(m.status) + " " + RenderHelp(help)
	}
	return RenderHelp(help)
}

func (m *Model) save() tea.Cmd {
	path, source := m.path, m.textarea.Value()
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(source), 0644)
		if err != nil {
			err = mlerror.Wrap(err, "failed to write source").
				WithCode(mlerror.CodeIOError).
				WithOperation("tui.save")
		}
		return savedMsg{err: err}
	}
}

// Source returns the current editor contents
func (m Model) Source() string {
	return m.source
}

// Err returns the error of the last parse, if any
func (m Model) Err() error {
	return m.err
}

// Run starts the playground on the terminal and returns the final source
func Run(opts Options) (string, error) {
	m, err := NewModel(opts)
	if err != nil {
		return "", err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return "", mlerror.Wrap(err, "playground failed").WithCode(mlerror.CodeInternal)
	}
	return final.(Model).Source(), nil
}
