package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
	"github.com/msto63/mlang/foundation/lang"
	"github.com/msto63/mlang/internal/render"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	engine, err := lang.NewEngine(lang.Options{Logger: mllog.Discard()})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	opts.Engine = engine
	opts.Renderer = render.New(render.Options{Format: render.FormatTree})

	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModel_ParsesInitialSource(t *testing.T) {
	m := newTestModel(t, Options{Source: "LET x = 1\nPRINT x"})

	if m.Err() != nil {
		t.Fatalf("Unexpected parse error: %v", m.Err())
	}
	view := m.View()
	if !strings.Contains(view, "LetStatement x") || !strings.Contains(view, "PrintStatement") {
		t.Errorf("View should show the tree, got:\n%s", view)
	}
	if !strings.Contains(view, "ok") {
		t.Error("View should show ok status")
	}
}

func TestUpdate_ReparsesOnTyping(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("PRINT (")})
	if m.Source() != "PRINT (" {
		t.Fatalf("Expected source %q, got %q", "PRINT (", m.Source())
	}
	if !mlerror.HasCode(m.Err(), mlerror.CodeSyntax) {
		t.Errorf("Expected LANG_SYNTAX, got %v", m.Err())
	}
	if !strings.Contains(m.View(), "error[missing-terminator]") && !strings.Contains(m.View(), "error[unexpected-token]") {
		t.Errorf("View should show the diagnostic, got:\n%s", m.View())
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1)")})
	if m.Err() != nil {
		t.Errorf("Expected PRINT (1) to parse, got %v", m.Err())
	}

	// Deleting the last character returns to text parsed before
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Source() != "PRINT (" {
		t.Fatalf("Expected source %q after backspace, got %q", "PRINT (", m.Source())
	}
	if hits, _, _ := m.parses.Stats(); hits != 1 {
		t.Errorf("Expected one cache hit, got %d", hits)
	}
}

func TestUpdate_SwitchViews(t *testing.T) {
	m := newTestModel(t, Options{Source: "PRINT 42"})

	tests := []struct {
		view View
		want string
	}{
		{ViewTokens, "NUMBER"},
		{ViewStats, "1 statements"},
		{ViewTree, "IntegerLiteral"},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
			if m.view != tt.view {
				t.Fatalf("Expected view %s, got %s", tt.view, m.view)
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("Expected view to contain %q, got:\n%s", tt.want, m.View())
			}
		})
	}
}

func TestUpdate_Clear(t *testing.T) {
	m := newTestModel(t, Options{Source: "PRINT ("})
	if m.Err() == nil {
		t.Fatal("Expected initial parse error")
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.Source() != "" || m.Err() != nil {
		t.Errorf("Expected empty valid program after clear, got %q / %v", m.Source(), m.Err())
	}
}

func TestUpdate_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ml")
	m := newTestModel(t, Options{Source: "PRINT 1", Path: path})

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("Expected a save command")
	}
	m, _ = send(m, cmd())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Source not saved: %v", err)
	}
	if string(data) != "PRINT 1" {
		t.Errorf("Expected saved source %q, got %q", "PRINT 1", data)
	}
	if m.status != "saved "+path {
		t.Errorf("Unexpected status %q", m.status)
	}

	noPath := newTestModel(t, Options{Source: "PRINT 1"})
	noPath, cmd = send(noPath, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil || noPath.status != "no file to save to" {
		t.Errorf("Expected no save without a path, got status %q", noPath.status)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t, Options{})

	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestView_NotReady(t *testing.T) {
	m, err := NewModel(Options{Source: "PRINT 1"})
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	if m.View() != "Loading..." {
		t.Errorf("Expected loading view before the first resize, got %q", m.View())
	}
}
