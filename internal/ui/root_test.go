package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/storage"
	"github.com/dori/kanbo/internal/ui/theme"
	"github.com/dori/kanbo/internal/ui/views"
)

type recordingApplier struct {
	applied []model.Settings
}

func (r *recordingApplier) ApplySettings(s model.Settings) {
	r.applied = append(r.applied, s)
}

func newRoot(t *testing.T) (RootModel, *board.Session, *storage.Repository, *recordingApplier) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := storage.NewRepository(storage.NewMemoryStore(), logger)
	s := board.Open(context.Background(), repo, model.Identity{UserID: "u1", Name: "Uma"}, board.WithLogger(logger))

	applier := &recordingApplier{}
	m := NewRootModel(s, applier)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 33})
	t.Cleanup(func() { theme.SetTheme(theme.Nord) })
	return next.(RootModel), s, repo, applier
}

func update(t *testing.T, m RootModel, msgs ...tea.Msg) RootModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(RootModel)
	}
	return m
}

func TestThemeCyclePersists(t *testing.T) {
	m, s, repo, applier := newRoot(t)
	if theme.Current.Theme.Name != "nord" {
		t.Fatalf("start theme = %s", theme.Current.Theme.Name)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if theme.Current.Theme.Name != "dracula" {
		t.Fatalf("theme = %s, want dracula", theme.Current.Theme.Name)
	}
	if got := s.Settings().Theme; got != "dracula" {
		t.Fatalf("session theme = %s", got)
	}
	if got := repo.LoadSettings(context.Background(), "u1").Theme; got != "dracula" {
		t.Fatalf("stored theme = %s", got)
	}
	if len(applier.applied) != 1 {
		t.Fatalf("applied %d times", len(applier.applied))
	}
	if m.statusMsg != "Theme: dracula" {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestStoredThemeAppliedOnStart(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := storage.NewRepository(storage.NewMemoryStore(), logger)
	ctx := context.Background()
	if err := repo.SaveSettings(ctx, "u1", model.Settings{Theme: "gruvbox"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { theme.SetTheme(theme.Nord) })

	s := board.Open(ctx, repo, model.Identity{UserID: "u1"}, board.WithLogger(logger))
	NewRootModel(s, nil)
	if theme.Current.Theme.Name != "gruvbox" {
		t.Fatalf("theme = %s, want gruvbox", theme.Current.Theme.Name)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _, _ := newRoot(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !m.helpVisible {
		t.Fatal("? should open help")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.helpVisible {
		t.Fatal("esc should close help")
	}
}

func TestQuitIgnoredWhileTyping(t *testing.T) {
	m, _, _, _ := newRoot(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !m.boardView.IsInputMode() {
		t.Fatal("q inside the form should be typed, not quit")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c should quit")
	}
}

func TestMouseOffsetByHeader(t *testing.T) {
	m, s, _, _ := newRoot(t)
	first := s.Column(model.StatusTodo)[0]

	// Screen row 3 is the first card's title below the header
	m = update(t, m,
		tea.MouseMsg{X: 2, Y: headerHeight + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 119, Y: headerHeight + 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
	)
	got, _ := s.Get(first.ID)
	if got.Status != model.StatusDone {
		t.Fatalf("status = %s, want done", got.Status)
	}
	if m.boardView.Dragging() {
		t.Fatal("drag should be over")
	}
}

func TestStatusMessagesShownInFooter(t *testing.T) {
	m, _, _, _ := newRoot(t)
	m = update(t, m, views.StatusMsg{Message: "saved"})
	if m.statusMsg != "saved" {
		t.Fatalf("status = %q", m.statusMsg)
	}
}
