package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dori/kanbo/internal/app"
	"github.com/dori/kanbo/internal/auth"
	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
)

type harness struct {
	t       *testing.T
	dataDir string
	stdin   string

	notified [][]string
	tuiRuns  int
	tuiBoard *board.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, dataDir: t.TempDir()}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	rt := newRuntime()
	rt.configPaths = func() []string { return nil }
	rt.setup = func(a *app.App) {
		a.Notifier.WithRunner(func(name string, args ...string) error {
			h.notified = append(h.notified, append([]string{name}, args...))
			return nil
		})
	}
	rt.tui = func(ctx context.Context, a *app.App, s *board.Session) error {
		h.tuiRuns++
		h.tuiBoard = s
		return nil
	}

	root := newRootCommand(rt)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(h.stdin))
	root.SetArgs(append([]string{"--data-dir", h.dataDir, "--backend", "sqlite"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("kanbo %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (h *harness) register() {
	h.t.Helper()
	h.mustRun("register", "Alice Doe", "alice@example.com", "--password", "hunter22")
}

func (h *harness) exportTasks() []model.Task {
	h.t.Helper()
	var tasks []model.Task
	if err := json.Unmarshal([]byte(h.mustRun("export")), &tasks); err != nil {
		h.t.Fatalf("decode export: %v", err)
	}
	return tasks
}

func (h *harness) findTask(title string) model.Task {
	h.t.Helper()
	for _, task := range h.exportTasks() {
		if task.Title == title {
			return task
		}
	}
	h.t.Fatalf("no task titled %q", title)
	return model.Task{}
}

func TestAnonymousSeesDemoBoard(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("ls")
	if !strings.Contains(out, "Demo board") || !strings.Contains(out, "Build drag and drop") {
		t.Fatalf("ls output:\n%s", out)
	}
	if got := h.mustRun("whoami"); !strings.HasPrefix(got, "anonymous") {
		t.Fatalf("whoami = %q", got)
	}
}

func TestAnonymousCannotChangeBoard(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"add", "nope"},
		{"clear", "--yes"},
		{"settings", "--theme", "dracula"},
	} {
		if _, err := h.run(args...); !errors.Is(err, errNotLoggedIn) {
			t.Fatalf("kanbo %s: err = %v, want not logged in", strings.Join(args, " "), err)
		}
	}
}

func TestRegisterSeedsBoard(t *testing.T) {
	h := newHarness(t)
	h.register()

	if got := h.mustRun("whoami"); got != "Alice Doe <alice@example.com>\n" {
		t.Fatalf("whoami = %q", got)
	}
	if n := len(h.exportTasks()); n != 9 {
		t.Fatalf("exported %d tasks, want the 9 demo tasks", n)
	}
	if out := h.mustRun("ls"); strings.Contains(out, "Demo board") {
		t.Fatalf("owned board still labeled demo:\n%s", out)
	}
}

func TestAddWithQuickAddMarkers(t *testing.T) {
	h := newHarness(t)
	h.register()

	out := h.mustRun("add", "Write docs @Dev +sam #doing", "--desc", "user guide")
	if !strings.Contains(out, "Created ") || !strings.Contains(out, "Column: In Progress") {
		t.Fatalf("add output:\n%s", out)
	}

	task := h.findTask("Write docs")
	if task.Status != model.StatusDoing {
		t.Errorf("status = %s", task.Status)
	}
	if task.Description != "user guide" {
		t.Errorf("description = %q", task.Description)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "Dev" {
		t.Errorf("tags = %v", task.Tags)
	}
	if len(task.Assignees) != 1 || task.Assignees[0] != "sam" {
		t.Errorf("assignees = %v", task.Assignees)
	}

	listed := h.mustRun("ls", "--status", "doing", "--tag", "Dev")
	if !strings.Contains(listed, "Write docs") {
		t.Fatalf("ls output:\n%s", listed)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	h := newHarness(t)
	h.register()

	_, err := h.run("add", "@Dev")
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestMoveByPrefixNotifiesOnCompletion(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Ship it")
	task := h.findTask("Ship it")

	out := h.mustRun("mv", task.ID[:8], "done")
	if !strings.Contains(out, "Moved") {
		t.Fatalf("mv output: %q", out)
	}
	if got := h.findTask("Ship it"); got.Status != model.StatusDone {
		t.Fatalf("status = %s", got.Status)
	}
	if len(h.notified) != 1 || h.notified[0][0] != "notify-send" {
		t.Fatalf("notifications = %v", h.notified)
	}

	// Already done: no second notification
	h.mustRun("mv", task.ID, "completed")
	if len(h.notified) != 1 {
		t.Fatalf("notifications = %v", h.notified)
	}
}

func TestNotificationsSetting(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Quiet")
	task := h.findTask("Quiet")

	out := h.mustRun("settings", "--notifications", "false")
	if !strings.Contains(out, "notifications: false") {
		t.Fatalf("settings output: %q", out)
	}
	h.mustRun("mv", task.ID, "done")
	if len(h.notified) != 0 {
		t.Fatalf("notified with notifications off: %v", h.notified)
	}
}

func TestUnknownIDAndBadStatus(t *testing.T) {
	h := newHarness(t)
	h.register()

	if _, err := h.run("mv", "zzzzzzzz", "done"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("mv unknown: err = %v", err)
	}
	if _, err := h.run("rm", "zzzzzzzz"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("rm unknown: err = %v", err)
	}

	task := h.exportTasks()[0]
	if _, err := h.run("mv", task.ID, "archived"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("mv bad status: err = %v", err)
	}
}

func TestEditAndShow(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Draft")
	task := h.findTask("Draft")

	if _, err := h.run("edit", task.ID); err == nil {
		t.Fatal("edit without flags should fail")
	}

	h.mustRun("edit", task.ID, "--title", "Final", "--tag", "Design", "--tag", "UI/UX", "--due", "2024-06-12")
	out := h.mustRun("show", task.ID[:10])
	for _, want := range []string{"Title:       Final", "Tags:        Design, UI/UX", "Due:         Jun 12", "Assignees:   Alice Doe"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	edited := h.findTask("Final")
	if edited.CreatedAt != task.CreatedAt {
		t.Fatal("edit changed createdAt")
	}
}

func TestRemoveAndClear(t *testing.T) {
	h := newHarness(t)
	h.register()
	before := h.exportTasks()

	h.mustRun("rm", before[0].ID)
	if n := len(h.exportTasks()); n != len(before)-1 {
		t.Fatalf("%d tasks after rm, want %d", n, len(before)-1)
	}

	if _, err := h.run("clear"); err == nil {
		t.Fatal("clear without --yes should fail")
	}
	h.mustRun("clear", "--yes")
	if n := len(h.exportTasks()); n != 0 {
		t.Fatalf("%d tasks after clear", n)
	}

	// The demo seed is not restored on the next run
	if out := h.mustRun("ls"); strings.Contains(out, "Build drag and drop") {
		t.Fatalf("cleared board was reseeded:\n%s", out)
	}
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("logout")
	if got := h.mustRun("whoami"); !strings.HasPrefix(got, "anonymous") {
		t.Fatalf("whoami after logout = %q", got)
	}

	if _, err := h.run("login", "alice@example.com", "--password", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("bad login: err = %v", err)
	}

	// Password from stdin
	h.stdin = "hunter22\n"
	if out := h.mustRun("login", "ALICE@example.com"); out != "Logged in as Alice Doe\n" {
		t.Fatalf("login output = %q", out)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register()

	_, err := h.run("register", "Other", "alice@example.com", "--password", "whatever1")
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("err = %v, want email taken", err)
	}
}

func TestUsersHaveSeparateBoards(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Alice only")

	h.mustRun("register", "Bob", "bob@example.com", "--password", "hunter33")
	for _, task := range h.exportTasks() {
		if task.Title == "Alice only" {
			t.Fatal("bob sees alice's task")
		}
	}
}

func TestExportYAML(t *testing.T) {
	h := newHarness(t)
	h.register()

	out := h.mustRun("export", "--format", "yaml")
	var decoded []map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(decoded) != 9 {
		t.Fatalf("decoded %d tasks", len(decoded))
	}

	if _, err := h.run("export", "--format", "csv"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestSettingsTheme(t *testing.T) {
	h := newHarness(t)
	h.register()

	if _, err := h.run("settings", "--theme", "neon"); err == nil {
		t.Fatal("unknown theme should fail")
	}
	h.mustRun("settings", "--theme", "gruvbox")
	if out := h.mustRun("settings"); !strings.Contains(out, "theme: gruvbox") {
		t.Fatalf("settings output: %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "kanbo", "config.yaml")

	if out := h.mustRun("config", "init", "--path", path); !strings.Contains(out, path) {
		t.Fatalf("init output: %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := h.run("config", "init", "--path", path); err == nil {
		t.Fatal("init over an existing file should fail without --force")
	}

	out := h.mustRun("--config", path, "config", "show")
	if !strings.Contains(out, "backend: sqlite") || !strings.Contains(out, h.dataDir) {
		t.Fatalf("config show:\n%s", out)
	}
}

func TestUnknownBackendFlag(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("--backend", "mongo", "ls"); err == nil {
		t.Fatal("unknown backend should fail")
	}
}

func TestRootRunsBoard(t *testing.T) {
	h := newHarness(t)
	h.register()

	h.mustRun()
	if h.tuiRuns != 1 || h.tuiBoard == nil {
		t.Fatalf("tui runs = %d", h.tuiRuns)
	}
	if !h.tuiBoard.Persistent() || h.tuiBoard.Len() != 9 {
		t.Fatalf("tui got board persistent=%v len=%d", h.tuiBoard.Persistent(), h.tuiBoard.Len())
	}
	if _, err := os.Stat(filepath.Join(h.dataDir, "kanbo.log")); err != nil {
		t.Fatalf("interactive run should log to a file: %v", err)
	}

	h.mustRun("board")
	if h.tuiRuns != 2 {
		t.Fatalf("tui runs = %d", h.tuiRuns)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("version"); !strings.HasPrefix(out, "kanbo ") {
		t.Fatalf("version = %q", out)
	}
}
