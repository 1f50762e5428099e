package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dori/kanbo/internal/model"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error        { return f.err }

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "a", Title: "Write outline", Status: model.StatusTodo, CreatedAt: 1700000000000},
		{
			ID:          "b",
			Title:       "Ship it",
			Description: "all fields",
			Status:      model.StatusDone,
			CreatedAt:   1700000000500,
			DueDate:     "May 20",
			Tags:        []string{"Dev", "Testing"},
			Assignees:   []string{"u1", "u2"},
			Comments:    3,
			Attachments: 1,
		},
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	in := sampleTasks()
	if err := repo.Save(ctx, "user-1", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := repo.Load(ctx, "user-1")
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, in)
	}
}

func TestRepositoryRoundTripKeepsUserText(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	in := []model.Task{{
		ID:          "a",
		Title:       "t",
		Description: "line one\n",
		Status:      model.StatusTodo,
		Assignees:   []string{"u1", "u1"},
	}}
	if err := repo.Save(ctx, "u", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := repo.Load(ctx, "u"); !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, in)
	}
}

func TestRepositorySaveWritesNormalizedForm(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	in := []model.Task{{ID: "a", Title: "  padded  ", Status: model.StatusDoing, Tags: []string{"Dev", "Dev"}, Assignees: []string{}}}
	if err := repo.Save(ctx, "u", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := []model.Task{in[0].Normalize()}
	if got := repo.Load(ctx, "u"); !reflect.DeepEqual(got, want) {
		t.Fatalf("load = %#v, want %#v", got, want)
	}
	if in[0].Title != "  padded  " {
		t.Fatal("save modified the caller's slice")
	}
}

func TestRepositoryOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	if err := repo.Save(ctx, "alice", sampleTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := repo.Load(ctx, "bob"); len(got) != 0 {
		t.Fatalf("expected bob to see nothing, got %d tasks", len(got))
	}
}

func TestRepositoryLoadMissingIsEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), nil)
	got := repo.Load(context.Background(), "nobody")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRepositoryLoadCorruptBlobIsLogged(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := NewMemoryStore()
	_ = store.Put(ctx, TasksKey("u"), []byte("{not json"))

	repo := NewRepository(store, logger)
	if got := repo.Load(ctx, "u"); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d", len(got))
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel {
		t.Fatalf("expected a warning, got %#v", entry)
	}
	if entry.Data["op"] != "decode" {
		t.Fatalf("unexpected op field: %v", entry.Data["op"])
	}
}

func TestRepositoryLoadDropsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := NewMemoryStore()
	blob := `[
		{"id":"a","title":"ok","description":"","status":"todo","createdAt":1},
		{"id":"a","title":"dup","description":"","status":"todo","createdAt":2},
		{"id":"b","title":"  ","description":"","status":"todo","createdAt":3},
		{"id":"c","title":"bad status","description":"","status":"later","createdAt":4},
		{"id":"d","title":"empty tags","description":"","status":"done","createdAt":5,"tags":[]}
	]`
	_ = store.Put(ctx, TasksKey("u"), []byte(blob))

	got := NewRepository(store, logger).Load(ctx, "u")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "d" {
		t.Fatalf("unexpected tasks: %#v", got)
	}
	if got[1].Tags != nil {
		t.Fatalf("expected empty tags to collapse to nil, got %#v", got[1].Tags)
	}
	if len(hook.AllEntries()) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(hook.AllEntries()))
	}
}

func TestRepositoryBackendFailures(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	boom := errors.New("disk full")
	repo := NewRepository(failingStore{err: boom}, logger)

	if got := repo.Load(ctx, "u"); len(got) != 0 {
		t.Fatalf("expected empty collection on read failure")
	}

	err := repo.Save(ctx, "u", sampleTasks())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Op != "save" || perr.Key != TasksKey("u") || !errors.Is(err, boom) {
		t.Fatalf("unexpected error contents: %#v", perr)
	}
	if len(hook.AllEntries()) != 2 {
		t.Fatalf("expected 2 logged failures, got %d", len(hook.AllEntries()))
	}
}

func TestRepositoryClearKeepsSeedMarker(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	if repo.Seeded(ctx, "u") {
		t.Fatal("fresh owner should not be seeded")
	}
	if err := repo.MarkSeeded(ctx, "u"); err != nil {
		t.Fatalf("mark seeded: %v", err)
	}
	if err := repo.Save(ctx, "u", sampleTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx, "u"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := repo.Load(ctx, "u"); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(got))
	}
	if !repo.Seeded(ctx, "u") {
		t.Fatal("seed marker should survive clear")
	}
}

func TestRepositorySettings(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	if got := repo.LoadSettings(ctx, "u"); got != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %#v", got)
	}
	want := model.Settings{Theme: "dracula", Notifications: false}
	if err := repo.SaveSettings(ctx, "u", want); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if got := repo.LoadSettings(ctx, "u"); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
