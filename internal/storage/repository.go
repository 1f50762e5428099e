package storage

import (
	"context"
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/dori/kanbo/internal/model"
)

const (
	tasksKeyPrefix    = "kanban_tasks::"
	seededKeyPrefix   = "kanban_seeded::"
	settingsKeyPrefix = "kanban_settings::"
)

// TasksKey returns the blob key holding owner's task collection
func TasksKey(owner string) string { return tasksKeyPrefix + owner }

func seededKey(owner string) string   { return seededKeyPrefix + owner }
func settingsKey(owner string) string { return settingsKeyPrefix + owner }

// Repository loads and saves per-owner board state on top of a BlobStore.
// Reads never fail: a missing or corrupt blob yields an empty collection.
type Repository struct {
	store BlobStore
	log   log.FieldLogger
}

// NewRepository creates a repository. A nil logger uses the logrus default.
func NewRepository(store BlobStore, logger log.FieldLogger) *Repository {
	if store == nil {
		panic("storage.NewRepository: store is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Repository{store: store, log: logger}
}

// Store returns the underlying blob store
func (r *Repository) Store() BlobStore {
	return r.store
}

// Load returns owner's tasks. Entries that fail validation or repeat an id
// are dropped and logged.
func (r *Repository) Load(ctx context.Context, owner string) []model.Task {
	key := TasksKey(owner)
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return []model.Task{}
	}
	if err != nil {
		r.report("load", key, err)
		return []model.Task{}
	}

	var raw []model.Task
	if err := json.Unmarshal(data, &raw); err != nil {
		r.report("decode", key, err)
		return []model.Task{}
	}

	tasks := make([]model.Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		t = t.Normalize()
		if t.ID == "" || seen[t.ID] {
			r.log.WithFields(log.Fields{"key": key, "task_id": t.ID}).Warn("dropping task with missing or duplicate id")
			continue
		}
		if err := t.Validate(); err != nil {
			r.log.WithFields(log.Fields{"key": key, "task_id": t.ID}).WithError(err).Warn("dropping invalid task")
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks
}

// Save overwrites owner's whole collection. Tasks are written in their
// normalized form, the same form Load returns.
func (r *Repository) Save(ctx context.Context, owner string, tasks []model.Task) error {
	key := TasksKey(owner)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Normalize())
	}
	data, err := json.Marshal(out)
	if err != nil {
		return r.report("encode", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return r.report("save", key, err)
	}
	return nil
}

// Clear removes owner's collection. The seed marker is kept so a later load
// does not repopulate the board with demo content.
func (r *Repository) Clear(ctx context.Context, owner string) error {
	key := TasksKey(owner)
	if err := r.store.Delete(ctx, key); err != nil {
		return r.report("clear", key, err)
	}
	return nil
}

// Seeded reports whether owner has ever received the demo seed
func (r *Repository) Seeded(ctx context.Context, owner string) bool {
	key := seededKey(owner)
	_, err := r.store.Get(ctx, key)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrBlobNotFound) {
		r.report("load", key, err)
		// Treat an unreadable marker as set so a flaky backend cannot
		// overwrite real data with the demo seed.
		return true
	}
	return false
}

// MarkSeeded records that owner has received the demo seed
func (r *Repository) MarkSeeded(ctx context.Context, owner string) error {
	key := seededKey(owner)
	if err := r.store.Put(ctx, key, []byte("1")); err != nil {
		return r.report("save", key, err)
	}
	return nil
}

// LoadSettings returns owner's settings, or the defaults
func (r *Repository) LoadSettings(ctx context.Context, owner string) model.Settings {
	key := settingsKey(owner)
	settings := model.DefaultSettings()
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return settings
	}
	if err != nil {
		r.report("load", key, err)
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		r.report("decode", key, err)
		return model.DefaultSettings()
	}
	return settings
}

// SaveSettings stores owner's settings
func (r *Repository) SaveSettings(ctx context.Context, owner string, settings model.Settings) error {
	key := settingsKey(owner)
	data, err := json.Marshal(settings)
	if err != nil {
		return r.report("encode", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return r.report("save", key, err)
	}
	return nil
}

func (r *Repository) report(op, key string, err error) error {
	perr := &PersistenceError{Op: op, Key: key, Err: err}
	r.log.WithFields(log.Fields{"op": op, "key": key}).WithError(err).Warn("persistence failure")
	return perr
}
