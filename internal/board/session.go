package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/storage"
)

// MoveHook is called after a task changes column
type MoveHook func(before, after model.Task)

// Session is one user's working copy of a board. It owns the task
// collection and writes it back through the repository after every change.
// Anonymous sessions run on the demo seed in memory and never persist.
//
// A Session is not safe for concurrent use.
type Session struct {
	repo     *storage.Repository
	identity model.Identity
	tasks    []model.Task
	settings model.Settings
	seeded   bool

	newID  func() string
	now    func() time.Time
	log    log.FieldLogger
	onMove MoveHook
}

// Option configures a Session
type Option func(*Session)

// WithClock sets the time source used for createdAt
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator sets the task id source
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// WithLogger sets the session logger
func WithLogger(l log.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithMoveHook registers fn to run after every change of a task's status,
// whether it came from a move, a patch or a full edit
func WithMoveHook(fn MoveHook) Option {
	return func(s *Session) { s.onMove = fn }
}

// NewTaskInput holds the fields for a new card
type NewTaskInput struct {
	Title       string
	Description string
	Status      model.Status
	DueDate     string
	Tags        []string
	Assignees   []string
}

// Open loads identity's board. A first-time authenticated owner with no
// stored tasks gets the demo seed, which is saved immediately. A nil repo
// keeps everything in memory.
func Open(ctx context.Context, repo *storage.Repository, identity model.Identity, opts ...Option) *Session {
	s := &Session{
		repo:     repo,
		identity: identity,
		settings: model.DefaultSettings(),
		newID:    uuid.NewString,
		now:      time.Now,
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("owner", s.owner())

	if !s.Persistent() {
		s.tasks = DemoTasks(s.newID, s.now())
		s.seeded = true
		s.log.Debug("opened in-memory board")
		return s
	}

	s.settings = repo.LoadSettings(ctx, identity.UserID)
	s.tasks = repo.Load(ctx, identity.UserID)
	if len(s.tasks) == 0 && !repo.Seeded(ctx, identity.UserID) {
		s.tasks = DemoTasks(s.newID, s.now())
		s.save(ctx)
		if err := repo.MarkSeeded(ctx, identity.UserID); err != nil {
			s.log.WithError(err).Debug("seed marker not written")
		}
		s.log.Info("seeded board with demo tasks")
	}
	s.seeded = true
	s.log.WithField("tasks", len(s.tasks)).Debug("opened board")
	return s
}

// Identity returns who the session belongs to
func (s *Session) Identity() model.Identity {
	return s.identity
}

// Persistent reports whether changes are written to storage
func (s *Session) Persistent() bool {
	return s.repo != nil && s.identity.IsAuthenticated()
}

// Reload re-reads the collection from storage. It never re-seeds.
func (s *Session) Reload(ctx context.Context) {
	if !s.Persistent() {
		return
	}
	s.tasks = s.repo.Load(ctx, s.identity.UserID)
}

// Tasks returns a copy of every task in insertion order
func (s *Session) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks
func (s *Session) Len() int {
	return len(s.tasks)
}

// Get returns the task with id
func (s *Session) Get(id string) (model.Task, bool) {
	t, ok := Find(s.tasks, id)
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

// Resolve finds a task by full id or by a unique id prefix
func (s *Session) Resolve(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("empty task id: %w", model.ErrNotFound)
	}
	if t, ok := s.Get(ref); ok {
		return t, nil
	}
	var match []model.Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("task %s: %w", ref, model.ErrNotFound)
	case 1:
		return match[0].Clone(), nil
	default:
		return model.Task{}, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("%q matches %d tasks", ref, len(match))}
	}
}

// Create adds a card at the end of the collection. Authenticated users are
// assigned to their own cards unless assignees are given.
func (s *Session) Create(ctx context.Context, in NewTaskInput) (model.Task, error) {
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	id, err := s.uniqueID()
	if err != nil {
		return model.Task{}, err
	}
	task, err := NewTask(id, s.now().UnixMilli(), in.Title, in.Description, in.Status)
	if err != nil {
		return model.Task{}, err
	}
	task.DueDate = in.DueDate
	task.Tags = in.Tags
	task.Assignees = in.Assignees
	if len(model.NormalizeList(task.Assignees)) == 0 && s.identity.IsAuthenticated() {
		task.Assignees = []string{s.identity.UserID}
	}
	task = task.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	s.tasks = Append(s.tasks, task)
	s.save(ctx)
	s.log.WithFields(log.Fields{"task_id": task.ID, "status": task.Status}).Debug("task created")
	return task.Clone(), nil
}

// Update replaces the stored task with the same id. CreatedAt is kept from
// the stored copy. A status change fires the move hook.
func (s *Session) Update(ctx context.Context, task model.Task) error {
	_, err := s.update(ctx, task)
	return err
}

// update is the single write path for existing tasks. Every edit, patch
// and move goes through it, so the move hook sees all column changes.
func (s *Session) update(ctx context.Context, task model.Task) (model.Task, error) {
	current, ok := Find(s.tasks, task.ID)
	if !ok {
		return model.Task{}, fmt.Errorf("update %s: %w", task.ID, model.ErrNotFound)
	}
	task = task.Normalize()
	task.CreatedAt = current.CreatedAt
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	s.tasks, _ = Replace(s.tasks, task)
	s.save(ctx)
	if current.Status != task.Status {
		s.moved(current, task)
	}
	return task.Clone(), nil
}

// Patch applies the set fields of p to the task with id
func (s *Session) Patch(ctx context.Context, id string, p Patch) (model.Task, error) {
	current, ok := Find(s.tasks, id)
	if !ok {
		return model.Task{}, fmt.Errorf("patch %s: %w", id, model.ErrNotFound)
	}
	if p.IsEmpty() {
		return current.Clone(), nil
	}
	return s.update(ctx, p.Apply(current))
}

// Move sets the status of the task with id. Moving to the current column
// leaves the board as it was.
func (s *Session) Move(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	current, ok := Find(s.tasks, id)
	if !ok {
		return fmt.Errorf("move %s: %w", id, model.ErrNotFound)
	}
	_, err := s.update(ctx, WithStatus(current, status))
	return err
}

// Delete removes the task with id
func (s *Session) Delete(ctx context.Context, id string) error {
	var found bool
	s.tasks, found = Remove(s.tasks, id)
	if !found {
		return fmt.Errorf("delete %s: %w", id, model.ErrNotFound)
	}
	s.save(ctx)
	s.log.WithField("task_id", id).Debug("task deleted")
	return nil
}

// ClearAll empties the board and removes the stored collection. The empty
// collection is written first so a failed delete cannot bring the old tasks
// back on the next load.
func (s *Session) ClearAll(ctx context.Context) {
	s.tasks = []model.Task{}
	if s.Persistent() {
		s.save(ctx)
		if err := s.repo.Clear(ctx, s.identity.UserID); err != nil {
			s.log.WithError(err).Debug("stored collection not deleted, left empty")
		}
	}
	s.log.Info("board cleared")
}

// Column returns one column's tasks in insertion order
func (s *Session) Column(status model.Status) []model.Task {
	return ByStatus(s.tasks, status)
}

// Counts returns the unfiltered size of every column
func (s *Session) Counts() map[model.Status]int {
	return Counts(s.tasks)
}

// Visible returns the tasks that pass c
func (s *Session) Visible(c Criteria) []model.Task {
	return Apply(s.tasks, c)
}

// VisibleColumn returns one column's tasks that pass c
func (s *Session) VisibleColumn(status model.Status, c Criteria) []model.Task {
	return ByStatus(Apply(s.tasks, c), status)
}

// AvailableTags returns every tag in use
func (s *Session) AvailableTags() []string {
	return AvailableTags(s.tasks)
}

// AvailableAssignees returns every assignee in use
func (s *Session) AvailableAssignees() []string {
	return AvailableAssignees(s.tasks)
}

// Settings returns the owner's preferences
func (s *Session) Settings() model.Settings {
	return s.settings
}

// SetSettings replaces the owner's preferences
func (s *Session) SetSettings(ctx context.Context, settings model.Settings) {
	s.settings = settings
	if s.Persistent() {
		if err := s.repo.SaveSettings(ctx, s.identity.UserID, settings); err != nil {
			s.log.WithError(err).Debug("settings kept in memory only")
		}
	}
}

func (s *Session) owner() string {
	if s.identity.IsAuthenticated() {
		return s.identity.UserID
	}
	return "anonymous"
}

// save writes the collection back. Failures are logged by the repository
// and never surface to the caller.
func (s *Session) save(ctx context.Context) {
	if !s.Persistent() {
		return
	}
	_ = s.repo.Save(ctx, s.identity.UserID, s.tasks)
}

func (s *Session) moved(before, after model.Task) {
	s.log.WithFields(log.Fields{
		"task_id": after.ID,
		"from":    before.Status,
		"to":      after.Status,
	}).Debug("task moved")
	if s.onMove != nil {
		s.onMove(before.Clone(), after.Clone())
	}
}

// maxIDAttempts bounds how often a colliding or empty id is regenerated
const maxIDAttempts = 100

func (s *Session) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if _, taken := Find(s.tasks, id); !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique task id after %d attempts", maxIDAttempts)
}
