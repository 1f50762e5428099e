package board

import (
	"strings"

	"github.com/dori/kanbo/internal/model"
)

// The reducer functions never modify their input slice. Each returns a new
// slice that the caller swaps in for the old one.

// NewTask builds a validated task. The caller supplies id and createdAt.
func NewTask(id string, createdAt int64, title, description string, status model.Status) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, &model.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	task := model.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   createdAt,
	}.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Append adds task to the end of the collection
func Append(tasks []model.Task, task model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks...)
	return append(out, task)
}

// Replace swaps the task with a matching id for task, taking every field
// from the supplied value. found is false, and the result equal to the
// input, when no task has that id.
func Replace(tasks []model.Task, task model.Task) (out []model.Task, found bool) {
	out = make([]model.Task, len(tasks))
	for i, t := range tasks {
		if t.ID == task.ID {
			out[i] = task
			found = true
			continue
		}
		out[i] = t
	}
	return out, found
}

// Remove drops the task with the given id. Removing an unknown id is a no-op.
func Remove(tasks []model.Task, id string) (out []model.Task, found bool) {
	out = make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}

// WithStatus returns a copy of task moved to status with every other field kept
func WithStatus(task model.Task, status model.Status) model.Task {
	moved := task.Clone()
	moved.Status = status
	return moved
}

// Find returns the task with id
func Find(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Patch lists the fields to change on a task. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Status      *model.Status
	DueDate     *string
	Tags        *[]string
	Assignees   *[]string
}

// IsEmpty returns true when the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.DueDate == nil && p.Tags == nil && p.Assignees == nil
}

// Apply returns task with the patch applied and normalized
func (p Patch) Apply(task model.Task) model.Task {
	out := task.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Assignees != nil {
		out.Assignees = append([]string(nil), (*p.Assignees)...)
	}
	return out.Normalize()
}
