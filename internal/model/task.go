package model

import (
	"strconv"
	"strings"
	"time"
)

// Status represents the column a task belongs to
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses returns the fixed status vocabulary in column order
func Statuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Label returns the column heading for a status
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusDoing:
		return "In Progress"
	case StatusDone:
		return "Completed"
	default:
		return string(s)
	}
}

// Index returns the column position of a status, or -1 if unknown
func (s Status) Index() int {
	for i, st := range Statuses() {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStatus accepts a status code or a few common spellings of it
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to do", "to-do":
		return StatusTodo, nil
	case "doing", "in progress", "in-progress", "inprogress", "wip":
		return StatusDoing, nil
	case "done", "completed", "complete":
		return StatusDone, nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + strconv.Quote(s)}
}

// Task represents a card on the board.
//
// CreatedAt is milliseconds since the Unix epoch so the persisted blob keeps
// the same shape across backends and round-trips exactly.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	CreatedAt   int64    `json:"createdAt"`
	DueDate     string   `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
	Comments    int      `json:"comments,omitempty"`
	Attachments int      `json:"attachments,omitempty"`
}

// Created returns CreatedAt as a time.Time
func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// IsDone returns true if the task sits in the completed column
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// HasTag reports whether the task carries tag
func (t Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// HasAssignee reports whether id is among the task's assignees
func (t Task) HasAssignee(id string) bool {
	for _, a := range t.Assignees {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate slices freely
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Assignees != nil {
		c.Assignees = append([]string(nil), t.Assignees...)
	}
	return c
}

// Normalize returns the canonical form of a task: title trimmed, tags
// de-duplicated, blank assignees dropped and empty lists collapsed to nil.
// The description is kept as written and assignees keep their order,
// repeats included.
func (t Task) Normalize() Task {
	t.Title = strings.TrimSpace(t.Title)
	t.DueDate = strings.TrimSpace(t.DueDate)
	t.Tags = NormalizeSet(t.Tags)
	t.Assignees = NormalizeList(t.Assignees)
	return t
}

// Validate checks the invariants a stored task must satisfy
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status " + strconv.Quote(string(t.Status))}
	}
	if t.Comments < 0 {
		return &ValidationError{Field: "comments", Reason: "must not be negative"}
	}
	if t.Attachments < 0 {
		return &ValidationError{Field: "attachments", Reason: "must not be negative"}
	}
	return nil
}

// NormalizeList trims and drops blanks but keeps order and repeats. An
// empty result is nil.
func NormalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeSet trims, drops blanks and de-duplicates while keeping the
// first-seen order. An empty result is nil.
func NormalizeSet(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
