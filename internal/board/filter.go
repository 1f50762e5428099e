package board

import (
	"strings"

	"github.com/dori/kanbo/internal/model"
)

// Criteria selects the visible subset of a board. Dimensions combine with AND.
//
// The zero value hides done tasks because ShowCompleted is false. Start from
// DefaultCriteria to show the whole board.
type Criteria struct {
	Tags          []string
	Assignees     []string
	ShowCompleted bool
	SearchQuery   string
}

// DefaultCriteria shows everything
func DefaultCriteria() Criteria {
	return Criteria{ShowCompleted: true}
}

// IsActive returns true when the criteria hide anything
func (c Criteria) IsActive() bool {
	return len(c.Tags) > 0 || len(c.Assignees) > 0 || !c.ShowCompleted ||
		strings.TrimSpace(c.SearchQuery) != ""
}

// ToggleTag adds tag to the criteria, or removes it if already present
func (c Criteria) ToggleTag(tag string) Criteria {
	c.Tags = toggle(c.Tags, tag)
	return c
}

// ToggleAssignee adds id to the criteria, or removes it if already present
func (c Criteria) ToggleAssignee(id string) Criteria {
	c.Assignees = toggle(c.Assignees, id)
	return c
}

func toggle(values []string, v string) []string {
	out := make([]string, 0, len(values)+1)
	removed := false
	for _, existing := range values {
		if existing == v {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Matches reports whether a single task passes every active criterion
func (c Criteria) Matches(task model.Task) bool {
	if len(c.Tags) > 0 && !intersects(task.Tags, c.Tags) {
		return false
	}
	if len(c.Assignees) > 0 && !intersects(task.Assignees, c.Assignees) {
		return false
	}
	if !c.ShowCompleted && task.Status == model.StatusDone {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(c.SearchQuery)); q != "" {
		if !strings.Contains(strings.ToLower(task.Title), q) &&
			!strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching c, in input order
func Apply(tasks []model.Task, c Criteria) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// ByStatus returns the tasks in one column, in input order
func ByStatus(tasks []model.Task, status model.Status) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of tasks per status
func Counts(tasks []model.Task) map[model.Status]int {
	counts := make(map[model.Status]int, 3)
	for _, s := range model.Statuses() {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// AvailableTags returns every tag in use, de-duplicated in first-seen order
func AvailableTags(tasks []model.Task) []string {
	var all []string
	for _, t := range tasks {
		all = append(all, t.Tags...)
	}
	return model.NormalizeSet(all)
}

// AvailableAssignees returns every assignee in use, de-duplicated in
// first-seen order
func AvailableAssignees(tasks []model.Task) []string {
	var all []string
	for _, t := range tasks {
		all = append(all, t.Assignees...)
	}
	return model.NormalizeSet(all)
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
