package board

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dori/kanbo/internal/model"
)

func TestNewTaskRejectsBlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewTask("id", 1, title, "x", model.StatusTodo)
		if !errors.Is(err, model.ErrValidation) {
			t.Fatalf("NewTask(%q) error = %v, want validation error", title, err)
		}
	}
}

func TestNewTaskRejectsUnknownStatus(t *testing.T) {
	_, err := NewTask("id", 1, "ok", "", model.Status("blocked"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestAppendDoesNotAlias(t *testing.T) {
	in := make([]model.Task, 1, 4)
	in[0] = model.Task{ID: "a", Title: "A", Status: model.StatusTodo}

	out := Append(in, model.Task{ID: "b", Title: "B", Status: model.StatusTodo})
	out[0].Title = "changed"

	if in[0].Title != "A" {
		t.Fatalf("Append aliased its input")
	}
	if len(out) != 2 || out[1].ID != "b" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestReplaceMissingIDIsNoop(t *testing.T) {
	in := []model.Task{{ID: "a", Title: "A", Status: model.StatusTodo}}
	out, found := Replace(in, model.Task{ID: "zzz", Title: "Z", Status: model.StatusDone})
	if found {
		t.Fatalf("found = true for unknown id")
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("collection changed: %+v", out)
	}
}

func TestRemove(t *testing.T) {
	in := []model.Task{
		{ID: "a", Title: "A", Status: model.StatusTodo},
		{ID: "b", Title: "B", Status: model.StatusDoing},
	}
	out, found := Remove(in, "a")
	if !found || len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("Remove(a) = %+v, %v", out, found)
	}
	out, found = Remove(in, "missing")
	if found || !reflect.DeepEqual(out, in) {
		t.Fatalf("Remove(missing) = %+v, %v", out, found)
	}
}

func TestWithStatusKeepsOtherFields(t *testing.T) {
	task := model.Task{
		ID: "a", Title: "A", Status: model.StatusTodo, CreatedAt: 42,
		Tags: []string{"Dev"}, Assignees: []string{"u1"}, Comments: 2,
	}
	moved := WithStatus(task, model.StatusDone)

	want := task.Clone()
	want.Status = model.StatusDone
	if !reflect.DeepEqual(moved, want) {
		t.Fatalf("WithStatus = %+v, want %+v", moved, want)
	}
	moved.Tags[0] = "changed"
	if task.Tags[0] != "Dev" {
		t.Fatalf("WithStatus shared the tags slice")
	}
}

func TestPatchApply(t *testing.T) {
	task := model.Task{ID: "a", Title: "A", Description: "d", Status: model.StatusTodo, Tags: []string{"Dev"}}

	title := "  New title "
	empty := []string{}
	got := Patch{Title: &title, Tags: &empty}.Apply(task)

	if got.Title != "New title" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Description != "d" || got.Status != model.StatusTodo {
		t.Fatalf("unlisted fields changed: %+v", got)
	}
	if got.Tags != nil {
		t.Fatalf("empty tag list should normalize to nil, got %#v", got.Tags)
	}
	if (Patch{}).IsEmpty() != true || (Patch{Title: &title}).IsEmpty() {
		t.Fatalf("IsEmpty wrong")
	}
}
