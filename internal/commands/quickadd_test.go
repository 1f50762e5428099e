package commands

import (
	"reflect"
	"testing"
	"time"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
)

// Wednesday
var quickAddNow = time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)

func TestParseQuickAdd(t *testing.T) {
	tests := []struct {
		name string
		text string
		want board.NewTaskInput
	}{
		{
			name: "plain title",
			text: "Buy groceries",
			want: board.NewTaskInput{Title: "Buy groceries"},
		},
		{
			name: "all markers",
			text: "Review PR @Dev @Testing +sam #doing due:tomorrow",
			want: board.NewTaskInput{
				Title:     "Review PR",
				Tags:      []string{"Dev", "Testing"},
				Assignees: []string{"sam"},
				Status:    model.StatusDoing,
				DueDate:   "May 2",
			},
		},
		{
			name: "unknown column stays in title",
			text: "Fix #42 now",
			want: board.NewTaskInput{Title: "Fix #42 now"},
		},
		{
			name: "free text due date",
			text: "Ship due:end_of_sprint",
			want: board.NewTaskInput{Title: "Ship", DueDate: "end of sprint"},
		},
		{
			name: "lone markers are words",
			text: "a @ + # b",
			want: board.NewTaskInput{Title: "a @ + # b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseQuickAdd(tt.text, quickAddNow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseQuickAdd(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseNaturalDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"today", "May 1", true},
		{"tomorrow", "May 2", true},
		{"friday", "May 3", true},
		{"wed", "May 8", true}, // same weekday means next week
		{"nextweek", "May 8", true},
		{"2024-06-12", "Jun 12", true},
		{"Jun 12", "Jun 12", true},
		{"someday", "", false},
	}

	for _, tt := range tests {
		got, ok := parseNaturalDate(tt.in, quickAddNow)
		if ok != tt.ok {
			t.Fatalf("parseNaturalDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && got.Format(dueLayout) != tt.want {
			t.Errorf("parseNaturalDate(%q) = %s, want %s", tt.in, got.Format(dueLayout), tt.want)
		}
	}
}
