package board

import (
	"reflect"
	"testing"

	"github.com/dori/kanbo/internal/model"
)

func filterFixture() []model.Task {
	return []model.Task{
		{ID: "a", Title: "Logo", Description: "new brand", Status: model.StatusTodo, Tags: []string{"Design"}, Assignees: []string{"alex"}},
		{ID: "b", Title: "API", Description: "endpoints", Status: model.StatusDoing, Tags: []string{"Dev"}, Assignees: []string{"sam"}},
		{ID: "c", Title: "Smoke test", Status: model.StatusDone, Tags: []string{"Testing", "Dev"}, Assignees: []string{"alex", "sam"}},
		{ID: "d", Title: "Retro", Status: model.StatusDone},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyCriteria(t *testing.T) {
	tasks := filterFixture()
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"default shows all", DefaultCriteria(), []string{"a", "b", "c", "d"}},
		{"single tag", Criteria{ShowCompleted: true, Tags: []string{"Design"}}, []string{"a"}},
		{"tags are OR", Criteria{ShowCompleted: true, Tags: []string{"Design", "Testing"}}, []string{"a", "c"}},
		{"assignee", Criteria{ShowCompleted: true, Assignees: []string{"sam"}}, []string{"b", "c"}},
		{"hide completed", Criteria{}, []string{"a", "b"}},
		{"dimensions are AND", Criteria{Tags: []string{"Dev"}, Assignees: []string{"alex"}, ShowCompleted: true}, []string{"c"}},
		{"search title", Criteria{ShowCompleted: true, SearchQuery: "LOGO"}, []string{"a"}},
		{"search description", Criteria{ShowCompleted: true, SearchQuery: "endpoint"}, []string{"b"}},
		{"blank search ignored", Criteria{ShowCompleted: true, SearchQuery: "   "}, []string{"a", "b", "c", "d"}},
		{"no match", Criteria{ShowCompleted: true, Tags: []string{"UI/UX"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(tasks, tt.c))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterNeverGrowsResult(t *testing.T) {
	tasks := DemoTasks(sequentialIDs("t"), fixedNow())
	base := len(Apply(tasks, DefaultCriteria()))

	extra := []Criteria{
		{ShowCompleted: false},
		{ShowCompleted: true, Tags: []string{"Dev"}},
		{ShowCompleted: true, Assignees: []string{"alex"}},
		{ShowCompleted: true, SearchQuery: "test"},
		{Tags: []string{"Design", "Dev"}, Assignees: []string{"sam"}, SearchQuery: "e"},
	}
	for _, c := range extra {
		if n := len(Apply(tasks, c)); n > base {
			t.Fatalf("criteria %+v produced %d tasks, baseline %d", c, n, base)
		}
	}
}

func TestStatusPartition(t *testing.T) {
	tasks := DemoTasks(sequentialIDs("t"), fixedNow())

	var union []string
	for _, s := range model.Statuses() {
		union = append(union, ids(ByStatus(tasks, s))...)
	}
	if len(union) != len(tasks) {
		t.Fatalf("columns hold %d tasks, collection has %d", len(union), len(tasks))
	}
	seen := map[string]bool{}
	for _, id := range union {
		if seen[id] {
			t.Fatalf("task %s in more than one column", id)
		}
		seen[id] = true
	}
}

func TestToggle(t *testing.T) {
	c := DefaultCriteria().ToggleTag("Dev").ToggleTag("Design")
	if !reflect.DeepEqual(c.Tags, []string{"Dev", "Design"}) {
		t.Fatalf("tags = %v", c.Tags)
	}
	c = c.ToggleTag("Dev").ToggleTag("Design")
	if c.Tags != nil || c.IsActive() {
		t.Fatalf("toggling twice should clear, got %+v", c)
	}
	if !DefaultCriteria().ToggleAssignee("sam").IsActive() {
		t.Fatalf("assignee criterion should be active")
	}
}

func TestCountsAndAvailable(t *testing.T) {
	tasks := filterFixture()

	counts := Counts(tasks)
	want := map[model.Status]int{model.StatusTodo: 1, model.StatusDoing: 1, model.StatusDone: 2}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("Counts = %v, want %v", counts, want)
	}
	if empty := Counts(nil); empty[model.StatusDoing] != 0 || len(empty) != 3 {
		t.Fatalf("Counts(nil) = %v", empty)
	}
	if got := AvailableTags(tasks); !reflect.DeepEqual(got, []string{"Design", "Dev", "Testing"}) {
		t.Fatalf("AvailableTags = %v", got)
	}
	if got := AvailableAssignees(tasks); !reflect.DeepEqual(got, []string{"alex", "sam"}) {
		t.Fatalf("AvailableAssignees = %v", got)
	}
}

func TestZeroCriteriaHidesCompleted(t *testing.T) {
	tasks := filterFixture()
	if got := ids(Apply(tasks, Criteria{})); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("zero criteria = %v, want done tasks hidden", got)
	}
	if got := ids(Apply(tasks, DefaultCriteria())); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("default criteria = %v, want every task", got)
	}
}
