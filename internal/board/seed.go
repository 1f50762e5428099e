package board

import (
	"time"

	"github.com/dori/kanbo/internal/model"
)

// DemoTasks returns the starter board: three cards per column, from a bare
// card to one with every optional field set.
func DemoTasks(newID func() string, now time.Time) []model.Task {
	base := now.UnixMilli()
	at := func(i int) int64 { return base + int64(i) }

	return []model.Task{
		{
			ID:          newID(),
			Title:       "Research competitor boards",
			Description: "Collect screenshots of three boards we like.",
			Status:      model.StatusTodo,
			CreatedAt:   at(0),
		},
		{
			ID:          newID(),
			Title:       "Design card layout",
			Description: "Tags, avatars and counters on one card.",
			Status:      model.StatusTodo,
			CreatedAt:   at(1),
			Tags:        []string{"Design", "UI/UX"},
			Assignees:   []string{"alex"},
			Comments:    2,
		},
		{
			ID:          newID(),
			Title:       "Plan release checklist",
			Description: "",
			Status:      model.StatusTodo,
			CreatedAt:   at(2),
			Tags:        []string{"Testing"},
			Assignees:   []string{"sam", "jordan"},
		},
		{
			ID:          newID(),
			Title:       "Build drag and drop",
			Description: "Move cards between columns with the pointer.",
			Status:      model.StatusDoing,
			CreatedAt:   at(3),
			DueDate:     "Jun 12",
			Tags:        []string{"Dev", "UI/UX"},
			Assignees:   []string{"alex", "sam", "jordan"},
			Comments:    5,
			Attachments: 2,
		},
		{
			ID:          newID(),
			Title:       "Wire local persistence",
			Description: "Save the board after every change.",
			Status:      model.StatusDoing,
			CreatedAt:   at(4),
			Tags:        []string{"Dev"},
			Assignees:   []string{"jordan"},
			Comments:    1,
		},
		{
			ID:          newID(),
			Title:       "Write filter tests",
			Description: "Tags, people, search and completed toggle.",
			Status:      model.StatusDoing,
			CreatedAt:   at(5),
			Tags:        []string{"Testing", "Dev"},
			Assignees:   []string{"sam"},
		},
		{
			ID:          newID(),
			Title:       "Pick a color palette",
			Description: "",
			Status:      model.StatusDone,
			CreatedAt:   at(6),
			Tags:        []string{"Design"},
			Assignees:   []string{"alex"},
			Comments:    4,
		},
		{
			ID:          newID(),
			Title:       "Set up repository",
			Description: "Module, CI and lint config.",
			Status:      model.StatusDone,
			CreatedAt:   at(7),
			Tags:        []string{"Dev"},
			Assignees:   []string{"jordan", "sam"},
			Attachments: 1,
		},
		{
			ID:          newID(),
			Title:       "Kickoff meeting",
			Description: "Agree on scope and owners.",
			Status:      model.StatusDone,
			CreatedAt:   at(8),
			Assignees:   []string{"alex", "sam", "jordan"},
			Comments:    3,
		},
	}
}
