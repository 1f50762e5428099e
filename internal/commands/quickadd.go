package commands

import (
	"strings"
	"time"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
)

// dueLayout is how parsed due dates are written on cards
const dueLayout = "Jan 2"

// parseQuickAdd splits quick-add text into a task draft. Recognized words:
// @tag, +assignee, #todo/#doing/#done and due:<date>. Everything else is
// the title.
func parseQuickAdd(text string, now time.Time) board.NewTaskInput {
	var in board.NewTaskInput
	var titleParts []string

	for _, word := range strings.Fields(text) {
		switch {
		// Tags (@Design, @Dev, etc.)
		case strings.HasPrefix(word, "@") && len(word) > 1:
			in.Tags = append(in.Tags, strings.TrimPrefix(word, "@"))

		// Assignees (+sam)
		case strings.HasPrefix(word, "+") && len(word) > 1:
			in.Assignees = append(in.Assignees, strings.TrimPrefix(word, "+"))

		// Column (#todo, #doing, #done)
		case strings.HasPrefix(word, "#") && len(word) > 1:
			status, err := model.ParseStatus(strings.TrimPrefix(word, "#"))
			if err != nil {
				titleParts = append(titleParts, word)
				continue
			}
			in.Status = status

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:") && len(word) > 4:
			in.DueDate = formatDue(word[4:], now)

		default:
			titleParts = append(titleParts, word)
		}
	}

	in.Title = strings.Join(titleParts, " ")
	return in
}

// formatDue turns a recognizable date into the card format and keeps any
// other text as written. Underscores stand in for spaces.
func formatDue(s string, now time.Time) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if t, ok := parseNaturalDate(s, now); ok {
		return t.Format(dueLayout)
	}
	return s
}

func parseNaturalDate(s string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return today, true
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), true
	case "monday", "mon":
		return nextWeekday(today, time.Monday), true
	case "tuesday", "tue":
		return nextWeekday(today, time.Tuesday), true
	case "wednesday", "wed":
		return nextWeekday(today, time.Wednesday), true
	case "thursday", "thu":
		return nextWeekday(today, time.Thursday), true
	case "friday", "fri":
		return nextWeekday(today, time.Friday), true
	case "saturday", "sat":
		return nextWeekday(today, time.Saturday), true
	case "sunday", "sun":
		return nextWeekday(today, time.Sunday), true
	case "nextweek":
		return today.AddDate(0, 0, 7), true
	}

	// Try parsing as date
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"Jan 2, 2006",
		"Jan 2",
		"January 2",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			// If no year, use current year
			if t.Year() == 0 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			}
			return t, true
		}
	}

	return time.Time{}, false
}

func nextWeekday(today time.Time, day time.Weekday) time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
