package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
)

// shortIDLen is how much of an id the listings print
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newAddCmd(rt *runtime) *cobra.Command {
	var (
		desc      string
		status    string
		tags      []string
		assignees []string
		due       string
	)

	cmd := &cobra.Command{
		Use:   "add <title words>",
		Short: "Add a task",
		Long: `Add a task. The title may carry quick-add markers:

  @tag          tag the card (e.g. @Design, @Dev)
  +assignee     assign someone (e.g. +sam)
  #column       #todo, #doing or #done
  due:<date>    due:tomorrow, due:friday, due:2024-06-12, due:Jun_12

Flags win over markers.`,
		Example: `  kanbo add "Review PR @Dev +sam #doing due:tomorrow"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: rt.withOwnedBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			in := parseQuickAdd(strings.Join(args, " "), time.Now())

			if desc != "" {
				in.Description = desc
			}
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = st
			}
			in.Tags = append(in.Tags, tags...)
			in.Assignees = append(in.Assignees, assignees...)
			if due != "" {
				in.DueDate = formatDue(due, time.Now())
			}

			task, err := s.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s: %s\n", shortID(task.ID), task.Title)
			fmt.Fprintf(out, "Column: %s\n", task.Status.Label())
			if task.DueDate != "" {
				fmt.Fprintf(out, "Due: %s\n", task.DueDate)
			}
			if len(task.Tags) > 0 {
				fmt.Fprintf(out, "Tags: %s\n", strings.Join(task.Tags, ", "))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "column (todo, doing, done)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "assignee (repeatable)")
	cmd.Flags().StringVar(&due, "due", "", "due date")
	return cmd
}

func newListCmd(rt *runtime) *cobra.Command {
	var (
		tags          []string
		assignees     []string
		hideCompleted bool
		search        string
		status        string
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks by column",
		Args:    cobra.NoArgs,
		RunE: rt.withBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			criteria := board.Criteria{
				Tags:          model.NormalizeSet(tags),
				Assignees:     model.NormalizeSet(assignees),
				ShowCompleted: !hideCompleted,
				SearchQuery:   search,
			}

			columns := model.Statuses()
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				columns = []model.Status{st}
			}

			out := cmd.OutOrStdout()
			if !s.Persistent() {
				fmt.Fprintln(out, "Demo board (not logged in, changes are not saved)")
				fmt.Fprintln(out)
			}

			counts := s.Counts()
			for i, st := range columns {
				if i > 0 {
					fmt.Fprintln(out)
				}
				tasks := s.VisibleColumn(st, criteria)
				if len(tasks) == counts[st] {
					fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(st.Label()), counts[st])
				} else {
					fmt.Fprintf(out, "%s (%d/%d)\n", strings.ToUpper(st.Label()), len(tasks), counts[st])
				}
				if len(tasks) == 0 {
					fmt.Fprintln(out, "  (empty)")
					continue
				}
				for _, t := range tasks {
					printTaskLine(out, s.Identity(), t)
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "only tasks with any of these tags")
	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "only tasks with any of these assignees")
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "hide the completed column's tasks")
	cmd.Flags().StringVarP(&search, "search", "q", "", "match title or description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only this column")
	return cmd
}

func printTaskLine(w io.Writer, identity model.Identity, t model.Task) {
	parts := []string{shortID(t.ID), t.Title}
	for _, tag := range t.Tags {
		parts = append(parts, "@"+tag)
	}
	for _, a := range t.Assignees {
		parts = append(parts, "+"+assigneeName(identity, a))
	}
	if t.DueDate != "" {
		parts = append(parts, "due "+t.DueDate)
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  "))
}

// assigneeName shows the signed-in user by name instead of by id
func assigneeName(identity model.Identity, assignee string) string {
	if identity.IsAuthenticated() && identity.UserID == assignee {
		return identity.DisplayName()
	}
	return assignee
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			t, err := s.Resolve(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", t.ID)
			fmt.Fprintf(out, "Title:       %s\n", t.Title)
			fmt.Fprintf(out, "Column:      %s\n", t.Status.Label())
			fmt.Fprintf(out, "Created:     %s\n", t.Created().Format("2006-01-02 15:04"))
			if t.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", t.Description)
			}
			if t.DueDate != "" {
				fmt.Fprintf(out, "Due:         %s\n", t.DueDate)
			}
			if len(t.Tags) > 0 {
				fmt.Fprintf(out, "Tags:        %s\n", strings.Join(t.Tags, ", "))
			}
			if len(t.Assignees) > 0 {
				var names []string
				for _, a := range t.Assignees {
					names = append(names, assigneeName(s.Identity(), a))
				}
				fmt.Fprintf(out, "Assignees:   %s\n", strings.Join(names, ", "))
			}
			if t.Comments > 0 || t.Attachments > 0 {
				fmt.Fprintf(out, "Comments:    %d\n", t.Comments)
				fmt.Fprintf(out, "Attachments: %d\n", t.Attachments)
			}
			return nil
		}),
	}
}

func newEditCmd(rt *runtime) *cobra.Command {
	var (
		title     string
		desc      string
		status    string
		tags      []string
		assignees []string
		due       string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's fields",
		Long:  "Change a task's fields. --tag and --assignee replace the whole list; pass an empty value to clear it.",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withOwnedBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			t, err := s.Resolve(args[0])
			if err != nil {
				return err
			}

			var p board.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("desc") {
				p.Description = &desc
			}
			if flags.Changed("status") {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				p.Status = &st
			}
			if flags.Changed("tag") {
				p.Tags = &tags
			}
			if flags.Changed("assignee") {
				p.Assignees = &assignees
			}
			if flags.Changed("due") {
				d := due
				if d != "" {
					d = formatDue(d, time.Now())
				}
				p.DueDate = &d
			}
			if p.IsEmpty() {
				return errors.New("nothing to change: pass at least one of --title, --desc, --status, --tag, --assignee, --due")
			}

			updated, err := s.Patch(cmd.Context(), t.ID, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", shortID(updated.ID), updated.Title)
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new column (todo, doing, done)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tags (replaces all)")
	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "assignees (replaces all)")
	cmd.Flags().StringVar(&due, "due", "", "due date, empty to clear")
	return cmd
}

func newMoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "mv <id> <column>",
		Aliases: []string{"move"},
		Short:   "Move a task to another column",
		Example: "  kanbo mv 3f2a doing\n  kanbo mv 3f2a done",
		Args:    cobra.ExactArgs(2),
		RunE: rt.withOwnedBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			t, err := s.Resolve(args[0])
			if err != nil {
				return err
			}
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := s.Move(cmd.Context(), t.ID, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s: %s\n", shortID(t.ID), status.Label(), t.Title)
			return nil
		}),
	}
}

func newRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: rt.withOwnedBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			t, err := s.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", shortID(t.ID), t.Title)
			return nil
		}),
	}
}

func newClearCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task on your board",
		Args:  cobra.NoArgs,
		RunE: rt.withOwnedBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			if !yes {
				return fmt.Errorf("refusing to delete %d tasks without --yes", s.Len())
			}
			n := s.Len()
			s.ClearAll(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d tasks\n", n)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}
