package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/ui/theme"
)

// formField indexes the focusable fields of a TaskForm
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldStatus
	fieldTags
	fieldAssignees
	fieldDue
	fieldCount
)

// FormResult tells the owner what a key press did to the form
type FormResult int

const (
	FormEditing FormResult = iota
	FormSubmitted
	FormCancelled
)

// TaskForm edits the fields of one card. An empty TaskID means create.
type TaskForm struct {
	TaskID string

	title       textinput.Model
	description textarea.Model
	tags        textinput.Model
	assignees   textinput.Model
	due         textinput.Model
	status      model.Status

	focus formField
	err   string
	width int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// NewTaskForm creates a form prefilled from task
func NewTaskForm(task model.Task, width int) TaskForm {
	f := TaskForm{
		TaskID:    task.ID,
		title:     newInput("What needs doing?", 256),
		tags:      newInput("Design, Dev", 256),
		assignees: newInput("alex, sam", 256),
		due:       newInput("Jun 12", 64),
		status:    task.Status,
	}
	if !f.status.Valid() {
		f.status = model.StatusTodo
	}

	f.description = textarea.New()
	f.description.Placeholder = "Details (optional)"
	f.description.ShowLineNumbers = false
	f.description.SetHeight(3)

	f.title.SetValue(task.Title)
	f.description.SetValue(task.Description)
	f.tags.SetValue(strings.Join(task.Tags, ", "))
	f.assignees.SetValue(strings.Join(task.Assignees, ", "))
	f.due.SetValue(task.DueDate)

	f = f.SetWidth(width)
	f.title.Focus()
	return f
}

// SetWidth resizes the inputs
func (f TaskForm) SetWidth(width int) TaskForm {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	f.width = width
	f.title.Width = inner
	f.tags.Width = inner
	f.assignees.Width = inner
	f.due.Width = inner
	f.description.SetWidth(inner)
	return f
}

// Task returns the edited values applied to base
func (f TaskForm) Task(base model.Task) model.Task {
	out := base.Clone()
	out.Title = f.title.Value()
	out.Description = f.description.Value()
	out.Status = f.status
	out.Tags = splitList(f.tags.Value())
	out.Assignees = splitList(f.assignees.Value())
	out.DueDate = f.due.Value()
	return out.Normalize()
}

// SetError shows a validation message under the form
func (f TaskForm) SetError(msg string) TaskForm {
	f.err = msg
	return f
}

func splitList(s string) []string {
	return model.NormalizeSet(strings.Split(s, ","))
}

// Update handles a message while the form is open
func (f TaskForm) Update(msg tea.Msg) (TaskForm, FormResult, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f, cmd = f.updateFocused(msg)
		return f, FormEditing, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return f, FormCancelled, nil
	case "ctrl+s":
		return f.submit()
	case "tab", "down":
		if f.focus == fieldDescription && keyMsg.String() == "down" {
			break
		}
		return f.focusField((f.focus + 1) % fieldCount), FormEditing, nil
	case "shift+tab", "up":
		if f.focus == fieldDescription && keyMsg.String() == "up" {
			break
		}
		return f.focusField((f.focus + fieldCount - 1) % fieldCount), FormEditing, nil
	case "enter":
		if f.focus != fieldDescription {
			return f.submit()
		}
	case "left", "h":
		if f.focus == fieldStatus {
			f.status = shiftStatus(f.status, -1)
			return f, FormEditing, nil
		}
	case "right", "l":
		if f.focus == fieldStatus {
			f.status = shiftStatus(f.status, 1)
			return f, FormEditing, nil
		}
	}

	var cmd tea.Cmd
	f, cmd = f.updateFocused(msg)
	return f, FormEditing, cmd
}

func (f TaskForm) submit() (TaskForm, FormResult, tea.Cmd) {
	if strings.TrimSpace(f.title.Value()) == "" {
		f.err = "Title is required"
		return f.focusField(fieldTitle), FormEditing, nil
	}
	f.err = ""
	return f, FormSubmitted, nil
}

func (f TaskForm) updateFocused(msg tea.Msg) (TaskForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldTags:
		f.tags, cmd = f.tags.Update(msg)
	case fieldAssignees:
		f.assignees, cmd = f.assignees.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return f, cmd
}

func (f TaskForm) focusField(field formField) TaskForm {
	f.title.Blur()
	f.description.Blur()
	f.tags.Blur()
	f.assignees.Blur()
	f.due.Blur()
	f.focus = field
	switch field {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldTags:
		f.tags.Focus()
	case fieldAssignees:
		f.assignees.Focus()
	case fieldDue:
		f.due.Focus()
	}
	return f
}

func shiftStatus(s model.Status, delta int) model.Status {
	statuses := model.Statuses()
	i := s.Index() + delta
	if i < 0 {
		i = 0
	}
	if i >= len(statuses) {
		i = len(statuses) - 1
	}
	return statuses[i]
}

// View renders the form as a dialog
func (f TaskForm) View() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	heading := "New task"
	if f.TaskID != "" {
		heading = "Edit task"
	}

	label := func(field formField, name string) string {
		s := styles.Label
		if f.focus == field {
			s = s.Foreground(t.Primary).Bold(true)
		}
		return s.Render(name)
	}

	var statusParts []string
	for _, s := range model.Statuses() {
		st := lipgloss.NewStyle().Foreground(t.StatusColor(s)).Padding(0, 1)
		if s == f.status {
			st = st.Background(t.Highlight).Bold(true)
		}
		statusParts = append(statusParts, st.Render(s.Label()))
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(heading))
	b.WriteString("\n")
	b.WriteString(label(fieldTitle, "Title") + "\n" + f.title.View() + "\n\n")
	b.WriteString(label(fieldDescription, "Description") + "\n" + f.description.View() + "\n\n")
	b.WriteString(label(fieldStatus, "Status") + "  " + strings.Join(statusParts, " ") + "\n\n")
	b.WriteString(label(fieldTags, "Tags") + "\n" + f.tags.View() + "\n")
	b.WriteString(styles.Placeholder.Render(fmt.Sprintf("suggested: %s", strings.Join(tagNames(), ", "))) + "\n\n")
	b.WriteString(label(fieldAssignees, "Assignees") + "\n" + f.assignees.View() + "\n\n")
	b.WriteString(label(fieldDue, "Due") + "\n" + f.due.View() + "\n")
	if f.err != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Error).Render(f.err) + "\n")
	}
	b.WriteString("\n" + styles.HelpDesc.Render("tab: next field • ←/→: status • enter/ctrl+s: save • esc: cancel"))

	return styles.Panel.Width(f.width - 4).Render(b.String())
}

func tagNames() []string {
	var names []string
	for _, tag := range model.RecommendedTags() {
		names = append(names, tag.Name)
	}
	return names
}
