package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/ui/theme"
)

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeForm
	BoardModeSearch
	BoardModeFilter
	BoardModeConfirmDelete
	BoardModeConfirmClear
)

const (
	numColumns = 3
	// Every card is a title line and a details line
	cardHeight = 2
	// Rows above the first card: column headers, then the top border
	boardTopRows = 2
)

// BoardView renders the three columns and handles editing, filtering and
// moving cards. The session is shared with the caller and mutated in place.
type BoardView struct {
	session *board.Session
	drag    *board.DragSession
	width   int
	height  int

	// Navigation state
	currentColumn int
	cursorRow     int

	// Per-column scroll offset
	columnScroll [numColumns]int

	criteria board.Criteria

	mode         BoardMode
	form         TaskForm
	filter       FilterDialog
	search       textinput.Model
	deleteTaskID string
}

// NewBoardView creates a board view over session
func NewBoardView(session *board.Session) BoardView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	return BoardView{
		session:  session,
		drag:     board.NewDragSession(session),
		criteria: board.DefaultCriteria(),
		search:   ti,
	}
}

// Init initializes the board view
func (v BoardView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	if v.mode == BoardModeForm {
		v.form = v.form.SetWidth(v.dialogWidth())
	}
	v.clampCursor()
	return v
}

// Criteria returns the active filter
func (v BoardView) Criteria() board.Criteria {
	return v.criteria
}

// Dragging reports whether a card is being moved
func (v BoardView) Dragging() bool {
	return v.drag.Active()
}

// IsInputMode returns whether keys are going to an input or dialog
func (v BoardView) IsInputMode() bool {
	return v.mode != BoardModeNormal
}

// Update handles messages
func (v BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		switch v.mode {
		case BoardModeForm:
			return v.handleFormMode(msg)
		case BoardModeSearch:
			return v.handleSearchMode(msg)
		case BoardModeFilter:
			return v.handleFilterMode(msg)
		case BoardModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		case BoardModeConfirmClear:
			return v.handleConfirmClearMode(msg)
		default:
			if v.drag.Active() {
				return v.handleGrabMode(msg)
			}
			return v.handleNormalMode(msg)
		}
	}

	// Keep the cursor blinking in text inputs
	switch v.mode {
	case BoardModeForm:
		var cmd tea.Cmd
		v.form, _, cmd = v.form.Update(msg)
		return v, cmd
	case BoardModeSearch:
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleNormalMode handles keys in normal mode
func (v BoardView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	// Column navigation
	case "h", "left":
		if v.currentColumn > 0 {
			v.currentColumn--
			v.clampCursor()
		}
		return v, nil

	case "l", "right":
		if v.currentColumn < numColumns-1 {
			v.currentColumn++
			v.clampCursor()
		}
		return v, nil

	// Row navigation
	case "j", "down":
		col := v.column(v.currentColumn)
		if v.cursorRow < len(col)-1 {
			v.cursorRow++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.cursorRow > 0 {
			v.cursorRow--
			v.ensureCursorVisible()
		}
		return v, nil

	case "g":
		v.cursorRow = 0
		v.columnScroll[v.currentColumn] = 0
		return v, nil

	case "G":
		col := v.column(v.currentColumn)
		if len(col) > 0 {
			v.cursorRow = len(col) - 1
			v.ensureCursorVisible()
		}
		return v, nil

	// Move task between columns
	case "H":
		return v.moveCurrent(-1)

	case "L":
		return v.moveCurrent(1)

	// Pick the card up; h/l then chooses where it lands
	case " ":
		task, ok := v.currentTask()
		if !ok {
			return v, nil
		}
		v.drag.Start(task.ID)
		v.drag.Enter(statusAt(v.currentColumn))
		return v, nil

	case "a":
		v.mode = BoardModeForm
		v.form = NewTaskForm(model.Task{Status: statusAt(v.currentColumn)}, v.dialogWidth())
		return v, textinput.Blink

	case "enter", "e":
		task, ok := v.currentTask()
		if !ok {
			return v, nil
		}
		v.mode = BoardModeForm
		v.form = NewTaskForm(task, v.dialogWidth())
		return v, nil

	case "d":
		if task, ok := v.currentTask(); ok {
			v.deleteTaskID = task.ID
			v.mode = BoardModeConfirmDelete
		}
		return v, nil

	case "X":
		if v.session.Len() > 0 {
			v.mode = BoardModeConfirmClear
		}
		return v, nil

	case "f":
		v.mode = BoardModeFilter
		v.filter = NewFilterDialog(v.criteria, v.session.AvailableTags(), v.session.AvailableAssignees())
		return v, nil

	case "/":
		v.mode = BoardModeSearch
		v.search.SetValue(v.criteria.SearchQuery)
		v.search.Placeholder = "Search titles and descriptions..."
		v.search.Focus()
		v.search.CursorEnd()
		return v, nil

	case "r":
		v.session.Reload(context.Background())
		v.clampCursor()
		return v, statusCmd("Board reloaded")

	case "esc":
		if v.criteria.IsActive() {
			v.criteria = board.DefaultCriteria()
			v.resetScroll()
			return v, statusCmd("Filters cleared")
		}
		return v, nil
	}

	return v, nil
}

// handleGrabMode handles keys while a card is picked up
func (v BoardView) handleGrabMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	hovered, ok := v.drag.Hovered()
	target := v.currentColumn
	if ok {
		target = hovered.Index()
	}

	switch msg.String() {
	case "h", "left":
		if target > 0 {
			v.drag.Enter(statusAt(target - 1))
		}
	case "l", "right":
		if target < numColumns-1 {
			v.drag.Enter(statusAt(target + 1))
		}
	case " ", "enter":
		return v.drop(statusAt(target))
	case "esc":
		v.drag.End()
		return v, statusCmd("Move cancelled")
	}
	return v, nil
}

// handleMouse maps pointer gestures onto the drag session. Coordinates are
// relative to the top-left corner of the board.
func (v BoardView) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if v.mode != BoardModeNormal {
		return v, nil
	}
	col, row := v.hitTest(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || col < 0 || row < 0 {
			return v, nil
		}
		v.currentColumn = col
		v.cursorRow = row
		task := v.column(col)[row]
		v.drag.Start(task.ID)
		v.drag.Enter(statusAt(col))

	case tea.MouseActionMotion:
		if !v.drag.Active() {
			return v, nil
		}
		if col < 0 {
			v.drag.Leave()
		} else {
			v.drag.Enter(statusAt(col))
		}

	case tea.MouseActionRelease:
		if !v.drag.Active() {
			return v, nil
		}
		if col < 0 {
			v.drag.End()
			return v, nil
		}
		return v.drop(statusAt(col))
	}
	return v, nil
}

// drop finishes the current drag on status and follows the card there
func (v BoardView) drop(status model.Status) (tea.Model, tea.Cmd) {
	taskID := v.drag.TaskID()
	moved, err := v.drag.Drop(context.Background(), status)
	if errors.Is(err, model.ErrNotFound) {
		return v, nil
	}
	if err != nil {
		return v, errorCmd(err)
	}
	if moved {
		v.focusTask(taskID)
	}
	return v, nil
}

func (v BoardView) moveCurrent(direction int) (tea.Model, tea.Cmd) {
	task, ok := v.currentTask()
	if !ok {
		return v, nil
	}
	target := v.currentColumn + direction
	if target < 0 || target >= numColumns {
		return v, nil
	}
	if err := v.session.Move(context.Background(), task.ID, statusAt(target)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return v, nil
		}
		return v, errorCmd(err)
	}
	v.focusTask(task.ID)
	return v, nil
}

// handleFormMode forwards keys to the task form
func (v BoardView) handleFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		result FormResult
		cmd    tea.Cmd
	)
	v.form, result, cmd = v.form.Update(msg)

	switch result {
	case FormCancelled:
		v.mode = BoardModeNormal
		return v, nil
	case FormSubmitted:
		return v.saveForm()
	}
	return v, cmd
}

func (v BoardView) saveForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()

	if v.form.TaskID == "" {
		draft := v.form.Task(model.Task{})
		task, err := v.session.Create(ctx, board.NewTaskInput{
			Title:       draft.Title,
			Description: draft.Description,
			Status:      draft.Status,
			DueDate:     draft.DueDate,
			Tags:        draft.Tags,
			Assignees:   draft.Assignees,
		})
		if err != nil {
			v.form = v.form.SetError(err.Error())
			return v, nil
		}
		v.mode = BoardModeNormal
		v.focusTask(task.ID)
		return v, statusCmd(fmt.Sprintf("Created: %s", task.Title))
	}

	base, ok := v.session.Get(v.form.TaskID)
	if !ok {
		v.mode = BoardModeNormal
		return v, nil
	}
	edited := v.form.Task(base)
	if err := v.session.Update(ctx, edited); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			v.mode = BoardModeNormal
			return v, nil
		}
		v.form = v.form.SetError(err.Error())
		return v, nil
	}
	v.mode = BoardModeNormal
	v.focusTask(edited.ID)
	return v, statusCmd("Task updated")
}

// handleSearchMode handles keys in search mode
func (v BoardView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.criteria.SearchQuery = strings.TrimSpace(v.search.Value())
		v.mode = BoardModeNormal
		v.search.Blur()
		v.resetScroll()
		return v, nil
	case "esc":
		v.mode = BoardModeNormal
		v.search.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	return v, cmd
}

// handleFilterMode forwards keys to the filter dialog
func (v BoardView) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result FormResult
	v.filter, result = v.filter.Update(msg)

	switch result {
	case FormSubmitted:
		v.criteria = v.filter.Criteria()
		v.mode = BoardModeNormal
		v.resetScroll()
		if v.criteria.IsActive() {
			return v, statusCmd("Filter applied")
		}
		return v, nil
	case FormCancelled:
		v.mode = BoardModeNormal
	}
	return v, nil
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		taskID := v.deleteTaskID
		v.deleteTaskID = ""
		if err := v.session.Delete(context.Background(), taskID); err != nil && !errors.Is(err, model.ErrNotFound) {
			return v, errorCmd(err)
		}
		v.clampCursor()
		return v, statusCmd("Task deleted")
	case "n", "N", "esc":
		v.mode = BoardModeNormal
		v.deleteTaskID = ""
		return v, nil
	}
	return v, nil
}

// handleConfirmClearMode handles keys in clear-all confirmation mode
func (v BoardView) handleConfirmClearMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		v.session.ClearAll(context.Background())
		v.cursorRow = 0
		v.resetScroll()
		return v, statusCmd("Board cleared")
	case "n", "N", "esc":
		v.mode = BoardModeNormal
	}
	return v, nil
}

func statusAt(column int) model.Status {
	return model.Statuses()[column]
}

// column returns the visible tasks of one column
func (v BoardView) column(index int) []model.Task {
	return v.session.VisibleColumn(statusAt(index), v.criteria)
}

func (v BoardView) currentTask() (model.Task, bool) {
	col := v.column(v.currentColumn)
	if v.cursorRow < 0 || v.cursorRow >= len(col) {
		return model.Task{}, false
	}
	return col[v.cursorRow], true
}

// focusTask moves the cursor onto id, wherever it now lives
func (v *BoardView) focusTask(id string) {
	for c := 0; c < numColumns; c++ {
		for r, t := range v.column(c) {
			if t.ID == id {
				v.currentColumn = c
				v.cursorRow = r
				v.ensureCursorVisible()
				return
			}
		}
	}
	v.clampCursor()
}

// clampCursor ensures cursor is valid for current column
func (v *BoardView) clampCursor() {
	col := v.column(v.currentColumn)
	if v.cursorRow >= len(col) {
		if len(col) > 0 {
			v.cursorRow = len(col) - 1
		} else {
			v.cursorRow = 0
		}
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *BoardView) ensureCursorVisible() {
	visible := v.visibleCardCount()
	col := v.currentColumn

	if v.cursorRow >= v.columnScroll[col]+visible {
		v.columnScroll[col] = v.cursorRow - visible + 1
	}
	if v.cursorRow < v.columnScroll[col] {
		v.columnScroll[col] = v.cursorRow
	}
}

func (v *BoardView) resetScroll() {
	v.cursorRow = 0
	for i := range v.columnScroll {
		v.columnScroll[i] = 0
	}
}

// columnInnerHeight is the number of content lines inside a column border.
// One line goes to the column headers, two to the border, one to the footer.
func (v BoardView) columnInnerHeight() int {
	h := v.height - 4
	if h < cardHeight+2 {
		return cardHeight + 2
	}
	return h
}

// visibleCardCount returns how many cards fit in a column. Two lines are
// kept for the scroll indicators.
func (v BoardView) visibleCardCount() int {
	n := (v.columnInnerHeight() - 2) / cardHeight
	if n < 1 {
		return 1
	}
	return n
}

// columnOuterWidth is the width of one column including its border
func (v BoardView) columnOuterWidth() int {
	w := v.width / numColumns
	if w < 22 {
		w = 22
	}
	return w
}

func (v BoardView) dialogWidth() int {
	w := v.width - 10
	if w > 70 {
		w = 70
	}
	if w < 30 {
		w = 30
	}
	return w
}

// hitTest maps a point to a column and a card index in that column. col is
// -1 outside every column and row is -1 when the point is not on a card.
func (v BoardView) hitTest(x, y int) (col, row int) {
	outer := v.columnOuterWidth()
	bottom := boardTopRows + v.columnInnerHeight()
	if x < 0 || y < 1 || y > bottom || x >= outer*numColumns {
		return -1, -1
	}
	col = x / outer

	line := y - boardTopRows
	scroll := v.columnScroll[col]
	if scroll > 0 {
		line-- // "more above" indicator
	}
	if line < 0 {
		return col, -1
	}
	slot := line / cardHeight
	if slot >= v.visibleCardCount() {
		return col, -1
	}
	idx := scroll + slot
	if idx >= len(v.column(col)) {
		return col, -1
	}
	return col, idx
}

// View renders the board
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	switch v.mode {
	case BoardModeForm:
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, v.form.View())
	case BoardModeFilter:
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, v.filter.View())
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	outer := v.columnOuterWidth()
	colWidth := outer - 2
	counts := v.session.Counts()
	hovered, hovering := v.drag.Hovered()

	// Headers show "shown/total" while a filter hides cards
	var headers []string
	for i := 0; i < numColumns; i++ {
		status := statusAt(i)
		shown := len(v.column(i))
		label := fmt.Sprintf("%s (%d)", status.Label(), counts[status])
		if shown != counts[status] {
			label = fmt.Sprintf("%s (%d/%d)", status.Label(), shown, counts[status])
		}
		hs := lipgloss.NewStyle().
			Bold(true).
			Foreground(t.StatusColor(status)).
			Width(outer).
			Align(lipgloss.Center)
		if i == v.currentColumn {
			hs = hs.Background(t.Highlight)
		}
		headers = append(headers, hs.Render(label))
	}
	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headers...)

	visible := v.visibleCardCount()
	var cols []string
	for i := 0; i < numColumns; i++ {
		status := statusAt(i)
		tasks := v.column(i)
		scroll := v.columnScroll[i]

		start, end := scroll, scroll+visible
		if start > len(tasks) {
			start = len(tasks)
		}
		if end > len(tasks) {
			end = len(tasks)
		}

		var items []string
		if scroll > 0 {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-2).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↑ %d more", scroll)))
		}
		for j := start; j < end; j++ {
			focused := i == v.currentColumn && j == v.cursorRow
			items = append(items, v.renderCard(tasks[j], colWidth-2, focused))
		}
		if end < len(tasks) {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-2).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↓ %d more", len(tasks)-end)))
		}

		content := strings.Join(items, "\n")
		if len(tasks) == 0 {
			empty := "Drop tasks here"
			if v.criteria.IsActive() && counts[status] > 0 {
				empty = "No matching tasks"
			}
			content = styles.EmptyColumn.Width(colWidth - 2).Align(lipgloss.Center).Render(empty)
		}

		cs := styles.Column
		switch {
		case hovering && hovered == status:
			cs = styles.ColumnDrop
		case i == v.currentColumn:
			cs = styles.ColumnFocused
		}
		cols = append(cols, cs.Width(colWidth).Height(v.columnInnerHeight()).Render(content))
	}
	columnsRow := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, columnsRow, v.renderFooter())
}

// renderCard draws a card in exactly cardHeight lines
func (v BoardView) renderCard(task model.Task, width int, focused bool) string {
	styles := theme.Current.Styles
	inner := width - 2

	style := styles.Card
	switch {
	case v.drag.Active() && v.drag.TaskID() == task.ID:
		style = styles.CardDragging
	case focused:
		style = styles.CardFocused
	case task.IsDone():
		style = styles.CardDone
	}

	title := truncate(task.Title, inner)

	// Details line: tags, assignee initials, counters, due date
	var parts []string
	for _, tag := range task.Tags {
		parts = append(parts, styles.TagStyle(tag).Render("#"+tag))
	}
	if n := len(task.Assignees); n > 0 {
		shown := task.Assignees
		if n > 3 {
			shown = shown[:3]
		}
		var avatars []string
		for _, a := range shown {
			avatars = append(avatars, styles.Avatar.Render(v.initials(a)))
		}
		if n > 3 {
			avatars = append(avatars, styles.Counter.Render(fmt.Sprintf("+%d", n-3)))
		}
		parts = append(parts, strings.Join(avatars, " "))
	}
	if task.Comments > 0 {
		parts = append(parts, styles.Counter.Render(fmt.Sprintf("✉%d", task.Comments)))
	}
	if task.Attachments > 0 {
		parts = append(parts, styles.Counter.Render(fmt.Sprintf("⊞%d", task.Attachments)))
	}
	if task.DueDate != "" {
		parts = append(parts, styles.DueDate.Render("◷ "+task.DueDate))
	}

	details := ""
	for _, p := range parts {
		next := p
		if details != "" {
			next = details + " " + p
		}
		if lipgloss.Width(next) > inner {
			break
		}
		details = next
	}

	return style.Width(width).Render(title + "\n" + details)
}

// initials returns the avatar letters for an assignee. The signed-in user
// is shown by name rather than by id.
func (v BoardView) initials(assignee string) string {
	name := assignee
	if id := v.session.Identity(); id.UserID == assignee {
		name = id.DisplayName()
	}
	var out []rune
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '_' || r == '-' || r == '@'
	}) {
		out = append(out, unicode.ToUpper([]rune(word)[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 1 {
		if r := []rune(name); len(r) > 1 {
			out = append(out, unicode.ToUpper(r[1]))
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// renderFooter renders the mode-specific prompt or hints
func (v BoardView) renderFooter() string {
	t := theme.Current.Theme

	inputStyle := lipgloss.NewStyle().Foreground(t.Primary)
	hintStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	switch v.mode {
	case BoardModeSearch:
		return inputStyle.Render("Search: ") + v.search.View()

	case BoardModeConfirmDelete:
		title := ""
		if task, ok := v.session.Get(v.deleteTaskID); ok {
			title = task.Title
		}
		return lipgloss.NewStyle().Foreground(t.Error).Bold(true).
			Render(fmt.Sprintf("Delete '%s'? (y/n)", title))

	case BoardModeConfirmClear:
		return lipgloss.NewStyle().Foreground(t.Error).Bold(true).
			Render(fmt.Sprintf("Delete all %d tasks? This cannot be undone. (y/n)", v.session.Len()))
	}

	if v.drag.Active() {
		title := ""
		if task, ok := v.session.Get(v.drag.TaskID()); ok {
			title = task.Title
		}
		target := "…"
		if s, ok := v.drag.Hovered(); ok {
			target = s.Label()
		}
		return inputStyle.Render(fmt.Sprintf("Moving '%s' → %s", truncate(title, 30), target)) +
			hintStyle.Render("  h/l: column • space/enter: drop • esc: cancel")
	}

	if v.criteria.IsActive() {
		var active []string
		if q := v.criteria.SearchQuery; q != "" {
			active = append(active, "search: "+q)
		}
		if len(v.criteria.Tags) > 0 {
			active = append(active, "tags: "+strings.Join(v.criteria.Tags, ","))
		}
		if len(v.criteria.Assignees) > 0 {
			active = append(active, "people: "+strings.Join(v.criteria.Assignees, ","))
		}
		if !v.criteria.ShowCompleted {
			active = append(active, "completed hidden")
		}
		return lipgloss.NewStyle().Foreground(t.Info).Render("["+strings.Join(active, " | ")+"] ") +
			hintStyle.Render("f: edit filter • esc: clear")
	}

	return hintStyle.Render("h/l: column • j/k: card • space: grab • H/L: move • a: add • enter: edit • d: del • f: filter • /: search")
}
