package board

import (
	"context"

	"github.com/dori/kanbo/internal/model"
)

// DragState is the phase of a drag interaction
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragHovering
)

// String returns a short name for the state
func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragHovering:
		return "hovering"
	default:
		return "unknown"
	}
}

// Mover applies a status change to one task
type Mover interface {
	Move(ctx context.Context, id string, status model.Status) error
}

// DragSession tracks an in-progress drag and turns a drop into exactly one
// move. It holds no task data beyond the dragged id.
type DragSession struct {
	mover  Mover
	state  DragState
	taskID string
	over   model.Status
}

// NewDragSession creates an idle drag session that drops through mover
func NewDragSession(mover Mover) *DragSession {
	return &DragSession{mover: mover}
}

// State returns the current phase
func (d *DragSession) State() DragState { return d.state }

// TaskID returns the dragged task id, or "" when idle
func (d *DragSession) TaskID() string { return d.taskID }

// Active returns true while a task is being dragged
func (d *DragSession) Active() bool { return d.state != DragIdle }

// Hovered returns the column currently under the dragged card
func (d *DragSession) Hovered() (model.Status, bool) {
	if d.state != DragHovering {
		return "", false
	}
	return d.over, true
}

// Start begins dragging taskID. Starting again replaces the previous drag.
func (d *DragSession) Start(taskID string) {
	if taskID == "" {
		return
	}
	d.state = DragDragging
	d.taskID = taskID
	d.over = ""
}

// Enter records that the card is over column status. Last hovered wins.
func (d *DragSession) Enter(status model.Status) {
	if d.state == DragIdle || !status.Valid() {
		return
	}
	d.state = DragHovering
	d.over = status
}

// Leave clears the hovered column while the drag continues
func (d *DragSession) Leave() {
	if d.state != DragHovering {
		return
	}
	d.state = DragDragging
	d.over = ""
}

// Drop ends the drag on column status and moves the dragged task there.
// It returns false without calling the mover when nothing is being dragged.
func (d *DragSession) Drop(ctx context.Context, status model.Status) (bool, error) {
	if d.state == DragIdle {
		return false, nil
	}
	taskID := d.taskID
	d.reset()
	if !status.Valid() {
		return false, &model.ValidationError{Field: "status", Reason: "drop target is not a column"}
	}
	return true, d.mover.Move(ctx, taskID, status)
}

// End cancels the drag without moving anything
func (d *DragSession) End() {
	d.reset()
}

func (d *DragSession) reset() {
	d.state = DragIdle
	d.taskID = ""
	d.over = ""
}
