package notify

import (
	"os/exec"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dori/kanbo/internal/model"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes an external command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
	log     log.FieldLogger
}

// NewNotifier creates a notifier that shells out to notify-send
func NewNotifier(logger log.FieldLogger) *Notifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Notifier{
		enabled: true,
		run:     execRunner,
		log:     logger,
	}
}

// WithRunner replaces the command runner, mainly for tests
func (n *Notifier) WithRunner(r Runner) *Notifier {
	n.run = r
	return n
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send argument list
func (nf Notification) Args() []string {
	args := []string{}

	switch nf.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if nf.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(nf.Timeout.Milliseconds())))
	}
	if nf.Icon != "" {
		args = append(args, "-i", nf.Icon)
	}
	args = append(args, "-a", "kanbo", nf.Title)
	if nf.Body != "" {
		args = append(args, nf.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", notification.Args()...)
}

// SendTaskCompleted announces a card reaching the completed column
func (n *Notifier) SendTaskCompleted(taskTitle string) error {
	return n.Send(Notification{
		Title:   "Task completed",
		Body:    taskTitle,
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "emblem-ok-symbolic",
	})
}

// TaskMoved notifies when a task enters the completed column. Failures are
// logged; a missing notify-send must not break the board.
func (n *Notifier) TaskMoved(before, after model.Task) {
	if before.IsDone() || !after.IsDone() {
		return
	}
	if err := n.SendTaskCompleted(after.Title); err != nil {
		n.log.WithField("task_id", after.ID).WithError(err).Debug("notification failed")
	}
}
