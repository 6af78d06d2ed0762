package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAssignee       = errors.New("task is not assigned to you")
	ErrEvidenceRequired  = errors.New("at least one photo is required to complete a task")
)

// Step is the action a tap on a task card triggers.
type Step int

const (
	StepNone Step = iota
	StepStart
	StepComplete
)

// Next returns what the assignee's next action on a task in status would be.
func Next(status model.TaskStatus) Step {
	switch status {
	case model.StatusPending:
		return StepStart
	case model.StatusInProgress:
		return StepComplete
	default:
		return StepNone
	}
}

// Completion is the evidence staged before a task is finalised.
type Completion struct {
	Photos      []string
	Observation string
}

// Start moves a pending task to in progress. Only the assignee may start it.
// The task is modified in place only on success.
func Start(task *model.Task, actor model.Actor) error {
	if !task.AssignedToUser(actor.ID) {
		return ErrNotAssignee
	}
	if task.Status != model.StatusPending {
		return fmt.Errorf("start %s task: %w", task.Status, ErrInvalidTransition)
	}
	task.Status = model.StatusInProgress
	return nil
}

// Complete finalises an in-progress task with photo evidence, appending the new
// photos to the existing ones and stamping the completion time.
func Complete(task *model.Task, actor model.Actor, c Completion, now time.Time) error {
	if !task.AssignedToUser(actor.ID) {
		return ErrNotAssignee
	}
	if task.Status != model.StatusInProgress {
		return fmt.Errorf("complete %s task: %w", task.Status, ErrInvalidTransition)
	}
	photos := nonEmpty(c.Photos)
	if len(photos) == 0 {
		return ErrEvidenceRequired
	}

	merged := make(model.Refs, 0, len(task.Photos)+len(photos))
	merged = append(merged, task.Photos...)
	merged = append(merged, photos...)

	completedAt := now
	task.Status = model.StatusCompleted
	task.CompletedAt = &completedAt
	task.Photos = merged
	task.CompletionObservation = nil
	if obs := strings.TrimSpace(c.Observation); obs != "" {
		task.CompletionObservation = &obs
	}
	return nil
}

// Reopen returns a completed task to pending and reschedules it for now so it
// shows up in today's list again. Restricted to roles allowed to reopen.
func Reopen(task *model.Task, actor model.Actor, now time.Time) error {
	if err := access.Require(actor.Role, access.ReopenTask); err != nil {
		return err
	}
	if task.Status != model.StatusCompleted {
		return fmt.Errorf("reopen %s task: %w", task.Status, ErrInvalidTransition)
	}
	task.Status = model.StatusPending
	task.CompletedAt = nil
	task.CompletionObservation = nil
	task.ScheduledFor = now
	return nil
}

func nonEmpty(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref) != "" {
			out = append(out, ref)
		}
	}
	return out
}
