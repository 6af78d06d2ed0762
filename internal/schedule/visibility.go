// Package schedule decides which tasks belong to a user's day and how a task
// moves between states. It has no storage or transport dependencies.
package schedule

import (
	"sort"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// Filter narrows the today list.
type Filter struct {
	// Permanent keeps only recurring tasks.
	Permanent bool
	// Status keeps only tasks in this status when non-empty.
	Status model.TaskStatus
}

// FilterAll keeps every visible task.
var FilterAll = Filter{}

// ParseFilter maps a user-facing keyword to a Filter. Unknown keywords yield false.
func ParseFilter(raw string) (Filter, bool) {
	switch raw {
	case "", "all", "ALL":
		return FilterAll, true
	case "permanent", "PERMANENT":
		return Filter{Permanent: true}, true
	case "pending", "PENDING":
		return Filter{Status: model.StatusPending}, true
	case "in_progress", "IN_PROGRESS":
		return Filter{Status: model.StatusInProgress}, true
	case "completed", "COMPLETED":
		return Filter{Status: model.StatusCompleted}, true
	case "cancelled", "CANCELLED":
		return Filter{Status: model.StatusCancelled}, true
	default:
		return Filter{}, false
	}
}

func (f Filter) match(task model.Task) bool {
	if f.Permanent && !task.Frequency.Recurring() {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	return true
}

// Counts summarises a visible set.
type Counts struct {
	All       int
	Pending   int
	Permanent int
	Completed int
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CanSee applies the role filter: management sees the whole condominium,
// everyone else only what is assigned to them.
func CanSee(task model.Task, viewer model.Actor) bool {
	if access.IsManagement(viewer.Role) {
		return true
	}
	return task.AssignedToUser(viewer.ID)
}

// DueOn applies the recency rule for the calendar day of now, without the role filter.
//
// Completed tasks show only on the day they were completed. Open one-off tasks
// show on their day and stay while overdue. Open recurring tasks show whenever
// the recurrence matches, whatever their scheduled date.
func DueOn(task model.Task, now time.Time) bool {
	loc := now.Location()
	switch task.Status {
	case model.StatusCompleted:
		return task.CompletedAt != nil && SameDay(*task.CompletedAt, now, loc)
	case model.StatusCancelled:
		return false
	}

	if task.Frequency.Recurring() {
		return RecursOn(task, now)
	}
	return !StartOfDay(task.ScheduledFor, loc).After(StartOfDay(now, loc))
}

// RecursOn reports whether the recurrence rule of task matches the calendar day of now.
func RecursOn(task model.Task, now time.Time) bool {
	loc := now.Location()
	scheduled := task.ScheduledFor.In(loc)
	today := now.In(loc)
	switch task.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return scheduled.Weekday() == today.Weekday()
	case model.FrequencyMonthly:
		return scheduled.Day() == today.Day()
	default:
		return SameDay(scheduled, today, loc)
	}
}

// Visible reports whether task belongs in viewer's today list.
func Visible(task model.Task, viewer model.Actor, now time.Time) bool {
	return CanSee(task, viewer) && DueOn(task, now)
}

// Today returns the tasks viewer should see for the day of now, after filter,
// ordered by scheduled time.
func Today(tasks []model.Task, viewer model.Actor, now time.Time, filter Filter) []model.Task {
	var out []model.Task
	for _, task := range tasks {
		if Visible(task, viewer, now) && filter.match(task) {
			out = append(out, task)
		}
	}
	SortBySchedule(out)
	return out
}

// Count computes the counters shown above the today list.
func Count(visible []model.Task) Counts {
	c := Counts{All: len(visible)}
	for _, task := range visible {
		if task.Status == model.StatusPending {
			c.Pending++
		}
		if task.Frequency.Recurring() {
			c.Permanent++
		}
		if task.Status == model.StatusCompleted {
			c.Completed++
		}
	}
	return c
}

// SortBySchedule orders tasks by ScheduledFor, then ID.
func SortBySchedule(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].ScheduledFor.Equal(tasks[j].ScheduledFor) {
			return tasks[i].ScheduledFor.Before(tasks[j].ScheduledFor)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
