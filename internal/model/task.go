package model

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// TaskFrequency is the recurrence policy used to decide same-day visibility.
type TaskFrequency string

const (
	FrequencyDaily   TaskFrequency = "DAILY"
	FrequencyWeekly  TaskFrequency = "WEEKLY"
	FrequencyMonthly TaskFrequency = "MONTHLY"
	FrequencyOnce    TaskFrequency = "ONCE"
)

// Recurring reports whether the frequency repeats.
func (f TaskFrequency) Recurring() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// Valid reports whether f is a known frequency.
func (f TaskFrequency) Valid() bool {
	return f.Recurring() || f == FrequencyOnce
}

// AssigneeKind tells whether AssignedTo points to a user or a vendor.
type AssigneeKind string

const (
	AssigneeUser   AssigneeKind = "user"
	AssigneeVendor AssigneeKind = "vendor"
)

// UnassignedName is shown when the assignee cannot be resolved.
const UnassignedName = "Não atribuído"

// Task is a checklist item or scheduled job for a condominium.
type Task struct {
	ID                    uint `gorm:"primaryKey"`
	CondoID               uint `gorm:"index"`
	Title                 string
	Description           string
	Status                TaskStatus    `gorm:"index;default:PENDING"`
	Frequency             TaskFrequency `gorm:"default:DAILY"`
	ScheduledFor          time.Time     `gorm:"index"`
	CompletedAt           *time.Time
	AssignedTo            uint         `gorm:"index"`
	AssigneeKind          AssigneeKind `gorm:"default:user"`
	AssignedName          string
	Category              string
	Photos                Refs `gorm:"type:text"`
	CompletionObservation *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// AssignedToUser reports whether the task is assigned to the given user.
func (t Task) AssignedToUser(userID uint) bool {
	return t.AssigneeKind != AssigneeVendor && t.AssignedTo == userID
}
