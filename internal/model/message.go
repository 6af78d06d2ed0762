package model

import "time"

// Message is a post on the internal board, either broadcast or addressed to one user.
type Message struct {
	ID            uint `gorm:"primaryKey"`
	CondoID       uint `gorm:"index"`
	SenderID      uint
	SenderName    string
	RecipientID   *uint
	RecipientName string
	Text          string
	Broadcast     bool
	Timestamp     time.Time `gorm:"index"`
}

// Log actions.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionStart    = "START"
	ActionComplete = "COMPLETE"
	ActionReopen   = "REOPEN"
	ActionResolve  = "RESOLVE"
	ActionApprove  = "APPROVE"
	ActionReject   = "REJECT"
)

// Log modules.
const (
	ModuleTask     = "TASK"
	ModuleSchedule = "SCHEDULE"
	ModuleIncident = "INCIDENT"
	ModuleVendor   = "VENDOR"
	ModuleBudget   = "BUDGET"
	ModuleMessage  = "MESSAGE"
	ModuleUser     = "USER"
	ModuleCondo    = "CONDO"
)

// ActivityLog is an audit entry of who did what.
type ActivityLog struct {
	ID         uint `gorm:"primaryKey"`
	CondoID    uint `gorm:"index"`
	UserID     uint
	UserName   string
	Action     string
	Module     string
	TargetName string
	Timestamp  time.Time `gorm:"index"`
}
