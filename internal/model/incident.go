package model

import "time"

// IncidentStatus is the binary state of an incident.
type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "OPEN"
	IncidentResolved IncidentStatus = "RESOLVED"
)

// Incident is an entry in the occurrence log, independent of tasks.
type Incident struct {
	ID          uint `gorm:"primaryKey"`
	CondoID     uint `gorm:"index"`
	UserID      uint
	UserName    string
	Title       string
	Description string
	Timestamp   time.Time      `gorm:"index"`
	Status      IncidentStatus `gorm:"default:OPEN"`
	Photos      Refs           `gorm:"type:text"`
}
