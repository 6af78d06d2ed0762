package model

import "time"

// Condo is a managed property and the tenancy boundary for everything else.
type Condo struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is a file registered for a condominium (regulations, minutes, contracts).
type Document struct {
	ID         uint `gorm:"primaryKey"`
	CondoID    uint `gorm:"index"`
	Title      string
	Category   string
	FileRef    string
	UploadDate time.Time
}
