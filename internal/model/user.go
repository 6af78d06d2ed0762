package model

import "time"

// Role is a staff or management role inside a condominium.
type Role string

const (
	RoleSindico  Role = "SINDICO"
	RoleGestor   Role = "GESTOR"
	RoleZelador  Role = "ZELADOR"
	RoleLimpeza  Role = "LIMPEZA"
	RolePorteiro Role = "PORTEIRO"
)

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleSindico:
		return "Síndico"
	case RoleGestor:
		return "Gestor"
	case RoleZelador:
		return "Zelador"
	case RoleLimpeza:
		return "Limpeza"
	case RolePorteiro:
		return "Porteiro"
	default:
		return string(r)
	}
}

// User is a person who logs into the system. TelegramID is set once the
// account is linked to a chat.
type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Role         Role `gorm:"index"`
	JobTitle     string
	Email        string
	PasswordHash string
	Active       bool
	CondoID      *uint  `gorm:"index"`
	TelegramID   *int64 `gorm:"uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies who performs an operation. System is set only on
// SystemActor and never on an actor derived from a User.
type Actor struct {
	ID     uint
	Name   string
	Role   Role
	System bool
}

// SystemActor is used for provisioning outside any user session.
var SystemActor = Actor{Name: "sistema", System: true}

// Actor returns the acting identity for u.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
