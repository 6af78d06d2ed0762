package service

import (
	"context"

	"condocheck/internal/model"
)

// TaskRepository is the task storage used by services.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, condoID, taskID uint) (*model.Task, error)
	ListByCondo(ctx context.Context, condoID uint) ([]model.Task, error)
	ListOpen(ctx context.Context, condoID uint) ([]model.Task, error)
	Delete(ctx context.Context, condoID, taskID uint) error
}

// UserRepository is the user storage used by services.
type UserRepository interface {
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, userID uint, telegramID int64) error
	ListByCondo(ctx context.Context, condoID uint) ([]model.User, error)
	ListLinked(ctx context.Context) ([]model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uint) error
}

// CondoRepository stores condominiums and their documents.
type CondoRepository interface {
	Save(ctx context.Context, condo *model.Condo) error
	FindByID(ctx context.Context, id uint) (*model.Condo, error)
	ListAll(ctx context.Context) ([]model.Condo, error)
	Delete(ctx context.Context, id uint) error
	SaveDocument(ctx context.Context, doc *model.Document) error
	ListDocuments(ctx context.Context, condoID uint) ([]model.Document, error)
	DeleteDocument(ctx context.Context, condoID, id uint) error
}

// CategoryRepository stores task categories and job functions.
type CategoryRepository interface {
	GetOrCreate(ctx context.Context, condoID uint, name string) (*model.Category, error)
	ListByCondo(ctx context.Context, condoID uint) ([]model.Category, error)
	Delete(ctx context.Context, condoID uint, name string) error
	GetOrCreateJobFunction(ctx context.Context, condoID uint, name string) (*model.JobFunction, error)
	ListJobFunctions(ctx context.Context, condoID uint) ([]model.JobFunction, error)
}

// IncidentRepository stores the occurrence log.
type IncidentRepository interface {
	Save(ctx context.Context, incident *model.Incident) error
	FindByID(ctx context.Context, condoID, id uint) (*model.Incident, error)
	ListByCondo(ctx context.Context, condoID uint) ([]model.Incident, error)
	Delete(ctx context.Context, condoID, id uint) error
}

// VendorRepository stores vendors.
type VendorRepository interface {
	Save(ctx context.Context, vendor *model.Vendor) error
	FindByID(ctx context.Context, condoID, id uint) (*model.Vendor, error)
	ListByCondo(ctx context.Context, condoID uint) ([]model.Vendor, error)
	Delete(ctx context.Context, condoID, id uint) error
}

// BudgetRepository stores quotations.
type BudgetRepository interface {
	Save(ctx context.Context, budget *model.Budget) error
	UpdateStatus(ctx context.Context, condoID, id uint, status model.BudgetStatus) error
	FindByID(ctx context.Context, condoID, id uint) (*model.Budget, error)
	ListByCondo(ctx context.Context, condoID uint) ([]model.Budget, error)
	CountByStatus(ctx context.Context, condoID uint, status model.BudgetStatus) (int64, error)
	Delete(ctx context.Context, condoID, id uint) error
}

// MessageRepository stores board messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, condoID, id uint) (*model.Message, error)
	ListVisible(ctx context.Context, condoID, userID uint) ([]model.Message, error)
	Delete(ctx context.Context, condoID, id uint) error
}

// LogRepository stores the activity log.
type LogRepository interface {
	Append(ctx context.Context, entry *model.ActivityLog, keep int) error
	List(ctx context.Context, condoID uint, limit int) ([]model.ActivityLog, error)
	Delete(ctx context.Context, condoID, id uint) error
}
