// Package app wires storage and services together for the bot and the CLI.
package app

import (
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/bot"
	"condocheck/internal/repository"
	"condocheck/internal/service"
)

// App holds every service of the system over one database.
type App struct {
	DB *gorm.DB

	Activity    *service.ActivityService
	Users       *service.UserService
	Condos      *service.CondoService
	Tasks       *service.TaskService
	Incidents   *service.IncidentService
	Procurement *service.ProcurementService
	Messages    *service.MessageService
	Reminders   *service.ReminderService
	Reports     *service.ReportService
}

// Open connects to the database at dsn and wires the services. gen may be nil
// when no text generator is configured.
func Open(dsn string, gen service.Generator) (*App, error) {
	db, err := repository.NewDB(dsn)
	if err != nil {
		return nil, err
	}
	return New(db, gen), nil
}

// New wires the services over an open database.
func New(db *gorm.DB, gen service.Generator) *App {
	userRepo := repository.NewUserRepository(db)
	condoRepo := repository.NewCondoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	logRepo := repository.NewLogRepository(db)

	a := &App{DB: db}
	a.Activity = service.NewActivityService(logRepo)
	a.Users = service.NewUserService(userRepo, categoryRepo, a.Activity)
	a.Condos = service.NewCondoService(condoRepo, categoryRepo, a.Activity)
	a.Tasks = service.NewTaskService(taskRepo, userRepo, vendorRepo, categoryRepo, budgetRepo, a.Activity)
	a.Incidents = service.NewIncidentService(incidentRepo, a.Activity)
	a.Procurement = service.NewProcurementService(vendorRepo, budgetRepo, a.Activity)
	a.Messages = service.NewMessageService(messageRepo, userRepo, a.Activity)
	a.Reminders = service.NewReminderService(a.Tasks)
	a.Reports = service.NewReportService(taskRepo, incidentRepo, gen)
	return a
}

// BotServices returns what the Telegram bot needs.
func (a *App) BotServices() bot.Services {
	return bot.Services{
		Users:       a.Users,
		Condos:      a.Condos,
		Tasks:       a.Tasks,
		Incidents:   a.Incidents,
		Procurement: a.Procurement,
		Messages:    a.Messages,
		Activity:    a.Activity,
		Reminders:   a.Reminders,
		Reports:     a.Reports,
	}
}

// Close releases the database connection.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}
