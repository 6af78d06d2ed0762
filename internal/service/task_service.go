package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/repository"
	"condocheck/internal/schedule"
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Title        string
	Description  string
	Category     string
	Frequency    model.TaskFrequency
	Dates        []time.Time
	AssignedTo   uint
	AssigneeKind model.AssigneeKind
	Photos       []string
}

// Stats are the dashboard counters of a condominium.
type Stats struct {
	Pending        int
	InProgress     int
	CompletedToday int
	PendingBudgets int
	MyOpenTasks    int
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     TaskRepository
	userRepo     UserRepository
	vendorRepo   VendorRepository
	categoryRepo CategoryRepository
	budgetRepo   BudgetRepository
	activity     *ActivityService
}

func NewTaskService(taskRepo TaskRepository, userRepo UserRepository, vendorRepo VendorRepository, categoryRepo CategoryRepository, budgetRepo BudgetRepository, activity *ActivityService) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		vendorRepo:   vendorRepo,
		categoryRepo: categoryRepo,
		budgetRepo:   budgetRepo,
		activity:     activity,
	}
}

// CreateTask stores a new task. One-off tasks get one record per date; recurring
// tasks only use the first date.
func (s *TaskService) CreateTask(ctx context.Context, actor model.Actor, condoID uint, input TaskInput, now time.Time) ([]model.Task, error) {
	if err := access.Require(actor.Role, access.ManageTasks); err != nil {
		return nil, err
	}
	if err := validateTaskInput(&input, now); err != nil {
		return nil, err
	}

	kind, name, err := s.resolveAssignee(ctx, condoID, input.AssignedTo, input.AssigneeKind)
	if err != nil {
		return nil, err
	}
	if err := s.registerCategory(ctx, condoID, input.Category); err != nil {
		return nil, err
	}

	dates := input.Dates
	if input.Frequency.Recurring() {
		dates = dates[:1]
	}

	created := make([]model.Task, 0, len(dates))
	for _, date := range dates {
		task := model.Task{
			CondoID:      condoID,
			Title:        input.Title,
			Description:  input.Description,
			Status:       model.StatusPending,
			Frequency:    input.Frequency,
			ScheduledFor: date,
			AssignedTo:   input.AssignedTo,
			AssigneeKind: kind,
			AssignedName: name,
			Category:     input.Category,
			Photos:       model.Refs(input.Photos),
		}
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return created, err
		}
		s.activity.Record(ctx, actor, condoID, model.ActionCreate, model.ModuleTask, task.Title, now)
		created = append(created, task)
	}
	return created, nil
}

// UpdateTask edits the descriptive fields and schedule of a task. Status and
// completion data are left alone.
func (s *TaskService) UpdateTask(ctx context.Context, actor model.Actor, condoID, taskID uint, input TaskInput, now time.Time) (*model.Task, error) {
	if err := access.Require(actor.Role, access.ManageTasks); err != nil {
		return nil, err
	}
	if err := validateTaskInput(&input, now); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	kind, name, err := s.resolveAssignee(ctx, condoID, input.AssignedTo, input.AssigneeKind)
	if err != nil {
		return nil, err
	}
	if err := s.registerCategory(ctx, condoID, input.Category); err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Frequency = input.Frequency
	task.Category = input.Category
	task.ScheduledFor = input.Dates[0]
	task.AssignedTo = input.AssignedTo
	task.AssigneeKind = kind
	task.AssignedName = name
	task.Photos = model.Refs(input.Photos)

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionUpdate, model.ModuleTask, task.Title, now)
	return task, nil
}

// DeleteTask removes a task completely.
func (s *TaskService) DeleteTask(ctx context.Context, actor model.Actor, condoID, taskID uint, now time.Time) (*model.Task, error) {
	if err := access.Require(actor.Role, access.ManageTasks); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if err := s.taskRepo.Delete(ctx, condoID, taskID); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionDelete, model.ModuleTask, task.Title, now)
	return task, nil
}

// GetTask returns a task the actor is allowed to see.
func (s *TaskService) GetTask(ctx context.Context, actor model.Actor, condoID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if !schedule.CanSee(*task, actor) {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return task, nil
}

// Today returns the actor's list for the day of now, plus its counters.
func (s *TaskService) Today(ctx context.Context, actor model.Actor, condoID uint, now time.Time, filter schedule.Filter) ([]model.Task, schedule.Counts, error) {
	if err := access.Require(actor.Role, access.ViewTasks); err != nil {
		return nil, schedule.Counts{}, err
	}
	tasks, err := s.taskRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, schedule.Counts{}, fmt.Errorf("list tasks: %w", err)
	}
	visible := schedule.Today(tasks, actor, now, schedule.FilterAll)
	counts := schedule.Count(visible)
	if filter != schedule.FilterAll {
		visible = schedule.Today(visible, actor, now, filter)
	}
	return visible, counts, nil
}

// Agenda lists open tasks the actor can see, ordered by schedule.
func (s *TaskService) Agenda(ctx context.Context, actor model.Actor, condoID uint) ([]model.Task, error) {
	if err := access.Require(actor.Role, access.ViewSchedule); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListOpen(ctx, condoID)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	out := tasks[:0]
	for _, task := range tasks {
		if schedule.CanSee(task, actor) {
			out = append(out, task)
		}
	}
	return out, nil
}

// History lists tasks completed between from and to (inclusive days), newest first.
func (s *TaskService) History(ctx context.Context, actor model.Actor, condoID uint, from, to time.Time) ([]model.Task, error) {
	if err := access.Require(actor.Role, access.ViewTasks); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	start, end := dayRange(from, to)
	var out []model.Task
	for _, task := range tasks {
		if task.Status != model.StatusCompleted || task.CompletedAt == nil || !schedule.CanSee(task, actor) {
			continue
		}
		if task.CompletedAt.Before(start) || task.CompletedAt.After(end) {
			continue
		}
		out = append(out, task)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}

// StartTask moves a pending task to in progress.
func (s *TaskService) StartTask(ctx context.Context, actor model.Actor, condoID, taskID uint, now time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if err := schedule.Start(task, actor); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionStart, model.ModuleTask, task.Title, now)
	return task, nil
}

// CompleteTask finalises an in-progress task with photo evidence.
func (s *TaskService) CompleteTask(ctx context.Context, actor model.Actor, condoID, taskID uint, completion schedule.Completion, now time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if err := schedule.Complete(task, actor, completion, now); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionComplete, model.ModuleTask, task.Title, now)
	return task, nil
}

// ReopenTask returns a completed task to pending for today.
func (s *TaskService) ReopenTask(ctx context.Context, actor model.Actor, condoID, taskID uint, now time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, condoID, taskID)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if err := schedule.Reopen(task, actor, now); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionReopen, model.ModuleTask, task.Title, now)
	return task, nil
}

// Stats computes the dashboard counters.
func (s *TaskService) Stats(ctx context.Context, actor model.Actor, condoID uint, now time.Time) (Stats, error) {
	if err := access.Require(actor.Role, access.ViewDashboard); err != nil {
		return Stats{}, err
	}
	tasks, err := s.taskRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return Stats{}, fmt.Errorf("list tasks: %w", err)
	}
	var st Stats
	for _, task := range tasks {
		switch task.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusInProgress:
			st.InProgress++
		case model.StatusCompleted:
			if task.CompletedAt != nil && schedule.SameDay(*task.CompletedAt, now, now.Location()) {
				st.CompletedToday++
			}
		}
		if task.AssignedToUser(actor.ID) && task.Status != model.StatusCompleted {
			st.MyOpenTasks++
		}
	}
	pending, err := s.budgetRepo.CountByStatus(ctx, condoID, model.BudgetPending)
	if err != nil {
		return Stats{}, fmt.Errorf("count budgets: %w", err)
	}
	st.PendingBudgets = int(pending)
	return st, nil
}

// ScheduledForToday returns the user's pending tasks whose schedule falls on the day of now.
func (s *TaskService) ScheduledForToday(ctx context.Context, user model.User, now time.Time) ([]model.Task, error) {
	if user.CondoID == nil {
		return nil, nil
	}
	tasks, err := s.taskRepo.ListOpen(ctx, *user.CondoID)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	var out []model.Task
	for _, task := range tasks {
		if task.Status == model.StatusPending && task.AssignedToUser(user.ID) && schedule.SameDay(task.ScheduledFor, now, now.Location()) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *TaskService) resolveAssignee(ctx context.Context, condoID, id uint, kind model.AssigneeKind) (model.AssigneeKind, string, error) {
	if id == 0 {
		return model.AssigneeUser, model.UnassignedName, nil
	}
	if kind == "" || kind == model.AssigneeUser {
		user, err := s.userRepo.FindByID(ctx, id)
		switch {
		case err == nil && user.CondoID != nil && *user.CondoID == condoID:
			return model.AssigneeUser, user.Name, nil
		case err != nil && !repository.IsNotFound(err):
			return "", "", fmt.Errorf("find assignee: %w", err)
		}
		if kind == model.AssigneeUser {
			return model.AssigneeUser, model.UnassignedName, nil
		}
	}
	vendor, err := s.vendorRepo.FindByID(ctx, condoID, id)
	switch {
	case err == nil:
		return model.AssigneeVendor, vendor.Name, nil
	case repository.IsNotFound(err):
		if kind == "" {
			kind = model.AssigneeUser
		}
		return kind, model.UnassignedName, nil
	default:
		return "", "", fmt.Errorf("find assignee: %w", err)
	}
}

func (s *TaskService) registerCategory(ctx context.Context, condoID uint, name string) error {
	if name == "" {
		return nil
	}
	if _, err := s.categoryRepo.GetOrCreate(ctx, condoID, name); err != nil {
		return err
	}
	return nil
}

func validateTaskInput(input *TaskInput, now time.Time) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	if input.Title == "" {
		return invalid("title is required")
	}
	if input.Frequency == "" {
		input.Frequency = model.FrequencyDaily
	}
	if !input.Frequency.Valid() {
		return invalid("unknown frequency %q", input.Frequency)
	}
	if len(input.Dates) == 0 {
		input.Dates = []time.Time{now}
	}
	return nil
}

// dayRange widens [from, to] to cover both calendar days completely.
func dayRange(from, to time.Time) (time.Time, time.Time) {
	start := schedule.StartOfDay(from, from.Location())
	end := schedule.StartOfDay(to, to.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
