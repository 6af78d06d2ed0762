package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"condocheck/internal/media"
	"condocheck/internal/model"
	"condocheck/internal/schedule"
	"condocheck/internal/service"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create tasks and move them through their lifecycle",
}

var taskAddFlags struct {
	title       string
	description string
	category    string
	frequency   string
	dates       string
	assignee    uint
	vendor      bool
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a task; one-off tasks get one record per date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, id, err := e.session(ctx)
		if err != nil {
			return err
		}
		dates, err := parseDateList(taskAddFlags.dates, e.now)
		if err != nil {
			return err
		}
		input := service.TaskInput{
			Title:       taskAddFlags.title,
			Description: taskAddFlags.description,
			Category:    taskAddFlags.category,
			Frequency:   model.TaskFrequency(strings.ToUpper(taskAddFlags.frequency)),
			Dates:       dates,
			AssignedTo:  taskAddFlags.assignee,
		}
		if taskAddFlags.vendor {
			input.AssigneeKind = model.AssigneeVendor
		}
		created, err := e.app.Tasks.CreateTask(ctx, user.Actor(), id, input, e.now)
		if err != nil {
			return err
		}
		for _, task := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "created task %d %s for %s\n",
				task.ID, task.Title, task.ScheduledFor.In(e.now.Location()).Format(time.DateOnly))
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		task, err := e.app.Tasks.GetTask(ctx, actor, condoID, taskID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writeTask(out, *task, e.now.Location(), terminalWidth())
		if task.Description != "" {
			fmt.Fprintln(out, task.Description)
		}
		if task.CompletionObservation != nil {
			fmt.Fprintf(out, "observação: %s\n", *task.CompletionObservation)
		}
		for _, ref := range task.Photos {
			fmt.Fprintf(out, "foto: %s\n", ref)
		}
		return nil
	}),
}

var taskStartCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Start a pending task assigned to the acting user",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		task, err := e.app.Tasks.StartTask(ctx, actor, condoID, taskID, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d in progress\n", task.ID)
		return nil
	}),
}

var taskCompleteFlags struct {
	photos      []string
	observation string
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete ID --photo FILE",
	Short: "Complete an in-progress task with photo evidence",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		store, err := media.NewStore(e.cfg.MediaDir)
		if err != nil {
			return err
		}
		refs := make([]string, 0, len(taskCompleteFlags.photos))
		for _, path := range taskCompleteFlags.photos {
			ref, err := store.Import(path)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		completion := schedule.Completion{Photos: refs, Observation: taskCompleteFlags.observation}
		task, err := e.app.Tasks.CompleteTask(ctx, actor, condoID, taskID, completion, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d completed with %d photo(s)\n", task.ID, len(task.Photos))
		return nil
	}),
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen ID",
	Short: "Return a completed task to pending",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		task, err := e.app.Tasks.ReopenTask(ctx, actor, condoID, taskID, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d reopened\n", task.ID)
		return nil
	}),
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		task, err := e.app.Tasks.DeleteTask(ctx, actor, condoID, taskID, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d deleted: %s\n", task.ID, task.Title)
		return nil
	}),
}

var taskEditFlags struct {
	title       string
	description string
	category    string
	frequency   string
	date        string
	assignee    uint
	vendor      bool
}

var taskEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change the fields given as flags, keeping the rest",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error {
		task, err := e.app.Tasks.GetTask(ctx, actor, condoID, taskID)
		if err != nil {
			return err
		}
		input := service.TaskInput{
			Title:        task.Title,
			Description:  task.Description,
			Category:     task.Category,
			Frequency:    task.Frequency,
			Dates:        []time.Time{task.ScheduledFor},
			AssignedTo:   task.AssignedTo,
			AssigneeKind: task.AssigneeKind,
			Photos:       task.Photos,
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			input.Title = taskEditFlags.title
		}
		if flags.Changed("description") {
			input.Description = taskEditFlags.description
		}
		if flags.Changed("category") {
			input.Category = taskEditFlags.category
		}
		if flags.Changed("frequency") {
			input.Frequency = model.TaskFrequency(strings.ToUpper(taskEditFlags.frequency))
		}
		if flags.Changed("date") {
			dates, err := parseDateList(taskEditFlags.date, e.now)
			if err != nil {
				return err
			}
			if len(dates) != 1 {
				return fmt.Errorf("--date takes exactly one day")
			}
			input.Dates = dates
		}
		if flags.Changed("assignee") {
			input.AssignedTo = taskEditFlags.assignee
			input.AssigneeKind = model.AssigneeUser
			if taskEditFlags.vendor {
				input.AssigneeKind = model.AssigneeVendor
			}
		}
		updated, err := e.app.Tasks.UpdateTask(ctx, actor, condoID, taskID, input, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d updated\n", updated.ID)
		writeTask(cmd.OutOrStdout(), *updated, e.now.Location(), terminalWidth())
		return nil
	}),
}

var taskHistoryFlags struct {
	from string
	to   string
}

var taskHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List tasks completed in a period, newest first",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		from, to, err := parseRange(taskHistoryFlags.from, taskHistoryFlags.to, e.now)
		if err != nil {
			return err
		}
		if from.IsZero() {
			from = e.now
		}
		if to.IsZero() {
			to = e.now
		}
		tasks, err := e.app.Tasks.History(ctx, user.Actor(), condoID, from, to)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhuma tarefa concluída"))
			return nil
		}
		width := terminalWidth()
		for _, task := range tasks {
			writeTask(out, task, e.now.Location(), width)
		}
		return nil
	}),
}

type taskAction func(ctx context.Context, cmd *cobra.Command, e *env, actor model.Actor, condoID, taskID uint) error

// withTask opens the environment, resolves the session and parses the task id.
func withTask(action taskAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, condoID, err := e.session(ctx)
		if err != nil {
			return err
		}
		return action(ctx, cmd, e, user.Actor(), condoID, taskID)
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// parseDateList reads comma-separated days, keeping the time of day of now.
// An empty list means today.
func parseDateList(raw string, now time.Time) ([]time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	loc := now.Location()
	offset := now.Sub(schedule.StartOfDay(now, loc))
	var out []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := parseDay(part, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, day.Add(offset))
	}
	return out, nil
}

func parseDay(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, "02/01/2006"} {
		if d, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func init() {
	f := taskAddCmd.Flags()
	f.StringVar(&taskAddFlags.title, "title", "", "task title")
	f.StringVar(&taskAddFlags.description, "description", "", "task description")
	f.StringVar(&taskAddFlags.category, "category", "", "category name")
	f.StringVar(&taskAddFlags.frequency, "frequency", "daily", "daily, weekly, monthly or once")
	f.StringVar(&taskAddFlags.dates, "dates", "", "comma-separated days (default today)")
	f.UintVar(&taskAddFlags.assignee, "assignee", 0, "user or vendor id")
	f.BoolVar(&taskAddFlags.vendor, "vendor", false, "assignee is a vendor")

	taskCompleteCmd.Flags().StringSliceVar(&taskCompleteFlags.photos, "photo", nil, "photo file (repeatable)")
	taskCompleteCmd.Flags().StringVar(&taskCompleteFlags.observation, "obs", "", "completion observation")

	f = taskEditCmd.Flags()
	f.StringVar(&taskEditFlags.title, "title", "", "task title")
	f.StringVar(&taskEditFlags.description, "description", "", "task description")
	f.StringVar(&taskEditFlags.category, "category", "", "category name")
	f.StringVar(&taskEditFlags.frequency, "frequency", "", "daily, weekly, monthly or once")
	f.StringVar(&taskEditFlags.date, "date", "", "new scheduled day")
	f.UintVar(&taskEditFlags.assignee, "assignee", 0, "user or vendor id")
	f.BoolVar(&taskEditFlags.vendor, "vendor", false, "assignee is a vendor")

	taskHistoryCmd.Flags().StringVar(&taskHistoryFlags.from, "from", "", "first day (default today)")
	taskHistoryCmd.Flags().StringVar(&taskHistoryFlags.to, "to", "", "last day (default today)")

	taskCmd.AddCommand(taskAddCmd, taskShowCmd, taskEditCmd, taskStartCmd, taskCompleteCmd, taskReopenCmd, taskDeleteCmd, taskHistoryCmd)
	rootCmd.AddCommand(taskCmd)
}
