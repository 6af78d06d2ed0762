package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"condocheck/internal/access"
	"condocheck/internal/markdown"
	"condocheck/internal/model"
	"condocheck/internal/service"
)

const reportTimeout = 2 * time.Minute

var reportFlags struct {
	from   string
	to     string
	prompt string
	html   string
	dryRun bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a management report for a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
		defer cancel()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, id, err := e.session(ctx)
		if err != nil {
			return err
		}
		from, to, err := parseRange(reportFlags.from, reportFlags.to, e.now)
		if err != nil {
			return err
		}
		if from.IsZero() {
			from = e.now
		}
		if to.IsZero() {
			to = e.now
		}
		out := cmd.OutOrStdout()

		if reportFlags.dryRun {
			if err := access.Require(user.Role, access.GenerateReport); err != nil {
				return err
			}
			prompt, err := e.app.Reports.Prompt(ctx, id, from, to, reportFlags.prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, prompt)
			return nil
		}

		report, err := e.app.Reports.Generate(ctx, user.Actor(), id, from, to, reportFlags.prompt)
		if err != nil {
			return err
		}
		if reportFlags.html != "" {
			condo, err := e.app.Condos.Get(ctx, id)
			if err != nil {
				return err
			}
			page, err := markdown.Document("Relatório · "+condo.Name, report)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportFlags.html, []byte(page), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "report written to %s\n", reportFlags.html)
			return nil
		}
		fmt.Fprint(out, markdown.Render(terminalWidth(), report))
		return nil
	},
}

var checklistFlags struct {
	info     string
	apply    bool
	assignee uint
}

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Suggest essential daily tasks for the condominium",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
		defer cancel()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, id, err := e.session(ctx)
		if err != nil {
			return err
		}
		info := strings.TrimSpace(checklistFlags.info)
		if info == "" {
			condo, err := e.app.Condos.Get(ctx, id)
			if err != nil {
				return err
			}
			info = strings.TrimSpace(condo.Name + " " + condo.Address)
		}
		items, err := e.app.Reports.SuggestChecklist(ctx, info)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, item := range items {
			fmt.Fprintf(out, "- %s [%s] %s\n", item.Title, item.Category, item.Description)
		}
		if !checklistFlags.apply {
			return nil
		}
		for _, item := range items {
			created, err := e.app.Tasks.CreateTask(ctx, user.Actor(), id, service.TaskInput{
				Title:       item.Title,
				Description: item.Description,
				Category:    item.Category,
				Frequency:   model.FrequencyOnce,
				AssignedTo:  checklistFlags.assignee,
			}, e.now)
			if err != nil {
				return err
			}
			for _, task := range created {
				fmt.Fprintf(out, "created task %d %s\n", task.ID, task.Title)
			}
		}
		return nil
	},
}

// parseRange reads optional --from/--to days. Empty values stay zero.
func parseRange(rawFrom, rawTo string, now time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if rawFrom != "" {
		if from, err = parseDay(rawFrom, now.Location()); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if rawTo != "" {
		if to, err = parseDay(rawTo, now.Location()); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.from, "from", "", "first day (default today)")
	reportCmd.Flags().StringVar(&reportFlags.to, "to", "", "last day (default today)")
	reportCmd.Flags().StringVar(&reportFlags.prompt, "prompt", "", "extra instruction for the report")
	reportCmd.Flags().StringVar(&reportFlags.html, "html", "", "write an HTML page to this file")
	reportCmd.Flags().BoolVar(&reportFlags.dryRun, "dry-run", false, "print the prompt instead of calling the generator")

	checklistCmd.Flags().StringVar(&checklistFlags.info, "info", "", "description of the condominium")
	checklistCmd.Flags().BoolVar(&checklistFlags.apply, "apply", false, "create the suggested tasks for today")
	checklistCmd.Flags().UintVar(&checklistFlags.assignee, "assignee", 0, "user id for created tasks")

	rootCmd.AddCommand(reportCmd, checklistCmd)
}
