package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"condocheck/internal/schedule"
)

var todayFilter string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the acting user's task list for the day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, ok := schedule.ParseFilter(todayFilter)
		if !ok {
			return fmt.Errorf("unknown filter %q", todayFilter)
		}
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
		tasks, counts, err := e.app.Tasks.Today(ctx, user.Actor(), id, e.now, filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, paint(headerStyle, fmt.Sprintf("%s · %s", user.Name, e.now.Format("02/01/2006"))))
		fmt.Fprintf(out, "todas %d · pendentes %d · permanentes %d · concluídas %d\n",
			counts.All, counts.Pending, counts.Permanent, counts.Completed)
		if len(tasks) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhuma tarefa"))
			return nil
		}
		width := terminalWidth()
		for _, task := range tasks {
			writeTask(out, task, e.now.Location(), width)
		}
		return nil
	},
}

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "List open tasks ordered by schedule",
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
		tasks, err := e.app.Tasks.Agenda(ctx, user.Actor(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		width := terminalWidth()
		for _, task := range tasks {
			writeTask(out, task, e.now.Location(), width)
		}
		return nil
	},
}

func init() {
	todayCmd.Flags().StringVar(&todayFilter, "filter", "all", "all, permanent, pending, in_progress, completed or cancelled")
	rootCmd.AddCommand(todayCmd, agendaCmd)
}
