package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"condocheck/internal/media"
	"condocheck/internal/service"
)

var incidentCmd = &cobra.Command{
	Use:   "incident",
	Short: "Record and resolve entries in the occurrence log",
}

var incidentAddFlags struct {
	title       string
	description string
	photos      []string
}

var incidentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an incident",
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
		input := service.IncidentInput{Title: incidentAddFlags.title, Description: incidentAddFlags.description}
		if len(incidentAddFlags.photos) > 0 {
			store, err := media.NewStore(e.cfg.MediaDir)
			if err != nil {
				return err
			}
			for _, path := range incidentAddFlags.photos {
				ref, err := store.Import(path)
				if err != nil {
					return err
				}
				input.Photos = append(input.Photos, ref)
			}
		}
		incident, err := e.app.Incidents.Report(ctx, user.Actor(), id, input, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "incident %d registered\n", incident.ID)
		return nil
	},
}

var incidentResolveCmd = &cobra.Command{
	Use:   "resolve ID",
	Short: "Toggle an incident between open and resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		incidentID, err := parseID(args[0])
		if err != nil {
			return err
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
		incident, err := e.app.Incidents.Toggle(ctx, user.Actor(), id, incidentID, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "incident %d is now %s\n", incident.ID, incident.Status)
		return nil
	},
}

var incidentListFlags struct {
	from string
	to   string
}

var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		_, id, err := e.session(ctx)
		if err != nil {
			return err
		}
		from, to, err := parseRange(incidentListFlags.from, incidentListFlags.to, e.now)
		if err != nil {
			return err
		}
		incidents, err := e.app.Incidents.List(ctx, id, from, to)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(incidents) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhuma ocorrência"))
			return nil
		}
		width := terminalWidth()
		for _, inc := range incidents {
			writeIncident(out, inc, e.now.Location(), width)
		}
		return nil
	},
}

func init() {
	incidentAddCmd.Flags().StringVar(&incidentAddFlags.title, "title", "", "incident title")
	incidentAddCmd.Flags().StringVar(&incidentAddFlags.description, "description", "", "what happened")
	incidentAddCmd.Flags().StringSliceVar(&incidentAddFlags.photos, "photo", nil, "photo file (repeatable)")
	incidentListCmd.Flags().StringVar(&incidentListFlags.from, "from", "", "first day")
	incidentListCmd.Flags().StringVar(&incidentListFlags.to, "to", "", "last day")

	incidentCmd.AddCommand(incidentAddCmd, incidentResolveCmd, incidentListCmd)
	rootCmd.AddCommand(incidentCmd)
}
