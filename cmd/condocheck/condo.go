package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"condocheck/internal/media"
	"condocheck/internal/model"
)

var condoCmd = &cobra.Command{
	Use:   "condo",
	Short: "Manage the condominium portfolio",
}

var condoAddFlags struct {
	name    string
	address string
}

var condoAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a condominium",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.user(ctx)
		if err != nil {
			return err
		}
		condo, err := e.app.Condos.Create(ctx, user.Actor(), condoAddFlags.name, condoAddFlags.address, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "condo %d %s\n", condo.ID, condo.Name)
		return nil
	},
}

var condoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List condominiums",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		condos, err := e.app.Condos.List(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range condos {
			fmt.Fprintf(out, "#%d %s · %s\n", c.ID, c.Name, c.Address)
		}
		return nil
	},
}

var condoDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a condominium",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.user(ctx)
		if err != nil {
			return err
		}
		if err := e.app.Condos.Delete(ctx, user.Actor(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "condo %d deleted\n", id)
		return nil
	},
}

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Keep regulations, minutes and contracts",
}

var docAddFlags struct {
	title    string
	category string
}

var docAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Store a document",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		store, err := media.NewStore(e.cfg.MediaDir)
		if err != nil {
			return err
		}
		ref, err := store.Import(args[0])
		if err != nil {
			return err
		}
		title := docAddFlags.title
		if strings.TrimSpace(title) == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		doc, err := e.app.Condos.AddDocument(ctx, user.Actor(), condoID, title, docAddFlags.category, ref, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "document %d %s\n", doc.ID, doc.Title)
		return nil
	}),
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		docs, err := e.app.Condos.Documents(ctx, condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(docs) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhum documento"))
			return nil
		}
		for _, d := range docs {
			writeDocument(out, d, e.now.Location())
		}
		return nil
	}),
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a document",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Condos.DeleteDocument(ctx, user.Actor(), condoID, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "document %d deleted\n", id)
		return nil
	}),
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage task categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task categories and job functions",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		names, err := e.app.Condos.Categories(ctx, condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		functions, err := e.app.Condos.JobFunctions(ctx, condoID)
		if err != nil {
			return err
		}
		for _, fn := range functions {
			fmt.Fprintln(out, paint(mutedStyle, "função: "+fn.Name))
		}
		return nil
	}),
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a task category",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		if err := e.app.Condos.AddCategory(ctx, user.Actor(), condoID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "category %s added\n", strings.TrimSpace(args[0]))
		return nil
	}),
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a task category",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		if err := e.app.Condos.DeleteCategory(ctx, user.Actor(), condoID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "category %s deleted\n", args[0])
		return nil
	}),
}

var logListFlags struct {
	limit int
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read the activity history",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest activity entries",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		logs, err := e.app.Activity.List(ctx, user.Actor(), condoID, logListFlags.limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, l := range logs {
			writeLog(out, l, e.now.Location())
		}
		return nil
	}),
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove an activity entry",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Activity.Delete(ctx, user.Actor(), condoID, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "log %d deleted\n", id)
		return nil
	}),
}

func init() {
	condoAddCmd.Flags().StringVar(&condoAddFlags.name, "name", "", "condominium name")
	condoAddCmd.Flags().StringVar(&condoAddFlags.address, "address", "", "street address")
	condoCmd.AddCommand(condoAddCmd, condoListCmd, condoDeleteCmd)

	docAddCmd.Flags().StringVar(&docAddFlags.title, "title", "", "document title (defaults to the file name)")
	docAddCmd.Flags().StringVar(&docAddFlags.category, "category", "", "regulation, minutes, contract...")
	docCmd.AddCommand(docAddCmd, docListCmd, docDeleteCmd)

	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryDeleteCmd)

	logListCmd.Flags().IntVar(&logListFlags.limit, "limit", 20, "entries to show (0 for all)")
	logCmd.AddCommand(logListCmd, logDeleteCmd)

	rootCmd.AddCommand(condoCmd, docCmd, categoryCmd, logCmd)
}
