package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"condocheck/internal/model"
	"condocheck/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage staff accounts",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the staff of the condominium",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		staff, err := e.app.Users.Staff(ctx, user.Actor(), condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range staff {
			writeUser(out, u)
		}
		return nil
	}),
}

var userAddFlags struct {
	name     string
	role     string
	jobTitle string
	email    string
	password string
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a staff account in the condominium",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		created, err := e.app.Users.Register(ctx, user.Actor(), service.UserInput{
			Name:     userAddFlags.name,
			Role:     model.Role(strings.ToUpper(userAddFlags.role)),
			JobTitle: userAddFlags.jobTitle,
			Email:    userAddFlags.email,
			Password: userAddFlags.password,
			CondoID:  &condoID,
			Active:   true,
		}, e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d %s (%s)\n", created.ID, created.Name, created.Role)
		return nil
	}),
}

func userActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			updated, err := e.app.Users.SetActive(ctx, user.Actor(), condoID, id, active, e.now)
			if err != nil {
				return err
			}
			state := "inactive"
			if updated.Active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d is now %s\n", updated.ID, state)
			return nil
		}),
	}
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a staff account",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Users.Delete(ctx, user.Actor(), condoID, id, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d deleted\n", id)
		return nil
	}),
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&userAddFlags.name, "name", "", "full name")
	f.StringVar(&userAddFlags.role, "role", "", "SINDICO, GESTOR, ZELADOR, LIMPEZA or PORTEIRO")
	f.StringVar(&userAddFlags.jobTitle, "job-title", "", "job function shown to the team")
	f.StringVar(&userAddFlags.email, "email", "", "contact e-mail")
	f.StringVar(&userAddFlags.password, "password", "", "initial password")

	userCmd.AddCommand(
		userListCmd,
		userAddCmd,
		userActiveCmd("activate", "Enable an account", true),
		userActiveCmd("deactivate", "Disable an account", false),
		userDeleteCmd,
	)
	rootCmd.AddCommand(userCmd)
}
