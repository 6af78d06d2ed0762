package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"condocheck/internal/model"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Use the internal message board",
}

var messagePostFlags struct {
	to uint
}

var messagePostCmd = &cobra.Command{
	Use:   "post TEXT...",
	Short: "Post to everyone, or to one user with --to",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		var to *uint
		if messagePostFlags.to != 0 {
			id := messagePostFlags.to
			to = &id
		}
		msg, err := e.app.Messages.Post(ctx, user.Actor(), condoID, to, strings.Join(args, " "), e.now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "message %d posted\n", msg.ID)
		return nil
	}),
}

var messageBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the messages you can read",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		messages, err := e.app.Messages.Board(ctx, user.Actor(), condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(messages) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "mural vazio"))
			return nil
		}
		width := terminalWidth()
		for _, m := range messages {
			writeMessage(out, m, e.now.Location(), width)
		}
		return nil
	}),
}

var messageDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a message",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Messages.Delete(ctx, user.Actor(), condoID, id, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "message %d deleted\n", id)
		return nil
	}),
}

func init() {
	messagePostCmd.Flags().UintVar(&messagePostFlags.to, "to", 0, "recipient user id")
	messageCmd.AddCommand(messagePostCmd, messageBoardCmd, messageDeleteCmd)
	rootCmd.AddCommand(messageCmd)
}
