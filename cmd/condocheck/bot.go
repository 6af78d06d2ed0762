package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"condocheck/internal/bot"
	"condocheck/internal/service"
)

const jobTimeout = 30 * time.Second

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot with daily notices and manager digests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.cfg.RequireTelegram(); err != nil {
			return err
		}

		telegramBot, err := bot.New(e.cfg.TelegramToken, e.app.BotServices(), e.cfg)
		if err != nil {
			return err
		}

		scheduler := service.NewSchedulerService(e.cfg.Location)
		if _, err := scheduler.ScheduleDaily(e.cfg.NotifyAt, runJob("today notices", telegramBot.SendTodayNotices)); err != nil {
			return err
		}
		if e.cfg.ReportInterval > 0 {
			if _, err := scheduler.ScheduleInterval(e.cfg.ReportInterval, runJob("digest", telegramBot.SendDigests)); err != nil {
				return err
			}
		}
		scheduler.Start()
		defer scheduler.Stop()

		log.Println("[info] condocheck bot started")
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Println("[info] shutdown complete")
		return nil
	},
}

func runJob(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("%s: %v", name, err)
		}
	}
}

func init() {
	rootCmd.AddCommand(botCmd)
}
