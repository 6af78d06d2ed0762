// Command condocheck runs the condominium checklist bot and its admin CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"condocheck/internal/ai"
	"condocheck/internal/app"
	"condocheck/internal/config"
	"condocheck/internal/model"
	"condocheck/internal/service"
)

var (
	configPath string
	dbPath     string
	asUserID   uint
	condoID    uint
	dateFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "condocheck",
	Short:         "Condominium task checklist bot and admin tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to condocheck.yaml")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides config)")
	rootCmd.PersistentFlags().UintVar(&asUserID, "as", 0, "id of the acting user")
	rootCmd.PersistentFlags().UintVar(&condoID, "condo", 0, "condominium id (defaults to the user's)")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "act as if today were this day (YYYY-MM-DD or DD/MM/YYYY)")
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg config.Config
	app *app.App
	now time.Time
}

// openEnv loads configuration and opens the database. The generator is only
// wired when an API key is configured.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabaseURL = dbPath
	}

	var gen service.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		gen = g
	}

	a, err := app.Open(cfg.DatabaseURL, gen)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	now, err := clock(cfg.Location)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &env{cfg: cfg, app: a, now: now}, nil
}

func (e *env) Close() {
	if err := e.app.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
}

// clock returns the current time in loc, or noon of --date when given.
func clock(loc *time.Location) (time.Time, error) {
	if dateFlag == "" {
		return time.Now().In(loc), nil
	}
	day, err := parseDay(dateFlag, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return day.Add(12 * time.Hour), nil
}

// user resolves the active acting user.
func (e *env) user(ctx context.Context) (*model.User, error) {
	if asUserID == 0 {
		return nil, fmt.Errorf("--as is required")
	}
	user, err := e.app.Users.Get(ctx, asUserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("user %d is inactive", user.ID)
	}
	return user, nil
}

// session resolves the acting user and the condominium the command applies to.
func (e *env) session(ctx context.Context) (model.User, uint, error) {
	user, err := e.user(ctx)
	if err != nil {
		return model.User{}, 0, err
	}
	id := condoID
	if id == 0 && user.CondoID != nil {
		id = *user.CondoID
	}
	if id == 0 {
		return model.User{}, 0, fmt.Errorf("--condo is required for %s", user.Name)
	}
	if user.CondoID != nil && *user.CondoID != id {
		return model.User{}, 0, fmt.Errorf("%s does not belong to condo %d", user.Name, id)
	}
	if _, err := e.app.Condos.Get(ctx, id); err != nil {
		return model.User{}, 0, err
	}
	return *user, id, nil
}

type sessionAction func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error

// withSession opens the environment and resolves the session before running action.
func withSession(action sessionAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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
		return action(ctx, cmd, e, user, id, args)
	}
}
