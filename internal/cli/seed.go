package cli

import (
	"context"
	"fmt"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/config"
	"persona-quiz-service/internal/domain"
	"persona-quiz-service/internal/infra/postgres"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates demo persons and a fake game in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		title string
		token string
		user  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo persons, a fake game and an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, title, token, user)
		},
	}
	cmd.Flags().StringVar(&title, "title", "demo", "title of the fake game")
	cmd.Flags().StringVar(&token, "token", "", "access token to register (skipped when empty)")
	cmd.Flags().StringVar(&user, "user", "demo-user", "user id for --token")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, title, token, user string) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	if _, err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	catalog := postgres.NewCatalog(db)
	admin := app.NewAdminService(catalog)

	persons, err := admin.ListPersons(ctx)
	if err != nil {
		return err
	}
	if len(persons) == 0 {
		for _, p := range demoPersons() {
			if _, err := admin.CreatePerson(ctx, p); err != nil {
				return err
			}
		}
		color.Green("created %d persons", len(demoPersons()))
	}

	gameID, err := admin.CreateFakeGame(ctx, title)
	if err != nil {
		return err
	}
	color.Green("created game %q (%s)", title, gameID)

	if token != "" {
		if err := catalog.AddToken(ctx, token, user); err != nil {
			return err
		}
		color.Green("registered token for %s", user)
	}
	return nil
}

// demoPersons covers every score of a fake game (0..8 right answers).
func demoPersons() []domain.Person {
	names := []string{"Bystander", "Sidekick", "Apprentice", "Scout", "Ranger", "Knight", "Captain", "Champion", "Legend"}
	persons := make([]domain.Person, 0, len(names))
	for i, name := range names {
		persons = append(persons, domain.Person{Count: i, Name: name, Description: name + " of the quiz"})
	}
	return persons
}
