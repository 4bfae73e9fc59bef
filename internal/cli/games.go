package cli

import (
	"context"
	"fmt"
	"io"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/config"
	"persona-quiz-service/internal/infra/postgres"
	rediscache "persona-quiz-service/internal/infra/redis"
	"github.com/fatih/color"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewDeleteGameCmd removes a game together with its stored results and drops
// the game from the shared Redis cache.
func NewDeleteGameCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-game <game-id>",
		Short: "Delete a game and its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, catalog, closeDB, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			title, err := app.NewAdminService(catalog).DeleteGame(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			color.Green("deleted game %q", title)

			if client := newRedisClient(cfg); client != nil {
				defer client.Close()
				if err := forgetCachedGame(cmd.Context(), client, args[0]); err != nil {
					return fmt.Errorf("invalidate cached game: %w", err)
				}
			}
			return nil
		},
	}
}

// NewPersonsCmd prints the persons of the catalog ordered by count.
func NewPersonsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "persons",
		Short: "List persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, catalog, closeDB, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			persons, err := app.NewAdminService(catalog).ListPersons(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range persons {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", p.ID, p.Count, p.Name)
			}
			return nil
		},
	}
}

// NewCreateAvatarCmd adds an avatar with its selectable image links.
func NewCreateAvatarCmd(configPath *string) *cobra.Command {
	var (
		name  string
		links []string
	)
	cmd := &cobra.Command{
		Use:   "create-avatar",
		Short: "Create an avatar with its image links",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			avatars := app.NewAvatarService(postgres.NewAvatarStore(pool), postgres.NewTokenResolver(pool))
			return createAvatar(cmd.Context(), avatars, name, links, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "unique avatar name")
	cmd.Flags().StringSliceVar(&links, "link", nil, "image link (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// NewRevokeTokenCmd deletes an access token and its cached resolution.
func NewRevokeTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-token <token>",
		Short: "Revoke an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, catalog, closeDB, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := catalog.RevokeToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			if client := newRedisClient(cfg); client != nil {
				defer client.Close()
				if err := forgetCachedToken(cmd.Context(), client, args[0]); err != nil {
					return fmt.Errorf("forget cached token: %w", err)
				}
			}
			color.Green("revoked token")
			return nil
		},
	}
}

func createAvatar(ctx context.Context, avatars *app.AvatarService, name string, links []string, out io.Writer) error {
	if len(links) == 0 {
		return fmt.Errorf("at least one --link is required")
	}
	id, err := avatars.CreateAvatar(ctx, name, links)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\t%s\n", id, name)
	return nil
}

// forgetCachedGame drops the copy the servers share so they reload the game.
func forgetCachedGame(ctx context.Context, client *redis.Client, gameID string) error {
	return rediscache.NewGameRepository(client, nil, 0).Invalidate(ctx, gameID)
}

func forgetCachedToken(ctx context.Context, client *redis.Client, token string) error {
	return rediscache.NewTokenCache(client, nil, 0).Forget(ctx, token)
}

func openCatalog(configPath string) (config.Config, *postgres.Catalog, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if cfg.Postgres.URL == "" {
		return config.Config{}, nil, nil, fmt.Errorf("postgres url not configured")
	}
	db := postgres.OpenBun(cfg.Postgres.URL)
	return cfg, postgres.NewCatalog(db), func() { _ = db.Close() }, nil
}
