package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_games.sql
var createGamesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createGamesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
DROP TABLE IF EXISTS user_avatars;
DROP TABLE IF EXISTS avatars;
DROP TABLE IF EXISTS user_games;
DROP TABLE IF EXISTS tokens;
DROP TABLE IF EXISTS game_persons;
DROP TABLE IF EXISTS games;
DROP TABLE IF EXISTS persons`)
			return err
		},
	)
}
