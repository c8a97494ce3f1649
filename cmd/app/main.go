// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"codeberg.org/oliverandrich/anonbox/internal/database"
	"codeberg.org/oliverandrich/anonbox/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "anonbox",
		Usage:   "Anonymous message inbox",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			migrateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// migrateCommand inspects and rolls back the schema. Pending migrations
// are applied whenever the database is opened.
func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Print the current schema version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					db, err := database.Open(config.NewFromCLI(cmd).Database.DSN)
					if err != nil {
						return err
					}
					defer func() { _ = db.Close() }()

					version, err := database.Version(db.DB)
					if err != nil {
						return err
					}
					fmt.Printf("schema version: %d\n", version)
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the latest migration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					db, err := database.Open(config.NewFromCLI(cmd).Database.DSN)
					if err != nil {
						return err
					}
					defer func() { _ = db.Close() }()
					return database.MigrateDown(db.DB)
				},
			},
		},
	}
}
