package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wolfman30/careflow-portal/migrations"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	if err := run(os.Args[1:], strings.TrimSpace(os.Getenv("DATABASE_URL"))); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations complete")
}

func run(args []string, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("db driver: %w", err)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	return cmd.apply(m)
}

type command struct {
	name    string
	version int
}

// parseCommand accepts no arguments (up), "up", "down" or "force <version>".
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "up"}, nil
	}
	switch args[0] {
	case "up", "down":
		return command{name: args[0]}, nil
	case "force":
		if len(args) < 2 {
			return command{}, errors.New("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid version: %w", err)
		}
		return command{name: "force", version: version}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", args[0])
	}
}

func (c command) apply(m *migrate.Migrate) error {
	var err error
	switch c.name {
	case "force":
		err = m.Force(c.version)
	case "down":
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", c.name, err)
	}
	return nil
}
