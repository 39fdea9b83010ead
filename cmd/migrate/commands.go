package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-extras/cobraflags"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

const (
	pathFlag     = "path"
	logLevelFlag = "log-level"
)

var commonFlags = map[string]cobraflags.Flag{
	pathFlag: &cobraflags.StringFlag{
		Name:  pathFlag,
		Value: "",
		Usage: "Path to the migrations directory (default: ./migrations)",
	},
	logLevelFlag: &cobraflags.StringFlag{
		Name:  logLevelFlag,
		Value: "info",
		Usage: "Log level (debug, info, warn, error)",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Storefront database migration tool",
		Long: `Apply, roll back and inspect the storefront schema migrations.

Database settings come from config.toml and the DB_* environment variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		dbCommand("up", "Apply all pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
			return m.Up()
		}),
		dbCommand("down", "Roll back all migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
			return m.Down()
		}),
		dbCommand("step <n>", "Apply n migrations (negative n rolls back)", cobra.ExactArgs(1), func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		dbCommand("goto <version>", "Migrate up or down to a version", cobra.ExactArgs(1), func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		}),
		dbCommand("force <version>", "Set the version without running migrations", cobra.ExactArgs(1), func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		}),
		dbCommand("version", "Show the applied version", cobra.NoArgs, func(m *migration.Migrator, _ []string, log *zap.Logger) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}),
		dbCommand("status", "Show the applied version and pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
			st, err := m.Status()
			if err != nil {
				return err
			}
			fmt.Printf("version: %d  dirty: %t  pending: %d\n", st.Version, st.Dirty, len(st.Pending))
			for _, p := range st.Pending {
				fmt.Println("  -", p.BaseName())
			}
			return nil
		}),
		newCreateCommand(),
		newListCommand(),
	)
	return root
}

// dbCommand builds a subcommand that runs fn against an open migrator
func dbCommand(use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string, *zap.Logger) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m, closeDB, err := openMigrator(log)
			if err != nil {
				return err
			}
			defer closeDB()

			return fn(m, args, log)
		},
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := migrationsPath()
			if err != nil {
				return err
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n        %s\n", mf.UpPath, mf.DownPath)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the migration files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			dir, err := migrationsPath()
			if err != nil {
				return err
			}
			migrations, err := migration.ListMigrations(dir)
			if err != nil {
				return err
			}
			if len(migrations) == 0 {
				fmt.Println("no migrations found in", dir)
				return nil
			}
			for _, m := range migrations {
				fmt.Println("  -", m.BaseName())
			}
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	return cmd
}

func newLogger() (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      commonFlags[logLevelFlag].GetString(),
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// migrationsPath resolves the --path flag, falling back to ./migrations
// and then to the directory two levels above the executable.
func migrationsPath() (string, error) {
	path := commonFlags[pathFlag].GetString()
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func openMigrator(log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if !strings.EqualFold(cfg.Database.Driver, "postgres") {
		return nil, nil, errors.New("migrations only run against postgres; sqlite databases are auto-migrated")
	}
	dir, err := migrationsPath()
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Debug("Migrator ready", zap.String("migrations_path", dir))
	return m, func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}
