package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/sadsod/storefront/internal/infrastructure/logger"
	"github.com/sadsod/storefront/internal/infrastructure/migration"
	"github.com/sadsod/storefront/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// options are the global flags shared by every command
type options struct {
	path     string
	embedded bool
	confirm  bool
}

// source returns the migration files the command works on
func (o options) source() fs.FS {
	if o.embedded {
		return migrations.FS
	}
	return os.DirFS(o.path)
}

type command struct {
	usage string
	help  string
	// minArgs counts the arguments after the command name
	minArgs int
	// run is used by commands that only touch the migration files
	run func(log *zap.Logger, opts options, args []string) error
	// runDB is used by commands that need a migrator
	runDB func(log *zap.Logger, m *migration.Migrator, opts options, args []string) error
}

var commands = map[string]command{
	"up": {
		usage: "up",
		help:  "Apply all pending migrations",
		runDB: func(_ *zap.Logger, m *migration.Migrator, _ options, _ []string) error {
			return m.Up()
		},
	},
	"down": {
		usage: "down -confirm",
		help:  "Roll back every migration (drops the storefront tables)",
		runDB: func(_ *zap.Logger, m *migration.Migrator, opts options, _ []string) error {
			if !opts.confirm {
				return fmt.Errorf("refusing to roll back everything without -confirm")
			}
			return m.Down()
		},
	},
	"step": {
		usage:   "step <n>",
		help:    "Apply n migrations (negative rolls back)",
		minArgs: 1,
		runDB: func(_ *zap.Logger, m *migration.Migrator, _ options, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"goto": {
		usage:   "goto <version>",
		help:    "Migrate up or down to a version",
		minArgs: 1,
		runDB: func(_ *zap.Logger, m *migration.Migrator, _ options, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		},
	},
	"version": {
		usage: "version",
		help:  "Show the applied version",
		runDB: func(log *zap.Logger, m *migration.Migrator, _ options, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		},
	},
	"status": {
		usage: "status",
		help:  "Compare the applied version with the available files",
		runDB: status,
	},
	"force": {
		usage:   "force <version>",
		help:    "Mark a version as applied after fixing a dirty schema by hand",
		minArgs: 1,
		runDB: func(_ *zap.Logger, m *migration.Migrator, _ options, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		},
	},
	"drop": {
		usage: "drop -confirm",
		help:  "Drop every table, including orders",
		runDB: func(_ *zap.Logger, m *migration.Migrator, opts options, _ []string) error {
			if !opts.confirm {
				return fmt.Errorf("refusing to drop without -confirm")
			}
			return m.Drop()
		},
	},
	"create": {
		usage:   "create <name> [description]",
		help:    "Write an empty up/down pair into -path",
		minArgs: 1,
		run: func(log *zap.Logger, opts options, args []string) error {
			if opts.embedded {
				return fmt.Errorf("create writes files; it cannot be combined with -embedded")
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(opts.path, args[0], description)
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	},
	"list": {
		usage: "list",
		help:  "List the available migrations",
		run: func(log *zap.Logger, opts options, _ []string) error {
			names, err := migration.ListMigrationsFS(opts.source())
			if err != nil {
				return err
			}
			log.Info("Available migrations", zap.Int("count", len(names)))
			for _, name := range names {
				fmt.Println("  -", name)
			}
			return nil
		},
	},
}

var commandOrder = []string{"up", "down", "step", "goto", "version", "status", "force", "drop", "create", "list"}

func main() {
	var (
		opts     options
		logLevel string
	)
	flag.StringVar(&opts.path, "path", "", "Migrations directory (default: ./migrations)")
	flag.BoolVar(&opts.embedded, "embedded", false, "Use the migrations compiled into the binary instead of -path")
	flag.BoolVar(&opts.confirm, "confirm", false, "Confirm a destructive command (down, drop)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, args := args[0], trailingConfirm(args[1:], &opts)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printUsage()
		os.Exit(2)
	}
	if len(args) < cmd.minArgs {
		fmt.Fprintf(os.Stderr, "usage: migrate %s\n", cmd.usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.DateTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	opts.path, err = resolvePath(opts.path)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Info("Migration CLI started",
		zap.String("command", name),
		zap.String("migrations_path", opts.path),
		zap.Bool("embedded", opts.embedded),
	)

	if cmd.run != nil {
		if err := cmd.run(log, opts, args); err != nil {
			log.Fatal("Command failed", zap.String("command", name), zap.Error(err))
		}
		return
	}

	if err := withMigrator(log, opts, func(m *migration.Migrator) error {
		return cmd.runDB(log, m, opts, args)
	}); err != nil {
		log.Fatal("Command failed", zap.String("command", name), zap.Error(err))
	}
}

// withMigrator opens the configured PostgreSQL database and closes it after fn
func withMigrator(log *zap.Logger, opts options, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target PostgreSQL; the server creates %s schemas on startup", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if opts.embedded {
		m, err = migration.NewFromFS(db, migrations.FS, log)
	} else {
		m, err = migration.New(db, opts.path, log)
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	// closing the migrator closes db
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func status(log *zap.Logger, m *migration.Migrator, opts options, _ []string) error {
	applied, dirty, err := m.Version()
	if err != nil {
		return err
	}
	names, err := migration.ListMigrationsFS(opts.source())
	if err != nil {
		return err
	}

	var pending []string
	var latest uint
	for _, name := range names {
		v, ok := migration.VersionOf(name)
		if !ok {
			continue
		}
		latest = max(latest, v)
		if v > applied {
			pending = append(pending, name)
		}
	}

	log.Info("Migration status",
		zap.Uint("applied", applied),
		zap.Uint("latest", latest),
		zap.Bool("dirty", dirty),
		zap.Int("pending", len(pending)),
	)
	for _, name := range pending {
		fmt.Println("  pending:", name)
	}
	if dirty {
		log.Warn("Schema is dirty; fix it by hand, then run force <version>")
	}
	return nil
}

// trailingConfirm accepts -confirm after the command name. Other arguments
// are left alone so "step -1" keeps its negative count.
func trailingConfirm(args []string, opts *options) []string {
	rest := args[:0]
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			opts.confirm = true
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}

// resolvePath finds the migrations directory from the working directory or
// next to the binary when -path is not given
func resolvePath(path string) (string, error) {
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

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Sadsod storefront schema migrations (PostgreSQL)")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: migrate [flags] <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-28s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "The database is read from config.toml or SADSOD_DATABASE_HOST, _PORT,")
	fmt.Fprintln(out, "_USER, _PASSWORD, _DBNAME and _SSLMODE.")
}
