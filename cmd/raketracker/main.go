package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lox/raketracker/cmd/raketracker/shared"
	"github.com/lox/raketracker/internal/config"
	"github.com/lox/raketracker/internal/storage"
	"github.com/lox/raketracker/internal/tracker"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"raketracker.hcl" env:"RAKETRACKER_CONFIG" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" env:"RAKETRACKER_LOG_LEVEL" help:"Log level (overrides config)"`
	Database string `env:"RAKETRACKER_DB" help:"SQLite database path (overrides config)"`
	Player   string `short:"p" env:"RAKETRACKER_PLAYER" help:"Player to report on (overrides config)"`
	Save     bool   `help:"Write player and import directory overrides back to the config file"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Import  ImportCmd        `cmd:"" help:"Import hand histories from a directory"`
	Results ResultsCmd       `cmd:"" help:"Show rake and profit for a period"`
	Imports ImportsCmd       `cmd:"" help:"List previous imports"`
	Players PlayersCmd       `cmd:"" help:"List players seen in stored hands"`
}

// App carries the wiring every command runs against
type App struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *storage.Store
	tracker *tracker.Tracker
	ctx     context.Context
	out     io.Writer
	closers []io.Closer
}

func newApp(ctx context.Context, g Globals, out, logOut io.Writer) (*App, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Database != "" {
		cfg.Database.Path = g.Database
	}
	if g.Player != "" {
		cfg.Tracker.Player = g.Player
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logCloser, err := shared.SetupLogger(logOut, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Config{
		Path:   cfg.Database.Path,
		Logger: logger.WithPrefix("storage"),
	})
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		store.Close()
		logCloser.Close()
		return nil, err
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		tracker: tracker.New(store, tracker.Options{
			Workers:  cfg.Tracker.Workers,
			Location: loc,
			Logger:   logger,
		}),
		ctx:     ctx,
		out:     out,
		closers: []io.Closer{store, logCloser},
	}, nil
}

// Close releases the store and log file
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) player() (string, error) {
	if a.cfg.Tracker.Player == "" {
		return "", fmt.Errorf("no player configured: pass --player or set tracker.player in the config file")
	}
	return a.cfg.Tracker.Player, nil
}

// run parses args and executes the selected command
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("raketracker"),
		kong.Description("Rake and profit tracker for 888poker cash game hand histories"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Writers(out, errOut),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cli.Globals, out, errOut)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := kctx.Run(app); err != nil {
		return err
	}

	if cli.Save {
		if err := app.cfg.Save(cli.Config); err != nil {
			return err
		}
		app.logger.Info("configuration saved", "file", cli.Config)
	}
	return nil
}

func main() {
	// .env is optional; RAKETRACKER_* variables feed the flags
	_ = godotenv.Load()

	ctx, cancel := shared.SetupSignalHandlerWithLogger(log.Default())
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Error("raketracker failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
