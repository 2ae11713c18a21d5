package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/htol/booksapi/config"
	"github.com/htol/booksapi/logger"
	"github.com/htol/booksapi/repo"
	"github.com/htol/booksapi/service"
)

// commands lists what the CLI can run, with a short description
var commands = map[string]string{
	"serve":  "start the HTTP API",
	"init":   "create store indexes",
	"import": "load books from the seed file",
	"delete": "remove every book",
}

func CLI(args []string) int {
	var app appEnv
	if err := app.fromArgs(args); err != nil {
		fmt.Println(err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx); err != nil {
		logger.Error("Runtime error, shutting down", "error", err)
		return 1
	}
	return 0
}

type appEnv struct {
	config   *config.Config
	seedPath string
	cmd      string
	storage  repo.Repository
	service  *service.Service
}

func (app *appEnv) fromArgs(args []string) error {
	fl := flag.NewFlagSet("booksapi", flag.ContinueOnError)
	fl.Usage = func() {
		fmt.Fprintf(fl.Output(), "Usage: booksapi [flags] <command>\n\nCommands:\n")
		for _, name := range []string{"serve", "init", "import", "delete"} {
			fmt.Fprintf(fl.Output(), "  %-8s %s\n", name, commands[name])
		}
		fmt.Fprintf(fl.Output(), "\nFlags:\n")
		fl.PrintDefaults()
	}

	// Load default config
	cfg := config.Load()

	// CLI flags override environment variables
	port := cfg.Server.Port
	seedPath := cfg.Seed.Path

	fl.IntVar(&port, "p", cfg.Server.Port, "Port number")
	fl.StringVar(&seedPath, "f", cfg.Seed.Path, "Seed file for import (.json, .yaml)")

	if err := fl.Parse(args); err != nil {
		return err
	}

	if fl.NArg() < 1 {
		fl.Usage()
		return fmt.Errorf("please provide a command to run")
	}

	cmd := fl.Arg(0)
	if _, ok := commands[cmd]; !ok {
		fl.Usage()
		return fmt.Errorf("unknown command %s", cmd)
	}

	app.cmd = cmd
	app.seedPath = seedPath
	app.config = cfg
	app.config.Server.Port = port

	return nil
}

func (app *appEnv) run(ctx context.Context) error {
	// Initialize logger
	if app.config.Env == config.Production {
		logger.Setup(os.Stderr, app.config.LogLevel, "json")
	} else {
		logger.Init(app.config.LogLevel)
	}

	storage, err := repo.Open(ctx, app.config.Database)
	if err != nil {
		return err
	}
	app.storage = storage
	app.service = service.New(storage)
	defer app.closeStorage()

	switch app.cmd {
	case "serve":
		if err := storage.EnsureIndexes(ctx); err != nil {
			return err
		}
		return app.serve(ctx)
	case "init":
		return storage.EnsureIndexes(ctx)
	case "import":
		if err := storage.EnsureIndexes(ctx); err != nil {
			return err
		}
		return app.importBooks(ctx)
	case "delete":
		return app.deleteBooks(ctx)
	default:
		return fmt.Errorf("unknown command %s", app.cmd)
	}
}

func (app *appEnv) importBooks(ctx context.Context) error {
	books, err := repo.LoadSeed(app.seedPath)
	if err != nil {
		return err
	}
	n, err := app.service.ImportBooks(ctx, books)
	if err != nil {
		return err
	}
	logger.Info("Data successfully loaded", "count", n, "file", app.seedPath)
	return nil
}

func (app *appEnv) deleteBooks(ctx context.Context) error {
	n, err := app.service.DeleteAllBooks(ctx)
	if err != nil {
		return err
	}
	logger.Info("Data successfully deleted", "count", n)
	return nil
}

func (app *appEnv) closeStorage() {
	if app.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(app.config))
	defer cancel()
	if err := app.storage.Close(ctx); err != nil {
		logger.Error("Error closing storage", "error", err)
	}
}
