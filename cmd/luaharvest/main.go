package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/extract"
	"github.com/funvibe/luaharvest/internal/modules"
	"github.com/funvibe/luaharvest/internal/store"
)

const usage = `Usage: luaharvest [flags] prefabs|recipes|tuning|all

Evaluates game scripts and prints the data they register.

Flags:
`

// cliConfig is the resolved command line.
type cliConfig struct {
	task     string
	scripts  string
	db       string
	profiles string
	format   string
	verbose  bool
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}
	logger := newLogger(stderr, cfg.verbose)

	src, err := modules.Open(cfg.scripts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	defer src.Close()

	opts := extract.Options{Logger: logger}
	if cfg.profiles != "" {
		if opts.Profiles, err = config.LoadProfiles(cfg.profiles); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
	}

	var db *store.DB
	if cfg.db != "" {
		if db, err = store.Open(ctx, cfg.db); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		defer db.Close()
	}

	out, err := runTasks(ctx, cfg, src, opts, db)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if err := store.WriteDocument(stdout, cfg.format, out); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*cliConfig, error) {
	cfg := &cliConfig{}
	fs := flag.NewFlagSet("luaharvest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.scripts, "scripts", os.Getenv("LUAHARVEST_SCRIPTS"), "scripts directory or zip archive (env LUAHARVEST_SCRIPTS)")
	fs.StringVar(&cfg.db, "db", os.Getenv("LUAHARVEST_DB"), "SQLite database receiving the results (env LUAHARVEST_DB)")
	fs.StringVar(&cfg.profiles, "profiles", os.Getenv("LUAHARVEST_PROFILES"), "YAML file overriding the built-in profiles (env LUAHARVEST_PROFILES)")
	fs.StringVar(&cfg.format, "format", store.FormatJSON, "output format: json or yaml")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one task, got %d", fs.NArg())
	}
	cfg.task = fs.Arg(0)
	if _, ok := tasks[cfg.task]; !ok && cfg.task != taskAll {
		return nil, fmt.Errorf("unknown task %q", cfg.task)
	}
	if cfg.scripts == "" {
		return nil, errors.New("no scripts path: pass -scripts or set LUAHARVEST_SCRIPTS")
	}
	return cfg, nil
}

// newLogger writes human-readable logs to a terminal and JSON lines
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, hopts))
	}
	return slog.New(slog.NewJSONHandler(w, hopts))
}
