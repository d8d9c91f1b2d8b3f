// Command jobsearch is an interactive terminal client for the job search
// pipeline. Saved jobs go to the same storage the server uses.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jobscout/internal/config"
	"jobscout/internal/detail"
	"jobscout/internal/jobs"
	"jobscout/internal/logging"
	"jobscout/internal/provider"
	"jobscout/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	sessionID := flag.String("session", "", "keep saved jobs under this session instead of the shared list")
	queryText := flag.String("q", "", "run one search, print the first page and exit")
	verbose := flag.Bool("v", false, "log at debug level to stderr")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// keep logs off stdout so they do not interleave with results
	cfg.Logging.Adapters = nil
	cfg.Logging.Output = "stderr"
	cfg.Logging.Format = "text"
	if *verbose {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	if cfg.MissingAPIKey() {
		fmt.Fprintln(os.Stderr, "warning: JOBS_API_KEY is not set, searches will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open saved jobs storage: %v", err)
	}
	defer backend.Close()

	key := cfg.Storage.Key
	if *sessionID != "" {
		key = storage.SessionKey(key, *sessionID)
	}

	client := provider.NewClient(provider.ConfigFrom(cfg), logger)
	agg, err := jobs.NewAggregator(ctx, client, storage.ForKey(backend, key),
		jobs.WithLogger(logger),
		jobs.WithNumPages(client.NumPages()),
	)
	if err != nil {
		log.Fatalf("Failed to start search: %v", err)
	}
	defer agg.Close()

	view := detail.NewView(agg, client,
		detail.WithLogger(logger),
		detail.WithTimeout(cfg.Provider.Timeout),
	)
	defer view.Close()

	sh := newShell(agg, view, os.Stdout)

	if *queryText != "" {
		if err := sh.exec(ctx, "search "+*queryText); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("jobsearch, type help for commands")
	if err := repl(ctx, sh, bufio.NewScanner(os.Stdin)); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func repl(ctx context.Context, sh *shell, in *bufio.Scanner) error {
	for {
		fmt.Fprint(sh.out, "> ")
		if !in.Scan() {
			return in.Err()
		}
		err := sh.exec(ctx, in.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			fmt.Fprintln(sh.out, "error:", err)
		}
	}
}
