package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ragstack/go-ragproxy/internal/config"
	"github.com/ragstack/go-ragproxy/internal/models"
	"github.com/ragstack/go-ragproxy/internal/server"
	"github.com/ragstack/go-ragproxy/internal/upstream"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: ragproxy <command> [flags]")
		fmt.Fprintln(os.Stderr, "Commands: serve, search, models")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(cmdServe())
	case "search":
		os.Exit(cmdSearch())
	case "models":
		os.Exit(cmdModels())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Commands: serve, search, models")
		os.Exit(1)
	}
}

func cmdServe() int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg := config.DefaultFromEnv()

	fs.StringVar(&cfg.Host, "host", cfg.Host, "Bind host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Listen port")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Dump raw inbound requests")
	fs.Parse(os.Args[2:])

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	srv := server.New(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("ragproxy starting", "host", cfg.Host, "port", cfg.Port, "origins", len(cfg.AllowedOrigins))
	if err := srv.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
		slog.Error("server error", "error", err)
		return 1
	}
	return 0
}

func cmdSearch() int {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	maxResults := fs.Int("max", 10, "Maximum number of results")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(os.Args[2:])

	query := fs.Arg(0)
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: ragproxy search [flags] <query>")
		return 1
	}

	cfg := config.DefaultFromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	client := upstream.NewClient(cfg.APIKey, *verbose)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := client.Search(ctx, query, *maxResults)
	if err != nil {
		slog.Error("search failed", "error", err)
		return 1
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return 0
	}
	for i, res := range results {
		fmt.Printf("%2d. %s\n    %s\n", i+1, res.Title, res.URL)
		if res.Snippet != "" {
			fmt.Printf("    %s\n", res.Snippet)
		}
	}
	return 0
}

func cmdModels() int {
	for _, m := range models.Catalog() {
		fmt.Printf("%-16s %s — %s\n", m.ID, m.Name, m.Description)
	}
	return 0
}
