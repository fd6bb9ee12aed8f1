package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/cli"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entrypoint"
	"github.com/mrlokans/bookstore/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := config.NewConfig()
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	var cmd command
	switch name {
	case "createuser":
		c := cli.NewCreateUserCommand()
		c.DatabasePath = cfg.Database.Path
		c.BcryptCost = cfg.Auth.BcryptCost
		cmd = c

	case "prune-audit":
		c := cli.NewPruneAuditCommand(cfg.Audit.RetentionDays)
		c.DatabasePath = cfg.Database.Path
		cmd = c

	case "version":
		fmt.Printf("bookstore %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  createuser    Create a user account\n")
	fmt.Fprintf(os.Stderr, "  prune-audit   Delete audit events older than the retention period\n")
	fmt.Fprintf(os.Stderr, "  version       Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
