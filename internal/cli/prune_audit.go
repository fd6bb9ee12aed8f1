package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditstore "github.com/mrlokans/bookstore/internal/database/audit"
)

// PruneAuditCommand deletes audit events older than the retention period.
type PruneAuditCommand struct {
	DatabasePath string
	Days         int

	out io.Writer
}

func NewPruneAuditCommand(defaultDays int) *PruneAuditCommand {
	if defaultDays <= 0 {
		defaultDays = 90
	}
	return &PruneAuditCommand{
		DatabasePath: config.DefaultDatabasePath,
		Days:         defaultDays,
		out:          os.Stdout,
	}
}

func (cmd *PruneAuditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("prune-audit", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the database file")
	fs.IntVar(&cmd.Days, "days", cmd.Days, "Keep events from the last N days (default $AUDIT_RETENTION_DAYS)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s prune-audit [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete audit events older than the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", cmd.Days)
	}
	return nil
}

func (cmd *PruneAuditCommand) Run(ctx context.Context) error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	service := audit.NewService(auditstore.NewRepository(db.DB), true)
	deleted, err := service.DeleteOldEvents(ctx, time.Duration(cmd.Days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to prune audit events: %w", err)
	}

	fmt.Fprintf(cmd.out, "Deleted %d audit events older than %d days\n", deleted, cmd.Days)
	return nil
}
