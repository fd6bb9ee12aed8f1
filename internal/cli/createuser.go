package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/users"
)

// CreateUserCommand creates an account from the command line.
type CreateUserCommand struct {
	Username     string
	Password     string
	Staff        bool
	DatabasePath string
	BcryptCost   int

	out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{
		DatabasePath: config.DefaultDatabasePath,
		BcryptCost:   12,
		out:          os.Stdout,
	}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Login name, 3-64 characters of letters, digits, '_' or '-' (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("BOOKSTORE_PASSWORD"), "Password, at least 12 characters (default $BOOKSTORE_PASSWORD)")
	fs.BoolVar(&cmd.Staff, "staff", false, "Grant staff rights (may edit and delete any book)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", cmd.BcryptCost, "bcrypt cost factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s createuser -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user that can log in to the API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	return nil
}

func (cmd *CreateUserCommand) Run(ctx context.Context) error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), config.Auth{BcryptCost: cmd.BcryptCost})
	user, err := service.CreateUser(ctx, cmd.Username, cmd.Password, cmd.Staff)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	role := "user"
	if user.IsStaff {
		role = "staff user"
	}
	fmt.Fprintf(cmd.out, "Created %s %q (id %d)\n", role, user.Username, user.ID)
	return nil
}
