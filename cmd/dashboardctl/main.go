package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/attendance-dashboard-api/pkg/config"
	"github.com/noah-isme/attendance-dashboard-api/pkg/database"
)

var rootCmd = &cobra.Command{
	Use:   "dashboardctl",
	Short: "Operator tooling for the attendance dashboard API",
	Long: `dashboardctl applies the dashboard schema and prepares admin credentials.

Connection settings are read from the same environment and .env file as the API.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	Long: `Apply every embedded migration in name order.

Migrations are idempotent, so running this against an up-to-date database is a no-op.

Examples:
  dashboardctl migrate            # apply all migrations
  dashboardctl migrate --dry-run  # list the migrations without connecting`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long: `Print a bcrypt hash suitable for ADMIN_PASSWORD_HASH.

Without an argument the password is read from the first line of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashPassword,
}

var (
	migrateDryRun    bool
	migrateTimeout   time.Duration
	hashPasswordCost int
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list migrations without applying them")
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", time.Minute, "overall migration timeout")
	hashPasswordCmd.Flags().IntVar(&hashPasswordCost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateDryRun {
		_, names, err := database.Migrations()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	for _, name := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashPasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
