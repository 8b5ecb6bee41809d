// Package cmd implements the librarian-facing command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"library-system/library"
	"library-system/notify"
)

var (
	svc    *library.Service
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "library-system",
	Short:         "Library management: students, books, borrowing, reservations and fines",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		teardown()
		os.Exit(1)
	}
}

func setup() error {
	// Optional .env next to the binary; real env vars win.
	_ = godotenv.Load()

	var err error
	if os.Getenv("LIBRARY_DEBUG") != "" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	driver := envOr("LIBRARY_DB_DRIVER", library.DriverSQLite)
	dsn := envOr("LIBRARY_DB_DSN", "library.db")

	db, err := library.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	mailer := notify.NewMailer(notify.Config{
		Host:     os.Getenv("LIBRARY_SMTP_HOST"),
		Port:     envInt("LIBRARY_SMTP_PORT"),
		From:     os.Getenv("LIBRARY_SMTP_FROM"),
		Password: os.Getenv("LIBRARY_SMTP_PASSWORD"),
	})

	svc = library.NewService(db, logger, mailer)
	return nil
}

func teardown() {
	if svc != nil {
		_ = svc.Close()
		svc = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".library-session")
}

func saveSession(librarianID int64) error {
	return os.WriteFile(sessionPath(), []byte(strconv.FormatInt(librarianID, 10)), 0o600)
}

func clearSession() {
	_ = os.Remove(sessionPath())
}

// currentLibrarian returns the logged-in librarian, verifying the account
// still exists.
func currentLibrarian() (*library.Librarian, error) {
	raw, err := os.ReadFile(sessionPath())
	if err != nil {
		return nil, fmt.Errorf("not logged in: run 'library-system librarian login'")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		clearSession()
		return nil, fmt.Errorf("corrupt session, please log in again")
	}
	lib, err := svc.GetLibrarian(id)
	if err != nil {
		clearSession()
		return nil, fmt.Errorf("session expired, please log in again")
	}
	return lib, nil
}

// ---------------------------------------------------------------------------
// Input helpers
// ---------------------------------------------------------------------------

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, arg)
	}
	return id, nil
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
