package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-system/library"
)

var librarianCmd = &cobra.Command{
	Use:   "librarian",
	Short: "Manage staff accounts and sessions",
}

var librarianRegisterCmd = &cobra.Command{
	Use:   "register <first-name> <last-name> <email> <username>",
	Short: "Register a staff account (prompts for a password)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		lib, err := svc.RegisterLibrarian(library.NewLibrarian{
			FirstName: args[0],
			LastName:  args[1],
			Email:     args[2],
			Username:  args[3],
			Password:  password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered librarian #%d (%s)\n", lib.ID, lib.Username)
		return nil
	},
}

var librarianLoginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and start a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		lib, err := svc.Authenticate(args[0], password)
		if err != nil {
			return err
		}
		if err := saveSession(lib.ID); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("Logged in as %s %s\n", lib.FirstName, lib.LastName)
		return nil
	},
}

var librarianLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clearSession()
		fmt.Println("Logged out.")
		return nil
	},
}

var librarianPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the logged-in librarian's password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := currentLibrarian()
		if err != nil {
			return err
		}
		current, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		if _, err := svc.Authenticate(lib.Username, current); err != nil {
			return err
		}
		next, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		if next != confirm {
			return fmt.Errorf("passwords do not match")
		}
		if err := svc.ChangePassword(lib.ID, next); err != nil {
			return err
		}
		fmt.Println("Password updated.")
		return nil
	},
}

func init() {
	librarianCmd.AddCommand(librarianRegisterCmd, librarianLoginCmd, librarianLogoutCmd, librarianPasswdCmd)
	rootCmd.AddCommand(librarianCmd)
}
