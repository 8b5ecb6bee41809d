package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-system/library"
)

var reserveCmd = &cobra.Command{
	Use:   "reserve <book-id> <student-id>",
	Short: "Place a hold on a book for a student",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0], "book")
		if err != nil {
			return err
		}
		studentID, err := parseID(args[1], "student")
		if err != nil {
			return err
		}
		r, err := svc.ReserveBook(bookID, studentID)
		if err != nil {
			return err
		}
		fmt.Printf("Reservation #%d placed, expires %s\n", r.ID, r.ExpiresAt.Format("2006-01-02"))
		return nil
	},
}

var (
	resStatus    string
	resStudentID int64
	resBookID    int64
)

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "List reservations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := svc.ListReservations(library.ReservationFilter{
			Status:    resStatus,
			StudentID: resStudentID,
			BookID:    resBookID,
		})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No reservations found.")
			return nil
		}
		fmt.Printf("%-6s %-25s %-30s %-12s %-12s %s\n",
			"ID", "Student", "Book", "Placed", "Expires", "Status")
		for _, r := range recs {
			fmt.Printf("%-6d %-25s %-30s %-12s %-12s %s\n",
				r.ID,
				truncateString(r.StudentName, 25),
				truncateString(r.BookTitle, 30),
				r.ReservationDate.Format("2006-01-02"),
				r.ExpiresAt.Format("2006-01-02"),
				r.Status)
		}
		fmt.Printf("\n%d reservation(s)\n", len(recs))
		return nil
	},
}

var reservationCmd = &cobra.Command{
	Use:   "reservation",
	Short: "Act on a single reservation",
}

var reservationReadyCmd = &cobra.Command{
	Use:   "ready <reservation-id>",
	Short: "Mark a hold ready for pickup and notify the student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "reservation")
		if err != nil {
			return err
		}
		rec, err := svc.MarkReservationReady(id)
		if err != nil {
			return err
		}
		fmt.Printf("Reservation #%d ready: %s for %s\n", rec.ID, rec.BookTitle, rec.StudentName)
		return nil
	},
}

var reservationCancelCmd = &cobra.Command{
	Use:   "cancel <reservation-id>",
	Short: "Cancel a pending hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "reservation")
		if err != nil {
			return err
		}
		if err := svc.CancelReservation(id); err != nil {
			return err
		}
		fmt.Printf("Reservation #%d cancelled\n", id)
		return nil
	},
}

var reservationFulfillCmd = &cobra.Command{
	Use:   "fulfill <reservation-id>",
	Short: "Check the reserved book out to the hold's student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := currentLibrarian()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "reservation")
		if err != nil {
			return err
		}
		bt, err := svc.FulfillReservation(id, lib.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Reservation #%d fulfilled, transaction #%d due %s\n",
			id, bt.ID, bt.DueDate.Format("2006-01-02"))
		return nil
	},
}

func init() {
	reservationsCmd.Flags().StringVar(&resStatus, "status", "", "filter by status (Active, Ready, Fulfilled, Cancelled)")
	reservationsCmd.Flags().Int64Var(&resStudentID, "student", 0, "filter by student ID")
	reservationsCmd.Flags().Int64Var(&resBookID, "book", 0, "filter by book ID")
	reservationCmd.AddCommand(reservationReadyCmd, reservationCancelCmd, reservationFulfillCmd)
	rootCmd.AddCommand(reserveCmd, reservationsCmd, reservationCmd)
}
