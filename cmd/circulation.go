package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-system/library"
)

var borrowCmd = &cobra.Command{
	Use:   "borrow <book-id> <student-id>",
	Short: "Check a book out to a student",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := currentLibrarian()
		if err != nil {
			return err
		}
		bookID, err := parseID(args[0], "book")
		if err != nil {
			return err
		}
		studentID, err := parseID(args[1], "student")
		if err != nil {
			return err
		}
		bt, err := svc.BorrowBook(bookID, studentID, lib.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction #%d: due %s\n", bt.ID, bt.DueDate.Format("2006-01-02"))
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <transaction-id>",
	Short: "Check a borrowed book back in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := parseID(args[0], "transaction")
		if err != nil {
			return err
		}
		out, err := svc.ReturnBook(txID)
		if err != nil {
			return err
		}
		fmt.Printf("Returned transaction #%d\n", out.Transaction.ID)
		if out.Fine != nil {
			fmt.Printf("%d day(s) late, fine #%d issued: %d.00 (%s)\n",
				out.DaysLate, out.Fine.ID, out.Fine.Amount, out.Fine.PaymentStatus)
		}
		if out.Promoted != nil {
			fmt.Printf("Reservation #%d for %s is now ready for pickup\n",
				out.Promoted.ReservationID, out.Promoted.StudentName)
		}
		return nil
	},
}

var lostCmd = &cobra.Command{
	Use:   "lost <transaction-id>",
	Short: "Mark a borrowed book as lost and issue the replacement fine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := parseID(args[0], "transaction")
		if err != nil {
			return err
		}
		out, err := svc.ReportLost(txID)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction #%d marked lost, fine #%d issued: %d.00\n",
			out.Transaction.ID, out.Fine.ID, out.Fine.Amount)
		return nil
	},
}

var (
	loanStatus    string
	loanStudentID int64
	loanBookID    int64
	loanOpenOnly  bool
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List borrow transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loans, err := svc.ListLoans(library.LoanFilter{
			Status:    loanStatus,
			StudentID: loanStudentID,
			BookID:    loanBookID,
			OnlyOpen:  loanOpenOnly,
		})
		if err != nil {
			return err
		}
		if len(loans) == 0 {
			fmt.Println("No loans found.")
			return nil
		}
		fmt.Printf("%-6s %-25s %-30s %-12s %-12s %s\n",
			"ID", "Student", "Book", "Borrowed", "Due", "Status")
		for _, l := range loans {
			fmt.Printf("%-6d %-25s %-30s %-12s %-12s %s\n",
				l.ID,
				truncateString(l.StudentName, 25),
				truncateString(l.BookTitle, 30),
				l.BorrowDate.Format("2006-01-02"),
				l.DueDate.Format("2006-01-02"),
				l.Status)
		}
		fmt.Printf("\n%d loan(s)\n", len(loans))
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Email a reminder to every student with an overdue loan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sent, err := svc.SendOverdueReminders()
		if err != nil {
			return err
		}
		fmt.Printf("Sent %d reminder(s)\n", sent)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Mark overdue loans and expire stale reservations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.RefreshStatuses()
		if err != nil {
			return err
		}
		fmt.Printf("Marked %d loan(s) overdue, expired %d reservation(s)\n",
			res.OverdueMarked, res.ReservationsExpired)
		return nil
	},
}

func init() {
	loansCmd.Flags().StringVar(&loanStatus, "status", "", "filter by status (Active, Overdue, Returned, Lost)")
	loansCmd.Flags().Int64Var(&loanStudentID, "student", 0, "filter by student ID")
	loansCmd.Flags().Int64Var(&loanBookID, "book", 0, "filter by book ID")
	loansCmd.Flags().BoolVar(&loanOpenOnly, "open", false, "only open loans (Active or Overdue)")
	rootCmd.AddCommand(borrowCmd, returnCmd, lostCmd, loansCmd, remindCmd, refreshCmd)
}
