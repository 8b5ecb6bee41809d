package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"library-system/library"
	"library-system/receipt"
)

var fineCmd = &cobra.Command{
	Use:   "fine",
	Short: "Manage fines",
}

var (
	fineStatus string
	fineSearch string
)

var fineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fines, err := svc.ListFines(library.FineFilter{
			PaymentStatus: fineStatus,
			Search:        fineSearch,
		})
		if err != nil {
			return err
		}
		if len(fines) == 0 {
			fmt.Println("No fines found.")
			return nil
		}
		fmt.Printf("%-6s %-6s %-25s %-30s %-8s %s\n",
			"ID", "Tx", "Student", "Book", "Amount", "Status")
		for _, f := range fines {
			fmt.Printf("%-6d %-6d %-25s %-30s %-8d %s\n",
				f.ID,
				f.TransactionID,
				truncateString(f.StudentName, 25),
				truncateString(f.BookTitle, 30),
				f.Amount,
				f.PaymentStatus)
		}
		fmt.Printf("\n%d fine(s)\n", len(fines))
		return nil
	},
}

var finePayCmd = &cobra.Command{
	Use:   "pay <fine-id>",
	Short: "Record a fine as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "fine")
		if err != nil {
			return err
		}
		f, err := svc.PayFine(id)
		if err != nil {
			return err
		}
		fmt.Printf("Fine #%d paid: %d.00\n", f.ID, f.Amount)
		return nil
	},
}

var fineWaiveCmd = &cobra.Command{
	Use:   "waive <fine-id>",
	Short: "Waive an unpaid fine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "fine")
		if err != nil {
			return err
		}
		f, err := svc.WaiveFine(id)
		if err != nil {
			return err
		}
		fmt.Printf("Fine #%d waived: %d.00\n", f.ID, f.Amount)
		return nil
	},
}

var fineRmCmd = &cobra.Command{
	Use:   "rm <fine-id>",
	Short: "Delete a fine record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "fine")
		if err != nil {
			return err
		}
		if err := svc.DeleteFine(id); err != nil {
			return err
		}
		fmt.Printf("Fine #%d deleted\n", id)
		return nil
	},
}

var receiptJSON bool

var fineReceiptCmd = &cobra.Command{
	Use:   "receipt <fine-id>",
	Short: "Print a receipt for a fine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "fine")
		if err != nil {
			return err
		}
		rec, err := svc.FineRecord(id)
		if err != nil {
			return err
		}
		r := receipt.FromFine(rec, time.Now())
		if receiptJSON {
			out, err := r.JSON()
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Print(r.Render())
		return nil
	},
}

func init() {
	fineListCmd.Flags().StringVar(&fineStatus, "status", "", "filter by payment status (Unpaid, Paid, Waived)")
	fineListCmd.Flags().StringVar(&fineSearch, "search", "", "match student name or book title")
	fineReceiptCmd.Flags().BoolVar(&receiptJSON, "json", false, "emit the receipt as JSON")
	fineCmd.AddCommand(fineListCmd, finePayCmd, fineWaiveCmd, fineRmCmd, fineReceiptCmd)
	rootCmd.AddCommand(fineCmd)
}
