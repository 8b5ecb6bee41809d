package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the library summary report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := svc.Summary()
		if err != nil {
			return err
		}
		if reportJSON {
			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(sum, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Println("Library Summary")
		fmt.Println("---------------")
		fmt.Printf("Students:             %d\n", sum.TotalStudents)
		fmt.Printf("Titles:               %d\n", sum.TotalTitles)
		fmt.Printf("Copies on shelf:      %d\n", sum.TotalCopies)
		fmt.Printf("Open loans:           %d\n", sum.OpenLoans)
		fmt.Printf("Pending reservations: %d\n", sum.PendingReservations)
		fmt.Printf("Fines collected:      %d.00\n", sum.FinesCollected)
		fmt.Printf("Fines outstanding:    %d.00\n", sum.FinesPending)
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(reportCmd)
}
