package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-system/library"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage registered students",
}

var studentAddCmd = &cobra.Command{
	Use:   "add <first-name> <last-name> <email> [phone]",
	Short: "Register a new student",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := library.NewStudent{
			FirstName: args[0],
			LastName:  args[1],
			Email:     args[2],
		}
		if len(args) == 4 {
			in.Phone = args[3]
		}
		st, err := svc.AddStudent(in)
		if err != nil {
			return err
		}
		fmt.Printf("Added student #%d: %s %s\n", st.ID, st.FirstName, st.LastName)
		return nil
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := svc.ListStudents()
		if err != nil {
			return err
		}
		printStudents(students)
		return nil
	},
}

var studentSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search students by name or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := svc.SearchStudents(args[0])
		if err != nil {
			return err
		}
		printStudents(students)
		return nil
	},
}

var studentUpdateCmd = &cobra.Command{
	Use:   "update <student-id> <first-name> <last-name> <email> [phone]",
	Short: "Update a student's details",
	Args:  cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "student")
		if err != nil {
			return err
		}
		in := library.NewStudent{
			FirstName: args[1],
			LastName:  args[2],
			Email:     args[3],
		}
		if len(args) == 5 {
			in.Phone = args[4]
		}
		st, err := svc.UpdateStudent(id, in)
		if err != nil {
			return err
		}
		fmt.Printf("Updated student #%d: %s %s\n", st.ID, st.FirstName, st.LastName)
		return nil
	},
}

var studentRmCmd = &cobra.Command{
	Use:   "rm <student-id>",
	Short: "Remove a student with no borrowing history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "student")
		if err != nil {
			return err
		}
		if err := svc.DeleteStudent(id); err != nil {
			return err
		}
		fmt.Printf("Removed student #%d\n", id)
		return nil
	},
}

func printStudents(students []library.Student) {
	if len(students) == 0 {
		fmt.Println("No students found.")
		return
	}
	fmt.Printf("%-6s %-25s %-30s %-13s %-12s\n", "ID", "Name", "Email", "Phone", "Registered")
	for _, st := range students {
		fmt.Printf("%-6d %-25s %-30s %-13s %-12s\n",
			st.ID,
			truncateString(st.FirstName+" "+st.LastName, 25),
			truncateString(st.Email, 30),
			st.Phone,
			st.RegistrationDate.Format("2006-01-02"))
	}
	fmt.Printf("\n%d student(s)\n", len(students))
}

func init() {
	studentCmd.AddCommand(studentAddCmd, studentListCmd, studentSearchCmd, studentUpdateCmd, studentRmCmd)
	rootCmd.AddCommand(studentCmd)
}
