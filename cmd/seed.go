package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"library-system/library"
)

// seedBooks is a small starter catalog for demos and fresh installs.
var seedBooks = []library.NewBook{
	{Title: "1984", Author: "George Orwell", ISBN: "9780451524935", Year: 1949, Category: "Fiction", ShelfLocation: "A1", Quantity: 3},
	{Title: "Animal Farm", Author: "George Orwell", ISBN: "9780452284241", Year: 1945, Category: "Fiction", ShelfLocation: "A1", Quantity: 2},
	{Title: "The Art of War", Author: "Sun Tzu", ISBN: "9781590302255", Year: 1910, Category: "Philosophy", ShelfLocation: "B3", Quantity: 2},
	{Title: "The Fellowship of the Ring", Author: "John Tolkien", ISBN: "9780547928210", Year: 1954, Category: "Fantasy", ShelfLocation: "C2", Quantity: 4},
	{Title: "The Two Towers", Author: "John Tolkien", ISBN: "9780547928203", Year: 1954, Category: "Fantasy", ShelfLocation: "C2", Quantity: 4},
	{Title: "The Return of the King", Author: "John Tolkien", ISBN: "9780547928197", Year: 1955, Category: "Fantasy", ShelfLocation: "C2", Quantity: 4},
	{Title: "Romeo and Juliet", Author: "William Shakespeare", ISBN: "9780743477116", Year: 1903, Category: "Drama", ShelfLocation: "D1", Quantity: 2},
	{Title: "The Three Musketeers", Author: "Alexandre Dumas", ISBN: "9780140367470", Year: 1925, Category: "Adventure", ShelfLocation: "D4", Quantity: 1},
}

var seedStudents = []library.NewStudent{
	{FirstName: "Maria", LastName: "Santos", Email: "maria.santos@example.edu", Phone: "09171234567"},
	{FirstName: "Jose", LastName: "Reyes", Email: "jose.reyes@example.edu", Phone: "09181234567"},
	{FirstName: "Ana", LastName: "Cruz", Email: "ana.cruz@example.edu"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a starter catalog and a few students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		added, skipped := 0, 0
		for _, in := range seedBooks {
			if _, err := svc.AddBook(in); err != nil {
				if errors.Is(err, library.ErrConflict) {
					skipped++
					continue
				}
				return fmt.Errorf("seed book %q: %w", in.Title, err)
			}
			added++
		}
		fmt.Printf("Books: %d added, %d already present\n", added, skipped)

		added, skipped = 0, 0
		for _, in := range seedStudents {
			if _, err := svc.AddStudent(in); err != nil {
				if errors.Is(err, library.ErrConflict) {
					skipped++
					continue
				}
				return fmt.Errorf("seed student %s %s: %w", in.FirstName, in.LastName, err)
			}
			added++
		}
		fmt.Printf("Students: %d added, %d already present\n", added, skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
