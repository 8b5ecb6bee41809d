package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"library-system/library"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage the catalog",
}

var (
	bookCategory string
	bookShelf    string
	bookQuantity int
)

var bookAddCmd = &cobra.Command{
	Use:   "add <title> <author> <isbn> <year>",
	Short: "Add a title to the catalog",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid year: %s", args[3])
		}
		b, err := svc.AddBook(library.NewBook{
			Title:         args[0],
			Author:        args[1],
			ISBN:          args[2],
			Year:          year,
			Category:      bookCategory,
			ShelfLocation: bookShelf,
			Quantity:      bookQuantity,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added book #%d: %s (%d copies)\n", b.ID, b.Title, b.Quantity)
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := svc.ListBooks()
		if err != nil {
			return err
		}
		printBooks(books)
		return nil
	},
}

var bookSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search by title, author, ISBN or category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := svc.SearchBooks(args[0])
		if err != nil {
			return err
		}
		printBooks(books)
		return nil
	},
}

var bookUpdateCmd = &cobra.Command{
	Use:   "update <book-id> <title> <author> <isbn> <year>",
	Short: "Update a catalog entry",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "book")
		if err != nil {
			return err
		}
		year, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("invalid year: %s", args[4])
		}
		b, err := svc.UpdateBook(id, library.NewBook{
			Title:         args[1],
			Author:        args[2],
			ISBN:          args[3],
			Year:          year,
			Category:      bookCategory,
			ShelfLocation: bookShelf,
			Quantity:      bookQuantity,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Updated book #%d: %s\n", b.ID, b.Title)
		return nil
	},
}

var bookRmCmd = &cobra.Command{
	Use:   "rm <book-id>",
	Short: "Remove a title with no open loans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "book")
		if err != nil {
			return err
		}
		if err := svc.DeleteBook(id); err != nil {
			return err
		}
		fmt.Printf("Removed book #%d\n", id)
		return nil
	},
}

func printBooks(books []library.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	fmt.Printf("%-6s %-35s %-22s %-15s %-14s %-6s %s\n",
		"ID", "Title", "Author", "ISBN", "Category", "Year", "Copies")
	for _, b := range books {
		fmt.Printf("%-6d %-35s %-22s %-15s %-14s %-6d %d\n",
			b.ID,
			truncateString(b.Title, 35),
			truncateString(b.Author, 22),
			b.ISBN,
			truncateString(b.Category, 14),
			b.Year,
			b.Quantity)
	}
	fmt.Printf("\n%d title(s)\n", len(books))
}

func init() {
	for _, c := range []*cobra.Command{bookAddCmd, bookUpdateCmd} {
		c.Flags().StringVar(&bookCategory, "category", "", "subject category")
		c.Flags().StringVar(&bookShelf, "shelf", "", "shelf location")
		c.Flags().IntVar(&bookQuantity, "copies", 1, "number of copies")
	}
	bookCmd.AddCommand(bookAddCmd, bookListCmd, bookSearchCmd, bookUpdateCmd, bookRmCmd)
	rootCmd.AddCommand(bookCmd)
}
