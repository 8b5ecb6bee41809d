package library

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
)

// AddBook inserts a catalog entry. ISBN must be unique.
func (d *Database) AddBook(in NewBook) (*Book, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	b := &Book{
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		Category:      in.Category,
		ShelfLocation: in.ShelfLocation,
		Year:          in.Year,
		Quantity:      in.Quantity,
	}

	res, err := d.db.Exec(
		`INSERT INTO books(title,author,isbn,category,shelf_location,year,quantity) VALUES(?,?,?,?,?,?,?)`,
		b.Title, b.Author, b.ISBN, b.Category, b.ShelfLocation, b.Year, b.Quantity)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a book with this ISBN already exists")
		}
		return nil, storage("insert book", err)
	}

	b.ID, err = res.LastInsertId()
	if err != nil {
		return nil, storage("insert book", err)
	}
	return b, nil
}

func (d *Database) GetBook(id int64) (*Book, error) {
	var b Book
	err := d.db.Get(&b, `SELECT * FROM books WHERE book_id=?`, id)
	if err == sql.ErrNoRows {
		return nil, notFound("book", id)
	}
	if err != nil {
		return nil, storage("load book", err)
	}
	return &b, nil
}

func (d *Database) ListBooks() ([]Book, error) {
	var books []Book
	if err := d.db.Select(&books, `SELECT * FROM books ORDER BY book_id`); err != nil {
		return nil, storage("list books", err)
	}
	return books, nil
}

// SearchBooks matches title, author, ISBN or category substrings.
func (d *Database) SearchBooks(q string) ([]Book, error) {
	pat := "%" + q + "%"
	query, args, err := d.builder.From("books").Prepared(true).
		Where(goqu.Or(
			goqu.C("title").Like(pat),
			goqu.C("author").Like(pat),
			goqu.C("isbn").Like(pat),
			goqu.C("category").Like(pat),
		)).
		Order(goqu.C("book_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, storage("build book search", err)
	}

	var books []Book
	if err := d.db.Select(&books, query, args...); err != nil {
		return nil, storage("search books", err)
	}
	return books, nil
}

// UpdateBook replaces the editable fields of a catalog entry. Quantity is
// set directly; circulation keeps its own bookkeeping relative to the new
// value.
func (d *Database) UpdateBook(id int64, in NewBook) (*Book, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	res, err := d.db.Exec(
		`UPDATE books SET title=?, author=?, isbn=?, category=?, shelf_location=?, year=?, quantity=?
         WHERE book_id=?`,
		in.Title, in.Author, in.ISBN, in.Category, in.ShelfLocation, in.Year, in.Quantity, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a book with this ISBN already exists")
		}
		return nil, storage("update book", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("book", id)
	}
	return d.GetBook(id)
}

// DeleteBook hard-deletes a catalog entry. Books with open loans cannot be
// removed; books with historical loan records are kept for the ledger.
func (d *Database) DeleteBook(id int64) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return storage("begin delete book", err)
	}
	defer tx.Rollback()

	var open int
	if err := tx.Get(&open,
		`SELECT COUNT(*) FROM borrow_transactions WHERE book_id=? AND status IN (?,?)`,
		id, TxActive, TxOverdue); err != nil {
		return storage("count open loans", err)
	}
	if open > 0 {
		return conflict("book has open loans and cannot be deleted")
	}

	if _, err := tx.Exec(`DELETE FROM reservations WHERE book_id=?`, id); err != nil {
		return storage("delete book reservations", err)
	}

	res, err := tx.Exec(`DELETE FROM books WHERE book_id=?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return conflict("book has loan history and cannot be deleted")
		}
		return storage("delete book", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("book", id)
	}
	return tx.Commit()
}
