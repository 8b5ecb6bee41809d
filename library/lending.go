package library

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Borrow lends one copy of a book to a student. The quantity check and
// decrement happen in a single guarded UPDATE so two librarians cannot both
// lend the last copy. If the head of the reservation queue belongs to the
// borrowing student, that reservation is fulfilled by this borrow; if it
// belongs to someone else the borrow is rejected.
func (d *Database) Borrow(bookID, studentID, librarianID int64) (*BorrowTransaction, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin borrow", err)
	}
	defer tx.Rollback()

	bt, err := d.borrowInTx(tx, bookID, studentID, librarianID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storage("commit borrow", err)
	}
	return bt, nil
}

func (d *Database) borrowInTx(tx *sqlx.Tx, bookID, studentID, librarianID int64) (*BorrowTransaction, error) {
	var exists bool
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM students WHERE student_id=?)`, studentID); err != nil {
		return nil, storage("check student", err)
	}
	if !exists {
		return nil, notFound("student", studentID)
	}
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM librarians WHERE librarian_id=?)`, librarianID); err != nil {
		return nil, storage("check librarian", err)
	}
	if !exists {
		return nil, notFound("librarian", librarianID)
	}

	head, err := d.headReservation(tx, bookID)
	if err != nil {
		return nil, err
	}
	if head != nil && head.StudentID != studentID {
		return nil, ErrReservedConflict
	}

	res, err := tx.Exec(`UPDATE books SET quantity=quantity-1 WHERE book_id=? AND quantity>0`, bookID)
	if err != nil {
		return nil, storage("take copy", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM books WHERE book_id=?)`, bookID); err != nil {
			return nil, storage("check book", err)
		}
		if !exists {
			return nil, notFound("book", bookID)
		}
		return nil, ErrNoCopies
	}

	today := d.today()
	bt := &BorrowTransaction{
		StudentID:   studentID,
		BookID:      bookID,
		LibrarianID: librarianID,
		BorrowDate:  today,
		DueDate:     today.AddDate(0, 0, LoanPeriodDays),
		Status:      TxActive,
	}

	ins, err := tx.Exec(
		`INSERT INTO borrow_transactions(student_id,book_id,librarian_id,borrow_date,due_date,status)
         VALUES(?,?,?,?,?,?)`,
		bt.StudentID, bt.BookID, bt.LibrarianID, bt.BorrowDate, bt.DueDate, bt.Status)
	if err != nil {
		return nil, storage("insert transaction", err)
	}
	if bt.ID, err = ins.LastInsertId(); err != nil {
		return nil, storage("insert transaction", err)
	}

	if head != nil {
		// The borrower is the holder; close out their reservation.
		if _, err := tx.Exec(
			`UPDATE reservations SET status=? WHERE reservation_id=? AND status IN (?,?)`,
			ResFulfilled, head.ID, ResActive, ResReady); err != nil {
			return nil, storage("fulfill reservation", err)
		}
	}

	return bt, nil
}

// headReservation returns the oldest reservation still eligible to claim the
// book: Ready, or Active and not yet expired. Expired reservations never
// block a borrow even before the refresh sweep cancels them.
func (d *Database) headReservation(tx *sqlx.Tx, bookID int64) (*Reservation, error) {
	var r Reservation
	err := tx.Get(&r,
		`SELECT * FROM reservations
         WHERE book_id=? AND (status=? OR (status=? AND expires_at>?))
         ORDER BY reservation_date ASC, reservation_id ASC LIMIT 1`,
		bookID, ResReady, ResActive, d.now().UTC())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storage("load reservation queue", err)
	}
	return &r, nil
}

// Return closes an open transaction: restocks the copy, creates the late
// fine when due (exactly once per transaction), and promotes the oldest
// waiting reservation to Ready. All of it commits or none of it does.
func (d *Database) Return(transactionID int64) (*ReturnOutcome, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin return", err)
	}
	defer tx.Rollback()

	bt, err := openTransaction(tx, transactionID)
	if err != nil {
		return nil, err
	}

	today := d.today()
	out := &ReturnOutcome{Transaction: bt, DaysLate: daysLate(today, bt.DueDate)}

	if out.DaysLate > 0 {
		out.Fine, err = ensureFine(tx, bt.ID, out.DaysLate*FineRatePerDay, today)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(
		`UPDATE borrow_transactions SET status=?, return_date=? WHERE transaction_id=?`,
		TxReturned, today, bt.ID); err != nil {
		return nil, storage("close transaction", err)
	}
	bt.Status = TxReturned
	bt.ReturnDate = &today

	if _, err := tx.Exec(`UPDATE books SET quantity=quantity+1 WHERE book_id=?`, bt.BookID); err != nil {
		return nil, storage("restock book", err)
	}

	out.Promoted, err = d.promoteNext(tx, bt.BookID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storage("commit return", err)
	}
	return out, nil
}

// MarkLost closes an open transaction as Lost with the fixed fine. The copy
// is gone, so the book is not restocked.
func (d *Database) MarkLost(transactionID int64) (*ReturnOutcome, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin mark lost", err)
	}
	defer tx.Rollback()

	bt, err := openTransaction(tx, transactionID)
	if err != nil {
		return nil, err
	}

	today := d.today()
	out := &ReturnOutcome{Transaction: bt}

	out.Fine, err = ensureFine(tx, bt.ID, LostBookFine, today)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(
		`UPDATE borrow_transactions SET status=? WHERE transaction_id=?`,
		TxLost, bt.ID); err != nil {
		return nil, storage("close transaction", err)
	}
	bt.Status = TxLost

	if err := tx.Commit(); err != nil {
		return nil, storage("commit mark lost", err)
	}
	return out, nil
}

// openTransaction loads a transaction that must still be open.
func openTransaction(tx *sqlx.Tx, id int64) (*BorrowTransaction, error) {
	var bt BorrowTransaction
	err := tx.Get(&bt, `SELECT * FROM borrow_transactions WHERE transaction_id=?`, id)
	if err == sql.ErrNoRows {
		return nil, notFound("transaction", id)
	}
	if err != nil {
		return nil, storage("load transaction", err)
	}
	if bt.Status != TxActive && bt.Status != TxOverdue {
		return nil, conflict("transaction is already closed")
	}
	return &bt, nil
}

// ensureFine creates the fine for a transaction exactly once. A retry finds
// the existing row; the UNIQUE constraint on transaction_id backs this up.
func ensureFine(tx *sqlx.Tx, transactionID int64, amount int, today time.Time) (*Fine, error) {
	var f Fine
	err := tx.Get(&f, `SELECT * FROM fines WHERE transaction_id=?`, transactionID)
	if err == nil {
		return &f, nil
	}
	if err != sql.ErrNoRows {
		return nil, storage("load fine", err)
	}

	res, err := tx.Exec(
		`INSERT INTO fines(transaction_id,amount,calculated_date,payment_status) VALUES(?,?,?,?)`,
		transactionID, amount, today, FineUnpaid)
	if err != nil {
		return nil, storage("insert fine", err)
	}

	f = Fine{TransactionID: transactionID, Amount: amount, CalculatedDate: today, PaymentStatus: FineUnpaid}
	if f.ID, err = res.LastInsertId(); err != nil {
		return nil, storage("insert fine", err)
	}
	return &f, nil
}

// promoteNext moves the oldest live Active reservation to Ready, unless a
// Ready one is already waiting to be picked up.
func (d *Database) promoteNext(tx *sqlx.Tx, bookID int64) (*PromotedHold, error) {
	var ready bool
	if err := tx.Get(&ready,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE book_id=? AND status=?)`,
		bookID, ResReady); err != nil {
		return nil, storage("check ready holds", err)
	}
	if ready {
		return nil, nil
	}

	var row struct {
		ReservationID int64  `db:"reservation_id"`
		FirstName     string `db:"first_name"`
		LastName      string `db:"last_name"`
		Email         string `db:"email"`
		Title         string `db:"title"`
	}
	err := tx.Get(&row,
		`SELECT r.reservation_id, s.first_name, s.last_name, s.email, b.title
         FROM reservations r
         JOIN students s ON s.student_id = r.student_id
         JOIN books b ON b.book_id = r.book_id
         WHERE r.book_id=? AND r.status=? AND r.expires_at>?
         ORDER BY r.reservation_date ASC, r.reservation_id ASC LIMIT 1`,
		bookID, ResActive, d.now().UTC())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storage("load next reservation", err)
	}

	if _, err := tx.Exec(
		`UPDATE reservations SET status=? WHERE reservation_id=?`,
		ResReady, row.ReservationID); err != nil {
		return nil, storage("promote reservation", err)
	}

	return &PromotedHold{
		ReservationID: row.ReservationID,
		StudentName:   row.FirstName + " " + row.LastName,
		StudentEmail:  row.Email,
		BookTitle:     row.Title,
	}, nil
}

// RefreshResult reports what a status sweep changed.
type RefreshResult struct {
	OverdueMarked       int64
	ReservationsExpired int64
}

// RefreshStatuses reclassifies Active transactions past their due date as
// Overdue and cancels Active reservations past expiry. Listing and business
// operations call this explicitly; reads themselves stay side-effect free.
func (d *Database) RefreshStatuses() (RefreshResult, error) {
	var out RefreshResult

	tx, err := d.db.Beginx()
	if err != nil {
		return out, storage("begin refresh", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE borrow_transactions SET status=? WHERE status=? AND due_date<?`,
		TxOverdue, TxActive, d.today())
	if err != nil {
		return out, storage("mark overdue", err)
	}
	out.OverdueMarked, _ = res.RowsAffected()

	res, err = tx.Exec(
		`UPDATE reservations SET status=? WHERE status=? AND expires_at<=?`,
		ResCancelled, ResActive, d.now().UTC())
	if err != nil {
		return out, storage("expire reservations", err)
	}
	out.ReservationsExpired, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return out, storage("commit refresh", err)
	}
	return out, nil
}

// daysLate counts whole days between the due date and today, never negative.
func daysLate(today, due time.Time) int {
	if !today.After(due) {
		return 0
	}
	return int(today.Sub(due).Hours() / 24)
}

// LoanFilter narrows ListLoans output. Zero values mean "no filter".
type LoanFilter struct {
	Status    string
	StudentID int64
	BookID    int64
	OnlyOpen  bool
}

// ListLoans returns transactions joined with student and book detail,
// newest first.
func (d *Database) ListLoans(f LoanFilter) ([]LoanRecord, error) {
	ds := d.builder.From(goqu.T("borrow_transactions").As("bt")).Prepared(true).
		Join(goqu.T("students").As("s"), goqu.On(goqu.Ex{"s.student_id": goqu.I("bt.student_id")})).
		Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.book_id": goqu.I("bt.book_id")})).
		Select(
			goqu.I("bt.transaction_id"), goqu.I("bt.student_id"), goqu.I("bt.book_id"),
			goqu.I("bt.librarian_id"), goqu.I("bt.borrow_date"), goqu.I("bt.due_date"),
			goqu.I("bt.return_date"), goqu.I("bt.status"),
			goqu.I("s.first_name"), goqu.I("s.last_name"),
			goqu.I("s.email").As("student_email"),
			goqu.I("b.title").As("book_title"),
		).
		Order(goqu.I("bt.transaction_id").Desc())

	if f.OnlyOpen {
		ds = ds.Where(goqu.I("bt.status").In(TxActive, TxOverdue))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.I("bt.status").Eq(f.Status))
	}
	if f.StudentID > 0 {
		ds = ds.Where(goqu.I("bt.student_id").Eq(f.StudentID))
	}
	if f.BookID > 0 {
		ds = ds.Where(goqu.I("bt.book_id").Eq(f.BookID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, storage("build loan list", err)
	}

	var rows []struct {
		BorrowTransaction
		FirstName    string `db:"first_name"`
		LastName     string `db:"last_name"`
		StudentEmail string `db:"student_email"`
		BookTitle    string `db:"book_title"`
	}
	if err := d.db.Select(&rows, query, args...); err != nil {
		return nil, storage("list loans", err)
	}

	records := make([]LoanRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, LoanRecord{
			BorrowTransaction: r.BorrowTransaction,
			StudentName:       r.FirstName + " " + r.LastName,
			StudentEmail:      r.StudentEmail,
			BookTitle:         r.BookTitle,
		})
	}
	return records, nil
}
