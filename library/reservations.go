package library

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
)

// Reserve places a hold for a student. Stock level is no precondition: in-
// and out-of-stock books can both be reserved. A student cannot hold two
// pending reservations for the same book, or reserve a book they currently
// have on loan.
func (d *Database) Reserve(bookID, studentID int64) (*Reservation, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin reserve", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM books WHERE book_id=?)`, bookID); err != nil {
		return nil, storage("check book", err)
	}
	if !exists {
		return nil, notFound("book", bookID)
	}
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM students WHERE student_id=?)`, studentID); err != nil {
		return nil, storage("check student", err)
	}
	if !exists {
		return nil, notFound("student", studentID)
	}

	if err := tx.Get(&exists,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE book_id=? AND student_id=? AND status IN (?,?))`,
		bookID, studentID, ResActive, ResReady); err != nil {
		return nil, storage("check pending reservation", err)
	}
	if exists {
		return nil, conflict("student already has a pending reservation for this book")
	}

	if err := tx.Get(&exists,
		`SELECT EXISTS(SELECT 1 FROM borrow_transactions WHERE book_id=? AND student_id=? AND status IN (?,?))`,
		bookID, studentID, TxActive, TxOverdue); err != nil {
		return nil, storage("check open loan", err)
	}
	if exists {
		return nil, conflict("student already has this book on loan")
	}

	now := d.now().UTC()
	r := &Reservation{
		BookID:          bookID,
		StudentID:       studentID,
		ReservationDate: now,
		ExpiresAt:       now.AddDate(0, 0, ReservationWindowDays),
		Status:          ResActive,
	}

	res, err := tx.Exec(
		`INSERT INTO reservations(book_id,student_id,reservation_date,expires_at,status) VALUES(?,?,?,?,?)`,
		r.BookID, r.StudentID, r.ReservationDate, r.ExpiresAt, r.Status)
	if err != nil {
		return nil, storage("insert reservation", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return nil, storage("insert reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storage("commit reserve", err)
	}
	return r, nil
}

// MarkReady promotes an Active reservation by hand, for the walk-up case
// where the copy is already on the shelf.
func (d *Database) MarkReady(reservationID int64) (*ReservationRecord, error) {
	res, err := d.db.Exec(
		`UPDATE reservations SET status=? WHERE reservation_id=? AND status=?`,
		ResReady, reservationID, ResActive)
	if err != nil {
		return nil, storage("mark ready", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := d.GetReservationRecord(reservationID); err != nil {
			return nil, err
		}
		return nil, conflict("only an active reservation can be marked ready")
	}
	return d.GetReservationRecord(reservationID)
}

// CancelReservation cancels a pending reservation (librarian action; the
// expiry sweep cancels lapsed ones on its own).
func (d *Database) CancelReservation(reservationID int64) error {
	res, err := d.db.Exec(
		`UPDATE reservations SET status=? WHERE reservation_id=? AND status IN (?,?)`,
		ResCancelled, reservationID, ResActive, ResReady)
	if err != nil {
		return storage("cancel reservation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := d.GetReservationRecord(reservationID); err != nil {
			return err
		}
		return conflict("reservation is no longer pending")
	}
	return nil
}

// FulfillReservation converts a pending reservation into a borrow for its
// holder and closes the reservation, in one transaction.
func (d *Database) FulfillReservation(reservationID, librarianID int64) (*BorrowTransaction, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin fulfill", err)
	}
	defer tx.Rollback()

	var r Reservation
	err = tx.Get(&r, `SELECT * FROM reservations WHERE reservation_id=?`, reservationID)
	if err == sql.ErrNoRows {
		return nil, notFound("reservation", reservationID)
	}
	if err != nil {
		return nil, storage("load reservation", err)
	}

	switch r.Status {
	case ResReady:
		// Held copy waiting for pickup.
	case ResActive:
		if !r.ExpiresAt.After(d.now().UTC()) {
			return nil, conflict("reservation has expired")
		}
	default:
		return nil, conflict("reservation is no longer pending")
	}

	bt, err := d.borrowInTx(tx, r.BookID, r.StudentID, librarianID)
	if err != nil {
		return nil, err
	}

	// borrowInTx fulfills the queue head; make sure this reservation is the
	// one closed even when an older hold was cancelled moments ago.
	if _, err := tx.Exec(
		`UPDATE reservations SET status=? WHERE reservation_id=? AND status IN (?,?)`,
		ResFulfilled, reservationID, ResActive, ResReady); err != nil {
		return nil, storage("fulfill reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storage("commit fulfill", err)
	}
	return bt, nil
}

// GetReservationRecord fetches one reservation with student and book detail.
func (d *Database) GetReservationRecord(id int64) (*ReservationRecord, error) {
	rows, err := d.listReservations(goqu.I("r.reservation_id").Eq(id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("reservation", id)
	}
	return &rows[0], nil
}

// ReservationFilter narrows ListReservations output.
type ReservationFilter struct {
	Status      string
	BookID      int64
	StudentID   int64
	PendingOnly bool
}

// ListReservations returns reservations joined with student and book
// detail, newest first.
func (d *Database) ListReservations(f ReservationFilter) ([]ReservationRecord, error) {
	var conds []goqu.Expression
	if f.PendingOnly {
		conds = append(conds, goqu.I("r.status").In(ResActive, ResReady))
	}
	if f.Status != "" {
		conds = append(conds, goqu.I("r.status").Eq(f.Status))
	}
	if f.BookID > 0 {
		conds = append(conds, goqu.I("r.book_id").Eq(f.BookID))
	}
	if f.StudentID > 0 {
		conds = append(conds, goqu.I("r.student_id").Eq(f.StudentID))
	}
	return d.listReservations(conds...)
}

func (d *Database) listReservations(conds ...goqu.Expression) ([]ReservationRecord, error) {
	query, args, err := d.builder.From(goqu.T("reservations").As("r")).Prepared(true).
		Join(goqu.T("students").As("s"), goqu.On(goqu.Ex{"s.student_id": goqu.I("r.student_id")})).
		Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.book_id": goqu.I("r.book_id")})).
		Select(
			goqu.I("r.reservation_id"), goqu.I("r.book_id"), goqu.I("r.student_id"),
			goqu.I("r.reservation_date"), goqu.I("r.expires_at"), goqu.I("r.status"),
			goqu.I("s.first_name"), goqu.I("s.last_name"),
			goqu.I("s.email").As("student_email"),
			goqu.I("b.title").As("book_title"),
		).
		Where(conds...).
		Order(goqu.I("r.reservation_id").Desc()).
		ToSQL()
	if err != nil {
		return nil, storage("build reservation list", err)
	}

	var rows []struct {
		Reservation
		FirstName    string `db:"first_name"`
		LastName     string `db:"last_name"`
		StudentEmail string `db:"student_email"`
		BookTitle    string `db:"book_title"`
	}
	if err := d.db.Select(&rows, query, args...); err != nil {
		return nil, storage("list reservations", err)
	}

	records := make([]ReservationRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, ReservationRecord{
			Reservation:  r.Reservation,
			StudentName:  r.FirstName + " " + r.LastName,
			StudentEmail: r.StudentEmail,
			BookTitle:    r.BookTitle,
		})
	}
	return records, nil
}
