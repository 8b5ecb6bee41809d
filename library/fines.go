package library

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

// PayFine settles an unpaid fine. Paying a Paid or Waived fine is rejected,
// not silently ignored.
func (d *Database) PayFine(fineID int64) (*Fine, error) {
	return d.settleFine(fineID, FinePaid)
}

// WaiveFine forgives an unpaid fine. The paid date stays empty.
func (d *Database) WaiveFine(fineID int64) (*Fine, error) {
	return d.settleFine(fineID, FineWaived)
}

func (d *Database) settleFine(fineID int64, target string) (*Fine, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, storage("begin settle fine", err)
	}
	defer tx.Rollback()

	var f Fine
	err = tx.Get(&f, `SELECT * FROM fines WHERE fine_id=?`, fineID)
	if err == sql.ErrNoRows {
		return nil, notFound("fine", fineID)
	}
	if err != nil {
		return nil, storage("load fine", err)
	}
	if f.PaymentStatus != FineUnpaid {
		return nil, conflict("fine is already " + f.PaymentStatus)
	}

	if target == FinePaid {
		today := d.today()
		if _, err := tx.Exec(
			`UPDATE fines SET payment_status=?, paid_date=? WHERE fine_id=?`,
			FinePaid, today, fineID); err != nil {
			return nil, storage("pay fine", err)
		}
		f.PaidDate = &today
	} else {
		if _, err := tx.Exec(
			`UPDATE fines SET payment_status=?, paid_date=NULL WHERE fine_id=?`,
			FineWaived, fineID); err != nil {
			return nil, storage("waive fine", err)
		}
		f.PaidDate = nil
	}
	f.PaymentStatus = target

	if err := tx.Commit(); err != nil {
		return nil, storage("commit settle fine", err)
	}
	return &f, nil
}

// DeleteFine permanently removes a fine record.
func (d *Database) DeleteFine(fineID int64) error {
	res, err := d.db.Exec(`DELETE FROM fines WHERE fine_id=?`, fineID)
	if err != nil {
		return storage("delete fine", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("fine", fineID)
	}
	return nil
}

// GetFineRecord fetches one fine with its transaction, student and book
// context (receipt rendering reads from this).
func (d *Database) GetFineRecord(fineID int64) (*FineRecord, error) {
	rows, err := d.listFines(goqu.I("f.fine_id").Eq(fineID))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("fine", fineID)
	}
	return &rows[0], nil
}

// FineFilter narrows ListFines output. Search matches student name or book
// title substrings, the way the fine screen's search box did.
type FineFilter struct {
	PaymentStatus string
	Search        string
}

// ListFines returns fines joined with student and book detail, newest first.
func (d *Database) ListFines(f FineFilter) ([]FineRecord, error) {
	var conds []goqu.Expression
	if f.PaymentStatus != "" {
		conds = append(conds, goqu.I("f.payment_status").Eq(f.PaymentStatus))
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		conds = append(conds, goqu.Or(
			goqu.I("s.first_name").Like(pat),
			goqu.I("s.last_name").Like(pat),
			goqu.I("b.title").Like(pat),
		))
	}
	return d.listFines(conds...)
}

func (d *Database) listFines(conds ...goqu.Expression) ([]FineRecord, error) {
	query, args, err := d.builder.From(goqu.T("fines").As("f")).Prepared(true).
		Join(goqu.T("borrow_transactions").As("bt"), goqu.On(goqu.Ex{"bt.transaction_id": goqu.I("f.transaction_id")})).
		Join(goqu.T("students").As("s"), goqu.On(goqu.Ex{"s.student_id": goqu.I("bt.student_id")})).
		Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.book_id": goqu.I("bt.book_id")})).
		Select(
			goqu.I("f.fine_id"), goqu.I("f.transaction_id"), goqu.I("f.amount"),
			goqu.I("f.calculated_date"), goqu.I("f.payment_status"), goqu.I("f.paid_date"),
			goqu.I("s.first_name"), goqu.I("s.last_name"),
			goqu.I("s.email").As("student_email"),
			goqu.I("b.title").As("book_title"),
			goqu.I("bt.due_date"), goqu.I("bt.return_date"),
			goqu.I("bt.status").As("tx_status"),
		).
		Where(conds...).
		Order(goqu.I("f.fine_id").Desc()).
		ToSQL()
	if err != nil {
		return nil, storage("build fine list", err)
	}

	var rows []struct {
		Fine
		FirstName    string     `db:"first_name"`
		LastName     string     `db:"last_name"`
		StudentEmail string     `db:"student_email"`
		BookTitle    string     `db:"book_title"`
		DueDate      time.Time  `db:"due_date"`
		ReturnDate   *time.Time `db:"return_date"`
		TxStatus     string     `db:"tx_status"`
	}
	if err := d.db.Select(&rows, query, args...); err != nil {
		return nil, storage("list fines", err)
	}

	records := make([]FineRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, FineRecord{
			Fine:         r.Fine,
			StudentName:  r.FirstName + " " + r.LastName,
			StudentEmail: r.StudentEmail,
			BookTitle:    r.BookTitle,
			DueDate:      r.DueDate,
			ReturnDate:   r.ReturnDate,
			TxStatus:     r.TxStatus,
		})
	}
	return records, nil
}
