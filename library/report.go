package library

// Summary is the dashboard aggregate: stock, circulation and fine totals.
type Summary struct {
	TotalStudents       int `json:"total_students"`
	TotalTitles         int `json:"total_titles"`
	TotalCopies         int `json:"total_copies"`
	OpenLoans           int `json:"open_loans"`
	PendingReservations int `json:"pending_reservations"`
	FinesCollected      int `json:"fines_collected"`
	FinesPending        int `json:"fines_pending"`
}

// Summary computes the report in one pass of aggregate queries. Pure read;
// callers wanting fresh overdue counts run RefreshStatuses first.
func (d *Database) Summary() (*Summary, error) {
	var s Summary

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&s.TotalStudents, `SELECT COUNT(*) FROM students`, nil},
		{&s.TotalTitles, `SELECT COUNT(*) FROM books`, nil},
		{&s.TotalCopies, `SELECT COALESCE(SUM(quantity),0) FROM books`, nil},
		{&s.OpenLoans, `SELECT COUNT(*) FROM borrow_transactions WHERE status IN (?,?)`, []any{TxActive, TxOverdue}},
		{&s.PendingReservations, `SELECT COUNT(*) FROM reservations WHERE status IN (?,?)`, []any{ResActive, ResReady}},
		{&s.FinesCollected, `SELECT COALESCE(SUM(amount),0) FROM fines WHERE payment_status=?`, []any{FinePaid}},
		{&s.FinesPending, `SELECT COALESCE(SUM(amount),0) FROM fines WHERE payment_status=?`, []any{FineUnpaid}},
	}

	for _, c := range counts {
		if err := d.db.Get(c.dest, c.query, c.args...); err != nil {
			return nil, storage("summary query", err)
		}
	}
	return &s, nil
}
