package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lateFine borrows and returns late, producing an unpaid fine.
func lateFine(t *testing.T, db *Database) *Fine {
	t.Helper()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	setNow(db, start)

	lib := addLibrarian(t, db)
	st := addStudent(t, db)
	book := addBook(t, db, 1)

	bt, err := db.Borrow(book.ID, st.ID, lib.ID)
	require.NoError(t, err)

	setNow(db, start.AddDate(0, 0, LoanPeriodDays+2))
	out, err := db.Return(bt.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Fine)
	return out.Fine
}

func TestPayFine(t *testing.T) {
	db := tempDB(t)
	fine := lateFine(t, db)

	paid, err := db.PayFine(fine.ID)
	require.NoError(t, err)
	assert.Equal(t, FinePaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidDate)

	// Settled fines stay settled.
	_, err = db.PayFine(fine.ID)
	require.ErrorIs(t, err, ErrConflict)
	_, err = db.WaiveFine(fine.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestWaiveFine(t *testing.T) {
	db := tempDB(t)
	fine := lateFine(t, db)

	waived, err := db.WaiveFine(fine.ID)
	require.NoError(t, err)
	assert.Equal(t, FineWaived, waived.PaymentStatus)
	assert.Nil(t, waived.PaidDate)

	_, err = db.PayFine(fine.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSettleUnknownFine(t *testing.T) {
	db := tempDB(t)
	_, err := db.PayFine(404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFine(t *testing.T) {
	db := tempDB(t)
	fine := lateFine(t, db)

	require.NoError(t, db.DeleteFine(fine.ID))
	require.ErrorIs(t, db.DeleteFine(fine.ID), ErrNotFound)
}

func TestGetFineRecord(t *testing.T) {
	db := tempDB(t)
	fine := lateFine(t, db)

	rec, err := db.GetFineRecord(fine.ID)
	require.NoError(t, err)

	assert.Equal(t, fine.ID, rec.ID)
	assert.Equal(t, fine.Amount, rec.Amount)
	assert.NotEmpty(t, rec.StudentName)
	assert.NotEmpty(t, rec.BookTitle)
	assert.Equal(t, TxReturned, rec.TxStatus)
	require.NotNil(t, rec.ReturnDate)
	assert.True(t, rec.ReturnDate.After(rec.DueDate))
}

func TestListFinesFilters(t *testing.T) {
	db := tempDB(t)
	f1 := lateFine(t, db)
	f2 := lateFine(t, db)

	_, err := db.PayFine(f1.ID)
	require.NoError(t, err)

	unpaid, err := db.ListFines(FineFilter{PaymentStatus: FineUnpaid})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, f2.ID, unpaid[0].ID)

	// Every seeded borrower is a Santos; title search matches both.
	byTitle, err := db.ListFines(FineFilter{Search: "Art of War"})
	require.NoError(t, err)
	assert.Len(t, byTitle, 2)

	none, err := db.ListFines(FineFilter{Search: "no such thing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
