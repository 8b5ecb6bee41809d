package library

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// spyNotifier records sends and can be told to fail.
type spyNotifier struct {
	mu       sync.Mutex
	ready    []string
	overdue  []string
	failNext bool
}

func (s *spyNotifier) ReservationReady(email, studentName, bookTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return errors.New("smtp down")
	}
	s.ready = append(s.ready, email)
	return nil
}

func (s *spyNotifier) OverdueReminder(email, studentName, bookTitle string, dueDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return errors.New("smtp down")
	}
	s.overdue = append(s.overdue, email)
	return nil
}

func tempService(t *testing.T) (*Service, *Database, *spyNotifier) {
	t.Helper()
	db := tempDB(t)
	spy := &spyNotifier{}
	return NewService(db, zap.NewNop(), spy), db, spy
}

func TestServiceRefreshesBeforeBorrow(t *testing.T) {
	svc, db, _ := tempService(t)
	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	setNow(db, start)

	lib := addLibrarian(t, db)
	st := addStudent(t, db)
	holder := addStudent(t, db)
	book := addBook(t, db, 1)
	other := addBook(t, db, 1)

	_, err := db.Reserve(book.ID, holder.ID)
	require.NoError(t, err)

	bt, err := svc.BorrowBook(other.ID, st.ID, lib.ID)
	require.NoError(t, err)

	// Past both windows: the loan flips Overdue and the hold lapses, so a
	// different student can now borrow the once-reserved book.
	setNow(db, start.AddDate(0, 0, LoanPeriodDays+3))

	_, err = svc.BorrowBook(book.ID, st.ID, lib.ID)
	require.NoError(t, err)

	loans, err := svc.ListLoans(LoanFilter{Status: TxOverdue})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, bt.ID, loans[0].ID)
}

func TestReturnNotifiesPromotedHolder(t *testing.T) {
	svc, db, spy := tempService(t)

	lib := addLibrarian(t, db)
	borrower := addStudent(t, db)
	waiting := addStudent(t, db)
	book := addBook(t, db, 1)

	bt, err := svc.BorrowBook(book.ID, borrower.ID, lib.ID)
	require.NoError(t, err)

	_, err = svc.ReserveBook(book.ID, waiting.ID)
	require.NoError(t, err)

	out, err := svc.ReturnBook(bt.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Promoted)

	require.Len(t, spy.ready, 1)
	assert.Equal(t, waiting.Email, spy.ready[0])
}

func TestReturnSucceedsWhenNotifyFails(t *testing.T) {
	svc, db, spy := tempService(t)

	lib := addLibrarian(t, db)
	borrower := addStudent(t, db)
	waiting := addStudent(t, db)
	book := addBook(t, db, 1)

	bt, err := svc.BorrowBook(book.ID, borrower.ID, lib.ID)
	require.NoError(t, err)
	_, err = svc.ReserveBook(book.ID, waiting.ID)
	require.NoError(t, err)

	spy.failNext = true
	out, err := svc.ReturnBook(bt.ID)
	require.NoError(t, err)
	assert.NotNil(t, out.Promoted)
	assert.Empty(t, spy.ready)

	// The promotion itself still committed.
	recs, err := svc.ListReservations(ReservationFilter{Status: ResReady})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestMarkReservationReadyNotifies(t *testing.T) {
	svc, db, spy := tempService(t)

	st := addStudent(t, db)
	book := addBook(t, db, 1)

	r, err := svc.ReserveBook(book.ID, st.ID)
	require.NoError(t, err)

	_, err = svc.MarkReservationReady(r.ID)
	require.NoError(t, err)

	require.Len(t, spy.ready, 1)
	assert.Equal(t, st.Email, spy.ready[0])
}

func TestSendOverdueReminders(t *testing.T) {
	svc, db, spy := tempService(t)
	start := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	setNow(db, start)

	lib := addLibrarian(t, db)
	late1 := addStudent(t, db)
	late2 := addStudent(t, db)
	onTime := addStudent(t, db)
	book := addBook(t, db, 3)

	_, err := svc.BorrowBook(book.ID, late1.ID, lib.ID)
	require.NoError(t, err)
	_, err = svc.BorrowBook(book.ID, late2.ID, lib.ID)
	require.NoError(t, err)

	setNow(db, start.AddDate(0, 0, LoanPeriodDays+1))
	_, err = svc.BorrowBook(book.ID, onTime.ID, lib.ID)
	require.NoError(t, err)

	sent, err := svc.SendOverdueReminders()
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{late1.Email, late2.Email}, spy.overdue)
}

func TestOverdueReminderFailuresAreCounted(t *testing.T) {
	svc, db, spy := tempService(t)
	start := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	setNow(db, start)

	lib := addLibrarian(t, db)
	st := addStudent(t, db)
	book := addBook(t, db, 1)

	_, err := svc.BorrowBook(book.ID, st.ID, lib.ID)
	require.NoError(t, err)
	setNow(db, start.AddDate(0, 0, LoanPeriodDays+1))

	spy.failNext = true
	sent, err := svc.SendOverdueReminders()
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestServiceValidationPassThrough(t *testing.T) {
	svc, _, _ := tempService(t)

	_, err := svc.AddStudent(NewStudent{FirstName: "X", LastName: "Y", Email: "bad"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSummary(t *testing.T) {
	svc, db, _ := tempService(t)
	start := time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)
	setNow(db, start)

	lib := addLibrarian(t, db)
	s1 := addStudent(t, db)
	s2 := addStudent(t, db)
	b1 := addBook(t, db, 3)
	b2 := addBook(t, db, 1)

	bt, err := svc.BorrowBook(b1.ID, s1.ID, lib.ID)
	require.NoError(t, err)

	_, err = svc.ReserveBook(b2.ID, s2.ID)
	require.NoError(t, err)

	// Late return produces a fine; pay it.
	setNow(db, start.AddDate(0, 0, LoanPeriodDays+2))
	out, err := svc.ReturnBook(bt.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Fine)
	_, err = svc.PayFine(out.Fine.ID)
	require.NoError(t, err)

	sum, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalStudents)
	assert.Equal(t, 2, sum.TotalTitles)
	assert.Equal(t, 4, sum.TotalCopies)
	assert.Equal(t, 0, sum.OpenLoans)
	assert.Equal(t, 2*FineRatePerDay, sum.FinesCollected)
	assert.Equal(t, 0, sum.FinesPending)

	// The reservation lapsed during the window we skipped.
	assert.Equal(t, 0, sum.PendingReservations)
}
