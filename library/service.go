package library

import (
	"time"

	"go.uber.org/zap"
)

// Notifier is the email collaborator. Implementations are fire-and-forget
// from the service's point of view: a failed send is logged and swallowed,
// never allowed to block or roll back the workflow that triggered it.
type Notifier interface {
	ReservationReady(email, studentName, bookTitle string) error
	OverdueReminder(email, studentName, bookTitle string, dueDate time.Time) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) ReservationReady(string, string, string) error { return nil }
func (NopNotifier) OverdueReminder(string, string, string, time.Time) error {
	return nil
}

// Service is the facade the CLI talks to. It keeps statuses fresh before
// business operations run and fans out notifications after they commit.
type Service struct {
	db     *Database
	log    *zap.Logger
	mailer Notifier
}

// NewService wires the service. A nil logger or mailer falls back to no-ops.
func NewService(db *Database, log *zap.Logger, mailer Notifier) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if mailer == nil {
		mailer = NopNotifier{}
	}
	return &Service{db: db, log: log, mailer: mailer}
}

// Close closes the underlying database.
func (s *Service) Close() error { return s.db.Close() }

// refresh runs the status sweep ahead of a business operation so decisions
// see current overdue and expiry state.
func (s *Service) refresh() error {
	res, err := s.db.RefreshStatuses()
	if err != nil {
		return err
	}
	if res.OverdueMarked > 0 || res.ReservationsExpired > 0 {
		s.log.Info("status sweep",
			zap.Int64("overdue_marked", res.OverdueMarked),
			zap.Int64("reservations_expired", res.ReservationsExpired))
	}
	return nil
}

// RefreshStatuses exposes the sweep as its own operation.
func (s *Service) RefreshStatuses() (RefreshResult, error) { return s.db.RefreshStatuses() }

// ------------------ Membership ------------------

func (s *Service) RegisterLibrarian(in NewLibrarian) (*Librarian, error) {
	return s.db.RegisterLibrarian(in)
}

func (s *Service) Authenticate(username, password string) (*Librarian, error) {
	lib, err := s.db.Authenticate(username, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("username", username))
		return nil, err
	}
	s.log.Info("login", zap.String("username", username), zap.Int64("librarian_id", lib.ID))
	return lib, nil
}

func (s *Service) ChangePassword(librarianID int64, newPassword string) error {
	return s.db.ChangePassword(librarianID, newPassword)
}

func (s *Service) GetLibrarian(id int64) (*Librarian, error) { return s.db.GetLibrarian(id) }

func (s *Service) AddStudent(in NewStudent) (*Student, error)  { return s.db.AddStudent(in) }
func (s *Service) GetStudent(id int64) (*Student, error)       { return s.db.GetStudent(id) }
func (s *Service) ListStudents() ([]Student, error)            { return s.db.ListStudents() }
func (s *Service) SearchStudents(q string) ([]Student, error)  { return s.db.SearchStudents(q) }
func (s *Service) DeleteStudent(id int64) error                { return s.db.DeleteStudent(id) }
func (s *Service) UpdateStudent(id int64, in NewStudent) (*Student, error) {
	return s.db.UpdateStudent(id, in)
}

// ------------------ Catalog ------------------

func (s *Service) AddBook(in NewBook) (*Book, error)      { return s.db.AddBook(in) }
func (s *Service) GetBook(id int64) (*Book, error)        { return s.db.GetBook(id) }
func (s *Service) ListBooks() ([]Book, error)             { return s.db.ListBooks() }
func (s *Service) SearchBooks(q string) ([]Book, error)   { return s.db.SearchBooks(q) }
func (s *Service) DeleteBook(id int64) error              { return s.db.DeleteBook(id) }
func (s *Service) UpdateBook(id int64, in NewBook) (*Book, error) {
	return s.db.UpdateBook(id, in)
}

// ------------------ Circulation ------------------

func (s *Service) BorrowBook(bookID, studentID, librarianID int64) (*BorrowTransaction, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	bt, err := s.db.Borrow(bookID, studentID, librarianID)
	if err != nil {
		return nil, err
	}
	s.log.Info("borrow",
		zap.Int64("transaction_id", bt.ID),
		zap.Int64("book_id", bookID),
		zap.Int64("student_id", studentID))
	return bt, nil
}

func (s *Service) ReturnBook(transactionID int64) (*ReturnOutcome, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	out, err := s.db.Return(transactionID)
	if err != nil {
		return nil, err
	}
	s.log.Info("return",
		zap.Int64("transaction_id", transactionID),
		zap.Int("days_late", out.DaysLate))

	if out.Promoted != nil {
		s.notifyReady(out.Promoted)
	}
	return out, nil
}

func (s *Service) ReportLost(transactionID int64) (*ReturnOutcome, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	out, err := s.db.MarkLost(transactionID)
	if err != nil {
		return nil, err
	}
	s.log.Info("lost", zap.Int64("transaction_id", transactionID), zap.Int("fine", out.Fine.Amount))
	return out, nil
}

func (s *Service) ListLoans(f LoanFilter) ([]LoanRecord, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.db.ListLoans(f)
}

// SendOverdueReminders mails every student with an overdue loan. It returns
// how many reminders were actually sent; individual failures only log.
func (s *Service) SendOverdueReminders() (int, error) {
	if err := s.refresh(); err != nil {
		return 0, err
	}
	overdue, err := s.db.ListLoans(LoanFilter{Status: TxOverdue})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, loan := range overdue {
		if err := s.mailer.OverdueReminder(loan.StudentEmail, loan.StudentName, loan.BookTitle, loan.DueDate); err != nil {
			s.log.Warn("overdue reminder failed",
				zap.Int64("transaction_id", loan.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// ------------------ Reservations ------------------

func (s *Service) ReserveBook(bookID, studentID int64) (*Reservation, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	r, err := s.db.Reserve(bookID, studentID)
	if err != nil {
		return nil, err
	}
	s.log.Info("reserve",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("book_id", bookID),
		zap.Int64("student_id", studentID))
	return r, nil
}

func (s *Service) MarkReservationReady(reservationID int64) (*ReservationRecord, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	rec, err := s.db.MarkReady(reservationID)
	if err != nil {
		return nil, err
	}
	s.notifyReady(&PromotedHold{
		ReservationID: rec.ID,
		StudentName:   rec.StudentName,
		StudentEmail:  rec.StudentEmail,
		BookTitle:     rec.BookTitle,
	})
	return rec, nil
}

func (s *Service) CancelReservation(reservationID int64) error {
	return s.db.CancelReservation(reservationID)
}

func (s *Service) FulfillReservation(reservationID, librarianID int64) (*BorrowTransaction, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.db.FulfillReservation(reservationID, librarianID)
}

func (s *Service) ListReservations(f ReservationFilter) ([]ReservationRecord, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.db.ListReservations(f)
}

func (s *Service) notifyReady(hold *PromotedHold) {
	if err := s.mailer.ReservationReady(hold.StudentEmail, hold.StudentName, hold.BookTitle); err != nil {
		s.log.Warn("reservation-ready notice failed",
			zap.Int64("reservation_id", hold.ReservationID),
			zap.Error(err))
	}
}

// ------------------ Fines ------------------

func (s *Service) PayFine(fineID int64) (*Fine, error)          { return s.db.PayFine(fineID) }
func (s *Service) WaiveFine(fineID int64) (*Fine, error)        { return s.db.WaiveFine(fineID) }
func (s *Service) DeleteFine(fineID int64) error                { return s.db.DeleteFine(fineID) }
func (s *Service) ListFines(f FineFilter) ([]FineRecord, error) { return s.db.ListFines(f) }
func (s *Service) FineRecord(fineID int64) (*FineRecord, error) {
	return s.db.GetFineRecord(fineID)
}

// ------------------ Reporting ------------------

func (s *Service) Summary() (*Summary, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.db.Summary()
}
