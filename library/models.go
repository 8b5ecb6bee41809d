package library

import "time"

// Circulation policy constants. Amounts are whole currency units.
const (
	LoanPeriodDays        = 7
	ReservationWindowDays = 7
	FineRatePerDay        = 5
	LostBookFine          = 300
)

// BorrowTransaction status values. A transaction is "open" while Active or
// Overdue; Returned and Lost are terminal.
const (
	TxActive   = "Active"
	TxOverdue  = "Overdue"
	TxReturned = "Returned"
	TxLost     = "Lost"
)

// Reservation status values. Fulfilled and Cancelled are terminal.
const (
	ResActive    = "Active"
	ResReady     = "Ready"
	ResFulfilled = "Fulfilled"
	ResCancelled = "Cancelled"
)

// Fine payment status values.
const (
	FineUnpaid = "Unpaid"
	FinePaid   = "Paid"
	FineWaived = "Waived"
)

// Book is a catalog entry. Quantity counts copies currently on the shelf;
// it goes down by one per open borrow and back up by one per return.
type Book struct {
	ID            int64  `db:"book_id" json:"id"`
	Title         string `db:"title" json:"title"`
	Author        string `db:"author" json:"author"`
	ISBN          string `db:"isbn" json:"isbn"`
	Category      string `db:"category" json:"category"`
	ShelfLocation string `db:"shelf_location" json:"shelf_location"`
	Year          int    `db:"year" json:"year"`
	Quantity      int    `db:"quantity" json:"quantity"`
}

// Student is a registered borrower.
type Student struct {
	ID               int64     `db:"student_id" json:"id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	RegistrationDate time.Time `db:"registration_date" json:"registration_date"`
}

// Librarian is a staff account. PasswordHash holds a bcrypt hash and is
// never serialized.
type Librarian struct {
	ID           int64     `db:"librarian_id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	HireDate     time.Time `db:"hire_date" json:"hire_date"`
}

// BorrowTransaction is one borrow-to-return record (lending sense, not a
// database transaction).
type BorrowTransaction struct {
	ID          int64      `db:"transaction_id" json:"id"`
	StudentID   int64      `db:"student_id" json:"student_id"`
	BookID      int64      `db:"book_id" json:"book_id"`
	LibrarianID int64      `db:"librarian_id" json:"librarian_id"`
	BorrowDate  time.Time  `db:"borrow_date" json:"borrow_date"`
	DueDate     time.Time  `db:"due_date" json:"due_date"`
	ReturnDate  *time.Time `db:"return_date" json:"return_date,omitempty"`
	Status      string     `db:"status" json:"status"`
}

// Reservation is a per-book, per-student hold request. Pending reservations
// (Active before expiry, or Ready) are served FIFO by reservation date.
type Reservation struct {
	ID              int64     `db:"reservation_id" json:"id"`
	BookID          int64     `db:"book_id" json:"book_id"`
	StudentID       int64     `db:"student_id" json:"student_id"`
	ReservationDate time.Time `db:"reservation_date" json:"reservation_date"`
	ExpiresAt       time.Time `db:"expires_at" json:"expires_at"`
	Status          string    `db:"status" json:"status"`
}

// Fine is a monetary penalty derived from a late return or a lost book.
// At most one fine exists per transaction.
type Fine struct {
	ID             int64      `db:"fine_id" json:"id"`
	TransactionID  int64      `db:"transaction_id" json:"transaction_id"`
	Amount         int        `db:"amount" json:"amount"`
	CalculatedDate time.Time  `db:"calculated_date" json:"calculated_date"`
	PaymentStatus  string     `db:"payment_status" json:"payment_status"`
	PaidDate       *time.Time `db:"paid_date" json:"paid_date,omitempty"`
}

// LoanRecord is a transaction joined with student and book columns for
// listing screens.
type LoanRecord struct {
	BorrowTransaction
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	BookTitle    string `db:"book_title" json:"book_title"`
}

// FineRecord is a fine joined with its transaction, student and book.
type FineRecord struct {
	Fine
	StudentName  string     `db:"student_name" json:"student_name"`
	StudentEmail string     `db:"student_email" json:"student_email"`
	BookTitle    string     `db:"book_title" json:"book_title"`
	DueDate      time.Time  `db:"due_date" json:"due_date"`
	ReturnDate   *time.Time `db:"return_date" json:"return_date,omitempty"`
	TxStatus     string     `db:"tx_status" json:"tx_status"`
}

// ReservationRecord is a reservation joined with student and book columns.
type ReservationRecord struct {
	Reservation
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	BookTitle    string `db:"book_title" json:"book_title"`
}

// PromotedHold describes the reservation promoted to Ready by a return,
// carrying enough contact detail to notify the holder.
type PromotedHold struct {
	ReservationID int64
	StudentName   string
	StudentEmail  string
	BookTitle     string
}

// ReturnOutcome reports everything a single return did.
type ReturnOutcome struct {
	Transaction *BorrowTransaction
	DaysLate    int
	Fine        *Fine         // nil when returned on time
	Promoted    *PromotedHold // nil when no reservation was waiting
}
