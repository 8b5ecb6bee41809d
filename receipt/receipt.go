// Package receipt renders a fine into a fixed-layout document on demand.
// Pure read: building or printing a receipt never changes library state.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"library-system/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Receipt is a printable snapshot of one fine.
type Receipt struct {
	Reference     string     `json:"reference"`
	IssuedAt      time.Time  `json:"issued_at"`
	FineID        int64      `json:"fine_id"`
	TransactionID int64      `json:"transaction_id"`
	StudentName   string     `json:"student_name"`
	BookTitle     string     `json:"book_title"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Amount        int        `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
}

// FromFine snapshots a fine record with a fresh receipt reference.
func FromFine(rec *library.FineRecord, issuedAt time.Time) *Receipt {
	return &Receipt{
		Reference:     uuid.NewString(),
		IssuedAt:      issuedAt,
		FineID:        rec.ID,
		TransactionID: rec.TransactionID,
		StudentName:   rec.StudentName,
		BookTitle:     rec.BookTitle,
		DueDate:       rec.DueDate,
		ReturnDate:    rec.ReturnDate,
		Amount:        rec.Amount,
		PaymentStatus: rec.PaymentStatus,
		PaidDate:      rec.PaidDate,
	}
}

const line = "==============================================="

// Render produces the fixed-layout text form.
func (r *Receipt) Render() string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", label+":", value)
	}

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "        LIBRARY FINE RECEIPT")
	fmt.Fprintln(&b, line)
	row("Reference", r.Reference)
	row("Issued", r.IssuedAt.Format("2006-01-02 15:04"))
	row("Fine ID", fmt.Sprint(r.FineID))
	row("Transaction", fmt.Sprint(r.TransactionID))
	row("Student", r.StudentName)
	row("Book", r.BookTitle)
	row("Due Date", r.DueDate.Format("2006-01-02"))
	if r.ReturnDate != nil {
		row("Returned", r.ReturnDate.Format("2006-01-02"))
	}
	fmt.Fprintln(&b, line)
	row("Amount", fmt.Sprintf("%d.00", r.Amount))
	row("Status", r.PaymentStatus)
	if r.PaidDate != nil {
		row("Paid", r.PaidDate.Format("2006-01-02"))
	}
	fmt.Fprintln(&b, line)
	return b.String()
}

// JSON produces the export form.
func (r *Receipt) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
