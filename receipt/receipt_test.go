package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-system/library"
)

func sampleRecord() *library.FineRecord {
	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	rec := &library.FineRecord{
		StudentName: "Maria Santos",
		BookTitle:   "The Art of War",
		DueDate:     due,
		ReturnDate:  &returned,
		TxStatus:    library.TxReturned,
	}
	rec.ID = 7
	rec.TransactionID = 3
	rec.Amount = 20
	rec.PaymentStatus = library.FineUnpaid
	return rec
}

func TestFromFine(t *testing.T) {
	issued := time.Date(2024, 1, 13, 15, 4, 0, 0, time.UTC)
	r := FromFine(sampleRecord(), issued)

	assert.NotEmpty(t, r.Reference)
	assert.Equal(t, issued, r.IssuedAt)
	assert.EqualValues(t, 7, r.FineID)
	assert.EqualValues(t, 3, r.TransactionID)
	assert.Equal(t, 20, r.Amount)

	// Each receipt gets its own reference.
	other := FromFine(sampleRecord(), issued)
	assert.NotEqual(t, r.Reference, other.Reference)
}

func TestRender(t *testing.T) {
	r := FromFine(sampleRecord(), time.Date(2024, 1, 13, 15, 4, 0, 0, time.UTC))
	out := r.Render()

	assert.Contains(t, out, "LIBRARY FINE RECEIPT")
	assert.Contains(t, out, "Maria Santos")
	assert.Contains(t, out, "The Art of War")
	assert.Contains(t, out, "2024-01-08")
	assert.Contains(t, out, "2024-01-12")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, library.FineUnpaid)
	assert.Contains(t, out, r.Reference)
}

func TestRenderWithoutReturnDate(t *testing.T) {
	rec := sampleRecord()
	rec.ReturnDate = nil
	rec.TxStatus = library.TxLost

	out := FromFine(rec, time.Now()).Render()
	assert.NotContains(t, out, "Returned:")
}

func TestJSONRoundTrip(t *testing.T) {
	r := FromFine(sampleRecord(), time.Date(2024, 1, 13, 15, 4, 0, 0, time.UTC))

	data, err := r.JSON()
	require.NoError(t, err)

	var decoded Receipt
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.Reference, decoded.Reference)
	assert.Equal(t, r.Amount, decoded.Amount)
	assert.Equal(t, r.StudentName, decoded.StudentName)
}
