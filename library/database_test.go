package library

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// tempDB opens a fresh SQLite database in a per-test temp dir.
func tempDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var seq atomic.Int64

// testISBN builds a distinct, checksum-valid ISBN-13 per call.
func testISBN() string {
	n := seq.Add(1)
	base := fmt.Sprintf("978%09d", n)
	sum := 0
	for i, r := range base {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return fmt.Sprintf("%s%d", base, (10-sum%10)%10)
}

func addStudent(t *testing.T, d *Database) *Student {
	t.Helper()
	st, err := d.AddStudent(NewStudent{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     fmt.Sprintf("student%d@example.edu", seq.Add(1)),
		Phone:     "09171234567",
	})
	require.NoError(t, err)
	return st
}

func addBook(t *testing.T, d *Database, quantity int) *Book {
	t.Helper()
	b, err := d.AddBook(NewBook{
		Title:    "The Art of War",
		Author:   "Sun Tzu",
		ISBN:     testISBN(),
		Year:     1910,
		Quantity: quantity,
	})
	require.NoError(t, err)
	return b
}

func addLibrarian(t *testing.T, d *Database) *Librarian {
	t.Helper()
	n := seq.Add(1)
	lib, err := d.RegisterLibrarian(NewLibrarian{
		FirstName: "Jose",
		LastName:  "Reyes",
		Email:     fmt.Sprintf("staff%d@example.edu", n),
		Username:  fmt.Sprintf("staff%d", n),
		Password:  "Str0ngPass1",
	})
	require.NoError(t, err)
	return lib
}

// setNow pins the database clock.
func setNow(d *Database, at time.Time) {
	d.now = func() time.Time { return at }
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("postgres", "whatever")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported driver")
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	db, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	st := addStudent(t, db)
	require.NoError(t, db.Close())

	// Reopening the same file must not re-run the schema or lose data.
	db, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetStudent(st.ID)
	require.NoError(t, err)
	require.Equal(t, st.Email, got.Email)

	var version int
	require.NoError(t, db.db.Get(&version, `SELECT meta_value FROM meta WHERE meta_key='schema_version'`))
	require.Equal(t, schemaVersion, version)
}
