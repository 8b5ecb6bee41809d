package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStudentValidation(t *testing.T) {
	db := tempDB(t)

	cases := []struct {
		name string
		in   NewStudent
	}{
		{"short first name", NewStudent{FirstName: "A", LastName: "Santos", Email: "a@example.edu"}},
		{"digits in name", NewStudent{FirstName: "Mar1a", LastName: "Santos", Email: "a@example.edu"}},
		{"bad email", NewStudent{FirstName: "Maria", LastName: "Santos", Email: "not-an-email"}},
		{"short phone", NewStudent{FirstName: "Maria", LastName: "Santos", Email: "a@example.edu", Phone: "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.AddStudent(tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestAddStudentDuplicateEmail(t *testing.T) {
	db := tempDB(t)
	st := addStudent(t, db)

	_, err := db.AddStudent(NewStudent{
		FirstName: "Other",
		LastName:  "Person",
		Email:     st.Email,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateStudent(t *testing.T) {
	db := tempDB(t)
	st := addStudent(t, db)

	updated, err := db.UpdateStudent(st.ID, NewStudent{
		FirstName: "Mariana",
		LastName:  st.LastName,
		Email:     st.Email,
		Phone:     st.Phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mariana", updated.FirstName)

	_, err = db.UpdateStudent(9999, NewStudent{
		FirstName: "Ghost",
		LastName:  "Person",
		Email:     "ghost@example.edu",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchStudents(t *testing.T) {
	db := tempDB(t)
	st := addStudent(t, db)

	found, err := db.SearchStudents(st.Email)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, st.ID, found[0].ID)

	found, err = db.SearchStudents("Santos")
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	found, err = db.SearchStudents("zzz-nobody")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeleteStudent(t *testing.T) {
	db := tempDB(t)
	st := addStudent(t, db)
	book := addBook(t, db, 1)

	// An open reservation does not pin the student; it is cleaned up.
	_, err := db.Reserve(book.ID, st.ID)
	require.NoError(t, err)

	require.NoError(t, db.DeleteStudent(st.ID))
	_, err = db.GetStudent(st.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, db.DeleteStudent(st.ID), ErrNotFound)
}

func TestDeleteStudentWithHistoryBlocked(t *testing.T) {
	db := tempDB(t)
	lib := addLibrarian(t, db)
	st := addStudent(t, db)
	book := addBook(t, db, 1)

	bt, err := db.Borrow(book.ID, st.ID, lib.ID)
	require.NoError(t, err)
	_, err = db.Return(bt.ID)
	require.NoError(t, err)

	// Even a closed loan keeps the student in the ledger.
	require.ErrorIs(t, db.DeleteStudent(st.ID), ErrConflict)
}
