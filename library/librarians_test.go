package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := tempDB(t)

	lib, err := db.RegisterLibrarian(NewLibrarian{
		FirstName: "Ana",
		LastName:  "Cruz",
		Email:     "ana.cruz@example.edu",
		Username:  "anacruz",
		Password:  "S3curePass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "S3curePass", lib.PasswordHash)

	got, err := db.Authenticate("anacruz", "S3curePass")
	require.NoError(t, err)
	assert.Equal(t, lib.ID, got.ID)

	// Wrong password and unknown user are indistinguishable.
	_, err = db.Authenticate("anacruz", "WrongPass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = db.Authenticate("nobody", "S3curePass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterLibrarianRejectsWeakPassword(t *testing.T) {
	db := tempDB(t)

	for _, pw := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere", "password"} {
		_, err := db.RegisterLibrarian(NewLibrarian{
			FirstName: "Ana",
			LastName:  "Cruz",
			Email:     "weak@example.edu",
			Username:  "weakuser",
			Password:  pw,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "password %q should be rejected", pw)
	}
}

func TestRegisterLibrarianDuplicateUsername(t *testing.T) {
	db := tempDB(t)
	lib := addLibrarian(t, db)

	_, err := db.RegisterLibrarian(NewLibrarian{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "other@example.edu",
		Username:  lib.Username,
		Password:  "S3curePass",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestChangePassword(t *testing.T) {
	db := tempDB(t)
	lib := addLibrarian(t, db)

	require.NoError(t, db.ChangePassword(lib.ID, "N3wSecret"))

	_, err := db.Authenticate(lib.Username, "Str0ngPass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = db.Authenticate(lib.Username, "N3wSecret")
	assert.NoError(t, err)

	var verr *ValidationError
	require.ErrorAs(t, db.ChangePassword(lib.ID, "weak"), &verr)
	require.ErrorIs(t, db.ChangePassword(9999, "N3wSecret"), ErrNotFound)
}
