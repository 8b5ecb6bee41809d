package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordOK(t *testing.T) {
	ok := []string{"S3curePass", "Abcdefg1", "xYz12345"}
	for _, pw := range ok {
		assert.True(t, passwordOK(pw), pw)
	}

	bad := []string{
		"",
		"Ab1",           // too short
		"abcdefgh1",     // no upper
		"ABCDEFGH1",     // no lower
		"Abcdefghi",     // no digit
		"Password",      // weak list, case-insensitive
		"12345678",      // weak list
	}
	for _, pw := range bad {
		assert.False(t, passwordOK(pw), pw)
	}
}

func TestCheckInputMessages(t *testing.T) {
	err := checkInput(NewStudent{FirstName: "M", LastName: "Santos", Email: "m@example.edu"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "first name")

	err = checkInput(NewBook{Title: "The Art of War", Author: "Sun Tzu", ISBN: "bogus", Year: 1990})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "ISBN")

	assert.NoError(t, checkInput(NewStudent{FirstName: "Maria", LastName: "Santos", Email: "m@example.edu"}))

	// Phone is optional but validated when present.
	assert.NoError(t, checkInput(NewStudent{FirstName: "Maria", LastName: "Santos", Email: "m@example.edu", Phone: "09171234567"}))
	err = checkInput(NewStudent{FirstName: "Maria", LastName: "Santos", Email: "m@example.edu", Phone: "123"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "phone")
}

func TestHyphenatedNamesAccepted(t *testing.T) {
	assert.NoError(t, checkInput(NewStudent{
		FirstName: "Mary-Jane",
		LastName:  "Dela Cruz",
		Email:     "mj@example.edu",
	}))
}
