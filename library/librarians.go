package library

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
)

// RegisterLibrarian creates a staff account. The password is stored as a
// bcrypt hash, never in clear.
func (d *Database) RegisterLibrarian(in NewLibrarian) (*Librarian, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storage("hash password", err)
	}

	lib := &Librarian{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		HireDate:     d.today(),
	}

	res, err := d.db.Exec(
		`INSERT INTO librarians(first_name,last_name,email,username,password_hash,hire_date)
         VALUES(?,?,?,?,?,?)`,
		lib.FirstName, lib.LastName, lib.Email, lib.Username, lib.PasswordHash, lib.HireDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("email or username already registered")
		}
		return nil, storage("insert librarian", err)
	}

	lib.ID, err = res.LastInsertId()
	if err != nil {
		return nil, storage("insert librarian", err)
	}
	return lib, nil
}

// Authenticate verifies a username/password pair and returns the account.
// A missing user and a wrong password yield the same error.
func (d *Database) Authenticate(username, password string) (*Librarian, error) {
	var lib Librarian
	err := d.db.Get(&lib, `SELECT * FROM librarians WHERE username=?`, username)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storage("load librarian", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(lib.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &lib, nil
}

// GetLibrarian fetches one account by id.
func (d *Database) GetLibrarian(id int64) (*Librarian, error) {
	var lib Librarian
	err := d.db.Get(&lib, `SELECT * FROM librarians WHERE librarian_id=?`, id)
	if err == sql.ErrNoRows {
		return nil, notFound("librarian", id)
	}
	if err != nil {
		return nil, storage("load librarian", err)
	}
	return &lib, nil
}

// ChangePassword replaces a librarian's password after strength checks.
func (d *Database) ChangePassword(librarianID int64, newPassword string) error {
	if !passwordOK(newPassword) {
		return &ValidationError{Message: fieldMessages["Password"]}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return storage("hash password", err)
	}

	res, err := d.db.Exec(`UPDATE librarians SET password_hash=? WHERE librarian_id=?`, string(hash), librarianID)
	if err != nil {
		return storage("update password", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("librarian", librarianID)
	}
	return nil
}
