package library

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
)

// AddStudent registers a borrower. Email must be unique.
func (d *Database) AddStudent(in NewStudent) (*Student, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	s := &Student{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		RegistrationDate: d.today(),
	}

	res, err := d.db.Exec(
		`INSERT INTO students(first_name,last_name,email,phone,registration_date) VALUES(?,?,?,?,?)`,
		s.FirstName, s.LastName, s.Email, s.Phone, s.RegistrationDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a student with this email already exists")
		}
		return nil, storage("insert student", err)
	}

	s.ID, err = res.LastInsertId()
	if err != nil {
		return nil, storage("insert student", err)
	}
	return s, nil
}

func (d *Database) GetStudent(id int64) (*Student, error) {
	var s Student
	err := d.db.Get(&s, `SELECT * FROM students WHERE student_id=?`, id)
	if err == sql.ErrNoRows {
		return nil, notFound("student", id)
	}
	if err != nil {
		return nil, storage("load student", err)
	}
	return &s, nil
}

func (d *Database) ListStudents() ([]Student, error) {
	var students []Student
	if err := d.db.Select(&students, `SELECT * FROM students ORDER BY student_id`); err != nil {
		return nil, storage("list students", err)
	}
	return students, nil
}

// SearchStudents matches name, email or phone substrings.
func (d *Database) SearchStudents(q string) ([]Student, error) {
	pat := "%" + q + "%"
	query, args, err := d.builder.From("students").Prepared(true).
		Where(goqu.Or(
			goqu.C("first_name").Like(pat),
			goqu.C("last_name").Like(pat),
			goqu.C("email").Like(pat),
			goqu.C("phone").Like(pat),
		)).
		Order(goqu.C("student_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, storage("build student search", err)
	}

	var students []Student
	if err := d.db.Select(&students, query, args...); err != nil {
		return nil, storage("search students", err)
	}
	return students, nil
}

// UpdateStudent replaces the editable fields of a student record.
func (d *Database) UpdateStudent(id int64, in NewStudent) (*Student, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	res, err := d.db.Exec(
		`UPDATE students SET first_name=?, last_name=?, email=?, phone=? WHERE student_id=?`,
		in.FirstName, in.LastName, in.Email, in.Phone, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a student with this email already exists")
		}
		return nil, storage("update student", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("student", id)
	}
	return d.GetStudent(id)
}

// DeleteStudent hard-deletes a student. A student referenced by any borrow
// transaction is immutable and cannot be removed.
func (d *Database) DeleteStudent(id int64) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return storage("begin delete student", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.Get(&refs, `SELECT COUNT(*) FROM borrow_transactions WHERE student_id=?`, id); err != nil {
		return storage("count student loans", err)
	}
	if refs > 0 {
		return conflict("student has borrow records and cannot be deleted")
	}

	if _, err := tx.Exec(`DELETE FROM reservations WHERE student_id=?`, id); err != nil {
		return storage("delete student reservations", err)
	}

	res, err := tx.Exec(`DELETE FROM students WHERE student_id=?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return conflict("student is referenced and cannot be deleted")
		}
		return storage("delete student", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("student", id)
	}
	return tx.Commit()
}
