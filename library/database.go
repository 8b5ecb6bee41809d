package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Database provides the datastore operations behind the service layer.
// Every multi-step workflow runs inside one database transaction.
type Database struct {
	db      *sqlx.DB
	driver  string
	builder goqu.DialectWrapper

	// now is swappable in tests to exercise due dates and expiry.
	now func() time.Time
}

// Open connects to the datastore. driver is sqlite3 or mysql; dsn is a file
// path for SQLite (connection options are filled in) or a full DSN for MySQL
// (parseTime is enforced so DATETIME columns scan into time.Time).
func Open(driver, dsn string) (*Database, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverMySQL:
		dsn = mysqlDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := applyMigrations(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{
		db:      db,
		driver:  driver,
		builder: goqu.Dialect(driver),
		now:     time.Now,
	}, nil
}

// Close closes the underlying connection.
func (d *Database) Close() error { return d.db.Close() }

// sqliteDSN turns a bare path into the connection string we always want:
// busy_timeout so concurrent CLI invocations don't fail immediately,
// foreign keys on, timestamps parsed as UTC.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_loc=UTC", path)
}

func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true&loc=UTC"
}

// today returns the current date at midnight UTC. Due dates and fine
// arithmetic work at day granularity.
func (d *Database) today() time.Time {
	n := d.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB, driver string) error {
	if driver == DriverSQLite {
		// WAL improves write concurrency.
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}

	if _, err := db.Exec(metaDDL(driver)); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	var current int
	_ = db.QueryRow(`SELECT meta_value FROM meta WHERE meta_key='schema_version'`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schemaDDL(driver) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(versionUpsert(driver), fmt.Sprint(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func metaDDL(driver string) string {
	if driver == DriverMySQL {
		return `CREATE TABLE IF NOT EXISTS meta (meta_key VARCHAR(64) PRIMARY KEY, meta_value VARCHAR(255)) ENGINE=InnoDB`
	}
	return `CREATE TABLE IF NOT EXISTS meta (meta_key TEXT PRIMARY KEY, meta_value TEXT)`
}

func versionUpsert(driver string) string {
	if driver == DriverMySQL {
		return `INSERT INTO meta(meta_key, meta_value) VALUES('schema_version', ?)
            ON DUPLICATE KEY UPDATE meta_value=VALUES(meta_value)`
	}
	return `INSERT INTO meta(meta_key, meta_value) VALUES('schema_version', ?)
        ON CONFLICT(meta_key) DO UPDATE SET meta_value=excluded.meta_value`
}

// schemaDDL is the one canonical schema, rendered per dialect.
func schemaDDL(driver string) []string {
	if driver == DriverMySQL {
		return []string{
			`CREATE TABLE IF NOT EXISTS librarians (
                librarian_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                first_name VARCHAR(50) NOT NULL,
                last_name VARCHAR(50) NOT NULL,
                email VARCHAR(255) NOT NULL UNIQUE,
                username VARCHAR(30) NOT NULL UNIQUE,
                password_hash VARCHAR(100) NOT NULL,
                hire_date DATETIME NOT NULL
            ) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS students (
                student_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                first_name VARCHAR(50) NOT NULL,
                last_name VARCHAR(50) NOT NULL,
                email VARCHAR(255) NOT NULL UNIQUE,
                phone VARCHAR(20) NOT NULL DEFAULT '',
                registration_date DATETIME NOT NULL
            ) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS books (
                book_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                title VARCHAR(100) NOT NULL,
                author VARCHAR(100) NOT NULL,
                isbn VARCHAR(17) NOT NULL UNIQUE,
                category VARCHAR(50) NOT NULL DEFAULT '',
                shelf_location VARCHAR(50) NOT NULL DEFAULT '',
                year INT NOT NULL,
                quantity INT NOT NULL DEFAULT 0
            ) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS borrow_transactions (
                transaction_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                student_id BIGINT NOT NULL,
                book_id BIGINT NOT NULL,
                librarian_id BIGINT NOT NULL,
                borrow_date DATETIME NOT NULL,
                due_date DATETIME NOT NULL,
                return_date DATETIME NULL,
                status VARCHAR(10) NOT NULL DEFAULT 'Active',
                FOREIGN KEY (student_id) REFERENCES students(student_id),
                FOREIGN KEY (book_id) REFERENCES books(book_id),
                FOREIGN KEY (librarian_id) REFERENCES librarians(librarian_id)
            ) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS reservations (
                reservation_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                book_id BIGINT NOT NULL,
                student_id BIGINT NOT NULL,
                reservation_date DATETIME NOT NULL,
                expires_at DATETIME NOT NULL,
                status VARCHAR(10) NOT NULL DEFAULT 'Active',
                FOREIGN KEY (book_id) REFERENCES books(book_id),
                FOREIGN KEY (student_id) REFERENCES students(student_id)
            ) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS fines (
                fine_id BIGINT PRIMARY KEY AUTO_INCREMENT,
                transaction_id BIGINT NOT NULL UNIQUE,
                amount INT NOT NULL,
                calculated_date DATETIME NOT NULL,
                payment_status VARCHAR(10) NOT NULL DEFAULT 'Unpaid',
                paid_date DATETIME NULL,
                FOREIGN KEY (transaction_id) REFERENCES borrow_transactions(transaction_id)
            ) ENGINE=InnoDB`,
			`CREATE INDEX idx_reservations_queue ON reservations(book_id, status, reservation_date)`,
			`CREATE INDEX idx_transactions_open ON borrow_transactions(status, due_date)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS librarians (
            librarian_id INTEGER PRIMARY KEY AUTOINCREMENT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            hire_date DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS students (
            student_id INTEGER PRIMARY KEY AUTOINCREMENT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            phone TEXT NOT NULL DEFAULT '',
            registration_date DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS books (
            book_id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            isbn TEXT NOT NULL UNIQUE,
            category TEXT NOT NULL DEFAULT '',
            shelf_location TEXT NOT NULL DEFAULT '',
            year INTEGER NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS borrow_transactions (
            transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
            student_id INTEGER NOT NULL REFERENCES students(student_id),
            book_id INTEGER NOT NULL REFERENCES books(book_id),
            librarian_id INTEGER NOT NULL REFERENCES librarians(librarian_id),
            borrow_date DATETIME NOT NULL,
            due_date DATETIME NOT NULL,
            return_date DATETIME,
            status TEXT NOT NULL DEFAULT 'Active'
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            reservation_id INTEGER PRIMARY KEY AUTOINCREMENT,
            book_id INTEGER NOT NULL REFERENCES books(book_id),
            student_id INTEGER NOT NULL REFERENCES students(student_id),
            reservation_date DATETIME NOT NULL,
            expires_at DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'Active'
        )`,
		`CREATE TABLE IF NOT EXISTS fines (
            fine_id INTEGER PRIMARY KEY AUTOINCREMENT,
            transaction_id INTEGER NOT NULL UNIQUE REFERENCES borrow_transactions(transaction_id),
            amount INTEGER NOT NULL,
            calculated_date DATETIME NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'Unpaid',
            paid_date DATETIME
        )`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_queue ON reservations(book_id, status, reservation_date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_open ON borrow_transactions(status, due_date)`,
	}
}
