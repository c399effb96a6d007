package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// createContactsTable is understood by both MySQL and SQLite. Names are not a key, because the
// default MySQL collation would make "Alice" and "alice" collide.
const createContactsTable = `
	CREATE TABLE IF NOT EXISTS contacts (
		position INTEGER      NOT NULL PRIMARY KEY,
		name     VARCHAR(255) NOT NULL,
		phones   TEXT         NOT NULL,
		birthday DATE         NULL
	)`

const deleteContacts = `DELETE FROM contacts`

const insertContact = `
	INSERT INTO contacts (position, name, phones, birthday)
	VALUES (:position, :name, :phones, :birthday)`

const selectContacts = `SELECT position, name, phones, birthday FROM contacts ORDER BY position`

// contactRow is one row of the contacts table. Phones are stored space separated.
type contactRow struct {
	Position int          `db:"position"`
	Name     string       `db:"name"`
	Phones   string       `db:"phones"`
	Birthday sql.NullTime `db:"birthday"`
}

// MySQLDSNFromEnv builds a MySQL connection string from the DBUSER, DBPWD and DBHOST environment
// variables. Dates are parsed into time.Time values.
//
// Usage example:
// > export DBHOST=localhost && export DBUSER=dirk && export DBPWD=bullo92
func MySQLDSNFromEnv() string {
	cfg := mysql.NewConfig()
	cfg.User = os.Getenv("DBUSER")
	cfg.Passwd = os.Getenv("DBPWD")
	cfg.Net = "tcp"
	cfg.Addr = os.Getenv("DBHOST")
	cfg.DBName = "test"
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// OpenDatabase opens a database handle for driverName and verifies the connection.
func OpenDatabase(driverName, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}
	return db, nil
}

// SQLStore keeps the book in the contacts table of a SQL database. The database can be a real
// database for production use or a mock database within unit tests.
type SQLStore struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewSQLStore wraps db.
func NewSQLStore(db *sqlx.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{db: db, log: logger}
}

// Migrate creates the contacts table unless it exists.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createContactsTable); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

// Load reads every row in position order. Rows that do not form a valid record are logged and
// skipped.
func (s *SQLStore) Load(ctx context.Context) (*model.AddressBook, error) {
	var rows []contactRow
	if err := s.db.SelectContext(ctx, &rows, selectContacts); err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	book := model.NewAddressBook()
	for _, row := range rows {
		birthday := ""
		if row.Birthday.Valid {
			birthday = model.BirthdayOf(row.Birthday.Time).String()
		}
		record, err := model.NewRecord(row.Name, strings.Fields(row.Phones), birthday)
		if err != nil {
			s.log.WarnContext(ctx, "skipping malformed row",
				logging.KeyName, row.Name,
				logging.KeyError, err)
			continue
		}
		book.AddRecord(record)
	}
	s.log.DebugContext(ctx, "contacts loaded", logging.KeyCount, book.Len())
	return book, nil
}

// Save replaces the content of the contacts table with book inside a single transaction.
func (s *SQLStore) Save(ctx context.Context, book *model.AddressBook) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteContacts); err != nil {
		return fmt.Errorf("delete contacts: %w", err)
	}
	for i, r := range book.Values() {
		if _, err := tx.NamedExecContext(ctx, insertContact, recordToRow(i, r)); err != nil {
			return fmt.Errorf("insert contact %q: %w", r.Name(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.DebugContext(ctx, "contacts saved", logging.KeyCount, book.Len())
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func recordToRow(position int, r *model.Record) contactRow {
	phones := make([]string, 0, len(r.Phones()))
	for _, p := range r.Phones() {
		phones = append(phones, p.String())
	}
	row := contactRow{Position: position, Name: r.Name(), Phones: strings.Join(phones, " ")}
	if t, ok := r.Birthday().Date(); ok {
		row.Birthday = sql.NullTime{Time: t, Valid: true}
	}
	return row
}
