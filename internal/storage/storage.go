// Package storage loads and saves address books. Every backend round-trips records through the
// (name, phones, birthday) shape, so backends can be swapped without touching the core.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/config"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// Driver names accepted by Open.
const (
	DriverText   = "text"
	DriverVCard  = "vcard"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Store persists a complete address book.
type Store interface {
	// Load reads all records. A store that holds nothing yet yields an empty book.
	Load(ctx context.Context) (*model.AddressBook, error)

	// Save replaces the stored records with the records of book, keeping their order.
	Save(ctx context.Context, book *model.AddressBook) error

	// Close releases the resources held by the store.
	Close() error
}

// Open creates the store selected by cfg. File based stores work on fsys. SQL stores connect to
// the database and make sure the contacts table exists.
func Open(ctx context.Context, cfg *config.ConfigStorage, fsys afero.Fs, logger *slog.Logger) (Store, error) {
	logger = logger.With(logging.KeyComponent, logging.CompStorage, logging.KeyDriver, cfg.Driver)
	switch cfg.Driver {
	case DriverText:
		return NewTextStore(fsys, cfg.Path, logger), nil
	case DriverVCard:
		return NewVCardStore(fsys, cfg.Path, logger), nil
	case DriverMySQL, DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" && cfg.Driver == DriverMySQL {
			dsn = MySQLDSNFromEnv()
		} else if dsn == "" {
			dsn = cfg.Path
		}
		db, err := OpenDatabase(cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		store := NewSQLStore(db, logger)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
