package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/config"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/storage"
)

// options are the command line flags.
type options struct {
	file     string
	driver   string
	dsn      string
	from     string
	fromPath string
	to       string
	toPath   string
}

// Usage examples on the command line:
// > DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/schema.sql
// > go run main.go -from=text -from-path=phonebook.txt -to=sqlite3 -to-path=phonebook.db
func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "the sql file to execute")
	flag.StringVar(&opts.driver, "driver", storage.DriverMySQL, "the database driver for -file")
	flag.StringVar(&opts.dsn, "dsn", "", "the data source name for -file, taken from DBUSER, DBPWD and DBHOST if empty")
	flag.StringVar(&opts.from, "from", "", "the storage driver to copy the phonebook from")
	flag.StringVar(&opts.fromPath, "from-path", "", "the file or data source name to copy from")
	flag.StringVar(&opts.to, "to", "", "the storage driver to copy the phonebook to")
	flag.StringVar(&opts.toPath, "to-path", "", "the file or data source name to copy to")
	flag.Parse()

	logger := logging.New("info", "text", os.Stderr).With(logging.KeyComponent, logging.CompMain)
	if err := run(context.Background(), afero.NewOsFs(), opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, fsys afero.Fs, opts options, logger *slog.Logger) error {
	if opts.file == "" && opts.from == "" {
		return errors.New("nothing to do, use -file or -from and -to")
	}
	if opts.file != "" {
		dsn := opts.dsn
		if dsn == "" && opts.driver == storage.DriverMySQL {
			dsn = storage.MySQLDSNFromEnv()
		}
		db, err := storage.OpenDatabase(opts.driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		f, err := fsys.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := executeScript(ctx, db, f)
		if err != nil {
			return err
		}
		logger.Info("script executed", logging.KeyPath, opts.file, logging.KeyCount, n)
	}
	if opts.from != "" {
		if opts.to == "" {
			return errors.New("-from needs -to")
		}
		n, err := copyBook(ctx, fsys, storageConfig(opts.from, opts.fromPath), storageConfig(opts.to, opts.toPath), logger)
		if err != nil {
			return err
		}
		logger.Info("phonebook copied", logging.KeyCount, n)
	}
	return nil
}

// storageConfig treats path as the data source name of the SQL drivers.
func storageConfig(driver, path string) *config.ConfigStorage {
	cfg := &config.ConfigStorage{Driver: driver, Path: path}
	if driver == storage.DriverMySQL || driver == storage.DriverSQLite {
		cfg.DSN = path
	}
	return cfg
}

// executeScript runs the statements of r one after another. A statement ends with the line that
// contains a ';'. Lines starting with "--" are comments. It returns the number of statements.
func executeScript(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	count := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			sql := strings.TrimSpace(builder.String())
			if _, err := db.ExecContext(ctx, sql); err != nil {
				return count, fmt.Errorf("execute %q: %w", sql, err)
			}
			count++
			builder = strings.Builder{}
		}
	}
	return count, fileScanner.Err()
}

// copyBook loads the book from one store and saves it to another.
func copyBook(ctx context.Context, fsys afero.Fs, from, to *config.ConfigStorage, logger *slog.Logger) (int, error) {
	source, err := storage.Open(ctx, from, fsys, logger)
	if err != nil {
		return 0, err
	}
	defer source.Close()
	book, err := source.Load(ctx)
	if err != nil {
		return 0, err
	}

	target, err := storage.Open(ctx, to, fsys, logger)
	if err != nil {
		return 0, err
	}
	defer target.Close()
	if err := target.Save(ctx, book); err != nil {
		return 0, err
	}
	return book.Len(), nil
}
