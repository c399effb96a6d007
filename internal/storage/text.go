package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/lineformat"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// filePerm is used for files written by the file based stores.
const filePerm fs.FileMode = 0o600

// TextStore keeps one record per line: the name, the phones and the optional birthday, separated
// by spaces. A name with digits in it is followed by a tab instead, see lineformat.Format.
type TextStore struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

// NewTextStore returns a store for the text file at path on fsys.
func NewTextStore(fsys afero.Fs, path string, logger *slog.Logger) *TextStore {
	return &TextStore{fs: fsys, path: path, log: logger}
}

// Load reads the file. Lines that do not form a valid record are logged and skipped so that one
// bad line does not lose the rest of the book. A missing file yields an empty book.
func (s *TextStore) Load(ctx context.Context) (*model.AddressBook, error) {
	book := model.NewAddressBook()
	f, err := s.fs.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.InfoContext(ctx, "phonebook file not found, starting empty", logging.KeyPath, s.path)
		return book, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, phones, birthday := lineformat.Parse(line)
		record, err := model.NewRecord(name, phones, birthday)
		if err != nil {
			s.log.WarnContext(ctx, "skipping malformed line",
				logging.KeyPath, s.path,
				logging.KeyLine, lineNo,
				logging.KeyError, err)
			continue
		}
		book.AddRecord(record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.log.DebugContext(ctx, "phonebook loaded", logging.KeyPath, s.path, logging.KeyCount, book.Len())
	return book, nil
}

// Save writes every record of book to a temporary file and moves it over the previous file.
func (s *TextStore) Save(ctx context.Context, book *model.AddressBook) error {
	var b strings.Builder
	for _, r := range book.Values() {
		phones := make([]string, 0, len(r.Phones()))
		for _, p := range r.Phones() {
			phones = append(phones, p.String())
		}
		b.WriteString(lineformat.Format(r.Name(), phones, r.Birthday().String()))
		b.WriteString("\n")
	}
	if err := writeFileAtomic(s.fs, s.path, []byte(b.String())); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "phonebook saved", logging.KeyPath, s.path, logging.KeyCount, book.Len())
	return nil
}

// Close does nothing; the file is only open during Load and Save.
func (s *TextStore) Close() error {
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(fsys afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
