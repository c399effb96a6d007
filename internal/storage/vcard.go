package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// vCardVersion is written into every card.
const vCardVersion = "4.0"

// vCardDateLayouts are the BDAY forms with a year that are accepted when reading cards written by
// other programs.
var vCardDateLayouts = []string{model.BirthdayLayout, "20060102", time.RFC3339}

// phoneSeparators are stripped from TEL values before validation.
var phoneSeparators = strings.NewReplacer("tel:", "", "+", "", "-", "", "(", "", ")", "", " ", "", ".", "")

// VCardStore keeps the book as a vCard file with one card per record. The name is stored in FN,
// every phone in its own TEL and the birthday in BDAY.
type VCardStore struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

// NewVCardStore returns a store for the vCard file at path on fsys.
func NewVCardStore(fsys afero.Fs, path string, logger *slog.Logger) *VCardStore {
	return &VCardStore{fs: fsys, path: path, log: logger}
}

// Load decodes the file. Cards without a usable name are skipped, and so are phones and
// birthdays that do not validate; everything else of the card is kept. A missing file yields an
// empty book.
func (s *VCardStore) Load(ctx context.Context) (*model.AddressBook, error) {
	book := model.NewAddressBook()
	f, err := s.fs.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.InfoContext(ctx, "vCard file not found, starting empty", logging.KeyPath, s.path)
		return book, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	decoder := vcard.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		if record := s.cardToRecord(ctx, card); record != nil {
			book.AddRecord(record)
		}
	}
	s.log.DebugContext(ctx, "vCards loaded", logging.KeyPath, s.path, logging.KeyCount, book.Len())
	return book, nil
}

// cardToRecord builds a record from card, or returns nil when the card has no name.
func (s *VCardStore) cardToRecord(ctx context.Context, card vcard.Card) *model.Record {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
		}
	}
	record, err := model.NewRecord(name, nil, "")
	if err != nil {
		s.log.WarnContext(ctx, "skipping vCard without name", logging.KeyPath, s.path)
		return nil
	}

	if bday := card.Value(vcard.FieldBirthday); bday != "" {
		birthday, err := parseVCardDate(bday)
		if err != nil {
			s.log.WarnContext(ctx, "ignoring vCard birthday",
				logging.KeyName, name,
				logging.KeyError, err)
		} else {
			record.SetBirthday(birthday)
		}
	}

	for _, tel := range card.Values(vcard.FieldTelephone) {
		if err := record.AddPhone(phoneSeparators.Replace(tel)); err != nil {
			s.log.WarnContext(ctx, "ignoring vCard phone",
				logging.KeyName, name,
				logging.KeyError, err)
		}
	}
	return record
}

// parseVCardDate accepts the dated BDAY forms of vCard 3 and 4.
func parseVCardDate(value string) (model.Birthday, error) {
	for _, layout := range vCardDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.BirthdayOf(t), nil
		}
	}
	return model.Birthday{}, fmt.Errorf("%w: %q", model.ErrInvalidBirthday, value)
}

// Save encodes one card per record and replaces the file.
func (s *VCardStore) Save(ctx context.Context, book *model.AddressBook) error {
	var buf bytes.Buffer
	encoder := vcard.NewEncoder(&buf)
	for _, r := range book.Values() {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldVersion, vCardVersion)
		card.SetValue(vcard.FieldFormattedName, r.Name())
		for _, p := range r.Phones() {
			card.AddValue(vcard.FieldTelephone, p.String())
		}
		if b := r.Birthday(); b.IsSet() {
			card.SetValue(vcard.FieldBirthday, b.String())
		}
		if err := encoder.Encode(card); err != nil {
			return fmt.Errorf("encode %s: %w", r.Name(), err)
		}
	}
	if err := writeFileAtomic(s.fs, s.path, buf.Bytes()); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "vCards saved", logging.KeyPath, s.path, logging.KeyCount, book.Len())
	return nil
}

// Close does nothing; the file is only open during Load and Save.
func (s *VCardStore) Close() error {
	return nil
}
