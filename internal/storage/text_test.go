package storage

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// TestTextStoreRoundTrip saves a book and loads it again. It expects the same records in the
// same order.
func TestTextStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	store := NewTextStore(fsys, "phonebook.txt", discardLogger())

	book := sampleBook(t)
	require.NoError(t, store.Save(ctx, book))

	content, err := afero.ReadFile(fsys, "phonebook.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"Dirk Krummacker 4201234567 4200234542 1974-11-29\n"+
			"Adam 4203335557\n"+
			"Pavla 2000-02-29\n",
		string(content))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameBook(t, book, loaded)

	exists, err := afero.Exists(fsys, "phonebook.txt.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestTextStoreNamesWithDigits saves contacts whose names contain digits or irregular spaces. It
// expects all of them back after loading, next to a contact in the plain format.
func TestTextStoreNamesWithDigits(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	store := NewTextStore(fsys, "phonebook.txt", discardLogger())

	book := model.NewAddressBook()
	for _, c := range []struct{ name, phone, birthday string }{
		{"Agent 007", "0070070070", "1962-10-05"},
		{"R2D2", "", ""},
		{"Anna  Maria", "1234567890", ""},
		{"Alice", "9998887776", ""},
	} {
		var phones []string
		if c.phone != "" {
			phones = []string{c.phone}
		}
		r, err := model.NewRecord(c.name, phones, c.birthday)
		require.NoError(t, err)
		book.AddRecord(r)
	}
	require.NoError(t, store.Save(ctx, book))

	content, err := afero.ReadFile(fsys, "phonebook.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"Agent 007\t0070070070 1962-10-05\n"+
			"R2D2\t\n"+
			"Anna  Maria\t1234567890\n"+
			"Alice 9998887776\n",
		string(content))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameBook(t, book, loaded)
}

// TestTextStoreMissingFile expects an empty book when the file does not exist yet.
func TestTextStoreMissingFile(t *testing.T) {
	book, err := NewTextStore(afero.NewMemMapFs(), "missing.txt", discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, book.Len())
}

// TestTextStoreSkipsMalformedLines loads a file with invalid phones, invalid birthdays, blank
// lines and a line without a name. It expects only the valid lines to be loaded.
func TestTextStoreSkipsMalformedLines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "phonebook.txt", []byte(
		"Alice 1234567890 2000-05-01\n"+
			"\n"+
			"Bob 0815\n"+
			"Carla 1234567890 2023-02-29\n"+
			"1234567890\n"+
			"Dora 9998887776 9998887776\n"), 0o644))

	book, err := NewTextStore(fsys, "phonebook.txt", discardLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, book.Len())

	alice, err := book.Find("Alice")
	require.NoError(t, err)
	assert.Equal(t, "2000-05-01", alice.Birthday().String())
	dora, err := book.Find("Dora")
	require.NoError(t, err)
	assert.Len(t, dora.Phones(), 1)
}

// TestTextStoreDuplicateNames expects the last line of a name to win, as AddRecord overwrites.
func TestTextStoreDuplicateNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "phonebook.txt", []byte(
		"Alice 1111111111\nBob 2222222222\nAlice 3333333333\n"), 0o644))

	book, err := NewTextStore(fsys, "phonebook.txt", discardLogger()).Load(context.Background())
	require.NoError(t, err)
	alice, err := book.Find("Alice")
	require.NoError(t, err)
	assert.Equal(t, "3333333333", alice.Phones()[0].String())
	assert.Equal(t, "Alice", book.Values()[0].Name())
}

// TestTextStoreReadOnly expects Save to fail on a read-only file system.
func TestTextStoreReadOnly(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewTextStore(fsys, "phonebook.txt", discardLogger()).Save(context.Background(), sampleBook(t))
	assert.Error(t, err)
}
