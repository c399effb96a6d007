package converter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
	wire "gitlab.com/dirk.krummacker/phonebook/pkg/model"
)

func ptr(s string) *string { return &s }

// TestContactToRecord converts a complete wire contact and back. It expects the same contact.
func TestContactToRecord(t *testing.T) {
	contact := wire.Contact{
		Name:     "Erika Mustermann",
		Phones:   []string{"4908154711", "4912345678"},
		Birthday: ptr("1969-03-02"),
	}
	record, err := ContactToRecord(contact)
	require.NoError(t, err)
	if diff := cmp.Diff(contact, RecordToContact(record)); diff != "" {
		t.Errorf("contact mismatch (-want +got):\n%s", diff)
	}
}

// TestContactToRecordMinimal converts a contact with only a name. It expects an empty, non-nil
// phone list and no birthday on the way back.
func TestContactToRecordMinimal(t *testing.T) {
	record, err := ContactToRecord(wire.Contact{Name: "Rudi"})
	require.NoError(t, err)
	contact := RecordToContact(record)
	assert.NotNil(t, contact.Phones)
	assert.Empty(t, contact.Phones)
	assert.Nil(t, contact.Birthday)
}

// TestContactToRecordInvalid expects the validation errors of the core.
func TestContactToRecordInvalid(t *testing.T) {
	_, err := ContactToRecord(wire.Contact{})
	assert.ErrorIs(t, err, model.ErrMissingArgument)
	_, err = ContactToRecord(wire.Contact{Name: "Rudi", Phones: []string{"+49 0815 4711"}})
	assert.ErrorIs(t, err, model.ErrInvalidPhone)
	_, err = ContactToRecord(wire.Contact{Name: "Rudi", Birthday: ptr("1969-02-30")})
	assert.ErrorIs(t, err, model.ErrInvalidBirthday)
}

// TestPhoneMatchesToWire converts search hits.
func TestPhoneMatchesToWire(t *testing.T) {
	book := model.NewAddressBook()
	r, _ := model.NewRecord("Alice", []string{"1234567890"}, "")
	book.AddRecord(r)
	assert.Equal(t,
		[]wire.PhoneMatch{{Name: "Alice", Phone: "1234567890"}},
		PhoneMatchesToWire(book.FindByPhoneSubstring("456")))
}
