package converter

import (
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
	wire "gitlab.com/dirk.krummacker/phonebook/pkg/model"
)

// ContactToRecord validates a wire contact and builds the corresponding record.
func ContactToRecord(contact wire.Contact) (*model.Record, error) {
	birthday := ""
	if contact.Birthday != nil {
		birthday = *contact.Birthday
	}
	return model.NewRecord(contact.Name, contact.Phones, birthday)
}

// RecordToContact converts a record to its wire shape. Phones is never nil so that JSON shows an
// empty list instead of null.
func RecordToContact(record *model.Record) wire.Contact {
	phones := make([]string, 0, len(record.Phones()))
	for _, p := range record.Phones() {
		phones = append(phones, p.String())
	}
	contact := wire.Contact{Name: record.Name(), Phones: phones}
	if b := record.Birthday(); b.IsSet() {
		s := b.String()
		contact.Birthday = &s
	}
	return contact
}

// RecordsToContacts converts a slice of records, keeping the order.
func RecordsToContacts(records []*model.Record) []wire.Contact {
	contacts := make([]wire.Contact, len(records))
	for i, r := range records {
		contacts[i] = RecordToContact(r)
	}
	return contacts
}

// PhoneMatchesToWire converts phone search results.
func PhoneMatchesToWire(matches []model.PhoneMatch) []wire.PhoneMatch {
	result := make([]wire.PhoneMatch, len(matches))
	for i, m := range matches {
		result[i] = wire.PhoneMatch{Name: m.Name, Phone: m.Phone.String()}
	}
	return result
}
