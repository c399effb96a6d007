package model

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

// PhoneMatch is a single hit of a phone number search.
type PhoneMatch struct {
	Name  string
	Phone PhoneNumber
}

// Upcoming pairs a record with the number of days until its next birthday.
type Upcoming struct {
	Record *Record
	Days   int
}

// AddressBook maps names to records and remembers the order in which names were first added.
// It is not safe for concurrent use.
type AddressBook struct {
	order   []string
	records map[string]*Record
}

// NewAddressBook returns an empty address book.
func NewAddressBook() *AddressBook {
	return &AddressBook{records: make(map[string]*Record)}
}

// AddRecord stores r under its name. An existing record with the same name is replaced entirely
// and the name keeps its original position. A nil record is ignored.
func (b *AddressBook) AddRecord(r *Record) {
	if r == nil {
		return
	}
	if _, ok := b.records[r.name]; !ok {
		b.order = append(b.order, r.name)
	}
	b.records[r.name] = r
}

// Find returns the record stored under exactly name.
func (b *AddressBook) Find(name string) (*Record, error) {
	r, ok := b.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRecordNotFound, name)
	}
	return r, nil
}

// FindByNameSubstring returns the records whose name contains fragment, in insertion order.
func (b *AddressBook) FindByNameSubstring(fragment string) []*Record {
	var found []*Record
	for _, r := range b.Values() {
		if strings.Contains(r.name, fragment) {
			found = append(found, r)
		}
	}
	return found
}

// FindByPhoneSubstring returns every phone containing fragment together with the owner's name.
// Records are visited in insertion order and phones in their own order.
func (b *AddressBook) FindByPhoneSubstring(fragment string) []PhoneMatch {
	var found []PhoneMatch
	for _, r := range b.Values() {
		for _, p := range r.phones {
			if strings.Contains(p.value, fragment) {
				found = append(found, PhoneMatch{Name: r.name, Phone: p})
			}
		}
	}
	return found
}

// Delete removes the record stored under name. Deleting an unknown name does nothing.
func (b *AddressBook) Delete(name string) {
	if _, ok := b.records[name]; !ok {
		return
	}
	delete(b.records, name)
	b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
}

// Len returns the number of records.
func (b *AddressBook) Len() int {
	return len(b.order)
}

// Values returns all records in insertion order.
func (b *AddressBook) Values() []*Record {
	values := make([]*Record, len(b.order))
	for i, name := range b.order {
		values[i] = b.records[name]
	}
	return values
}

// Chunks yields the records in consecutive slices of pageSize; the last one may be shorter. A
// pageSize below 1 yields all records in one slice. The sequence walks a snapshot taken when
// iteration starts. An empty book yields nothing.
func (b *AddressBook) Chunks(pageSize int) iter.Seq[[]*Record] {
	return func(yield func([]*Record) bool) {
		values := b.Values()
		if len(values) == 0 {
			return
		}
		size := pageSize
		if size < 1 {
			size = len(values)
		}
		for chunk := range slices.Chunk(values, size) {
			if !yield(chunk) {
				return
			}
		}
	}
}

// Paginate yields pages of up to pageSize rendered records, one line per record.
func (b *AddressBook) Paginate(pageSize int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for chunk := range b.Chunks(pageSize) {
			var page strings.Builder
			for _, r := range chunk {
				page.WriteString(r.String())
				page.WriteString("\n")
			}
			if !yield(page.String()) {
				return
			}
		}
	}
}

// UpcomingBirthdays returns the records whose next birthday is at most days away from today,
// nearest first. Records with the same distance keep insertion order.
func (b *AddressBook) UpcomingBirthdays(today time.Time, days int) []Upcoming {
	var upcoming []Upcoming
	for _, r := range b.Values() {
		if d, ok := r.DaysToBirthday(today); ok && d <= days {
			upcoming = append(upcoming, Upcoming{Record: r, Days: d})
		}
	}
	slices.SortStableFunc(upcoming, func(x, y Upcoming) int { return cmp.Compare(x.Days, y.Days) })
	return upcoming
}
