// Package command interprets the lines typed into the interactive phonebook. A Dispatcher owns
// an address book, runs one command per line against it and answers with a localized Reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/calendar"
	"gitlab.com/dirk.krummacker/phonebook/internal/clock"
	"gitlab.com/dirk.krummacker/phonebook/internal/lineformat"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

// errNotANumber is returned for count arguments that are not positive integers.
var errNotANumber = errors.New("not a positive number")

// Reply is the answer to one command line.
type Reply struct {
	// Text is printed at once. It may span several lines.
	Text string

	// Pages are printed one after another, waiting for the user in between.
	Pages []string

	// Exit asks the caller to save the book and stop.
	Exit bool
}

type handler func(ctx context.Context, args []string) (Reply, error)

// Dispatcher runs commands against an address book. It is not safe for concurrent use.
type Dispatcher struct {
	book     *model.AddressBook
	msgs     *Messages
	fs       afero.Fs
	clock    clock.Clock
	log      *slog.Logger
	handlers map[string]handler
	modified bool
	pageSize int
}

// NewDispatcher returns a dispatcher for book. Calendar exports are written to fsys; today's
// date for birthday distances comes from clk.
func NewDispatcher(book *model.AddressBook, msgs *Messages, fsys afero.Fs, clk clock.Clock, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		book:  book,
		msgs:  msgs,
		fs:    fsys,
		clock: clk,
		log:   logger.With(logging.KeyComponent, logging.CompCommand),
	}
	d.handlers = map[string]handler{
		"hello":     d.hello,
		"help":      d.help,
		"add":       d.add,
		"change":    d.change,
		"phone":     d.phone,
		"remove":    d.remove,
		"delete":    d.delete,
		"birthday":  d.birthday,
		"birthdays": d.birthdays,
		"search":    d.search,
		"show":      d.show,
		"export":    d.export,
	}
	return d
}

// Book returns the address book the dispatcher works on.
func (d *Dispatcher) Book() *model.AddressBook {
	return d.book
}

// SetPageSize makes a plain "show" page through the book n records at a time. With n below 1,
// which is the default, it shows every record at once like "show all".
func (d *Dispatcher) SetPageSize(n int) {
	d.pageSize = n
}

// Modified reports whether a command changed the book since the last call to MarkSaved.
func (d *Dispatcher) Modified() bool {
	return d.modified
}

// MarkSaved resets Modified after the book was persisted.
func (d *Dispatcher) MarkSaved() {
	d.modified = false
}

// Execute runs a single command line. The command keyword is case-insensitive; a blank line
// yields an empty reply.
func (d *Dispatcher) Execute(ctx context.Context, line string) Reply {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Reply{}
	}
	keyword := strings.ToLower(tokens[0])
	if isExit(keyword, tokens) {
		return Reply{Text: d.msgs.Get(MsgGoodBye), Exit: true}
	}
	h, ok := d.handlers[keyword]
	if !ok {
		return Reply{Text: d.msgs.Get(MsgUnknownCommand)}
	}
	d.log.DebugContext(ctx, "executing command", logging.KeyCommand, keyword)
	reply, err := h(ctx, tokens[1:])
	if err != nil {
		return Reply{Text: d.errorText(ctx, keyword, err)}
	}
	return reply
}

func isExit(keyword string, tokens []string) bool {
	switch keyword {
	case "exit", "close":
		return true
	case "good":
		return len(tokens) > 1 && strings.EqualFold(tokens[1], "bye")
	}
	return false
}

// errorText turns an error of a handler into the message shown to the user.
func (d *Dispatcher) errorText(ctx context.Context, keyword string, err error) string {
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		return d.msgs.Get(MsgErrUnknownPerson)
	case errors.Is(err, model.ErrInvalidPhone):
		return d.msgs.Get(MsgErrPhoneFormat)
	case errors.Is(err, model.ErrInvalidBirthday):
		return d.msgs.Get(MsgErrBirthdayFormat)
	case errors.Is(err, model.ErrPhoneNotFound):
		return d.msgs.Get(MsgErrPhoneNotFound)
	case errors.Is(err, model.ErrMissingArgument), errors.Is(err, model.ErrInvalidName):
		return d.msgs.Get(MsgErrInsufficient)
	case errors.Is(err, errNotANumber):
		return d.msgs.Format(MsgErrNotANumber, map[string]any{"Value": valueOf(err)})
	default:
		d.log.ErrorContext(ctx, "command failed",
			logging.KeyCommand, keyword,
			logging.KeyError, err)
		return d.msgs.Format(MsgErrInternal, map[string]any{"Error": err})
	}
}

// valueOf extracts the offending input from an error wrapped as "%w: %q".
func valueOf(err error) string {
	_, quoted, ok := strings.Cut(err.Error(), ": ")
	if !ok {
		return ""
	}
	if v, err := strconv.Unquote(quoted); err == nil {
		return v
	}
	return quoted
}

func normalizePhone(raw string) string {
	return lineformat.NormalizePhone(raw)
}

func normalizePhones(raw []string) []string {
	phones := make([]string, len(raw))
	for i, p := range raw {
		phones[i] = normalizePhone(p)
	}
	return phones
}

// splitName separates the contact name from the remaining arguments and fails without a name.
func splitName(args []string) (string, []string, error) {
	name, rest := lineformat.SplitName(args)
	if name == "" {
		return "", nil, fmt.Errorf("%w: name", model.ErrMissingArgument)
	}
	return name, rest, nil
}

// positive parses a count argument.
func positive(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", errNotANumber, arg)
	}
	return n, nil
}

func (d *Dispatcher) hello(context.Context, []string) (Reply, error) {
	return Reply{Text: d.msgs.Get(MsgHello)}, nil
}

func (d *Dispatcher) help(context.Context, []string) (Reply, error) {
	return Reply{Text: d.msgs.Get(MsgHelp)}, nil
}

// add creates a contact, or adds phones and a birthday to an existing one. Nothing is changed
// unless every phone and the birthday are valid.
func (d *Dispatcher) add(_ context.Context, args []string) (Reply, error) {
	name, rest, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	raw, rawBirthday := lineformat.SplitBirthday(rest)
	if len(raw) == 0 {
		return Reply{}, fmt.Errorf("%w: phone", model.ErrMissingArgument)
	}
	phones := normalizePhones(raw)

	// A throwaway record validates the input in one go.
	candidate, err := model.NewRecord(name, phones, rawBirthday)
	if err != nil {
		return Reply{}, err
	}
	if existing, err := d.book.Find(name); err == nil {
		for _, p := range candidate.Phones() {
			_ = existing.AddPhone(p.String())
		}
		if rawBirthday != "" {
			existing.SetBirthday(candidate.Birthday())
		}
	} else {
		d.book.AddRecord(candidate)
	}
	d.modified = true
	return Reply{Text: d.msgs.Format(MsgContactSaved, map[string]any{"Name": name})}, nil
}

func (d *Dispatcher) change(_ context.Context, args []string) (Reply, error) {
	name, rest, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	if len(rest) < 2 {
		return Reply{}, fmt.Errorf("%w: phones", model.ErrMissingArgument)
	}
	record, err := d.book.Find(name)
	if err != nil {
		return Reply{}, err
	}
	oldPhone, newPhone := normalizePhone(rest[len(rest)-2]), normalizePhone(rest[len(rest)-1])
	if err := record.EditPhone(oldPhone, newPhone); err != nil {
		return Reply{}, err
	}
	d.modified = true
	return Reply{Text: d.msgs.Format(MsgPhoneChanged, map[string]any{"Name": name})}, nil
}

// phone looks up one number of a contact, or lists all of them when no number is given.
func (d *Dispatcher) phone(_ context.Context, args []string) (Reply, error) {
	name, rest, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	record, err := d.book.Find(name)
	if err != nil {
		return Reply{}, err
	}
	if len(rest) == 0 {
		phones := record.Phones()
		if len(phones) == 0 {
			return Reply{Text: d.msgs.Format(MsgNoPhones, map[string]any{"Name": name})}, nil
		}
		values := make([]string, len(phones))
		for i, p := range phones {
			values[i] = p.String()
		}
		return Reply{Text: d.msgs.Format(MsgPhonesOf, map[string]any{
			"Name":   name,
			"Phones": strings.Join(values, "; "),
		})}, nil
	}
	found, err := record.FindPhone(normalizePhone(rest[len(rest)-1]))
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: d.msgs.Format(MsgPhoneFound, map[string]any{"Name": name, "Phone": found})}, nil
}

func (d *Dispatcher) remove(_ context.Context, args []string) (Reply, error) {
	name, rest, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	if len(rest) == 0 {
		return Reply{}, fmt.Errorf("%w: phone", model.ErrMissingArgument)
	}
	record, err := d.book.Find(name)
	if err != nil {
		return Reply{}, err
	}
	phone := normalizePhone(rest[len(rest)-1])
	if err := record.RemovePhone(phone); err != nil {
		return Reply{}, err
	}
	d.modified = true
	return Reply{Text: d.msgs.Format(MsgPhoneRemoved, map[string]any{"Name": name, "Phone": phone})}, nil
}

func (d *Dispatcher) delete(_ context.Context, args []string) (Reply, error) {
	name, _, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	if _, err := d.book.Find(name); err != nil {
		return Reply{}, err
	}
	d.book.Delete(name)
	d.modified = true
	return Reply{Text: d.msgs.Format(MsgContactDeleted, map[string]any{"Name": name})}, nil
}

// birthday optionally sets the birthday of a contact and reports the days until it.
func (d *Dispatcher) birthday(_ context.Context, args []string) (Reply, error) {
	name, rest, err := splitName(args)
	if err != nil {
		return Reply{}, err
	}
	record, err := d.book.Find(name)
	if err != nil {
		return Reply{}, err
	}
	if _, raw := lineformat.SplitBirthday(rest); raw != "" {
		b, err := model.ParseBirthday(raw)
		if err != nil {
			return Reply{}, err
		}
		record.SetBirthday(b)
		d.modified = true
	}
	days, ok := record.DaysToBirthday(d.clock.Now())
	switch {
	case !ok:
		return Reply{Text: d.msgs.Get(MsgBirthdayNotDefined)}, nil
	case days == 0:
		return Reply{Text: d.msgs.Get(MsgBirthdayToday)}, nil
	default:
		return Reply{Text: d.msgs.Plural(MsgBirthdayIn, days, map[string]any{"Name": name})}, nil
	}
}

// birthdays lists the contacts whose birthday is at most the given number of days away.
func (d *Dispatcher) birthdays(_ context.Context, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, fmt.Errorf("%w: days", model.ErrMissingArgument)
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		return Reply{}, fmt.Errorf("%w: %q", errNotANumber, args[0])
	}
	upcoming := d.book.UpcomingBirthdays(d.clock.Now(), days)
	if len(upcoming) == 0 {
		return Reply{Text: d.msgs.Plural(MsgNoUpcoming, days, nil)}, nil
	}
	lines := make([]string, len(upcoming))
	for i, u := range upcoming {
		data := map[string]any{"Name": u.Record.Name(), "Date": u.Record.Birthday()}
		if u.Days == 0 {
			lines[i] = d.msgs.Format(MsgUpcomingToday, data)
		} else {
			lines[i] = d.msgs.Plural(MsgUpcomingIn, u.Days, data)
		}
	}
	return Reply{Text: strings.Join(lines, "\n")}, nil
}

// search finds contacts by part of their name and phone numbers by part of their digits.
func (d *Dispatcher) search(_ context.Context, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, fmt.Errorf("%w: text", model.ErrMissingArgument)
	}
	fragment := strings.Join(args, " ")
	var lines []string
	for _, r := range d.book.FindByNameSubstring(fragment) {
		lines = append(lines, r.String())
	}
	if digits := normalizePhone(fragment); digits != "" {
		for _, m := range d.book.FindByPhoneSubstring(digits) {
			lines = append(lines, d.msgs.Format(MsgPhoneMatch, map[string]any{"Name": m.Name, "Phone": m.Phone}))
		}
	}
	if len(lines) == 0 {
		return Reply{Text: d.msgs.Format(MsgNoMatches, map[string]any{"Fragment": fragment})}, nil
	}
	return Reply{Text: strings.Join(lines, "\n")}, nil
}

// show prints every record with "show all", or pages of N records with "show N". A plain "show"
// uses the configured page size.
func (d *Dispatcher) show(_ context.Context, args []string) (Reply, error) {
	if d.book.Len() == 0 {
		return Reply{Text: d.msgs.Get(MsgEmptyBook)}, nil
	}
	size := d.pageSize
	if len(args) > 0 && !strings.EqualFold(args[0], "all") {
		var err error
		if size, err = positive(args[0]); err != nil {
			return Reply{}, err
		}
	} else if len(args) > 0 {
		size = 0
	}
	if size < 1 {
		var b strings.Builder
		for page := range d.book.Paginate(0) {
			b.WriteString(page)
		}
		return Reply{Text: strings.TrimSuffix(b.String(), "\n")}, nil
	}
	var pages []string
	for page := range d.book.Paginate(size) {
		pages = append(pages, strings.TrimSuffix(page, "\n"))
	}
	return Reply{Pages: pages}, nil
}

// export writes the birthday calendar to the given file.
func (d *Dispatcher) export(ctx context.Context, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, fmt.Errorf("%w: file", model.ErrMissingArgument)
	}
	path := strings.Join(args, " ")
	f, err := d.fs.Create(path)
	if err != nil {
		return Reply{}, fmt.Errorf("create %s: %w", path, err)
	}
	summary := func(name string) string {
		return d.msgs.Format(MsgEventSummary, map[string]any{"Name": name})
	}
	if err := calendar.WriteWithSummary(f, d.book, d.clock.Now(), summary); err != nil {
		_ = f.Close()
		return Reply{}, err
	}
	if err := f.Close(); err != nil {
		return Reply{}, fmt.Errorf("close %s: %w", path, err)
	}
	d.log.InfoContext(ctx, "calendar exported", logging.KeyPath, path)
	return Reply{Text: d.msgs.Format(MsgExported, map[string]any{"Path": path})}, nil
}
