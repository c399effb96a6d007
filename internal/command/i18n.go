package command

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used for messages missing in the requested language.
const DefaultLanguage = "en"

// Message IDs of the locale files.
const (
	MsgHello              = "hello"
	MsgHelp               = "help"
	MsgGoodBye            = "good_bye"
	MsgFarewell           = "farewell"
	MsgPrompt             = "prompt"
	MsgPagePrompt         = "page_prompt"
	MsgUnknownCommand     = "unknown_command"
	MsgContactSaved       = "contact_saved"
	MsgPhoneChanged       = "phone_changed"
	MsgPhoneFound         = "phone_found"
	MsgPhonesOf           = "phones_of"
	MsgNoPhones           = "no_phones"
	MsgPhoneRemoved       = "phone_removed"
	MsgContactDeleted     = "contact_deleted"
	MsgBirthdayToday      = "birthday_today"
	MsgBirthdayNotDefined = "birthday_not_defined"
	MsgBirthdayIn         = "birthday_in"
	MsgUpcomingToday      = "upcoming_today"
	MsgUpcomingIn         = "upcoming_in"
	MsgNoUpcoming         = "no_upcoming"
	MsgPhoneMatch         = "phone_match"
	MsgNoMatches          = "no_matches"
	MsgEmptyBook          = "empty_book"
	MsgExported           = "exported"
	MsgEventSummary       = "event_summary"

	MsgErrUnknownPerson  = "err_unknown_person"
	MsgErrPhoneFormat    = "err_phone_format"
	MsgErrInsufficient   = "err_insufficient"
	MsgErrBirthdayFormat = "err_birthday_format"
	MsgErrPhoneNotFound  = "err_phone_not_found"
	MsgErrNotANumber     = "err_not_a_number"
	MsgErrInternal       = "err_internal"
)

// NewBundle loads every embedded locale file named active.<lang>.json.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("load locale %s: %w", name, err)
		}
	}
	return bundle, nil
}

// Languages returns the tags of all languages in bundle.
func Languages(bundle *i18n.Bundle) []string {
	tags := bundle.LanguageTags()
	langs := make([]string, len(tags))
	for i, tag := range tags {
		langs[i] = tag.String()
	}
	return langs
}

// Messages translates message IDs for one language. Messages missing in that language fall back
// to English, and unknown IDs are returned as they are.
type Messages struct {
	localizer *i18n.Localizer
}

// NewMessages returns the messages of lang, which may also be an Accept-Language style list.
func NewMessages(bundle *i18n.Bundle, lang string) *Messages {
	return &Messages{localizer: i18n.NewLocalizer(bundle, lang, DefaultLanguage)}
}

// Get translates id.
func (m *Messages) Get(id string) string {
	return m.localize(&i18n.LocalizeConfig{MessageID: id})
}

// Format translates id and fills in data.
func (m *Messages) Format(id string, data map[string]any) string {
	return m.localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// Plural translates id for count, which is also available to the template as .Count.
func (m *Messages) Plural(id string, count int, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = count
	return m.localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data, PluralCount: count})
}

func (m *Messages) localize(cfg *i18n.LocalizeConfig) string {
	// A message found only in the default language comes back together with an error.
	msg, err := m.localizer.Localize(cfg)
	if err != nil && msg == "" {
		return cfg.MessageID
	}
	return msg
}
