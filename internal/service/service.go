package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/phonebook/internal/calendar"
	"gitlab.com/dirk.krummacker/phonebook/internal/clock"
	"gitlab.com/dirk.krummacker/phonebook/internal/config"
	"gitlab.com/dirk.krummacker/phonebook/internal/converter"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
	"gitlab.com/dirk.krummacker/phonebook/internal/storage"
	wire "gitlab.com/dirk.krummacker/phonebook/pkg/model"
)

// defaultUpcomingDays is used by /birthdays without a 'days' URL parameter.
const defaultUpcomingDays = 7

// mu guards book. The address book itself is not safe for concurrent use.
var mu sync.RWMutex

// book is the address book served by the API.
var book *model.AddressBook

// store persists the book after changes if autosave is on.
var store storage.Store

// autosave tells whether every change is written to the store at once.
var autosave bool

// clk tells the handlers what day it is.
var clk clock.Clock = clock.Real{}

// logger is used by the handlers and the middleware.
var logger = slog.Default()

// SetupPhonebook hands the address book and its store to the service. The store can be a real
// store for production use or nil within unit tests, in which case nothing is saved.
func SetupPhonebook(b *model.AddressBook, s storage.Store, save bool, c clock.Clock, l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	book = b
	store = s
	autosave = save
	clk = c
	logger = l.With(logging.KeyComponent, logging.CompService)
}

// SaveBook writes the current book to the store.
func SaveBook(ctx context.Context) error {
	mu.RLock()
	defer mu.RUnlock()
	if store == nil {
		return nil
	}
	return store.Save(ctx, book)
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(cfg *config.ConfigServer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())
	if cfg.GinLogging {
		router.Use(requestLogger())
	} else {
		logger.Info("turning off HTTP request logging")
	}
	if cfg.RateLimitRPS > 0 {
		router.Use(rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	router.GET("/contacts", findContacts)
	router.POST("/contacts", createContact)
	router.GET("/contacts/:name", findContactByName)
	router.DELETE("/contacts/:name", deleteContactByName)
	router.POST("/contacts/:name/phones", addPhone)
	router.PUT("/contacts/:name/phones/:phone", editPhone)
	router.DELETE("/contacts/:name/phones/:phone", removePhone)
	router.GET("/contacts/:name/birthday", daysToBirthday)
	router.PUT("/contacts/:name/birthday", setBirthday)
	router.GET("/phones", findPhones)
	router.GET("/birthdays", upcomingBirthdays)
	router.GET("/birthdays.ics", birthdayCalendar)
	return router
}

// abortWithError maps an error of the address book to an HTTP status and message.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	case errors.Is(err, model.ErrPhoneNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "phone not found"})
	case errors.Is(err, model.ErrInvalidPhone),
		errors.Is(err, model.ErrInvalidBirthday),
		errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrMissingArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			logging.KeyRoute, c.FullPath(),
			logging.KeyError, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// changed saves the book if autosave is on. The caller holds the write lock. A failed save is
// logged only; the book is saved again on shutdown.
func changed(c *gin.Context) {
	if !autosave || store == nil {
		return
	}
	if err := store.Save(c.Request.Context(), book); err != nil {
		logger.ErrorContext(c.Request.Context(), "autosave failed", logging.KeyError, err)
	}
}

// findContacts responds with a list of contacts as JSON.
//
// The URL parameter 'name' keeps the contacts whose name contains the given text; the URL
// parameter 'phone' keeps the contacts with at least one phone number containing the given
// digits.
//
// The URL parameter 'limit' specifies how many contacts matching the search criteria are returned.
// The URL parameter 'offset' specifies how many items from the list of results are skipped in the
// beginning. Together with the 'limit' parameter, one can implement search result paging. Contacts
// are always listed in the order in which they were added.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?name=Krumm"
//	> curl "http://localhost:8080/contacts?phone=0815"
//	> curl "http://localhost:8080/contacts?limit=20&offset=60"
func findContacts(c *gin.Context) {
	limit, offset, success := parseLimitAndOffset(c)
	if !success {
		return
	}
	name := c.Query("name")
	phone := c.Query("phone")

	mu.RLock()
	var records []*model.Record
	if name != "" {
		records = book.FindByNameSubstring(name)
	} else {
		records = book.Values()
	}
	if phone != "" {
		records = withPhone(records, phone)
	}
	contacts := converter.RecordsToContacts(page(records, limit, offset))
	mu.RUnlock()

	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	} else {
		c.IndentedJSON(http.StatusOK, contacts)
	}
}

// withPhone keeps the records holding a phone that contains fragment. The caller holds the read
// lock.
func withPhone(records []*model.Record, fragment string) []*model.Record {
	owners := make(map[string]bool)
	for _, m := range book.FindByPhoneSubstring(fragment) {
		owners[m.Name] = true
	}
	var found []*model.Record
	for _, r := range records {
		if owners[r.Name()] {
			found = append(found, r)
		}
	}
	return found
}

// page applies offset and limit to records. A limit of 0 means no limit.
func page(records []*model.Record, limit, offset int) []*model.Record {
	if offset >= len(records) {
		return nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set.
func parseLimitAndOffset(c *gin.Context) (limit int, offset int, success bool) {
	if s := c.Query("limit"); s != "" {
		var err error
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return 0, 0, false
		}
	}
	if s := c.Query("offset"); s != "" {
		var err error
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return 0, 0, false
		}
	}
	return limit, offset, true
}

// createContact stores the contact specified in the request's JSON. A contact with the same name
// is replaced completely. It responds with the stored contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "phones": ["0815471100"], "birthday": "1969-03-02"}'
func createContact(c *gin.Context) {
	var newContact wire.Contact
	if err := c.BindJSON(&newContact); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	record, err := converter.ContactToRecord(newContact)
	if err != nil {
		abortWithError(c, err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	book.AddRecord(record)
	changed(c)
	c.IndentedJSON(http.StatusCreated, converter.RecordToContact(record))
}

// findContactByName locates the contact whose name matches the name parameter of the request URL
// exactly, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst"
func findContactByName(c *gin.Context) {
	mu.RLock()
	defer mu.RUnlock()
	record, err := book.Find(c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, converter.RecordToContact(record))
}

// deleteContactByName deletes the contact whose name matches the name parameter of the request
// URL. Deleting a contact that does not exist succeeds as well.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst" --request "DELETE"
func deleteContactByName(c *gin.Context) {
	mu.Lock()
	defer mu.Unlock()
	book.Delete(c.Param("name"))
	changed(c)
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// updateRecord runs update on the record named in the URL and responds with the changed contact.
func updateRecord(c *gin.Context, update func(r *model.Record) error) {
	mu.Lock()
	defer mu.Unlock()
	record, err := book.Find(c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := update(record); err != nil {
		abortWithError(c, err)
		return
	}
	changed(c)
	c.IndentedJSON(http.StatusOK, converter.RecordToContact(record))
}

// addPhone adds the phone number in the request's JSON to a contact. Adding a number the contact
// already has changes nothing.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst/phones" --request "POST" --header "Content-Type: application/json" --data '{"phone": "0815471101"}'
func addPhone(c *gin.Context) {
	var submitted wire.PhoneUpdate
	if err := c.BindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	updateRecord(c, func(r *model.Record) error {
		return r.AddPhone(submitted.Phone)
	})
}

// editPhone replaces the phone number in the request URL with the one in the request's JSON.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst/phones/0815471100" --request "PUT" --header "Content-Type: application/json" --data '{"phone": "0815471102"}'
func editPhone(c *gin.Context) {
	var submitted wire.PhoneUpdate
	if err := c.BindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	updateRecord(c, func(r *model.Record) error {
		return r.EditPhone(c.Param("phone"), submitted.Phone)
	})
}

// removePhone removes the phone number in the request URL from a contact.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst/phones/0815471100" --request "DELETE"
func removePhone(c *gin.Context) {
	updateRecord(c, func(r *model.Record) error {
		return r.RemovePhone(c.Param("phone"))
	})
}

// setBirthday sets or, with an empty value, clears the birthday of a contact.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst/birthday" --request "PUT" --header "Content-Type: application/json" --data '{"birthday": "1969-03-02"}'
func setBirthday(c *gin.Context) {
	var submitted wire.BirthdayUpdate
	if err := c.BindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	birthday, err := model.ParseBirthday(submitted.Birthday)
	if err != nil {
		abortWithError(c, err)
		return
	}
	updateRecord(c, func(r *model.Record) error {
		r.SetBirthday(birthday)
		return nil
	})
}

// daysToBirthday responds with the number of days until the contact's next birthday. The days are
// left out if the contact has no birthday.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/Hans%20Wurst/birthday"
func daysToBirthday(c *gin.Context) {
	mu.RLock()
	defer mu.RUnlock()
	record, err := book.Find(c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	response := wire.DaysToBirthday{Name: record.Name()}
	if days, ok := record.DaysToBirthday(clk.Now()); ok {
		response.Days = &days
	}
	c.IndentedJSON(http.StatusOK, response)
}

// findPhones responds with every phone number containing the digits of the 'fragment' URL
// parameter, together with the name of its contact.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/phones?fragment=0815"
func findPhones(c *gin.Context) {
	fragment := c.Query("fragment")
	if fragment == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing fragment parameter"})
		return
	}
	mu.RLock()
	matches := converter.PhoneMatchesToWire(book.FindByPhoneSubstring(fragment))
	mu.RUnlock()
	if len(matches) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "phone not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, matches)
}

// upcomingBirthdays responds with the contacts whose birthday is at most 'days' days away,
// nearest first. Without the URL parameter a week is used.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/birthdays?days=30"
func upcomingBirthdays(c *gin.Context) {
	days := defaultUpcomingDays
	if s := c.Query("days"); s != "" {
		var err error
		days, err = strconv.Atoi(s)
		if err != nil || days < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid days parameter"})
			return
		}
	}
	mu.RLock()
	upcoming := book.UpcomingBirthdays(clk.Now(), days)
	mu.RUnlock()

	response := make([]wire.DaysToBirthday, len(upcoming))
	for i, u := range upcoming {
		response[i] = wire.DaysToBirthday{Name: u.Record.Name(), Days: &u.Days}
	}
	c.IndentedJSON(http.StatusOK, response)
}

// birthdayCalendar responds with all birthdays as an iCalendar feed that calendar applications
// can subscribe to.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/birthdays.ics"
func birthdayCalendar(c *gin.Context) {
	var b strings.Builder
	mu.RLock()
	err := calendar.Write(&b, book, clk.Now())
	mu.RUnlock()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(b.String()))
}
