package model

// Contact is the data structure for a person that we know, as it is exchanged with storage
// backends and HTTP clients. Only the name is mandatory. The birthday uses the YYYY-MM-DD format.
type Contact struct {
	Name     string   `json:"name"`
	Phones   []string `json:"phones"`
	Birthday *string  `json:"birthday,omitempty"`
}

// PhoneUpdate is the request body for replacing or adding a single phone number.
type PhoneUpdate struct {
	Phone string `json:"phone"`
}

// BirthdayUpdate is the request body for setting a birthday. An empty value clears it.
type BirthdayUpdate struct {
	Birthday string `json:"birthday"`
}

// DaysToBirthday is the response body of a days-until-birthday query. Days is absent when the
// contact has no birthday.
type DaysToBirthday struct {
	Name string `json:"name"`
	Days *int   `json:"days,omitempty"`
}

// PhoneMatch is one hit of a phone number search.
type PhoneMatch struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
