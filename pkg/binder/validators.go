package binder

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// dateValidator accepts a calendar date, a SQLite style timestamp or an
// RFC 3339 timestamp. The empty string passes so a date can be cleared.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
