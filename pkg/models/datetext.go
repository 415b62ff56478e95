package models

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// DateText is a user-entered date kept as text. SQLite drivers hand back
// DATETIME columns as time.Time when the text parses, so Scan turns those
// back into the short form a date input produces.
type DateText string

func NewDateText(s *string) *DateText {
	if s == nil {
		return nil
	}
	d := DateText(*s)
	return &d
}

func (d *DateText) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case string:
		*d = DateText(v)
	case []byte:
		*d = DateText(v)
	case time.Time:
		h, m, s := v.Clock()
		if h == 0 && m == 0 && s == 0 && v.Nanosecond() == 0 {
			*d = DateText(v.Format(dateLayout))
		} else {
			*d = DateText(v.Format(timestampLayout))
		}
	default:
		return errors.Errorf("can't scan %T into DateText", src)
	}
	return nil
}

func (d DateText) Value() (driver.Value, error) {
	return string(d), nil
}
