package model

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WeekdayList is a set of weekday names persisted as a comma-separated
// string. Days are advisory metadata; nothing ties them to actual
// appointment dates.
type WeekdayList []string

var validWeekdays = map[string]bool{
	"saturday": true, "sunday": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true,
}

func (w WeekdayList) Validate() error {
	for _, day := range w {
		if !validWeekdays[strings.ToLower(day)] {
			return fmt.Errorf("invalid weekday: %s", day)
		}
	}
	return nil
}

func (w WeekdayList) Value() (driver.Value, error) {
	if len(w) == 0 {
		return "", nil
	}
	return strings.ToLower(strings.Join(w, ",")), nil
}

func (w *WeekdayList) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into WeekdayList", src)
	}
	if s == "" {
		*w = nil
		return nil
	}
	*w = strings.Split(s, ",")
	return nil
}

// Chamber is a doctor's practice location. Each chamber declares its own
// days, timing, fee and serial availability independent of the others.
type Chamber struct {
	Base
	DoctorID        uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	Name            string      `db:"name" json:"name"`
	Address         string      `db:"address" json:"address"`
	Phone           string      `db:"phone" json:"phone,omitempty"`
	Days            WeekdayList `db:"days" json:"days"`
	Timing          string      `db:"timing" json:"timing,omitempty"`
	Fee             int         `db:"fee" json:"fee"`
	SerialAvailable bool        `db:"serial_available" json:"serial_available"`
}

type CreateChamberRequest struct {
	Name            string      `json:"name" binding:"required"`
	Address         string      `json:"address" binding:"required"`
	Phone           string      `json:"phone"`
	Days            WeekdayList `json:"days" binding:"omitempty,weekdays"`
	Timing          string      `json:"timing"`
	Fee             int         `json:"fee" binding:"min=0"`
	SerialAvailable bool        `json:"serial_available"`
}

type UpdateChamberRequest struct {
	Name            *string      `json:"name"`
	Address         *string      `json:"address"`
	Phone           *string      `json:"phone"`
	Days            *WeekdayList `json:"days" binding:"omitempty"`
	Timing          *string      `json:"timing"`
	Fee             *int         `json:"fee"`
	SerialAvailable *bool        `json:"serial_available"`
}
