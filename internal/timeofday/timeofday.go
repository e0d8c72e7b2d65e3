// Package timeofday converts between the 12-hour strings patients type and
// the 24-hour "HH:MM" strings stored on appointments and fed to the calendar.
//
// To24Hour and AddMinutes are total: they never panic and never return an
// error, and their output on malformed input is unspecified. Callers that need
// validation use Parse, which is strict.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultEventDuration is the length in minutes given to a calendar event
// derived from an appointment start time.
const DefaultEventDuration = 30

const minutesPerDay = 24 * 60

// ErrInvalid is returned by Parse for input that is neither "h:mm AM/PM" nor "HH:MM".
var ErrInvalid = errors.New("timeofday: invalid time")

// To24Hour converts "h:mm AM" / "hh:mm pm" into "HH:MM".
//
// "12" maps to "00" in the morning and stays "12" otherwise; any other PM hour
// gains 12. Minutes pass through untouched and default to "00".
func To24Hour(time12h string) string {
	parts := strings.SplitN(time12h, " ", 3)
	clock := parts[0]
	meridiem := ""
	if len(parts) > 1 {
		meridiem = strings.ToUpper(parts[1])
	}

	clockParts := strings.Split(clock, ":")
	hours := clockParts[0]
	minutes := ""
	if len(clockParts) > 1 {
		minutes = clockParts[1]
	}

	if hours == "12" {
		if meridiem == "AM" {
			hours = "00"
		}
	} else if meridiem == "PM" {
		if h, err := strconv.Atoi(hours); err == nil {
			hours = strconv.Itoa(h + 12)
		}
	}

	if minutes == "" {
		minutes = "00"
	}
	return padLeft(hours, 2) + ":" + minutes
}

// AddMinutes offsets an "HH:MM" time by minutes and wraps at midnight.
// No day rollover is reported; use WrapsMidnight to detect it.
func AddMinutes(time24h string, minutes int) string {
	total := clockMinutes(time24h) + minutes
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// EventEnd returns the end of an event starting at time24h using the
// default duration.
func EventEnd(time24h string) string {
	return AddMinutes(time24h, DefaultEventDuration)
}

// WrapsMidnight reports whether AddMinutes(time24h, minutes) leaves the
// nominal day.
func WrapsMidnight(time24h string, minutes int) bool {
	total := clockMinutes(time24h) + minutes
	return total >= minutesPerDay || total < 0
}

// TimeOfDay is an hour and minute within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Parse accepts "h:mm AM/PM" (case-insensitive meridiem) or "HH:MM".
func Parse(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	clock, meridiem, hasMeridiem := strings.Cut(s, " ")
	meridiem = strings.ToUpper(strings.TrimSpace(meridiem))

	hStr, mStr, ok := strings.Cut(clock, ":")
	if !ok || len(mStr) != 2 || hStr == "" || len(hStr) > 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	h, err := strconv.Atoi(hStr)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	m, err := strconv.Atoi(mStr)
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	if !hasMeridiem {
		if h < 0 || h > 23 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return TimeOfDay{Hour: h, Minute: m}, nil
	}

	if h < 1 || h > 12 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	switch meridiem {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Add returns t shifted by minutes, wrapping within the day.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	total := t.Hour*60 + t.Minute + minutes
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// WrapsMidnight reports whether t.Add(minutes) crosses into another day.
func (t TimeOfDay) WrapsMidnight(minutes int) bool {
	total := t.Hour*60 + t.Minute + minutes
	return total >= minutesPerDay || total < 0
}

// String formats t as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12Hour formats t as "h:mm AM", the form stored on appointments.
func (t TimeOfDay) Format12Hour() string {
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, suffix)
}

func clockMinutes(time24h string) int {
	hStr, mStr, _ := strings.Cut(time24h, ":")
	h, _ := strconv.Atoi(strings.TrimSpace(hStr))
	m, _ := strconv.Atoi(strings.TrimSpace(mStr))
	return h*60 + m
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
