package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateFormat is the layout of the date column, fixed for a whole file.
type DateFormat string

const (
	DayMonthYear DateFormat = "DD/MM/YYYY"
	MonthDayYear DateFormat = "MM/DD/YYYY"
	ISODate      DateFormat = "YYYY-MM-DD"
)

// DateFormats lists the supported formats.
var DateFormats = []DateFormat{DayMonthYear, MonthDayYear, ISODate}

// ErrUnknownDateFormat is returned for a format outside DateFormats.
var ErrUnknownDateFormat = errors.New("unknown date format")

// ParseDateFormat validates a user-supplied format name.
func ParseDateFormat(s string) (DateFormat, error) {
	for _, f := range DateFormats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDateFormat, s)
}

// ParseDate parses cell according to format. The format is never guessed:
// "13/01/2025" under MM/DD/YYYY is an error, not January 13th.
func ParseDate(cell string, format DateFormat) (civil.Date, error) {
	var sep string
	var yi, mi, di int
	switch format {
	case DayMonthYear:
		sep, di, mi, yi = "/", 0, 1, 2
	case MonthDayYear:
		sep, mi, di, yi = "/", 0, 1, 2
	case ISODate:
		sep, yi, mi, di = "-", 0, 1, 2
	default:
		return civil.Date{}, fmt.Errorf("%w: %q", ErrUnknownDateFormat, format)
	}

	parts := strings.Split(strings.TrimSpace(cell), sep)
	if len(parts) != 3 {
		return civil.Date{}, fmt.Errorf("date %q does not match %s", cell, format)
	}
	if len(parts[yi]) != 4 {
		return civil.Date{}, fmt.Errorf("date %q: year must have 4 digits", cell)
	}

	year, err := datePart(parts[yi], 1, 9999)
	if err != nil {
		return civil.Date{}, fmt.Errorf("date %q: year: %w", cell, err)
	}
	month, err := datePart(parts[mi], 1, 12)
	if err != nil {
		return civil.Date{}, fmt.Errorf("date %q: month: %w", cell, err)
	}
	day, err := datePart(parts[di], 1, 31)
	if err != nil {
		return civil.Date{}, fmt.Errorf("date %q: day: %w", cell, err)
	}

	d := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return civil.Date{}, fmt.Errorf("date %q is not a calendar date", cell)
	}
	return d, nil
}

func datePart(s string, lo, hi int) (int, error) {
	if s == "" || len(s) > 4 {
		return 0, fmt.Errorf("bad value %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("bad value %q", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range %d-%d", n, lo, hi)
	}
	return n, nil
}

// FormatDate renders d in format.
func FormatDate(d civil.Date, format DateFormat) string {
	switch format {
	case DayMonthYear:
		return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
	case MonthDayYear:
		return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
	default:
		return d.String()
	}
}
