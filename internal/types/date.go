package types

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used for every date cell in the exported tables.
const DateFormat = "2006-01-02"

const readDateFormat = "2006-1-2"

// Date is a calendar day with no time-of-day component.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date, so NewDate(2024, 1, 32) is 2024-02-01.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current local date.
func Today() Date { return NewDate(time.Now().Date()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int           { return d.y }
func (d Date) Month() time.Month   { return d.m }
func (d Date) Day() int            { return d.d }
func (d Date) IsZero() bool        { return d == Date{} }
func (d Date) Before(x Date) bool  { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool   { return d.time().After(x.time()) }
func (d Date) Add(days int) Date   { return NewDate(d.y, d.m, d.d+days) }
func (d Date) String() string      { return d.time().Format(DateFormat) }
func (d Date) Equal(x Date) bool   { return d == x }
func (d Date) AddYears(n int) Date { return NewDate(d.y+n, d.m, d.d) }

// Sub returns the number of days from x to d.
func (d Date) Sub(x Date) int {
	return int(d.time().Sub(x.time()).Hours() / 24)
}

// ParseDate reads a date, accepting single-digit months and days.
func ParseDate(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// NullDate is a Date that may be absent. The zero value is absent.
type NullDate struct {
	Date  Date
	Valid bool
}

// Some returns a present NullDate.
func Some(d Date) NullDate { return NullDate{Date: d, Valid: true} }

// String returns the date, or "" when absent.
func (n NullDate) String() string {
	if !n.Valid {
		return ""
	}
	return n.Date.String()
}

// ParseNullDate treats an empty cell as absent.
func ParseNullDate(str string) (NullDate, error) {
	if str == "" {
		return NullDate{}, nil
	}
	d, err := ParseDate(str)
	if err != nil {
		return NullDate{}, err
	}
	return Some(d), nil
}
