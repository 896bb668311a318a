package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var numericLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
}

var longDate = regexp.MustCompile(`^(\d{1,2})\s+de\s+(\p{L}+)\s+(?:de|del)\s+(\d{4})$`)

// ParseDate reads a calendar date written as 2024-03-05, 05/03/2024,
// 5/3/2024, 05-03-2024 or "5 de marzo de 2024". Day precedes month in
// every form but the ISO one. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	m := longDate.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	month := monthNumber(m[2])
	if month == 0 {
		return time.Time{}, fmt.Errorf("%w: unknown month %q", ErrInvalidDate, m[2])
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func monthNumber(name string) int {
	if name == "setiembre" {
		return 9
	}
	for i, n := range monthNames {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// DateOnly drops the clock part of t, keeping its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLong writes t as "5 de marzo de 2024".
func DateLong(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// DateToWords writes t fully in words: "cinco de marzo de dos mil
// veinticuatro". The first day of a month is "primero".
func DateToWords(t time.Time) string {
	day := "primero"
	if t.Day() > 1 {
		day = spell(int64(t.Day()), false)
	}
	return fmt.Sprintf("%s de %s de %s", day, monthNames[t.Month()-1], spell(int64(t.Year()), false))
}
