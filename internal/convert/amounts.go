package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency names the unit an amount is expressed in.
type Currency struct {
	Singular string // "peso"
	Plural   string // "pesos"
	Suffix   string // "M.N."
	Symbol   string // "$"
}

// DefaultCurrency is the Mexican peso.
var DefaultCurrency = Currency{Singular: "peso", Plural: "pesos", Suffix: "M.N.", Symbol: "$"}

// AmountToWords spells an amount given in cents the way legal documents
// write it: "MIL QUINIENTOS PESOS 50/100 M.N.".
func AmountToWords(cents int64, cur Currency) (string, error) {
	if cents < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegative, cents)
	}
	whole, frac := cents/100, cents%100
	if whole > MaxNumber {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, whole)
	}

	var b strings.Builder
	switch {
	case whole == 0:
		b.WriteString("cero " + cur.Plural)
	case whole == 1:
		b.WriteString("un " + cur.Singular)
	default:
		b.WriteString(spell(whole, true))
		if whole%1_000_000 == 0 {
			b.WriteString(" de")
		}
		b.WriteString(" " + cur.Plural)
	}
	fmt.Fprintf(&b, " %02d/100", frac)
	if cur.Suffix != "" {
		b.WriteString(" " + cur.Suffix)
	}
	return strings.ToUpper(b.String()), nil
}

// FormatMoney formats cents with thousands separators: 150050 is
// "$1,500.50".
func FormatMoney(cents int64, cur Currency) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	digits := strconv.FormatInt(cents/100, 10)
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, cur.Symbol, grouped.String(), cents%100)
}

// ParseAmount reads "1500", "1,500.5" or "$1,500.50" into cents.
func ParseAmount(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(clean, "-") {
		return 0, fmt.Errorf("%w: %q", ErrNegative, s)
	}
	whole, frac, hasFrac := strings.Cut(clean, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if w > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	var f int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q has more than two decimals", ErrInvalidAmount, s)
		}
		if strings.Trim(frac, "0123456789") != "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		if f, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	return w*100 + f, nil
}

// PeriodToWords spells a number of days as the largest whole unit that
// divides it: 7 is "una semana", 15 "quince días", 60 "dos meses", 365
// "un año". Months count as 30 days and years as 365.
func PeriodToWords(days int) (string, error) {
	if days <= 0 {
		return "", fmt.Errorf("%w: %d days", ErrInvalidPeriod, days)
	}
	switch {
	case days%365 == 0:
		return countNoun(days/365, "año", "años", false), nil
	case days%30 == 0:
		return countNoun(days/30, "mes", "meses", false), nil
	case days%7 == 0 && days <= 28:
		return countNoun(days/7, "semana", "semanas", true), nil
	default:
		return countNoun(days, "día", "días", false), nil
	}
}

func countNoun(n int, singular, plural string, fem bool) string {
	if n == 1 {
		if fem {
			return "una " + singular
		}
		return "un " + singular
	}
	words := spell(int64(n), !fem)
	if fem {
		words = feminine(words)
	}
	return words + " " + plural
}
