// Package convert renders numbers, amounts, periods and dates as Spanish
// words for legal documents, and normalizes free text for folder names and
// search.
package convert

import (
	"errors"
	"fmt"
	"strings"
)

// MaxNumber is the largest magnitude NumberToWords spells out.
const MaxNumber = 999_999_999_999

// Conversion errors.
var (
	ErrOutOfRange    = errors.New("number out of range")
	ErrNegative      = errors.New("negative amount")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidPeriod = errors.New("invalid period")
)

var units = [...]string{
	"cero", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
	"diez", "once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete",
	"dieciocho", "diecinueve", "veinte", "veintiuno", "veintidós", "veintitrés",
	"veinticuatro", "veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve",
}

var tens = [...]string{
	"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa",
}

var hundreds = [...]string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
	"seiscientos", "setecientos", "ochocientos", "novecientos",
}

// NumberToWords spells n as Spanish cardinal words, e.g. 1521 is
// "mil quinientos veintiuno". Negative numbers are prefixed with "menos".
func NumberToWords(n int64) (string, error) {
	if n < -MaxNumber || n > MaxNumber {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	if n == 0 {
		return units[0], nil
	}
	if n < 0 {
		return "menos " + spell(-n, false), nil
	}
	return spell(n, false), nil
}

// spell writes a positive n. With apocope set, a trailing "uno" becomes
// "un" (and "veintiuno" becomes "veintiún") as it does before a noun.
func spell(n int64, apocope bool) string {
	switch {
	case n >= 1_000_000:
		return spellMillions(n, apocope)
	case n >= 1000:
		return spellThousands(n, apocope)
	default:
		return spellHundreds(int(n), apocope)
	}
}

func spellMillions(n int64, apocope bool) string {
	m, rest := n/1_000_000, n%1_000_000
	var head string
	if m == 1 {
		head = "un millón"
	} else {
		head = spell(m, true) + " millones"
	}
	if rest == 0 {
		return head
	}
	return head + " " + spell(rest, apocope)
}

func spellThousands(n int64, apocope bool) string {
	th, rest := n/1000, int(n%1000)
	var head string
	if th == 1 {
		head = "mil"
	} else {
		head = spellHundreds(int(th), true) + " mil"
	}
	if rest == 0 {
		return head
	}
	return head + " " + spellHundreds(rest, apocope)
}

func spellHundreds(n int, apocope bool) string {
	if n == 100 {
		return "cien"
	}
	h, rest := n/100, n%100
	var parts []string
	if h > 0 {
		parts = append(parts, hundreds[h])
	}
	if rest > 0 {
		parts = append(parts, spellTens(rest, apocope))
	}
	return strings.Join(parts, " ")
}

func spellTens(n int, apocope bool) string {
	if n < 30 {
		w := units[n]
		if apocope {
			switch n {
			case 1:
				w = "un"
			case 21:
				w = "veintiún"
			}
		}
		return w
	}
	t, u := n/10, n%10
	if u == 0 {
		return tens[t]
	}
	unit := units[u]
	if apocope && u == 1 {
		unit = "un"
	}
	return tens[t] + " y " + unit
}

// feminine turns a trailing "uno" into "una" for feminine nouns such as
// "semana".
func feminine(words string) string {
	if strings.HasSuffix(words, "uno") {
		return strings.TrimSuffix(words, "uno") + "una"
	}
	return words
}
