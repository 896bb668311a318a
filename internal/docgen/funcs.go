package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/mesh-intelligence/docket/internal/convert"
)

// funcMap returns the helpers available inside templates:
//
//	upper      upper-cases a value
//	words      spells a number ("mil quinientos")
//	amount     spells cents as currency ("MIL PESOS 00/100 M.N.")
//	money      formats cents ("$1,000.00")
//	date       long date ("5 de marzo de 2024")
//	datewords  date in words ("cinco de marzo de dos mil veinticuatro")
//	period     days as a period ("quince días")
//
// The final output of every action is XML-escaped by xml.
func funcMap(cur convert.Currency) template.FuncMap {
	return template.FuncMap{
		"xml":   xmlText,
		"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
		"words": func(v any) (string, error) {
			n, err := toInt64(v)
			if err != nil {
				return "", err
			}
			return convert.NumberToWords(n)
		},
		"amount": func(v any) (string, error) {
			n, err := toInt64(v)
			if err != nil {
				return "", err
			}
			return convert.AmountToWords(n, cur)
		},
		"money": func(v any) (string, error) {
			n, err := toInt64(v)
			if err != nil {
				return "", err
			}
			return convert.FormatMoney(n, cur), nil
		},
		"date": func(v any) (string, error) {
			t, err := toTime(v)
			if err != nil {
				return "", err
			}
			return convert.DateLong(t), nil
		},
		"datewords": func(v any) (string, error) {
			t, err := toTime(v)
			if err != nil {
				return "", err
			}
			return convert.DateToWords(t), nil
		},
		"period": func(v any) (string, error) {
			n, err := toInt64(v)
			if err != nil {
				return "", err
			}
			return convert.PeriodToWords(int(n))
		},
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("not a number: %v (%T)", v, v)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	case string:
		return convert.ParseDate(t)
	}
	return time.Time{}, fmt.Errorf("not a date: %v (%T)", v, v)
}
