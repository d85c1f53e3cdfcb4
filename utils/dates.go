package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2006/01/02",
	time.RFC3339,
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"15.04",
}

// ParseSheetDate reads a spreadsheet date: ISO, day-first Spanish formats or an
// Excel serial number. The result is midnight in loc.
func ParseSheetDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %q: %w", value, err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// ParseSheetTime reads a time of day as an offset from midnight. Excel stores
// times as a fraction of a day.
func ParseSheetTime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty time")
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f < 1 {
		return time.Duration(math.Round(f*24*60)) * time.Minute, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", value)
}

// EventWindow combines a date with start and end times. An end at or before
// the start means the event runs past midnight.
func EventWindow(date time.Time, start, end time.Duration) (time.Time, time.Time) {
	from := date.Add(start)
	to := date.Add(end)
	if !to.After(from) {
		to = to.Add(24 * time.Hour)
	}
	return from, to
}

// ParseSheetNumber reads an amount written with either decimal comma or
// decimal point, with optional thousands separators and currency symbols.
// A lone separator followed by exactly three digits is a thousands separator
// ("2.450" and "2,450" are both 2450) unless the integer part is zero.
func ParseSheetNumber(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	v = strings.NewReplacer("€", "", "$", "", "EUR", "", " ", "", "\u00a0", "").Replace(v)
	if v == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	lastDot := strings.LastIndex(v, ".")
	lastComma := strings.LastIndex(v, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			v = strings.ReplaceAll(v, ".", "")
			v = strings.Replace(v, ",", ".", 1)
		} else {
			v = strings.ReplaceAll(v, ",", "")
		}
	case lastComma >= 0:
		if thousandsSeparated(v, ",") {
			v = strings.ReplaceAll(v, ",", "")
		} else {
			v = strings.Replace(v, ",", ".", 1)
		}
	case lastDot >= 0:
		if thousandsSeparated(v, ".") {
			v = strings.ReplaceAll(v, ".", "")
		}
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", value)
	}
	return d, nil
}

// thousandsSeparated reports whether sep, the only separator kind in v, groups
// thousands rather than marking decimals.
func thousandsSeparated(v, sep string) bool {
	if strings.Count(v, sep) > 1 {
		return true
	}
	i := strings.Index(v, sep)
	whole := strings.TrimLeft(v[:i], "+-")
	return len(v)-i-1 == 3 && whole != "" && strings.Trim(whole, "0") != ""
}

// ParseSheetInt reads a whole non-negative number
func ParseSheetInt(value string) (int, error) {
	d, err := ParseSheetNumber(value)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) || d.IsNegative() {
		return 0, fmt.Errorf("invalid count %q", value)
	}
	return int(d.IntPart()), nil
}

// SplitList splits a comma, semicolon or slash separated cell
func SplitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
