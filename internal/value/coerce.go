// Package value holds the runtime values produced by formula evaluation and
// the coercion rules between them.
//
// Values are plain Go values:
//
//   - nil: an empty cell
//   - float64: numbers
//   - string: text
//   - bool: booleans
//   - civil.Date, civil.Time, civil.DateTime: temporal values
//   - Error: spreadsheet error values
//   - []any: the cells of a range, in range order
//
// Functions and lambdas are values too; they are defined by package expr.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// serialEpoch is day zero of the 1900 date system as used by spreadsheets.
var serialEpoch = civil.Date{Year: 1899, Month: time.December, Day: 30}

// DateSerial converts a date to its day number.
func DateSerial(d civil.Date) float64 {
	return float64(d.DaysSince(serialEpoch))
}

// TimeFraction converts a time of day to a fraction of a day.
func TimeFraction(t civil.Time) float64 {
	ns := time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second + time.Duration(t.Nanosecond)
	return float64(ns) / float64(24*time.Hour)
}

// ToNumber coerces v to a number. Empty is zero; text must parse; anything
// else yields a #VALUE! error.
func ToNumber(v any) (float64, *Error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			e := NewError(ErrorValue, "text is not a number: "+x)
			return 0, &e
		}
		return f, nil
	case civil.Date:
		return DateSerial(x), nil
	case civil.Time:
		return TimeFraction(x), nil
	case civil.DateTime:
		return DateSerial(x.Date) + TimeFraction(x.Time), nil
	case Error:
		return 0, &x
	}
	e := NewError(ErrorValue, "value is not a number")
	return 0, &e
}

// ToBool coerces v to a boolean.
func ToBool(v any) (bool, *Error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "TRUE":
			return true, nil
		case "FALSE", "":
			return false, nil
		}
		e := NewError(ErrorValue, "text is not a boolean: "+x)
		return false, &e
	case Error:
		return false, &x
	}
	f, err := ToNumber(v)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

// ToText renders v as text.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case civil.DateTime:
		return x.Date.String() + " " + x.Time.String()
	case Error:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = ToText(e)
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

// Flatten expands nested range lists into a single slice.
func Flatten(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if list, ok := v.([]any); ok {
			out = append(out, Flatten(list)...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// rank orders value kinds when comparing mixed types: numbers < text < booleans.
func rank(v any) int {
	switch v.(type) {
	case string:
		return 1
	case bool:
		return 2
	}
	return 0
}

// Compare orders a and b. An empty operand takes the zero value of the other
// operand's kind. Text compares case-insensitively.
func Compare(a, b any) (int, *Error) {
	if e, ok := a.(Error); ok {
		return 0, &e
	}
	if e, ok := b.(Error); ok {
		return 0, &e
	}
	a, b = emptyAs(a, b), emptyAs(b, a)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb), nil
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(strings.ToUpper(x), strings.ToUpper(b.(string))), nil
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0, nil
		case !x:
			return -1, nil
		}
		return 1, nil
	}
	fa, err := ToNumber(a)
	if err != nil {
		return 0, err
	}
	fb, err := ToNumber(b)
	if err != nil {
		return 0, err
	}
	switch {
	case fa < fb:
		return -1, nil
	case fa > fb:
		return 1, nil
	case math.IsNaN(fa) || math.IsNaN(fb):
		e := NewError(ErrorNum, "NaN comparison")
		return 0, &e
	}
	return 0, nil
}

func emptyAs(v, other any) any {
	if v != nil {
		return v
	}
	switch other.(type) {
	case string:
		return ""
	case bool:
		return false
	}
	return 0.0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// FromGo converts a decoded configuration value (TOML integers, floats,
// strings, booleans, dates and arrays) into a formula value.
func FromGo(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64, string, bool:
		return v, nil
	case time.Time:
		dt := civil.DateTimeOf(v)
		if dt.Time == (civil.Time{}) {
			return dt.Date, nil
		}
		return dt, nil
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			c, err := FromGo(x)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", raw)
}
