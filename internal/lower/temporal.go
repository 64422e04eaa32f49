package lower

import (
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"

	"sheetcalc/internal/token"
)

type temporal struct {
	year, month, day                  int
	hour, minute, second, millisecond int
	ampm                              int
	hasAmPm                           bool
	twoDigitYear                      bool
}

// Temporal computes the civil.Date, civil.Time or civil.DateTime of a
// temporal literal token.
func Temporal(tok token.Token, ctx Context) (any, error) {
	defaultYear := ctx.DefaultYear()
	if tok.Kind() == token.Time {
		defaultYear = math.MaxInt
	}
	t := temporal{year: defaultYear, month: 1, day: 1}
	for _, c := range tok.Children() {
		v, _ := c.Value().(int)
		switch c.Kind() {
		case token.Year:
			t.year = v
			t.twoDigitYear = len(c.Text()) <= 2
		case token.MonthNumber, token.MonthName, token.MonthNameAbbreviation, token.MonthNameInitial:
			t.month = v
		case token.DayNumber:
			t.day = v
		case token.Hour:
			t.hour = v
		case token.Minute:
			t.minute = v
		case token.Seconds:
			t.second = v
		case token.Millisecond:
			t.millisecond = v
		case token.AmPm:
			t.ampm = v
			t.hasAmPm = true
		}
	}
	if t.twoDigitYear {
		t.year = ctx.TwoToFourDigitYear(t.year)
	}

	switch tok.Kind() {
	case token.Date:
		return t.date(tok)
	case token.Time:
		return t.time(tok)
	case token.DateTime:
		d, err := t.date(tok)
		if err != nil {
			return nil, err
		}
		tm, err := t.time(tok)
		if err != nil {
			return nil, err
		}
		return civil.DateTime{Date: d, Time: tm}, nil
	}
	return nil, fmt.Errorf("%w: %s is not a temporal literal", ErrUnsupported, tok.Kind())
}

func (t temporal) date(tok token.Token) (civil.Date, error) {
	if t.month < 1 || t.month > 12 || t.year < 0 || t.year > 9999 {
		return civil.Date{}, fmt.Errorf("%w: date %q", ErrInvalidLiteral, tok.Text())
	}
	d := civil.Date{Year: t.year, Month: time.Month(t.month), Day: t.day}
	if !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: date %q", ErrInvalidLiteral, tok.Text())
	}
	return d, nil
}

func (t temporal) time(tok token.Token) (civil.Time, error) {
	hour := t.hour
	if t.hasAmPm {
		if hour < 1 || hour > 12 {
			return civil.Time{}, fmt.Errorf("%w: hour %d with am/pm in %q", ErrInvalidLiteral, hour, tok.Text())
		}
		hour = hour%12 + t.ampm
	}
	tm := civil.Time{
		Hour:       hour,
		Minute:     t.minute,
		Second:     t.second,
		Nanosecond: t.millisecond * int(time.Millisecond),
	}
	if !tm.IsValid() {
		return civil.Time{}, fmt.Errorf("%w: time %q", ErrInvalidLiteral, tok.Text())
	}
	return tm, nil
}
