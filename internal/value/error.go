package value

import "strings"

// ErrorKind enumerates spreadsheet error values.
type ErrorKind uint8

const (
	ErrorNull ErrorKind = iota + 1
	ErrorDiv0
	ErrorValue
	ErrorRef
	ErrorName
	ErrorNum
	ErrorNA
	ErrorCycle
)

var errorTexts = [...]string{
	ErrorNull:  "#NULL!",
	ErrorDiv0:  "#DIV/0!",
	ErrorValue: "#VALUE!",
	ErrorRef:   "#REF!",
	ErrorName:  "#NAME?",
	ErrorNum:   "#NUM!",
	ErrorNA:    "#N/A",
	ErrorCycle: "#CYCLE!",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorTexts) && errorTexts[k] != "" {
		return errorTexts[k]
	}
	return "#ERROR!"
}

// Error is a spreadsheet error value. It is a value, not a Go error: it flows
// through evaluation like any other result.
type Error struct {
	Kind    ErrorKind
	Message string
}

// NewError builds an error value with an optional message.
func NewError(kind ErrorKind, message string) Error {
	return Error{Kind: kind, Message: message}
}

func (e Error) String() string {
	return e.Kind.String()
}

// ParseError recognises the literal form of an error value ("#REF!").
func ParseError(text string) (Error, bool) {
	upper := strings.ToUpper(text)
	for k, t := range errorTexts {
		if t != "" && t == upper {
			return Error{Kind: ErrorKind(k)}, true
		}
	}
	return Error{}, false
}

// FirstError returns the first error value among values.
func FirstError(values []any) (Error, bool) {
	for _, v := range values {
		if e, ok := v.(Error); ok {
			return e, true
		}
	}
	return Error{}, false
}
