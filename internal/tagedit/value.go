package tagedit

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type of a field value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a field value. Values are comparable with ==; a string "3" and an
// int 3 are different values.
type Value struct {
	kind Kind
	s    string
	i    int
	b    bool
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int) Value       { return Value{kind: KindInt, i: i} }
func BoolValue(b bool) Value     { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

// AsString converts the value to text. Booleans give "true" or "false".
func (v Value) AsString() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// AsInt converts the value to an integer. Text that is not a number gives 0.
func (v Value) AsInt() int {
	switch v.kind {
	case KindInt:
		return v.i
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		n, err := strconv.Atoi(strings.TrimSpace(v.s))
		if err != nil {
			return 0
		}
		return n
	}
}

// AsBool converts the value to a boolean. Text is false when empty, "0" or
// "false" and true otherwise.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindInt:
		return v.i != 0
	case KindBool:
		return v.b
	default:
		s := strings.ToLower(strings.TrimSpace(v.s))
		return s != "" && s != "0" && s != "false"
	}
}

// Display returns the text shown for the value. Zero numbers are blank.
func (v Value) Display() string {
	if v.kind == KindInt && v.i == 0 {
		return ""
	}
	return v.AsString()
}

func (v Value) String() string { return v.AsString() }

// ParseValue parses text typed by a user into a value of the given kind.
// An empty text is the zero value.
func ParseValue(kind Kind, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch kind {
	case KindInt:
		if text == "" {
			return IntValue(0), nil
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return Value{}, fmt.Errorf("%w: %q is not a positive number", ErrInvalidValue, text)
		}
		return IntValue(n), nil
	case KindBool:
		switch strings.ToLower(text) {
		case "", "0", "false", "no", "off":
			return BoolValue(false), nil
		case "1", "true", "yes", "on":
			return BoolValue(true), nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, text)
	default:
		return StringValue(text), nil
	}
}
