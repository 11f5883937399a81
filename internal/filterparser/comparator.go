// Package filterparser parses collection filter expressions such as
// `artist:beatles year:>=1965 help` and matches them against track records.
package filterparser

import (
	"strings"
)

// Comparator matches a single column value against a search term.
type Comparator interface {
	Matches(value any) bool
}

// TextContains matches values containing the term, case-insensitively.
type TextContains struct{ Term string }

func (c TextContains) Matches(value any) bool {
	s, ok := value.(string)
	return ok && strings.Contains(strings.ToLower(s), strings.ToLower(c.Term))
}

// TextEq matches values equal to the term, case-insensitively.
type TextEq struct{ Term string }

func (c TextEq) Matches(value any) bool {
	s, ok := value.(string)
	return ok && strings.EqualFold(s, c.Term)
}

// TextNe matches values different from the term, case-insensitively.
type TextNe struct{ Term string }

func (c TextNe) Matches(value any) bool {
	s, ok := value.(string)
	return ok && !strings.EqualFold(s, c.Term)
}

// UIntEq matches unsigned values equal to the term. Negative values, which
// mark unknown numbers in records, never match.
type UIntEq struct{ Term uint64 }

func (c UIntEq) Matches(value any) bool {
	n, ok := toInt64(value)
	if !ok || n < 0 {
		return false
	}
	return uint64(n) == c.Term
}

// IntEq matches integers equal to the term.
type IntEq struct{ Term int64 }

func (c IntEq) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n == c.Term
}

// IntNe matches integers different from the term.
type IntNe struct{ Term int64 }

func (c IntNe) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n != c.Term
}

// IntGt matches integers greater than the term.
type IntGt struct{ Term int64 }

func (c IntGt) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n > c.Term
}

// IntGe matches integers greater than or equal to the term.
type IntGe struct{ Term int64 }

func (c IntGe) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n >= c.Term
}

// IntLt matches integers less than the term.
type IntLt struct{ Term int64 }

func (c IntLt) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n < c.Term
}

// IntLe matches integers less than or equal to the term.
type IntLe struct{ Term int64 }

func (c IntLe) Matches(value any) bool {
	n, ok := toInt64(value)
	return ok && n <= c.Term
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
