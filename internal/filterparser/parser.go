package filterparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/tagdeck/internal/track"
)

var (
	// ErrInvalidOperator is returned for an operator the column type does not support.
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrInvalidNumber is returned when a numeric column is given a non-numeric term.
	ErrInvalidNumber = errors.New("invalid number")
)

type columnKind int

const (
	kindText columnKind = iota
	kindUInt
	kindInt
)

type column struct {
	kind  columnKind
	value func(r *track.Record) any
}

var columns = map[string]column{
	"title":       {kindText, func(r *track.Record) any { return r.Title }},
	"artist":      {kindText, func(r *track.Record) any { return r.Artist }},
	"album":       {kindText, func(r *track.Record) any { return r.Album }},
	"albumartist": {kindText, func(r *track.Record) any { return r.AlbumArtist }},
	"composer":    {kindText, func(r *track.Record) any { return r.Composer }},
	"performer":   {kindText, func(r *track.Record) any { return r.Performer }},
	"grouping":    {kindText, func(r *track.Record) any { return r.Grouping }},
	"genre":       {kindText, func(r *track.Record) any { return r.Genre }},
	"comment":     {kindText, func(r *track.Record) any { return r.Comment }},
	"filetype":    {kindText, func(r *track.Record) any { return r.Filetype }},
	"filename":    {kindText, func(r *track.Record) any { return r.BaseFilename() }},
	"track":       {kindUInt, func(r *track.Record) any { return r.Track }},
	"disc":        {kindUInt, func(r *track.Record) any { return r.Disc }},
	"playcount":   {kindUInt, func(r *track.Record) any { return r.PlayCount }},
	"skipcount":   {kindUInt, func(r *track.Record) any { return r.SkipCount }},
	"samplerate":  {kindUInt, func(r *track.Record) any { return r.Samplerate }},
	"bitrate":     {kindUInt, func(r *track.Record) any { return r.Bitrate }},
	"year":        {kindInt, func(r *track.Record) any { return r.Year }},
	"lastplayed":  {kindInt, func(r *track.Record) any { return r.LastPlayed }},
	"length":      {kindInt, func(r *track.Record) any { return int64(r.Length.Seconds()) }},
	"compilation": {kindInt, func(r *track.Record) any { return r.Compilation }},
}

// bareWordColumns are searched by terms without a column prefix.
var bareWordColumns = []string{"title", "artist", "album", "albumartist"}

// operators ordered so that two-character operators are tried first.
var operators = []string{">=", "<=", "!=", ">", "<", "="}

// term matches when any of its columns matches. A negated term matches
// when none of them does.
type term struct {
	columns    []string
	comparator Comparator
	negate     bool
}

func (t term) matches(r *track.Record) bool {
	found := false
	for _, name := range t.columns {
		if t.comparator.Matches(columns[name].value(r)) {
			found = true
			break
		}
	}
	return found != t.negate
}

// Filter is a parsed expression. All terms must match.
type Filter struct {
	terms []term
}

// Match reports whether rec satisfies every term of the filter. An empty
// filter matches everything.
func (f *Filter) Match(rec track.Record) bool {
	for _, t := range f.terms {
		if !t.matches(&rec) {
			return false
		}
	}
	return true
}

// Empty reports whether the filter has no terms.
func (f *Filter) Empty() bool {
	return len(f.terms) == 0
}

// Columns returns the names usable as `column:` prefixes.
func Columns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	return names
}

// Parse parses a filter expression. Terms are separated by spaces; double
// quotes group words. A term is either `column:[op]value` or a bare word
// matched against title, artist and album. A leading '-' negates a term.
// Tokens whose prefix is not a known column are treated as bare words.
func Parse(expr string) (*Filter, error) {
	f := &Filter{}
	for _, tok := range tokenize(expr) {
		negate := false
		if len(tok) > 1 && tok[0] == '-' {
			negate = true
			tok = tok[1:]
		}

		t, err := parseTerm(tok)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", tok, err)
		}
		t.negate = negate
		f.terms = append(f.terms, t)
	}
	return f, nil
}

func parseTerm(tok string) (term, error) {
	name, rest, ok := strings.Cut(tok, ":")
	col, known := columns[strings.ToLower(name)]
	if !ok || !known {
		return term{columns: bareWordColumns, comparator: TextContains{tok}}, nil
	}

	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(rest, candidate) {
			op = candidate
			rest = rest[len(candidate):]
			break
		}
	}

	cmp, err := comparatorFor(col.kind, op, rest)
	if err != nil {
		return term{}, err
	}
	return term{columns: []string{strings.ToLower(name)}, comparator: cmp}, nil
}

func comparatorFor(kind columnKind, op, value string) (Comparator, error) {
	if kind == kindText {
		switch op {
		case "":
			return TextContains{value}, nil
		case "=":
			return TextEq{value}, nil
		case "!=":
			return TextNe{value}, nil
		default:
			return nil, fmt.Errorf("%w %q for text column", ErrInvalidOperator, op)
		}
	}

	if kind == kindUInt && (op == "" || op == "=") {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
		}
		return UIntEq{n}, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	switch op {
	case "", "=":
		return IntEq{n}, nil
	case "!=":
		return IntNe{n}, nil
	case ">":
		return IntGt{n}, nil
	case ">=":
		return IntGe{n}, nil
	case "<":
		return IntLt{n}, nil
	default:
		return IntLe{n}, nil
	}
}

// tokenize splits on whitespace outside double quotes and drops the quotes.
func tokenize(expr string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range expr {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case (r == ' ' || r == '\t') && !inQuotes:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
