package filterparser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tagdeck/internal/track"
)

func TestUIntEq(t *testing.T) {
	c := UIntEq{3}
	assert.True(t, c.Matches(3))
	assert.True(t, c.Matches(int64(3)))
	assert.False(t, c.Matches(4))
	assert.False(t, c.Matches(-3))
	assert.False(t, c.Matches("3"))

	assert.False(t, UIntEq{0}.Matches(-1))
}

func TestTextComparators(t *testing.T) {
	assert.True(t, TextContains{"beat"}.Matches("The Beatles"))
	assert.False(t, TextContains{"stones"}.Matches("The Beatles"))
	assert.True(t, TextEq{"the beatles"}.Matches("The Beatles"))
	assert.False(t, TextEq{"beatles"}.Matches("The Beatles"))
	assert.True(t, TextNe{"beatles"}.Matches("The Beatles"))
	assert.False(t, TextContains{"1"}.Matches(1))
}

func TestIntComparators(t *testing.T) {
	assert.True(t, IntGt{1990}.Matches(1991))
	assert.False(t, IntGt{1990}.Matches(1990))
	assert.True(t, IntGe{1990}.Matches(1990))
	assert.True(t, IntLt{1990}.Matches(-1))
	assert.True(t, IntLe{1990}.Matches(1990))
	assert.True(t, IntNe{1990}.Matches(1991))
	assert.True(t, IntEq{1}.Matches(true))
	assert.False(t, IntEq{1}.Matches(false))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"artist:The Beatles", "help"}, tokenize(`artist:"The Beatles"  help`))
	assert.Equal(t, []string{"a", "b"}, tokenize("a\tb"))
	assert.Empty(t, tokenize("   "))
}

func records() []track.Record {
	return []track.Record{
		{Title: "Help!", Artist: "The Beatles", Album: "Help!", Year: 1965, Track: 1, PlayCount: 10},
		{Title: "Yesterday", Artist: "The Beatles", Album: "Help!", Year: 1965, Track: 13, Length: 125 * time.Second},
		{Title: "Paint It Black", Artist: "The Rolling Stones", Album: "Aftermath", Year: 1966, Track: 1, Genre: "Rock"},
		{Title: "So What", Artist: "Miles Davis", AlbumArtist: "Miles Davis", Album: "Kind of Blue", Year: 1959, Compilation: true},
	}
}

func matchTitles(t *testing.T, expr string) []string {
	t.Helper()
	f, err := Parse(expr)
	require.NoError(t, err)

	var titles []string
	for _, r := range records() {
		if f.Match(r) {
			titles = append(titles, r.Title)
		}
	}
	return titles
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"Help!", "Yesterday", "Paint It Black", "So What"}},
		{"beatles", []string{"Help!", "Yesterday"}},
		{"artist:stones", []string{"Paint It Black"}},
		{`artist:="the beatles" track:13`, []string{"Yesterday"}},
		{"year:>1960 -beatles", []string{"Paint It Black"}},
		{"-beatles", []string{"Paint It Black", "So What"}},
		{"-help", []string{"Paint It Black", "So What"}},
		{"-artist:stones", []string{"Help!", "Yesterday", "So What"}},
		{"-genre:!=rock", []string{"Paint It Black"}},
		{"year:<=1959", []string{"So What"}},
		{"track:1", []string{"Help!", "Paint It Black"}},
		{"playcount:>=5", []string{"Help!"}},
		{"compilation:1", []string{"So What"}},
		{"length:>100", []string{"Yesterday"}},
		{"genre:!=rock", []string{"Help!", "Yesterday", "So What"}},
		{"nosuchcolumn:x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, matchTitles(t, tt.expr))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("year:abc")
	require.ErrorIs(t, err, ErrInvalidNumber)

	_, err = Parse("title:>abc")
	require.ErrorIs(t, err, ErrInvalidOperator)

	_, err = Parse("track:-1")
	require.ErrorIs(t, err, ErrInvalidNumber)
}

func TestFilter_NegatedWordExcludesAnyColumn(t *testing.T) {
	f, err := Parse("-beatles")
	require.NoError(t, err)

	assert.False(t, f.Match(track.Record{Title: "Help!", Artist: "The Beatles"}))
	assert.False(t, f.Match(track.Record{Title: "Something", AlbumArtist: "The Beatles"}))
	assert.True(t, f.Match(track.Record{Title: "Help!", Artist: "Howlin' Wolf"}))
}

func TestFilter_Empty(t *testing.T) {
	f, err := Parse("  ")
	require.NoError(t, err)
	assert.True(t, f.Empty())
}
