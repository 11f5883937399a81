package tagedit

import (
	"github.com/llehouerou/tagdeck/internal/track"
)

// Field identifies an editable tag.
type Field int

const (
	FieldTitle Field = iota
	FieldArtist
	FieldAlbum
	FieldAlbumArtist
	FieldComposer
	FieldPerformer
	FieldGrouping
	FieldGenre
	FieldComment
	FieldLyrics
	FieldTrack
	FieldDisc
	FieldYear
	FieldCompilation

	numFields
)

type accessor struct {
	key  string
	kind Kind
	get  func(*track.Record) Value
	set  func(*track.Record, Value)
}

func textField(key string, ptr func(*track.Record) *string) accessor {
	return accessor{
		key:  key,
		kind: KindString,
		get:  func(r *track.Record) Value { return StringValue(*ptr(r)) },
		set:  func(r *track.Record, v Value) { *ptr(r) = v.AsString() },
	}
}

func intField(key string, ptr func(*track.Record) *int) accessor {
	return accessor{
		key:  key,
		kind: KindInt,
		get:  func(r *track.Record) Value { return IntValue(*ptr(r)) },
		set:  func(r *track.Record, v Value) { *ptr(r) = max(v.AsInt(), 0) },
	}
}

func boolField(key string, ptr func(*track.Record) *bool) accessor {
	return accessor{
		key:  key,
		kind: KindBool,
		get:  func(r *track.Record) Value { return BoolValue(*ptr(r)) },
		set:  func(r *track.Record, v Value) { *ptr(r) = v.AsBool() },
	}
}

var accessors = [numFields]accessor{
	FieldTitle:       textField("title", func(r *track.Record) *string { return &r.Title }),
	FieldArtist:      textField("artist", func(r *track.Record) *string { return &r.Artist }),
	FieldAlbum:       textField("album", func(r *track.Record) *string { return &r.Album }),
	FieldAlbumArtist: textField("albumartist", func(r *track.Record) *string { return &r.AlbumArtist }),
	FieldComposer:    textField("composer", func(r *track.Record) *string { return &r.Composer }),
	FieldPerformer:   textField("performer", func(r *track.Record) *string { return &r.Performer }),
	FieldGrouping:    textField("grouping", func(r *track.Record) *string { return &r.Grouping }),
	FieldGenre:       textField("genre", func(r *track.Record) *string { return &r.Genre }),
	FieldComment:     textField("comment", func(r *track.Record) *string { return &r.Comment }),
	FieldLyrics:      textField("lyrics", func(r *track.Record) *string { return &r.Lyrics }),
	FieldTrack:       intField("track", func(r *track.Record) *int { return &r.Track }),
	FieldDisc:        intField("disc", func(r *track.Record) *int { return &r.Disc }),
	FieldYear:        intField("year", func(r *track.Record) *int { return &r.Year }),
	FieldCompilation: boolField("compilation", func(r *track.Record) *bool { return &r.Compilation }),
}

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, numFields)
	for f := range numFields {
		m[accessors[f].key] = f
	}
	return m
}()

// AllFields returns every editable field in display order.
func AllFields() []Field {
	out := make([]Field, numFields)
	for f := range numFields {
		out[f] = f
	}
	return out
}

// ParseField returns the field for a key such as "albumartist".
func ParseField(key string) (Field, bool) {
	f, ok := fieldsByKey[key]
	return f, ok
}

func (f Field) valid() bool { return f >= 0 && f < numFields }

// Key returns the field's stable key.
func (f Field) Key() string {
	if !f.valid() {
		return ""
	}
	return accessors[f].key
}

func (f Field) String() string { return f.Key() }

func (f Field) Kind() Kind {
	if !f.valid() {
		return KindString
	}
	return accessors[f].kind
}

// Get reads the field from a record.
func (f Field) Get(r *track.Record) Value {
	return accessors[f].get(r)
}

// Set writes the field to a record, converting v to the field's kind.
func (f Field) Set(r *track.Record, v Value) {
	accessors[f].set(r, v)
}
