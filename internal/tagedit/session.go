// Package tagedit implements a multi-track tag editing session: a batch of
// tracks is loaded, fields are edited across a selection and modified files
// are written back asynchronously.
//
// The session is not safe for concurrent use. It is meant to be owned by a
// Bubble Tea model: blocking work runs in the returned commands and the
// resulting messages are fed back through Update.
package tagedit

import (
	"errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/track"
)

var (
	ErrBusy         = errors.New("session is busy")
	ErrClosed       = errors.New("session is closed")
	ErrInvalidValue = errors.New("invalid value")
)

// TagStore reads and writes the tags of music files.
type TagStore interface {
	// ReadBlocking returns the record of a file. Records that cannot be
	// edited have Valid unset or come with an error.
	ReadBlocking(path string) (track.Record, error)
	Save(path string, rec track.Record) error
}

// Catalog persists the collection.
type Catalog interface {
	TrackByPath(path string) (track.Record, bool, error)
	Upsert(recs []track.Record) error
	ResetStatistics(id int64) error
	SetAlbumArtManual(albumArtist, album, url string) error
}

// State is the session state.
type State int

const (
	StateIdle    State = iota // no batch, or the last commit finished
	StateLoading              // reading a batch
	StateReady                // batch loaded, fields editable
	StateEmpty                // the last batch had no valid track
	StateSaving               // writing modified files
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateSaving:
		return "saving"
	default:
		return "idle"
	}
}

// Entry pairs a track as last loaded or saved with its edited copy.
type Entry struct {
	Original track.Record
	Current  track.Record
}

// Modified reports whether any editable field differs from the original.
func (e *Entry) Modified() bool {
	return !e.Current.IsMetadataEqual(&e.Original)
}

// Selection is an ordered list of entry indices.
type Selection []int

// FieldState is what an editor shows for a field over a selection.
type FieldState struct {
	Field    Field
	Value    Value
	Varies   bool
	Modified bool
}

var sessionIDs atomic.Uint64

// Session is a tag editing session.
type Session struct {
	id      uint64
	store   TagStore
	catalog Catalog
	log     logrus.FieldLogger

	state     State
	prevState State
	closed    bool

	loadGen   uint64
	commitGen uint64
	otherGen  uint64

	entries   []Entry
	selection Selection
	cursor    int

	pending  int
	saved    []string
	failed   []FailedFile
	errs     []error
	toUpsert []track.Record
}

// New creates a session. catalog may be nil when tracks are edited outside
// the collection.
func New(store TagStore, catalog Catalog, log logrus.FieldLogger) *Session {
	id := sessionIDs.Add(1)
	return &Session{
		id:      id,
		store:   store,
		catalog: catalog,
		log:     log.WithField("session", id),
	}
}

func (s *Session) ID() uint64     { return s.id }
func (s *Session) State() State   { return s.state }
func (s *Session) Closed() bool   { return s.closed }
func (s *Session) Len() int       { return len(s.entries) }
func (s *Session) Pending() int   { return s.pending }
func (s *Session) Cursor() int    { return s.cursor }
func (s *Session) IsBusy() bool   { return s.state == StateLoading || s.state == StateSaving }
func (s *Session) HasBatch() bool { return len(s.entries) > 0 }

// Entry returns a copy of the entry at index i.
func (s *Session) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Entries returns a copy of every entry.
func (s *Session) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s *Session) token(gen uint64) Token {
	return Token{Session: s.id, Generation: gen}
}

// LoadBatch starts reading paths. The returned command yields a
// BatchLoadedMsg which replaces every entry once passed to Update.
func (s *Session) LoadBatch(paths []string) (tea.Cmd, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.IsBusy() {
		return nil, ErrBusy
	}

	s.loadGen++
	s.prevState = s.state
	s.state = StateLoading
	s.log.WithFields(logrus.Fields{"files": len(paths), "generation": s.loadGen}).Debug("loading batch")
	return ReadBatchAsync(s.token(s.loadGen), s.store, s.catalog, paths, s.log), nil
}

// CancelLoad abandons the load in progress. Its result is dropped when it
// arrives and the previous batch stays in place.
func (s *Session) CancelLoad() {
	if s.state != StateLoading {
		return
	}
	s.loadGen++
	s.state = s.prevState
	s.log.Debug("load cancelled")
}

// Close ends the session. Writes in flight still complete but their results
// are only logged.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.loadGen++
	s.entries = nil
	s.selection = nil
	if s.pending > 0 {
		s.log.WithField("pending", s.pending).Info("session closed with writes in flight")
	}
}

func (s *Session) applyBatch(msg BatchLoadedMsg) tea.Cmd {
	entries := make([]Entry, len(msg.Records))
	for i, rec := range msg.Records {
		entries[i] = Entry{Original: rec, Current: rec}
	}
	s.entries = entries
	s.cursor = 0
	s.selection = make(Selection, len(entries))
	for i := range entries {
		s.selection[i] = i
	}

	if len(entries) == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateReady
	}
	s.log.WithFields(logrus.Fields{
		"tracks":  len(entries),
		"skipped": len(msg.Skipped),
	}).Debug("batch loaded")

	return msgCmd(LoadFinishedMsg{
		Session: s.id,
		State:   s.state,
		Count:   len(entries),
		Skipped: msg.Skipped,
	})
}

// resolve drops indices that do not name an entry.
func (s *Session) resolve(sel Selection) []int {
	out := make([]int, 0, len(sel))
	for _, i := range sel {
		if i < 0 || i >= len(s.entries) {
			s.log.WithField("index", i).Warn("selection index out of range")
			continue
		}
		out = append(out, i)
	}
	return out
}

func (s *Session) field(key string) (Field, bool) {
	f, ok := ParseField(key)
	if !ok {
		s.log.WithField("field", key).Warn("unknown field")
	}
	return f, ok
}

// FieldValue returns the current value of a field on the first selected
// entry, and whether another selected entry has a different value.
func (s *Session) FieldValue(sel Selection, key string) (Value, bool) {
	f, ok := s.field(key)
	if !ok {
		return Value{}, false
	}
	return s.fieldValue(s.resolve(sel), f)
}

func (s *Session) fieldValue(idx []int, f Field) (Value, bool) {
	if len(idx) == 0 {
		return Value{}, false
	}
	first := f.Get(&s.entries[idx[0]].Current)
	for _, i := range idx[1:] {
		if f.Get(&s.entries[i].Current) != first {
			return first, true
		}
	}
	return first, false
}

// IsModified reports whether the field differs from the original on at least
// one selected entry.
func (s *Session) IsModified(sel Selection, key string) bool {
	f, ok := s.field(key)
	if !ok {
		return false
	}
	return s.isModified(s.resolve(sel), f)
}

func (s *Session) isModified(idx []int, f Field) bool {
	for _, i := range idx {
		e := &s.entries[i]
		if f.Get(&e.Current) != f.Get(&e.Original) {
			return true
		}
	}
	return false
}

func (s *Session) fieldState(idx []int, f Field) FieldState {
	v, varies := s.fieldValue(idx, f)
	return FieldState{Field: f, Value: v, Varies: varies, Modified: s.isModified(idx, f)}
}

// Fields returns the display state of every field over the selection.
func (s *Session) Fields(sel Selection) []FieldState {
	idx := s.resolve(sel)
	out := make([]FieldState, 0, numFields)
	for _, f := range AllFields() {
		out = append(out, s.fieldState(idx, f))
	}
	return out
}

// SetFieldValue sets a field on every selected entry and returns the
// resulting display state. Unknown keys are logged and ignored.
func (s *Session) SetFieldValue(sel Selection, key string, v Value) (FieldState, error) {
	if err := s.checkEditable(); err != nil {
		return FieldState{}, err
	}
	f, ok := s.field(key)
	if !ok {
		return FieldState{}, nil
	}

	idx := s.resolve(sel)
	for _, i := range idx {
		f.Set(&s.entries[i].Current, v)
	}
	return s.fieldState(idx, f), nil
}

// ResetField restores the original value of a field on every selected entry.
func (s *Session) ResetField(sel Selection, key string) (FieldState, error) {
	if err := s.checkEditable(); err != nil {
		return FieldState{}, err
	}
	f, ok := s.field(key)
	if !ok {
		return FieldState{}, nil
	}

	idx := s.resolve(sel)
	for _, i := range idx {
		e := &s.entries[i]
		f.Set(&e.Current, f.Get(&e.Original))
	}
	return s.fieldState(idx, f), nil
}

func (s *Session) checkEditable() error {
	if s.closed {
		return ErrClosed
	}
	if s.IsBusy() {
		return ErrBusy
	}
	return nil
}

// SetCoverArt assigns a manual cover to an entry and to the original of
// every other entry of the same album, then mirrors the originals' manual
// cover into the current records. Cover art is not part of Commit: for
// catalog tracks the returned command stores it right away.
func (s *Session) SetCoverArt(entry int, url string) tea.Cmd {
	if s.closed {
		return nil
	}
	if entry < 0 || entry >= len(s.entries) {
		s.log.WithField("index", entry).Warn("cover art for unknown entry")
		return nil
	}

	target := s.entries[entry].Original
	s.entries[entry].Original.ArtManual = url
	for i := range s.entries {
		if i != entry && s.entries[i].Original.SameAlbum(&target) {
			s.entries[i].Original.ArtManual = url
		}
	}
	for i := range s.entries {
		s.entries[i].Current.ArtManual = s.entries[i].Original.ArtManual
	}

	if s.catalog == nil || !target.InCatalog() {
		return nil
	}
	s.otherGen++
	return SetAlbumArtAsync(s.token(s.otherGen), s.catalog, target.EffectiveAlbumArtist(), target.Album, url)
}

// UnsetCoverArt marks the album cover of an entry as removed by the user.
func (s *Session) UnsetCoverArt(entry int) tea.Cmd {
	return s.SetCoverArt(entry, track.ManuallyUnsetCover)
}

// Commit writes every modified entry. The returned command yields the
// writes' completions; once all of them went through Update, a single
// CommitFinishedMsg follows. With nothing to write it is sent right away.
func (s *Session) Commit() (tea.Cmd, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.IsBusy() {
		return nil, ErrBusy
	}

	s.commitGen++
	tok := s.token(s.commitGen)
	s.saved, s.failed, s.errs, s.toUpsert = nil, nil, nil, nil

	var cmds []tea.Cmd
	for i := range s.entries {
		e := &s.entries[i]
		if !e.Modified() {
			continue
		}
		cmds = append(cmds, SaveAsync(tok, s.store, i, e.Current))
	}

	if len(cmds) == 0 {
		s.state = StateIdle
		s.log.Debug("nothing to commit")
		return msgCmd(CommitFinishedMsg{Session: s.id}), nil
	}

	s.pending = len(cmds)
	s.state = StateSaving
	s.log.WithFields(logrus.Fields{"files": s.pending, "generation": s.commitGen}).Info("committing tags")
	return tea.Batch(cmds...), nil
}

// ResetStatistics clears the play statistics of a catalog entry. Entries
// that are not in the catalog are ignored.
func (s *Session) ResetStatistics(entry int) tea.Cmd {
	if s.closed || s.catalog == nil || entry < 0 || entry >= len(s.entries) {
		return nil
	}
	e := &s.entries[entry]
	if !e.Original.InCatalog() {
		return nil
	}

	e.Original.ResetStatistics()
	e.Current.ResetStatistics()

	s.otherGen++
	return ResetStatisticsAsync(s.token(s.otherGen), s.catalog, entry, e.Original.ID)
}

// ApplyFetched copies fetched title, artist, album, track and year into the
// entry loaded from path.
func (s *Session) ApplyFetched(path string, rec track.Record) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	for i := range s.entries {
		e := &s.entries[i]
		if e.Original.Path != path {
			continue
		}
		e.Current.Title = rec.Title
		e.Current.Artist = rec.Artist
		e.Current.Album = rec.Album
		e.Current.Track = rec.Track
		e.Current.Year = rec.Year
		return nil
	}
	s.log.WithField("path", path).Warn("fetched tags for a track that is not loaded")
	return nil
}
