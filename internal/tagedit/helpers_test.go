package tagedit

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/tagdeck/internal/track"
)

var errNoFile = errors.New("no such file")

type fakeStore struct {
	mu      sync.Mutex
	files   map[string]track.Record
	failing map[string]error
	saves   []string
}

func newFakeStore(recs ...track.Record) *fakeStore {
	s := &fakeStore{files: map[string]track.Record{}, failing: map[string]error{}}
	for _, r := range recs {
		s.files[r.Path] = r
	}
	return s
}

func (s *fakeStore) ReadBlocking(path string) (track.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.files[path]
	if !ok {
		return track.New(path), errNoFile
	}
	return r, nil
}

func (s *fakeStore) Save(path string, rec track.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, path)
	if err := s.failing[path]; err != nil {
		return err
	}
	s.files[path] = rec
	return nil
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

type artCall struct {
	albumArtist, album, url string
}

type fakeCatalog struct {
	mu       sync.Mutex
	tracks   map[string]track.Record
	upserts  []track.Record
	resets   []int64
	art      []artCall
	resetErr error
}

func newFakeCatalog(recs ...track.Record) *fakeCatalog {
	c := &fakeCatalog{tracks: map[string]track.Record{}}
	for _, r := range recs {
		c.tracks[r.Path] = r
	}
	return c
}

func (c *fakeCatalog) TrackByPath(path string) (track.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.tracks[path]
	return r, ok, nil
}

func (c *fakeCatalog) Upsert(recs []track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserts = append(c.upserts, recs...)
	for _, r := range recs {
		c.tracks[r.Path] = r
	}
	return nil
}

func (c *fakeCatalog) ResetStatistics(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets = append(c.resets, id)
	return c.resetErr
}

func (c *fakeCatalog) SetAlbumArtManual(albumArtist, album, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.art = append(c.art, artCall{albumArtist, album, url})
	return nil
}

func (c *fakeCatalog) upsertedPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.upserts {
		out = append(out, r.Path)
	}
	return out
}

func testLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log
}

// song returns a valid record. A positive id makes it a catalog track.
func song(path, artist, album, title string, id int64) track.Record {
	r := track.New(path)
	r.Valid = true
	r.Artist = artist
	r.Album = album
	r.Title = title
	if id > 0 {
		r.ID = id
	}
	return r
}

var cmdSliceType = reflect.TypeOf([]tea.Cmd(nil))

// collect runs cmd and the commands of every batch or sequence it yields,
// and returns the resulting messages in order.
func collect(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		// tea.Sequence yields an unexported []tea.Cmd
		if v := reflect.ValueOf(msg); v.Type().ConvertibleTo(cmdSliceType) {
			queue = append(v.Convert(cmdSliceType).Interface().([]tea.Cmd), queue...)
			continue
		}
		out = append(out, msg)
	}
	return out
}

// pump plays the part of the Bubble Tea runtime: it feeds completions back
// to the session and records what the session reports to its owner.
type pump struct {
	s *Session
	// reorder may permute the queued messages before each delivery.
	reorder func([]tea.Msg)
	out     []tea.Msg
}

func (p *pump) run(cmd tea.Cmd) {
	queue := collect(cmd)
	for len(queue) > 0 {
		if p.reorder != nil {
			p.reorder(queue)
		}
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case LoadFinishedMsg, CommitFinishedMsg:
			p.out = append(p.out, msg)
			continue
		}
		queue = append(queue, collect(p.s.Update(msg))...)
	}
}

func (p *pump) commitFinished() []CommitFinishedMsg {
	var out []CommitFinishedMsg
	for _, m := range p.out {
		if c, ok := m.(CommitFinishedMsg); ok {
			out = append(out, c)
		}
	}
	return out
}

func reverse(msgs []tea.Msg) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// loadSession returns a session with recs loaded from a fake store.
func loadSession(t *testing.T, catalog Catalog, recs ...track.Record) (*Session, *fakeStore, *pump) {
	t.Helper()
	store := newFakeStore(recs...)
	s := New(store, catalog, testLogger())
	paths := make([]string, len(recs))
	for i, r := range recs {
		paths[i] = r.Path
	}
	cmd, err := s.LoadBatch(paths)
	if err != nil {
		t.Fatalf("LoadBatch() error = %v", err)
	}
	p := &pump{s: s}
	p.run(cmd)
	if s.State() != StateReady {
		t.Fatalf("state after load = %v, want ready", s.State())
	}
	return s, store, p
}

func mustSet(t *testing.T, s *Session, sel Selection, key string, v Value) FieldState {
	t.Helper()
	st, err := s.SetFieldValue(sel, key, v)
	if err != nil {
		t.Fatalf("SetFieldValue(%v, %q) error = %v", sel, key, err)
	}
	return st
}
