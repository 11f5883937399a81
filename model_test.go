package main

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/tagedit"
	"github.com/llehouerou/tagdeck/internal/track"
)

type memStore struct {
	mu    sync.Mutex
	files map[string]track.Record
	saved []string
}

func (s *memStore) ReadBlocking(path string) (track.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.files[path]
	if !ok {
		return track.New(path), errors.New("no such file")
	}
	return r, nil
}

func (s *memStore) Save(path string, rec track.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, path)
	s.files[path] = rec
	return nil
}

func newMemStore(paths ...string) *memStore {
	s := &memStore{files: map[string]track.Record{}}
	for _, p := range paths {
		r := track.New(p)
		r.Valid = true
		r.Artist = "Artist"
		r.Album = "Album"
		r.Title = strings.TrimSuffix(p, ".flac")
		s.files[p] = r
	}
	return s
}

var cmdSliceType = reflect.TypeOf([]tea.Cmd(nil))

// runModel plays the Bubble Tea runtime until the model quits.
func runModel(t *testing.T, m *model) {
	t.Helper()
	queue := []tea.Cmd{m.Init()}
	for len(queue) > 0 {
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.QuitMsg:
			return
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		// tea.Sequence yields an unexported []tea.Cmd
		if v := reflect.ValueOf(msg); v.Type().ConvertibleTo(cmdSliceType) {
			queue = append(queue, v.Convert(cmdSliceType).Interface().([]tea.Cmd)...)
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, next)
	}
	t.Fatal("model never quit")
}

type memCatalog struct {
	mu      sync.Mutex
	upserts []string
}

func (c *memCatalog) TrackByPath(string) (track.Record, bool, error) {
	return track.Record{}, false, nil
}

func (c *memCatalog) Upsert(recs []track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range recs {
		c.upserts = append(c.upserts, r.Path)
	}
	return nil
}

func (c *memCatalog) ResetStatistics(int64) error { return nil }
func (c *memCatalog) SetAlbumArtManual(string, string, string) error { return nil }

func newTestModel(opts options, store *memStore, paths ...string) *model {
	return newCatalogTestModel(opts, store, nil, paths...)
}

func newCatalogTestModel(opts options, store *memStore, catalog tagedit.Catalog, paths ...string) *model {
	log, _ := test.NewNullLogger()
	session := tagedit.New(store, catalog, log)
	svc := services{
		resolver: coverart.NewResolver(nil, 0, log),
		searcher: coverart.NewSearcher(log),
	}
	return newModel(opts, paths, session, svc, log)
}

func TestModel_CommitsEdits(t *testing.T) {
	store := newMemStore("1.flac", "2.flac")
	opts, err := parseFlags([]string{"-set", "genre=Jazz", "1.flac", "2.flac"})
	if err != nil {
		t.Fatal(err)
	}

	m := newTestModel(opts, store, "1.flac", "2.flac")
	runModel(t, m)

	if m.failed {
		t.Errorf("run failed:\n%s", strings.Join(m.report.sections, "\n"))
	}
	if len(store.saved) != 2 {
		t.Errorf("saved = %v, want both files", store.saved)
	}
	if got := store.files["2.flac"].Genre; got != "Jazz" {
		t.Errorf("genre = %q, want Jazz", got)
	}
	out := strings.Join(m.report.sections, "\n")
	if !strings.Contains(out, "Wrote 2 file(s)") {
		t.Errorf("report = %q", out)
	}
	if !m.session.Closed() {
		t.Error("session should be closed once the program quits")
	}
}

func TestModel_WaitsForCatalogUpdate(t *testing.T) {
	store := newMemStore("1.flac", "2.flac")
	for i, p := range []string{"1.flac", "2.flac"} {
		r := store.files[p]
		r.ID = int64(i + 1)
		store.files[p] = r
	}
	opts, err := parseFlags([]string{"-set", "genre=Jazz", "1.flac", "2.flac"})
	if err != nil {
		t.Fatal(err)
	}

	cat := &memCatalog{}
	m := newCatalogTestModel(opts, store, cat, "1.flac", "2.flac")
	runModel(t, m)

	if m.failed {
		t.Errorf("run failed:\n%s", strings.Join(m.report.sections, "\n"))
	}
	if len(cat.upserts) != 2 {
		t.Errorf("upserts = %v, want both files", cat.upserts)
	}
	if m.waiting != 0 {
		t.Errorf("waiting = %d after quit, want 0", m.waiting)
	}
	if out := strings.Join(m.report.sections, "\n"); !strings.Contains(out, "catalog updated (2 tracks)") {
		t.Errorf("report = %q", out)
	}
}

func TestModel_DryRun(t *testing.T) {
	store := newMemStore("1.flac", "2.flac")
	opts, err := parseFlags([]string{"-dry-run", "-select", "1", "-set", "year=1999", "-show", "1.flac", "2.flac"})
	if err != nil {
		t.Fatal(err)
	}

	m := newTestModel(opts, store, "1.flac", "2.flac")
	runModel(t, m)

	if len(store.saved) != 0 {
		t.Errorf("dry run wrote %v", store.saved)
	}
	out := strings.Join(m.report.sections, "\n")
	for _, want := range []string{"Changes", "2.flac", "1999", "Cover source", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestModel_EmptyBatch(t *testing.T) {
	opts, err := parseFlags([]string{"missing.flac"})
	if err != nil {
		t.Fatal(err)
	}

	m := newTestModel(opts, newMemStore(), "missing.flac")
	runModel(t, m)

	if !m.failed {
		t.Error("empty batch should fail the run")
	}
	if out := strings.Join(m.report.sections, "\n"); !strings.Contains(out, "skipped") {
		t.Errorf("report = %q", out)
	}
}
