package coverart

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rainycape/unidecode"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/tagdeck/internal/errmsg"
)

// ErrNotAuthenticated is returned by providers that need credentials.
var ErrNotAuthenticated = errors.New("not authenticated")

// Result is one candidate cover image.
type Result struct {
	Provider string
	Artist   string
	Album    string
	ImageURL string
	Width    int
	Height   int
	// Number is the rank of the item in the provider reply, starting at 1.
	Number int
	Score  float64
}

// Provider searches a remote service for cover images.
type Provider interface {
	Name() string
	// Quality weights the provider's results when ranking.
	Quality() float64
	Authenticated() bool
	Search(ctx context.Context, artist, album, title string) ([]Result, error)
}

// SearchFinishedMsg is sent when every provider answered a search.
type SearchFinishedMsg struct {
	ID      int
	Slot    string
	Results []Result
	// Err joins the provider errors. Results may still be set.
	Err error
}

type pendingSearch struct {
	id     int
	cancel context.CancelFunc
}

// Searcher queries every authenticated provider in parallel. A search
// started for a slot cancels the previous search of the same slot.
type Searcher struct {
	providers []Provider
	log       logrus.FieldLogger

	mu     sync.Mutex
	nextID int
	slots  map[string]pendingSearch
}

func NewSearcher(log logrus.FieldLogger, providers ...Provider) *Searcher {
	return &Searcher{
		providers: providers,
		log:       log,
		slots:     make(map[string]pendingSearch),
	}
}

// Providers returns the names of the authenticated providers.
func (s *Searcher) Providers() []string {
	var names []string
	for _, p := range s.providers {
		if p.Authenticated() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Search starts a search and returns its id with the command running it.
// The command yields nil when the search was cancelled.
func (s *Searcher) Search(slot, artist, album, title string) (int, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if prev, ok := s.slots[slot]; ok {
		prev.cancel()
		s.log.WithFields(logrus.Fields{"slot": slot, "id": prev.id}).Debug("cover search superseded")
	}
	s.slots[slot] = pendingSearch{id: id, cancel: cancel}
	s.mu.Unlock()

	return id, func() tea.Msg {
		defer s.done(slot, id)

		results, err := s.run(ctx, artist, album, title)
		if ctx.Err() != nil {
			return nil
		}
		return SearchFinishedMsg{ID: id, Slot: slot, Results: results, Err: err}
	}
}

// Cancel aborts the search with the given id, if it is still running.
func (s *Searcher) Cancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slot, p := range s.slots {
		if p.id == id {
			p.cancel()
			delete(s.slots, slot)
			return
		}
	}
}

func (s *Searcher) done(slot string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.slots[slot]; ok && p.id == id {
		p.cancel()
		delete(s.slots, slot)
	}
}

func (s *Searcher) run(ctx context.Context, artist, album, title string) ([]Result, error) {
	var (
		mu      sync.Mutex
		results []Result
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		if !p.Authenticated() {
			continue
		}
		g.Go(func() error {
			res, err := p.Search(gctx, artist, album, title)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.WithField("provider", p.Name()).WithError(err).Error(errmsg.FormatWith(errmsg.OpCoverProvide, p.Name(), err))
				errs = append(errs, err)
			}
			for i := range res {
				res[i].Provider = p.Name()
				res[i].Score = score(p.Quality(), res[i], artist, album)
			}
			results = append(results, res...)
			// one failing provider must not cancel the others
			return nil
		})
	}
	_ = g.Wait()

	Rank(results)
	return results, errors.Join(errs...)
}

// Rank sorts results by descending score. Ties keep provider order.
func Rank(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

// score weights provider quality by image size and by how well the result
// matches the searched artist and album.
func score(quality float64, r Result, artist, album string) float64 {
	const reference = 1000 * 1000
	size := float64(min(r.Width*r.Height, reference)) / reference

	match := 0.5
	artistMatch := artist == "" || normalize(r.Artist) == normalize(artist)
	albumMatch := album == "" || normalize(r.Album) == normalize(album)
	switch {
	case artistMatch && albumMatch:
		match = 1
	case artistMatch || albumMatch:
		match = 0.75
	}

	return quality * (1 + size) * match
}

// normalize folds case and transliterates to ASCII so "Björk" matches
// "Bjork".
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}
