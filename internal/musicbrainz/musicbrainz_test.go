//nolint:bodyclose // responses use http.NoBody
package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/tagdeck/internal/config"
	"github.com/llehouerou/tagdeck/internal/track"
)

func TestClient_WaitForRateLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &Client{interval: time.Second}

		start := time.Now()
		for range 3 {
			c.waitForRateLimit()
		}
		if elapsed := time.Since(start); elapsed < 2*time.Second {
			t.Errorf("3 requests took %v, expected at least 2s", elapsed)
		}

		time.Sleep(2 * time.Second)
		start = time.Now()
		c.waitForRateLimit()
		if elapsed := time.Since(start); elapsed > 0 {
			t.Errorf("request after a pause waited %v", elapsed)
		}
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// sequence replies with the given status codes in turn. A zero status is a
// network error.
func sequence(calls *int, statuses ...int) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		idx := *calls
		*calls++
		if idx >= len(statuses) {
			return nil, errors.New("no more responses configured")
		}
		if statuses[idx] == 0 {
			return nil, errors.New("connection refused")
		}
		return &http.Response{StatusCode: statuses[idx], Body: http.NoBody}, nil
	})}
}

func TestClient_DoRequestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int
		wantCode  int
		wantErr   bool
	}{
		{"success", []int{200}, 1, 200, false},
		{"retries on 500", []int{500, 502, 200}, 3, 200, false},
		{"retries network errors", []int{0, 200}, 2, 200, false},
		{"no retry on 4xx", []int{404}, 1, 404, false},
		{"exhausts retries", []int{500, 500, 500, 500, 500}, maxRetries + 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				var calls int
				c := &Client{httpClient: sequence(&calls, tt.statuses...)}

				req, _ := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
				resp, err := c.doRequestWithRetry(req)

				if tt.wantErr {
					if err == nil {
						t.Fatal("expected error")
					}
				} else {
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if resp.StatusCode != tt.wantCode {
						t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantCode)
					}
				}
				if calls != tt.wantCalls {
					t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
				}
			})
		})
	}
}

func TestClient_DoRequestWithRetry_StopsOnCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		c := &Client{httpClient: sequence(&calls, 500, 500, 500, 500)}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", http.NoBody)

		_, err := c.doRequestWithRetry(req)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

const recordingReply = `{
  "recordings": [
    {
      "id": "rec-1",
      "title": "So What",
      "score": 100,
      "artist-credit": [{"name": "Miles Davis", "joinphrase": ""}],
      "releases": [
        {
          "id": "rel-1",
          "title": "Kind of Blue",
          "date": "1959-08-17",
          "artist-credit": [{"artist": {"name": "Miles Davis"}}],
          "media": [{"position": 1, "track": [{"number": "1", "position": 1}]}]
        }
      ]
    },
    {
      "id": "rec-2",
      "title": "So What (live)",
      "score": 70,
      "artist-credit": [{"name": "Miles Davis", "joinphrase": " & "}, {"name": "John Coltrane"}]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, _ := test.NewNullLogger()
	c := NewClient(config.MusicBrainzConfig{APIURL: srv.URL, CoverArtURL: "https://caa.test"}, srv.Client(), log)
	c.interval = 0
	return c
}

func TestSearchRecordings(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording" {
			t.Errorf("path = %q, want /recording", r.URL.Path)
		}
		query = r.URL.Query().Get("query")
		fmt.Fprint(w, recordingReply)
	})

	hits, err := c.SearchRecordings(context.Background(), "Miles Davis", "So What", "")
	if err != nil {
		t.Fatalf("SearchRecordings() error = %v", err)
	}

	if query != `recording:"So What" AND artist:"Miles Davis"` {
		t.Errorf("query = %q", query)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	want := Recording{
		ID:          "rec-1",
		Title:       "So What",
		Artist:      "Miles Davis",
		Album:       "Kind of Blue",
		AlbumArtist: "Miles Davis",
		ReleaseID:   "rel-1",
		Track:       1,
		Year:        1959,
		Score:       100,
	}
	if hits[0] != want {
		t.Errorf("hits[0] = %+v\nwant %+v", hits[0], want)
	}
	if hits[1].Artist != "Miles Davis & John Coltrane" || hits[1].ReleaseID != "" {
		t.Errorf("hits[1] = %+v", hits[1])
	}
}

func TestLookup(t *testing.T) {
	var queries []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		if strings.Contains(q, "release:") {
			fmt.Fprint(w, `{"recordings": []}`)
			return
		}
		fmt.Fprint(w, recordingReply)
	})

	rec := track.New("/music/so-what.flac")
	rec.Artist = "Miles Davis"
	rec.Title = "So What"
	rec.Album = "Unknown Album"

	hit, err := c.Lookup(context.Background(), rec)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(queries) != 2 {
		t.Errorf("queries = %v, want a retry without the album", queries)
	}

	fetched := hit.Record(rec.Path)
	if fetched.Album != "Kind of Blue" || fetched.Year != 1959 || fetched.Track != 1 || fetched.Path != rec.Path {
		t.Errorf("Record() = %+v", fetched)
	}
}

func TestLookup_LowScore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"recordings": [{"id": "x", "title": "Other", "score": 40}]}`)
	})

	rec := track.New("/a.mp3")
	rec.Title = "So What"
	if _, err := c.Lookup(context.Background(), rec); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Lookup() error = %v, want ErrNoMatch", err)
	}
}

func TestSearch_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad query", http.StatusBadRequest)
	})

	_, err := c.SearchRecordings(context.Background(), "a", "b", "")
	if err == nil || !strings.Contains(err.Error(), "API status 400") {
		t.Errorf("err = %v, want API status 400", err)
	}
}

func TestCoverProvider_Albums(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release" {
			t.Errorf("path = %q, want /release", r.URL.Path)
		}
		fmt.Fprint(w, `{"releases": [
			{"id": "rel-1", "title": "Kind of Blue (Legacy Edition)", "score": 100, "artist-credit": [{"name": "Miles Davis"}]},
			{"id": "rel-2", "title": "Kind of Blue", "score": 95, "artist-credit": [{"name": "Miles Davis"}]}
		]}`)
	})
	p := NewCoverProvider(c)

	results, err := p.Search(context.Background(), "Miles Davis", "Kind of Blue", "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	first := results[0]
	if first.ImageURL != "https://caa.test/release/rel-1/front-1200" || first.Width != 1200 || first.Number != 1 {
		t.Errorf("results[0] = %+v", first)
	}
	if first.Album != "Kind of Blue" {
		t.Errorf("album = %q, want edition suffix removed", first.Album)
	}
	if results[3].Number != 2 || results[3].Width != 500 {
		t.Errorf("results[3] = %+v", results[3])
	}
}

func TestCoverProvider_ByTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, recordingReply)
	})
	p := NewCoverProvider(c)

	results, err := p.Search(context.Background(), "Miles Davis", "", "So What")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 || results[0].ImageURL != "https://caa.test/release/rel-1/front-1200" {
		t.Errorf("results = %+v", results)
	}

	if results, _ := p.Search(context.Background(), "", "", ""); results != nil {
		t.Error("empty search should return nothing")
	}
}
