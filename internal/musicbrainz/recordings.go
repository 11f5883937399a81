package musicbrainz

import (
	"cmp"
	"context"
	"errors"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tagdeck/internal/track"
)

// MinScore is the lowest search score Lookup accepts.
const MinScore = 90

var ErrNoMatch = errors.New("no matching recording")

// SearchRecordings returns recordings matching artist, title and optionally
// album, best score first. A recording on several releases yields one hit
// per release.
func (c *Client) SearchRecordings(ctx context.Context, artist, title, album string) ([]Recording, error) {
	query := buildQuery(
		[2]string{"recording", title},
		[2]string{"artist", artist},
		[2]string{"release", album},
	)
	if query == "" {
		return nil, nil
	}

	var resp recordingSearchResponse
	if err := c.search(ctx, "recording", query, &resp); err != nil {
		return nil, err
	}

	var out []Recording
	for _, r := range resp.Recordings {
		base := Recording{
			ID:     r.ID,
			Title:  r.Title,
			Artist: extractArtist(r.ArtistCredit),
			Score:  r.Score,
		}
		if len(r.Releases) == 0 {
			out = append(out, base)
			continue
		}
		for _, rel := range r.Releases {
			hit := base
			hit.ReleaseID = rel.ID
			hit.Album = rel.Title
			hit.AlbumArtist = extractArtist(rel.ArtistCredit)
			hit.Year = extractYear(rel.Date)
			hit.Track = trackPosition(rel.Media)
			out = append(out, hit)
		}
	}

	slices.SortStableFunc(out, func(a, b Recording) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out, nil
}

func trackPosition(media []medium) int {
	for _, m := range media {
		for _, t := range m.Tracks {
			if t.Position > 0 {
				return t.Position
			}
		}
	}
	return 0
}

// Lookup returns the best recording for rec, preferring hits on the
// record's album. Hits scoring below MinScore are ignored.
func (c *Client) Lookup(ctx context.Context, rec track.Record) (Recording, error) {
	hits, err := c.SearchRecordings(ctx, rec.Artist, rec.Title, rec.Album)
	if err != nil {
		return Recording{}, err
	}
	if len(hits) == 0 && rec.Album != "" {
		c.log.WithField("path", rec.Path).Debug("no recording on album, searching without it")
		hits, err = c.SearchRecordings(ctx, rec.Artist, rec.Title, "")
		if err != nil {
			return Recording{}, err
		}
	}

	if len(hits) == 0 || hits[0].Score < MinScore {
		return Recording{}, ErrNoMatch
	}
	return hits[0], nil
}

// Record returns a record for path holding the fetched tags.
func (r Recording) Record(path string) track.Record {
	rec := track.New(path)
	rec.Title = r.Title
	rec.Artist = r.Artist
	rec.Album = r.Album
	rec.Track = r.Track
	rec.Year = r.Year
	return rec
}

// LookupFinishedMsg carries the result of LookupAsync.
type LookupFinishedMsg struct {
	Path      string
	Recording Recording
	Err       error
}

// LookupAsync returns a command looking up the recording of rec.
func (c *Client) LookupAsync(ctx context.Context, rec track.Record) tea.Cmd {
	return func() tea.Msg {
		hit, err := c.Lookup(ctx, rec)
		return LookupFinishedMsg{Path: rec.Path, Recording: hit, Err: err}
	}
}
