package musicbrainz

import (
	"context"
	"fmt"

	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/track"
)

const (
	providerName    = "MusicBrainz"
	providerQuality = 1.5
)

// Cover Art Archive thumbnail sizes, largest first.
var coverSizes = []int{1200, 500}

// CoverProvider finds release covers on the Cover Art Archive.
type CoverProvider struct {
	client *Client
}

func NewCoverProvider(client *Client) *CoverProvider {
	return &CoverProvider{client: client}
}

func (p *CoverProvider) Name() string     { return providerName }
func (p *CoverProvider) Quality() float64 { return providerQuality }

// Authenticated is always true: the services are public.
func (p *CoverProvider) Authenticated() bool { return true }

// Search looks up releases by album, or by recording when only a title is
// known, and returns their front covers.
func (p *CoverProvider) Search(ctx context.Context, artist, album, title string) ([]coverart.Result, error) {
	var releases []Release
	switch {
	case album != "":
		var err error
		releases, err = p.client.SearchReleases(ctx, artist, album)
		if err != nil {
			return nil, fmt.Errorf("musicbrainz: %w", err)
		}
	case title != "":
		hits, err := p.client.SearchRecordings(ctx, artist, title, "")
		if err != nil {
			return nil, fmt.Errorf("musicbrainz: %w", err)
		}
		for _, h := range hits {
			if h.ReleaseID != "" {
				releases = append(releases, Release{ID: h.ReleaseID, Title: h.Album, Artist: h.AlbumArtist})
			}
		}
	default:
		return nil, nil
	}

	var results []coverart.Result
	for i, rel := range releases {
		for _, size := range coverSizes {
			results = append(results, coverart.Result{
				Provider: providerName,
				Artist:   rel.Artist,
				Album:    track.AlbumRemoveDiscMisc(rel.Title),
				ImageURL: fmt.Sprintf("%s/release/%s/front-%d", p.client.cfg.CoverArtURL, rel.ID, size),
				Width:    size,
				Height:   size,
				Number:   i + 1,
			})
		}
	}
	return results, nil
}

// SearchReleases returns releases matching artist and album, best score
// first.
func (c *Client) SearchReleases(ctx context.Context, artist, album string) ([]Release, error) {
	var resp releaseSearchResponse
	query := buildQuery([2]string{"release", album}, [2]string{"artist", artist})
	if err := c.search(ctx, "release", query, &resp); err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		releases = append(releases, Release{
			ID:     r.ID,
			Title:  r.Title,
			Artist: extractArtist(r.ArtistCredit),
			Year:   extractYear(r.Date),
			Score:  r.Score,
		})
	}
	return releases, nil
}
