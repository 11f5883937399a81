package tidal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/track"
)

const (
	providerName    = "Tidal"
	providerQuality = 2.5
	searchLimit     = 10
)

var coverSizes = []int{1280, 750, 640}

// CoverProvider searches Tidal albums and tracks for cover images.
type CoverProvider struct {
	*BaseRequest
}

func NewCoverProvider(service *Service, client *http.Client, log logrus.FieldLogger) *CoverProvider {
	return &CoverProvider{BaseRequest: NewBaseRequest(service, client, log)}
}

func (p *CoverProvider) Name() string        { return providerName }
func (p *CoverProvider) Quality() float64    { return providerQuality }
func (p *CoverProvider) Authenticated() bool { return p.service.Authenticated() }

// Search looks up tracks when only a title is known and albums otherwise.
func (p *CoverProvider) Search(ctx context.Context, artist, album, title string) ([]coverart.Result, error) {
	if !p.Authenticated() {
		return nil, coverart.ErrNotAuthenticated
	}
	if artist == "" && album == "" && title == "" {
		return nil, nil
	}

	resource, query := searchQuery(artist, album, title)
	data, err := p.Get(ctx, resource, []Param{
		{Key: "query", Value: query},
		{Key: "limit", Value: strconv.Itoa(searchLimit)},
	})
	if err != nil {
		return nil, fmt.Errorf("tidal: %w", err)
	}

	obj, err := ExtractJSONObj(data)
	if err != nil {
		return nil, fmt.Errorf("tidal: %w", err)
	}
	items, err := ExtractItems(obj)
	if err != nil {
		return nil, fmt.Errorf("tidal: %w", err)
	}

	return p.parseItems(items), nil
}

func searchQuery(artist, album, title string) (resource, query string) {
	if album == "" && title != "" {
		return "search/tracks", joinNonEmpty(artist, title)
	}
	return "search/albums", joinNonEmpty(artist, album)
}

type searchArtist struct {
	Name *string `json:"name"`
}

type searchAlbum struct {
	Title *string `json:"title"`
	Cover *string `json:"cover"`
}

type searchItem struct {
	Artist json.RawMessage `json:"artist"`
	Album  json.RawMessage `json:"album"`
	searchAlbum
}

var (
	errItemNotObject   = errors.New("items array item is not a object")
	errMissingArtist   = errors.New("items array item is missing artist")
	errArtistNotObject = errors.New("items array item artist is not a object")
	errMissingName     = errors.New("items array item artist is missing name")
	errAlbumNotObject  = errors.New("items array item album is not a object")
	errMissingCover    = errors.New("items array item album is missing title or cover")
)

// parseItems turns search items into results. Track items carry their album
// in an "album" object, album items are the album. Invalid items are logged
// and skipped.
func (p *CoverProvider) parseItems(items []json.RawMessage) []coverart.Result {
	var results []coverart.Result
	number := 0
	for _, raw := range items {
		artist, album, cover, err := parseItem(raw)
		if err != nil {
			p.log.WithError(err).WithField("item", string(raw)).Error("invalid json reply")
			continue
		}

		number++
		for _, size := range coverSizes {
			results = append(results, coverart.Result{
				Provider: providerName,
				Artist:   artist,
				Album:    track.AlbumRemoveDiscMisc(album),
				ImageURL: fmt.Sprintf("%s/images/%s/%dx%d.jpg", p.service.ResourcesURL(), cover, size, size),
				Width:    size,
				Height:   size,
				Number:   number,
			})
		}
	}
	return results
}

func parseItem(raw json.RawMessage) (artist, album, cover string, err error) {
	var item searchItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", "", "", errItemNotObject
	}

	if len(item.Artist) == 0 {
		return "", "", "", errMissingArtist
	}
	var a searchArtist
	if err := json.Unmarshal(item.Artist, &a); err != nil {
		return "", "", "", errArtistNotObject
	}
	if a.Name == nil {
		return "", "", "", errMissingName
	}

	al := item.searchAlbum
	if len(item.Album) > 0 {
		al = searchAlbum{}
		if err := json.Unmarshal(item.Album, &al); err != nil {
			return "", "", "", errAlbumNotObject
		}
	}
	if al.Title == nil || al.Cover == nil {
		return "", "", "", errMissingCover
	}

	return *a.Name, *al.Title, strings.ReplaceAll(*al.Cover, "-", "/"), nil
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}
