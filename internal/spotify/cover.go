// Package spotify searches the Spotify Web API for cover art.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/config"
	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/track"
)

const (
	providerName    = "Spotify"
	providerQuality = 2.5
	searchLimit     = 10
	maxReplySize    = 4 << 20
)

// CoverProvider searches Spotify albums and tracks for cover images.
type CoverProvider struct {
	cfg    config.SpotifyConfig
	client *http.Client
	log    logrus.FieldLogger
}

func NewCoverProvider(cfg config.SpotifyConfig, client *http.Client, log logrus.FieldLogger) *CoverProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &CoverProvider{cfg: cfg, client: client, log: log.WithField("service", "spotify")}
}

func (p *CoverProvider) Name() string        { return providerName }
func (p *CoverProvider) Quality() float64    { return providerQuality }
func (p *CoverProvider) Authenticated() bool { return p.cfg.AccessToken != "" }

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type artist struct {
	Name string `json:"name"`
}

type album struct {
	Name    string   `json:"name"`
	Artists []artist `json:"artists"`
	Images  []image  `json:"images"`
}

type trackItem struct {
	Album album `json:"album"`
}

type searchReply struct {
	Albums *struct {
		Items []album `json:"items"`
	} `json:"albums"`
	Tracks *struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
	Error *struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search looks up tracks when only a title is known and albums otherwise.
func (p *CoverProvider) Search(ctx context.Context, artistName, albumName, title string) ([]coverart.Result, error) {
	if !p.Authenticated() {
		return nil, coverart.ErrNotAuthenticated
	}
	if artistName == "" && albumName == "" && title == "" {
		return nil, nil
	}

	kind, query := "album", strings.TrimSpace(artistName+" "+albumName)
	if albumName == "" && title != "" {
		kind, query = "track", strings.TrimSpace(artistName+" "+title)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("limit", strconv.Itoa(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("spotify: %w", err)
	}

	var reply searchReply
	if err := json.Unmarshal(data, &reply); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("spotify: received HTTP code %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("spotify: decode reply: %w", err)
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("spotify: %s (%d)", reply.Error.Message, reply.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify: received HTTP code %d", resp.StatusCode)
	}

	var albums []album
	switch {
	case reply.Albums != nil:
		albums = reply.Albums.Items
	case reply.Tracks != nil:
		for _, t := range reply.Tracks.Items {
			albums = append(albums, t.Album)
		}
	default:
		p.log.WithField("kind", kind).Error("json reply is missing items")
		return nil, nil
	}

	var results []coverart.Result
	number := 0
	for _, a := range albums {
		if len(a.Artists) == 0 || a.Name == "" || len(a.Images) == 0 {
			p.log.WithField("album", a.Name).Debug("skipping incomplete album")
			continue
		}
		number++
		for _, img := range a.Images {
			if img.URL == "" {
				continue
			}
			results = append(results, coverart.Result{
				Provider: providerName,
				Artist:   a.Artists[0].Name,
				Album:    track.AlbumRemoveDiscMisc(a.Name),
				ImageURL: img.URL,
				Width:    img.Width,
				Height:   img.Height,
				Number:   number,
			})
		}
	}
	return results, nil
}
