package tidal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tagdeck/internal/config"
)

type captured struct {
	path  string
	query string
	auth  string
}

func newTestProvider(t *testing.T, token string, handler func(w http.ResponseWriter, r *http.Request)) (*CoverProvider, *captured) {
	t.Helper()

	var c captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.query = r.URL.RawQuery
		c.auth = r.Header.Get("Authorization")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	service := NewService(config.TidalConfig{
		APIURL:       srv.URL + "/v1",
		ResourcesURL: "https://resources.example",
		CountryCode:  "FR",
		AccessToken:  token,
	})
	log, _ := test.NewNullLogger()
	return NewCoverProvider(service, srv.Client(), log), &c
}

func reply(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}
}

func TestSearch_Albums(t *testing.T) {
	p, c := newTestProvider(t, "tok", reply(`{"items":[
		{"title":"Help! (Disc 1)","cover":"ab-cd-ef","artist":{"name":"The Beatles"}},
		{"title":"No Cover","artist":{"name":"X"}},
		{"title":"Abbey Road","cover":"12-34","artist":{"name":"The Beatles"}}
	]}`))

	results, err := p.Search(context.Background(), "The Beatles", "Help!", "Yesterday")
	require.NoError(t, err)

	assert.Equal(t, "/v1/search/albums", c.path)
	assert.Equal(t, "query=The%20Beatles%20Help%21&limit=10&countryCode=FR", c.query)
	assert.Equal(t, "Bearer tok", c.auth)

	require.Len(t, results, 6)
	first := results[0]
	assert.Equal(t, "Tidal", first.Provider)
	assert.Equal(t, "The Beatles", first.Artist)
	assert.Equal(t, "Help!", first.Album)
	assert.Equal(t, "https://resources.example/images/ab/cd/ef/1280x1280.jpg", first.ImageURL)
	assert.Equal(t, 1280, first.Width)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "https://resources.example/images/ab/cd/ef/640x640.jpg", results[2].ImageURL)
	assert.Equal(t, 2, results[3].Number, "skipped items do not consume a number")
	assert.Equal(t, "Abbey Road", results[3].Album)
}

func TestSearch_TracksWhenAlbumEmpty(t *testing.T) {
	p, c := newTestProvider(t, "tok", reply(`{"items":[
		{"title":"Yesterday","artist":{"name":"The Beatles"},"album":{"title":"Help!","cover":"aa-bb"}}
	]}`))

	results, err := p.Search(context.Background(), "The Beatles", "", "Yesterday")
	require.NoError(t, err)

	assert.Equal(t, "/v1/search/tracks", c.path)
	assert.True(t, strings.HasPrefix(c.query, "query=The%20Beatles%20Yesterday&"))
	require.Len(t, results, 3)
	assert.Equal(t, "Help!", results[0].Album)
	assert.Equal(t, "https://resources.example/images/aa/bb/750x750.jpg", results[1].ImageURL)
}

func TestSearch_NothingToSearch(t *testing.T) {
	called := false
	p, _ := newTestProvider(t, "tok", func(w http.ResponseWriter, r *http.Request) { called = true })

	results, err := p.Search(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestSearch_NotAuthenticated(t *testing.T) {
	p, _ := newTestProvider(t, "", reply(`{}`))
	assert.False(t, p.Authenticated())

	_, err := p.Search(context.Background(), "a", "b", "")
	assert.Error(t, err)
}

func TestSearch_InvalidSessionLogsOut(t *testing.T) {
	p, _ := newTestProvider(t, "expired", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":401,"subStatus":6001,"userMessage":"The token has expired."}`)
	})

	_, err := p.Search(context.Background(), "a", "b", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The token has expired. (401) (6001)")
	assert.False(t, p.Authenticated())
}

func TestSearch_MissingItems(t *testing.T) {
	p, _ := newTestProvider(t, "tok", reply(`{"totalNumberOfItems":0}`))

	_, err := p.Search(context.Background(), "a", "b", "")
	assert.ErrorIs(t, err, ErrMissingItems)
}

func TestGetReplyData(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{name: "ok", status: 200, body: `{"a":1}`, want: `{"a":1}`},
		{name: "tidal error", status: 404, body: `{"status":404,"subStatus":2001,"userMessage":"Not found"}`, wantErr: "Not found (404) (2001)"},
		{name: "plain error", status: 500, body: `oops`, wantErr: "Received HTTP code 500"},
		{name: "json without message", status: 403, body: `{"status":403}`, wantErr: "Received HTTP code 403"},
	}

	b := NewBaseRequest(NewService(config.TidalConfig{AccessToken: "t"}), nil, logrus.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			data, err := b.GetReplyData(resp)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestCreateRequest_ClientIDWithoutToken(t *testing.T) {
	b := NewBaseRequest(NewService(config.TidalConfig{APIURL: "https://api.example/v1", ClientID: "cid", CountryCode: "US"}), nil, logrus.New())

	req, err := b.CreateRequest(context.Background(), "search/albums", []Param{{Key: "query", Value: "a&b"}})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example/v1/search/albums?query=a%26b&countryCode=US", req.URL.String())
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "cid", req.Header.Get("X-Tidal-Token"))
}

func TestExtractJSONObj(t *testing.T) {
	_, err := ExtractJSONObj(nil)
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = ExtractJSONObj([]byte(`[1,2]`))
	assert.Error(t, err)

	obj, err := ExtractJSONObj([]byte(`{"items":[{"a":1}]}`))
	require.NoError(t, err)
	items, err := ExtractItems(obj)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestErrorsToHTML(t *testing.T) {
	assert.Equal(t, "a<br />b<br />", ErrorsToHTML([]string{"a", "b"}))
	assert.Empty(t, ErrorsToHTML(nil))
}
