// Package coverart resolves the cover image of a track and searches cover
// providers for candidates. Both run as Bubble Tea commands; callers match
// the returned messages against the id they were issued with.
package coverart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/tags"
	"github.com/llehouerou/tagdeck/internal/track"
)

// maxImageSize bounds downloaded cover images.
const maxImageSize = 20 << 20

// Source tells where a resolved cover came from.
type Source int

const (
	SourceNone Source = iota
	SourceManuallyUnset
	SourceManual
	SourceEmbedded
	SourceAutomatic
	SourceFolder
)

func (s Source) String() string {
	switch s {
	case SourceManuallyUnset:
		return "manually unset"
	case SourceManual:
		return "manual"
	case SourceEmbedded:
		return "embedded"
	case SourceAutomatic:
		return "automatic"
	case SourceFolder:
		return "folder"
	default:
		return "none"
	}
}

// ArtResolvedMsg carries the result of ResolveArt. Image is nil when no cover
// was found.
type ArtResolvedMsg struct {
	ID        uint64
	Source    Source
	Location  string
	Image     []byte
	MIME      string
	Thumbnail image.Image
	Err       error
}

// Resolver loads cover images for tracks.
type Resolver struct {
	client    *http.Client
	thumbSize uint
	log       logrus.FieldLogger
}

// NewResolver creates a resolver. Remote covers are fetched with client.
func NewResolver(client *http.Client, thumbSize uint, log logrus.FieldLogger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{client: client, thumbSize: thumbSize, log: log}
}

// ResolveArt returns a command that loads the cover of rec. Lookup order is
// manual art, embedded art, automatic art, then images in the track folder.
// A manually unset cover resolves to no image.
func (r *Resolver) ResolveArt(id uint64, rec track.Record) tea.Cmd {
	return func() tea.Msg {
		msg := r.resolve(context.Background(), rec)
		msg.ID = id
		return msg
	}
}

func (r *Resolver) resolve(ctx context.Context, rec track.Record) ArtResolvedMsg {
	if rec.HasManuallyUnsetCover() {
		return ArtResolvedMsg{Source: SourceManuallyUnset}
	}

	if rec.ArtManual != "" {
		data, mime, err := r.load(ctx, rec.ArtManual)
		if err == nil && data != nil {
			return r.finish(SourceManual, rec.ArtManual, data, mime)
		}
		r.log.WithFields(logrus.Fields{"path": rec.Path, "art": rec.ArtManual}).
			WithError(err).Warn("manual cover could not be loaded")
	}

	if rec.Path != "" {
		data, mime, err := tags.ExtractEmbeddedArt(rec.Path)
		if err == nil && data != nil {
			return r.finish(SourceEmbedded, rec.Path, data, mime)
		}
	}

	if rec.ArtAutomatic != "" {
		data, mime, err := r.load(ctx, rec.ArtAutomatic)
		if err == nil && data != nil {
			return r.finish(SourceAutomatic, rec.ArtAutomatic, data, mime)
		}
		r.log.WithFields(logrus.Fields{"path": rec.Path, "art": rec.ArtAutomatic}).
			WithError(err).Debug("automatic cover could not be loaded")
	}

	if rec.Path != "" {
		if p := tags.FindFolderArtPath(filepath.Dir(rec.Path)); p != "" {
			data, mime, err := readLocal(p)
			if err == nil {
				return r.finish(SourceFolder, p, data, mime)
			}
		}
	}

	return ArtResolvedMsg{Source: SourceNone}
}

func (r *Resolver) finish(src Source, location string, data []byte, mime string) ArtResolvedMsg {
	msg := ArtResolvedMsg{Source: src, Location: location, Image: data, MIME: mime}
	thumb, err := Thumbnail(data, r.thumbSize)
	if err != nil {
		msg.Err = fmt.Errorf("decode cover: %w", err)
		return msg
	}
	msg.Thumbnail = thumb
	return msg
}

// load reads a cover from a local path, a file:// URL or an http(s) URL.
func (r *Resolver) load(ctx context.Context, location string) ([]byte, string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return readLocal(location)
	}

	switch u.Scheme {
	case "file":
		return readLocal(u.Path)
	case "http", "https":
		return r.fetch(ctx, location)
	default:
		return nil, "", fmt.Errorf("unsupported cover location %q", location)
	}
}

func readLocal(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, tags.MimeTypeFromExt(path), nil
}

func (r *Resolver) fetch(ctx context.Context, location string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

// ErrNoImage is returned by Thumbnail for empty input.
var ErrNoImage = errors.New("no image data")

// Thumbnail decodes data and scales it to fit in a size x size square,
// keeping the aspect ratio. A zero size returns the decoded image unscaled.
func Thumbnail(data []byte, size uint) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return img, nil
	}
	return resize.Thumbnail(size, size, img, resize.Lanczos3), nil
}
