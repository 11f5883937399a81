package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
)

// Common cover art filenames to look for in album folders.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
	"artwork.jpg", "artwork.jpeg", "artwork.png",
}

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// ExtractEmbeddedArt reads embedded cover art from an audio file's metadata.
func ExtractEmbeddedArt(path string) (data []byte, mimeType string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if strings.EqualFold(filepath.Ext(path), ExtFLAC) {
			return extractFLACPicture(path)
		}
		return nil, "", err
	}

	pic := m.Picture()
	if pic == nil {
		return nil, "", nil
	}

	return pic.Data, pic.MIMEType, nil
}

// extractFLACPicture reads the front cover block of a FLAC file that
// dhowden/tag could not parse.
func extractFLACPicture(path string) ([]byte, string, error) {
	f, _, err := parseFLACWithID3Support(path)
	if err != nil || f == nil {
		return nil, "", err
	}

	var fallback *flacpicture.MetadataBlockPicture
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return pic.ImageData, pic.MIME, nil
		}
		if fallback == nil {
			fallback = pic
		}
	}
	if fallback != nil {
		return fallback.ImageData, fallback.MIME, nil
	}
	return nil, "", nil
}

// FindFolderArtPath returns the path of the first cover image found in dir,
// or an empty string.
func FindFolderArtPath(dir string) string {
	for _, filename := range coverArtFilenames {
		for _, name := range []string{filename, strings.ToUpper(filename)} {
			imgPath := filepath.Join(dir, name)
			if info, err := os.Stat(imgPath); err == nil && !info.IsDir() {
				return imgPath
			}
		}
	}
	return ""
}

// MimeTypeFromExt guesses an image MIME type from a file extension.
func MimeTypeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return mimeJPEG
	case ".png":
		return mimePNG
	default:
		return "application/octet-stream"
	}
}
