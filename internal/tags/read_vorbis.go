package tags

import (
	"strings"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
	"go.senan.xyz/taglib"
)

// readWithTaglib reads FLAC, Ogg and M4A metadata using TagLib as fallback
// when dhowden/tag fails.
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tags := taglibTags(rawTags)

	t := &Tag{
		Path:        path,
		Title:       tags.get(taglib.Title),
		Artist:      tags.get(taglib.Artist),
		Album:       tags.get(taglib.Album),
		AlbumArtist: tags.get(taglib.AlbumArtist),
		Genre:       tags.get(taglib.Genre),
		TrackNumber: tags.number(taglib.TrackNumber),
		DiscNumber:  tags.number(taglib.DiscNumber),
	}
	applyTaglibExtended(tags, t)
	t.Composer = tags.get(keyComposer)
	t.Comment = tags.get(keyComment, "DESCRIPTION")
	t.Lyrics = tags.get(keyLyrics, "UNSYNCEDLYRICS")
	t.Year = tags.year()

	return t, nil
}

// readTaglibExtendedTags reads the keys dhowden/tag does not expose from an Ogg
// or M4A file.
func readTaglibExtendedTags(path string, t *Tag) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return
	}
	applyTaglibExtended(taglibTags(rawTags), t)
}

func applyTaglibExtended(tags taglibTags, t *Tag) {
	t.Performer = tags.get(keyPerformer)
	t.Grouping = tags.get(keyGrouping, "CONTENTGROUP")
	t.Compilation = tags.flag(keyCompilation)
}

// readFLACExtendedTags reads extended Vorbis comments from a FLAC file.
func readFLACExtendedTags(path string, t *Tag) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return
	}

	comments := flacComments(f)
	if comments == nil {
		return
	}

	t.Performer = comments.get(keyPerformer)
	t.Grouping = comments.get(keyGrouping, "CONTENTGROUP")
	t.Compilation = comments.flag(keyCompilation)
	if t.Year == 0 {
		t.Year = comments.year()
	}
}

// flacComments returns the Vorbis comments of a FLAC file keyed by upper-case
// field name, or nil when the file has no comment block.
func flacComments(f *goflac.File) taglibTags {
	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		block, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil
		}
		comments := make(taglibTags)
		for _, cmt := range block.Comments {
			key, value, ok := strings.Cut(cmt, "=")
			if !ok {
				continue
			}
			key = strings.ToUpper(key)
			comments[key] = append(comments[key], value)
		}
		return comments
	}
	return nil
}
