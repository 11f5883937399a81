package tags

import (
	"github.com/bogem/id3v2/v2"
)

// ID3v2 frames owned by the editor.
const (
	frameTitle       = "TIT2"
	frameArtist      = "TPE1"
	frameAlbum       = "TALB"
	frameAlbumArtist = "TPE2"
	frameComposer    = "TCOM"
	framePerformer   = "TOPE"
	frameGrouping    = "TIT1"
	frameGenre       = "TCON"
	frameComment     = "COMM"
	frameLyrics      = "USLT"
	frameTrack       = "TRCK"
	frameDisc        = "TPOS"
	frameRecorded    = "TDRC"
	frameYear        = "TYER"
	frameCompilation = "TCMP"
)

// ownedMP3Frames lists every frame rewritten on save.
var ownedMP3Frames = []string{
	frameTitle, frameArtist, frameAlbum, frameAlbumArtist, frameComposer,
	framePerformer, frameGrouping, frameGenre, frameComment, frameLyrics,
	frameTrack, frameDisc, frameRecorded, frameYear, frameCompilation,
}

// readMP3ExtendedTags reads the frames dhowden/tag does not expose.
func readMP3ExtendedTags(path string, t *Tag) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer id3tag.Close()

	t.Performer = getID3TextFrame(id3tag, framePerformer)
	t.Grouping = getID3TextFrame(id3tag, frameGrouping)
	t.Compilation = parseFlag(getID3TextFrame(id3tag, frameCompilation))
}

// readMP3WithID3v2Fallback reads MP3 metadata using only the id3v2 library.
// This is used as a fallback when dhowden/tag fails (e.g., on some UTF-16 encoded tags).
func readMP3WithID3v2Fallback(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	trackNum, _ := parseNumberPair(getID3TextFrame(id3tag, frameTrack))
	discNum, _ := parseNumberPair(getID3TextFrame(id3tag, frameDisc))

	year := parseYear(getID3TextFrame(id3tag, frameRecorded))
	if year == 0 {
		year = parseYear(id3tag.Year())
	}

	t := &Tag{
		Path:        path,
		Title:       id3tag.Title(),
		Artist:      id3tag.Artist(),
		Album:       id3tag.Album(),
		AlbumArtist: getID3TextFrame(id3tag, frameAlbumArtist),
		Composer:    getID3TextFrame(id3tag, frameComposer),
		Performer:   getID3TextFrame(id3tag, framePerformer),
		Grouping:    getID3TextFrame(id3tag, frameGrouping),
		Genre:       id3tag.Genre(),
		Comment:     getID3Comment(id3tag),
		Lyrics:      getID3Lyrics(id3tag),
		TrackNumber: trackNum,
		DiscNumber:  discNum,
		Year:        year,
		Compilation: parseFlag(getID3TextFrame(id3tag, frameCompilation)),
		HasCover:    len(id3tag.GetFrames(id3tag.CommonID("Attached picture"))) > 0,
	}

	return t, nil
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// getID3Comment returns the first comment frame without a description.
func getID3Comment(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames(frameComment) {
		if cf, ok := frame.(id3v2.CommentFrame); ok && cf.Description == "" {
			return cf.Text
		}
	}
	return ""
}

func getID3Lyrics(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames(frameLyrics) {
		if uslf, ok := frame.(id3v2.UnsynchronisedLyricsFrame); ok {
			return uslf.Lyrics
		}
	}
	return ""
}
