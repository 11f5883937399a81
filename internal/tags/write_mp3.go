package tags

import (
	"errors"
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
)

// writeMP3Tags writes ID3v2 tags to an MP3 file.
func writeMP3Tags(path string, t *Tag) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	// Use ID3v2.4 with UTF-8 for better Unicode support
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Described comments (iTunNORM, ...) belong to other tools
	var keptComments []id3v2.CommentFrame
	for _, frame := range tag.GetFrames(frameComment) {
		if cf, ok := frame.(id3v2.CommentFrame); ok && cf.Description != "" {
			keptComments = append(keptComments, cf)
		}
	}

	existingDate := getID3TextFrame(tag, frameRecorded)
	for _, id := range ownedMP3Frames {
		tag.DeleteFrames(id)
	}

	addText := func(id, value string) {
		if value != "" {
			tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
		}
	}

	addText(frameTitle, t.Title)
	addText(frameArtist, t.Artist)
	addText(frameAlbum, t.Album)
	addText(frameAlbumArtist, t.AlbumArtist)
	addText(frameComposer, t.Composer)
	addText(framePerformer, t.Performer)
	addText(frameGrouping, t.Grouping)
	addText(frameGenre, t.Genre)
	addText(frameTrack, formatInt(t.TrackNumber))
	addText(frameDisc, formatInt(t.DiscNumber))
	addText(frameRecorded, dateForYear(existingDate, t.Year))
	addText(frameCompilation, formatFlag(t.Compilation))

	for _, cf := range keptComments {
		tag.AddCommentFrame(cf)
	}
	if t.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     t.Comment,
		})
	}
	if t.Lyrics != "" {
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Lyrics:   t.Lyrics,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}

	return nil
}

// stripID3v2Tag removes ID3v2 tags from an MP3 file.
// This is used to handle ID3v2.2 tags which the id3v2 library doesn't support.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// Check for ID3v2 header (must have at least 10 bytes for header)
	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil
	}

	// Parse tag size from bytes 6-9 (synchsafe integer: each byte uses only 7 bits)
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10

	// Footer flag, ID3v2.4 only
	if data[5]&0x10 != 0 {
		tagSize += 10
	}

	if tagSize >= len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	if err := os.WriteFile(path, data[tagSize:], info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
