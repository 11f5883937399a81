package tags

import (
	"fmt"
	"strconv"

	"github.com/Sorrow446/go-mp4tag"
	"go.senan.xyz/taglib"
)

// writeM4ATags writes MP4/M4A tags. The iTunes atoms go-mp4tag models are
// written with it; composer, performer, grouping, comment, lyrics,
// compilation and every cleared field go through TagLib's property map.
func writeM4ATags(path string, t *Tag) error {
	if err := writeM4AAtoms(path, t); err != nil {
		return err
	}

	props := map[string][]string{
		keyComposer:    valueOrDelete(t.Composer),
		keyPerformer:   valueOrDelete(t.Performer),
		keyGrouping:    valueOrDelete(t.Grouping),
		keyComment:     valueOrDelete(t.Comment),
		keyLyrics:      valueOrDelete(t.Lyrics),
		keyCompilation: valueOrDelete(formatFlag(t.Compilation)),
	}
	cleared := map[string]string{
		taglib.Title:       t.Title,
		taglib.Artist:      t.Artist,
		taglib.Album:       t.Album,
		taglib.AlbumArtist: t.AlbumArtist,
		taglib.Genre:       t.Genre,
		taglib.TrackNumber: formatInt(t.TrackNumber),
		taglib.DiscNumber:  formatInt(t.DiscNumber),
		taglib.Date:        formatInt(t.Year),
	}
	for key, value := range cleared {
		if value == "" {
			props[key] = nil
		}
	}

	if err := taglib.WriteTags(path, props, 0); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}
	return nil
}

func writeM4AAtoms(path string, t *Tag) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	tags := &mp4tag.MP4Tags{
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		AlbumArtist: t.AlbumArtist,
		TrackNumber: safeInt16(t.TrackNumber),
		DiscNumber:  safeInt16(t.DiscNumber),
		CustomGenre: t.Genre,
	}
	if t.Year > 0 {
		tags.Date = strconv.Itoa(t.Year)
	}

	if err := mp4.Write(tags, nil); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// safeInt16 converts int to int16 with bounds checking.
func safeInt16(n int) int16 {
	if n > 32767 {
		return 32767
	}
	if n < -32768 {
		return -32768
	}
	return int16(n)
}
