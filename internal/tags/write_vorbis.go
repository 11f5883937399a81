package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// writeOggTags writes Vorbis comments to an Opus or Vorbis file using TagLib.
// Keys outside the editable set are preserved.
func writeOggTags(path string, t *Tag) error {
	existing, err := taglib.ReadTags(path)
	if err != nil {
		return fmt.Errorf("read tags: %w", err)
	}

	tags := make(map[string][]string)
	for _, field := range vorbisFields(t, taglibTags(existing).get(keyDate)) {
		tags[field.key] = valueOrDelete(field.value)
	}
	tags[keyYear] = nil

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}

// valueOrDelete maps an empty value to no values, which TagLib treats
// as a deletion.
func valueOrDelete(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
