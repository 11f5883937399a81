package tags

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// createTestMP3 creates a minimal MP3 file with optional tags.
func createTestMP3(t *testing.T, dir string, tags *Tag) string {
	t.Helper()
	path := filepath.Join(dir, "test.mp3")

	// Create minimal MP3 frame (MPEG1 Layer3, 128kbps, 44100Hz, stereo)
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}

	if tags != nil {
		if err := writeMP3Tags(path, tags); err != nil {
			t.Fatalf("failed to write MP3 tags: %v", err)
		}
	}

	return path
}

// createWithFFmpeg creates a one second sine file with the given codec.
func createWithFFmpeg(t *testing.T, dir, name, codec string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", codec, path)
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	return path
}

func fullTag() *Tag {
	return &Tag{
		Title:       "Song",
		Artist:      "Artist",
		Album:       "Album",
		AlbumArtist: "Album Artist",
		Composer:    "Composer",
		Performer:   "Performer",
		Grouping:    "Grouping",
		Genre:       "Jazz",
		Comment:     "A comment",
		Lyrics:      "La la la",
		TrackNumber: 3,
		DiscNumber:  2,
		Year:        1999,
		Compilation: true,
	}
}

// verifyTagsMatch compares the editable fields of two tags.
func verifyTagsMatch(t *testing.T, got, want *Tag) {
	t.Helper()
	assertEqual(t, "Title", got.Title, want.Title)
	assertEqual(t, "Artist", got.Artist, want.Artist)
	assertEqual(t, "Album", got.Album, want.Album)
	assertEqual(t, "AlbumArtist", got.AlbumArtist, want.AlbumArtist)
	assertEqual(t, "Composer", got.Composer, want.Composer)
	assertEqual(t, "Performer", got.Performer, want.Performer)
	assertEqual(t, "Grouping", got.Grouping, want.Grouping)
	assertEqual(t, "Genre", got.Genre, want.Genre)
	assertEqual(t, "Comment", got.Comment, want.Comment)
	assertEqual(t, "Lyrics", got.Lyrics, want.Lyrics)
	assertEqual(t, "TrackNumber", got.TrackNumber, want.TrackNumber)
	assertEqual(t, "DiscNumber", got.DiscNumber, want.DiscNumber)
	assertEqual(t, "Year", got.Year, want.Year)
	assertEqual(t, "Compilation", got.Compilation, want.Compilation)
}

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/music/a.mp3", true},
		{"/music/a.FLAC", true},
		{"/music/a.opus", true},
		{"/music/a.oga", true},
		{"/music/a.m4a", true},
		{"/music/cover.jpg", false},
		{"/music/noext", false},
	}
	for _, tt := range tests {
		if got := IsMusicFile(tt.path); got != tt.want {
			t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseNumberPair(t *testing.T) {
	tests := []struct {
		in         string
		num, total int
	}{
		{"", 0, 0},
		{"5", 5, 0},
		{"5/12", 5, 12},
		{" 7 / 9 ", 7, 9},
		{"x", 0, 0},
	}
	for _, tt := range tests {
		num, total := parseNumberPair(tt.in)
		if num != tt.num || total != tt.total {
			t.Errorf("parseNumberPair(%q) = (%d, %d), want (%d, %d)", tt.in, num, total, tt.num, tt.total)
		}
	}
}

func TestDateForYear(t *testing.T) {
	tests := []struct {
		existing string
		year     int
		want     string
	}{
		{"1999-05-03", 1999, "1999-05-03"},
		{"1999-05-03", 2001, "2001"},
		{"", 2001, "2001"},
		{"1999", 0, ""},
	}
	for _, tt := range tests {
		if got := dateForYear(tt.existing, tt.year); got != tt.want {
			t.Errorf("dateForYear(%q, %d) = %q, want %q", tt.existing, tt.year, got, tt.want)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", " yes "} {
		if !parseFlag(s) {
			t.Errorf("parseFlag(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "0", "false", "no"} {
		if parseFlag(s) {
			t.Errorf("parseFlag(%q) = true, want false", s)
		}
	}
}
