package tags

import (
	"os"
	"path/filepath"
	"testing"
)

var jpegData = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestFindFolderArtPath(t *testing.T) {
	dir := t.TempDir()
	createTestMP3(t, dir, &Tag{Title: "Test"})

	want := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(want, jpegData, 0o600); err != nil {
		t.Fatalf("create cover.jpg: %v", err)
	}

	if got := FindFolderArtPath(dir); got != want {
		t.Errorf("FindFolderArtPath() = %q, want %q", got, want)
	}
	if got := MimeTypeFromExt(want); got != mimeJPEG {
		t.Errorf("MimeTypeFromExt() = %q, want %q", got, mimeJPEG)
	}
}

func TestFindFolderArtPath_Uppercase(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "FOLDER.PNG")
	if err := os.WriteFile(want, []byte{0x89, 'P', 'N', 'G'}, 0o600); err != nil {
		t.Fatal(err)
	}

	got := FindFolderArtPath(dir)
	if got != want {
		t.Errorf("FindFolderArtPath() = %q, want %q", got, want)
	}
	if mime := MimeTypeFromExt(got); mime != mimePNG {
		t.Errorf("MimeTypeFromExt() = %q, want %q", mime, mimePNG)
	}
}

func TestExtractEmbeddedArt_NoArt(t *testing.T) {
	path := createTestMP3(t, t.TempDir(), &Tag{Title: "Test"})

	data, mimeType, err := ExtractEmbeddedArt(path)
	if err != nil {
		t.Fatalf("ExtractEmbeddedArt() error: %v", err)
	}
	if data != nil || mimeType != "" {
		t.Errorf("ExtractEmbeddedArt() = (%d bytes, %q), want nothing", len(data), mimeType)
	}
}

func TestFindFolderArtPath_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "cover.jpg"), 0o700); err != nil {
		t.Fatal(err)
	}
	if got := FindFolderArtPath(dir); got != "" {
		t.Errorf("FindFolderArtPath() = %q, want empty", got)
	}
}
