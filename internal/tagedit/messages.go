package tagedit

import (
	"github.com/llehouerou/tagdeck/internal/track"
)

// Token correlates an asynchronous completion with the session and the
// request that started it.
type Token struct {
	Session    uint64
	Generation uint64
}

// BatchLoadedMsg is sent when the files of a LoadBatch call have been read.
type BatchLoadedMsg struct {
	Token
	Records []track.Record
	Skipped []string // unreadable or invalid files
}

// FileSavedMsg is sent when one file of a commit has been written.
type FileSavedMsg struct {
	Token
	Index  int
	Path   string
	Record track.Record
	Err    error
}

// CatalogUpdatedMsg is sent when saved records have been upserted into the
// catalog.
type CatalogUpdatedMsg struct {
	Token
	Paths []string
	Err   error
}

// StatisticsResetMsg is sent when the catalog statistics of an entry have
// been reset.
type StatisticsResetMsg struct {
	Token
	Index int
	ID    int64
	Err   error
}

// CoverArtSavedMsg is sent when a manual cover has been stored for an album.
type CoverArtSavedMsg struct {
	Token
	AlbumArtist string
	Album       string
	URL         string
	Err         error
}

// LoadFinishedMsg tells the owner of the session that a batch was loaded.
type LoadFinishedMsg struct {
	Session uint64
	State   State
	Count   int
	Skipped []string
}

// FailedFile is a file that could not be written.
type FailedFile struct {
	Path  string
	Error string
}

// CommitFinishedMsg tells the owner of the session that every write of a
// commit has completed. It is sent exactly once per commit.
type CommitFinishedMsg struct {
	Session uint64
	Saved   []string
	Failed  []FailedFile
	// Err joins the write errors, nil when every file was written.
	Err error
	// Upserting is set when a CatalogUpdatedMsg for the written catalog
	// tracks follows this message.
	Upserting bool
}
