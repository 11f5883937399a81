package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTagWrite,
			err:      nil,
			expected: "",
		},
		{
			name:     "catalog operation",
			op:       OpCatalogUpsert,
			err:      errors.New("database is locked"),
			expected: "Failed to update catalog: database is locked",
		},
		{
			name:     "statistics operation",
			op:       OpStatisticsReset,
			err:      errors.New("track not found"),
			expected: "Failed to reset play statistics: track not found",
		},
		{
			name:     "cover operation",
			op:       OpCoverSearch,
			err:      errors.New("network error"),
			expected: "Failed to search cover art: network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTagWrite,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpTagWrite,
			context:  "/music/song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to write metadata to '/music/song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpTagRead,
			context:  "",
			err:      errors.New("unsupported format"),
			expected: "Failed to read metadata from: unsupported format",
		},
		{
			name:     "cover save with album context",
			op:       OpCoverSave,
			context:  "Artist - Album",
			err:      errors.New("read-only filesystem"),
			expected: "Failed to save cover art 'Artist - Album': read-only filesystem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpTagRead, OpTagWrite,
		OpCatalogOpen, OpCatalogUpsert, OpCatalogLookup, OpCatalogFilter,
		OpStatisticsReset, OpCatalogAddTracks,
		OpCoverSave, OpCoverLoad, OpCoverSearch, OpCoverProvide,
		OpConfigLoad, OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
