// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Tag operations
	OpTagRead  Op = "read metadata from"
	OpTagWrite Op = "write metadata to"

	// Catalog operations
	OpCatalogOpen      Op = "open catalog"
	OpCatalogUpsert    Op = "update catalog"
	OpCatalogLookup    Op = "look up catalog track"
	OpCatalogFilter    Op = "filter catalog"
	OpStatisticsReset  Op = "reset play statistics"
	OpCatalogAddTracks Op = "add tracks to catalog"

	// Cover art operations
	OpCoverSave    Op = "save cover art"
	OpCoverLoad    Op = "load cover art"
	OpCoverSearch  Op = "search cover art"
	OpCoverProvide Op = "query cover provider"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
