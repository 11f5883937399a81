package tagedit

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// FieldChange is one modified field of an entry.
type FieldChange struct {
	Field   Field
	Before  string
	After   string
	Changes []diffmatchpatch.Diff
}

// EntryChanges lists the modified fields of one entry.
type EntryChanges struct {
	Index  int
	Path   string
	Fields []FieldChange
}

// Changes returns the pending edits of every modified entry, with a
// character diff of each field.
func (s *Session) Changes() []EntryChanges {
	dmp := diffmatchpatch.New()

	var out []EntryChanges
	for i := range s.entries {
		e := &s.entries[i]
		if !e.Modified() {
			continue
		}

		ec := EntryChanges{Index: i, Path: e.Original.Path}
		for _, f := range AllFields() {
			before, after := f.Get(&e.Original), f.Get(&e.Current)
			if before == after {
				continue
			}
			a, b := before.Display(), after.Display()
			diffs := dmp.DiffMain(a, b, false)
			diffs = dmp.DiffCleanupSemantic(diffs)
			ec.Fields = append(ec.Fields, FieldChange{Field: f, Before: a, After: b, Changes: diffs})
		}
		out = append(out, ec)
	}
	return out
}

// Similarity scores how close the edited values are to the originals, from
// 0 (everything rewritten) to 100 (no change).
func Similarity(changes []EntryChanges) float64 {
	dmp := diffmatchpatch.New()

	var charsTotal, charsDiff int
	for _, ec := range changes {
		for _, fc := range ec.Fields {
			charsTotal += max(len([]rune(fc.After)), len([]rune(fc.Before)))
			charsDiff += dmp.DiffLevenshtein(fc.Changes)
		}
	}
	if charsTotal == 0 {
		return 100
	}
	return 100 - float64(charsDiff)*100/float64(charsTotal)
}
