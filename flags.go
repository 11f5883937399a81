package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/tagdeck/internal/tagedit"
)

// assignment is one -set field=value pair.
type assignment struct {
	field tagedit.Field
	value tagedit.Value
}

type assignments []assignment

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, as := range *a {
		parts[i] = as.field.Key() + "=" + as.value.AsString()
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(s string) error {
	key, text, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected field=value, got %q", s)
	}
	f, ok := tagedit.ParseField(strings.TrimSpace(key))
	if !ok {
		return fmt.Errorf("unknown field %q (valid: %s)", key, fieldKeys())
	}
	v, err := tagedit.ParseValue(f.Kind(), text)
	if err != nil {
		return fmt.Errorf("%s: %w", f, err)
	}
	*a = append(*a, assignment{field: f, value: v})
	return nil
}

type fieldList []tagedit.Field

func (l *fieldList) String() string {
	keys := make([]string, len(*l))
	for i, f := range *l {
		keys[i] = f.Key()
	}
	return strings.Join(keys, ",")
}

func (l *fieldList) Set(s string) error {
	for key := range strings.SplitSeq(s, ",") {
		f, ok := tagedit.ParseField(strings.TrimSpace(key))
		if !ok {
			return fmt.Errorf("unknown field %q (valid: %s)", key, fieldKeys())
		}
		*l = append(*l, f)
	}
	return nil
}

func fieldKeys() string {
	fields := tagedit.AllFields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key()
	}
	return strings.Join(keys, ", ")
}

// parseSelection parses "0,2,5". An empty string selects every entry.
func parseSelection(s string) (tagedit.Selection, error) {
	if s == "" {
		return nil, nil
	}
	var sel tagedit.Selection
	for part := range strings.SplitSeq(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid entry index %q", part)
		}
		sel = append(sel, n)
	}
	return sel, nil
}

type options struct {
	set         assignments
	reset       fieldList
	selection   tagedit.Selection
	cover       string
	unsetCover  bool
	resetStats  bool
	filter      string
	add         bool
	searchCover bool
	fetch       bool
	show        bool
	dryRun      bool
	configPath  string
	paths       []string
}

// edits reports whether the run changes tags and needs a commit.
func (o *options) edits() bool {
	return len(o.set) > 0 || len(o.reset) > 0 || o.fetch
}

func parseFlags(args []string) (options, error) {
	var o options
	var selection string

	fs := flag.NewFlagSet("tagdeck", flag.ContinueOnError)
	fs.Var(&o.set, "set", "set a field on the selected files, as field=value (repeatable)")
	fs.Var(&o.reset, "reset", "comma separated fields to restore (repeatable)")
	fs.StringVar(&selection, "select", "", "comma separated entry indices to edit (default: all)")
	fs.StringVar(&o.cover, "cover", "", "set the album cover of the selected files to a path or URL")
	fs.BoolVar(&o.unsetCover, "unset-cover", false, "remove the album cover of the selected files")
	fs.BoolVar(&o.resetStats, "reset-stats", false, "reset the play statistics of the selected files")
	fs.StringVar(&o.filter, "filter", "", "add catalog tracks matching a filter expression")
	fs.BoolVar(&o.add, "add", false, "add the files to the catalog before editing")
	fs.BoolVar(&o.searchCover, "search-cover", false, "search cover providers for the first selected file")
	fs.BoolVar(&o.fetch, "fetch", false, "look up title, artist, album, track and year on MusicBrainz")
	fs.BoolVar(&o.show, "show", false, "show the fields, summary and cover of the selection")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the changes without writing anything")
	fs.StringVar(&o.configPath, "config", "", "read configuration from this file only")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: tagdeck [flags] file...\n\nfields: %s\n\n", fieldKeys())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	sel, err := parseSelection(selection)
	if err != nil {
		return o, err
	}
	o.selection = sel
	o.paths = fs.Args()

	if o.cover != "" && o.unsetCover {
		return o, errors.New("-cover and -unset-cover are exclusive")
	}
	if len(o.paths) == 0 && o.filter == "" {
		return o, errors.New("no files given")
	}
	return o, nil
}
