package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/errmsg"
	"github.com/llehouerou/tagdeck/internal/tagedit"
)

var (
	colorPrimary = lipgloss.Color("#a78bfa")
	colorMuted   = lipgloss.Color("#808080")
	colorSuccess = lipgloss.Color("#42b883")
	colorError   = lipgloss.Color("#ff5555")
	colorWarning = lipgloss.Color("#f1a208")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(14)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	insertStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Underline(true)
	deleteStyle  = lipgloss.NewStyle().Foreground(colorError).Strikethrough(true)
)

// report collects the output of a run. It is printed once the program quit.
type report struct {
	sections []string
}

func (r *report) add(s string) {
	r.sections = append(r.sections, s)
}

func (r *report) notef(format string, args ...any) {
	r.add(successStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *report) warnf(format string, args ...any) {
	r.add(warningStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *report) errorf(format string, args ...any) {
	r.add(errorStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, strings.Join(r.sections, "\n")+"\n")
	return int64(n), err
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func (r *report) loaded(msg tagedit.LoadFinishedMsg) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Loaded %d file(s)", msg.Count)))
	for _, p := range msg.Skipped {
		b.WriteString("\n" + warningStyle.Render("  skipped ") + p)
	}
	r.add(b.String())
}

func (r *report) fields(states []tagedit.FieldState) {
	lines := []string{titleStyle.Render("Fields")}
	for _, st := range states {
		value := st.Value.Display()
		switch {
		case st.Varies:
			value = mutedStyle.Render("<multiple values>")
		case value == "":
			value = mutedStyle.Render("-")
		}
		if st.Modified {
			value += warningStyle.Render(" *")
		}
		lines = append(lines, row(st.Field.Key(), value))
	}
	r.add(strings.Join(lines, "\n"))
}

func (r *report) summary(s tagedit.Summary) {
	r.add(strings.Join([]string{
		titleStyle.Render(s.Title),
		row("Path", s.Path),
		row("Type", s.Filetype),
		row("Length", s.Length),
		row("Sample rate", s.SampleRate),
		row("Bit depth", s.BitDepth),
		row("Bitrate", s.Bitrate),
		row("Size", s.Filesize),
		row("Modified", s.Modified),
		row("Created", s.Created),
		row("Cover", s.CoverArt),
	}, "\n"))
}

func (r *report) statistics(s tagedit.Statistics) {
	r.add(strings.Join([]string{
		row("Plays", fmt.Sprint(s.PlayCount)),
		row("Skips", fmt.Sprint(s.SkipCount)),
		row("Last played", s.LastPlayed),
	}, "\n"))
}

func (r *report) cover(msg coverart.ArtResolvedMsg) {
	if msg.Err != nil {
		r.errorf("%s", errmsg.Format(errmsg.OpCoverLoad, msg.Err))
		return
	}
	line := row("Cover source", msg.Source.String())
	if msg.Location != "" {
		line += mutedStyle.Render(" (" + msg.Location + ")")
	}
	if msg.Thumbnail != nil {
		b := msg.Thumbnail.Bounds()
		line += "\n" + row("Cover image", fmt.Sprintf("%s, thumbnail %dx%d", msg.MIME, b.Dx(), b.Dy()))
	}
	r.add(line)
}

func (r *report) search(msg coverart.SearchFinishedMsg) {
	lines := []string{titleStyle.Render(fmt.Sprintf("Cover search: %d result(s)", len(msg.Results)))}
	for i, res := range msg.Results {
		if i == 10 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(msg.Results)-i)))
			break
		}
		size := ""
		if res.Width > 0 {
			size = fmt.Sprintf(" %dx%d", res.Width, res.Height)
		}
		lines = append(lines, fmt.Sprintf("  %5.2f %s %s - %s%s\n        %s",
			res.Score, mutedStyle.Render(res.Provider), res.Artist, res.Album, size, res.ImageURL))
	}
	if msg.Err != nil {
		lines = append(lines, errorStyle.Render(errmsg.Format(errmsg.OpCoverSearch, msg.Err)))
	}
	r.add(strings.Join(lines, "\n"))
}

func (r *report) changes(changes []tagedit.EntryChanges) {
	if len(changes) == 0 {
		r.add(mutedStyle.Render("No changes"))
		return
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Changes (%.0f%% similar)", tagedit.Similarity(changes)))}
	for _, ec := range changes {
		lines = append(lines, fmt.Sprintf("%s %s", mutedStyle.Render(fmt.Sprintf("[%d]", ec.Index)), ec.Path))
		for _, fc := range ec.Fields {
			lines = append(lines, "  "+row(fc.Field.Key(), renderDiff(fc.Changes)))
		}
	}
	r.add(strings.Join(lines, "\n"))
}

func renderDiff(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Render(d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func (r *report) committed(msg tagedit.CommitFinishedMsg) {
	lines := []string{successStyle.Render(fmt.Sprintf("Wrote %d file(s)", len(msg.Saved)))}
	for _, f := range msg.Failed {
		lines = append(lines, errorStyle.Render("  "+f.Error))
	}
	r.add(strings.Join(lines, "\n"))
}
