package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/musicbrainz"
	"github.com/llehouerou/tagdeck/internal/tagedit"
	"github.com/llehouerou/tagdeck/internal/track"
)

const coverSlot = "cli"

// model drives one tag edit session from the command line options. It
// quits once every command it started has reported back.
type model struct {
	opts     options
	paths    []string
	session  *tagedit.Session
	resolver *coverart.Resolver
	searcher *coverart.Searcher
	mb       *musicbrainz.Client
	log      logrus.FieldLogger

	waiting  int
	fetching int
	report   *report
	failed   bool
}

type services struct {
	resolver *coverart.Resolver
	searcher *coverart.Searcher
	mb       *musicbrainz.Client
}

func newModel(opts options, paths []string, session *tagedit.Session, svc services, log logrus.FieldLogger) *model {
	return &model{
		opts:     opts,
		paths:    paths,
		session:  session,
		resolver: svc.resolver,
		searcher: svc.searcher,
		mb:       svc.mb,
		log:      log,
		report:   &report{},
	}
}

func (m *model) Init() tea.Cmd {
	m.log.WithField("files", len(m.paths)).Debug("starting tag edit session")
	cmd, err := m.session.LoadBatch(m.paths)
	if err != nil {
		m.report.errorf("load: %v", err)
		m.failed = true
		return tea.Quit
	}
	m.waiting++
	return cmd
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagedit.LoadFinishedMsg:
		m.waiting--
		return m, m.done(m.handleLoaded(msg))

	case tagedit.CommitFinishedMsg:
		m.waiting--
		m.handleCommitted(msg)
		return m, m.done(nil)

	case tagedit.CatalogUpdatedMsg, tagedit.StatisticsResetMsg, tagedit.CoverArtSavedMsg:
		m.waiting--
		m.reportCatalog(msg)
		return m, m.done(m.session.Update(msg))

	case coverart.ArtResolvedMsg:
		m.waiting--
		m.report.cover(msg)
		return m, m.done(nil)

	case musicbrainz.LookupFinishedMsg:
		m.waiting--
		return m, m.done(m.handleLookup(msg))

	case coverart.SearchFinishedMsg:
		m.waiting--
		m.report.search(msg)
		return m, m.done(nil)
	}

	return m, m.session.Update(msg)
}

func (m *model) View() string { return "" }

// done quits when nothing is left to wait for.
func (m *model) done(cmd tea.Cmd) tea.Cmd {
	if m.waiting > 0 {
		return cmd
	}
	m.session.Close()
	if cmd == nil {
		return tea.Quit
	}
	return tea.Sequence(cmd, tea.Quit)
}

func (m *model) handleLoaded(msg tagedit.LoadFinishedMsg) tea.Cmd {
	m.report.loaded(msg)
	if msg.State == tagedit.StateEmpty {
		m.failed = true
		return nil
	}

	if m.opts.selection != nil {
		m.session.Select(m.opts.selection)
	}
	sel := m.session.Selection()
	if len(sel) == 0 {
		m.report.errorf("selection does not name any loaded file")
		m.failed = true
		return nil
	}

	if m.opts.fetch {
		return m.startLookups(sel)
	}
	return m.apply(sel)
}

// startLookups fetches tags for every selected entry. Edits and the commit
// wait until every lookup reported back.
func (m *model) startLookups(sel tagedit.Selection) tea.Cmd {
	var cmds []tea.Cmd
	for _, i := range sel {
		e, _ := m.session.Entry(i)
		m.fetching++
		m.waiting++
		cmds = append(cmds, m.mb.LookupAsync(context.Background(), e.Current))
	}
	return tea.Batch(cmds...)
}

func (m *model) handleLookup(msg musicbrainz.LookupFinishedMsg) tea.Cmd {
	m.fetching--
	if msg.Err != nil {
		m.report.warnf("%s: %v", msg.Path, msg.Err)
	} else if err := m.session.ApplyFetched(msg.Path, msg.Recording.Record(msg.Path)); err != nil {
		m.report.errorf("apply fetched tags: %v", err)
	}
	if m.fetching > 0 {
		return nil
	}
	return m.apply(m.session.Selection())
}

// apply runs the edits and out-of-band actions on sel, then commits.
func (m *model) apply(sel tagedit.Selection) tea.Cmd {
	for _, as := range m.opts.set {
		if _, err := m.session.SetFieldValue(sel, as.field.Key(), as.value); err != nil {
			m.report.errorf("set %s: %v", as.field, err)
		}
	}
	for _, f := range m.opts.reset {
		if _, err := m.session.ResetField(sel, f.Key()); err != nil {
			m.report.errorf("reset %s: %v", f, err)
		}
	}

	var cmds []tea.Cmd
	cmds = append(cmds, m.applyCover(sel)...)
	if m.opts.resetStats {
		for _, i := range sel {
			cmds = append(cmds, m.track(m.session.ResetStatistics(i)))
		}
	}

	if m.opts.show {
		m.report.fields(m.session.Fields(sel))
		if sum, ok := m.session.SelectedSummary(); ok {
			m.report.summary(sum)
			if st, ok := m.session.Statistics(sel[0]); ok {
				m.report.statistics(st)
			}
		}
		if e, ok := m.session.Entry(sel[0]); ok {
			m.waiting++
			cmds = append(cmds, m.resolver.ResolveArt(uint64(sel[0]), e.Current))
		}
	}

	if m.opts.searchCover {
		if e, ok := m.session.Entry(sel[0]); ok {
			_, cmd := m.searcher.Search(coverSlot, e.Current.EffectiveAlbumArtist(), e.Current.Album, e.Current.Title)
			m.waiting++
			cmds = append(cmds, cmd)
		}
	}

	if m.opts.dryRun || !m.opts.edits() {
		if m.opts.edits() {
			m.report.changes(m.session.Changes())
		}
		return tea.Batch(cmds...)
	}

	m.report.changes(m.session.Changes())
	commit, err := m.session.Commit()
	if err != nil {
		m.report.errorf("commit: %v", err)
		m.failed = true
		return tea.Batch(cmds...)
	}
	m.waiting++
	return tea.Batch(append(cmds, commit)...)
}

// applyCover sets the cover once per album of the selection.
func (m *model) applyCover(sel tagedit.Selection) []tea.Cmd {
	if m.opts.cover == "" && !m.opts.unsetCover {
		return nil
	}

	var cmds []tea.Cmd
	var done []track.Record
	for _, i := range sel {
		e, _ := m.session.Entry(i)
		seen := false
		for j := range done {
			if done[j].SameAlbum(&e.Original) {
				seen = true
				break
			}
		}
		if seen {
			continue
		}
		done = append(done, e.Original)

		if m.opts.unsetCover {
			cmds = append(cmds, m.track(m.session.UnsetCoverArt(i)))
		} else {
			cmds = append(cmds, m.track(m.session.SetCoverArt(i, m.opts.cover)))
		}
	}
	return cmds
}

// track counts a catalog command so the program waits for it. Dry runs
// drop catalog writes.
func (m *model) track(cmd tea.Cmd) tea.Cmd {
	if cmd == nil || m.opts.dryRun {
		return nil
	}
	m.waiting++
	return cmd
}

func (m *model) handleCommitted(msg tagedit.CommitFinishedMsg) {
	m.report.committed(msg)
	if msg.Err != nil {
		m.failed = true
	}

	if msg.Upserting {
		m.waiting++
	}
}

func (m *model) reportCatalog(msg tea.Msg) {
	var err error
	switch msg := msg.(type) {
	case tagedit.CatalogUpdatedMsg:
		err = msg.Err
		if err == nil {
			m.report.notef("catalog updated (%d tracks)", len(msg.Paths))
		}
	case tagedit.StatisticsResetMsg:
		err = msg.Err
		if err == nil {
			m.report.notef("play statistics reset for entry %d", msg.Index)
		}
	case tagedit.CoverArtSavedMsg:
		err = msg.Err
		if err == nil {
			m.report.notef("cover of %s - %s saved to the catalog", msg.AlbumArtist, msg.Album)
		}
	}
	if err != nil {
		m.report.errorf("catalog: %v", err)
		m.failed = true
	}
}
