package tagedit

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/errmsg"
	"github.com/llehouerou/tagdeck/internal/track"
)

// Update applies an asynchronous completion to the session. Messages from
// another session, a closed session or a superseded request are dropped.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case BatchLoadedMsg:
		return s.handleBatchLoaded(msg)
	case FileSavedMsg:
		return s.handleFileSaved(msg)
	case CatalogUpdatedMsg:
		s.handleCatalogUpdated(msg)
	case StatisticsResetMsg:
		s.handleStatisticsReset(msg)
	case CoverArtSavedMsg:
		s.handleCoverArtSaved(msg)
	}
	return nil
}

func (s *Session) handleBatchLoaded(msg BatchLoadedMsg) tea.Cmd {
	if msg.Session != s.id {
		return nil
	}
	if s.closed || s.state != StateLoading || msg.Generation != s.loadGen {
		s.log.WithField("generation", msg.Generation).Debug("dropping stale batch")
		return nil
	}
	return s.applyBatch(msg)
}

func (s *Session) handleFileSaved(msg FileSavedMsg) tea.Cmd {
	if msg.Session != s.id {
		return nil
	}
	log := s.log.WithField("path", msg.Path)
	if s.closed {
		log.WithError(msg.Err).Info("write finished after session was closed")
		if msg.Err == nil && msg.Record.InCatalog() && s.catalog != nil {
			return UpsertAsync(msg.Token, s.catalog, []track.Record{msg.Record})
		}
		return nil
	}
	if s.state != StateSaving || msg.Generation != s.commitGen {
		log.Debug("dropping stale write completion")
		return nil
	}

	s.pending--
	if msg.Err != nil {
		text := errmsg.FormatWith(errmsg.OpTagWrite, msg.Path, msg.Err)
		log.WithError(msg.Err).Error("write failed")
		s.failed = append(s.failed, FailedFile{Path: msg.Path, Error: text})
		s.errs = append(s.errs, fmt.Errorf("write %s: %w", msg.Path, msg.Err))
	} else {
		s.saved = append(s.saved, msg.Path)
		rec := msg.Record
		if msg.Index >= 0 && msg.Index < len(s.entries) && s.entries[msg.Index].Original.Path == msg.Path {
			e := &s.entries[msg.Index]
			copyMetadata(&e.Original, &msg.Record)
			rec = e.Original
		}
		if rec.InCatalog() {
			s.toUpsert = append(s.toUpsert, rec)
		}
	}

	if s.pending > 0 {
		return nil
	}
	return s.finishCommit()
}

func (s *Session) finishCommit() tea.Cmd {
	s.state = StateIdle
	done := CommitFinishedMsg{
		Session: s.id,
		Saved:   s.saved,
		Failed:  s.failed,
		Err:     errors.Join(s.errs...),
	}
	s.log.WithFields(logrus.Fields{
		"saved":  len(done.Saved),
		"failed": len(done.Failed),
	}).Info("commit finished")

	var upsert tea.Cmd
	if len(s.toUpsert) > 0 && s.catalog != nil {
		recs := append([]track.Record(nil), s.toUpsert...)
		upsert = UpsertAsync(s.token(s.commitGen), s.catalog, recs)
		done.Upserting = true
	}
	s.saved, s.failed, s.errs, s.toUpsert = nil, nil, nil, nil
	if upsert == nil {
		return msgCmd(done)
	}
	// the owner sees the commit finish before the catalog reply
	return tea.Sequence(msgCmd(done), upsert)
}

func (s *Session) handleCatalogUpdated(msg CatalogUpdatedMsg) {
	if msg.Session != s.id {
		return
	}
	if msg.Err != nil {
		s.log.WithField("tracks", len(msg.Paths)).WithError(msg.Err).Error(errmsg.Format(errmsg.OpCatalogUpsert, msg.Err))
		return
	}
	s.log.WithField("tracks", len(msg.Paths)).Debug("catalog updated")
}

func (s *Session) handleStatisticsReset(msg StatisticsResetMsg) {
	if msg.Session != s.id {
		return
	}
	if msg.Err != nil {
		s.log.WithField("id", msg.ID).WithError(msg.Err).Error(errmsg.Format(errmsg.OpStatisticsReset, msg.Err))
	}
}

func (s *Session) handleCoverArtSaved(msg CoverArtSavedMsg) {
	if msg.Session != s.id {
		return
	}
	if msg.Err != nil {
		s.log.WithFields(logrus.Fields{
			"album_artist": msg.AlbumArtist,
			"album":        msg.Album,
		}).WithError(msg.Err).Error(errmsg.Format(errmsg.OpCoverSave, msg.Err))
	}
}

// copyMetadata copies the editable fields only, so cover art and statistics
// changed while the write was in flight are kept.
func copyMetadata(dst, src *track.Record) {
	for _, f := range AllFields() {
		f.Set(dst, f.Get(src))
	}
}
