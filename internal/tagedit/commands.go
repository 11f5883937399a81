package tagedit

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/errmsg"
	"github.com/llehouerou/tagdeck/internal/track"
)

// ReadBatchAsync reads every path from the store. Invalid records are
// dropped. Records already in the catalog keep their catalog id,
// statistics and cover art.
func ReadBatchAsync(tok Token, store TagStore, catalog Catalog, paths []string, log logrus.FieldLogger) tea.Cmd {
	return func() tea.Msg {
		msg := BatchLoadedMsg{Token: tok}
		for _, path := range paths {
			rec, err := store.ReadBlocking(path)
			if err != nil {
				log.WithField("path", path).WithError(err).Debug(errmsg.FormatWith(errmsg.OpTagRead, path, err))
				msg.Skipped = append(msg.Skipped, path)
				continue
			}
			if !rec.Valid {
				log.WithField("path", path).Debug("dropping invalid track")
				msg.Skipped = append(msg.Skipped, path)
				continue
			}

			if catalog != nil {
				prior, ok, err := catalog.TrackByPath(path)
				switch {
				case err != nil:
					log.WithField("path", path).WithError(err).Warn(errmsg.Format(errmsg.OpCatalogLookup, err))
				case ok:
					rec.MergeUserSetData(&prior)
				}
			}

			msg.Records = append(msg.Records, rec)
		}
		return msg
	}
}

// SaveAsync writes rec to the file at its path.
func SaveAsync(tok Token, store TagStore, index int, rec track.Record) tea.Cmd {
	return func() tea.Msg {
		err := store.Save(rec.Path, rec)
		return FileSavedMsg{Token: tok, Index: index, Path: rec.Path, Record: rec, Err: err}
	}
}

// UpsertAsync stores saved records in the catalog.
func UpsertAsync(tok Token, catalog Catalog, recs []track.Record) tea.Cmd {
	return func() tea.Msg {
		paths := make([]string, len(recs))
		for i := range recs {
			paths[i] = recs[i].Path
		}
		return CatalogUpdatedMsg{Token: tok, Paths: paths, Err: catalog.Upsert(recs)}
	}
}

// ResetStatisticsAsync resets the catalog statistics of a track.
func ResetStatisticsAsync(tok Token, catalog Catalog, index int, id int64) tea.Cmd {
	return func() tea.Msg {
		return StatisticsResetMsg{Token: tok, Index: index, ID: id, Err: catalog.ResetStatistics(id)}
	}
}

// SetAlbumArtAsync stores a manual cover for every catalog track of an
// album.
func SetAlbumArtAsync(tok Token, catalog Catalog, albumArtist, album, url string) tea.Cmd {
	return func() tea.Msg {
		err := catalog.SetAlbumArtManual(albumArtist, album, url)
		return CoverArtSavedMsg{Token: tok, AlbumArtist: albumArtist, Album: album, URL: url, Err: err}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
