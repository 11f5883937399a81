package library

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/track"
)

const numWorkers = 8

// Reader reads a track record from a music file.
type Reader interface {
	ReadBlocking(path string) (track.Record, error)
}

// AddStats reports the outcome of AddTracks.
type AddStats struct {
	Added   []string
	Updated []string
	Skipped []string
}

type readResult struct {
	path string
	rec  track.Record
	err  error
}

// AddTracks reads paths in parallel and upserts every valid record.
// Unreadable files are skipped and reported in the stats.
func (l *Library) AddTracks(reader Reader, paths []string) (AddStats, error) {
	var stats AddStats

	workCh := make(chan string, len(paths))
	resultCh := make(chan readResult, len(paths))

	var wg sync.WaitGroup
	for range min(numWorkers, max(len(paths), 1)) {
		wg.Go(func() {
			for path := range workCh {
				rec, err := reader.ReadBlocking(path)
				resultCh <- readResult{path: path, rec: rec, err: err}
			}
		})
	}

	for _, path := range paths {
		workCh <- path
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect results and insert into DB (sequential to avoid SQLite issues)
	var recs []track.Record
	for result := range resultCh {
		if result.err != nil || !result.rec.Valid {
			l.log.WithFields(logrus.Fields{"path": result.path, "error": result.err}).Debug("skipping unreadable file")
			stats.Skipped = append(stats.Skipped, result.path)
			continue
		}
		_, known, err := l.TrackByPath(result.path)
		if err != nil {
			return stats, err
		}
		if known {
			stats.Updated = append(stats.Updated, result.path)
		} else {
			stats.Added = append(stats.Added, result.path)
		}
		recs = append(recs, result.rec)
	}

	if len(recs) == 0 {
		return stats, nil
	}
	return stats, l.Upsert(recs)
}
