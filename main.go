package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"go.senan.xyz/natcmp"

	"github.com/llehouerou/tagdeck/internal/config"
	"github.com/llehouerou/tagdeck/internal/coverart"
	"github.com/llehouerou/tagdeck/internal/errmsg"
	"github.com/llehouerou/tagdeck/internal/httpclient"
	"github.com/llehouerou/tagdeck/internal/library"
	"github.com/llehouerou/tagdeck/internal/logging"
	"github.com/llehouerou/tagdeck/internal/musicbrainz"
	"github.com/llehouerou/tagdeck/internal/spotify"
	"github.com/llehouerou/tagdeck/internal/state"
	"github.com/llehouerou/tagdeck/internal/tagedit"
	"github.com/llehouerou/tagdeck/internal/tags"
	"github.com/llehouerou/tagdeck/internal/tidal"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ok, err := run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func run(opts options) (bool, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return false, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	log, closer, err := logging.New(cfg.GetLogConfig())
	if err != nil {
		return false, errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer closer.Close()

	stateMgr, err := state.Open(cfg.Database.Path)
	if err != nil {
		return false, errors.New(errmsg.Format(errmsg.OpCatalogOpen, err))
	}
	defer stateMgr.Close()

	lib := library.New(stateMgr.DB(), log)
	store := tags.NewStore(log)

	paths, err := collectPaths(opts, lib, store, log)
	if err != nil {
		return false, err
	}

	covers := cfg.GetCoversConfig()
	client := httpclient.New(httpclient.Options{
		UserAgent: covers.UserAgent,
		RateLimit: time.Duration(covers.RateLimitMS) * time.Millisecond,
		Log:       log.WithField("component", "http"),
	})

	mb := musicbrainz.NewClient(cfg.GetMusicBrainzConfig(), client, log.WithField("component", "musicbrainz"))
	svc := services{
		resolver: coverart.NewResolver(client, covers.ThumbnailSize, log.WithField("component", "coverart")),
		searcher: coverart.NewSearcher(log.WithField("component", "coversearch"), coverProviders(cfg, client, mb, log)...),
		mb:       mb,
	}
	session := tagedit.New(store, lib, log.WithField("component", "tagedit"))

	m := newModel(opts, paths, session, svc, log)
	p := tea.NewProgram(m, tea.WithoutRenderer(), tea.WithInput(nil))
	if _, err := p.Run(); err != nil {
		return false, err
	}

	if _, err := m.report.WriteTo(os.Stdout); err != nil {
		return false, err
	}
	return !m.failed, nil
}

// collectPaths returns the files named on the command line and the catalog
// tracks matching -filter, in natural order.
func collectPaths(opts options, lib *library.Library, store *tags.Store, log logrus.FieldLogger) ([]string, error) {
	paths := slices.Clone(opts.paths)

	if opts.add && len(paths) > 0 {
		stats, err := lib.AddTracks(store, paths)
		if err != nil {
			return nil, errors.New(errmsg.Format(errmsg.OpCatalogAddTracks, err))
		}
		log.WithFields(logrus.Fields{
			"added":   len(stats.Added),
			"updated": len(stats.Updated),
			"skipped": len(stats.Skipped),
		}).Info("tracks added to catalog")
	}

	if opts.filter != "" {
		recs, err := lib.Filter(opts.filter)
		if err != nil {
			return nil, errors.New(errmsg.Format(errmsg.OpCatalogFilter, err))
		}
		for _, r := range recs {
			paths = append(paths, r.Path)
		}
	}

	slices.SortFunc(paths, natcmp.Compare)
	paths = slices.Compact(paths)
	if len(paths) == 0 {
		return nil, errors.New("no files to edit")
	}
	return paths, nil
}

func coverProviders(cfg *config.Config, client *http.Client, mb *musicbrainz.Client, log logrus.FieldLogger) []coverart.Provider {
	var providers []coverart.Provider
	for _, name := range cfg.GetCoversConfig().Providers {
		switch name {
		case "tidal":
			service := tidal.NewService(cfg.GetTidalConfig())
			providers = append(providers, tidal.NewCoverProvider(service, client, log.WithField("provider", name)))
		case "spotify":
			providers = append(providers, spotify.NewCoverProvider(cfg.GetSpotifyConfig(), client, log.WithField("provider", name)))
		case "musicbrainz":
			providers = append(providers, musicbrainz.NewCoverProvider(mb))
		default:
			log.WithField("provider", name).Warn("unknown cover provider")
		}
	}
	return providers
}
