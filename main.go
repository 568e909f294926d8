// tastes builds the music catalog snapshots read by the tastes app: the
// top songs and artists from the charts, a song catalog from search, and
// an artist catalog from Wikidata.
//
// usage: tastes $mode
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/tastes/artwork"
	"github.com/amonks/tastes/catalog"
	"github.com/amonks/tastes/charts"
	"github.com/amonks/tastes/config"
	"github.com/amonks/tastes/db"
	"github.com/amonks/tastes/itunes"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/logging"
	"github.com/amonks/tastes/readthrough"
	"github.com/amonks/tastes/request"
	"github.com/amonks/tastes/server"
	"github.com/amonks/tastes/sigctx"
	"github.com/amonks/tastes/snapshot"
	"github.com/amonks/tastes/wikidata"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: tastes $mode
valid $mode are 'all', 'charts', 'images', 'songs', 'artists', 'search $term', 'serve'
`)

func run() error {
	ctx := sigctx.New()

	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Log, os.Stderr); err != nil {
		return err
	}

	switch cmd {
	case "serve":
		return server.Run(ctx, cfg.Output.PublicDir, cfg.Server.Addr)
	case "search":
		return search(ctx, cfg, args)
	}

	mode, err := catalog.ParseMode(cmd)
	if err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if len(args) > 0 {
		return fmt.Errorf("mode '%s' takes no arguments\n%s", mode, usage)
	}

	var ledger *db.DB
	if cfg.Output.LedgerPath != "" {
		ledger, err = db.Open(cfg.Output.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()
	}

	writer := snapshot.NewWriter(snapshot.WriterOptions{
		ArchiveDir: cfg.Output.ArchiveDir,
		PublicDir:  cfg.Output.PublicDir,
		Ledger:     optionalLedger(ledger),
	})

	builder, err := newBuilder(cfg, writer)
	if err != nil {
		return err
	}

	if mode == catalog.ModeImages && ledger != nil {
		if rec, err := ledger.LatestRecord(ctx, string(snapshot.TopArtists)); err == nil {
			log.Info().Str("run", rec.RunID).Time("updatedAt", rec.UpdatedAt).Msg("re-enriching top artists")
		}
	}

	log.Info().Str("mode", string(mode)).Str("run", writer.RunID()).Msg("starting run")
	runErr := builder.Run(ctx, mode)

	if ledger != nil {
		recs, err := ledger.RunRecords(context.Background(), writer.RunID())
		if err != nil {
			log.Warn().Err(err).Msg("error reading run summary")
		}
		for _, rec := range recs {
			log.Info().Str("artifact", rec.Artifact).Int("count", rec.Count).Str("path", rec.PublicPath).Msg("written")
		}
	}

	return runErr
}

// optionalLedger keeps a nil *db.DB from becoming a non-nil interface.
func optionalLedger(ledger *db.DB) snapshot.Ledger {
	if ledger == nil {
		return nil
	}
	return ledger
}

func newClient(cfg *config.Config) *request.Client {
	opts := request.Options{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	}
	if cfg.HTTP.CacheDir != "" {
		opts.Cache = readthrough.New(cfg.HTTP.CacheDir, "http-")
	}
	return request.New(opts)
}

func newITunes(cfg *config.Config, client *request.Client) *itunes.Client {
	return itunes.New(client, limiter.New("itunes", cfg.Search.Delay), itunes.Options{
		SearchURL:   cfg.Search.SearchURL,
		LookupURL:   cfg.Search.LookupURL,
		Country:     cfg.Search.Country,
		ArtworkSize: cfg.Charts.ArtworkSize,
	})
}

func newBuilder(cfg *config.Config, store catalog.Store) (*catalog.Builder, error) {
	client := newClient(cfg)

	chartsLim := limiter.New("charts", cfg.Charts.Delay)
	feed := charts.New(client, chartsLim, charts.Options{
		BaseURL:     cfg.Charts.URL,
		Country:     cfg.Charts.Country,
		Limit:       cfg.Charts.Limit,
		ArtworkSize: cfg.Charts.ArtworkSize,
	})

	songs := newITunes(cfg, client)

	graph, err := wikidata.New(client, limiter.New("wikidata", cfg.Wikidata.Delay), wikidata.Options{
		SPARQLURL:  cfg.Wikidata.SPARQLURL,
		APIURL:     cfg.Wikidata.APIURL,
		Language:   cfg.Wikidata.Language,
		PageSize:   cfg.Wikidata.PageSize,
		MaxRecords: cfg.Wikidata.MaxRecords,
	})
	if err != nil {
		return nil, err
	}

	return catalog.New(catalog.Sources{
		Charts:   feed,
		Albums:   songs,
		Pages:    artwork.NewScraper(client, chartsLim),
		Search:   songs,
		Entities: graph,
		Images:   graph,
	}, store, catalog.Options{
		TopArtists:          cfg.Catalog.TopArtists,
		CatalogArtists:      cfg.Catalog.CatalogArtists,
		Seeds:               cfg.Search.SeedList(),
		PerSeed:             cfg.Search.PerSeed,
		PreferAuthoritative: cfg.Catalog.PreferAuthoritative,
		BreakerFailures:     cfg.Catalog.BreakerFailures,
	}), nil
}
