// Package catalog is the pipeline: it fetches from each source, reconciles
// the results, enriches artist images, and writes the snapshots.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amonks/tastes/charts"
	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/itunes"
	"github.com/amonks/tastes/reconcile"
	"github.com/amonks/tastes/snapshot"
	"github.com/amonks/tastes/wikidata"
	"github.com/rs/zerolog/log"
)

type ChartSource interface {
	Fetch(ctx context.Context) ([]data.Song, error)
	Country() string
}

type AlbumLookup interface {
	LookupAlbums(ctx context.Context, trackIDs []string) (map[string]data.Album, error)
}

type PageArtwork interface {
	FromPage(ctx context.Context, pageURL string) (string, error)
}

type SongSearch interface {
	SearchSeeds(ctx context.Context, seeds []string, perSeed int) ([]data.Song, error)
}

type EntitySource interface {
	FetchMusicians(ctx context.Context) ([]data.Artist, error)
}

type ImageFinder interface {
	FindImage(ctx context.Context, name string) (string, error)
}

// Store is where snapshots are written, and read back from when a mode
// builds on an earlier run's output.
type Store interface {
	WriteTopSongs(ctx context.Context, source, country string, songs []data.Song) error
	WriteTopArtists(ctx context.Context, source, country string, artists []data.Artist) error
	WriteCatalogSongs(ctx context.Context, source string, songs []data.Song) error
	WriteCatalogArtists(ctx context.Context, source string, artists []data.Artist) error

	LoadTopArtists() (*snapshot.TopArtistsDoc, error)
	LoadCatalogSongs() (*snapshot.CatalogSongsDoc, error)
}

// Sources are the upstreams a Builder reads. Albums and Pages are
// optional.
type Sources struct {
	Charts   ChartSource
	Albums   AlbumLookup
	Pages    PageArtwork
	Search   SongSearch
	Entities EntitySource
	Images   ImageFinder
}

type Options struct {
	TopArtists     int
	CatalogArtists int

	Seeds   []string
	PerSeed int

	PreferAuthoritative bool
	BreakerFailures     uint32
}

type Builder struct {
	src      Sources
	store    Store
	opts     Options
	enricher *Enricher
}

func New(src Sources, store Store, opts Options) *Builder {
	return &Builder{
		src:      src,
		store:    store,
		opts:     opts,
		enricher: NewEnricher(src.Images, opts.BreakerFailures, opts.PreferAuthoritative),
	}
}

type Mode string

const (
	ModeAll     Mode = "all"
	ModeCharts  Mode = "charts"
	ModeImages  Mode = "images"
	ModeSongs   Mode = "songs"
	ModeArtists Mode = "artists"
)

var Modes = []Mode{ModeAll, ModeCharts, ModeImages, ModeSongs, ModeArtists}

func ParseMode(s string) (Mode, error) {
	for _, mode := range Modes {
		if string(mode) == s {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown mode '%s'", s)
}

// Run runs the stages for one mode. Stages that don't depend on each other
// all run even if one fails; the returned error joins every failure.
func (b *Builder) Run(ctx context.Context, mode Mode) error {
	var errs []error
	stage := func(name string, f func(context.Context) error) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		log.Info().Str("stage", name).Msg("starting")
		if err := f(ctx); err != nil {
			log.Error().Err(err).Str("stage", name).Msg("stage failed")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch mode {
	case ModeAll:
		var songs []data.Song
		stage("charts", b.Charts)
		stage("songs", func(ctx context.Context) (err error) {
			songs, err = b.Songs(ctx)
			return err
		})
		stage("artists", func(ctx context.Context) error { return b.Artists(ctx, songs) })
	case ModeCharts:
		stage("charts", b.Charts)
	case ModeImages:
		stage("images", b.Images)
	case ModeSongs:
		stage("songs", func(ctx context.Context) error {
			_, err := b.Songs(ctx)
			return err
		})
	case ModeArtists:
		stage("artists", func(ctx context.Context) error { return b.Artists(ctx, nil) })
	default:
		return fmt.Errorf("unknown mode '%s'", mode)
	}

	return errors.Join(errs...)
}

// Charts builds and writes the top songs and the enriched top artists
// derived from them.
func (b *Builder) Charts(ctx context.Context) error {
	songs, err := b.src.Charts.Fetch(ctx)
	if err != nil {
		return err
	}
	songs = b.withAlbums(ctx, songs)
	songs = b.withPageArtwork(ctx, songs)

	unique := reconcile.UniqueSongs(songs)
	log.Info().Str("source", charts.Source).Int("fetched", len(songs)).Int("count", len(unique)).Msg("reconciled chart")

	country := b.src.Charts.Country()
	var errs []error
	if err := b.store.WriteTopSongs(ctx, charts.Source, country, unique); err != nil {
		errs = append(errs, err)
	}

	artists := reconcile.Top(reconcile.DeriveArtists(unique), b.opts.TopArtists)
	artists = b.enricher.Enrich(ctx, artists)
	if err := b.store.WriteTopArtists(ctx, charts.Source, country, artists); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Images re-enriches the top artists already on disk, and rewrites only
// that artifact.
func (b *Builder) Images(ctx context.Context) error {
	doc, err := b.store.LoadTopArtists()
	if err != nil {
		return err
	}

	artists := make([]data.Artist, 0, len(doc.Artists))
	for _, artist := range doc.Artists {
		artists = append(artists, artist.Artist())
	}
	artists = b.enricher.Enrich(ctx, reconcile.Dedupe(artists))

	source := doc.Source
	if source == "" {
		source = charts.Source
	}
	return b.store.WriteTopArtists(ctx, source, doc.Country, artists)
}

// Songs builds and writes the song catalog from the seed searches, and
// returns it.
func (b *Builder) Songs(ctx context.Context) ([]data.Song, error) {
	found, err := b.src.Search.SearchSeeds(ctx, b.opts.Seeds, b.opts.PerSeed)
	if err != nil {
		return nil, err
	}

	songs := reconcile.UniqueSongs(reconcile.UniqueByID(found))
	log.Info().Str("source", itunes.Source).Int("fetched", len(found)).Int("count", len(songs)).Msg("reconciled song catalog")

	if err := b.store.WriteCatalogSongs(ctx, itunes.Source, songs); err != nil {
		return songs, err
	}
	return songs, nil
}

// Artists builds and writes the artist catalog. Its base is the leading
// artists of the song catalog: songs if given, or else the song catalog on
// disk. Knowledge-graph entities are merged onto the base. Without a base,
// a knowledge-graph failure is fatal.
func (b *Builder) Artists(ctx context.Context, songs []data.Song) error {
	if songs == nil {
		doc, err := b.store.LoadCatalogSongs()
		if err != nil {
			log.Warn().Err(err).Msg("no song catalog to build the artist catalog on")
		} else {
			for _, song := range doc.Songs {
				songs = append(songs, song.Song())
			}
		}
	}
	base := reconcile.Top(reconcile.DeriveArtists(reconcile.UniqueSongs(songs)), b.opts.CatalogArtists)

	entities, err := b.src.Entities.FetchMusicians(ctx)
	if err != nil {
		if len(base) == 0 {
			return err
		}
		log.Warn().Err(err).Int("count", len(base)).Msg("knowledge graph unavailable, writing artist catalog from songs alone")
		return b.store.WriteCatalogArtists(ctx, itunes.Source, base)
	}

	artists := reconcile.Merge(base, entities)
	log.Info().
		Str("source", wikidata.Source).
		Int("base", len(base)).
		Int("entities", len(entities)).
		Int("count", len(artists)).
		Msg("reconciled artist catalog")

	source := wikidata.Source
	if len(base) > 0 {
		source = itunes.Source + "+" + wikidata.Source
	}
	return b.store.WriteCatalogArtists(ctx, source, artists)
}

// withAlbums attaches album identity from one batched lookup. A failed
// lookup leaves the songs as they were.
func (b *Builder) withAlbums(ctx context.Context, songs []data.Song) []data.Song {
	if b.src.Albums == nil || len(songs) == 0 {
		return songs
	}

	ids := make([]string, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}
	albums, err := b.src.Albums.LookupAlbums(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("album lookup failed, continuing without albums")
		return songs
	}

	out := make([]data.Song, len(songs))
	for i, song := range songs {
		out[i] = song.WithAlbum(albums[song.ID])
	}
	return out
}

// withPageArtwork fills in missing artwork from each song's page.
func (b *Builder) withPageArtwork(ctx context.Context, songs []data.Song) []data.Song {
	if b.src.Pages == nil {
		return songs
	}

	out := make([]data.Song, len(songs))
	for i, song := range songs {
		out[i] = song
		if song.ImageURL != "" || !strings.HasPrefix(song.SourceURL, "http") {
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		image, err := b.src.Pages.FromPage(ctx, song.SourceURL)
		if err != nil || image == "" {
			log.Debug().Err(err).Str("song", song.ID).Msg("no page artwork")
			continue
		}
		out[i] = song.WithImage(image)
	}
	return out
}

