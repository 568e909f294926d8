package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amonks/tastes/data"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// A Ledger records each successful artifact write.
type Ledger interface {
	InsertRecord(ctx context.Context, rec *data.SnapshotRecord) error
}

type WriterOptions struct {
	ArchiveDir string
	PublicDir  string

	// Optional.
	Ledger Ledger
	Now    func() time.Time
}

// A Writer writes each artifact twice: an indented copy into the archive
// directory and a compact copy into the public directory. Each file is
// written to a temporary name and renamed into place.
type Writer struct {
	archiveDir string
	publicDir  string
	runID      string
	ledger     Ledger
	now        func() time.Time
}

func NewWriter(opts WriterOptions) *Writer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Writer{
		archiveDir: opts.ArchiveDir,
		publicDir:  opts.PublicDir,
		runID:      uuid.NewString(),
		ledger:     opts.Ledger,
		now:        now,
	}
}

func (w *Writer) RunID() string { return w.runID }

// PublicPath is where the servable copy of an artifact lives.
func (w *Writer) PublicPath(a Artifact) string {
	return filepath.Join(w.publicDir, a.Filename())
}

func (w *Writer) ArchivePath(a Artifact) string {
	return filepath.Join(w.archiveDir, a.Filename())
}

// LoadTopArtists reads back the servable top-artists artifact.
func (w *Writer) LoadTopArtists() (*TopArtistsDoc, error) {
	return ReadTopArtists(w.PublicPath(TopArtists))
}

// LoadCatalogSongs reads back the servable song catalog.
func (w *Writer) LoadCatalogSongs() (*CatalogSongsDoc, error) {
	return ReadCatalogSongs(w.PublicPath(CatalogSongs))
}

func (w *Writer) WriteTopSongs(ctx context.Context, source, country string, songs []data.Song) error {
	doc := TopSongsDoc{
		Header: w.header(source, country, nil),
		Songs:  make([]TopSong, 0, len(songs)),
	}
	for _, song := range songs {
		doc.Songs = append(doc.Songs, NewTopSong(song))
	}
	return w.write(ctx, TopSongs, doc.Header, len(doc.Songs), doc)
}

func (w *Writer) WriteTopArtists(ctx context.Context, source, country string, artists []data.Artist) error {
	doc := TopArtistsDoc{
		Header:  w.header(source, country, nil),
		Artists: make([]TopArtist, 0, len(artists)),
	}
	for _, artist := range artists {
		doc.Artists = append(doc.Artists, NewTopArtist(artist))
	}
	return w.write(ctx, TopArtists, doc.Header, len(doc.Artists), doc)
}

func (w *Writer) WriteCatalogSongs(ctx context.Context, source string, songs []data.Song) error {
	count := len(songs)
	doc := CatalogSongsDoc{
		Header: w.header(source, "", &count),
		Songs:  make([]CatalogSong, 0, len(songs)),
	}
	for _, song := range songs {
		doc.Songs = append(doc.Songs, NewCatalogSong(song))
	}
	return w.write(ctx, CatalogSongs, doc.Header, count, doc)
}

func (w *Writer) WriteCatalogArtists(ctx context.Context, source string, artists []data.Artist) error {
	count := len(artists)
	doc := CatalogArtistsDoc{
		Header:  w.header(source, "", &count),
		Artists: make([]CatalogArtist, 0, len(artists)),
	}
	for _, artist := range artists {
		doc.Artists = append(doc.Artists, NewCatalogArtist(artist))
	}
	return w.write(ctx, CatalogArtists, doc.Header, count, doc)
}

func (w *Writer) header(source, country string, count *int) Header {
	return Header{
		Source:    source,
		Country:   country,
		UpdatedAt: w.now().UTC(),
		Count:     count,
	}
}

func (w *Writer) write(ctx context.Context, artifact Artifact, header Header, count int, doc any) error {
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", artifact, err)
	}
	compact, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", artifact, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return writeFile(gctx, w.archiveDir, artifact.Filename(), append(pretty, '\n')) })
	g.Go(func() error { return writeFile(gctx, w.publicDir, artifact.Filename(), compact) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("error writing %s: %w", artifact, err)
	}

	log.Info().
		Str("artifact", string(artifact)).
		Str("source", header.Source).
		Int("count", count).
		Msg("wrote snapshot")

	if w.ledger != nil {
		rec := &data.SnapshotRecord{
			RunID:       w.runID,
			Artifact:    string(artifact),
			Source:      header.Source,
			Country:     header.Country,
			Count:       count,
			UpdatedAt:   header.UpdatedAt,
			ArchivePath: w.ArchivePath(artifact),
			PublicPath:  w.PublicPath(artifact),
		}
		if err := w.ledger.InsertRecord(ctx, rec); err != nil {
			log.Warn().Err(err).Str("artifact", string(artifact)).Msg("error recording snapshot in ledger")
		}
	}

	return nil
}

func writeFile(ctx context.Context, dir, name string, bs []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating dir '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("error creating temp file in '%s': %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bs); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("error setting mode on '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing '%s': %w", tmp.Name(), err)
	}

	filename := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("error moving '%s' into place: %w", filename, err)
	}
	return nil
}
