// Package snapshot defines the JSON artifacts the pipeline produces, and
// reads and writes them.
package snapshot

import (
	"fmt"
	"os"
	"time"

	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/names"
	"github.com/goccy/go-json"
)

type Artifact string

const (
	TopSongs       Artifact = "top-songs"
	TopArtists     Artifact = "top-artists"
	CatalogSongs   Artifact = "songs"
	CatalogArtists Artifact = "artists"
)

var Artifacts = []Artifact{TopSongs, TopArtists, CatalogSongs, CatalogArtists}

func (a Artifact) Filename() string { return string(a) + ".json" }

// Header is common to every artifact. UpdatedAt is set when the artifact
// is written.
type Header struct {
	Source    string    `json:"source"`
	Country   string    `json:"country,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Count     *int      `json:"count,omitempty"`
}

type TopSongsDoc struct {
	Header
	Songs []TopSong `json:"songs"`
}

type TopArtistsDoc struct {
	Header
	Artists []TopArtist `json:"artists"`
}

type CatalogSongsDoc struct {
	Header
	Songs []CatalogSong `json:"songs"`
}

type CatalogArtistsDoc struct {
	Header
	Artists []CatalogArtist `json:"artists"`
}

type TopSong struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Image         string `json:"image"`
	URL           string `json:"url"`
	AlbumID       string `json:"albumId,omitempty"`
	Album         string `json:"album,omitempty"`
	PrimaryArtist string `json:"primaryArtist,omitempty"`
}

// TopArtist always carries the image_url key; it's null when no image is
// known.
type TopArtist struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

type CatalogArtist struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	ImageURL *string  `json:"image_url"`
	Aliases  []string `json:"aliases,omitempty"`
}

type CatalogSong struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Image  string `json:"image"`
	URL    string `json:"url,omitempty"`
}

func NewTopSong(song data.Song) TopSong {
	return TopSong{
		ID:            song.ID,
		Title:         song.Title,
		Artist:        song.Artist,
		Image:         song.ImageURL,
		URL:           song.SourceURL,
		AlbumID:       song.AlbumID,
		Album:         song.Album,
		PrimaryArtist: names.Primary(song.Artist),
	}
}

func NewTopArtist(artist data.Artist) TopArtist {
	return TopArtist{Name: artist.Name, ImageURL: optional(artist.ImageURL)}
}

func NewCatalogArtist(artist data.Artist) CatalogArtist {
	return CatalogArtist{
		ID:       artist.EntityID,
		Name:     artist.Name,
		ImageURL: optional(artist.ImageURL),
		Aliases:  artist.Aliases,
	}
}

func NewCatalogSong(song data.Song) CatalogSong {
	return CatalogSong{
		ID:     song.ID,
		Title:  song.Title,
		Artist: song.Artist,
		Image:  song.ImageURL,
		URL:    song.SourceURL,
	}
}

// Artist converts back to a record. The ID is left for the reconciler to
// derive.
func (a TopArtist) Artist() data.Artist {
	artist := data.Artist{Name: a.Name}
	if a.ImageURL != nil {
		artist.ImageURL = *a.ImageURL
	}
	return artist
}

func (s CatalogSong) Song() data.Song {
	return data.Song{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		ImageURL:  s.Image,
		SourceURL: s.URL,
	}
}

// ReadTopArtists reads a top-artists artifact from disk.
func ReadTopArtists(filename string) (*TopArtistsDoc, error) {
	var doc TopArtistsDoc
	if err := read(filename, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadCatalogSongs reads a song catalog artifact from disk.
func ReadCatalogSongs(filename string) (*CatalogSongsDoc, error) {
	var doc CatalogSongsDoc
	if err := read(filename, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func read(filename string, v any) error {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading snapshot '%s': %w", filename, err)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("error decoding snapshot '%s': %w", filename, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
