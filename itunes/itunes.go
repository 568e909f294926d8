// Package itunes talks to the iTunes Search API: free-text song search,
// and batched album lookups by track id.
package itunes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/amonks/tastes/artwork"
	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/request"
	"github.com/rs/zerolog/log"
)

// Source is the provenance tag for snapshots built from search results.
const Source = "itunes-search"

type Options struct {
	SearchURL   string
	LookupURL   string
	Country     string
	ArtworkSize int
}

type Client struct {
	http *request.Client
	lim  *limiter.Limiter
	opts Options
}

func New(http *request.Client, lim *limiter.Limiter, opts Options) *Client {
	return &Client{http: http, lim: lim, opts: opts}
}

// Search returns up to limit songs matching term, in the order the API
// ranks them, without duplicate track ids.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]data.Song, error) {
	query := url.Values{}
	query.Add("term", term)
	query.Add("media", "music")
	query.Add("entity", "song")
	query.Add("limit", strconv.Itoa(limit))
	if c.opts.Country != "" {
		query.Add("country", c.opts.Country)
	}

	var results searchResults
	if err := c.http.GetJSON(ctx, c.lim, c.opts.SearchURL, query, nil, &results); err != nil {
		return nil, fmt.Errorf("search error for '%s': %w", term, err)
	}

	seen := map[string]struct{}{}
	var songs []data.Song
	for _, track := range results.Results {
		song, ok := track.song(c.opts.ArtworkSize)
		if !ok {
			continue
		}
		if _, dup := seen[song.ID]; dup {
			continue
		}
		seen[song.ID] = struct{}{}
		songs = append(songs, song)
	}
	return songs, nil
}

// SearchSeeds runs one Search per seed, and concatenates the results,
// keeping the first occurrence of each track id. A failing seed is logged
// and skipped; SearchSeeds only fails if every seed does.
func (c *Client) SearchSeeds(ctx context.Context, seeds []string, perSeed int) ([]data.Song, error) {
	seen := map[string]struct{}{}
	var (
		songs []data.Song
		errs  []error
	)
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := c.Search(ctx, seed, perSeed)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		} else if err != nil {
			log.Warn().Err(err).Str("source", Source).Str("seed", seed).Msg("skipping seed")
			errs = append(errs, err)
			continue
		}

		added := 0
		for _, song := range found {
			if _, dup := seen[song.ID]; dup {
				continue
			}
			seen[song.ID] = struct{}{}
			songs = append(songs, song)
			added++
		}
		log.Debug().Str("seed", seed).Int("count", added).Msg("seed searched")
	}

	if len(seeds) > 0 && len(errs) == len(seeds) {
		return nil, fmt.Errorf("every seed failed: %w", errors.Join(errs...))
	}
	return songs, nil
}

// LookupAlbums fetches album identity for the given track ids in one
// request. Ids the upstream doesn't know are absent from the result.
func (c *Client) LookupAlbums(ctx context.Context, trackIDs []string) (map[string]data.Album, error) {
	if len(trackIDs) == 0 {
		return map[string]data.Album{}, nil
	}

	query := url.Values{}
	query.Add("id", strings.Join(trackIDs, ","))
	query.Add("entity", "song")
	if c.opts.Country != "" {
		query.Add("country", c.opts.Country)
	}

	var results lookupResults
	if err := c.http.GetJSON(ctx, c.lim, c.opts.LookupURL, query, nil, &results); err != nil {
		return nil, fmt.Errorf("album lookup error: %w", err)
	}

	albums := make(map[string]data.Album, len(trackIDs))
	for _, result := range results.Results {
		if result.WrapperType != "track" || result.TrackID == 0 || result.CollectionID == 0 {
			continue
		}
		albums[strconv.FormatInt(result.TrackID, 10)] = data.Album{
			ID:   strconv.FormatInt(result.CollectionID, 10),
			Name: strings.TrimSpace(result.CollectionName),
		}
	}
	return albums, nil
}

type searchResults struct {
	ResultCount int           `json:"resultCount"`
	Results     []searchTrack `json:"results"`
}

type searchTrack struct {
	Kind           string `json:"kind"`
	TrackID        int64  `json:"trackId"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionID   int64  `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
	TrackViewURL   string `json:"trackViewUrl"`
}

func (t searchTrack) song(artworkSize int) (data.Song, bool) {
	title := strings.TrimSpace(t.TrackName)
	if t.TrackID == 0 || title == "" {
		return data.Song{}, false
	}
	song := data.Song{
		ID:        strconv.FormatInt(t.TrackID, 10),
		Title:     title,
		Artist:    strings.TrimSpace(t.ArtistName),
		Album:     strings.TrimSpace(t.CollectionName),
		ImageURL:  artwork.Upscale(strings.TrimSpace(t.ArtworkURL100), artworkSize),
		SourceURL: strings.TrimSpace(t.TrackViewURL),
	}
	if t.CollectionID != 0 {
		song.AlbumID = strconv.FormatInt(t.CollectionID, 10)
	}
	return song, true
}

type lookupResults struct {
	ResultCount int            `json:"resultCount"`
	Results     []lookupResult `json:"results"`
}

type lookupResult struct {
	WrapperType    string `json:"wrapperType"`
	TrackID        int64  `json:"trackId"`
	CollectionID   int64  `json:"collectionId"`
	CollectionName string `json:"collectionName"`
}
