// Package charts reads the Apple Music "most played" RSS feed.
package charts

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/tastes/artwork"
	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/request"
	"github.com/rs/zerolog/log"
)

// Source is the provenance tag for snapshots built from this feed.
const Source = "apple-music-most-played"

type Options struct {
	BaseURL     string
	Country     string
	Limit       int
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

// Country is the region the feed is fetched for.
func (c *Client) Country() string { return c.opts.Country }

// Fetch returns the ranked chart, best first. Entries without an id or a
// title are dropped.
//
// The request is basically,
//
//	https://rss.applemarketingtools.com/api/v2/us/music/most-played/50/songs.json
func (c *Client) Fetch(ctx context.Context) ([]data.Song, error) {
	feedURL := fmt.Sprintf("%s/%s/music/most-played/%d/songs.json",
		strings.TrimSuffix(c.opts.BaseURL, "/"), c.opts.Country, c.opts.Limit)

	var results feedResults
	if err := c.http.GetJSON(ctx, c.lim, feedURL, nil, nil, &results); err != nil {
		return nil, fmt.Errorf("charts fetch error: %w", err)
	}

	songs := make([]data.Song, 0, len(results.Feed.Results))
	for i, entry := range results.Feed.Results {
		song, ok := entry.song(c.opts.ArtworkSize)
		if !ok {
			log.Warn().Int("rank", i+1).Msg("dropping chart entry without id or title")
			continue
		}
		songs = append(songs, song)
	}
	return songs, nil
}

type feedResults struct {
	Feed struct {
		Title   string `json:"title"`
		Country string `json:"country"`
		Updated string `json:"updated"`
		Results []feedEntry `json:"results"`
	} `json:"feed"`
}

type feedEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	URL           string `json:"url"`
}

func (e feedEntry) song(artworkSize int) (data.Song, bool) {
	id, title := strings.TrimSpace(e.ID), strings.TrimSpace(e.Name)
	if id == "" || title == "" {
		return data.Song{}, false
	}
	return data.Song{
		ID:        id,
		Title:     title,
		Artist:    strings.TrimSpace(e.ArtistName),
		ImageURL:  artwork.Upscale(strings.TrimSpace(e.ArtworkURL100), artworkSize),
		SourceURL: strings.TrimSpace(e.URL),
	}, true
}
