// Package wikidata queries the Wikidata knowledge graph: a paged catalog
// of musicians that have an image, and one-off image lookups by name.
package wikidata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/request"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// Source is the provenance tag for snapshots built from the graph.
const Source = "wikidata"

// ErrEnrichmentMiss means a lookup found no matching entity, or an entity
// with no image.
var ErrEnrichmentMiss = errors.New("enrichment miss")

const commonsFilePath = "https://commons.wikimedia.org/wiki/Special:FilePath/"

type Options struct {
	SPARQLURL  string
	APIURL     string
	Language   string
	PageSize   int
	MaxRecords int
}

type Client struct {
	http *request.Client
	lim  *limiter.Limiter
	opts Options
	lang string
}

// New returns a Client. Every request waits on lim, so lim's delay is the
// pause between catalog pages and between enrichment lookups.
func New(http *request.Client, lim *limiter.Limiter, opts Options) (*Client, error) {
	tag, err := language.Parse(opts.Language)
	if err != nil {
		return nil, fmt.Errorf("bad wikidata language '%s': %w", opts.Language, err)
	}
	base, _ := tag.Base()
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	return &Client{http: http, lim: lim, opts: opts, lang: base.String()}, nil
}

// FetchMusicians pages through musical groups and musicians that have an
// image, until MaxRecords entities are collected or a page comes back
// empty. Entities are returned in query order, one per entity id.
func (c *Client) FetchMusicians(ctx context.Context) ([]data.Artist, error) {
	var (
		artists []data.Artist
		seen    = map[string]struct{}{}
	)

	for offset := 0; len(artists) < c.opts.MaxRecords; offset += c.opts.PageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var results sparqlResults
		if err := c.sparql(ctx, catalogQuery(c.lang, c.opts.PageSize, offset), &results); err != nil {
			return nil, fmt.Errorf("catalog page at offset %d: %w", offset, err)
		}

		rows := results.Results.Bindings
		log.Debug().Str("source", Source).Int("offset", offset).Int("count", len(rows)).Msg("fetched catalog page")
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			artist, ok := entity(row)
			if !ok {
				continue
			}
			if _, dup := seen[artist.EntityID]; dup {
				continue
			}
			seen[artist.EntityID] = struct{}{}
			artists = append(artists, artist)
		}
	}

	if len(artists) > c.opts.MaxRecords {
		artists = artists[:c.opts.MaxRecords]
	}
	return artists, nil
}

// FindImage looks for an image of the musician or group labelled exactly
// name. If the graph query finds nothing it falls back to entity search
// plus the top hit's image claim. It returns an error wrapping
// ErrEnrichmentMiss if neither finds an image.
func (c *Client) FindImage(ctx context.Context, name string) (string, error) {
	var results sparqlResults
	if err := c.sparql(ctx, imageQuery(name, c.lang), &results); err != nil {
		return "", fmt.Errorf("image query for '%s': %w", name, err)
	}
	for _, row := range results.Results.Bindings {
		if image := secureImage(row["image"].Value); image != "" {
			return image, nil
		}
	}

	id, err := c.searchEntity(ctx, name)
	if err != nil {
		return "", err
	}
	file, err := c.imageClaim(ctx, id)
	if err != nil {
		return "", err
	}
	return FilePathURL(file), nil
}

// FilePathURL returns the Commons redirect URL for a file name, as stored
// in an image statement.
func FilePathURL(file string) string {
	return commonsFilePath + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(file), " ", "_"))
}

func (c *Client) searchEntity(ctx context.Context, name string) (string, error) {
	query := url.Values{}
	query.Add("action", "wbsearchentities")
	query.Add("search", name)
	query.Add("language", c.lang)
	query.Add("type", "item")
	query.Add("limit", "1")
	query.Add("format", "json")

	var results struct {
		Search []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"search"`
	}
	if err := c.http.GetJSON(ctx, c.lim, c.opts.APIURL, query, nil, &results); err != nil {
		return "", fmt.Errorf("entity search for '%s': %w", name, err)
	}
	if len(results.Search) == 0 || results.Search[0].ID == "" {
		return "", fmt.Errorf("no entity named '%s': %w", name, ErrEnrichmentMiss)
	}
	return results.Search[0].ID, nil
}

func (c *Client) imageClaim(ctx context.Context, id string) (string, error) {
	query := url.Values{}
	query.Add("action", "wbgetclaims")
	query.Add("entity", id)
	query.Add("property", "P18")
	query.Add("format", "json")

	var results struct {
		Claims map[string][]struct {
			Mainsnak struct {
				Datavalue struct {
					Value any    `json:"value"`
					Type  string `json:"type"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"claims"`
	}
	if err := c.http.GetJSON(ctx, c.lim, c.opts.APIURL, query, nil, &results); err != nil {
		return "", fmt.Errorf("image claim for '%s': %w", id, err)
	}
	for _, claim := range results.Claims["P18"] {
		if file, ok := claim.Mainsnak.Datavalue.Value.(string); ok && strings.TrimSpace(file) != "" {
			return file, nil
		}
	}
	return "", fmt.Errorf("no image statement on '%s': %w", id, ErrEnrichmentMiss)
}

func (c *Client) sparql(ctx context.Context, sparql string, v *sparqlResults) error {
	query := url.Values{}
	query.Add("query", sparql)
	query.Add("format", "json")
	header := http.Header{"Accept": {"application/sparql-results+json"}}
	return c.http.GetJSON(ctx, c.lim, c.opts.SPARQLURL, query, header, v)
}

