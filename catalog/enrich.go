package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/names"
	"github.com/amonks/tastes/wikidata"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

// An Enricher looks up knowledge-graph images for artists, one artist at
// a time. Lookups go through a circuit breaker: once the knowledge graph
// has failed enough times in a row, the remaining artists keep the images
// they already had.
type Enricher struct {
	images              ImageFinder
	breaker             *gobreaker.CircuitBreaker[string]
	preferAuthoritative bool
}

func NewEnricher(images ImageFinder, failures uint32, preferAuthoritative bool) *Enricher {
	if failures == 0 {
		failures = 1
	}
	settings := gobreaker.Settings{
		Name: "enrichment",
		// Stay open for the rest of the run.
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A miss means the graph answered.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, wikidata.ErrEnrichmentMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	}
	return &Enricher{
		images:              images,
		breaker:             gobreaker.NewCircuitBreaker[string](settings),
		preferAuthoritative: preferAuthoritative,
	}
}

// Enrich returns a copy of artists with images filled in where a lookup
// found one. Lookup failures are logged and leave the artist as it was.
func (e *Enricher) Enrich(ctx context.Context, artists []data.Artist) []data.Artist {
	out := make([]data.Artist, len(artists))
	copy(out, artists)

	var found, skipped int
	for i, artist := range out {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("enrichment interrupted")
			break
		}
		if !names.Enrichable(artist.Name) {
			skipped++
			continue
		}
		if artist.ImageURL != "" && !e.preferAuthoritative {
			continue
		}
		if e.breaker.State() == gobreaker.StateOpen {
			log.Warn().Int("remaining", len(out)-i).Msg("enrichment breaker open, skipping remaining artists")
			break
		}

		image, err := e.breaker.Execute(func() (string, error) {
			return e.images.FindImage(ctx, artist.Name)
		})
		switch {
		case err == nil:
			out[i].ImageURL = image
			found++
		case errors.Is(err, wikidata.ErrEnrichmentMiss):
			log.Debug().Str("name", artist.Name).Msg("no knowledge-graph image")
		default:
			log.Warn().Err(err).Str("name", artist.Name).Msg("image lookup failed")
		}
	}

	log.Info().
		Str("stage", "enrich").
		Int("count", len(out)).
		Int("found", found).
		Int("skipped", skipped).
		Msg("enriched artists")
	return out
}
