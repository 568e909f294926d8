package reconcile

import (
	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/names"
)

// An ArtistSet is the accumulator for artist folds: artists in
// first-seen order, indexed by canonical id.
type ArtistSet struct {
	order []data.Artist
	index map[string]int
}

// NewArtistSet returns an empty set.
func NewArtistSet() *ArtistSet {
	return &ArtistSet{index: map[string]int{}}
}

// Add merges an artist into the set. A new canonical id is appended. An
// existing one keeps its display name and first non-empty image; it
// picks up an entity id if it had none, and any aliases it hadn't seen.
func (set *ArtistSet) Add(artist data.Artist) *ArtistSet {
	artist.Name = names.NormalizeDisplay(artist.Name)
	artist.ID = names.Canonicalize(artist.Name)
	if artist.ID == "" {
		return set
	}

	i, ok := set.index[artist.ID]
	if !ok {
		artist.Aliases = mergeAliases(nil, artist.Aliases)
		set.index[artist.ID] = len(set.order)
		set.order = append(set.order, artist)
		return set
	}

	existing := set.order[i]
	if existing.ImageURL == "" {
		existing.ImageURL = artist.ImageURL
	}
	if existing.EntityID == "" {
		existing.EntityID = artist.EntityID
	}
	existing.Aliases = mergeAliases(existing.Aliases, artist.Aliases)
	set.order[i] = existing
	return set
}

// Has reports whether the canonical id is present.
func (set *ArtistSet) Has(id string) bool {
	_, ok := set.index[id]
	return ok
}

// Len returns the number of distinct artists.
func (set *ArtistSet) Len() int { return len(set.order) }

// List returns the artists in first-seen order.
func (set *ArtistSet) List() []data.Artist {
	out := make([]data.Artist, len(set.order))
	copy(out, set.order)
	return out
}

func mergeAliases(have, more []string) []string {
	if len(more) == 0 {
		return have
	}
	seen := make(map[string]struct{}, len(have)+len(more))
	for _, alias := range have {
		seen[alias] = struct{}{}
	}
	for _, alias := range more {
		alias = names.NormalizeDisplay(alias)
		if alias == "" {
			continue
		}
		if _, ok := seen[alias]; ok {
			continue
		}
		seen[alias] = struct{}{}
		have = append(have, alias)
	}
	return have
}

// DeriveArtists splits every song's credit string and returns each
// credited artist once, in first-appearance order. An artist's image is
// the image of the first song that credits them and has one.
func DeriveArtists(songs []data.Song) []data.Artist {
	return Fold(songs, NewArtistSet(), func(set *ArtistSet, song data.Song) *ArtistSet {
		for _, name := range names.SplitCredits(song.Artist) {
			set.Add(data.Artist{Name: name, ImageURL: song.ImageURL})
		}
		return set
	}).List()
}

// Dedupe folds an artist list onto itself, collapsing artists that share
// a canonical id.
func Dedupe(artists []data.Artist) []data.Artist {
	return Fold(artists, NewArtistSet(), (*ArtistSet).Add).List()
}

// Merge matches entities onto base by canonical display name. A matched
// entity contributes its image only where the base artist has none, and
// its entity id and aliases. Unmatched entities are appended after base,
// in entity order.
//
// Distinct entities whose labels canonicalize to the same id are merged
// into one artist; there is no disambiguation.
func Merge(base, entities []data.Artist) []data.Artist {
	set := Fold(base, NewArtistSet(), (*ArtistSet).Add)
	return Fold(entities, set, (*ArtistSet).Add).List()
}

// Top returns at most the first n artists.
func Top(artists []data.Artist, n int) []data.Artist {
	if n < 0 || len(artists) <= n {
		return artists
	}
	return artists[:n]
}
