package reconcile_test

import (
	"testing"

	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/reconcile"
	"github.com/stretchr/testify/assert"
)

func ids(songs []data.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return out
}

func artistNames(artists []data.Artist) []string {
	out := make([]string, len(artists))
	for i, a := range artists {
		out[i] = a.Name
	}
	return out
}

func TestScenario(t *testing.T) {
	songs := []data.Song{
		{ID: "1", Title: "X", Artist: "A & B", AlbumID: "al1"},
		{ID: "2", Title: "Y", Artist: "A", AlbumID: "al1"},
		{ID: "3", Title: "Z", Artist: "A", AlbumID: "al2"},
	}
	unique := reconcile.UniqueSongs(songs)
	assert.Equal(t, []string{"1", "3"}, ids(unique))
	assert.Equal(t, []string{"A", "B"}, artistNames(reconcile.DeriveArtists(unique)))
}

func TestUniqueSongsSameAlbumFirstWins(t *testing.T) {
	songs := []data.Song{
		{ID: "a", Title: "First", Artist: "Taylor Swift", AlbumID: "1989"},
		{ID: "b", Title: "Second", Artist: "taylor  swift", AlbumID: "1989"},
	}
	unique := reconcile.UniqueSongs(songs)
	assert.Len(t, unique, 1)
	assert.Equal(t, "First", unique[0].Title)
}

func TestUniqueSongsAlbumNameFallback(t *testing.T) {
	songs := []data.Song{
		{ID: "a", Artist: "A", Album: "Midnights"},
		{ID: "b", Artist: "A", Album: "MIDNIGHTS "},
		{ID: "c", Artist: "B", Album: "Midnights"},
	}
	assert.Equal(t, []string{"a", "c"}, ids(reconcile.UniqueSongs(songs)))
}

func TestUniqueSongsWithoutAlbumMetadataAreKept(t *testing.T) {
	songs := []data.Song{
		{ID: "a", Artist: "A"},
		{ID: "b", Artist: "A"},
		{ID: "a", Artist: "A"},
	}
	assert.Equal(t, []string{"a", "b"}, ids(reconcile.UniqueSongs(songs)))
}

func TestUniqueSongsPartitionsByPrimaryArtistOnly(t *testing.T) {
	songs := []data.Song{
		{ID: "1", Artist: "A & B", AlbumID: "x"},
		{ID: "2", Artist: "B", AlbumID: "x"},
	}
	// B is only a secondary credit on song 1, so song 2 survives.
	assert.Equal(t, []string{"1", "2"}, ids(reconcile.UniqueSongs(songs)))
}

func TestAlbumKeyInvariant(t *testing.T) {
	songs := []data.Song{
		{ID: "1", Artist: "A", AlbumID: "x"},
		{ID: "2", Artist: "A feat. B", AlbumID: "x"},
		{ID: "3", Artist: "A", Album: "x"},
		{ID: "4", Artist: "C", AlbumID: "x"},
		{ID: "5", Artist: "a", AlbumID: "y"},
		{ID: "6", Artist: "A, D", AlbumID: "y"},
	}
	seen := map[[2]string]bool{}
	for _, song := range reconcile.UniqueSongs(songs) {
		key := [2]string{reconcile.PrimaryArtistID(song), reconcile.AlbumKey(song)}
		assert.False(t, seen[key], "duplicate %v", key)
		seen[key] = true
	}
}

func TestUniqueByID(t *testing.T) {
	songs := []data.Song{{ID: "1"}, {ID: ""}, {ID: "2"}, {ID: "1"}}
	assert.Equal(t, []string{"1", "2"}, ids(reconcile.UniqueByID(songs)))
}

func TestDeriveArtistsFirstAppearanceOrder(t *testing.T) {
	songs := []data.Song{
		{ID: "1", Artist: "C & A"},
		{ID: "2", Artist: "A"},
		{ID: "3", Artist: "B, C"},
		{ID: "4", Artist: "A & B"},
	}
	assert.Equal(t, []string{"C", "A", "B"}, artistNames(reconcile.DeriveArtists(songs)))
}

func TestDeriveArtistsFirstNameAndImageWin(t *testing.T) {
	songs := []data.Song{
		{ID: "1", Artist: "taylor   swift"},
		{ID: "2", Artist: "Taylor Swift", ImageURL: "https://img/2.jpg"},
		{ID: "3", Artist: "TAYLOR SWIFT", ImageURL: "https://img/3.jpg"},
	}
	artists := reconcile.DeriveArtists(songs)
	assert.Equal(t, []data.Artist{{
		ID:       "taylor-swift",
		Name:     "taylor swift",
		ImageURL: "https://img/2.jpg",
	}}, artists)
}

func TestMerge(t *testing.T) {
	base := []data.Artist{
		{Name: "Drake"},
		{Name: "SZA", ImageURL: "https://charts/sza.jpg"},
	}
	entities := []data.Artist{
		{Name: "SZA", EntityID: "Q1", ImageURL: "https://kg/sza.jpg", Aliases: []string{"Solána Rowe"}},
		{Name: "drake", EntityID: "Q2", ImageURL: "https://kg/drake.jpg"},
		{Name: "Björk", EntityID: "Q3", ImageURL: "https://kg/bjork.jpg"},
	}
	merged := reconcile.Merge(base, entities)
	assert.Equal(t, []data.Artist{
		{ID: "drake", Name: "Drake", EntityID: "Q2", ImageURL: "https://kg/drake.jpg"},
		{ID: "sza", Name: "SZA", EntityID: "Q1", ImageURL: "https://charts/sza.jpg", Aliases: []string{"Solána Rowe"}},
		{ID: "björk", Name: "Björk", EntityID: "Q3", ImageURL: "https://kg/bjork.jpg"},
	}, merged)
}

func TestMergeHomonymsCollapse(t *testing.T) {
	entities := []data.Artist{
		{Name: "Nirvana", EntityID: "Q11649", Aliases: []string{"Nirvana (band)"}},
		{Name: "Nirvana", EntityID: "Q1543622", Aliases: []string{"Nirvana (UK band)"}},
	}
	merged := reconcile.Merge(nil, entities)
	assert.Len(t, merged, 1)
	assert.Equal(t, "Q11649", merged[0].EntityID)
	assert.Equal(t, []string{"Nirvana (band)", "Nirvana (UK band)"}, merged[0].Aliases)
}

func TestDedupe(t *testing.T) {
	artists := []data.Artist{{Name: "Taylor Swift"}, {Name: "taylor   swift", ImageURL: "x"}, {Name: " "}}
	assert.Equal(t, []data.Artist{{ID: "taylor-swift", Name: "Taylor Swift", ImageURL: "x"}}, reconcile.Dedupe(artists))
}

func TestTop(t *testing.T) {
	artists := []data.Artist{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Len(t, reconcile.Top(artists, 2), 2)
	assert.Len(t, reconcile.Top(artists, 10), 3)
	assert.Len(t, reconcile.Top(artists, -1), 3)
}

func TestFold(t *testing.T) {
	sum := reconcile.Fold([]int{1, 2, 3}, 0, func(acc, n int) int { return acc + n })
	assert.Equal(t, 6, sum)
}
