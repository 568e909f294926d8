// Package reconcile folds songs and artists from one or more sources into
// de-duplicated, order-preserving lists.
//
// Each operation is a left fold over its input sequence: an accumulator is
// threaded through every element in order and nothing outside the fold is
// touched. Input order is the tie-breaker everywhere: the first song on an
// album wins, the first display name wins, the first image wins.
package reconcile

import (
	"strings"

	"github.com/amonks/tastes/data"
	"github.com/amonks/tastes/names"
)

// Fold applies step to each item in order, threading the accumulator.
func Fold[A, T any](items []T, acc A, step func(A, T) A) A {
	for _, item := range items {
		acc = step(acc, item)
	}
	return acc
}

// AlbumKey is the key songs are de-duplicated by within a primary artist:
// the source album id if there is one, else the lowercased album name,
// else the song's own id (so songs without album metadata never collide
// with each other).
func AlbumKey(song data.Song) string {
	if id := strings.TrimSpace(song.AlbumID); id != "" {
		return "id:" + id
	}
	if name := names.NormalizeDisplay(song.Album); name != "" {
		return "name:" + strings.ToLower(name)
	}
	return "song:" + song.ID
}

// PrimaryArtistID is the canonical id of the first credited artist.
func PrimaryArtistID(song data.Song) string {
	return names.Canonicalize(names.Primary(song.Artist))
}

type songAcc struct {
	kept   []data.Song
	ids    map[string]struct{}
	albums map[string]map[string]struct{}
}

func keepSong(acc songAcc, song data.Song) songAcc {
	if _, seen := acc.ids[song.ID]; seen {
		return acc
	}
	artist, key := PrimaryArtistID(song), AlbumKey(song)
	seen, ok := acc.albums[artist]
	if !ok {
		seen = map[string]struct{}{}
		acc.albums[artist] = seen
	}
	if _, dup := seen[key]; dup {
		return acc
	}
	seen[key] = struct{}{}
	acc.ids[song.ID] = struct{}{}
	acc.kept = append(acc.kept, song)
	return acc
}

// UniqueSongs keeps at most one song per (primary artist, album key), and
// at most one song per id, preserving input order.
func UniqueSongs(songs []data.Song) []data.Song {
	acc := Fold(songs, songAcc{
		ids:    map[string]struct{}{},
		albums: map[string]map[string]struct{}{},
	}, keepSong)
	return acc.kept
}

// UniqueByID keeps the first song for each id, preserving input order.
func UniqueByID(songs []data.Song) []data.Song {
	type acc struct {
		kept []data.Song
		seen map[string]struct{}
	}
	return Fold(songs, acc{seen: map[string]struct{}{}}, func(a acc, song data.Song) acc {
		if song.ID == "" {
			return a
		}
		if _, ok := a.seen[song.ID]; ok {
			return a
		}
		a.seen[song.ID] = struct{}{}
		a.kept = append(a.kept, song)
		return a
	}).kept
}
