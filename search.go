package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/tastes/config"
	"github.com/amonks/tastes/snapshot"
	"github.com/goccy/go-json"
)

// search runs one free-text song search and prints the results as JSON.
func search(ctx context.Context, cfg *config.Config, args []string) error {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		return errors.New("usage: tastes search $term")
	}

	found, err := newITunes(cfg, newClient(cfg)).Search(ctx, term, cfg.Search.PerSeed)
	if err != nil {
		return err
	}

	songs := make([]snapshot.CatalogSong, 0, len(found))
	for _, song := range found {
		songs = append(songs, snapshot.NewCatalogSong(song))
	}
	bs, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding results: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(bs))
	return err
}
