// Package readthrough is an on-disk cache of upstream response bodies,
// keyed by request URL. It exists so development reruns don't hammer the
// upstreams; production runs leave it disabled.
package readthrough

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func New(dir, prefix string) *ReadThrough {
	return &ReadThrough{dir: dir, prefix: prefix}
}

type ReadThrough struct {
	dir, prefix string
}

var ErrMiss = errors.New("cache miss")

// Get returns the cached body for key, or an error wrapping ErrMiss.
func (rt *ReadThrough) Get(key string) ([]byte, error) {
	hash, filename := rt.hashAndFilename(key)

	bs, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cache miss for '%s': %w", hash, ErrMiss)
	} else if err != nil {
		return nil, fmt.Errorf("error reading cache file '%s': %w", hash, err)
	}
	return bs, nil
}

// Set stores body under key, replacing whatever was there.
func (rt *ReadThrough) Set(key string, body []byte) error {
	hash, filename := rt.hashAndFilename(key)

	if err := os.MkdirAll(rt.dir, 0o755); err != nil {
		return fmt.Errorf("error creating cache dir '%s': %w", rt.dir, err)
	}

	tmp, err := os.CreateTemp(rt.dir, rt.prefix+"tmp-*")
	if err != nil {
		return fmt.Errorf("error opening cache file '%s' for write: %w", hash, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing cache file '%s': %w", hash, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("error moving cache file '%s' into place: %w", hash, err)
	}
	return nil
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	var hasher = sha256.New()
	hasher.Write([]byte(key))
	hash := hex.EncodeToString(hasher.Sum(nil))
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
