package readthrough_test

import (
	"path/filepath"
	"testing"

	"github.com/amonks/tastes/readthrough"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissThenHit(t *testing.T) {
	rt := readthrough.New(filepath.Join(t.TempDir(), "cache"), "http-")

	_, err := rt.Get("https://example.com/a")
	assert.ErrorIs(t, err, readthrough.ErrMiss)

	require.NoError(t, rt.Set("https://example.com/a", []byte(`{"ok":true}`)))

	bs, err := rt.Get("https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(bs))

	_, err = rt.Get("https://example.com/b")
	assert.ErrorIs(t, err, readthrough.ErrMiss)
}

func TestSetOverwrites(t *testing.T) {
	rt := readthrough.New(t.TempDir(), "")
	require.NoError(t, rt.Set("k", []byte("one")))
	require.NoError(t, rt.Set("k", []byte("two")))

	bs, err := rt.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(bs))
}
