package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/tastes/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 10, cfg.Catalog.TopArtists)
	assert.Len(t, cfg.Search.SeedList(), 26)
}

func TestFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
charts:
  country: gb
  limit: 25
wikidata:
  delay: 1s
catalog:
  prefer_authoritative: false
`), 0o644))

	t.Setenv(config.PathEnvVar, path)
	t.Setenv("TASTES_CHARTS__LIMIT", "10")
	t.Setenv("TASTES_OUTPUT__LEDGER_PATH", "ledger.db")
	t.Setenv("TASTES_HTTP__TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gb", cfg.Charts.Country)
	assert.Equal(t, 10, cfg.Charts.Limit)
	assert.Equal(t, time.Second, cfg.Wikidata.Delay)
	assert.False(t, cfg.Catalog.PreferAuthoritative)
	assert.Equal(t, "ledger.db", cfg.Output.LedgerPath)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.SPARQLURL)
}

func TestDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("server:\n  addr: ':9999'\n"), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	for key, value := range map[string]string{
		"TASTES_CHARTS__LIMIT":        "0",
		"TASTES_CHARTS__COUNTRY":      "usa",
		"TASTES_LOG__FORMAT":          "xml",
		"TASTES_WIKIDATA__SPARQL_URL": "not a url",
		"TASTES_CATALOG__TOP_ARTISTS": "0",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.PathEnvVar, "does-not-exist.yaml")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestSeedList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "é"}, config.SearchConfig{Seeds: "a b é"}.SeedList())
}
