// Package config loads tastes' configuration: defaults, then an optional
// YAML file, then TASTES_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "TASTES_"

	// PathEnvVar names a config file to load instead of DefaultPath.
	PathEnvVar  = "TASTES_CONFIG"
	DefaultPath = "tastes.yaml"
)

type Config struct {
	Log      LogConfig      `koanf:"log"`
	HTTP     HTTPConfig     `koanf:"http"`
	Output   OutputConfig   `koanf:"output"`
	Charts   ChartsConfig   `koanf:"charts"`
	Search   SearchConfig   `koanf:"search"`
	Wikidata WikidataConfig `koanf:"wikidata"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Server   ServerConfig   `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"user_agent" validate:"required"`

	// When set, upstream responses are cached here and replayed.
	CacheDir string `koanf:"cache_dir"`
}

type OutputConfig struct {
	ArchiveDir string `koanf:"archive_dir" validate:"required"`
	PublicDir  string `koanf:"public_dir" validate:"required"`

	// When set, every artifact write is recorded in this sqlite file.
	LedgerPath string `koanf:"ledger_path"`
}

type ChartsConfig struct {
	URL         string `koanf:"url" validate:"required,url"`
	Country     string `koanf:"country" validate:"required,len=2"`
	Limit       int    `koanf:"limit" validate:"min=1,max=200"`
	ArtworkSize int    `koanf:"artwork_size" validate:"min=0"`

	// Pause between artwork page fetches and album lookups.
	Delay time.Duration `koanf:"delay" validate:"min=0"`
}

type SearchConfig struct {
	SearchURL string `koanf:"search_url" validate:"required,url"`
	LookupURL string `koanf:"lookup_url" validate:"required,url"`
	Country   string `koanf:"country" validate:"omitempty,len=2"`

	// Each character is one seed query.
	Seeds   string        `koanf:"seeds" validate:"required"`
	PerSeed int           `koanf:"per_seed" validate:"min=1,max=200"`
	Delay   time.Duration `koanf:"delay" validate:"min=0"`
}

type WikidataConfig struct {
	SPARQLURL  string        `koanf:"sparql_url" validate:"required,url"`
	APIURL     string        `koanf:"api_url" validate:"required,url"`
	Language   string        `koanf:"language" validate:"required"`
	PageSize   int           `koanf:"page_size" validate:"min=1"`
	MaxRecords int           `koanf:"max_records" validate:"min=1"`
	Delay      time.Duration `koanf:"delay" validate:"min=0"`
}

type CatalogConfig struct {
	TopArtists     int `koanf:"top_artists" validate:"min=1"`
	CatalogArtists int `koanf:"catalog_artists" validate:"min=1"`

	// Replace images already known from the charts with knowledge-graph
	// images, rather than only filling in missing ones.
	PreferAuthoritative bool `koanf:"prefer_authoritative"`

	// Consecutive enrichment failures before enrichment is abandoned for
	// the rest of the run.
	BreakerFailures uint32 `koanf:"breaker_failures" validate:"min=1"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "tastes/1.0 (https://github.com/amonks/tastes)",
		},
		Output: OutputConfig{
			ArchiveDir: "data",
			PublicDir:  "public/data",
		},
		Charts: ChartsConfig{
			URL:         "https://rss.applemarketingtools.com/api/v2",
			Country:     "us",
			Limit:       50,
			ArtworkSize: 600,
			Delay:       200 * time.Millisecond,
		},
		Search: SearchConfig{
			SearchURL: "https://itunes.apple.com/search",
			LookupURL: "https://itunes.apple.com/lookup",
			Country:   "us",
			Seeds:     "abcdefghijklmnopqrstuvwxyz",
			PerSeed:   50,
			Delay:     300 * time.Millisecond,
		},
		Wikidata: WikidataConfig{
			SPARQLURL:  "https://query.wikidata.org/sparql",
			APIURL:     "https://www.wikidata.org/w/api.php",
			Language:   "en",
			PageSize:   500,
			MaxRecords: 2000,
			Delay:      500 * time.Millisecond,
		},
		Catalog: CatalogConfig{
			TopArtists:          10,
			CatalogArtists:      200,
			PreferAuthoritative: true,
			BreakerFailures:     3,
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
	}
}

// Load returns the layered configuration, validated.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading config defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file '%s': %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading config from env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SeedList splits Seeds into one query per character.
func (cfg SearchConfig) SeedList() []string {
	var seeds []string
	for _, r := range cfg.Seeds {
		if r == ' ' {
			continue
		}
		seeds = append(seeds, string(r))
	}
	return seeds
}

func findFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// envKey maps TASTES_CHARTS__COUNTRY to charts.country.
func envKey(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}
