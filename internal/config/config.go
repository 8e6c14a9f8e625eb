package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Environment overrides (AFISHA_*) are applied on top.

// Price label policies. See facet.PriceLabel.
const (
	PricePolicyAlways     = "always"
	PricePolicyTicketOnly = "ticket-only"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// GazetteerEntry maps a venue name (or a substring of one) to a fixed point.
type GazetteerEntry struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// FeedURL is the upstream endpoint returning a JSON array of events.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// Timezone is the IANA timezone that defines "today" (e.g. "Asia/Yekaterinburg").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "0 */6 * * *") used
	// to reload the feed. Empty disables scheduled reloads.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// RequestTimeoutSec bounds a single HTTP attempt against the feed.
	RequestTimeoutSec int `yaml:"request_timeout_sec" json:"request_timeout_sec"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// MediaHost is the image host whose URLs get resize parameters appended.
	MediaHost string `yaml:"media_host" json:"media_host"`
	// ImageResize is the query string appended to media host image URLs.
	ImageResize string `yaml:"image_resize" json:"image_resize"`
	// PlaceholderImage is used when no candidate image URL is acceptable.
	PlaceholderImage string `yaml:"placeholder_image" json:"placeholder_image"`

	// DetailBaseURL is the prefix for event detail links ({base}/{slug}).
	DetailBaseURL string `yaml:"detail_base_url" json:"detail_base_url"`

	// PricePolicy controls whether a price tag is shown without a ticket link:
	//   - "always" (default): show price/free tag whenever the price is known
	//   - "ticket-only": only show a label alongside a ticket link
	PricePolicy string `yaml:"price_policy" json:"price_policy"`

	// MapTodayOnly restricts map markers to today's events.
	MapTodayOnly bool `yaml:"map_today_only" json:"map_today_only"`

	// CityCenter anchors synthesized coordinates for unknown venues.
	CityCenter Point `yaml:"city_center" json:"city_center"`

	// Gazetteer lists known venues. Order matters for substring matches.
	Gazetteer []GazetteerEntry `yaml:"gazetteer" json:"gazetteer"`

	// TagKeywords maps a tag category (live, pop, classic) to the keywords
	// that classify a tag into it.
	TagKeywords map[string][]string `yaml:"tag_keywords" json:"tag_keywords"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultGazetteer returns the built-in table of known Perm venues.
func DefaultGazetteer() []GazetteerEntry {
	return []GazetteerEntry{
		{Name: "БКЗ", Lat: 58.0105, Lng: 56.2502},
		{Name: "Театр-Театр", Lat: 58.0095, Lng: 56.2485},
		{Name: "Органный зал", Lat: 58.0115, Lng: 56.2520},
		{Name: "Пермская филармония", Lat: 58.0105, Lng: 56.2502},
		{Name: "Дом культуры", Lat: 58.0100, Lng: 56.2500},
		{Name: "Клуб", Lat: 58.0110, Lng: 56.2510},
	}
}

// DefaultTagKeywords returns the built-in keyword table per tag category.
func DefaultTagKeywords() map[string][]string {
	return map[string][]string{
		"live": {
			"rock", "metal", "punk", "hardcore", "grunge",
			"рок", "метал", "панк", "хардкор", "гранж",
		},
		"pop": {
			"pop", "disco", "electronic", "hip-hop", "hip hop", "rap", "dance",
			"поп", "диско", "электрон", "хип-хоп", "рэп", "танц",
		},
		"classic": {
			"classical", "classic", "jazz", "blues", "folk", "country", "indie", "singer-songwriter",
			"классик", "джаз", "блюз", "фолк", "кантри", "инди", "авторская песня", "бард",
		},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		FeedURL:           "https://permlive.ru/api/concerts",
		Timezone:          "Asia/Yekaterinburg",
		RefreshCron:       "0 */6 * * *",
		RequestTimeoutSec: 15,
		LogLevel:          "info",
		MediaHost:         "permlive.ru",
		ImageResize:       "w=400&h=400&fit=crop&q=80",
		PlaceholderImage:  "zhivoe_logo.jpg",
		DetailBaseURL:     "https://permlive.ru/event",
		PricePolicy:       PricePolicyAlways,
		MapTodayOnly:      false,
		CityCenter:        Point{Lat: 58.0105, Lng: 56.2502},
		Gazetteer:         DefaultGazetteer(),
		TagKeywords:       DefaultTagKeywords(),
		CORSOrigins:       []string{"*"},
		BasicAuth:         nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.FeedURL == "" {
		c.FeedURL = def.FeedURL
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = def.RequestTimeoutSec
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.MediaHost == "" {
		c.MediaHost = def.MediaHost
	}
	if c.ImageResize == "" {
		c.ImageResize = def.ImageResize
	}
	c.ImageResize = strings.TrimPrefix(c.ImageResize, "?")
	if c.PlaceholderImage == "" {
		c.PlaceholderImage = def.PlaceholderImage
	}
	if c.DetailBaseURL == "" {
		c.DetailBaseURL = def.DetailBaseURL
	}
	c.DetailBaseURL = strings.TrimRight(c.DetailBaseURL, "/")

	switch c.PricePolicy {
	case PricePolicyAlways, PricePolicyTicketOnly:
		// ok
	default:
		// Unknown value; fall back to always showing known prices.
		c.PricePolicy = PricePolicyAlways
	}

	if c.CityCenter == (Point{}) {
		c.CityCenter = def.CityCenter
	}
	if c.Gazetteer == nil {
		c.Gazetteer = def.Gazetteer
	}
	if c.TagKeywords == nil {
		c.TagKeywords = def.TagKeywords
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = def.CORSOrigins
	}
}

// ApplyEnv overrides selected fields from environment variables. getenv is
// usually os.Getenv; tests pass a map lookup.
//
// Recognized variables:
//
//	AFISHA_LISTEN, AFISHA_FEED_URL, AFISHA_TIMEZONE, AFISHA_REFRESH,
//	AFISHA_LOG_LEVEL, AFISHA_PRICE_POLICY, AFISHA_MAP_TODAY_ONLY,
//	AFISHA_REQUEST_TIMEOUT_SEC
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("AFISHA_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := getenv("AFISHA_FEED_URL"); v != "" {
		c.FeedURL = v
	}
	if v := getenv("AFISHA_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v, ok := lookup(getenv, "AFISHA_REFRESH"); ok {
		c.RefreshCron = v
	}
	if v := getenv("AFISHA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("AFISHA_PRICE_POLICY"); v != "" {
		c.PricePolicy = v
	}
	if v := getenv("AFISHA_MAP_TODAY_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.MapTodayOnly = b
		}
	}
	if v := getenv("AFISHA_REQUEST_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RequestTimeoutSec = n
		}
	}
	c.Normalize()
}

// lookup treats the literal value "off" as an explicit empty setting so a
// schedule can be disabled from the environment.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if strings.EqualFold(v, "off") {
		return "", true
	}
	return v, true
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".afisha-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
