package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string

	NominatimURL string
	OverpassURL  string
	UserAgent    string

	ThemesDir string
	OutputDir string

	DefaultTheme  string
	DefaultRadius int
	DefaultDPI    int

	GeocodeTimeout time.Duration
	FetchTimeout   time.Duration

	CacheEnabled bool
	RedisAddr    string
	CacheTTL     time.Duration
	CacheRes     int
	CacheTimeout time.Duration
}

func FromEnv() Config {
	res := getint("CACHE_H3_RES", 6)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		NominatimURL: getenv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		OverpassURL:  getenv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		UserAgent:    getenv("USER_AGENT", "mapposter/1.0"),

		ThemesDir: getenv("THEMES_DIR", "themes"),
		OutputDir: getenv("OUTPUT_DIR", "posters"),

		DefaultTheme:  getenv("DEFAULT_THEME", "feature_based"),
		DefaultRadius: getint("DEFAULT_RADIUS_M", 12000),
		DefaultDPI:    getint("DEFAULT_DPI", 300),

		GeocodeTimeout: getduration("GEOCODE_TIMEOUT", 10*time.Second),
		FetchTimeout:   getduration("FETCH_TIMEOUT", 90*time.Second),

		CacheEnabled: getbool("CACHE_ENABLED", false),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:     getduration("CACHE_TTL", 24*time.Hour),
		CacheRes:     res,
		CacheTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
