package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Itinerary source
	BaseURL      string
	ItineraryIDs []string
	PricingFile  string

	// HTTP behaviour
	HTTPTimeout time.Duration
	BlockTime   time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Watch mode
	CrawlInterval time.Duration
	ServerAddr    string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "100"))
	httpTimeout, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "3600"))

	return &Config{
		BaseURL:              getEnv("NCL_BASE_URL", "https://www.ncl.com/cruises/"),
		ItineraryIDs:         SplitList(getEnv("ITINERARY_IDS", "BLISS7SEAJNUSGYKTNVICSEA")),
		PricingFile:          getEnv("PRICING_FILE", ""),
		HTTPTimeout:          time.Duration(httpTimeout) * time.Second,
		BlockTime:            time.Duration(blockTime) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "cruisewatch"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		Environment:          getEnv("CRUISEWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the scraper cannot work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return apperrors.NewConfiguration("invalid NCL_BASE_URL", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfiguration(fmt.Sprintf("NCL_BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL), nil)
	}
	if len(c.ItineraryIDs) == 0 {
		return apperrors.NewConfiguration("ITINERARY_IDS must name at least one itinerary", nil)
	}
	if c.HTTPTimeout <= 0 {
		return apperrors.NewConfiguration("HTTP_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.CrawlInterval <= 0 {
		return apperrors.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return apperrors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// JoinURL appends a path segment to base, inserting a slash when needed
func JoinURL(base, segment string) string {
	if strings.HasSuffix(base, "/") {
		return base + segment
	}
	return base + "/" + segment
}

// SplitList splits a comma separated list, dropping blank entries and keeping order
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
