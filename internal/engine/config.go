package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	YouTubeAPIBase        string  // overridable for tests
	YouTubeRPS            float64 // Data API requests per second (0 = unlimited)
	ClassifierPath        string
	VocabularyPath        string
	CommentPageSize       int
	CommentMaxPages       int
	TopTerms              int
	TopComments           int
	ClassifyWorkers       int
	SearchMaxVideos       int
	MinViews              int64
	FetchTimeout          time.Duration
	CacheMaxEntries       int
	CacheCleanupInterval  time.Duration
	HTTPClient            *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (comments, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
