// go_sentiment: YouTube comment sentiment MCP server.
//
// Exposes three MCP tools: comment_sentiment, comment_sentiment_batch,
// keyword_sentiment. The classifier artifact and vocabularies are loaded once
// at startup; a missing or corrupt artifact stops the process.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/engine/sources"
	"github.com/anatolykoptev/go_sentiment/internal/sentimentserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	svc, err := initEngine()
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_sentiment",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_sentiment",
		Version: version,
	}, nil)

	sentimentserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_sentiment",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
	engine.CloseCache()
}

func initEngine() (*sentimentserver.Service, error) {
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		YouTubeRPS:            env.Float("YOUTUBE_RPS", 5),
		ClassifierPath:        env.Str("CLASSIFIER_PATH", "models/sentiment_svm.json"),
		VocabularyPath:        env.Str("VOCABULARY_PATH", ""),
		CommentPageSize:       env.Int("COMMENT_PAGE_SIZE", 100),
		CommentMaxPages:       env.Int("COMMENT_MAX_PAGES", 0),
		TopTerms:              env.Int("TOP_TERMS", comments.DefaultTopTerms),
		TopComments:           env.Int("TOP_COMMENTS", comments.DefaultTopComments),
		ClassifyWorkers:       env.Int("CLASSIFY_WORKERS", 0),
		SearchMaxVideos:       env.Int("SEARCH_MAX_VIDEOS", 5),
		MinViews:              int64(env.Int("MIN_VIEWS", sources.DefaultMinViews)),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 15*time.Second),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}
	c.HTTPClient = &http.Client{
		Timeout: c.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	if c.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY is not set, every comment fetch will fail with invalid_credential")
	}

	classifier, err := comments.LoadClassifier(c.ClassifierPath)
	if err != nil {
		return nil, err
	}
	slog.Info("classifier loaded", slog.String("name", classifier.Name()), slog.String("path", c.ClassifierPath))

	vocab, err := comments.LoadVocabularies(c.VocabularyPath)
	if err != nil {
		return nil, err
	}
	slog.Info("vocabularies loaded",
		slog.Int("features", vocab.Features.Len()), slog.Int("keywords", vocab.Keywords.Len()))

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	yt := sources.NewYouTubeClient(engine.Cfg)
	return &sentimentserver.Service{
		Pipeline: &comments.Pipeline{
			Collector:   &comments.Collector{Source: yt, MaxPages: c.CommentMaxPages},
			Normalizer:  comments.DefaultNormalizer(),
			Classifier:  classifier,
			Vocab:       vocab,
			PageSize:    c.CommentPageSize,
			TopTerms:    c.TopTerms,
			TopComments: c.TopComments,
			Workers:     c.ClassifyWorkers,
		},
		Videos:    yt,
		MaxVideos: c.SearchMaxVideos,
		MinViews:  c.MinViews,
	}, nil
}
