package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	CommentPageRequests  atomic.Int64
	CommentPageErrors    atomic.Int64
	CommentsFetched      atomic.Int64
	CommentsClassified   atomic.Int64
	VideosSkipped        atomic.Int64
	YouTubeQuotaErrors   atomic.Int64
	YouTubeSearchRequest atomic.Int64
	YouTubeVideoRequests atomic.Int64
	PipelineRuns         atomic.Int64
}

var metricKeys = []string{
	"comment_page_requests", "comment_page_errors", "comments_fetched",
	"comments_classified", "videos_skipped", "youtube_quota_errors",
	"youtube_search_requests", "youtube_video_requests", "pipeline_runs",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"comment_page_requests":   metrics.CommentPageRequests.Load(),
		"comment_page_errors":     metrics.CommentPageErrors.Load(),
		"comments_fetched":        metrics.CommentsFetched.Load(),
		"comments_classified":     metrics.CommentsClassified.Load(),
		"videos_skipped":          metrics.VideosSkipped.Load(),
		"youtube_quota_errors":    metrics.YouTubeQuotaErrors.Load(),
		"youtube_search_requests": metrics.YouTubeSearchRequest.Load(),
		"youtube_video_requests":  metrics.YouTubeVideoRequests.Load(),
		"pipeline_runs":           metrics.PipelineRuns.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrCommentPage(items int) {
	metrics.CommentPageRequests.Add(1)
	metrics.CommentsFetched.Add(int64(items))
}
func IncrCommentPageError()  { metrics.CommentPageErrors.Add(1) }
func IncrYouTubeQuotaError() { metrics.YouTubeQuotaErrors.Add(1) }
func IncrYouTubeSearch()     { metrics.YouTubeSearchRequest.Add(1) }
func IncrYouTubeVideo()      { metrics.YouTubeVideoRequests.Add(1) }

// Incrementors for comments/ sub-package.
func IncrCommentsClassified(n int64) { metrics.CommentsClassified.Add(n) }
func IncrVideosSkipped()             { metrics.VideosSkipped.Add(1) }
func IncrPipelineRuns()              { metrics.PipelineRuns.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
