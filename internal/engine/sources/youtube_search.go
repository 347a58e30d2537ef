package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
)

// YouTube video discovery: keyword search ranked by views, filtered by
// popularity and by the domain vocabularies.

const (
	ytSearchMaxResults = 50
	DefaultMinViews    = 50000
)

// ErrOffTopicQuery is returned when a search query mentions neither a
// feature term nor a domain keyword.
var ErrOffTopicQuery = errors.New("query does not mention any known feature or keyword")

var (
	videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareIDRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-char video ID from a YouTube link, or returns
// the input when it already is a bare ID. Returns "" when nothing matches.
func ExtractVideoID(link string) string {
	link = strings.TrimSpace(link)
	if bareIDRE.MatchString(link) {
		return link
	}
	if m := videoIDRE.FindStringSubmatch(link); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// Video is a search hit that passed the discovery filters.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel,omitempty"`
	ViewCount int64  `json:"view_count"`
}

// --- search.list / videos.list response schema ---

type ytSearchResp struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchVideos finds videos for query ordered by view count and keeps those
// with more than minViews views whose title mentions a feature or keyword.
// The query itself must be on topic.
func (c *YouTubeClient) SearchVideos(ctx context.Context, query string, vocab comments.Vocabularies, limit int, minViews int64) ([]Video, error) {
	lowered := strings.ToLower(query)
	if !vocab.Features.MatchedBy(lowered) && !vocab.Keywords.MatchedBy(lowered) {
		return nil, ErrOffTopicQuery
	}
	if limit <= 0 || limit > ytSearchMaxResults {
		limit = 5
	}
	if minViews < 0 {
		minViews = DefaultMinViews
	}

	engine.IncrYouTubeSearch()
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("maxResults", strconv.Itoa(limit))
	var sr ytSearchResp
	if err := c.getJSON(ctx, "/search", params, &sr); err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	var ids []string
	for _, it := range sr.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return []Video{}, nil
	}
	views, err := c.viewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Video, 0, len(ids))
	for _, it := range sr.Items {
		id := it.ID.VideoID
		n, ok := views[id]
		if !ok || n <= minViews {
			continue
		}
		title := strings.ToLower(it.Snippet.Title)
		if !vocab.Features.MatchedBy(title) && !vocab.Keywords.MatchedBy(title) {
			continue
		}
		out = append(out, Video{ID: id, Title: it.Snippet.Title, Channel: it.Snippet.ChannelTitle, ViewCount: n})
	}
	return out, nil
}

// viewCounts fetches statistics for ids in one videos.list call.
func (c *YouTubeClient) viewCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	engine.IncrYouTubeVideo()
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	var vr ytVideosResp
	if err := c.getJSON(ctx, "/videos", params, &vr); err != nil {
		return nil, fmt.Errorf("video statistics: %w", err)
	}
	out := make(map[string]int64, len(vr.Items))
	for _, it := range vr.Items {
		n, err := strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
		if err != nil {
			// hidden or missing statistics
			continue
		}
		out[it.ID] = n
	}
	return out, nil
}

// VideoTitle returns the title of a single video.
func (c *YouTubeClient) VideoTitle(ctx context.Context, videoID string) (string, error) {
	cacheKey := engine.CacheKey("title", videoID)
	if title, ok := engine.CacheLoadJSON[string](ctx, cacheKey); ok {
		return title, nil
	}
	engine.IncrYouTubeVideo()
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)
	var vr ytVideosResp
	if err := c.getJSON(ctx, "/videos", params, &vr); err != nil {
		return "", fmt.Errorf("video title: %w", err)
	}
	if len(vr.Items) == 0 {
		return "", fmt.Errorf("video %s: %w", videoID, comments.ErrVideoNotFound)
	}
	title := vr.Items[0].Snippet.Title
	engine.CacheStoreJSON(ctx, cacheKey, title)
	return title, nil
}
