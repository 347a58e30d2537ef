package sentimentserver

import (
	"time"

	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/engine/sources"
)

// --- Input types ---

// CommentSentimentInput is the input for the comment_sentiment tool.
type CommentSentimentInput struct {
	Video           string `json:"video" jsonschema:"YouTube video link (watch, youtu.be, shorts, embed) or 11-char video ID"`
	PageSize        int    `json:"page_size,omitempty" jsonschema:"Comments per API page, 1-100 (default: 100)"`
	TopTerms        int    `json:"top_terms,omitempty" jsonschema:"How many frequent terms to return (default: 20)"`
	TopComments     int    `json:"top_comments,omitempty" jsonschema:"How many top positive and negative comments to return (default: 5)"`
	IncludeComments bool   `json:"include_comments,omitempty" jsonschema:"Also return every classified comment"`
}

// BatchSentimentInput is the input for the comment_sentiment_batch tool.
type BatchSentimentInput struct {
	Videos          []string `json:"videos" jsonschema:"YouTube video links or IDs, processed in order; a video given more than once (same ID in any link form) is analyzed once, at its first position"`
	PageSize        int      `json:"page_size,omitempty" jsonschema:"Comments per API page, 1-100 (default: 100)"`
	TopTerms        int      `json:"top_terms,omitempty" jsonschema:"How many frequent terms to return (default: 20)"`
	TopComments     int      `json:"top_comments,omitempty" jsonschema:"How many top positive and negative comments to return (default: 5)"`
	IncludeComments bool     `json:"include_comments,omitempty" jsonschema:"Also return every classified comment"`
}

// KeywordSentimentInput is the input for the keyword_sentiment tool.
type KeywordSentimentInput struct {
	Query       string `json:"query" jsonschema:"Search query; must mention a phone brand or feature (e.g. samsung camera)"`
	MaxVideos   int    `json:"max_videos,omitempty" jsonschema:"Search results to consider, ranked by views (default: 5, max 50)"`
	MinViews    int64  `json:"min_views,omitempty" jsonschema:"Keep videos with more views than this (default: 50000)"`
	TopTerms    int    `json:"top_terms,omitempty" jsonschema:"How many frequent terms to return (default: 20)"`
	TopComments int    `json:"top_comments,omitempty" jsonschema:"How many top positive and negative comments to return (default: 5)"`
}

// --- Output types (JSON responses) ---

// CommentItem is one classified comment as shown to the caller.
type CommentItem struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Likes       int64          `json:"likes"`
	PublishedAt time.Time      `json:"published_at,omitzero"`
	Label       comments.Label `json:"label"`
}

// CommentSentimentOutput is the single-video result.
type CommentSentimentOutput struct {
	VideoID   string          `json:"video_id"`
	Title     string          `json:"title,omitempty"`
	Total     int             `json:"total"`
	Truncated bool            `json:"truncated,omitempty"`
	Report    comments.Report `json:"report"`
	Comments  []CommentItem   `json:"comments,omitempty"`
}

// BatchSentimentOutput is the multi-video result, with skip notices.
type BatchSentimentOutput struct {
	Videos   []comments.VideoOutcome `json:"videos"`
	Skipped  int                     `json:"skipped"`
	Total    int                     `json:"total"`
	Report   comments.Report         `json:"report"`
	Comments []CommentItem           `json:"comments,omitempty"`
}

// KeywordSentimentOutput is the discovery + batch result.
type KeywordSentimentOutput struct {
	Query   string               `json:"query"`
	Found   []sources.Video      `json:"found"`
	Summary BatchSentimentOutput `json:"summary"`
}
