// Package sentimentserver exposes the comment sentiment pipeline as MCP tools.
package sentimentserver

import (
	"context"

	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	maxCommentText = 1000
	maxBatchVideos = 50
)

// VideoFinder is the part of the YouTube client the tools need besides comments.
type VideoFinder interface {
	VideoTitle(ctx context.Context, videoID string) (string, error)
	SearchVideos(ctx context.Context, query string, vocab comments.Vocabularies, limit int, minViews int64) ([]sources.Video, error)
}

// Service holds the read-only dependencies shared by every tool call.
type Service struct {
	Pipeline  *comments.Pipeline
	Videos    VideoFinder
	MaxVideos int
	MinViews  int64
}

// RegisterTools registers all sentiment tools on the given MCP server:
// comment_sentiment, comment_sentiment_batch, keyword_sentiment.
func RegisterTools(server *mcp.Server, svc *Service) {
	registerCommentSentiment(server, svc)
	registerBatchSentiment(server, svc)
	registerKeywordSentiment(server, svc)
}

// pipelineFor copies the shared pipeline with per-call overrides applied.
// Zero values keep the configured defaults.
func (s *Service) pipelineFor(pageSize, topTerms, topComments int) *comments.Pipeline {
	p := *s.Pipeline
	if pageSize > 0 {
		p.PageSize = pageSize
	}
	if topTerms > 0 {
		p.TopTerms = topTerms
	}
	if topComments > 0 {
		p.TopComments = topComments
	}
	return &p
}

// runTracked runs fn under engine.TrackOperation and counts the run.
func runTracked(ctx context.Context, name string, fn func(context.Context) (*comments.Result, error)) (*comments.Result, error) {
	engine.IncrPipelineRuns()
	var res *comments.Result
	err := engine.TrackOperation(ctx, name, func(ctx context.Context) error {
		var err error
		res, err = fn(ctx)
		return err
	})
	return res, err
}

func commentItems(classified []comments.ClassifiedComment) []CommentItem {
	out := make([]CommentItem, len(classified))
	for i, c := range classified {
		out[i] = CommentItem{
			ID:          c.Comment.ID,
			Text:        engine.TruncateRunes(c.Comment.Text, maxCommentText, "..."),
			Likes:       c.Comment.LikeCount,
			PublishedAt: c.Comment.PublishedAt,
			Label:       c.Label,
		}
	}
	return out
}

func batchOutput(res *comments.Result, includeComments bool) BatchSentimentOutput {
	out := BatchSentimentOutput{
		Videos:  res.Videos,
		Skipped: len(res.Skipped()),
		Total:   res.Report.Total,
		Report:  res.Report,
	}
	if includeComments {
		out.Comments = commentItems(res.Classified)
	}
	return out
}
