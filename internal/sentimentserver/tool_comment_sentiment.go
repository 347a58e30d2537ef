package sentimentserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCommentSentiment(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "comment_sentiment",
		Description: "Analyze the sentiment of every top-level comment on one YouTube video. Returns label counts and percentages (positive/neutral/negative), the most frequent terms, and the most-liked positive and negative comments that mention a phone feature and brand.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.commentSentiment)
}

func (s *Service) commentSentiment(ctx context.Context, _ *mcp.CallToolRequest, input CommentSentimentInput) (*mcp.CallToolResult, CommentSentimentOutput, error) {
	if input.Video == "" {
		return nil, CommentSentimentOutput{}, fmt.Errorf("video is required")
	}
	videoID := sources.ExtractVideoID(input.Video)
	if videoID == "" {
		return nil, CommentSentimentOutput{}, fmt.Errorf("not a YouTube video link or ID: %q", input.Video)
	}

	p := s.pipelineFor(input.PageSize, input.TopTerms, input.TopComments)
	res, err := runTracked(ctx, "comment_sentiment:"+videoID, func(ctx context.Context) (*comments.Result, error) {
		return p.Run(ctx, videoID)
	})
	if err != nil {
		return nil, CommentSentimentOutput{}, err
	}

	out := CommentSentimentOutput{
		VideoID:   videoID,
		Total:     res.Report.Total,
		Truncated: len(res.Videos) == 1 && res.Videos[0].Truncated,
		Report:    res.Report,
	}
	if s.Videos != nil {
		title, err := s.Videos.VideoTitle(ctx, videoID)
		if err != nil {
			slog.Warn("comment_sentiment: title lookup failed", slog.String("video", videoID), slog.Any("error", err))
		}
		out.Title = title
	}
	if input.IncludeComments {
		out.Comments = commentItems(res.Classified)
	}
	return nil, out, nil
}
