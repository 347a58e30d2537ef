package sentimentserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerKeywordSentiment(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keyword_sentiment",
		Description: "Find popular YouTube videos for a smartphone query (most viewed first, only videos above a view threshold whose title mentions a phone brand or feature) and analyze their comments as one combined sentiment report.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.keywordSentiment)
}

func (s *Service) keywordSentiment(ctx context.Context, _ *mcp.CallToolRequest, input KeywordSentimentInput) (*mcp.CallToolResult, KeywordSentimentOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, KeywordSentimentOutput{}, fmt.Errorf("query is required")
	}
	if s.Videos == nil {
		return nil, KeywordSentimentOutput{}, fmt.Errorf("video search is not configured")
	}

	limit := toolutil.ClampInt(input.MaxVideos, toolutil.IntOr(s.MaxVideos, 5), maxBatchVideos)
	minViews := s.MinViews
	if input.MinViews > 0 {
		minViews = input.MinViews
	}
	found, err := s.Videos.SearchVideos(ctx, query, s.Pipeline.Vocab, limit, minViews)
	if err != nil {
		return nil, KeywordSentimentOutput{}, err
	}
	out := KeywordSentimentOutput{Query: query, Found: found}
	if len(found) == 0 {
		slog.Info("keyword_sentiment: no videos passed the filters", slog.String("query", query))
		empty := &comments.Result{
			Videos: []comments.VideoOutcome{},
			Report: comments.Aggregate(nil, s.Pipeline.Vocab.Features, s.Pipeline.Vocab.Keywords, input.TopTerms, input.TopComments),
		}
		out.Summary = batchOutput(empty, false)
		return nil, out, nil
	}

	ids := make([]string, len(found))
	for i, v := range found {
		ids[i] = v.ID
	}
	p := s.pipelineFor(0, input.TopTerms, input.TopComments)
	res, err := runTracked(ctx, "keyword_sentiment:"+query, func(ctx context.Context) (*comments.Result, error) {
		return p.RunBatch(ctx, ids)
	})
	if err != nil {
		return nil, KeywordSentimentOutput{}, err
	}
	out.Summary = batchOutput(res, false)
	return nil, out, nil
}
