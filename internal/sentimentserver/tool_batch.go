package sentimentserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"github.com/anatolykoptev/go_sentiment/internal/engine/sources"
	"github.com/anatolykoptev/go_sentiment/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerBatchSentiment(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "comment_sentiment_batch",
		Description: "Analyze comment sentiment across several YouTube videos as one combined report. Videos whose comments cannot be fetched (comments disabled, not found, quota) are skipped with a notice instead of failing the whole run. Repeated videos are analyzed once.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.batchSentiment)
}

func (s *Service) batchSentiment(ctx context.Context, _ *mcp.CallToolRequest, input BatchSentimentInput) (*mcp.CallToolResult, BatchSentimentOutput, error) {
	links := toolutil.CleanList(input.Videos)
	if len(links) == 0 {
		return nil, BatchSentimentOutput{}, fmt.Errorf("videos is required")
	}
	if len(links) > maxBatchVideos {
		return nil, BatchSentimentOutput{}, fmt.Errorf("at most %d videos per batch, got %d", maxBatchVideos, len(links))
	}

	var ids, bad []string
	for _, link := range links {
		id := sources.ExtractVideoID(link)
		if id == "" {
			bad = append(bad, link)
			continue
		}
		ids = append(ids, id)
	}
	if len(bad) > 0 {
		return nil, BatchSentimentOutput{}, fmt.Errorf("not YouTube video links or IDs: %s", strings.Join(bad, ", "))
	}
	// one entry per video, first position wins
	ids = toolutil.CleanList(ids)

	p := s.pipelineFor(input.PageSize, input.TopTerms, input.TopComments)
	res, err := runTracked(ctx, fmt.Sprintf("comment_sentiment_batch:%d", len(ids)), func(ctx context.Context) (*comments.Result, error) {
		return p.RunBatch(ctx, ids)
	})
	if err != nil {
		return nil, BatchSentimentOutput{}, err
	}
	return nil, batchOutput(res, input.IncludeComments), nil
}
