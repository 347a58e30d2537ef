package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
)

const (
	ytMaxPageSize     = 100
	ytDefaultPageSize = 100
)

// --- commentThreads.list response schema ---

type ytCommentThreadsResp struct {
	NextPageToken string             `json:"nextPageToken"`
	Items         *[]ytCommentThread `json:"items"` // nil when the key is absent
}

type ytCommentThread struct {
	ID      string `json:"id"`
	Snippet *struct {
		TopLevelComment *ytComment `json:"topLevelComment"`
	} `json:"snippet"`
}

type ytComment struct {
	ID      string `json:"id"`
	Snippet *struct {
		TextDisplay  string `json:"textDisplay"`
		TextOriginal string `json:"textOriginal"`
		LikeCount    *int64 `json:"likeCount"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}

// FetchPage implements comments.PageSource over commentThreads.list.
// Successful pages are kept in the engine cache so a repeated run over the
// same video does not spend quota again.
func (c *YouTubeClient) FetchPage(ctx context.Context, videoID, cursor string, pageSize int) (comments.Page, error) {
	pageSize = clampPageSize(pageSize)
	cacheKey := engine.CacheKey("comments", videoID, cursor, strconv.Itoa(pageSize))
	if page, ok := engine.CacheLoadJSON[comments.Page](ctx, cacheKey); ok {
		return page, nil
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	params.Set("textFormat", "plainText")
	params.Set("maxResults", strconv.Itoa(pageSize))
	if cursor != "" {
		params.Set("pageToken", cursor)
	}

	var resp ytCommentThreadsResp
	if err := c.getJSON(ctx, "/commentThreads", params, &resp); err != nil {
		engine.IncrCommentPageError()
		return comments.Page{}, err
	}
	page, err := resp.toPage()
	if err != nil {
		engine.IncrCommentPageError()
		return comments.Page{}, fmt.Errorf("commentThreads for %s: %w", videoID, err)
	}
	engine.IncrCommentPage(len(page.Items))
	engine.CacheStoreJSON(ctx, cacheKey, page)
	return page, nil
}

// toPage validates the decoded response and converts it to a comments.Page.
func (r *ytCommentThreadsResp) toPage() (comments.Page, error) {
	if r.Items == nil {
		return comments.Page{}, fmt.Errorf("%w: response has no items", comments.ErrMalformedResponse)
	}
	items := make([]comments.RawComment, 0, len(*r.Items))
	for i, th := range *r.Items {
		if th.Snippet == nil || th.Snippet.TopLevelComment == nil {
			return comments.Page{}, fmt.Errorf("%w: item %d has no topLevelComment", comments.ErrMalformedResponse, i)
		}
		tc := th.Snippet.TopLevelComment
		if tc.ID == "" || tc.Snippet == nil {
			return comments.Page{}, fmt.Errorf("%w: item %d has no comment id or snippet", comments.ErrMalformedResponse, i)
		}
		likes := int64(0)
		if tc.Snippet.LikeCount != nil {
			likes = *tc.Snippet.LikeCount
		}
		if likes < 0 {
			return comments.Page{}, fmt.Errorf("%w: comment %s has likeCount %d", comments.ErrMalformedResponse, tc.ID, likes)
		}
		var published time.Time
		if tc.Snippet.PublishedAt != "" {
			t, err := time.Parse(time.RFC3339, tc.Snippet.PublishedAt)
			if err != nil {
				return comments.Page{}, fmt.Errorf("%w: comment %s publishedAt: %w", comments.ErrMalformedResponse, tc.ID, err)
			}
			published = t
		}
		text := tc.Snippet.TextDisplay
		if text == "" {
			text = tc.Snippet.TextOriginal
		}
		items = append(items, comments.RawComment{
			ID:          tc.ID,
			Text:        text,
			LikeCount:   likes,
			PublishedAt: published,
		})
	}
	return comments.Page{Items: items, NextCursor: r.NextPageToken}, nil
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return ytDefaultPageSize
	case n > ytMaxPageSize:
		return ytMaxPageSize
	}
	return n
}
