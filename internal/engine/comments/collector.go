package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Failure classes a PageSource reports. Sources wrap one of these so the
// collector can classify the failure without knowing the transport.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrCommentsDisabled  = errors.New("comments disabled")
	ErrVideoNotFound     = errors.New("video not found")
	ErrTransient         = errors.New("transient failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// ErrorKind names the class of a CollectorError.
type ErrorKind string

const (
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindCommentsDisabled  ErrorKind = "comments_disabled"
	KindNotFound          ErrorKind = "not_found"
	KindTransient         ErrorKind = "transient"
	KindMalformed         ErrorKind = "malformed"
	KindCanceled          ErrorKind = "canceled"
)

// CollectorError is returned instead of a partial comment list.
type CollectorError struct {
	VideoID string
	Kind    ErrorKind
	Pages   int // pages consumed before the failure
	Err     error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collect comments for %s (%s after %d pages): %v", e.VideoID, e.Kind, e.Pages, e.Err)
}

func (e *CollectorError) Unwrap() error { return e.Err }

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrInvalidCredential):
		return KindInvalidCredential
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrCommentsDisabled):
		return KindCommentsDisabled
	case errors.Is(err, ErrVideoNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	default:
		return KindTransient
	}
}

// Page is one response from a paginated comment source.
// An empty NextCursor means there are no further pages.
type Page struct {
	Items      []RawComment
	NextCursor string
}

// PageSource fetches one page of top-level comments. cursor is "" for the first page.
type PageSource interface {
	FetchPage(ctx context.Context, videoID, cursor string, pageSize int) (Page, error)
}

// PageSourceFunc adapts a function to PageSource.
type PageSourceFunc func(ctx context.Context, videoID, cursor string, pageSize int) (Page, error)

func (f PageSourceFunc) FetchPage(ctx context.Context, videoID, cursor string, pageSize int) (Page, error) {
	return f(ctx, videoID, cursor, pageSize)
}

// Collector walks every page of a video's comments.
type Collector struct {
	Source   PageSource
	MaxPages int // 0 = follow cursors until exhausted
}

// Collection is a finished walk over one video's pages.
type Collection struct {
	Comments  []RawComment
	Pages     int
	Truncated bool // MaxPages stopped the walk while a cursor remained
}

// Collect returns all comments for videoID in retrieval order. Pages are
// requested strictly one after another since each cursor comes from the
// previous response. Any source failure aborts with a *CollectorError.
func (c *Collector) Collect(ctx context.Context, videoID string, pageSize int) ([]RawComment, error) {
	col, err := c.CollectPages(ctx, videoID, pageSize)
	if err != nil {
		return nil, err
	}
	return col.Comments, nil
}

// CollectPages is Collect plus the page count and whether MaxPages cut
// the walk short.
func (c *Collector) CollectPages(ctx context.Context, videoID string, pageSize int) (Collection, error) {
	var (
		all       []RawComment
		cursor    string
		pages     int
		truncated bool
		seen      = make(map[string]bool)
	)
	fail := func(err error) (Collection, error) {
		return Collection{}, &CollectorError{VideoID: videoID, Kind: classify(err), Pages: pages, Err: err}
	}
	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		page, err := c.Source.FetchPage(ctx, videoID, cursor, pageSize)
		if err != nil {
			return fail(err)
		}
		pages++
		all = append(all, page.Items...)

		if page.NextCursor == "" {
			break
		}
		if seen[page.NextCursor] {
			return fail(fmt.Errorf("%w: cursor %q repeated", ErrMalformedResponse, page.NextCursor))
		}
		seen[page.NextCursor] = true
		if c.MaxPages > 0 && pages >= c.MaxPages {
			truncated = true
			slog.Info("comment page cap reached, result is partial",
				slog.String("video", videoID), slog.Int("pages", pages), slog.Int("comments", len(all)))
			break
		}
		cursor = page.NextCursor
	}
	return Collection{Comments: all, Pages: pages, Truncated: truncated}, nil
}
