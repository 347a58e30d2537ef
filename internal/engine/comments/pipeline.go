package comments

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"golang.org/x/sync/errgroup"
)

// Labeler is the classifier as seen by the pipeline.
type Labeler interface {
	Classify(normalized string) Label
}

// VideoStatus says whether a video contributed comments to a batch.
type VideoStatus string

const (
	VideoOK      VideoStatus = "ok"
	VideoSkipped VideoStatus = "skipped"
)

// VideoOutcome is the per-video result of a batch: either its comments
// or the reason it was skipped.
type VideoOutcome struct {
	VideoID   string      `json:"video_id"`
	Status    VideoStatus `json:"status"`
	Comments  int         `json:"comments"`
	Truncated bool        `json:"truncated,omitempty"` // page cap hit, comments are partial
	Kind      ErrorKind   `json:"kind,omitempty"`
	Reason    string      `json:"reason,omitempty"`

	raw []RawComment
}

// Result is everything one pipeline run hands to the presentation layer.
type Result struct {
	Videos     []VideoOutcome      `json:"videos"`
	Classified []ClassifiedComment `json:"-"`
	Report     Report              `json:"report"`
}

// Skipped returns the outcomes of videos that were skipped.
func (r *Result) Skipped() []VideoOutcome {
	var out []VideoOutcome
	for _, v := range r.Videos {
		if v.Status == VideoSkipped {
			out = append(out, v)
		}
	}
	return out
}

// Pipeline wires collection, normalization, classification and aggregation.
// All dependencies are read-only once the pipeline is built.
type Pipeline struct {
	Collector   *Collector
	Normalizer  *Normalizer
	Classifier  Labeler
	Vocab       Vocabularies
	PageSize    int
	TopTerms    int
	TopComments int
	Workers     int // classification fan-out; 0 = GOMAXPROCS
}

// Run processes a single video. A collection failure is returned as-is
// (a *CollectorError) and no report is produced.
func (p *Pipeline) Run(ctx context.Context, videoID string) (*Result, error) {
	col, err := p.Collector.CollectPages(ctx, videoID, p.PageSize)
	if err != nil {
		return nil, err
	}
	return p.finish(ctx, []VideoOutcome{collected(videoID, col)})
}

func collected(videoID string, col Collection) VideoOutcome {
	return VideoOutcome{
		VideoID:   videoID,
		Status:    VideoOK,
		Comments:  len(col.Comments),
		Truncated: col.Truncated,
		raw:       col.Comments,
	}
}

// RunBatch processes several videos in order. A video whose collection
// fails is recorded as skipped and the batch moves on; only cancellation
// of ctx aborts the whole batch.
func (p *Pipeline) RunBatch(ctx context.Context, videoIDs []string) (*Result, error) {
	outcomes := make([]VideoOutcome, 0, len(videoIDs))
	for _, id := range videoIDs {
		out, err := p.collectOne(ctx, id)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, out)
	}
	return p.finish(ctx, outcomes)
}

// collectOne turns a collection attempt into an outcome. The error return
// is reserved for failures that must stop the batch.
func (p *Pipeline) collectOne(ctx context.Context, videoID string) (VideoOutcome, error) {
	col, err := p.Collector.CollectPages(ctx, videoID, p.PageSize)
	if err == nil {
		return collected(videoID, col), nil
	}
	if ctx.Err() != nil {
		return VideoOutcome{}, ctx.Err()
	}
	var ce *CollectorError
	if !errors.As(err, &ce) {
		return VideoOutcome{}, err
	}
	engine.IncrVideosSkipped()
	slog.Warn("skipping video",
		slog.String("video", videoID), slog.String("kind", string(ce.Kind)), slog.Any("error", ce.Err))
	return VideoOutcome{VideoID: videoID, Status: VideoSkipped, Kind: ce.Kind, Reason: ce.Err.Error()}, nil
}

func (p *Pipeline) finish(ctx context.Context, outcomes []VideoOutcome) (*Result, error) {
	var raw []RawComment
	for i := range outcomes {
		raw = append(raw, outcomes[i].raw...)
		outcomes[i].raw = nil
	}
	classified, err := p.classifyAll(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &Result{
		Videos:     outcomes,
		Classified: classified,
		Report:     Aggregate(classified, p.Vocab.Features, p.Vocab.Keywords, p.TopTerms, p.TopComments),
	}, nil
}

// classifyAll labels every comment. Each goroutine writes only its own
// slot, so output order equals input order.
func (p *Pipeline) classifyAll(ctx context.Context, raw []RawComment) ([]ClassifiedComment, error) {
	out := make([]ClassifiedComment, len(raw))
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range raw {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ClassifiedComment{Comment: c, Label: p.Classifier.Classify(p.Normalizer.Normalize(c.Text))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	engine.IncrCommentsClassified(int64(len(out)))
	return out, nil
}
