// Package comments implements the comment sentiment core: normalization,
// classification, paginated collection and aggregation of YouTube comments.
package comments

import (
	"fmt"
	"strings"
	"time"
)

// Label is the sentiment assigned to a comment by the classifier.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Labels lists every valid label in canonical order.
var Labels = []Label{Positive, Neutral, Negative}

// ParseLabel maps a label string from an artifact onto the Label enum.
func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case Positive:
		return Positive, nil
	case Neutral:
		return Neutral, nil
	case Negative:
		return Negative, nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", s)
}

// RawComment is a top-level comment exactly as retrieved from the source.
type RawComment struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	LikeCount   int64     `json:"like_count"`
	PublishedAt time.Time `json:"published_at"`
}

// ClassifiedComment pairs a comment with its one and only label.
type ClassifiedComment struct {
	Comment RawComment `json:"comment"`
	Label   Label      `json:"label"`
}

// TermCount is one entry of the top terms list.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Report is the aggregated view handed to the presentation layer.
// Degenerate is set when there was nothing to compute percentages over.
type Report struct {
	Total            int                 `json:"total"`
	LabelCounts      map[Label]int       `json:"label_counts"`
	LabelPercentages map[Label]float64   `json:"label_percentages,omitempty"`
	TopTerms         []TermCount         `json:"top_terms"`
	TopPositive      []ClassifiedComment `json:"top_positive"`
	TopNegative      []ClassifiedComment `json:"top_negative"`
	Degenerate       bool                `json:"degenerate,omitempty"`
}
