package comments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSource serves pages keyed by cursor and records the cursors it saw.
type pagedSource struct {
	pages   map[string]Page
	fail    map[string]error
	cursors []string
}

func (s *pagedSource) FetchPage(_ context.Context, _ string, cursor string, _ int) (Page, error) {
	s.cursors = append(s.cursors, cursor)
	if err, ok := s.fail[cursor]; ok {
		return Page{}, err
	}
	p, ok := s.pages[cursor]
	if !ok {
		return Page{}, fmt.Errorf("no page for cursor %q", cursor)
	}
	return p, nil
}

func comment(id string, likes int64, text string) RawComment {
	return RawComment{ID: id, LikeCount: likes, Text: text}
}

func ids(cs []RawComment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestCollectSinglePage(t *testing.T) {
	src := &pagedSource{pages: map[string]Page{
		"": {Items: []RawComment{comment("a", 1, ""), comment("b", 2, ""), comment("c", 3, "")}},
	}}
	got, err := (&Collector{Source: src}).Collect(context.Background(), "v", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	assert.Equal(t, []string{""}, src.cursors)
}

func TestCollectFollowsCursorsInOrder(t *testing.T) {
	src := &pagedSource{pages: map[string]Page{
		"":   {Items: []RawComment{comment("a", 0, ""), comment("b", 0, "")}, NextCursor: "p2"},
		"p2": {Items: []RawComment{comment("c", 0, "")}, NextCursor: "p3"},
		"p3": {Items: []RawComment{comment("d", 0, ""), comment("e", 0, "")}},
	}}
	got, err := (&Collector{Source: src}).Collect(context.Background(), "v", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(got))
	assert.Equal(t, []string{"", "p2", "p3"}, src.cursors)
}

func TestCollectEmptyVideo(t *testing.T) {
	src := &pagedSource{pages: map[string]Page{"": {}}}
	got, err := (&Collector{Source: src}).Collect(context.Background(), "v", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectNoPartialResults(t *testing.T) {
	src := &pagedSource{
		pages: map[string]Page{"": {Items: []RawComment{comment("a", 0, "")}, NextCursor: "p2"}},
		fail:  map[string]error{"p2": fmt.Errorf("daily limit: %w", ErrQuotaExceeded)},
	}
	got, err := (&Collector{Source: src}).Collect(context.Background(), "vid", 10)
	assert.Nil(t, got)

	var ce *CollectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "vid", ce.VideoID)
	assert.Equal(t, KindQuotaExceeded, ce.Kind)
	assert.Equal(t, 1, ce.Pages)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCollectErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrInvalidCredential, KindInvalidCredential},
		{ErrQuotaExceeded, KindQuotaExceeded},
		{ErrCommentsDisabled, KindCommentsDisabled},
		{ErrVideoNotFound, KindNotFound},
		{ErrTransient, KindTransient},
		{ErrMalformedResponse, KindMalformed},
		{errors.New("something odd"), KindTransient},
		{context.DeadlineExceeded, KindCanceled},
	}
	for _, tt := range tests {
		t.Run(string(tt.want)+"/"+tt.err.Error(), func(t *testing.T) {
			src := PageSourceFunc(func(context.Context, string, string, int) (Page, error) {
				return Page{}, fmt.Errorf("fetch: %w", tt.err)
			})
			_, err := (&Collector{Source: src}).Collect(context.Background(), "v", 10)
			var ce *CollectorError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind)
			assert.Equal(t, 0, ce.Pages)
		})
	}
}

func TestCollectRepeatedCursor(t *testing.T) {
	src := &pagedSource{pages: map[string]Page{
		"":   {Items: []RawComment{comment("a", 0, "")}, NextCursor: "p2"},
		"p2": {Items: []RawComment{comment("b", 0, "")}, NextCursor: "p2"},
	}}
	_, err := (&Collector{Source: src}).Collect(context.Background(), "v", 10)
	var ce *CollectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindMalformed, ce.Kind)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestCollectMaxPages(t *testing.T) {
	src := &pagedSource{pages: map[string]Page{
		"":   {Items: []RawComment{comment("a", 0, "")}, NextCursor: "p2"},
		"p2": {Items: []RawComment{comment("b", 0, "")}, NextCursor: "p3"},
		"p3": {Items: []RawComment{comment("c", 0, "")}},
	}}
	got, err := (&Collector{Source: src, MaxPages: 2}).Collect(context.Background(), "v", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Equal(t, []string{"", "p2"}, src.cursors)
}

func TestCollectPagesReportsTruncation(t *testing.T) {
	pages := map[string]Page{
		"":   {Items: []RawComment{comment("a", 0, "")}, NextCursor: "p2"},
		"p2": {Items: []RawComment{comment("b", 0, "")}},
	}
	tests := []struct {
		name          string
		maxPages      int
		wantIDs       []string
		wantTruncated bool
	}{
		{"no cap", 0, []string{"a", "b"}, false},
		{"cap equals page count", 2, []string{"a", "b"}, false},
		{"cap cuts the walk", 1, []string{"a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := (&Collector{Source: &pagedSource{pages: pages}, MaxPages: tt.maxPages}).
				CollectPages(context.Background(), "v", 10)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(col.Comments))
			assert.Equal(t, len(tt.wantIDs), col.Pages)
			assert.Equal(t, tt.wantTruncated, col.Truncated)
		})
	}
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &pagedSource{pages: map[string]Page{"": {Items: []RawComment{comment("a", 0, "")}}}}
	_, err := (&Collector{Source: src}).Collect(ctx, "v", 10)
	var ce *CollectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindCanceled, ce.Kind)
	assert.Empty(t, src.cursors)
}
