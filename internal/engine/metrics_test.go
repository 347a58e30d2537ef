package engine

import (
	"strings"
	"testing"
)

func TestFormatMetricsListsEveryKey(t *testing.T) {
	IncrCommentPage(3)
	IncrVideosSkipped()

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(metricKeys), out)
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want key %q", i, lines[i], k)
		}
	}

	m := GetMetrics()
	if m["comments_fetched"] < 3 {
		t.Errorf("comments_fetched = %d, want >= 3", m["comments_fetched"])
	}
	if m["videos_skipped"] < 1 {
		t.Errorf("videos_skipped = %d, want >= 1", m["videos_skipped"])
	}
}
