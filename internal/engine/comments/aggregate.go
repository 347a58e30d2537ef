package comments

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

const (
	DefaultTopTerms    = 20
	DefaultTopComments = 5
)

// termRe mirrors the CountVectorizer token pattern: runs of two or more word characters.
var termRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// Aggregate builds the report for one run. Non-positive topTermsK and
// topListN fall back to DefaultTopTerms and DefaultTopComments.
func Aggregate(classified []ClassifiedComment, features, keywords Vocabulary, topTermsK, topListN int) Report {
	if topTermsK <= 0 {
		topTermsK = DefaultTopTerms
	}
	if topListN <= 0 {
		topListN = DefaultTopComments
	}

	report := Report{
		Total:       len(classified),
		LabelCounts: make(map[Label]int),
		TopTerms:    []TermCount{},
		TopPositive: []ClassifiedComment{},
		TopNegative: []ClassifiedComment{},
	}
	if len(classified) == 0 {
		report.Degenerate = true
		return report
	}

	for _, cc := range classified {
		report.LabelCounts[cc.Label]++
	}
	report.LabelPercentages = make(map[Label]float64, len(report.LabelCounts))
	for label, n := range report.LabelCounts {
		report.LabelPercentages[label] = float64(n) / float64(len(classified)) * 100
	}

	report.TopTerms = topTerms(classified, topTermsK)
	report.TopPositive, report.TopNegative = topRelevant(classified, features, keywords, topListN)
	return report
}

// topTerms counts case-folded, stopword-filtered terms of the raw texts.
// Equal counts keep the order in which terms were first seen.
func topTerms(classified []ClassifiedComment, k int) []TermCount {
	stop := TermStopwords()
	fold := cases.Fold()
	index := make(map[string]int)
	var counts []TermCount
	for _, cc := range classified {
		for _, term := range termRe.FindAllString(fold.String(cc.Comment.Text), -1) {
			if _, skip := stop[term]; skip {
				continue
			}
			i, ok := index[term]
			if !ok {
				i = len(counts)
				index[term] = i
				counts = append(counts, TermCount{Term: term})
			}
			counts[i].Count++
		}
	}
	slices.SortStableFunc(counts, func(a, b TermCount) int { return cmp.Compare(b.Count, a.Count) })
	if len(counts) > k {
		counts = counts[:k]
	}
	return counts
}

// topRelevant keeps comments that mention a feature and a keyword, splits
// them by label and ranks each side by likes. Neutral comments are dropped.
func topRelevant(classified []ClassifiedComment, features, keywords Vocabulary, n int) (pos, neg []ClassifiedComment) {
	pos, neg = []ClassifiedComment{}, []ClassifiedComment{}
	for _, cc := range classified {
		if cc.Label == Neutral {
			continue
		}
		lowered := strings.ToLower(cc.Comment.Text)
		if !features.MatchedBy(lowered) || !keywords.MatchedBy(lowered) {
			continue
		}
		if cc.Label == Positive {
			pos = append(pos, cc)
		} else {
			neg = append(neg, cc)
		}
	}
	byLikes := func(a, b ClassifiedComment) int { return cmp.Compare(b.Comment.LikeCount, a.Comment.LikeCount) }
	slices.SortStableFunc(pos, byLikes)
	slices.SortStableFunc(neg, byLikes)
	return pos[:min(n, len(pos))], neg[:min(n, len(neg))]
}
