package comments

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is an immutable set of lowercase terms.
type Vocabulary struct {
	terms []string
}

// NewVocabulary lowercases, trims and dedups terms, keeping first-seen order.
func NewVocabulary(terms ...string) Vocabulary {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return Vocabulary{terms: out}
}

// Terms returns a copy of the terms.
func (v Vocabulary) Terms() []string { return slices.Clone(v.terms) }

// Len returns the number of terms.
func (v Vocabulary) Len() int { return len(v.terms) }

// MatchedBy reports whether lowered contains any term as a substring.
// lowered must already be lowercase. "ram" matches inside "program";
// that bluntness is the accepted relevance rule.
func (v Vocabulary) MatchedBy(lowered string) bool {
	for _, t := range v.terms {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// Vocabularies bundles the two relevance vocabularies.
type Vocabularies struct {
	Features Vocabulary
	Keywords Vocabulary
}

// DefaultVocabularies are the smartphone feature terms and brand keywords.
func DefaultVocabularies() Vocabularies {
	return Vocabularies{
		Features: NewVocabulary(
			"camera", "battery", "display", "performance", "storage", "ram",
			"processor", "screen", "resolution", "design", "waterproof",
			"wireless charging", "fast charging",
		),
		Keywords: NewVocabulary(
			"smartphone", "iphone", "android", "samsung", "galaxy", "google pixel",
			"huawei", "xiaomi", "oneplus", "motorola", "lg", "oppo", "vivo",
			"realme", "nokia",
		),
	}
}

// Validate checks both sets are non-empty and disjoint.
func (v Vocabularies) Validate() error {
	if v.Features.Len() == 0 {
		return fmt.Errorf("feature vocabulary is empty")
	}
	if v.Keywords.Len() == 0 {
		return fmt.Errorf("keyword vocabulary is empty")
	}
	for _, t := range v.Features.terms {
		if slices.Contains(v.Keywords.terms, t) {
			return fmt.Errorf("term %q is both a feature and a keyword", t)
		}
	}
	return nil
}

type vocabularyFile struct {
	Features []string `yaml:"features"`
	Keywords []string `yaml:"keywords"`
}

// LoadVocabularies reads a YAML file with "features" and "keywords" lists.
// An empty path yields the defaults. Failures are *StartupError.
func LoadVocabularies(path string) (Vocabularies, error) {
	if path == "" {
		return DefaultVocabularies(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabularies{}, &StartupError{Resource: "vocabulary " + path, Err: err}
	}
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Vocabularies{}, &StartupError{Resource: "vocabulary " + path, Err: err}
	}
	v := Vocabularies{
		Features: NewVocabulary(f.Features...),
		Keywords: NewVocabulary(f.Keywords...),
	}
	if err := v.Validate(); err != nil {
		return Vocabularies{}, &StartupError{Resource: "vocabulary " + path, Err: err}
	}
	return v, nil
}
