package comments

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
)

// ArtifactVersion is the only classifier artifact format this build reads.
const ArtifactVersion = 1

// StartupError means the process cannot serve requests at all.
// It is never retried.
type StartupError struct {
	Resource string
	Err      error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup: %s: %v", e.Resource, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// artifact is the on-disk shape of a pretrained TF-IDF + linear model.
// coef has one row per label, each row len(vocabulary) wide.
type artifact struct {
	Version     int            `json:"version"`
	Name        string         `json:"name"`
	Labels      []string       `json:"labels"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	SublinearTF bool           `json:"sublinear_tf"`
	NgramMax    int            `json:"ngram_max"`
	Coef        [][]float64    `json:"coef"`
	Intercept   []float64      `json:"intercept"`
}

// Classifier is a loaded, read-only sentiment model.
type Classifier struct {
	name        string
	labels      []Label
	vocab       map[string]int
	idf         []float64
	sublinearTF bool
	ngramMax    int
	coef        [][]float64
	intercept   []float64
}

// LoadClassifier reads the artifact at path. Any failure is a *StartupError.
func LoadClassifier(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StartupError{Resource: "classifier " + path, Err: err}
	}
	defer f.Close()
	c, err := ParseClassifier(f)
	if err != nil {
		return nil, &StartupError{Resource: "classifier " + path, Err: err}
	}
	return c, nil
}

// ParseClassifier decodes and validates an artifact.
func ParseClassifier(r io.Reader) (*Classifier, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("artifact version %d, want %d", a.Version, ArtifactVersion)
	}
	if len(a.Labels) < 2 {
		return nil, errors.New("artifact needs at least two labels")
	}
	if len(a.Vocabulary) == 0 {
		return nil, errors.New("artifact vocabulary is empty")
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return nil, fmt.Errorf("idf has %d weights for %d terms", len(a.IDF), len(a.Vocabulary))
	}
	if len(a.Coef) != len(a.Labels) || len(a.Intercept) != len(a.Labels) {
		return nil, fmt.Errorf("model has %d coef rows and %d intercepts for %d labels",
			len(a.Coef), len(a.Intercept), len(a.Labels))
	}

	c := &Classifier{
		name:        a.Name,
		labels:      make([]Label, len(a.Labels)),
		vocab:       a.Vocabulary,
		idf:         a.IDF,
		sublinearTF: a.SublinearTF,
		ngramMax:    max(a.NgramMax, 1),
		coef:        a.Coef,
		intercept:   a.Intercept,
	}
	seen := make(map[Label]bool, len(a.Labels))
	for i, s := range a.Labels {
		l, err := ParseLabel(s)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			return nil, fmt.Errorf("duplicate label %q", l)
		}
		seen[l] = true
		c.labels[i] = l
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.IDF) {
			return nil, fmt.Errorf("term %q has index %d outside [0,%d)", term, idx, len(a.IDF))
		}
		if n := len(strings.Fields(term)); n == 0 || n > c.ngramMax {
			return nil, fmt.Errorf("term %q has %d words, ngram_max is %d", term, n, c.ngramMax)
		}
	}
	for i, row := range a.Coef {
		if len(row) != len(a.IDF) {
			return nil, fmt.Errorf("coef row %d has %d weights, want %d", i, len(row), len(a.IDF))
		}
	}
	return c, nil
}

// Name returns the artifact's declared name, for logging.
func (c *Classifier) Name() string { return c.name }

// Labels returns the labels this model can emit, in artifact order.
func (c *Classifier) Labels() []Label { return append([]Label(nil), c.labels...) }

// Classify labels one normalized text. It never fails: text with no known
// terms scores on intercepts alone, and ties go to the earliest label.
func (c *Classifier) Classify(normalized string) Label {
	features := c.vectorize(normalized)
	best := 0
	bestScore := math.Inf(-1)
	for k := range c.labels {
		score := c.intercept[k]
		for _, f := range features {
			score += c.coef[k][f.index] * f.weight
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return c.labels[best]
}

type feature struct {
	index  int
	weight float64
}

// vectorize builds the L2-normalized TF-IDF vector for text, sorted by
// index so that float sums come out identical on every call.
func (c *Classifier) vectorize(text string) []feature {
	tokens := strings.Fields(text)
	counts := make(map[int]float64)
	for n := 1; n <= c.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if idx, ok := c.vocab[strings.Join(tokens[i:i+n], " ")]; ok {
				counts[idx]++
			}
		}
	}
	features := make([]feature, 0, len(counts))
	for idx, v := range counts {
		if c.sublinearTF {
			v = 1 + math.Log(v)
		}
		features = append(features, feature{index: idx, weight: v * c.idf[idx]})
	}
	slices.SortFunc(features, func(a, b feature) int { return cmp.Compare(a.index, b.index) })

	var norm float64
	for _, f := range features {
		norm += f.weight * f.weight
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range features {
			features[i].weight /= norm
		}
	}
	return features
}
