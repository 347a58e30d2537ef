package comments

import (
	"bufio"
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/forPelevin/gomoji"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed lemmas.txt
var defaultLemmaTable string

var urlRe = regexp.MustCompile(`(?i)(?:[a-z][a-z0-9+.-]*://|www\.)\S*`)

// Normalizer turns raw comment text into classifier input.
// The stopword set and lemma table are never written after construction,
// so one Normalizer can be shared by any number of goroutines.
type Normalizer struct {
	stopwords map[string]struct{}
	lemmas    map[string]string
}

// NewNormalizer builds a Normalizer from a stopword set and a lemma table.
// The table must map onto fixed points: no lemma may itself be rewritten
// or be a stopword, otherwise normalization would not be idempotent.
func NewNormalizer(stopwords map[string]struct{}, lemmas map[string]string) (*Normalizer, error) {
	for form, lemma := range lemmas {
		if lemma == "" {
			return nil, fmt.Errorf("lemma table: empty lemma for %q", form)
		}
		if next, ok := lemmas[lemma]; ok && next != lemma {
			return nil, fmt.Errorf("lemma table: %q -> %q -> %q is not a fixed point", form, lemma, next)
		}
		if _, stop := stopwords[lemma]; stop {
			return nil, fmt.Errorf("lemma table: lemma %q is a stopword", lemma)
		}
	}
	return &Normalizer{stopwords: stopwords, lemmas: lemmas}, nil
}

// DefaultNormalizer returns a Normalizer using the NLTK stopwords and the embedded lemma table.
func DefaultNormalizer() *Normalizer {
	lemmas, err := ParseLemmaTable(strings.NewReader(defaultLemmaTable))
	if err != nil {
		panic("comments: embedded lemma table: " + err.Error())
	}
	n, err := NewNormalizer(DefaultStopwords(), lemmas)
	if err != nil {
		panic("comments: embedded lemma table: " + err.Error())
	}
	return n
}

// ParseLemmaTable reads "form lemma" pairs, one per line. Blank lines and
// lines starting with # are ignored.
func ParseLemmaTable(r io.Reader) (map[string]string, error) {
	lemmas := make(map[string]string)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"form lemma\", got %q", line, text)
		}
		lemmas[strings.ToLower(fields[0])] = strings.ToLower(fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lemmas) == 0 {
		return nil, errors.New("lemma table is empty")
	}
	return lemmas, nil
}

// Normalize applies the full cleaning chain and returns space-joined tokens.
// Empty or all-stopword input yields "".
func (n *Normalizer) Normalize(raw string) string {
	text := stripMarkup(raw)
	text = replaceEmoji(text)
	text = urlRe.ReplaceAllString(text, " ")
	text = strings.Map(keepWordOrSpace, text)
	text = cases.Lower(language.Und).String(text)

	tokens := tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		if lemma, ok := n.lemmas[tok]; ok {
			tok = lemma
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// stripMarkup keeps only visible text. Script and style bodies are dropped;
// block-level tags become a space so adjacent paragraphs do not glue together.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				hidden++
			case "br", "p", "div", "li", "tr", "td":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if hidden > 0 {
					hidden--
				}
			case "p", "div", "li", "tr", "td":
				b.WriteByte(' ')
			}
		}
	}
}

// replaceEmoji swaps every emoji for its slug, e.g. "😍" -> " smiling_face_with_heart_eyes ".
func replaceEmoji(s string) string {
	if !gomoji.ContainsEmoji(s) {
		return s
	}
	found := gomoji.FindAll(s)
	if len(found) == 0 {
		return s
	}
	// strings.Replacer tries pairs in order, so a base emoji listed first
	// would split a longer sequence that starts with it (skin tones, ZWJ).
	slices.SortStableFunc(found, func(a, b gomoji.Emoji) int {
		return cmp.Compare(len(b.Character), len(a.Character))
	})
	pairs := make([]string, 0, 2*len(found))
	for _, em := range found {
		pairs = append(pairs, em.Character, " "+emojiToken(em.Slug)+" ")
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func emojiToken(slug string) string {
	return strings.Map(func(r rune) rune {
		if keepWordOrSpace(r) == -1 || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, slug)
}

// keepWordOrSpace is a strings.Map callback dropping everything except word
// characters (letters, digits, marks, underscore) and whitespace.
func keepWordOrSpace(r rune) rune {
	if isWordRune(r) || unicode.IsSpace(r) {
		return r
	}
	return -1
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// tokenize splits on Unicode word boundaries and drops whitespace segments.
func tokenize(s string) []string {
	var tokens []string
	seg := words.FromString(s)
	for seg.Next() {
		tok := seg.Value()
		if strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
