package text

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// DefaultStopKeywords are the back-matter headings that end the body of a
// paper, in the order they are tested.
var DefaultStopKeywords = []string{"Conclusion", "References", "Bibliography", "Future Work"}

var defaultTruncator = MustNewTruncator(DefaultStopKeywords...)

// Result is the outcome of cutting a page sequence.
type Result struct {
	Text         string `json:"text"`
	PagesScanned int    `json:"pages_scanned"`
	StopKeyword  string `json:"stop_keyword,omitempty"`
}

// Truncated reports whether a stop keyword ended the scan.
func (r Result) Truncated() bool {
	return r.StopKeyword != ""
}

// Truncator concatenates page texts until the first page holding a
// line-initial stop keyword, keeping only the part of that page before it.
//
// A keyword matches only as "\n"+keyword or "\n"+UPPER(keyword). Keywords are
// tested in list order and the first one found on a page wins, even if a
// later keyword occurs earlier on that page. A heading at offset 0 of a page
// has no preceding newline and is therefore not detected.
type Truncator struct {
	keywords []string
	// patterns holds each distinct line-initial form once; forms[i] indexes
	// the exact and upper-case forms of keywords[i] in it. Keywords may share
	// a pattern ("refs" and "REFS"), so lookups go through forms.
	patterns []string
	forms    [][2]int
	matcher  *ahocorasick.Matcher
}

// NewTruncator builds a Truncator for the given keywords, in priority order.
func NewTruncator(keywords ...string) (*Truncator, error) {
	if len(keywords) == 0 {
		return nil, errors.New("at least one stop keyword is required")
	}

	t := &Truncator{
		keywords: slices.Clone(keywords),
		forms:    make([][2]int, len(keywords)),
	}
	seen := make(map[string]int)
	intern := func(p string) int {
		if i, ok := seen[p]; ok {
			return i
		}
		seen[p] = len(t.patterns)
		t.patterns = append(t.patterns, p)
		return seen[p]
	}

	for i, kw := range keywords {
		if kw == "" {
			return nil, errors.New("stop keyword must not be empty")
		}
		if strings.ContainsAny(kw, "\r\n") {
			return nil, fmt.Errorf("stop keyword %q must not contain a line break", kw)
		}
		t.forms[i] = [2]int{intern("\n" + kw), intern("\n" + strings.ToUpper(kw))}
	}

	t.matcher = ahocorasick.NewStringMatcher(t.patterns)
	return t, nil
}

// MustNewTruncator is like NewTruncator but panics on invalid keywords.
func MustNewTruncator(keywords ...string) *Truncator {
	t, err := NewTruncator(keywords...)
	if err != nil {
		panic(err)
	}
	return t
}

// Keywords returns a copy of the keyword list in priority order.
func (t *Truncator) Keywords() []string {
	return slices.Clone(t.keywords)
}

// ExtractBody returns the body text of pages using DefaultStopKeywords.
func ExtractBody(pages []string) string {
	return defaultTruncator.ExtractBody(pages)
}

// ExtractBody returns the concatenated pages, cut before the first stop keyword.
func (t *Truncator) ExtractBody(pages []string) string {
	res, _ := t.Cut(func(yield func(string, error) bool) {
		for _, p := range pages {
			if !yield(p, nil) {
				return
			}
		}
	})
	return res.Text
}

// Cut consumes pages in order and stops pulling as soon as a page is cut, so
// pages after the stop keyword are never produced. An error from the sequence
// aborts the scan and is returned with the text accumulated so far.
func (t *Truncator) Cut(pages iter.Seq2[string, error]) (Result, error) {
	var (
		b   strings.Builder
		res Result
	)

	for page, err := range pages {
		if err != nil {
			res.Text = b.String()
			return res, err
		}
		res.PagesScanned++

		idx, kw, ok := t.find(page)
		if ok {
			b.WriteString(page[:idx])
			res.StopKeyword = kw
			break
		}
		b.WriteString(page)
	}

	res.Text = b.String()
	return res, nil
}

// find returns the cut index on page and the keyword that caused it. The
// matcher reports which patterns occur; the first keyword in list order with
// a hit wins, its exact form ahead of its upper-case form.
func (t *Truncator) find(page string) (int, string, bool) {
	if page == "" {
		return 0, "", false
	}

	hits := t.matcher.MatchThreadSafe([]byte(page))
	if len(hits) == 0 {
		return 0, "", false
	}
	found := make([]bool, len(t.patterns))
	for _, h := range hits {
		found[h] = true
	}

	for i, kw := range t.keywords {
		for _, p := range t.forms[i] {
			if found[p] {
				return strings.Index(page, t.patterns[p]), kw, true
			}
		}
	}
	return 0, "", false
}
