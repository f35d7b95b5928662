package process

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

var errDocumentClosed = errors.New("pdf document is closed")

// Document is an open PDF whose pages can be read in order.
type Document interface {
	NumPage() int
	// Pages yields the plain text of each page, first to last. Stopping the
	// iteration early skips extraction of the remaining pages.
	Pages() iter.Seq2[string, error]
	Close() error
}

// PageExtractor opens PDF bytes as a Document.
type PageExtractor interface {
	Open(data []byte) (Document, error)
}

// LedongthucExtractor implements PageExtractor using github.com/ledongthuc/pdf
type LedongthucExtractor struct{}

// NewLedongthucExtractor creates a new instance of LedongthucExtractor
func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

// Open parses the PDF structure held in data.
func (e *LedongthucExtractor) Open(data []byte) (doc Document, err error) {
	if len(data) == 0 {
		return nil, errors.New("pdf content is empty")
	}

	// the library panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &ledongthucDocument{reader: r, numPage: r.NumPage()}, nil
}

type ledongthucDocument struct {
	reader  *pdf.Reader
	numPage int
}

func (d *ledongthucDocument) NumPage() int {
	return d.numPage
}

func (d *ledongthucDocument) Pages() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i := 1; i <= d.numPage; i++ {
			if d.reader == nil {
				yield("", errDocumentClosed)
				return
			}
			text, err := d.pageText(i)
			if !yield(text, err) || err != nil {
				return
			}
		}
	}
}

func (d *ledongthucDocument) pageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to extract page %d: %v", i, r)
		}
	}()

	p := d.reader.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return layoutText(p.Content().Text), nil
}

// layoutText rebuilds page lines from positioned glyphs, in content stream
// order. A glyph whose baseline moves by more than half the font size starts
// a new line; a horizontal gap wider than a fifth of it becomes a space.
// Every line, including the last, ends with "\n".
func layoutText(glyphs []pdf.Text) string {
	var (
		b       strings.Builder
		prev    pdf.Text
		started bool
	)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := math.Max(math.Abs(g.FontSize), 1)
		switch {
		case !started:
			started = true
		case math.Abs(g.Y-prev.Y) > size/2:
			b.WriteByte('\n')
		case g.X-(prev.X+prev.W) > size/5 && prev.S != " " && g.S != " ":
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		prev = g
	}
	if started {
		b.WriteByte('\n')
	}
	return b.String()
}

// Close drops the parsed document. It is safe to call more than once.
func (d *ledongthucDocument) Close() error {
	d.reader = nil
	return nil
}
