package process

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// FitzExtractor implements PageExtractor on MuPDF through go-fitz. Its page
// text keeps MuPDF's line breaks, so line-initial headings survive.
type FitzExtractor struct{}

func NewFitzExtractor() *FitzExtractor {
	return &FitzExtractor{}
}

func (e *FitzExtractor) Open(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, errors.New("pdf content is empty")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &fitzDocument{doc: doc, numPage: doc.NumPage()}, nil
}

type fitzDocument struct {
	mu      sync.Mutex
	doc     *fitz.Document
	numPage int
}

func (d *fitzDocument) NumPage() int {
	return d.numPage
}

func (d *fitzDocument) Pages() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i := 0; i < d.numPage; i++ {
			text, err := d.pageText(i)
			if !yield(text, err) || err != nil {
				return
			}
		}
	}
}

func (d *fitzDocument) pageText(i int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.doc == nil {
		return "", errDocumentClosed
	}
	text, err := d.doc.Text(i)
	if err != nil {
		return "", fmt.Errorf("failed to extract page %d: %w", i+1, err)
	}
	return text, nil
}

// Close releases the MuPDF context. Later calls are no-ops.
func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// NewPageExtractor returns the extractor registered under engine. An empty
// name selects ledongthuc.
func NewPageExtractor(engine string) (PageExtractor, error) {
	switch engine {
	case "", "ledongthuc":
		return NewLedongthucExtractor(), nil
	case "mupdf":
		return NewFitzExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", engine)
	}
}
