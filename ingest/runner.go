package ingest

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"papercut/config"
	"papercut/feed"
	"papercut/storage"
	"papercut/text"

	"go.uber.org/zap"
)

const titlePreview = 50

// Extractor is the acquisition + truncation pipeline.
type Extractor interface {
	ExtractFromURL(ctx context.Context, url string) (text.Result, error)
	ExtractFromFile(path string) (text.Result, error)
}

// Archive stores PDFs locally; see source.Archiver.
type Archive interface {
	Fetch(ctx context.Context, url string) (string, error)
	Discard(path string)
}

type Summary struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Runner extracts the body text of every paper returned by a feed query.
// A failing paper is reported and skipped; it never aborts the run.
type Runner struct {
	papers    feed.PaperSource
	extractor Extractor
	store     storage.PaperRepository
	archive   Archive
	logger    *zap.Logger
	out       io.Writer
}

type RunnerOption func(*Runner)

// WithStore skips papers already recorded in store and records new ones.
func WithStore(store storage.PaperRepository) RunnerOption {
	return func(r *Runner) {
		r.store = store
	}
}

// WithArchive downloads PDFs through archive and extracts from disk.
func WithArchive(archive Archive) RunnerOption {
	return func(r *Runner) {
		r.archive = archive
	}
}

func NewRunner(papers feed.PaperSource, extractor Extractor, logger *zap.Logger, out io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		papers:    papers,
		extractor: extractor,
		logger:    logger,
		out:       out,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Run(ctx context.Context, settings config.FeedSettings) (Summary, error) {
	var sum Summary

	q := settings.FeedQuery()
	fmt.Fprintf(r.out, "Fetching %d papers from Arxiv (%s)...\n", q.MaxResults, q.SearchQuery)

	papers, err := r.papers.Search(ctx, q)
	if err != nil {
		return sum, fmt.Errorf("failed to fetch papers: %w", err)
	}
	sum.Fetched = len(papers)

	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fmt.Fprintf(r.out, "\nProcessing: %s... (%s)\n", preview(p.Title, titlePreview), p.ID)

		if r.store != nil {
			exists, err := r.store.Has(p.ID)
			if err != nil {
				r.logger.Error("failed to check paper store", zap.String("id", p.ID), zap.Error(err))
			} else if exists {
				fmt.Fprintln(r.out, "   Already exists. Skipping.")
				sum.Skipped++
				continue
			}
		}

		res, err := r.extract(ctx, p)
		if err != nil || res.Text == "" {
			if err != nil {
				fmt.Fprintf(r.out, "   Error: %v\n", err)
			}
			fmt.Fprintln(r.out, "   Skipping due to PDF error.")
			r.logger.Warn("paper extraction failed",
				zap.String("id", p.ID),
				zap.String("pdf_url", p.PDFURL),
				zap.Error(err))
			sum.Failed++
			continue
		}

		chars := utf8.RuneCountInString(res.Text)
		fmt.Fprintf(r.out, "   Extracted %d characters.\n", chars)
		sum.Processed++

		if r.store != nil {
			rec := &storage.PaperRecord{
				ID:          p.ID,
				Title:       p.Title,
				PDFURL:      p.PDFURL,
				Chars:       chars,
				StopKeyword: res.StopKeyword,
			}
			if err := r.store.Put(rec); err != nil {
				r.logger.Error("failed to record paper", zap.String("id", p.ID), zap.Error(err))
			}
		}
	}

	r.logger.Info("feed run finished",
		zap.Int("fetched", sum.Fetched),
		zap.Int("processed", sum.Processed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))

	return sum, nil
}

func (r *Runner) extract(ctx context.Context, p feed.Paper) (text.Result, error) {
	fmt.Fprintf(r.out, "   Downloading: %s\n", p.PDFURL)

	if r.archive == nil {
		return r.extractor.ExtractFromURL(ctx, p.PDFURL)
	}

	path, err := r.archive.Fetch(ctx, p.PDFURL)
	if err != nil {
		return text.Result{}, err
	}
	res, err := r.extractor.ExtractFromFile(path)
	if err != nil || res.Text == "" {
		// a truncated or non-PDF download would otherwise be reused forever
		r.archive.Discard(path)
	}
	return res, err
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
