package process

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"papercut/text"

	"go.uber.org/zap"
)

// Acquirer obtains raw document bytes.
type Acquirer interface {
	ReadFile(path string) ([]byte, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Request names the document to extract. FilePath wins over URL.
type Request struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
}

// Client runs acquisition, page extraction and truncation for one document
// per call. It holds no per-request state.
type Client struct {
	acquirer  Acquirer
	extractor PageExtractor
	truncator *text.Truncator
	validator Validator
	logger    *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithValidator runs v on the bytes before they are opened.
func WithValidator(v Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithTruncator replaces the default stop keyword list.
func WithTruncator(t *text.Truncator) Option {
	return func(c *Client) {
		c.truncator = t
	}
}

// NewClient creates a new PDF processor client with the given extractor implementation
func NewClient(acquirer Acquirer, extractor PageExtractor, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		acquirer:  acquirer,
		extractor: extractor,
		truncator: text.MustNewTruncator(text.DefaultStopKeywords...),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract dispatches on the request source.
func (c *Client) Extract(ctx context.Context, req Request) (text.Result, error) {
	switch {
	case req.FilePath != "":
		return c.ExtractFromFile(req.FilePath)
	case req.URL != "":
		return c.ExtractFromURL(ctx, req.URL)
	default:
		return text.Result{}, fmt.Errorf("%w: missing url or file_path", ErrMalformedRequest)
	}
}

// ExtractFromFile extracts body text from a local PDF.
func (c *Client) ExtractFromFile(path string) (text.Result, error) {
	c.logger.Info("reading local file", zap.String("file_path", path))

	data, err := c.acquirer.ReadFile(path)
	if err != nil {
		return text.Result{}, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return c.ExtractFromBytes(data)
}

// ExtractFromURL downloads a PDF and extracts its body text.
func (c *Client) ExtractFromURL(ctx context.Context, url string) (text.Result, error) {
	c.logger.Info("downloading pdf", zap.String("url", url))

	data, err := c.acquirer.Download(ctx, url)
	if err != nil {
		return text.Result{}, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return c.ExtractFromBytes(data)
}

// ExtractFromBytes opens data as a PDF and cuts its text at the first stop
// keyword. The document is closed on every return path.
func (c *Client) ExtractFromBytes(data []byte) (text.Result, error) {
	c.logger.Info("parsing pdf", zap.Int("bytes", len(data)))

	if c.validator != nil {
		if err := c.validator.Validate(data); err != nil {
			return text.Result{}, fmt.Errorf("%w: %w", ErrParsing, err)
		}
	}

	doc, err := c.extractor.Open(data)
	if err != nil {
		return text.Result{}, fmt.Errorf("%w: %w", ErrParsing, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			c.logger.Warn("failed to close pdf document", zap.Error(err))
		}
	}()

	res, err := c.truncator.Cut(doc.Pages())
	if err != nil {
		return text.Result{}, fmt.Errorf("%w: %w", ErrParsing, err)
	}

	c.logger.Info("extracted text",
		zap.Int("chars", utf8.RuneCountInString(res.Text)),
		zap.Int("pages_scanned", res.PagesScanned),
		zap.Int("pages_total", doc.NumPage()),
		zap.String("stop_keyword", res.StopKeyword))

	return res, nil
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedRequest)
}
