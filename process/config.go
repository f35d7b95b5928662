package process

import (
	"fmt"

	"papercut/config"
	"papercut/text"

	"go.uber.org/zap"
)

// NewClientFromConfig builds a Client with the PDF engine, stop keywords and
// validation selected in cfg.
func NewClientFromConfig(cfg *config.Config, acquirer Acquirer, logger *zap.Logger) (*Client, error) {
	extractor, err := NewPageExtractor(cfg.PDFEngine)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF_ENGINE: %w", err)
	}

	var opts []Option
	if len(cfg.StopKeywords) > 0 {
		truncator, err := text.NewTruncator(cfg.StopKeywords...)
		if err != nil {
			return nil, fmt.Errorf("invalid STOP_KEYWORDS: %w", err)
		}
		opts = append(opts, WithTruncator(truncator))
	}
	if cfg.ValidatePDF {
		opts = append(opts, WithValidator(NewPdfcpuValidator()))
	}

	return NewClient(acquirer, extractor, logger, opts...), nil
}
