package process

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating a config directory under $HOME
	model.ConfigPath = "disable"
}

// Validator checks the structure of a PDF before text extraction.
type Validator interface {
	Validate(data []byte) error
}

// PdfcpuValidator validates PDFs with pdfcpu in relaxed mode.
type PdfcpuValidator struct {
	conf *model.Configuration
}

func NewPdfcpuValidator() *PdfcpuValidator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PdfcpuValidator{conf: conf}
}

func (v *PdfcpuValidator) Validate(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), v.conf); err != nil {
		return fmt.Errorf("invalid PDF: %w", err)
	}
	return nil
}
