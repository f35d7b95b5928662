package process

import (
	"testing"

	"papercut/config"
	"papercut/pkg/pdftest"
	"papercut/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClientFromConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := NewClientFromConfig(&config.Config{PDFEngine: "ledongthuc"}, &fakeAcquirer{}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &LedongthucExtractor{}, c.extractor)
		assert.Equal(t, text.DefaultStopKeywords, c.truncator.Keywords())
		assert.Nil(t, c.validator)
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg := &config.Config{PDFEngine: "mupdf", StopKeywords: []string{"Appendix"}, ValidatePDF: true}
		c, err := NewClientFromConfig(cfg, &fakeAcquirer{}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &FitzExtractor{}, c.extractor)
		assert.Equal(t, []string{"Appendix"}, c.truncator.Keywords())
		assert.IsType(t, &PdfcpuValidator{}, c.validator)
	})

	t.Run("CustomKeywordsCutRealPDF", func(t *testing.T) {
		cfg := &config.Config{StopKeywords: []string{"Appendix"}}
		c, err := NewClientFromConfig(cfg, &fakeAcquirer{}, zap.NewNop())
		require.NoError(t, err)

		res, err := c.ExtractFromBytes(pdftest.BuildLines([]string{"Body", "References", "Appendix", "A.1"}))
		require.NoError(t, err)
		assert.Equal(t, "Body\nReferences", res.Text)
		assert.Equal(t, "Appendix", res.StopKeyword)
	})

	testCases := []struct {
		name string
		cfg  config.Config
	}{
		{"UnknownEngine", config.Config{PDFEngine: "pymupdf"}},
		{"BadKeyword", config.Config{StopKeywords: []string{"Future\nWork"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClientFromConfig(&tc.cfg, &fakeAcquirer{}, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
