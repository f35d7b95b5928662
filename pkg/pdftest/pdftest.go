// Package pdftest builds small, well-formed PDF files in memory for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// Build returns a PDF with one page per entry. Each page shows its text in
// Helvetica with a single Tj operator, so keep page text on one line.
func Build(pages ...string) []byte {
	lines := make([][]string, len(pages))
	for i, p := range pages {
		lines[i] = []string{p}
	}
	return BuildLines(lines...)
}

// BuildLines returns a PDF with one page per entry. The lines of a page sit
// in a single text object, each moved down with Td the way TeX output does.
func BuildLines(pages ...[]string) []byte {
	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range pages {
		content := 5 + 2*i
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", content))

		var stream strings.Builder
		stream.WriteString("BT /F1 12 Tf 72 720 Td")
		for j, line := range p {
			if j > 0 {
				stream.WriteString(" 0 -14 Td")
			}
			fmt.Fprintf(&stream, " (%s) Tj", escaper.Replace(line))
		}
		stream.WriteString(" ET")
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", stream.Len(), stream.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WriteFile writes Build(pages...) into a temp dir and returns the path.
func WriteFile(t testing.TB, pages ...string) string {
	t.Helper()
	return write(t, Build(pages...))
}

// WriteLinesFile writes BuildLines(pages...) into a temp dir and returns the path.
func WriteLinesFile(t testing.TB, pages ...[]string) string {
	t.Helper()
	return write(t, BuildLines(pages...))
}

func write(t testing.TB, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test pdf: %v", err)
	}
	return path
}
