package artifacts

import (
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"tubebrief/errors"
)

// PDFFileName is the PDF artifact name inside a job directory.
const PDFFileName = "summary.pdf"

// PDFExporter paginates summary text into a PDF document. The core fonts
// only cover cp1252, so runes outside it are substituted with a replacement
// character; an export never fails on input encoding.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export writes the document into destDir and returns the artifact file
// name. Output is non-empty for any non-empty input.
func (e *PDFExporter) Export(title, text, destDir string) (string, error) {
	const op = "artifacts.PDFExport"

	pdf := fpdf.New("P", "mm", "A4", "")
	// The translator maps sanitized UTF-8 to the cp1252 bytes the core
	// fonts expect.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(sanitizeCP1252(title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(190, 8, tr(sanitizeCP1252(title)), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(190, 6, tr(sanitizeCP1252(text)), "", "L", false)

	outPath := filepath.Join(destDir, PDFFileName)
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", errors.Internal(op, err, "Failed to write PDF")
	}

	return PDFFileName, nil
}

// sanitizeCP1252 maps input to the exporter's supported encoding, replacing
// anything outside Latin-1 with '?' instead of failing the export.
func sanitizeCP1252(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			out = append(out, r)
		case r < 0x20:
			// Drop other control characters.
		case r <= 0xFF:
			out = append(out, r)
		case r == '‘' || r == '’':
			out = append(out, '\'')
		case r == '“' || r == '”':
			out = append(out, '"')
		case r == '–' || r == '—':
			out = append(out, '-')
		case r == '•':
			out = append(out, '*')
		case r == '…':
			out = append(out, '.', '.', '.')
		default:
			out = append(out, '?')
		}
	}
	return string(out)
}
