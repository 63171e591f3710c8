package docsource

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and frames each
// form-feed separated page.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", "-enc", "UTF-8", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "docsource: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	pages := splitFormFeed(stdout.String())
	zap.L().Info("docsource: pdftotext extracted",
		zap.String("path", pdfPath),
		zap.Int("pages", len(pages)),
	)
	return FramePages(pages), nil
}
