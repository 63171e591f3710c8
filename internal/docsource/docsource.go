// Package docsource turns questionnaire documents into page-framed plain text.
package docsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/skiplogic/internal/config"
)

// PageHeader is the frame written before each page's text.
const PageHeader = "===== PAGE %d ====="

// Extractor extracts the text of a document.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.SourceConfig, mistral config.MistralConfig) (Extractor, error) {
	switch cfg.Provider {
	case "native", "":
		return NewNative(), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "text":
		return NewPlainText(), nil
	case "mistral":
		if mistral.Key == "" {
			return nil, eris.New("docsource: mistral provider requires mistral.key")
		}
		return NewMistralOCR(mistral.Key, mistral.Model), nil
	default:
		return nil, eris.Errorf("docsource: unknown provider %q", cfg.Provider)
	}
}

// FramePages numbers pages from 1 and prefixes each with a blank line pair
// and PageHeader, joining them with a newline.
func FramePages(pages []string) string {
	framed := make([]string, len(pages))
	for i, p := range pages {
		framed[i] = "\n\n" + fmt.Sprintf(PageHeader, i+1) + "\n" + p
	}
	return strings.Join(framed, "\n")
}

// HasPageFrames reports whether text already carries page frames.
func HasPageFrames(text string) bool {
	return strings.Contains(text, fmt.Sprintf(PageHeader, 1))
}

// splitFormFeed splits text on page breaks, dropping the empty page a
// trailing form feed leaves behind.
func splitFormFeed(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// WriteText writes extracted text as UTF-8, creating parent directories.
func WriteText(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "docsource: create dir %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return eris.Wrapf(err, "docsource: write %s", path)
	}
	return nil
}
