package docsource

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
)

// PlainText reads documents that were already converted to text, such as
// HWP or DOCX exports.
type PlainText struct{}

// NewPlainText creates a PlainText extractor.
func NewPlainText() *PlainText { return &PlainText{} }

// ExtractText returns framed text unchanged; otherwise form feeds are
// treated as page breaks and the pages are framed.
func (PlainText) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "docsource: read text")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "docsource: read %s", path)
	}
	text := string(data)
	if HasPageFrames(text) {
		return text, nil
	}
	return FramePages(splitFormFeed(text)), nil
}
