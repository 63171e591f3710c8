package docsource

import (
	"context"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Native extracts embedded PDF text in-process. The document is first read
// with pdfcpu in relaxed mode so broken or encrypted files fail before any
// text is pulled.
type Native struct{}

// NewNative creates a Native extractor.
func NewNative() *Native { return &Native{} }

// ExtractText returns every page's plain text, framed.
func (n *Native) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	count, err := pageCount(pdfPath)
	if err != nil {
		return "", err
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "docsource: open PDF %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	if got := r.NumPage(); got != count {
		zap.L().Debug("docsource: page count mismatch",
			zap.String("path", pdfPath),
			zap.Int("pdfcpu", count),
			zap.Int("reader", got),
		)
		count = got
	}

	pages := make([]string, count)
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "docsource: extract cancelled")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", eris.Wrapf(err, "docsource: page %d of %s", i, pdfPath)
		}
		pages[i-1] = text
	}

	zap.L().Info("docsource: native extracted",
		zap.String("path", pdfPath),
		zap.Int("pages", count),
	)
	return FramePages(pages), nil
}

func pageCount(pdfPath string) (int, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return 0, eris.Wrapf(err, "docsource: open %s", pdfPath)
	}
	defer file.Close() //nolint:errcheck

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, eris.Wrapf(err, "docsource: read PDF %s", pdfPath)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, eris.Wrapf(err, "docsource: count pages of %s", pdfPath)
	}
	return pctx.PageCount, nil
}
