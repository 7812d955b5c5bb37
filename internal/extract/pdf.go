package extract

import (
	"context"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// PDFExtractor 每个 PDF 页面产出一个 Page
type PDFExtractor struct {
	logger *zap.Logger
}

// NewPDFExtractor 创建 PDF 抽取器
func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{logger: logger}
}

// Extract 读取所有页面的纯文本
func (p *PDFExtractor) Extract(ctx context.Context, path string) ([]document.Page, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, newError("open", path, ErrExtractionFailed, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]document.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			p.logger.Debug("skipping empty pdf page", zap.Int("page", i))
			pages = append(pages, document.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, newError("read page", path, ErrExtractionFailed, fmt.Errorf("page %d: %w", i, err))
		}
		pages = append(pages, document.Page{Number: i, Text: text})
	}

	p.crossCheckPageCount(path, numPages)

	p.logger.Info("extracted pdf", zap.String("path", path), zap.Int("pages", len(pages)))
	return pages, nil
}

// crossCheckPageCount 用 pdfcpu 校验页数，不一致时只记录警告
func (p *PDFExtractor) crossCheckPageCount(path string, got int) {
	count, err := PageCount(path)
	if err != nil {
		p.logger.Debug("pdfcpu could not count pages", zap.String("path", path), zap.Error(err))
		return
	}
	if count != got {
		p.logger.Warn("pdf page count mismatch",
			zap.String("path", path),
			zap.Int("extracted", got),
			zap.Int("pdfcpu", count))
	}
}

// PageCount 用 pdfcpu 读取 PDF 页数，不解析页面内容
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, newError("open", path, ErrSourceNotFound, err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, newError("count pages", path, ErrExtractionFailed, err)
	}
	return count, nil
}
