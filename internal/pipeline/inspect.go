package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/extract"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/formats"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/quality"
)

// DefaultInspectPages 默认检查的页数
const DefaultInspectPages = 5

// PageInfo 单页诊断信息
type PageInfo struct {
	Number      int
	Chars       int
	ScriptChars int
	Garbled     int
	Headings    []string
	FirstLine   string
	LastLine    string
}

// Inspection 源文件诊断结果
type Inspection struct {
	Source     string
	TotalPages int
	// DeclaredPages PDF 自身声明的页数，非 PDF 或读取失败时为 0
	DeclaredPages  int
	Pages          []PageInfo
	RunningHeaders []string
	// Headings 全文中的标题命中数
	Headings int
}

// Inspect 输出前 maxPages 页的诊断信息，用于在切分前调整 profile
func (p *Pipeline) Inspect(ctx context.Context, input string, maxPages int) (*Inspection, error) {
	if maxPages <= 0 {
		maxPages = DefaultInspectPages
	}
	pages, err := p.Extract(ctx, input)
	if err != nil {
		return nil, err
	}

	opts := formats.DefaultDetectOptions()
	opts.Exclude = p.matcher.MatchString
	ins := &Inspection{
		Source:         input,
		TotalPages:     len(pages),
		RunningHeaders: formats.DetectRunningHeaders(pages, opts),
		Headings:       len(p.matcher.FindAll(document.New(pages, p.cfg.PageSeparator).Text())),
	}

	if p.PageCount != nil && extract.Format(input) == document.FormatPDF {
		count, err := p.PageCount(input)
		if err != nil {
			p.logger.Warn("could not read declared page count", zap.String("input", input), zap.Error(err))
		} else {
			ins.DeclaredPages = count
		}
	}

	for i, page := range pages {
		if i >= maxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ins.Pages = append(ins.Pages, p.inspectPage(page))
	}

	p.logger.Debug("inspected source",
		zap.String("input", input),
		zap.Int("pages", ins.TotalPages),
		zap.Int("headings", ins.Headings))
	return ins, nil
}

func (p *Pipeline) inspectPage(page document.Page) PageInfo {
	text := document.FromText(page.Text).Text()
	info := PageInfo{
		Number:      page.Number,
		Chars:       utf8.RuneCountInString(text),
		ScriptChars: p.script.Count(text),
		Garbled:     quality.CountGarbled(text),
	}
	for _, m := range p.matcher.FindAll(text) {
		info.Headings = append(info.Headings, m.Label)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		info.FirstLine = lines[0]
		info.LastLine = lines[len(lines)-1]
	}
	return info
}
