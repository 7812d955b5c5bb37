package extract

import (
	"context"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// DocxExtractor 读取 Word 文档，整个文档作为一页
type DocxExtractor struct {
	logger *zap.Logger
}

// NewDocxExtractor 创建 DOCX 抽取器
func NewDocxExtractor(logger *zap.Logger) *DocxExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocxExtractor{logger: logger}
}

// Extract 按段落顺序输出文本，标题样式的段落转换为 Markdown 标题行
func (d *DocxExtractor) Extract(ctx context.Context, path string) ([]document.Page, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError("open", path, ErrExtractionFailed, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newError("stat", path, ErrExtractionFailed, err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, newError("parse", path, ErrExtractionFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := headingLevel(para); level > 0 {
			text = strings.Repeat("#", level) + " " + text
		}
		paragraphs = append(paragraphs, text)
	}

	d.logger.Info("extracted docx", zap.String("path", path), zap.Int("paragraphs", len(paragraphs)))
	return []document.Page{{Number: 1, Text: strings.Join(paragraphs, "\n\n")}}, nil
}

// headingLevel 返回段落的标题级别，普通段落为 0
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level := strings.TrimPrefix(style, "heading")
	if len(level) == 1 && level[0] >= '1' && level[0] <= '6' {
		return int(level[0] - '0')
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
