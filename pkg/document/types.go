package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Format 源文档格式类型
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatUnknown  Format = "unknown"
)

// DefaultPageSeparator 拼接页面文本时使用的分隔符
const DefaultPageSeparator = "\n"

// Page 抽取器产出的单页文本
type Page struct {
	// Number 页码，从 1 开始
	Number int

	// Text 页面文本
	Text string
}

// Document 表示整本书拼接后的全文。
// 构造后不可变，下游只通过偏移量引用它。
type Document struct {
	text      string
	runeCount int
	pageCount int
}

// New 按顺序拼接页面文本并构造 Document。
// 文本统一为 NFC 形式，换行统一为 \n。
func New(pages []Page, sep string) *Document {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return newDocument(strings.Join(parts, sep), len(pages))
}

// FromText 用一段完整文本构造单页 Document
func FromText(text string) *Document {
	return newDocument(text, 1)
}

func newDocument(text string, pages int) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = norm.NFC.String(text)
	return &Document{
		text:      text,
		runeCount: utf8.RuneCountInString(text),
		pageCount: pages,
	}
}

// Text 返回全文
func (d *Document) Text() string { return d.text }

// Len 返回全文字节长度，所有偏移量都以字节计
func (d *Document) Len() int { return len(d.text) }

// RuneCount 返回全文字符数
func (d *Document) RuneCount() int { return d.runeCount }

// PageCount 返回源页面数
func (d *Document) PageCount() int { return d.pageCount }

// Slice 返回 [start, end) 区间的文本，越界时截断
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// NumeralKind 章节编号的记法
type NumeralKind string

const (
	NumeralArabic NumeralKind = "arabic"
	NumeralRoman  NumeralKind = "roman"
	NumeralWord   NumeralKind = "word"
)

// Numeral 章节编号，三种记法的标签联合
type Numeral struct {
	Kind NumeralKind
	Raw  string
	// Value 解析出的数值，无法解析时为 0
	Value int
}

// HeadingMatch 全文中一次章节标题关键字的命中
type HeadingMatch struct {
	Start   int
	End     int
	Label   string
	Numeral Numeral
}

// ChapterKind 章节类型
type ChapterKind string

const (
	KindChapter      ChapterKind = "chapter"
	KindFrontMatter  ChapterKind = "front_matter"
	KindFullDocument ChapterKind = "full_document"
)

// Chapter 一个章节区间 [Start, End)。
// HeadingStart 是标题开始的位置，只有当封面等短前导文本被并入第一章时才与 Start 不同。
type Chapter struct {
	Index        int
	Title        string
	Kind         ChapterKind
	Start        int
	End          int
	HeadingStart int
	Heading      *HeadingMatch
}

// Len 返回区间字节长度
func (c Chapter) Len() int { return c.End - c.Start }

// ContentStart 返回正文（含标题行）的起始偏移
func (c Chapter) ContentStart() int {
	if c.HeadingStart > c.Start {
		return c.HeadingStart
	}
	return c.Start
}

// Content 返回章节实际输出的原始文本
func (c Chapter) Content(d *Document) string {
	return d.Slice(c.ContentStart(), c.End)
}

// Raw 返回整个区间的原始文本
func (c Chapter) Raw(d *Document) string {
	return d.Slice(c.Start, c.End)
}

// CheckPartition 校验章节区间连续且恰好覆盖全文
func CheckPartition(d *Document, chapters []Chapter) error {
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters")
	}
	pos := 0
	for i, ch := range chapters {
		if ch.Index != i {
			return fmt.Errorf("chapter %d has index %d", i, ch.Index)
		}
		if ch.Start != pos {
			return fmt.Errorf("chapter %d starts at %d, expected %d", i, ch.Start, pos)
		}
		if ch.End < ch.Start {
			return fmt.Errorf("chapter %d has negative span [%d, %d)", i, ch.Start, ch.End)
		}
		if ch.HeadingStart < ch.Start || ch.HeadingStart > ch.End {
			return fmt.Errorf("chapter %d heading offset %d outside span", i, ch.HeadingStart)
		}
		pos = ch.End
	}
	if pos != d.Len() {
		return fmt.Errorf("chapters end at %d, document length is %d", pos, d.Len())
	}
	return nil
}
