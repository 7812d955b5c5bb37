package chapters

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// TitleSeparator 标题与续行之间的连接符
const TitleSeparator = " — "

var (
	headingMarkerRe = regexp.MustCompile(`^#{1,6}\s*`)
	emphasisWrapRe  = regexp.MustCompile(`^(\*\*|__|\*|_)(.+?)(\*\*|__|\*|_)$`)
)

// Title 组合后的章节标题
type Title struct {
	Text string
	// Parts 标题行与被吸收的续行，均已清理
	Parts []string
}

// TitleComposer 从章节起始处推导可读的标题
type TitleComposer struct {
	MaxExtraLines int
	MaxLineLen    int
	ProseMinLen   int

	matcher *HeadingMatcher
}

// NewTitleComposer 创建标题组合器
func NewTitleComposer(matcher *HeadingMatcher) *TitleComposer {
	return &TitleComposer{
		MaxExtraLines: 2,
		MaxLineLen:    120,
		ProseMinLen:   60,
		matcher:       matcher,
	}
}

// Compose 返回章节标题。前言和整书章节保留分段器给出的标题。
func (tc *TitleComposer) Compose(doc *document.Document, ch document.Chapter) Title {
	if ch.Kind != document.KindChapter || ch.Heading == nil {
		if ch.Title == "" {
			return Title{}
		}
		return Title{Text: ch.Title, Parts: []string{ch.Title}}
	}

	text := doc.Text()
	lineEnd := lineEndFrom(text, ch.Heading.End, ch.End)
	base := CleanTitleLine(text[ch.ContentStart():lineEnd])
	parts := []string{base}

	pos := lineEnd
	for i := 0; i < tc.MaxExtraLines; i++ {
		if pos < ch.End && text[pos] == '\n' {
			pos++
		}
		if pos >= ch.End {
			break
		}
		next := lineEndFrom(text, pos, ch.End)
		line := strings.TrimSpace(text[pos:next])
		if !tc.isContinuation(line) {
			break
		}
		parts = append(parts, CleanTitleLine(line))
		pos = next
	}

	return Title{Text: strings.Join(parts, TitleSeparator), Parts: parts}
}

// ComposeAll 为每个章节填入标题
func (tc *TitleComposer) ComposeAll(doc *document.Document, chapters []document.Chapter) []Title {
	titles := make([]Title, len(chapters))
	for i := range chapters {
		titles[i] = tc.Compose(doc, chapters[i])
		chapters[i].Title = titles[i].Text
	}
	return titles
}

// isContinuation 判断一行能否作为标题续行
func (tc *TitleComposer) isContinuation(line string) bool {
	if line == "" {
		return false
	}
	n := utf8.RuneCountInString(line)
	if n > tc.MaxLineLen {
		return false
	}
	if tc.matcher != nil && tc.matcher.MatchString(line) {
		return false
	}
	// 较长且小写开头的行视为正文
	first, _ := utf8.DecodeRuneInString(line)
	if n > tc.ProseMinLen && unicode.IsLower(first) {
		return false
	}
	return true
}

// StripFrom 去掉正文开头重复的标题行以及前后的空行。
// 被吸收进标题的续行仍然属于正文，保持不变。
func (t Title) StripFrom(body string) string {
	lines := strings.Split(body, "\n")
	i := skipBlankLines(lines, 0)
	if len(t.Parts) == 0 || i >= len(lines) || CleanTitleLine(lines[i]) != t.Parts[0] {
		return strings.Join(lines[i:], "\n")
	}
	return strings.Join(lines[skipBlankLines(lines, i+1):], "\n")
}

func skipBlankLines(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// CleanTitleLine 去掉 Markdown 标题标记和包裹标题的强调符号，并压缩空白
func CleanTitleLine(raw string) string {
	title := strings.Join(strings.Fields(raw), " ")
	title = headingMarkerRe.ReplaceAllString(title, "")
	if m := emphasisWrapRe.FindStringSubmatch(title); m != nil && m[1] == m[3] {
		title = m[2]
	}
	// 标题只截取到行尾时可能残留一侧的强调符号
	title = strings.Trim(title, "*_ ")
	return title
}

// lineEndFrom 返回 pos 之后第一个换行的位置，不超过 limit
func lineEndFrom(text string, pos, limit int) int {
	if pos >= limit {
		return limit
	}
	if i := strings.IndexByte(text[pos:limit], '\n'); i >= 0 {
		return pos + i
	}
	return limit
}
