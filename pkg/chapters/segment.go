package chapters

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// DefaultFrontMatterMinChars 首个标题前的文本超过该字符数才作为前言输出
const DefaultFrontMatterMinChars = 200

// Segmenter 将标题命中转换为连续且覆盖全文的章节区间
type Segmenter struct {
	FrontMatterMinChars int
	FrontMatterTitle    string
	FallbackTitle       string

	logger *zap.Logger
}

// NewSegmenter 创建分段器
func NewSegmenter(frontMatterTitle, fallbackTitle string, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallbackTitle == "" {
		fallbackTitle = "Full Document"
	}
	return &Segmenter{
		FrontMatterMinChars: DefaultFrontMatterMinChars,
		FrontMatterTitle:    frontMatterTitle,
		FallbackTitle:       fallbackTitle,
		logger:              logger,
	}
}

// Segment 根据有序的标题命中切分全文。
// 没有命中时返回覆盖全文的单个章节；较短的前导文本并入第一章区间但不输出。
func (s *Segmenter) Segment(doc *document.Document, matches []document.HeadingMatch) ([]document.Chapter, error) {
	if len(matches) == 0 {
		s.logger.Warn("no chapter headings found, falling back to a single chapter",
			zap.Int("chars", doc.RuneCount()))
		chapters := []document.Chapter{{
			Index: 0,
			Title: s.FallbackTitle,
			Kind:  document.KindFullDocument,
			Start: 0,
			End:   doc.Len(),
		}}
		return chapters, document.CheckPartition(doc, chapters)
	}

	text := doc.Text()
	starts := make([]int, len(matches))
	for i, m := range matches {
		starts[i] = headingLineStart(text, m.Start)
		if i > 0 && starts[i] < matches[i-1].End {
			starts[i] = m.Start
		}
	}

	chapters := make([]document.Chapter, 0, len(matches)+1)

	leaderEnd := starts[0]
	leader := strings.TrimSpace(text[:leaderEnd])
	leaderChars := utf8.RuneCountInString(leader)
	absorbLeader := false
	if leaderEnd > 0 {
		if leaderChars > s.FrontMatterMinChars {
			chapters = append(chapters, document.Chapter{
				Index: 0,
				Title: s.FrontMatterTitle,
				Kind:  document.KindFrontMatter,
				Start: 0,
				End:   leaderEnd,
			})
		} else {
			absorbLeader = true
			if leaderChars > 0 {
				s.logger.Debug("dropping short leader before first heading",
					zap.Int("chars", leaderChars),
					zap.Int("threshold", s.FrontMatterMinChars))
			}
		}
	}

	for i, m := range matches {
		m := m
		end := doc.Len()
		if i+1 < len(matches) {
			end = starts[i+1]
		}
		ch := document.Chapter{
			Index:        len(chapters),
			Kind:         document.KindChapter,
			Start:        starts[i],
			End:          end,
			HeadingStart: starts[i],
			Heading:      &m,
		}
		if i == 0 && absorbLeader {
			ch.Start = 0
		}
		chapters = append(chapters, ch)
	}

	s.logNumberingGaps(matches)

	if err := document.CheckPartition(doc, chapters); err != nil {
		return nil, fmt.Errorf("segmentation produced invalid spans: %w", err)
	}

	s.logger.Info("detected chapters",
		zap.Int("headings", len(matches)),
		zap.Int("chapters", len(chapters)),
		zap.Bool("front_matter", len(chapters) > len(matches)))

	return chapters, nil
}

// logNumberingGaps 记录编号不连续的位置，通常意味着漏检或误检了标题
func (s *Segmenter) logNumberingGaps(matches []document.HeadingMatch) {
	prev := 0
	for _, m := range matches {
		v := m.Numeral.Value
		if v == 0 {
			prev = 0
			continue
		}
		if prev != 0 && v != prev+1 {
			s.logger.Warn("chapter numbering is not consecutive",
				zap.String("heading", m.Label),
				zap.Int("previous", prev),
				zap.Int("current", v))
		}
		prev = v
	}
}

// headingLineStart 标题前同一行只有 Markdown 标记时，章节从行首开始
func headingLineStart(text string, start int) int {
	if !onlyMarkupBefore(text, start) {
		return start
	}
	return strings.LastIndexByte(text[:start], '\n') + 1
}
