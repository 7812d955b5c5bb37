package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// ScriptVersion 写入报告的版本号
const ScriptVersion = "1.0.0"

// DefaultMinChars 清理后正文的最少字符数
const DefaultMinChars = 100

// Thresholds 质量检查阈值
type Thresholds struct {
	MinChars       int
	MinScriptChars int
	// ShortFraction 低于 中位数 × ShortFraction 的章节视为过短
	ShortFraction float64
}

// DefaultThresholds 返回目标文字的默认阈值
func DefaultThresholds(sc Script) Thresholds {
	return Thresholds{
		MinChars:       DefaultMinChars,
		MinScriptChars: sc.MinScriptChars,
		ShortFraction:  sc.ShortFraction,
	}
}

// Input 一个待评分的章节
type Input struct {
	Index int
	Title string
	// Text 清理后的章节正文
	Text string
}

// Scorer 计算章节质量指标，纯计算，没有副作用
type Scorer struct {
	Script     Script
	Thresholds Thresholds
	// Clock 提供报告时间戳，固定时钟可以让报告逐字节复现
	Clock func() time.Time

	logger *zap.Logger
}

// NewScorer 创建评分器
func NewScorer(sc Script, th Thresholds, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		Script:     sc,
		Thresholds: th,
		Clock:      time.Now,
		logger:     logger,
	}
}

// Evaluate 对单个章节做独立检查：长度、目标文字、乱码
func (s *Scorer) Evaluate(in Input) Result {
	text := strings.TrimSpace(in.Text)
	r := Result{
		Index:           in.Index,
		Title:           in.Title,
		Issues:          []string{},
		CharCount:       utf8.RuneCountInString(text),
		ScriptCharCount: s.Script.Count(text),
		GarbledCount:    CountGarbled(text),
	}

	if r.CharCount < s.Thresholds.MinChars {
		r.Issues = append(r.Issues, fmt.Sprintf("Suspiciously short content (%d chars, minimum %d)",
			r.CharCount, s.Thresholds.MinChars))
	}
	if r.ScriptCharCount < s.Thresholds.MinScriptChars {
		r.Issues = append(r.Issues, fmt.Sprintf("Very few %s characters (%d, minimum %d)",
			s.Script.Label, r.ScriptCharCount, s.Thresholds.MinScriptChars))
	}
	if r.GarbledCount > 0 {
		r.Issues = append(r.Issues, fmt.Sprintf("%d garbled/replacement character(s) found", r.GarbledCount))
	}
	r.Valid = len(r.Issues) == 0
	return r
}

// Score 评估所有章节并生成报告。
// fullTextChars 为全文字符数，小于 0 时报告不包含覆盖率。
func (s *Scorer) Score(inputs []Input, fullTextChars int) *Report {
	results := make([]Result, len(inputs))
	for i, in := range inputs {
		results[i] = s.Evaluate(in)
	}

	s.flagShortRelativeToMedian(results)

	for _, r := range results {
		for _, issue := range r.Issues {
			s.logger.Warn("chapter quality issue",
				zap.Int("index", r.Index),
				zap.String("title", r.Title),
				zap.String("issue", issue))
		}
	}

	report := &Report{
		ScriptVersion: ScriptVersion,
		Timestamp:     s.Clock().UTC().Format(time.RFC3339),
		Script:        s.Script.Name,
		Chapters:      results,
		Summary:       summarize(results),
	}
	if fullTextChars >= 0 {
		report.Coverage = coverage(report.Summary.TotalCharacters, fullTextChars)
	}

	s.logger.Info("quality validation finished",
		zap.Int("valid", report.Summary.ValidChapters),
		zap.Int("total", report.Summary.TotalChapters),
		zap.Int("issues", report.Summary.TotalIssues))

	return report
}

// ScoreDocument 对切分好的章节评分，cleaned 与 chapters 一一对应
func (s *Scorer) ScoreDocument(doc *document.Document, chapters []document.Chapter, cleaned []string) (*Report, error) {
	if len(chapters) != len(cleaned) {
		return nil, fmt.Errorf("got %d cleaned texts for %d chapters", len(cleaned), len(chapters))
	}
	inputs := make([]Input, len(chapters))
	for i, ch := range chapters {
		inputs[i] = Input{Index: ch.Index, Title: ch.Title, Text: cleaned[i]}
	}
	return s.Score(inputs, doc.RuneCount()), nil
}

// flagShortRelativeToMedian 与其他章节相比明显过短的章节标记为无效。
// 中位数取非零长度的上中位数；已经低于 MinChars 的章节不重复标记。
func (s *Scorer) flagShortRelativeToMedian(results []Result) {
	median := MedianCharCount(results)
	if median == 0 {
		return
	}
	threshold := math.Max(float64(s.Thresholds.MinChars), float64(median)*s.Thresholds.ShortFraction)
	for i := range results {
		r := &results[i]
		if r.CharCount < s.Thresholds.MinChars || float64(r.CharCount) >= threshold {
			continue
		}
		r.Issues = append(r.Issues, fmt.Sprintf("Short relative to median (%d chars vs median %d)",
			r.CharCount, median))
		r.Valid = false
	}
}

// MedianCharCount 返回非零字符数的上中位数，没有非零章节时返回 0
func MedianCharCount(results []Result) int {
	counts := make([]int, 0, len(results))
	for _, r := range results {
		if r.CharCount > 0 {
			counts = append(counts, r.CharCount)
		}
	}
	if len(counts) == 0 {
		return 0
	}
	sort.Ints(counts)
	return counts[len(counts)/2]
}

func summarize(results []Result) Summary {
	sum := Summary{TotalChapters: len(results)}
	for _, r := range results {
		if r.Valid {
			sum.ValidChapters++
		}
		sum.TotalIssues += len(r.Issues)
		sum.TotalCharacters += r.CharCount
		sum.TotalScriptCharacters += r.ScriptCharCount
		sum.TotalGarbled += r.GarbledCount
	}
	sum.InvalidChapters = sum.TotalChapters - sum.ValidChapters
	return sum
}

func coverage(extracted, full int) *Coverage {
	pct := 0.0
	if full > 0 {
		pct = math.Round(float64(extracted)/float64(full)*100*100) / 100
	}
	return &Coverage{
		ExtractedChars: extracted,
		FullTextChars:  full,
		CoveragePct:    pct,
	}
}
