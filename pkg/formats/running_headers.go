package formats

import (
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// DetectOptions 页眉页脚自动识别参数
type DetectOptions struct {
	// MinPages 页数少于该值时不做识别
	MinPages int
	// PageFraction 候选行至少出现在这个比例的页面上
	PageFraction float64
	// MaxDistance 归一化编辑距离低于该值视为同一行
	MaxDistance float64
	// Exclude 返回 true 的行不会成为候选，通常是章节标题
	Exclude func(line string) bool
}

// DefaultDetectOptions 返回默认识别参数
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		MinPages:     4,
		PageFraction: 0.6,
		MaxDistance:  0.3,
	}
}

type lineGroup struct {
	key      string
	pages    map[int]bool
	variants map[string]int
	first    string
}

// DetectRunningHeaders 根据每页首行和末行找出重复出现的页眉页脚。
// 返回每组中出现次数最多的原始文本，按首次出现的顺序排列。
func DetectRunningHeaders(pages []document.Page, opts DetectOptions) []string {
	if opts.MinPages <= 0 {
		opts.MinPages = DefaultDetectOptions().MinPages
	}
	if opts.PageFraction <= 0 {
		opts.PageFraction = DefaultDetectOptions().PageFraction
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultDetectOptions().MaxDistance
	}
	if len(pages) < opts.MinPages {
		return nil
	}

	var groups []*lineGroup
	for i, p := range pages {
		for _, line := range edgeLines(p.Text) {
			if pageNumberRe.MatchString(line) {
				continue
			}
			if opts.Exclude != nil && opts.Exclude(line) {
				continue
			}
			key := FoldKey(line)
			if key == "" {
				continue
			}
			g := findGroup(groups, key, opts.MaxDistance)
			if g == nil {
				g = &lineGroup{key: key, pages: make(map[int]bool), variants: make(map[string]int), first: line}
				groups = append(groups, g)
			}
			g.pages[i] = true
			g.variants[line]++
		}
	}

	minPages := int(math.Ceil(float64(len(pages)) * opts.PageFraction))
	var headers []string
	for _, g := range groups {
		if len(g.pages) < minPages {
			continue
		}
		headers = append(headers, g.representative())
	}
	return headers
}

// edgeLines 返回页面的第一行和最后一行非空文本
func edgeLines(text string) []string {
	var nonEmpty []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return nil
	case 1:
		return nonEmpty
	default:
		return []string{nonEmpty[0], nonEmpty[len(nonEmpty)-1]}
	}
}

func findGroup(groups []*lineGroup, key string, maxDistance float64) *lineGroup {
	for _, g := range groups {
		if g.key == key {
			return g
		}
		longest := max(len([]rune(key)), len([]rune(g.key)))
		if float64(fuzzy.LevenshteinDistance(key, g.key))/float64(longest) < maxDistance {
			return g
		}
	}
	return nil
}

func (g *lineGroup) representative() string {
	best := g.first
	for v, n := range g.variants {
		if n > g.variants[best] || (n == g.variants[best] && v < best) {
			best = v
		}
	}
	return best
}
