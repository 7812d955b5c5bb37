package formats

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HyphenJoin 行尾连字符断词的重连方式
type HyphenJoin string

const (
	// JoinSpace 用空格连接，越南语单音节词默认使用
	JoinSpace HyphenJoin = "space"
	// JoinDirect 直接拼接
	JoinDirect HyphenJoin = "direct"
)

var (
	pageNumberRe     = regexp.MustCompile(`(?m)^[ \t]*[-—.]*[ \t]*\d{1,4}[ \t]*[-—.]*[ \t]*$`)
	decorativeLineRe = regexp.MustCompile(`(?m)^[ \t]*[-_=*]{3,}[ \t]*$`)
	hyphenSplitRe    = regexp.MustCompile(`(\p{L})-[ \t]*\n\s*(\p{Ll})`)
	blankLineRe      = regexp.MustCompile(`(?m)^[ \t]+$`)
	excessBlanksRe   = regexp.MustCompile(`\n{3,}`)
)

// NormalizerOptions 清理规则的配置
type NormalizerOptions struct {
	// RunningHeaders 页眉页脚文字，整行匹配时删除（忽略大小写）
	RunningHeaders []string
	// HeaderPatterns 额外的页眉页脚正则，使用 regexp2 语法，可以包含环视
	HeaderPatterns []string
	// FuzzyTolerance 去掉声调后的页眉与行之间允许的编辑距离
	FuzzyTolerance int
	HyphenJoin     HyphenJoin
}

// Normalizer 清理 PDF 抽取残留的文本。
// 构造后只读，可以在多个 goroutine 中同时使用。
type Normalizer struct {
	headerRe       *regexp.Regexp
	headerPatterns []*regexp2.Regexp
	foldedHeaders  []string
	maxHeaderRunes int
	tolerance      int
	join           HyphenJoin
}

// NewNormalizer 编译清理规则
func NewNormalizer(opts NormalizerOptions) (*Normalizer, error) {
	n := &Normalizer{
		tolerance: opts.FuzzyTolerance,
		join:      opts.HyphenJoin,
	}
	if n.join == "" {
		n.join = JoinSpace
	}
	if n.join != JoinSpace && n.join != JoinDirect {
		return nil, fmt.Errorf("unknown hyphen join policy %q", n.join)
	}
	if n.tolerance < 0 {
		return nil, fmt.Errorf("fuzzy tolerance must not be negative")
	}

	var quoted []string
	seen := make(map[string]bool)
	for _, h := range opts.RunningHeaders {
		h = strings.TrimSpace(norm.NFC.String(h))
		if h == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(h))
		if key := FoldKey(h); key != "" && !seen[key] {
			seen[key] = true
			n.foldedHeaders = append(n.foldedHeaders, key)
			if l := len([]rune(key)); l > n.maxHeaderRunes {
				n.maxHeaderRunes = l
			}
		}
	}
	if len(quoted) > 0 {
		n.headerRe = regexp.MustCompile(`(?mi)^[ \t]*(?:` + strings.Join(quoted, "|") + `)[ \t]*$`)
	}

	for _, p := range opts.HeaderPatterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("invalid header pattern %q: %w", p, err)
		}
		re.MatchTimeout = time.Second
		n.headerPatterns = append(n.headerPatterns, re)
	}

	return n, nil
}

// Clean 依次执行所有清理步骤，直到文本不再变化。
// 每一步只会删除字符，所以一定会收敛，且 Clean(Clean(x)) == Clean(x)。
func (n *Normalizer) Clean(text string) string {
	for {
		next := n.cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func (n *Normalizer) cleanOnce(text string) string {
	text = StripPageNumbers(text)
	text = n.StripRunningHeaders(text)
	text = StripDecorativeLines(text)
	text = RejoinHyphenated(text, n.join)
	text = CollapseBlankLines(text)
	return strings.TrimSpace(text)
}

// StripPageNumbers 删除只有页码的行，页码两侧可以有 - — . 装饰
func StripPageNumbers(text string) string {
	return pageNumberRe.ReplaceAllString(text, "")
}

// StripRunningHeaders 删除页眉页脚行
func (n *Normalizer) StripRunningHeaders(text string) string {
	if n.headerRe != nil {
		text = n.headerRe.ReplaceAllString(text, "")
	}
	if len(n.headerPatterns) == 0 && len(n.foldedHeaders) == 0 {
		return text
	}
	return blankLines(text, n.isRunningHeader)
}

func (n *Normalizer) isRunningHeader(line string) bool {
	for _, re := range n.headerPatterns {
		// 超时视为不匹配
		if ok, err := re.MatchString(line); err == nil && ok {
			return true
		}
	}
	if len(n.foldedHeaders) == 0 || len([]rune(line)) > 2*n.maxHeaderRunes+8 {
		return false
	}
	key := FoldKey(line)
	if key == "" {
		return false
	}
	for _, h := range n.foldedHeaders {
		if key == h {
			return true
		}
		if n.tolerance > 0 && fuzzy.LevenshteinDistance(key, h) <= n.tolerance {
			return true
		}
	}
	return false
}

// StripDecorativeLines 删除由 3 个以上 - _ = * 组成的分隔线
func StripDecorativeLines(text string) string {
	return decorativeLineRe.ReplaceAllString(text, "")
}

// RejoinHyphenated 连接被行尾连字符拆开的单词，只处理 "字母-换行-小写字母" 的情况
func RejoinHyphenated(text string, join HyphenJoin) string {
	if join == JoinDirect {
		return hyphenSplitRe.ReplaceAllString(text, "${1}${2}")
	}
	return hyphenSplitRe.ReplaceAllString(text, "${1} ${2}")
}

// CollapseBlankLines 将连续的空行压缩为一个空行
func CollapseBlankLines(text string) string {
	text = blankLineRe.ReplaceAllString(text, "")
	return excessBlanksRe.ReplaceAllString(text, "\n\n")
}

// blankLines 把满足条件的非空行替换为空行，保留行结构
func blankLines(text string, drop func(line string) bool) string {
	lines := strings.Split(text, "\n")
	changed := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if drop(trimmed) {
			lines[i] = ""
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(lines, "\n")
}

// newFolder 每次调用都新建，transform.Transformer 带状态，不能在 goroutine 间共享
func newFolder() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ', 'Đ':
				return 'd'
			}
			if unicode.IsDigit(r) {
				return ' '
			}
			return unicode.ToLower(r)
		}),
		norm.NFC,
	)
}

// FoldKey 返回用于页眉比较的形式：小写、去掉声调和数字、压缩空白
func FoldKey(s string) string {
	folded, _, err := transform.String(newFolder(), s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	folded = strings.Join(strings.Fields(folded), " ")
	return strings.Trim(folded, " -—.|·:")
}
