package chapters

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// 编号后必须紧跟非字母数字字符或文本结尾，"-" 只有在后面不是字母时才算边界
const numeralBoundary = `(?:$|[^\p{L}\p{N}\p{M}\-]|-(?:$|[^\p{L}]))`

// neverMatch 词表为空时占位
const neverMatch = `[^\s\S]`

// HeadingMatcher 识别章节标题关键字及其编号
type HeadingMatcher struct {
	re    *regexp.Regexp
	words map[string]int
}

// NewHeadingMatcher 根据 profile 构建标题匹配器，三种编号记法合并为一个正则
func NewHeadingMatcher(p *config.Profile) (*HeadingMatcher, error) {
	if p == nil {
		return nil, fmt.Errorf("heading matcher requires a profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	keywords := make([]string, 0, len(p.Keywords))
	for _, kw := range sortLongestFirst(p.Keywords) {
		keywords = append(keywords, regexp.QuoteMeta(norm.NFC.String(kw)))
	}

	words := make(map[string]int)
	alternatives := make([]string, 0)
	for w, v := range p.CompoundWords() {
		key := wordKey(w)
		if key == "" {
			continue
		}
		if _, seen := words[key]; !seen {
			alternatives = append(alternatives, key)
		}
		words[key] = v
	}

	wordPattern := neverMatch
	if len(alternatives) > 0 {
		quoted := make([]string, 0, len(alternatives))
		for _, w := range sortLongestFirst(alternatives) {
			// 词内空格允许任意空白，PDF 抽取时可能被折行
			parts := strings.Fields(w)
			for i := range parts {
				parts[i] = regexp.QuoteMeta(parts[i])
			}
			quoted = append(quoted, strings.Join(parts, `[\s\p{Zs}]+`))
		}
		wordPattern = strings.Join(quoted, "|")
	}

	pattern := `(?i:` + strings.Join(keywords, "|") + `)[\s\p{Zs}]+` +
		`(?:(\d+)|((?i:` + wordPattern + `))|([IVXLCDM]+))` +
		numeralBoundary

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile heading pattern for profile %q: %w", p.Name, err)
	}

	return &HeadingMatcher{re: re, words: words}, nil
}

// FindAll 从左到右扫描一次全文，返回按位置排序且互不重叠的标题命中
func (m *HeadingMatcher) FindAll(text string) []document.HeadingMatch {
	var matches []document.HeadingMatch
	pos := 0
	for pos < len(text) {
		loc := m.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]

		// 关键字前面紧挨着字母或数字时不是标题，如 "Subchapter 2"
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(r) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		numeral, end := m.numeral(text, pos, loc)
		// 单独的 "I" 只有在关键字位于行首时才算编号
		if numeral.Kind == document.NumeralRoman && numeral.Raw == "I" && !onlyMarkupBefore(text, start) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		matches = append(matches, document.HeadingMatch{
			Start:   start,
			End:     end,
			Label:   text[start:end],
			Numeral: numeral,
		})
		pos = end
	}
	return matches
}

// MatchString 判断一行文本中是否含有章节标题
func (m *HeadingMatcher) MatchString(line string) bool {
	return len(m.FindAll(line)) > 0
}

// numeral 从子匹配中解析出编号，返回编号及其结束位置
func (m *HeadingMatcher) numeral(text string, base int, loc []int) (document.Numeral, int) {
	switch {
	case loc[2] >= 0:
		raw := text[base+loc[2] : base+loc[3]]
		v, err := strconv.Atoi(raw)
		if err != nil {
			v = 0
		}
		return document.Numeral{Kind: document.NumeralArabic, Raw: raw, Value: v}, base + loc[3]
	case loc[4] >= 0:
		raw := text[base+loc[4] : base+loc[5]]
		return document.Numeral{Kind: document.NumeralWord, Raw: raw, Value: m.words[wordKey(raw)]}, base + loc[5]
	default:
		raw := text[base+loc[6] : base+loc[7]]
		return document.Numeral{Kind: document.NumeralRoman, Raw: raw, Value: RomanValue(raw)}, base + loc[7]
	}
}

var romanDigits = map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

// RomanValue 解析大写罗马数字，非法输入返回 0
func RomanValue(s string) int {
	total := 0
	prev := 0
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := romanDigits[runes[i]]
		if !ok {
			return 0
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total
}

// headingMarkup 标题行首允许出现的 Markdown 标记和空白
const headingMarkup = "#*_ \t"

// onlyMarkupBefore 判断 start 之前同一行是否只有 Markdown 标记
func onlyMarkupBefore(text string, start int) bool {
	i := start
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if r == '\n' {
			return true
		}
		if !strings.ContainsRune(headingMarkup, r) {
			return false
		}
		i -= size
	}
	return true
}

func wordKey(w string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(w))), " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r)
}

// sortLongestFirst 按字节长度降序排列，保证复合词先于其前缀参与匹配
func sortLongestFirst(in []string) []string {
	out := append([]string(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
