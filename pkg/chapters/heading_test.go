package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

func newMatcher(t *testing.T, profile string) *HeadingMatcher {
	t.Helper()
	p, err := config.BuiltinProfile(profile)
	require.NoError(t, err)
	m, err := NewHeadingMatcher(p)
	require.NoError(t, err)
	return m
}

func TestHeadingMatcherNotations(t *testing.T) {
	vi := newMatcher(t, "vi")

	tests := []struct {
		name  string
		text  string
		label string
		kind  document.NumeralKind
		value int
	}{
		{"arabic", "Chương 1\nNội dung", "Chương 1", document.NumeralArabic, 1},
		{"arabic upper keyword", "CHƯƠNG 12", "CHƯƠNG 12", document.NumeralArabic, 12},
		{"roman", "CHƯƠNG IV: Mùa nước", "CHƯƠNG IV", document.NumeralRoman, 4},
		{"word", "Chương một\n", "Chương một", document.NumeralWord, 1},
		{"compound word", "Chương mười hai\n", "Chương mười hai", document.NumeralWord, 12},
		{"compound decade", "Chương hai mươi mốt.", "Chương hai mươi mốt", document.NumeralWord, 21},
		{"upper word", "CHƯƠNG MƯỜI", "CHƯƠNG MƯỜI", document.NumeralWord, 10},
		{"nbsp separator", "Chương\u00a03", "Chương\u00a03", document.NumeralArabic, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := vi.FindAll(tt.text)
			require.Len(t, matches, 1)
			assert.Equal(t, tt.label, matches[0].Label)
			assert.Equal(t, tt.kind, matches[0].Numeral.Kind)
			assert.Equal(t, tt.value, matches[0].Numeral.Value)
			assert.Equal(t, 0, matches[0].Start)
			assert.Equal(t, len(tt.label), matches[0].End)
		})
	}
}

func TestHeadingMatcherDisambiguation(t *testing.T) {
	vi := newMatcher(t, "vi")
	en := newMatcher(t, "en")

	// 关键字后面不是编号时一律不算标题
	viNegatives := []string{
		"Đây là chương trình của làng.",
		"Trong chương cuối, mọi người ra đi.",
		"CHƯƠNG CUỐI",
		"Chương mở đầu",
		"chương 5a",
		"Chương IVa",
	}
	for _, text := range viNegatives {
		assert.Empty(t, vi.FindAll(text), "text: %q", text)
	}

	enNegatives := []string{
		"The chapter ended abruptly.",
		"In this chapter we learn",
		"Chapter one-sided argument",
		"Subchapter 2",
		"Chapter Ix",
		"In this chapter I explain the rules.",
		"As the chapter I loved ended, we left.",
	}
	for _, text := range enNegatives {
		assert.Empty(t, en.FindAll(text), "text: %q", text)
	}
}

func TestHeadingMatcherOrderedNonOverlapping(t *testing.T) {
	en := newMatcher(t, "en")
	text := "Intro\nChapter 1\nbody\nChapter Two\nmore\nCHAPTER III\nend\nChapter twenty-one\nfin"

	matches := en.FindAll(text)
	require.Len(t, matches, 4)

	values := []int{1, 2, 3, 21}
	for i, m := range matches {
		assert.Equal(t, values[i], m.Numeral.Value)
		assert.Equal(t, m.Label, text[m.Start:m.End])
		if i > 0 {
			assert.GreaterOrEqual(t, m.Start, matches[i-1].End)
		}
	}
}

func TestHeadingMatcherSingleRomanIAtLineStart(t *testing.T) {
	en := newMatcher(t, "en")

	for _, text := range []string{"Chapter I\nIt was dark.", "intro\n## Chapter I\n", "**Chapter I**"} {
		matches := en.FindAll(text)
		require.Len(t, matches, 1, "text: %q", text)
		assert.Equal(t, 1, matches[0].Numeral.Value)
	}

	// 多位罗马数字不受行首限制
	matches := en.FindAll("see chapter IV for details")
	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].Numeral.Value)
}

func TestHeadingMatcherRescansAfterRejectedCandidate(t *testing.T) {
	vi := newMatcher(t, "vi")
	matches := vi.FindAll("Chương Chương 5")
	require.Len(t, matches, 1)
	assert.Equal(t, "Chương 5", matches[0].Label)
}

func TestHeadingMatcherMatchString(t *testing.T) {
	en := newMatcher(t, "en")
	assert.True(t, en.MatchString("Chapter 7"))
	assert.False(t, en.MatchString("A quiet chapter of life"))
}

func TestRomanValue(t *testing.T) {
	tests := map[string]int{
		"I": 1, "IV": 4, "IX": 9, "XIV": 14, "XL": 40, "MCMXC": 1990, "": 0, "IZ": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, RomanValue(in), in)
	}
}

func TestNewHeadingMatcherRequiresProfile(t *testing.T) {
	_, err := NewHeadingMatcher(nil)
	assert.Error(t, err)

	_, err = NewHeadingMatcher(&config.Profile{Name: "empty"})
	assert.Error(t, err)
}
