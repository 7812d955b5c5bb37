package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVietnameseNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(NormalizerOptions{
		RunningHeaders: []string{"Đất Rừng Phương Nam", "Nguyễn Văn Ba", "Đoàn Giỏi"},
		HyphenJoin:     JoinSpace,
	})
	require.NoError(t, err)
	return n
}

func TestStripPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare number", "đoạn một\n12\nđoạn hai", "đoạn một\n\nđoạn hai"},
		{"dash decorated", "a\n- 12 -\nb", "a\n\nb"},
		{"em dash decorated", "a\n— 7 —\nb", "a\n\nb"},
		{"dotted", "a\n. 3 .\nb", "a\n\nb"},
		{"number inside sentence kept", "Năm 1945 là năm", "Năm 1945 là năm"},
		{"five digits kept", "a\n12345\nb", "a\n12345\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripPageNumbers(tt.in))
		})
	}
}

func TestStripRunningHeaders(t *testing.T) {
	n := newVietnameseNormalizer(t)

	in := "ĐẤT RỪNG PHƯƠNG NAM\nTôi đi.\n  Đoàn Giỏi  \nĐoàn Giỏi là tác giả.\nnguyễn văn ba"
	want := "\nTôi đi.\n\nĐoàn Giỏi là tác giả.\n"
	assert.Equal(t, want, n.StripRunningHeaders(in))
}

func TestStripRunningHeadersFolded(t *testing.T) {
	n, err := NewNormalizer(NormalizerOptions{
		RunningHeaders: []string{"Đất Rừng Phương Nam"},
		FuzzyTolerance: 2,
	})
	require.NoError(t, err)

	// 声调丢失、带页码、个别字母错误
	assert.Equal(t, "", n.StripRunningHeaders("Dat Rung Phuong Nam"))
	assert.Equal(t, "", n.StripRunningHeaders("Đất Rừng Phương Nam 27"))
	assert.Equal(t, "", n.StripRunningHeaders("Đất Rùng Phuong Nan"))
	assert.Equal(t, "Phương Nam", n.StripRunningHeaders("Phương Nam"))
}

func TestStripRunningHeadersPatterns(t *testing.T) {
	n, err := NewNormalizer(NormalizerOptions{
		HeaderPatterns: []string{`^Trang \d+(?= / \d+$)`},
	})
	require.NoError(t, err)

	assert.Equal(t, "a\n\nb", n.StripRunningHeaders("a\nTrang 3 / 120\nb"))
	assert.Equal(t, "a\nTrang 3\nb", n.StripRunningHeaders("a\nTrang 3\nb"))

	_, err = NewNormalizer(NormalizerOptions{HeaderPatterns: []string{`(unclosed`}})
	assert.Error(t, err)
}

func TestStripDecorativeLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", StripDecorativeLines("a\n***\nb"))
	assert.Equal(t, "a\n\nb", StripDecorativeLines("a\n  ------  \nb"))
	assert.Equal(t, "a\n==\nb", StripDecorativeLines("a\n==\nb"))
	assert.Equal(t, "a -- b", StripDecorativeLines("a -- b"))
}

func TestRejoinHyphenated(t *testing.T) {
	assert.Equal(t, "thuyền buồm", RejoinHyphenated("thuyền-\nbuồm", JoinSpace))
	assert.Equal(t, "extraction", RejoinHyphenated("extrac-\n  tion", JoinDirect))
	// 下一行大写开头时保留
	assert.Equal(t, "Nam-\nBộ", RejoinHyphenated("Nam-\nBộ", JoinSpace))
	// 普通连字符不受影响
	assert.Equal(t, "well-known fact", RejoinHyphenated("well-known fact", JoinDirect))
	assert.Equal(t, "1990-\nnăm", RejoinHyphenated("1990-\nnăm", JoinSpace))
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\n\n\n\n\nb"))
	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\n  \n\t\n\nb"))
	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\n\nb"))
}

func TestCleanChain(t *testing.T) {
	n := newVietnameseNormalizer(t)

	in := "\n\nĐẤT RỪNG PHƯƠNG NAM\n\nChương 1\n\nTôi là thằng bé mồ côi, sống trên chiếc thuyền-\nbuồm nhỏ.\n\n\n- 12 -\n\n***\n\nĐoàn Giỏi\nHết chương.\n\n\n"
	want := "Chương 1\n\nTôi là thằng bé mồ côi, sống trên chiếc thuyền buồm nhỏ.\n\nHết chương."
	assert.Equal(t, want, n.Clean(in))
}

func TestCleanIdempotent(t *testing.T) {
	n := newVietnameseNormalizer(t)
	direct, err := NewNormalizer(NormalizerOptions{HyphenJoin: JoinDirect, FuzzyTolerance: 1, RunningHeaders: []string{"The Book"}})
	require.NoError(t, err)

	corpus := []string{
		"",
		"   ",
		"\n\n\n",
		"plain text",
		"a-\nb-\nc-\nd",
		"x-\n\n\ny",
		"1\n2\n3\n",
		"text\n \n \n \ntext",
		"---\n12\n---\nĐoàn Giỏi\n",
		"\t\tindented\n\n\n\n",
		"ĐẤT RỪNG PHƯƠNG NAM\n- 4 -\n\n\n\nthuyền-\n   buồm\n\n***",
		"the book\nThe Book 12\nthe bok\ncontent-\n\nrest",
		strings.Repeat("đoạn văn-\nnối\n\n\n", 10),
		" \n12\n ",
		"a -\nb",
		"5\n-\n5",
	}

	for _, norm := range []*Normalizer{n, direct} {
		for _, in := range corpus {
			once := norm.Clean(in)
			assert.Equal(t, once, norm.Clean(once), "input: %q", in)
			assert.Equal(t, strings.TrimSpace(once), once, "input: %q", in)
			assert.NotContains(t, once, "\n\n\n", "input: %q", in)
		}
	}
}

func TestNewNormalizerValidation(t *testing.T) {
	_, err := NewNormalizer(NormalizerOptions{HyphenJoin: "glue"})
	assert.Error(t, err)

	_, err = NewNormalizer(NormalizerOptions{FuzzyTolerance: -1})
	assert.Error(t, err)

	n, err := NewNormalizer(NormalizerOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a b", n.Clean("a-\nb"))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "dat rung phuong nam", FoldKey("ĐẤT RỪNG PHƯƠNG NAM"))
	assert.Equal(t, "dat rung phuong nam", FoldKey("Đất Rừng Phương Nam — 12"))
	assert.Equal(t, "", FoldKey("- 12 -"))
	assert.Equal(t, "doan gioi", FoldKey("  Đoàn   Giỏi "))
}
