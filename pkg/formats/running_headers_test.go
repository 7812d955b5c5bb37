package formats

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

func bookPages(n int) []document.Page {
	pages := make([]document.Page, n)
	for i := range pages {
		header := "ĐẤT RỪNG PHƯƠNG NAM"
		if i%3 == 1 {
			// 抽取时偶尔丢失声调
			header = "DAT RUNG PHUONG NAM"
		}
		pages[i] = document.Page{
			Number: i + 1,
			Text:   fmt.Sprintf("%s\nĐoạn văn số %d trên trang.\nMột dòng khác %d.\n%d", header, i, i*7, i+1),
		}
	}
	return pages
}

func TestDetectRunningHeaders(t *testing.T) {
	headers := DetectRunningHeaders(bookPages(10), DefaultDetectOptions())

	assert.Equal(t, []string{"ĐẤT RỪNG PHƯƠNG NAM"}, headers)
}

func TestDetectRunningHeadersSkipsPageNumbersAndExcluded(t *testing.T) {
	pages := make([]document.Page, 6)
	for i := range pages {
		pages[i] = document.Page{
			Number: i + 1,
			Text:   fmt.Sprintf("Chương %d\nNội dung %s\n- %d -", i+1, strings.Repeat("x", i+1), i+1),
		}
	}

	opts := DefaultDetectOptions()
	assert.Equal(t, []string{"Chương 1"}, DetectRunningHeaders(pages, opts))

	opts.Exclude = func(line string) bool { return strings.HasPrefix(line, "Chương") }
	assert.Empty(t, DetectRunningHeaders(pages, opts))
}

func TestDetectRunningHeadersTooFewPages(t *testing.T) {
	assert.Nil(t, DetectRunningHeaders(bookPages(3), DefaultDetectOptions()))
}

func TestDetectedHeadersFeedNormalizer(t *testing.T) {
	pages := bookPages(8)
	headers := DetectRunningHeaders(pages, DefaultDetectOptions())

	n, err := NewNormalizer(NormalizerOptions{RunningHeaders: headers})
	assert.NoError(t, err)

	doc := document.New(pages, "\n")
	cleaned := n.Clean(doc.Text())
	assert.NotContains(t, cleaned, "PHƯƠNG NAM")
	assert.NotContains(t, cleaned, "PHUONG NAM")
	assert.Contains(t, cleaned, "Đoạn văn số 0 trên trang.")
}
