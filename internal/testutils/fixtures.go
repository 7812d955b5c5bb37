package testutils

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// BookHeader 测试书籍每页开头的页眉
const BookHeader = "Đất Rừng Phương Nam"

var vietnameseSentences = []string{
	"Tía nuôi tôi chèo xuồng qua con rạch nhỏ.",
	"Rừng đước mênh mông trải dài tới tận chân trời.",
	"Tiếng chim bìm bịp kêu vang trong buổi chiều.",
	"Má nuôi tôi đang nhóm lửa nấu cơm dưới bếp.",
}

// VietnameseBook 生成一本多页越南语测试书：
// 每页有页眉和页码，每章从新的一页开始。
func VietnameseBook(chapters, pagesPerChapter int) []document.Page {
	var pages []document.Page
	for c := 1; c <= chapters; c++ {
		for p := 0; p < pagesPerChapter; p++ {
			n := len(pages) + 1
			var b strings.Builder
			b.WriteString(BookHeader + "\n")
			if p == 0 {
				fmt.Fprintf(&b, "Chương %d\n\n", c)
			}
			for i := 0; i < 3; i++ {
				b.WriteString(vietnameseSentences[(n+i)%len(vietnameseSentences)])
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "\n\n%d", n)
			pages = append(pages, document.Page{Number: n, Text: b.String()})
		}
	}
	return pages
}

// EnglishBook 生成只有一页的英文测试书，每章一行标题和 filler 重复的正文
func EnglishBook(chapters int, filler string, repeat int) string {
	var parts []string
	for c := 1; c <= chapters; c++ {
		parts = append(parts, fmt.Sprintf("Chapter %d\n%s", c, strings.Repeat(filler, repeat)))
	}
	return strings.Join(parts, "\n\n")
}
