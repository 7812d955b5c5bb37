package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

func TestInspect(t *testing.T) {
	var pages []document.Page
	for i := 1; i <= 8; i++ {
		body := strings.Repeat("Rừng đước mênh mông. ", 3)
		if i == 2 {
			body = "CHƯƠNG II\n" + body
		}
		pages = append(pages, document.Page{
			Number: i,
			Text:   "Đất Rừng Phương Nam\n" + body + fmt.Sprintf("\n%d", i),
		})
	}
	pages[3].Text += "�"

	p := newTestPipeline(t, testConfig(t, "vi"), pages)
	ins, err := p.Inspect(context.Background(), "book.pdf", 4)
	require.NoError(t, err)

	assert.Equal(t, 8, ins.TotalPages)
	assert.Equal(t, 8, ins.DeclaredPages)
	assert.Equal(t, 1, ins.Headings)
	require.Len(t, ins.Pages, 4)
	assert.Equal(t, []string{"CHƯƠNG II"}, ins.Pages[1].Headings)
	assert.Equal(t, "Đất Rừng Phương Nam", ins.Pages[0].FirstLine)
	assert.Equal(t, "1", ins.Pages[0].LastLine)
	assert.Equal(t, 1, ins.Pages[3].Garbled)
	assert.Positive(t, ins.Pages[0].ScriptChars)
	assert.Equal(t, []string{"Đất Rừng Phương Nam"}, ins.RunningHeaders)
}

func TestInspectDefaultsPageCount(t *testing.T) {
	pages := make([]document.Page, 10)
	for i := range pages {
		pages[i] = document.Page{Number: i + 1, Text: "trang"}
	}
	ins, err := newTestPipeline(t, testConfig(t, "vi"), pages).Inspect(context.Background(), "book.pdf", 0)
	require.NoError(t, err)
	assert.Len(t, ins.Pages, DefaultInspectPages)
}

func TestInspectDeclaredPageCount(t *testing.T) {
	pages := []document.Page{{Number: 1, Text: "trang một"}, {Number: 2, Text: "trang hai"}}
	p := newTestPipeline(t, testConfig(t, "vi"), pages)

	var counted []string
	p.PageCount = func(path string) (int, error) {
		counted = append(counted, path)
		return 3, nil
	}
	ins, err := p.Inspect(context.Background(), "book.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, ins.TotalPages)
	assert.Equal(t, 3, ins.DeclaredPages)

	// 非 PDF 源文件不读取声明页数
	ins, err = p.Inspect(context.Background(), "book.txt", 0)
	require.NoError(t, err)
	assert.Zero(t, ins.DeclaredPages)
	assert.Equal(t, []string{"book.pdf"}, counted)

	p.PageCount = func(path string) (int, error) { return 0, errors.New("broken xref") }
	ins, err = p.Inspect(context.Background(), "book.pdf", 0)
	require.NoError(t, err)
	assert.Zero(t, ins.DeclaredPages)
}
