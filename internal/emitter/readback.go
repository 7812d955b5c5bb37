package emitter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ChapterFile 从已有章节文件中读回的内容
type ChapterFile struct {
	Path  string
	Title string
	Body  string
	// Meta 文件开头的 YAML 元数据，没有时为空
	Meta map[string]interface{}
}

var markdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ReadChapterFile 读取一个章节文件，取出一级标题和标题之后的正文
func ReadChapterFile(path string) (*ChapterFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chapter file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return parseMarkdown(path, src), nil
	default:
		return parsePlain(path, src), nil
	}
}

func parseMarkdown(path string, src []byte) *ChapterFile {
	ctx := parser.NewContext()
	doc := markdown.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	cf := &ChapterFile{Path: path, Meta: meta.Get(ctx)}
	if cf.Meta == nil {
		cf.Meta = map[string]interface{}{}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 1 {
			continue
		}
		cf.Title = inlineText(heading, src)
		if lines := heading.Lines(); lines.Len() > 0 {
			stop := lines.At(lines.Len() - 1).Stop
			cf.Body = strings.TrimSpace(string(src[stop:]))
		}
		return cf
	}

	// 没有一级标题时整篇都是正文
	cf.Body = strings.TrimSpace(string(src[bodyOffset(src):]))
	return cf
}

// bodyOffset 跳过开头的 YAML 元数据
func bodyOffset(src []byte) int {
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return 0
	}
	end := bytes.Index(src[4:], []byte("\n---\n"))
	if end < 0 {
		return 0
	}
	return 4 + end + len("\n---\n")
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// parsePlain 纯文本章节：第一行是标题
func parsePlain(path string, src []byte) *ChapterFile {
	content := string(src[bodyOffset(src):])
	title, body, _ := strings.Cut(content, "\n")
	return &ChapterFile{
		Path:  path,
		Title: strings.TrimSpace(strings.TrimLeft(title, "# ")),
		Body:  strings.TrimSpace(body),
		Meta:  map[string]interface{}{},
	}
}

// LoadDir 按文件名顺序读取目录中所有 chapter-*<ext> 文件
func LoadDir(dir, ext string) ([]*ChapterFile, error) {
	if ext == "" {
		ext = ".md"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("chapters dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("chapters dir: %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*"+ext))
	if err != nil {
		return nil, fmt.Errorf("list chapter files: %w", err)
	}
	sort.Strings(paths)

	files := make([]*ChapterFile, 0, len(paths))
	for _, path := range paths {
		cf, err := ReadChapterFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, cf)
	}
	return files, nil
}
