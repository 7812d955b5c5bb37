package emitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// 预定义错误
var (
	// ErrNoChapters 没有可写入的章节
	ErrNoChapters = errors.New("no chapters to write")

	// ErrWriteFailed 写入章节文件失败
	ErrWriteFailed = errors.New("failed to write chapter")
)

// FilePrefix 章节文件名前缀，写入前会删除目录中同前缀同扩展名的旧文件
const FilePrefix = "chapter-"

// DefaultSlugMaxLen 文件名中 slug 的最大字符数
const DefaultSlugMaxLen = 40

// Chapter 待写入的章节
type Chapter struct {
	Index       int
	Title       string
	Body        string
	SourceStart int
	SourceEnd   int
}

// FrontMatter 章节文件开头的 YAML 元数据
type FrontMatter struct {
	Index       int    `yaml:"index"`
	Title       string `yaml:"title"`
	SourceStart int    `yaml:"source_start"`
	SourceEnd   int    `yaml:"source_end"`
}

// Options 输出选项
type Options struct {
	OutputDir   string
	Extension   string
	SlugMaxLen  int
	FrontMatter bool
}

// Emitter 把章节写成独立的 Markdown 文件
type Emitter struct {
	opts   Options
	logger *zap.Logger
}

// New 创建章节输出器
func New(opts Options, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Extension == "" {
		opts.Extension = ".md"
	}
	if opts.SlugMaxLen == 0 {
		opts.SlugMaxLen = DefaultSlugMaxLen
	}
	return &Emitter{opts: opts, logger: logger}
}

// Emit 清理旧文件后按顺序写入所有章节，返回写入的文件路径。
// 任何写入错误都会中止输出。
func (e *Emitter) Emit(ctx context.Context, chapters []Chapter) ([]string, error) {
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrWriteFailed, err)
	}

	removed, err := e.RemoveStale()
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		e.logger.Info("removed stale chapter files",
			zap.String("dir", e.opts.OutputDir),
			zap.Int("count", removed))
	}

	e.logger.Info("writing chapters",
		zap.Int("count", len(chapters)),
		zap.String("dir", e.opts.OutputDir))

	paths := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		path := filepath.Join(e.opts.OutputDir, FileName(ch.Index, ch.Title, e.opts.Extension, e.opts.SlugMaxLen))
		content, err := Render(ch, e.opts.FrontMatter)
		if err != nil {
			return paths, fmt.Errorf("%w %d: %v", ErrWriteFailed, ch.Index, err)
		}
		if err := writeAtomic(path, []byte(content)); err != nil {
			return paths, fmt.Errorf("%w %s: %v", ErrWriteFailed, path, err)
		}
		paths = append(paths, path)

		e.logger.Debug("written chapter",
			zap.String("file", filepath.Base(path)),
			zap.Int("chars", len([]rune(ch.Body))))
	}

	e.logger.Info("all chapter files written", zap.Int("count", len(paths)))
	return paths, nil
}

// RemoveStale 删除输出目录中所有 chapter-*<ext> 文件以及中断写入残留的临时文件，返回删除数量
func (e *Emitter) RemoveStale() (int, error) {
	var stale []string
	for _, pattern := range []string{
		FilePrefix + "*" + e.opts.Extension,
		FilePrefix + "*" + e.opts.Extension + tempSuffix,
	} {
		matches, err := filepath.Glob(filepath.Join(e.opts.OutputDir, pattern))
		if err != nil {
			return 0, fmt.Errorf("%w: list stale files: %v", ErrWriteFailed, err)
		}
		stale = append(stale, matches...)
	}
	removed := 0
	for _, path := range stale {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("%w: remove %s: %v", ErrWriteFailed, path, err)
		}
		removed++
	}
	return removed, nil
}

// FileName 返回章节文件名，如 chapter-03-chuong-3.md
func FileName(index int, title, ext string, slugMaxLen int) string {
	if slug := Slug(title, slugMaxLen); slug != "" {
		return fmt.Sprintf("%s%02d-%s%s", FilePrefix, index, slug, ext)
	}
	return fmt.Sprintf("%s%02d%s", FilePrefix, index, ext)
}

// Slug 生成文件名安全的 slug：小写，去掉标点，空白换成连字符，截断到 maxLen 个字符
func Slug(title string, maxLen int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")

	if maxLen > 0 {
		if runes := []rune(slug); len(runes) > maxLen {
			slug = string(runes[:maxLen])
		}
	}
	return strings.TrimRight(slug, "-")
}

// Render 生成章节文件内容：可选的 YAML 元数据，然后是一级标题和正文
func Render(ch Chapter, frontMatter bool) (string, error) {
	var b strings.Builder
	if frontMatter {
		data, err := yaml.Marshal(FrontMatter{
			Index:       ch.Index,
			Title:       ch.Title,
			SourceStart: ch.SourceStart,
			SourceEnd:   ch.SourceEnd,
		})
		if err != nil {
			return "", fmt.Errorf("marshal front matter: %w", err)
		}
		b.WriteString("---\n")
		b.Write(data)
		b.WriteString("---\n")
	}
	fmt.Fprintf(&b, "# %s\n\n%s\n", ch.Title, ch.Body)
	return b.String(), nil
}

// tempSuffix 原子写入使用的临时文件后缀
const tempSuffix = ".tmp"

// writeAtomic 先写临时文件再重命名
func writeAtomic(path string, data []byte) error {
	tempFile := path + tempSuffix
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}
