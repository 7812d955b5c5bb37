package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// 预定义错误
var (
	// ErrSourceNotFound 源文件不存在
	ErrSourceNotFound = errors.New("source not found")

	// ErrExtractionFailed 文本抽取失败
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrUnsupportedFormat 不支持的文件格式
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// ExtractError 抽取错误，Kind 是上面的预定义错误之一
type ExtractError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

// Error 实现error接口
func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

// Unwrap 返回原因错误
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 可以匹配错误类别
func (e *ExtractError) Is(target error) bool {
	return target == e.Kind
}

func newError(op, path string, kind, err error) *ExtractError {
	return &ExtractError{Op: op, Path: path, Kind: kind, Err: err}
}

// Extractor 从源文件中按顺序抽取每页文本
type Extractor interface {
	Extract(ctx context.Context, path string) ([]document.Page, error)
}

// Format 返回路径对应的源文档格式
func Format(path string) document.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return document.FormatPDF
	case ".md", ".markdown":
		return document.FormatMarkdown
	case ".txt", ".text":
		return document.FormatText
	case ".docx":
		return document.FormatDOCX
	default:
		return document.FormatUnknown
	}
}

// ForFile 根据扩展名返回对应的抽取器
func ForFile(path string, logger *zap.Logger) (Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch Format(path) {
	case document.FormatPDF:
		return &PDFExtractor{logger: logger}, nil
	case document.FormatMarkdown, document.FormatText:
		return &TextExtractor{logger: logger}, nil
	case document.FormatDOCX:
		return &DocxExtractor{logger: logger}, nil
	default:
		return nil, newError("open", path, ErrUnsupportedFormat, fmt.Errorf("extension %q", filepath.Ext(path)))
	}
}

// Extract 检查源文件并用对应的抽取器读取
func Extract(ctx context.Context, path string, logger *zap.Logger) ([]document.Page, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}
	ex, err := ForFile(path, logger)
	if err != nil {
		return nil, err
	}
	return ex.Extract(ctx, path)
}

// checkSource 确认源文件存在且是普通文件
func checkSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newError("stat", path, ErrSourceNotFound, nil)
		}
		return newError("stat", path, ErrExtractionFailed, err)
	}
	if info.IsDir() {
		return newError("stat", path, ErrSourceNotFound, fmt.Errorf("is a directory"))
	}
	return nil
}
