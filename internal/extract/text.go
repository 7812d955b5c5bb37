package extract

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
)

// PageBreak 纯文本中的分页符
const PageBreak = "\f"

// TextExtractor 读取纯文本和 Markdown，按分页符拆分页面
type TextExtractor struct {
	logger *zap.Logger
}

// NewTextExtractor 创建文本抽取器
func NewTextExtractor(logger *zap.Logger) *TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextExtractor{logger: logger}
}

// Extract 读取文件，识别编码后按分页符拆分
func (t *TextExtractor) Extract(ctx context.Context, path string) ([]document.Page, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError("read", path, ErrExtractionFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, name := DecodeText(data)
	t.logger.Debug("decoded text source", zap.String("path", path), zap.String("encoding", name))

	parts := strings.Split(text, PageBreak)
	pages := make([]document.Page, len(parts))
	for i, part := range parts {
		pages[i] = document.Page{Number: i + 1, Text: part}
	}
	return pages, nil
}

type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

// 依次尝试的编码，日文编码在单字节编码之前
var fallbackEncodings = []namedEncoding{
	{"shift_jis", japanese.ShiftJIS},
	{"euc-jp", japanese.EUCJP},
	{"windows-1258", charmap.Windows1258},
	{"windows-1252", charmap.Windows1252},
}

// DecodeText 检测并转换文本编码，返回 UTF-8 文本和识别出的编码名
func DecodeText(data []byte) (string, string) {
	// 如果是空数据，直接返回
	if len(data) == 0 {
		return "", "utf-8"
	}

	// 检查 BOM
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), "utf-8-bom"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		if res, ok := decodeWith(xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return res, "utf-16le"
		}
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		if res, ok := decodeWith(xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return res, "utf-16be"
		}
	}

	// 检查 UTF-8
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	// 尝试常见编码
	for _, ne := range fallbackEncodings {
		if res, ok := decodeWith(ne.enc, data); ok && isReasonableText(res) {
			return res, ne.name
		}
	}

	// 如果都失败了，按 UTF-8 处理，无效字节会在质量检查中计为乱码
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), "unknown"
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil || !utf8.Valid(res) {
		return "", false
	}
	return string(res), true
}

// isReasonableText 检查文本是否合理：没有替换字符，且超过 90% 是可打印字符
func isReasonableText(text string) bool {
	if len(text) == 0 {
		return false
	}
	if strings.ContainsRune(text, utf8.RuneError) {
		return false
	}

	printableCount := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printableCount++
		}
	}
	return float64(printableCount)/float64(total) > 0.9
}
