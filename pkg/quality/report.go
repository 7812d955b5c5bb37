package quality

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Result 单个章节的质量结果
type Result struct {
	Index           int      `json:"index"`
	Title           string   `json:"title"`
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues"`
	CharCount       int      `json:"char_count"`
	ScriptCharCount int      `json:"script_char_count"`
	GarbledCount    int      `json:"garbled_count"`
}

// Summary 汇总统计
type Summary struct {
	TotalChapters         int `json:"total_chapters"`
	ValidChapters         int `json:"valid_chapters"`
	InvalidChapters       int `json:"invalid_chapters"`
	TotalIssues           int `json:"total_issues"`
	TotalCharacters       int `json:"total_characters"`
	TotalScriptCharacters int `json:"total_script_characters"`
	TotalGarbled          int `json:"total_garbled"`
}

// Coverage 章节字符数占全文的比例，仅用于诊断
type Coverage struct {
	ExtractedChars int     `json:"extracted_chars"`
	FullTextChars  int     `json:"full_text_chars"`
	CoveragePct    float64 `json:"coverage_pct"`
}

// Report 质量报告
type Report struct {
	ScriptVersion string    `json:"script_version"`
	Timestamp     string    `json:"timestamp"`
	Profile       string    `json:"profile,omitempty"`
	Script        string    `json:"script"`
	Source        string    `json:"source,omitempty"`
	Chapters      []Result  `json:"chapters"`
	Summary       Summary   `json:"summary"`
	Coverage      *Coverage `json:"coverage,omitempty"`
}

// AllValid 所有章节都通过检查时返回 true
func (r *Report) AllValid() bool {
	return r.Summary.InvalidChapters == 0
}

// MarshalIndent 序列化报告，缩进两个空格，保留非 ASCII 字符，末尾带换行
func (r *Report) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to marshal quality report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON 原子写入报告文件
func (r *Report) WriteJSON(path string) error {
	data, err := r.MarshalIndent()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	// 原子写入
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	return nil
}

// ReadReport 读取已写入的报告
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quality report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse quality report: %w", err)
	}
	return &r, nil
}
