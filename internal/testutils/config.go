package testutils

import (
	"path/filepath"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
)

// CreateTestConfig 创建通用测试配置，所有输出都落在 dir 中
func CreateTestConfig(dir, profile string) *config.Config {
	cfg := config.NewDefaultConfig()

	// 基础配置
	cfg.Profile = profile
	cfg.Input = filepath.Join(dir, "source.pdf")
	cfg.OutputDir = filepath.Join(dir, "chapters")
	cfg.ReportPath = filepath.Join(dir, "quality-report.json")

	// 清理配置
	cfg.Cleanup.DetectRunningHeaders = true
	cfg.Workers = 1

	return cfg
}
