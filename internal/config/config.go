package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// TitleConfig 章节标题拼接参数
type TitleConfig struct {
	MaxExtraLines int `mapstructure:"max_extra_lines"` // 最多吸收的续行数
	MaxLineLen    int `mapstructure:"max_line_len"`    // 续行最大字符数
	ProseMinLen   int `mapstructure:"prose_min_len"`   // 超过该长度且小写开头的行视为正文
}

// CleanupConfig 正文清理参数
type CleanupConfig struct {
	RunningHeaders       []string `mapstructure:"running_headers"`        // 额外的页眉页脚文字
	HeaderPatterns       []string `mapstructure:"header_patterns"`        // 额外的页眉页脚正则（regexp2 语法）
	FuzzyTolerance       int      `mapstructure:"fuzzy_tolerance"`        // 页眉模糊匹配允许的编辑距离，0 表示只做精确匹配
	DetectRunningHeaders bool     `mapstructure:"detect_running_headers"` // 根据页面首尾行自动识别页眉页脚
	HyphenJoin           string   `mapstructure:"hyphen_join"`            // 覆盖 profile 的连字符策略
}

// QualityConfig 质量检查阈值，0 表示使用目标文字的默认值
type QualityConfig struct {
	Script         string  `mapstructure:"script"`
	MinChars       int     `mapstructure:"min_chars"`
	MinScriptChars int     `mapstructure:"min_script_chars"`
	ShortFraction  float64 `mapstructure:"short_fraction"`
}

// Config 保存章节切分工具的所有配置
type Config struct {
	Input         string `mapstructure:"input"`
	OutputDir     string `mapstructure:"output_dir"`
	ReportPath    string `mapstructure:"report_path"`
	Extension     string `mapstructure:"extension"`
	Profile       string `mapstructure:"profile"`
	ProfileFile   string `mapstructure:"profile_file"`
	PageSeparator string `mapstructure:"page_separator"`

	FrontMatterMinChars int  `mapstructure:"front_matter_min_chars"` // 首个标题前的文本超过该长度才输出为独立章节
	SlugMaxLen          int  `mapstructure:"slug_max_len"`
	WriteFrontMatter    bool `mapstructure:"front_matter"` // 在章节文件开头写入 YAML 元数据
	Workers             int  `mapstructure:"workers"`      // 并行清理章节的 goroutine 数

	Title   TitleConfig   `mapstructure:"title"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Quality QualityConfig `mapstructure:"quality"`

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"`
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWith(viper.New(), configPath)
}

// LoadConfigWith 使用给定的 viper 实例加载配置，命令行标志可以事先绑定到 v 上
func LoadConfigWith(v *viper.Viper, configPath string) (*Config, error) {
	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".chapter-splitter")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.SetEnvPrefix("CHAPTER_SPLITTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Input:               "source.pdf",
		OutputDir:           "chapters",
		ReportPath:          "quality-report.json",
		Extension:           ".md",
		Profile:             "vi",
		PageSeparator:       "\n",
		FrontMatterMinChars: 200,
		SlugMaxLen:          40,
		Workers:             1,
		Title: TitleConfig{
			MaxExtraLines: 2,
			MaxLineLen:    120,
			ProseMinLen:   60,
		},
		Cleanup: CleanupConfig{
			DetectRunningHeaders: true,
		},
		Quality: QualityConfig{
			MinChars: 100,
		},
	}
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("input", d.Input)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("report_path", d.ReportPath)
	v.SetDefault("extension", d.Extension)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("profile_file", "")
	v.SetDefault("page_separator", d.PageSeparator)
	v.SetDefault("front_matter_min_chars", d.FrontMatterMinChars)
	v.SetDefault("slug_max_len", d.SlugMaxLen)
	v.SetDefault("front_matter", false)
	v.SetDefault("workers", d.Workers)

	v.SetDefault("title.max_extra_lines", d.Title.MaxExtraLines)
	v.SetDefault("title.max_line_len", d.Title.MaxLineLen)
	v.SetDefault("title.prose_min_len", d.Title.ProseMinLen)

	v.SetDefault("cleanup.running_headers", []string{})
	v.SetDefault("cleanup.header_patterns", []string{})
	v.SetDefault("cleanup.fuzzy_tolerance", 0)
	v.SetDefault("cleanup.detect_running_headers", d.Cleanup.DetectRunningHeaders)
	v.SetDefault("cleanup.hyphen_join", "")

	v.SetDefault("quality.script", "")
	v.SetDefault("quality.min_chars", d.Quality.MinChars)
	v.SetDefault("quality.min_script_chars", 0)
	v.SetDefault("quality.short_fraction", 0.0)

	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Extension == "" || !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension must start with '.', got %q", c.Extension)
	}
	if c.FrontMatterMinChars < 0 {
		return fmt.Errorf("front_matter_min_chars must not be negative")
	}
	if c.SlugMaxLen < 0 {
		return fmt.Errorf("slug_max_len must not be negative")
	}
	if c.Title.MaxExtraLines < 0 || c.Title.MaxLineLen < 0 || c.Title.ProseMinLen < 0 {
		return fmt.Errorf("title limits must not be negative")
	}
	if c.Cleanup.FuzzyTolerance < 0 {
		return fmt.Errorf("cleanup.fuzzy_tolerance must not be negative")
	}
	switch c.Cleanup.HyphenJoin {
	case "", "space", "direct":
	default:
		return fmt.Errorf("cleanup.hyphen_join must be \"space\" or \"direct\", got %q", c.Cleanup.HyphenJoin)
	}
	if c.Quality.MinChars < 0 || c.Quality.MinScriptChars < 0 {
		return fmt.Errorf("quality thresholds must not be negative")
	}
	if c.Quality.ShortFraction < 0 || c.Quality.ShortFraction > 1 {
		return fmt.Errorf("quality.short_fraction must be within [0, 1], got %g", c.Quality.ShortFraction)
	}
	return nil
}

// ResolveProfile 返回配置指定的 profile，profile_file 优先
func (c *Config) ResolveProfile() (*Profile, error) {
	if c.ProfileFile != "" {
		return LoadProfileFile(c.ProfileFile)
	}
	return BuiltinProfile(c.Profile)
}

// HyphenJoin 返回生效的连字符策略
func (c *Config) HyphenJoin(p *Profile) string {
	if c.Cleanup.HyphenJoin != "" {
		return c.Cleanup.HyphenJoin
	}
	if p != nil && p.HyphenJoin != "" {
		return p.HyphenJoin
	}
	return "space"
}

// RunningHeaders 合并 profile 与配置中的页眉页脚文字
func (c *Config) RunningHeaders(p *Profile) []string {
	var headers []string
	if p != nil {
		headers = append(headers, p.RunningHeaders...)
	}
	return append(headers, c.Cleanup.RunningHeaders...)
}

// ScriptName 返回质量检查使用的目标文字
func (c *Config) ScriptName(p *Profile) string {
	if c.Quality.Script != "" {
		return c.Quality.Script
	}
	if p != nil && p.Script != "" {
		return p.Script
	}
	return "vietnamese"
}

// DefaultConfigPath 返回用户目录下的默认配置文件路径
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chapter-splitter.yaml"), nil
}

// SaveConfig 将配置保存到文件，configPath 为空时写入 DefaultConfigPath
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.MergeConfigMap(structToMap(config)); err != nil {
		return err
	}

	// 创建父目录（如果不存在）
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return v.WriteConfig()
}

// structToMap 将结构体转换为map
func structToMap(c *Config) map[string]interface{} {
	return map[string]interface{}{
		"input":                  c.Input,
		"output_dir":             c.OutputDir,
		"report_path":            c.ReportPath,
		"extension":              c.Extension,
		"profile":                c.Profile,
		"profile_file":           c.ProfileFile,
		"page_separator":         c.PageSeparator,
		"front_matter_min_chars": c.FrontMatterMinChars,
		"slug_max_len":           c.SlugMaxLen,
		"front_matter":           c.WriteFrontMatter,
		"workers":                c.Workers,
		"title": map[string]interface{}{
			"max_extra_lines": c.Title.MaxExtraLines,
			"max_line_len":    c.Title.MaxLineLen,
			"prose_min_len":   c.Title.ProseMinLen,
		},
		"cleanup": map[string]interface{}{
			"running_headers":        c.Cleanup.RunningHeaders,
			"header_patterns":        c.Cleanup.HeaderPatterns,
			"fuzzy_tolerance":        c.Cleanup.FuzzyTolerance,
			"detect_running_headers": c.Cleanup.DetectRunningHeaders,
			"hyphen_join":            c.Cleanup.HyphenJoin,
		},
		"quality": map[string]interface{}{
			"script":           c.Quality.Script,
			"min_chars":        c.Quality.MinChars,
			"min_script_chars": c.Quality.MinScriptChars,
			"short_fraction":   c.Quality.ShortFraction,
		},
		"debug":   c.Debug,
		"verbose": c.Verbose,
	}
}
