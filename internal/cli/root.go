package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/logger"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/pipeline"
)

// 退出码
const (
	ExitOK          = 0
	ExitFatal       = 1
	ExitNeedsReview = 2
)

// ErrNeedsReview 运行完成但有章节没有通过质量检查
var ErrNeedsReview = errors.New("one or more chapters need review")

// ExitError 携带进程退出码的错误
type ExitError struct {
	Code int
	Err  error
}

// Error 实现error接口
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap 返回原因错误
func (e *ExitError) Unwrap() error {
	return e.Err
}

func fatal(err error) error {
	return &ExitError{Code: ExitFatal, Err: err}
}

// ExitCode 返回错误对应的退出码
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}

var (
	// 命令行标志变量
	cfgFile string
	dryRun  bool
)

// 绑定到配置项的标志，键为配置项，值为标志名
var boundFlags = map[string]string{
	"input":        "input",
	"output_dir":   "output-dir",
	"report_path":  "report",
	"profile":      "profile",
	"profile_file": "profile-file",
	"workers":      "workers",
	"front_matter": "front-matter",
	"extension":    "ext",
	"verbose":      "verbose",
	"debug":        "debug",
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	defaults := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "chapter-splitter",
		Short: "Split a book into per-chapter Markdown files and score the extraction",
		Long: `chapter-splitter extracts the text of a long-form document (PDF, text,
Markdown or DOCX), detects chapter headings, cleans PDF artefacts and writes
one Markdown file per chapter together with a JSON quality report.

Exit codes:
  0  all chapters written and valid
  1  fatal error (missing input, extraction failure, write failure, bad config)
  2  chapters written but at least one needs review`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSplit,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().String("profile", defaults.Profile, "标题约定 profile (见 profiles 子命令)")
	rootCmd.PersistentFlags().String("profile-file", "", "自定义 profile 的 TOML 文件")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "显示调试日志")
	rootCmd.PersistentFlags().Bool("debug", false, "输出 JSON 格式的调试日志")
	rootCmd.PersistentFlags().String("ext", defaults.Extension, "章节文件扩展名")

	rootCmd.Flags().StringP("input", "i", defaults.Input, "源文件路径 (pdf, txt, md, docx)")
	rootCmd.Flags().StringP("output-dir", "o", defaults.OutputDir, "章节输出目录")
	rootCmd.Flags().String("report", defaults.ReportPath, "质量报告 JSON 路径")
	rootCmd.Flags().Int("workers", defaults.Workers, "并行清理章节的 goroutine 数")
	rootCmd.Flags().Bool("front-matter", false, "在章节文件开头写入 YAML 元数据")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只显示检测到的章节，不写入任何文件")

	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewProfilesCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand(version, commit, buildDate))

	return rootCmd
}

// loadConfig 合并配置文件、环境变量与命令行标志
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for key, name := range boundFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, err
		}
	}
	return config.LoadConfigWith(v, cfgFile)
}

// newPipeline 加载配置并创建流水线，返回的日志需要调用方 Sync
func newPipeline(cmd *cobra.Command, adjust func(*config.Config)) (*pipeline.Pipeline, *config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}

	// --debug 输出 JSON 格式的结构化日志
	log := logger.NewConsoleLogger(cfg.Verbose)
	if cfg.Debug {
		log = logger.NewLogger(true)
	}
	p, err := pipeline.New(cfg, log)
	if err != nil {
		return nil, nil, log, err
	}
	return p, cfg, log, nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	p, cfg, log, err := newPipeline(cmd, nil)
	if log != nil {
		defer func() {
			_ = log.Sync()
		}()
	}
	if err != nil {
		return fatal(err)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		a, err := p.DryRun(cmd.Context())
		if err != nil {
			return fatal(err)
		}
		printDryRun(out, a)
		return nil
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		return fatal(err)
	}
	printRunSummary(out, res, cfg)

	if !res.Report.AllValid() {
		return &ExitError{Code: ExitNeedsReview, Err: ErrNeedsReview}
	}
	return nil
}
