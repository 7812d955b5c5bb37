package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/pipeline"
)

var (
	// validate 命令的标志
	chaptersDir    string
	validateScript string
	validateReport string

	// inspect 命令的标志
	inspectPages int

	// config init 命令的标志
	forceInit bool
)

// NewValidateCommand 创建 validate 命令
func NewValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Score an existing directory of chapter files",
		Long: `Score chapter files written by an earlier run (or by hand) without the source
document. Coverage is not reported because the full text is unknown.

Examples:
  # Validate the default output directory
  chapter-splitter validate

  # Validate a Japanese translation
  chapter-splitter validate --chapters-dir chapters-ja --script japanese --report ja.json`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	validateCmd.Flags().StringVar(&chaptersDir, "chapters-dir", "", "章节目录（默认使用配置中的 output_dir）")
	validateCmd.Flags().StringVar(&validateScript, "script", "", "目标文字 (vietnamese, japanese, latin)")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "把报告写入 JSON 文件")

	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, cfg, log, err := newPipeline(cmd, func(c *config.Config) {
		if validateScript != "" {
			c.Quality.Script = validateScript
		}
	})
	if log != nil {
		defer func() {
			_ = log.Sync()
		}()
	}
	if err != nil {
		return fatal(err)
	}

	dir := chaptersDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	report, err := p.Validate(cmd.Context(), dir, validateReport)
	if err != nil {
		return fatal(err)
	}

	printQualityReport(cmd.OutOrStdout(), report)
	if !report.AllValid() {
		return &ExitError{Code: ExitNeedsReview, Err: ErrNeedsReview}
	}
	return nil
}

// NewInspectCommand 创建 inspect 命令
func NewInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show per-page diagnostics of a source document",
		Long: `Print the first pages of a source document with heading hits, script and
garbled character counts and the first and last line of every page, plus the
running headers that would be removed. Useful for tuning a profile before
splitting.`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}

	inspectCmd.Flags().StringP("input", "i", config.NewDefaultConfig().Input, "源文件路径")
	inspectCmd.Flags().IntVar(&inspectPages, "pages", pipeline.DefaultInspectPages, "检查的页数")

	return inspectCmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, cfg, log, err := newPipeline(cmd, nil)
	if log != nil {
		defer func() {
			_ = log.Sync()
		}()
	}
	if err != nil {
		return fatal(err)
	}

	ins, err := p.Inspect(cmd.Context(), cfg.Input, inspectPages)
	if err != nil {
		return fatal(err)
	}
	printInspection(cmd.OutOrStdout(), ins)
	return nil
}

// NewConfigCommand 创建 config 命令
func NewConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Long: `Write every setting with its default value so it can be edited by hand.
Without a path the file goes to --config, or ~/.chapter-splitter.yaml.

Examples:
  chapter-splitter config init
  chapter-splitter config init ./chapter-splitter.yaml --profile en`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigInit,
	}
	initCmd.Flags().BoolVar(&forceInit, "force", false, "覆盖已存在的配置文件")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return fatal(err)
		}
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fatal(fmt.Errorf("config file already exists: %s (use --force to overwrite)", path))
	}

	cfg := config.NewDefaultConfig()
	if f := cmd.Flags().Lookup("profile"); f != nil && f.Changed {
		cfg.Profile = f.Value.String()
	}
	if _, err := cfg.ResolveProfile(); err != nil {
		return fatal(err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fatal(fmt.Errorf("failed to write config: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
	return nil
}

// NewProfilesCommand 创建 profiles 命令
func NewProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in heading profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var profiles []*config.Profile
			for _, name := range config.BuiltinProfileNames() {
				p, err := config.BuiltinProfile(name)
				if err != nil {
					return fatal(err)
				}
				profiles = append(profiles, p)
			}
			printProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

// NewVersionCommand 创建 version 命令
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chapter-splitter %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
