package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/emitter"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/extract"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/chapters"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/document"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/formats"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/quality"
)

// Pipeline 串联抽取、切分、清理、输出和质量检查
type Pipeline struct {
	cfg     *config.Config
	profile *config.Profile
	matcher *chapters.HeadingMatcher
	script  quality.Script

	// Extract 读取源文件，测试时可以替换
	Extract func(ctx context.Context, path string) ([]document.Page, error)
	// PageCount 读取 PDF 声明的页数，供 inspect 与抽取结果对照
	PageCount func(path string) (int, error)
	// Clock 报告时间戳
	Clock func() time.Time

	logger *zap.Logger
}

// Analysis 一次切分的中间结果，不产生任何文件
type Analysis struct {
	Source         string
	Pages          []document.Page
	Document       *document.Document
	RunningHeaders []string
	Matches        []document.HeadingMatch
	Chapters       []document.Chapter
	Titles         []chapters.Title
}

// Result 完整运行的结果
type Result struct {
	*Analysis
	Files  []string
	Report *quality.Report
}

// New 根据配置创建流水线
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profile, err := cfg.ResolveProfile()
	if err != nil {
		return nil, err
	}
	matcher, err := chapters.NewHeadingMatcher(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to build heading matcher: %w", err)
	}
	script, err := quality.LookupScript(cfg.ScriptName(profile))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:     cfg,
		profile: profile,
		matcher: matcher,
		script:  script,
		Extract: func(ctx context.Context, path string) ([]document.Page, error) {
			return extract.Extract(ctx, path, logger)
		},
		PageCount: extract.PageCount,
		Clock:     time.Now,
		logger:    logger,
	}, nil
}

// Profile 返回生效的 profile
func (p *Pipeline) Profile() *config.Profile { return p.profile }

// Script 返回质量检查使用的目标文字
func (p *Pipeline) Script() quality.Script { return p.script }

// Analyze 抽取源文件并切分章节、组合标题
func (p *Pipeline) Analyze(ctx context.Context, input string) (*Analysis, error) {
	p.logger.Info("extracting source", zap.String("input", input), zap.String("profile", p.profile.Name))
	pages, err := p.Extract(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := &Analysis{Source: input, Pages: pages}
	if p.cfg.Cleanup.DetectRunningHeaders {
		opts := formats.DefaultDetectOptions()
		opts.Exclude = p.matcher.MatchString
		a.RunningHeaders = formats.DetectRunningHeaders(pages, opts)
		if len(a.RunningHeaders) > 0 {
			p.logger.Info("detected running headers", zap.Strings("headers", a.RunningHeaders))
		}
	}

	a.Document = document.New(pages, p.cfg.PageSeparator)
	p.logger.Info("extracted text",
		zap.Int("pages", a.Document.PageCount()),
		zap.Int("chars", a.Document.RuneCount()))

	a.Matches = p.matcher.FindAll(a.Document.Text())
	p.logger.Debug("heading candidates", zap.Int("count", len(a.Matches)))

	seg := chapters.NewSegmenter(p.profile.FrontMatterTitle, p.profile.FallbackTitle, p.logger)
	seg.FrontMatterMinChars = p.cfg.FrontMatterMinChars
	a.Chapters, err = seg.Segment(a.Document, a.Matches)
	if err != nil {
		return nil, fmt.Errorf("segmentation produced an invalid partition: %w", err)
	}

	composer := chapters.NewTitleComposer(p.matcher)
	composer.MaxExtraLines = p.cfg.Title.MaxExtraLines
	composer.MaxLineLen = p.cfg.Title.MaxLineLen
	composer.ProseMinLen = p.cfg.Title.ProseMinLen
	a.Titles = composer.ComposeAll(a.Document, a.Chapters)

	return a, nil
}

// DryRun 只做切分，不写任何文件
func (p *Pipeline) DryRun(ctx context.Context) (*Analysis, error) {
	return p.Analyze(ctx, p.cfg.Input)
}

// Run 完整运行：切分、清理、输出章节文件、评分并写入报告
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	a, err := p.Analyze(ctx, p.cfg.Input)
	if err != nil {
		return nil, err
	}

	normalizer, err := p.normalizer(a.RunningHeaders)
	if err != nil {
		return nil, err
	}
	cleaned, err := p.cleanAll(ctx, normalizer, a.Document, a.Chapters)
	if err != nil {
		return nil, err
	}

	out := make([]emitter.Chapter, len(a.Chapters))
	for i, ch := range a.Chapters {
		out[i] = emitter.Chapter{
			Index:       ch.Index,
			Title:       ch.Title,
			Body:        a.Titles[i].StripFrom(cleaned[i]),
			SourceStart: ch.ContentStart(),
			SourceEnd:   ch.End,
		}
	}

	em := emitter.New(emitter.Options{
		OutputDir:   p.cfg.OutputDir,
		Extension:   p.cfg.Extension,
		SlugMaxLen:  p.cfg.SlugMaxLen,
		FrontMatter: p.cfg.WriteFrontMatter,
	}, p.logger)
	files, err := em.Emit(ctx, out)
	if err != nil {
		return nil, err
	}

	scorer := p.scorer()
	report, err := scorer.ScoreDocument(a.Document, a.Chapters, cleaned)
	if err != nil {
		return nil, err
	}
	report.Profile = p.profile.Name
	report.Source = a.Source

	if p.cfg.ReportPath != "" {
		if err := report.WriteJSON(p.cfg.ReportPath); err != nil {
			return nil, fmt.Errorf("failed to write quality report: %w", err)
		}
		p.logger.Info("quality report written", zap.String("path", p.cfg.ReportPath))
	}

	return &Result{Analysis: a, Files: files, Report: report}, nil
}

// Validate 对已有的章节目录评分，不需要源文件
func (p *Pipeline) Validate(ctx context.Context, dir, reportPath string) (*quality.Report, error) {
	files, err := emitter.LoadDir(dir, p.cfg.Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", emitter.ErrNoChapters, dir)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputs := make([]quality.Input, len(files))
	for i, f := range files {
		inputs[i] = quality.Input{Index: i, Title: f.Title, Text: f.Body}
	}
	report := p.scorer().Score(inputs, -1)
	report.Profile = p.profile.Name
	report.Source = dir

	if reportPath != "" {
		if err := report.WriteJSON(reportPath); err != nil {
			return nil, fmt.Errorf("failed to write quality report: %w", err)
		}
	}
	return report, nil
}

func (p *Pipeline) normalizer(detected []string) (*formats.Normalizer, error) {
	headers := p.cfg.RunningHeaders(p.profile)
	headers = append(headers, detected...)
	n, err := formats.NewNormalizer(formats.NormalizerOptions{
		RunningHeaders: headers,
		HeaderPatterns: p.cfg.Cleanup.HeaderPatterns,
		FuzzyTolerance: p.cfg.Cleanup.FuzzyTolerance,
		HyphenJoin:     formats.HyphenJoin(p.cfg.HyphenJoin(p.profile)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}
	return n, nil
}

func (p *Pipeline) scorer() *quality.Scorer {
	th := quality.DefaultThresholds(p.script)
	th.MinChars = p.cfg.Quality.MinChars
	if p.cfg.Quality.MinScriptChars > 0 {
		th.MinScriptChars = p.cfg.Quality.MinScriptChars
	}
	if p.cfg.Quality.ShortFraction > 0 {
		th.ShortFraction = p.cfg.Quality.ShortFraction
	}
	s := quality.NewScorer(p.script, th, p.logger)
	s.Clock = p.Clock
	return s
}

// cleanAll 清理每个章节的正文，结果顺序与章节顺序一致
func (p *Pipeline) cleanAll(ctx context.Context, n *formats.Normalizer, doc *document.Document, chs []document.Chapter) ([]string, error) {
	cleaned := make([]string, len(chs))
	workers := p.cfg.Workers
	if workers <= 1 {
		for i, ch := range chs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			cleaned[i] = n.Clean(ch.Content(doc))
		}
		return cleaned, nil
	}

	var wg sync.WaitGroup
	// 限制并发数
	semaphore := make(chan struct{}, workers)
	for i, ch := range chs {
		wg.Add(1)
		go func(idx int, c document.Chapter) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}
			cleaned[idx] = n.Clean(c.Content(doc))
		}(i, ch)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cleaned, nil
}
