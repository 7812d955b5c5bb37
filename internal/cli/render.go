package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/nerdneilsfield/go-chapter-splitter/internal/config"
	"github.com/nerdneilsfield/go-chapter-splitter/internal/pipeline"
	"github.com/nerdneilsfield/go-chapter-splitter/pkg/quality"
)

// titleWidth 表格中标题列的显示宽度
const titleWidth = 45

// truncate 按显示宽度截断，中日文字符占两列
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

// printDryRun 输出检测到的章节
func printDryRun(w io.Writer, a *pipeline.Analysis) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(w, "Chapter detection summary")
	fmt.Fprintf(w, "Source: %s (%d pages)\n", a.Source, a.Document.PageCount())
	if len(a.RunningHeaders) > 0 {
		fmt.Fprintf(w, "Running headers: %s\n", strings.Join(a.RunningHeaders, " | "))
	}

	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Title", "Kind", "Chars"})
	total := 0
	for _, ch := range a.Chapters {
		chars := utf8.RuneCountInString(ch.Content(a.Document))
		total += chars
		tw.AppendRow(table.Row{fmt.Sprintf("%02d", ch.Index), truncate(ch.Title, titleWidth), string(ch.Kind), chars})
	}
	tw.AppendFooter(table.Row{"", "TOTAL", "", total})
	tw.Render()

	full := a.Document.RuneCount()
	coverage := 0.0
	if full > 0 {
		coverage = float64(total) / float64(full) * 100
	}
	fmt.Fprintf(w, "Chapters: %d  Full text: %d chars  Coverage: %.1f%%\n", len(a.Chapters), full, coverage)
}

// printRunSummary 输出写入的文件和质量报告
func printRunSummary(w io.Writer, res *pipeline.Result, cfg *config.Config) {
	title := color.New(color.FgGreen, color.Bold)
	title.Fprintf(w, "Wrote %d chapter file(s) to %s\n", len(res.Files), cfg.OutputDir)
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", filepath.Base(f))
	}
	printQualityReport(w, res.Report)
	if cfg.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", cfg.ReportPath)
	}
}

// printQualityReport 输出每章的质量结果和总体结论
func printQualityReport(w io.Writer, r *quality.Report) {
	title := color.New(color.FgMagenta, color.Bold)
	title.Fprintln(w, "Quality report")

	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Title", "Chars", "Script", "Garbled", "Status"})
	for _, c := range r.Chapters {
		status := color.GreenString("OK")
		if !c.Valid {
			status = color.RedString("%d issue(s)", len(c.Issues))
		}
		tw.AppendRow(table.Row{fmt.Sprintf("%02d", c.Index), truncate(c.Title, titleWidth), c.CharCount, c.ScriptCharCount, c.GarbledCount, status})
	}
	tw.Render()

	errorColor := color.New(color.FgRed)
	for _, c := range r.Chapters {
		for _, issue := range c.Issues {
			errorColor.Fprintf(w, "  [%02d] %s\n", c.Index, issue)
		}
	}

	s := r.Summary
	fmt.Fprintf(w, "Valid: %d/%d  Issues: %d  Characters: %d  Script characters: %d  Garbled: %d\n",
		s.ValidChapters, s.TotalChapters, s.TotalIssues, s.TotalCharacters, s.TotalScriptCharacters, s.TotalGarbled)
	if r.Coverage != nil {
		fmt.Fprintf(w, "Coverage: %.2f%% (%d of %d chars)\n", r.Coverage.CoveragePct, r.Coverage.ExtractedChars, r.Coverage.FullTextChars)
	}

	if r.AllValid() {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "PASS: all chapters valid")
	} else {
		color.New(color.FgYellow, color.Bold).Fprintf(w, "NEEDS REVIEW: %d chapter(s) failed validation\n", s.InvalidChapters)
	}
}

// printInspection 输出每页诊断信息
func printInspection(w io.Writer, ins *pipeline.Inspection) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "%s: %d pages, %d heading(s)\n", ins.Source, ins.TotalPages, ins.Headings)
	if ins.DeclaredPages > 0 && ins.DeclaredPages != ins.TotalPages {
		color.New(color.FgYellow).Fprintf(w, "PDF declares %d pages, %d extracted\n", ins.DeclaredPages, ins.TotalPages)
	}

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Page", "Chars", "Script", "Garbled", "Headings", "First line", "Last line"})
	for _, p := range ins.Pages {
		tw.AppendRow(table.Row{
			p.Number, p.Chars, p.ScriptChars, p.Garbled,
			strings.Join(p.Headings, ", "),
			truncate(p.FirstLine, 30),
			truncate(p.LastLine, 30),
		})
	}
	tw.Render()

	if len(ins.RunningHeaders) == 0 {
		fmt.Fprintln(w, "No running headers detected")
		return
	}
	fmt.Fprintln(w, "Running headers:")
	for _, h := range ins.RunningHeaders {
		fmt.Fprintf(w, "  %s\n", h)
	}
}

// printProfiles 输出内置 profile
func printProfiles(w io.Writer, profiles []*config.Profile) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Name", "Keywords", "Script", "Description"})
	for _, p := range profiles {
		tw.AppendRow(table.Row{p.Name, strings.Join(p.Keywords, ", "), p.Script, p.Description})
	}
	tw.Render()
}
