package export

import (
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/webcrawl/internal/model"
)

// MarkdownWriter outputs a run summary and a table of pages in Markdown.
// Page content is not included; use the text or JSON format for that.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStats(md, report)
	w.writeAuthorities(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Pages Stored", strconv.Itoa(len(report.Pages))},
			{"Total Size", strconv.Itoa(report.TotalBytes()) + " bytes"},
		},
	})
	md.PlainText("")

	md.H2("Seeds")
	md.PlainText("")
	md.BulletList(report.Seeds...)
	md.PlainText("")
}

// writeStats writes the traversal counters.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, report *model.CrawlReport) {
	s := report.Stats

	md.H2("Traversal")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Fetched", strconv.Itoa(s.Fetched)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Empty response", strconv.Itoa(s.Empty)},
			{"Disallowed by robots.txt", strconv.Itoa(s.RobotsDenied)},
			{"Beyond max depth", strconv.Itoa(s.DepthExceeded)},
			{"Already visited", strconv.Itoa(s.Duplicates)},
			{"Out of scope", strconv.Itoa(s.OutOfScope)},
		},
	})
	md.PlainText("")

	if s.Failed > 0 {
		md.Warningf("%d page(s) could not be fetched. Run with --verbose for details.", s.Failed)
		md.PlainText("")
	}
}

// writeAuthorities writes a mermaid pie chart of pages per authority.
func (w *MarkdownWriter) writeAuthorities(md *markdown.Markdown, report *model.CrawlReport) {
	counts := report.PagesByAuthority()
	if len(counts) == 0 {
		return
	}

	authorities := make([]string, 0, len(counts))
	for authority := range counts {
		authorities = append(authorities, authority)
	}
	slices.Sort(authorities)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Authority"),
		piechart.WithShowData(true),
	)
	for _, authority := range authorities {
		chart.LabelAndIntValue(authority, uint64(counts[authority])) //nolint:gosec // counts are never negative
	}

	md.H2("Authorities")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes one table row per stored page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.Note("No pages were stored.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		title := p.Title
		if title == "" {
			title = "-"
		}
		size := strconv.Itoa(p.Size())
		if p.Truncated {
			size += " (truncated)"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			p.URL,
			strconv.Itoa(p.Depth),
			strconv.Itoa(p.StatusCode),
			truncateString(title, 60),
			size,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Depth", "Status", "Title", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webcrawl](https://github.com/nao1215/webcrawl)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
