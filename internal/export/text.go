package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webcrawl/internal/model"
)

const (
	// textURLPrefix starts every record of the text format.
	textURLPrefix = "URL: "

	// textSeparator ends the address line and the content of a record.
	textSeparator = "\n\n"
)

// TextWriter writes each page as "URL: <address>", a blank line, the
// content and another blank line, in store order.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs every page of the report.
func (w *TextWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, page := range report.Pages {
		n, err := io.WriteString(w.output, textURLPrefix+page.URL+textSeparator+page.Content+textSeparator)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadText parses the text format back into pages holding URL and Content.
//
// A record ends where the next one starts, at a blank line followed by
// "URL: ". Content that itself contains that sequence cannot be told apart
// from a record boundary; use the JSON or SQLite format when it may.
func ReadText(r io.Reader) ([]*model.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text export: %w", err)
	}

	text := string(data)
	if text == "" {
		return []*model.Page{}, nil
	}

	rest, ok := strings.CutPrefix(text, textURLPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedText, textURLPrefix)
	}

	chunks := strings.Split(rest, textSeparator+textURLPrefix)
	pages := make([]*model.Page, 0, len(chunks))
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			chunk = strings.TrimSuffix(chunk, textSeparator)
		}

		addr, content, found := strings.Cut(chunk, textSeparator)
		if !found {
			if strings.Contains(addr, "\n") {
				return nil, fmt.Errorf("%w: record %d has no blank line after the address", ErrMalformedText, i+1)
			}
			// An address line with nothing after it.
			content = ""
		}
		pages = append(pages, &model.Page{URL: addr, Content: content})
	}

	return pages, nil
}
