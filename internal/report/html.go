package report

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

// HTMLReporter formats listings as a standalone HTML page
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// Format formats the listing as HTML and writes to the writer
func (r *HTMLReporter) Format(l *Listing, writer io.Writer) error {
	if err := r.writeHeader(l, writer); err != nil {
		return err
	}
	if err := r.writeSummary(l, writer); err != nil {
		return err
	}
	if err := r.writeTable(l, writer); err != nil {
		return err
	}
	return r.writeFooter(writer)
}

// writeHeader writes the HTML document header with CSS
func (r *HTMLReporter) writeHeader(l *Listing, writer io.Writer) error {
	timestamp := time.Now().Format(time.RFC1123)
	if !l.Timestamp.IsZero() {
		timestamp = l.Timestamp.Format(time.RFC1123)
	}

	_, err := fmt.Fprintf(writer, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>inocensus: %s</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background: #f5f5f5; color: #333; }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header { background: #00878f; color: white; padding: 30px 0; margin-bottom: 30px; }
        header h1 { font-size: 2.5em; margin-bottom: 10px; }
        header .meta { opacity: 0.8; font-size: 0.9em; }
        .summary { background: white; border-radius: 8px; padding: 25px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .summary-stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; }
        .stat-card { background: #f8f9fa; padding: 20px; border-radius: 6px; border-left: 4px solid #00878f; }
        .stat-card .label { font-size: 0.85em; color: #7f8c8d; text-transform: uppercase; letter-spacing: 0.5px; margin-bottom: 8px; }
        .stat-card .value { font-size: 2em; font-weight: bold; color: #2c3e50; }
        table { width: 100%%; background: white; border-collapse: collapse; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        th, td { padding: 8px 15px; border-bottom: 1px solid #ecf0f1; text-align: left; }
        td.key { font-family: 'Courier New', monospace; font-size: 0.95em; }
        td.count { text-align: right; font-weight: bold; width: 120px; }
        .bar { height: 12px; background: #e67e22; border-radius: 3px; }
        footer { text-align: center; padding: 30px 0; color: #7f8c8d; font-size: 0.9em; }
    </style>
</head>
<body>
    <header>
        <div class="container">
            <h1>%s</h1>
            <div class="meta">Generated: %s</div>
        </div>
    </header>
    <div class="container">
`, html.EscapeString(string(l.Name)), html.EscapeString(string(l.Name)), timestamp)
	return err
}

// writeSummary writes the totals section
func (r *HTMLReporter) writeSummary(l *Listing, writer io.Writer) error {
	_, err := fmt.Fprintf(writer, `        <section class="summary">
            <div class="summary-stats">
                <div class="stat-card">
                    <div class="label">Repositories</div>
                    <div class="value">%d</div>
                </div>
                <div class="stat-card">
                    <div class="label">Files</div>
                    <div class="value">%d</div>
                </div>
                <div class="stat-card">
                    <div class="label">Distinct keys</div>
                    <div class="value">%d</div>
                </div>
            </div>
        </section>

`, l.Totals.Repos, l.Totals.Files, len(l.Entries))
	return err
}

// writeTable writes one row per entry with a bar scaled to the top count
func (r *HTMLReporter) writeTable(l *Listing, writer io.Writer) error {
	if _, err := io.WriteString(writer, `        <table>
            <tr><th>Name</th><th>Count</th><th></th></tr>
`); err != nil {
		return err
	}

	top := 0
	if len(l.Entries) > 0 {
		top = l.Entries[0].Count
	}
	for _, e := range l.Entries {
		width := 0.0
		if top > 0 {
			width = float64(e.Count) * 100 / float64(top)
		}
		_, err := fmt.Fprintf(writer, `            <tr><td class="key">%s</td><td class="count">%d</td><td><div class="bar" style="width: %.1f%%;"></div></td></tr>
`, html.EscapeString(e.Key), e.Count, width)
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(writer, "        </table>\n")
	return err
}

// writeFooter writes the HTML document footer
func (r *HTMLReporter) writeFooter(writer io.Writer) error {
	_, err := io.WriteString(writer, `        <footer>
            Generated by <strong>inocensus</strong>
        </footer>
    </div>
</body>
</html>
`)
	return err
}

// FormatString returns the listing as an HTML string
func (r *HTMLReporter) FormatString(l *Listing) (string, error) {
	var buf strings.Builder
	if err := r.Format(l, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Name returns the name of this reporter
func (r *HTMLReporter) Name() string {
	return "html"
}

// Extension returns the file extension
func (r *HTMLReporter) Extension() string {
	return "html"
}
