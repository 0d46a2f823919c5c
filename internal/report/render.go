package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sjsage522/cruisewatch/internal/cruise"
)

// Format selects an output renderer
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatMarkdown, FormatHTML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, markdown, html or json)", s)
	}
}

// RenderOptions controls terminal output
type RenderOptions struct {
	Format Format
	// Color enables ANSI colours in table output
	Color bool
}

var statusColors = map[CellStatus]text.Colors{
	StatusCheaper: {text.FgGreen},
	StatusPricier: {text.FgRed},
	StatusMuted:   {text.Faint},
	StatusMissing: {text.Faint},
}

// Render writes the report to w
func Render(w io.Writer, r *Report, opts RenderOptions) error {
	if opts.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if notice := stateNotice(r); notice != "" {
		_, err := fmt.Fprintln(w, notice)
		return err
	}

	t := newTable(w, r, opts)
	switch opts.Format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatHTML:
		t.RenderHTML()
	default:
		t.Render()
	}

	if len(r.Failures) > 0 && opts.Format != FormatHTML {
		_, err := fmt.Fprintf(w, "%d itineraries or sailings were skipped; see the log for details\n", len(r.Failures))
		return err
	}
	return nil
}

func stateNotice(r *Report) string {
	switch r.State {
	case cruise.StateEmpty:
		return "No cruises found."
	case cruise.StateFailed:
		return fmt.Sprintf("No cruise data could be loaded (%d failures).", len(r.Failures))
	}
	return ""
}

func newTable(w io.Writer, r *Report, opts RenderOptions) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	isHTML := opts.Format == FormatHTML
	if isHTML {
		t.Style().HTML.EscapeText = false
	}

	header := table.Row{"Cruise", "From", "Sail Date"}
	for _, col := range r.Columns {
		if isHTML {
			col = html.EscapeString(col)
		}
		header = append(header, col)
	}
	t.AppendHeader(header)

	var configs []table.ColumnConfig
	for i := range r.Columns {
		configs = append(configs, table.ColumnConfig{Number: 4 + i, Align: text.AlignCenter})
	}
	t.SetColumnConfigs(configs)

	for _, row := range r.Rows {
		cruiseName, from := "", ""
		if row.GroupStart {
			cruiseName, from = row.Cruise, row.From
			if isHTML {
				cruiseName = fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(row.Link), html.EscapeString(row.Cruise))
				from = html.EscapeString(row.From)
			}
		}

		tr := table.Row{cruiseName, from, styleDate(row, opts)}
		for _, cell := range row.Cells {
			tr = append(tr, styleCell(cell, row.Booked, opts))
		}
		t.AppendRow(tr)
	}

	if r.HasBooked() && len(r.Columns) > 0 {
		footer := table.Row{"", "", "Total difference", FormatPrice(r.TotalDiff)}
		t.AppendFooter(footer)
	}

	return t
}

func styleDate(row Row, opts RenderOptions) string {
	switch {
	case opts.Format == FormatHTML:
		if row.Booked {
			return "<b>" + html.EscapeString(row.SailDate) + "</b>"
		}
		return html.EscapeString(row.SailDate)
	case !opts.Color || opts.Format != FormatTable:
		return row.SailDate
	case row.Booked:
		return text.Colors{text.Bold}.Sprint(row.SailDate)
	default:
		return text.Colors{text.Faint}.Sprint(row.SailDate)
	}
}

func styleCell(cell Cell, booked bool, opts RenderOptions) string {
	switch {
	case opts.Format == FormatHTML:
		return fmt.Sprintf(`<span class="%s" title="%s">%s</span>`, cell.Status, FormatPrice(cell.Diff), html.EscapeString(cell.Text))
	case !opts.Color || opts.Format != FormatTable:
		return cell.Text
	}

	colors := statusColors[cell.Status]
	if booked {
		colors = append(text.Colors{text.Bold}, colors...)
	}
	if len(colors) == 0 {
		return cell.Text
	}
	return colors.Sprint(cell.Text)
}
