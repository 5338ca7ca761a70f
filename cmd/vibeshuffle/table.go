package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// pathWidth bounds path cells. Library paths are mostly prefix, so the tail
// (album and file name) is what survives truncation.
const pathWidth = 56

// column describes one table column.
type column struct {
	title   string
	numeric bool // right aligned
	path    bool // keep the tail when too wide
}

func col(title string) column     { return column{title: title} }
func numCol(title string) column  { return column{title: title, numeric: true} }
func pathCol(title string) column { return column{title: title, path: true} }

// renderTable draws rows under columns; short rows are padded with blanks.
// A non-empty caption is printed under the table.
func renderTable(columns []column, rows [][]string, caption string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c.title
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		cfg := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.numeric {
			cfg.Align = text.AlignRight
		}
		if c.path {
			cfg.WidthMax = pathWidth
			cfg.WidthMaxEnforcer = trimPathHead
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)
	if caption != "" {
		tw.SetCaption("%s", caption)
	}

	return tw.Render()
}

// trimPathHead shortens s to maxLen runes by dropping leading characters,
// preferring to cut at a path separator.
func trimPathHead(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 1 || len(runes) <= maxLen {
		return s
	}
	tail := string(runes[len(runes)-(maxLen-1):])
	if i := strings.IndexRune(tail, '/'); i >= 0 && i < len(tail)-1 {
		tail = tail[i:]
	}
	return "…" + tail
}
