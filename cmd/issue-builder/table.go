// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// writeTable renders rows as a boxed table when w is a terminal and as CSV
// otherwise, so piped output stays machine-readable.
func writeTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) error {
	tw := newTable(headers, rows, aligns)
	if tw == nil {
		return nil
	}
	var out string
	if isTerminal(w) {
		out = tw.Render()
	} else {
		out = tw.RenderCSV()
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	tw := newTable(headers, rows, aligns)
	if tw == nil {
		return ""
	}
	return tw.Render()
}

func newTable(headers []string, rows [][]string, aligns []columnAlignment) table.Writer {
	columns := len(headers)
	if columns == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    48,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
