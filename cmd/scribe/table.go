package main

import (
	"iter"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/pkg/formatting"
)

func renderItems(all iter.Seq[items.Item]) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Size", "Report", "Export", "Detail"})

	for it := range all {
		tw.AppendRow(table.Row{
			it.Name,
			formatting.FormatBytes(it.Size, 1),
			it.Generation.Phase().String(),
			it.Export.Phase().String(),
			detail(it),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, WidthMax: 60},
	})
	return tw.Render()
}

func detail(it items.Item) string {
	if addr, ok := it.Export.Address(); ok {
		return addr
	}
	if reason, ok := it.Export.Reason(); ok {
		return "export: " + reason
	}
	if reason, ok := it.Generation.Reason(); ok {
		return reason
	}
	return ""
}
