package export

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gatehouse-hq/keystone/pkg/audit"
)

// xlsxSheet is the worksheet entries land on.
const xlsxSheet = "Decisions"

// XLSXExporter exports audit entries as an Excel workbook for manual review.
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Export writes audit entries as an XLSX workbook to the provided writer.
func (e *XLSXExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return audit.NewExportError("xlsx", len(entries), err)
	}

	headers := []string{
		"Run ID",
		"Decided At",
		"Decision",
		"Rule",
		"Reason Codes",
		"Flags",
		"Model",
		"Policy Version",
		"Policy Hash",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(xlsxSheet, cell, h)
	}

	row := 2
	for _, entry := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(xlsxSheet, cell, v)
		}

		write(1, entry.RunID)
		if entry.DecidedAt.IsZero() {
			write(2, "")
		} else {
			write(2, entry.DecidedAt.Format(time.RFC3339))
		}
		write(3, entry.Decision)
		write(4, entry.RuleID)
		write(5, strings.Join(entry.ReasonCodes, ", "))
		write(6, strings.Join(entry.Flags, ", "))
		write(7, entry.Model)
		write(8, entry.PolicyVersion)
		write(9, entry.PolicyHash)
		write(10, entry.DurationMS)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(xlsxSheet, "A", "A", 34) // run id
	_ = f.SetColWidth(xlsxSheet, "B", "B", 22) // decided at
	_ = f.SetColWidth(xlsxSheet, "C", "C", 12) // decision
	_ = f.SetColWidth(xlsxSheet, "D", "D", 22) // rule
	_ = f.SetColWidth(xlsxSheet, "E", "F", 32) // codes, flags
	_ = f.SetColWidth(xlsxSheet, "I", "I", 40) // hash

	buf, err := f.WriteToBuffer()
	if err != nil {
		return audit.NewExportError("xlsx", len(entries), err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return audit.NewExportError("xlsx", len(entries), err)
	}
	return nil
}
