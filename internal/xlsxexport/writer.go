// Package xlsxexport renders a batch and its expense records as an Excel
// workbook. The CSV export covers spreadsheet-agnostic tooling; this one
// exists for finance teams that want typed cells and a summary sheet.
package xlsxexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"expenso/internal/domain"
)

const (
	summarySheet = "Summary"
	recordsSheet = "Records"
)

var recordHeader = []interface{}{
	"Person Name", "Person Ref", "Primary Amount", "Receipt Amount",
	"Difference", "Status", "Issues",
}

// WriteBatch writes a two-sheet workbook (batch summary plus one row per
// record) to w.
func WriteBatch(w io.Writer, batch *domain.Batch, records []domain.ExpenseRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSummary(f, batch); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeRecords(f, records); err != nil {
		return fmt.Errorf("records sheet: %w", err)
	}

	// excelize creates "Sheet1" by default; drop it so Summary is first.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, batch *domain.Batch) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Batch ID", batch.ID.String()},
		{"Status", string(batch.Status)},
		{"Recommendation", string(batch.Recommendation)},
		{"Record Count", batch.RecordCount},
		{"Success Rate", batch.SuccessRate},
		{"Created At", batch.CreatedAt.Format(time.RFC3339)},
	}
	if batch.BaselineBatchID != nil {
		rows = append(rows, []interface{}{"Baseline Batch", batch.BaselineBatchID.String()})
	}
	if batch.CompletedAt != nil {
		rows = append(rows, []interface{}{"Completed At", batch.CompletedAt.Format(time.RFC3339)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(f *excelize.File, records []domain.ExpenseRecord) error {
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(recordsSheet, "A1", &recordHeader); err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		row := []interface{}{
			rec.PersonName,
			rec.PersonRef,
			rec.PrimaryAmount,
			rec.SecondaryAmount,
			rec.PrimaryAmount - rec.SecondaryAmount,
			string(rec.Status),
			formatIssues(rec.Issues()),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func formatIssues(flags []domain.IssueFlag) string {
	if len(flags) == 0 {
		return ""
	}
	parts := make([]string, len(flags))
	for i, flag := range flags {
		parts[i] = string(flag)
	}
	return strings.Join(parts, "; ")
}

// BuildFilename returns the Content-Disposition filename for a workbook
// export. Format: batch_{short_id}_{YYYY-MM-DD}.xlsx
func BuildFilename(batchID string) string {
	short := batchID
	if len(short) > 8 {
		short = short[:8]
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("batch_%s_%s.xlsx", short, date)
}
