package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"labvista/internal/domain"
)

const resultsSheet = "Results"

// columns defines the results sheet header row.
var columns = []string{
	"Test Name",
	"Value",
	"Unit",
	"Reference Min",
	"Reference Max",
	"Status",
	"Category",
	"Date",
}

// Workbook builds an XLSX export of a report and its extracted results. The
// first sheet carries report metadata, the second the result rows.
func Workbook(report *domain.Report, results []domain.LabResult) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName("Sheet1", "Report")
	if err := writeReportSheet(f, report); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("creating results sheet: %w", err)
	}
	if err := writeResultsSheet(f, results); err != nil {
		return nil, err
	}

	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, report *domain.Report, results []domain.LabResult) error {
	f, err := Workbook(report, results)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeReportSheet(f *excelize.File, report *domain.Report) error {
	rows := [][2]interface{}{
		{"Report ID", report.ID.String()},
		{"File Name", report.OriginalName},
		{"Patient", report.PatientName},
		{"Patient ID", report.PatientID},
		{"Test Date", report.TestDate},
		{"Status", string(report.Status)},
		{"Model Used", report.ModelUsed},
		{"Uploaded At", report.CreatedAt.Format(time.RFC3339)},
	}

	for i, row := range rows {
		labelCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report sheet cell: %w", err)
		}
		valueCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("report sheet cell: %w", err)
		}
		if err := f.SetCellValue("Report", labelCell, row[0]); err != nil {
			return fmt.Errorf("report sheet label: %w", err)
		}
		if err := f.SetCellValue("Report", valueCell, row[1]); err != nil {
			return fmt.Errorf("report sheet value: %w", err)
		}
	}
	return nil
}

func writeResultsSheet(f *excelize.File, results []domain.LabResult) error {
	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(resultsSheet, cell, name); err != nil {
			return fmt.Errorf("header row: %w", err)
		}
	}

	for i, r := range results {
		values := []interface{}{
			r.TestName,
			r.Value,
			r.Unit,
			r.RefMin,
			r.RefMax,
			string(r.Status),
			string(r.Category),
			r.ResultDate,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("result cell: %w", err)
			}
			if err := f.SetCellValue(resultsSheet, cell, v); err != nil {
				return fmt.Errorf("result row %d: %w", i, err)
			}
		}
	}
	return nil
}
