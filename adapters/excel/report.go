// Package excel renders aggregated program-activity data to an Excel
// workbook for board and funder reporting.
package excel

import (
	"fmt"
	"time"

	"bookbridge/domain/activity"
	"bookbridge/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// ReportWriter builds a multi-sheet Excel report from a dataset
type ReportWriter struct {
	metrics []string
}

// NewReportWriter creates a report writer covering the given metrics. A nil
// metric list defaults to the headline columns.
func NewReportWriter(metrics []string) *ReportWriter {
	if metrics == nil {
		metrics = []string{
			activity.FieldBooksDistributed,
			activity.FieldTotalChildren,
			activity.MetricAvgBooksPerChild,
		}
	}
	return &ReportWriter{metrics: metrics}
}

// Write renders the report for a dataset to path
func (w *ReportWriter) Write(path string, ds *dataset.Dataset, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeSummarySheet(f, ds, generatedAt, headerStyle); err != nil {
		return err
	}
	if err := w.writeTimeSheet(f, ds, "Monthly Trends", dataset.UnitMonth, headerStyle); err != nil {
		return err
	}
	if err := w.writeTimeSheet(f, ds, "Fiscal Year", dataset.UnitFiscalYear, headerStyle); err != nil {
		return err
	}
	if err := w.writeCategorySheet(f, ds, headerStyle); err != nil {
		return err
	}

	// Drop the default sheet so Summary comes first
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (w *ReportWriter) writeSummarySheet(f *excelize.File, ds *dataset.Dataset, generatedAt time.Time, headerStyle int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	stats := ds.SummaryStats()

	f.SetCellValue(sheet, "A1", "BookBridge Program Report")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	f.SetCellValue(sheet, "A2", "Generated")
	f.SetCellValue(sheet, "B2", generatedAt.Format("2006-01-02"))
	f.SetCellValue(sheet, "A3", "Total activity records")
	f.SetCellValue(sheet, "B3", stats.TotalRecords)
	if stats.HasDates {
		f.SetCellValue(sheet, "A4", "Date range")
		f.SetCellValue(sheet, "B4", fmt.Sprintf("%s to %s",
			stats.DateStart.Format("2006-01-02"), stats.DateEnd.Format("2006-01-02")))
	}

	f.SetCellValue(sheet, "A6", "Metric")
	f.SetCellValue(sheet, "B6", "Total")
	f.SetCellStyle(sheet, "A6", "B6", headerStyle)

	row := 7
	for _, metric := range w.metrics {
		value, ok := stats.Totals[metric]
		if !ok {
			continue
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), activity.Label(metric))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}
	return nil
}

func (w *ReportWriter) writeTimeSheet(f *excelize.File, ds *dataset.Dataset, sheet string, unit dataset.TimeUnit, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	f.SetCellValue(sheet, "A1", "Period")
	for i, metric := range w.metrics {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, activity.Label(metric))
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(w.metrics)+1, 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for r, period := range ds.AggregateByTime(unit, w.metrics) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r+2), period.Period)
		for i, metric := range w.metrics {
			cell, _ := excelize.CoordinatesToCellName(i+2, r+2)
			f.SetCellValue(sheet, cell, period.Values[metric])
		}
	}
	return nil
}

func (w *ReportWriter) writeCategorySheet(f *excelize.File, ds *dataset.Dataset, headerStyle int) error {
	const sheet = "Program Breakdown"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	f.SetCellValue(sheet, "A1", "Program")
	f.SetCellValue(sheet, "B1", "Activities")
	for i, metric := range w.metrics {
		cell, _ := excelize.CoordinatesToCellName(i+3, 1)
		f.SetCellValue(sheet, cell, activity.Label(metric))
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(w.metrics)+2, 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for r, group := range ds.AggregateByCategory("program", w.metrics) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r+2), group.Category)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r+2), group.ActivityCount)
		for i, metric := range w.metrics {
			cell, _ := excelize.CoordinatesToCellName(i+3, r+2)
			f.SetCellValue(sheet, cell, group.Values[metric])
		}
	}
	return nil
}
