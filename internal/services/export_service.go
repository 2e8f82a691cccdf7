package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService turns an audit table back into downloadable files. The
// spreadsheet exports reuse the import template headers, so an exported
// file round-trips through the bulk importer unchanged.
type ExportService struct {
	auditRepo repository.AuditRepository
}

// NewExportService creates a new export service
func NewExportService(auditRepo repository.AuditRepository) *ExportService {
	return &ExportService{auditRepo: auditRepo}
}

var exportHeaders = []string{
	colSN,
	colLocation,
	colDomainClauses,
	colDateOfAudit,
	colDateOfSubmission,
	colNCMinI,
	colObservation,
	"Root cause analysis",
	"Corrective action",
	"Preventive action",
	"Responsibility",
	"Closing dates",
	"Status",
}

func exportRow(r models.AuditRecord) []string {
	return []string{
		r.SN,
		r.Location,
		r.DomainClauses,
		formatDate(r.DateOfAudit),
		formatDate(r.DateOfSubmission),
		r.NCMinI,
		r.ObservationDescription,
		deref(r.RootCauseAnalysis),
		deref(r.CorrectiveAction),
		deref(r.PreventiveAction),
		deref(r.Responsibility),
		formatDate(r.ClosingDates),
		deref(r.Status),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// ExportXLSX writes the type's current rows to an xlsx workbook
func (s *ExportService) ExportXLSX(ctx context.Context, t models.AuditType) ([]byte, string, error) {
	records, err := s.auditRepo.List(ctx, t)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Audits"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, record := range records {
		for colIdx, value := range exportRow(record) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_audits_%s.xlsx", t, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportCSV writes the type's current rows as CSV
func (s *ExportService) ExportCSV(ctx context.Context, t models.AuditType) ([]byte, string, error) {
	records, err := s.auditRepo.List(ctx, t)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(exportHeaders)
	for _, record := range records {
		_ = writer.Write(exportRow(record))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_audits_%s.csv", t, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// SummaryPDF renders a findings summary: counts by status and the list
// of findings still open.
func (s *ExportService) SummaryPDF(ctx context.Context, t models.AuditType) ([]byte, string, error) {
	records, err := s.auditRepo.List(ctx, t)
	if err != nil {
		return nil, "", err
	}

	open, closed, other := 0, 0, 0
	for _, r := range records {
		switch deref(r.Status) {
		case models.StatusClosed:
			closed++
		case models.StatusOpen, "":
			open++
		default:
			other++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("%s audit summary", titleCase(string(t))))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Generated:")
	pdf.Cell(60, 8, time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Total findings:")
	pdf.Cell(60, 8, fmt.Sprintf("%d", len(records)))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Open:")
	pdf.Cell(60, 8, fmt.Sprintf("%d", open))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Closed:")
	pdf.Cell(60, 8, fmt.Sprintf("%d", closed))
	pdf.Ln(6)
	if other > 0 {
		pdf.Cell(60, 8, "Other status:")
		pdf.Cell(60, 8, fmt.Sprintf("%d", other))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Open findings")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	for _, r := range records {
		if deref(r.Status) == models.StatusClosed {
			continue
		}
		pdf.Cell(25, 6, r.SN)
		pdf.Cell(35, 6, truncate(r.Location, 20))
		pdf.Cell(25, 6, formatDate(r.DateOfAudit))
		pdf.Cell(100, 6, truncate(r.ObservationDescription, 60))
		pdf.Ln(5)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_audit_summary_%s.pdf", t, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
