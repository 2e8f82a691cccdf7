package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/audittrack/audittrack-api/internal/storage"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet header names the import template must carry. The last
// three are renamed to their internal field names during ingestion.
const (
	colSN               = "SN"
	colLocation         = "Location"
	colDomainClauses    = "Domain/Clauses"
	colDateOfAudit      = "Date of audit"
	colDateOfSubmission = "Date of submission of report"
	colNCMinI           = "NC / MiN/ I *"
	colObservation      = "Observation description"
)

var requiredColumns = []string{
	colSN,
	colLocation,
	colDomainClauses,
	colDateOfAudit,
	colDateOfSubmission,
	colNCMinI,
	colObservation,
}

// ImportService ingests audit spreadsheets. Each import replaces the
// entire table for its audit type: delete-all plus insert-all in one
// transaction, so a failed import leaves the prior contents untouched.
type ImportService struct {
	auditRepo repository.AuditRepository
	storage   *storage.LocalStorage
}

// NewImportService creates a new import service
func NewImportService(auditRepo repository.AuditRepository, storage *storage.LocalStorage) *ImportService {
	return &ImportService{auditRepo: auditRepo, storage: storage}
}

// ImportFile parses an uploaded .xlsx or .csv file and replaces all
// rows of the target audit type. Returns the number of records
// imported. The temp copy of the upload is removed on every path.
func (s *ImportService) ImportFile(ctx context.Context, t models.AuditType, filename string, src io.Reader) (int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".csv" {
		return 0, ErrInvalidFileType
	}

	tempName, err := s.storage.SaveImportFile(t, ext, src)
	if err != nil {
		return 0, err
	}
	defer s.storage.Remove(tempName)

	var rows [][]string
	if ext == ".xlsx" {
		rows, err = readXLSX(s.storage.Path(tempName))
	} else {
		rows, err = readCSV(s.storage.Path(tempName))
	}
	if err != nil {
		return 0, err
	}

	records, err := parseRows(rows, time.Now())
	if err != nil {
		return 0, err
	}

	if err := s.auditRepo.ReplaceAll(ctx, t, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidTemplate
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	// Exports from older office tooling arrive in latin-1 more often
	// than not; fall back to a byte-to-rune decode when the content is
	// not valid UTF-8.
	if !utf8.Valid(data) {
		data = decodeLatin1(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func decodeLatin1(data []byte) []byte {
	buf := make([]rune, len(data))
	for i, b := range data {
		buf[i] = rune(b)
	}
	return []byte(string(buf))
}

// parseRows validates the header row and converts data rows to records.
// Text cells coerce to strings (blank when absent); the two date cells
// parse leniently, with unparsable values becoming null rather than
// aborting the import. Every record in the batch shares one upload
// stamp.
func parseRows(rows [][]string, stamp time.Time) ([]models.AuditRecord, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidTemplate
	}

	index := map[string]int{}
	for i, header := range rows[0] {
		index[strings.TrimSpace(header)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, ErrInvalidTemplate
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.AuditRecord, 0, len(rows)-1)
	upload := models.Timestamp{Time: stamp}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		record := models.AuditRecord{
			SN:                     cell(row, colSN),
			Location:               cell(row, colLocation),
			DomainClauses:          cell(row, colDomainClauses),
			NCMinI:                 cell(row, colNCMinI),
			ObservationDescription: cell(row, colObservation),
			UploadDate:             &upload,
		}
		if d, ok := models.ParseDate(cell(row, colDateOfAudit)); ok {
			record.DateOfAudit = &d
		}
		if d, ok := models.ParseDate(cell(row, colDateOfSubmission)); ok {
			record.DateOfSubmission = &d
		}
		records = append(records, record)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
