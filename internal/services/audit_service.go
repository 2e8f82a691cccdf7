package services

import (
	"context"
	"io"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/audittrack/audittrack-api/internal/storage"
)

// AuditService handles queries and per-record mutations of the audit
// tables. Bulk ingestion lives in ImportService.
type AuditService struct {
	auditRepo repository.AuditRepository
	storage   *storage.LocalStorage
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditRepository, storage *storage.LocalStorage) *AuditService {
	return &AuditService{auditRepo: auditRepo, storage: storage}
}

// AuditListResult is the audit listing response body
type AuditListResult struct {
	Data           []models.AuditRecord `json:"data"`
	Message        string               `json:"message,omitempty"`
	LastUploadDate *models.Timestamp    `json:"lastUploadDate"`

	// TableMissing marks the lazy-provisioning soft miss: the type's
	// table has not been created by an import yet.
	TableMissing bool `json:"-"`
}

// List returns all rows for the type ordered by serial number, plus the
// most recent upload timestamp among them. A missing backing table is a
// soft miss with an empty data set, not an error.
func (s *AuditService) List(ctx context.Context, t models.AuditType) (*AuditListResult, error) {
	exists, err := s.auditRepo.TableExists(ctx, t)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &AuditListResult{
			Data:         []models.AuditRecord{},
			Message:      "Table " + t.TableName() + " does not exist yet",
			TableMissing: true,
		}, nil
	}

	records, err := s.auditRepo.List(ctx, t)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.AuditRecord{}
	}

	last, err := s.auditRepo.LastUploadDate(ctx, t)
	if err != nil {
		return nil, err
	}

	result := &AuditListResult{Data: records}
	if last != nil {
		result.LastUploadDate = &models.Timestamp{Time: *last}
	}
	return result, nil
}

// LastUploadDate returns the newest upload stamp for the type, or nil
// when the table is absent or empty.
func (s *AuditService) LastUploadDate(ctx context.Context, t models.AuditType) (*models.Timestamp, error) {
	last, err := s.auditRepo.LastUploadDate(ctx, t)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}
	return &models.Timestamp{Time: *last}, nil
}

// UpdateRecord patches the remediation fields of every row matching the
// record's (SN, Location, DateOfAudit) natural key. The key is not
// unique; matching several rows updates all of them identically, which
// is the intended behavior. Zero matches fail with ErrNotFound.
func (s *AuditService) UpdateRecord(ctx context.Context, t models.AuditType, record models.AuditRecord) error {
	status := models.StatusOpen
	if record.Status != nil && *record.Status != "" {
		status = *record.Status
	}

	fields := map[string]interface{}{
		"root_cause_analysis": record.RootCauseAnalysis,
		"corrective_action":   record.CorrectiveAction,
		"preventive_action":   record.PreventiveAction,
		"responsibility":      record.Responsibility,
		"closing_dates":       record.ClosingDates,
		"status":              status,
		"evidence":            record.Evidence,
	}

	key := repository.AuditKey{
		SN:          record.SN,
		Location:    record.Location,
		DateOfAudit: *record.DateOfAudit,
	}

	rows, err := s.auditRepo.UpdateByKey(ctx, t, key, fields)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachEvidence stores the uploaded attachment and closes the finding
// identified by primary id. When no row matches, the just-stored file
// is removed again so nothing orphaned stays behind.
func (s *AuditService) AttachEvidence(ctx context.Context, t models.AuditType, recordID uint, ext string, file io.Reader) (string, error) {
	if !storage.IsAllowedEvidenceExt(ext) {
		return "", ErrInvalidEvidenceType
	}

	filename, err := s.storage.SaveEvidence(recordID, ext, file)
	if err != nil {
		return "", err
	}

	rows, err := s.auditRepo.AttachEvidence(ctx, t, recordID, filename)
	if err != nil {
		s.storage.Remove(filename)
		return "", err
	}
	if rows == 0 {
		s.storage.Remove(filename)
		return "", ErrNotFound
	}
	return filename, nil
}
