package repository

import (
	"context"
	"testing"
	"time"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, ok := models.ParseDate(s)
	assert.True(t, ok)
	return d
}

func sampleRecords(t *testing.T, stamp time.Time) []models.AuditRecord {
	date := mustDate(t, "2026-01-15")
	upload := models.Timestamp{Time: stamp}
	return []models.AuditRecord{
		{SN: "B-02", Location: "Plant 2", DomainClauses: "8.3", DateOfAudit: &date, NCMinI: "I", ObservationDescription: "Late submission", UploadDate: &upload},
		{SN: "A-01", Location: "Plant 1", DomainClauses: "7.1", DateOfAudit: &date, NCMinI: "NC", ObservationDescription: "Missing records", UploadDate: &upload},
	}
}

func TestAuditRepository_TableCreatedLazily(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	exists, err := repo.TableExists(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.False(t, exists, "no table before the first import")

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))

	exists, err = repo.TableExists(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.True(t, exists)

	// The other type's table stays untouched
	exists, err = repo.TableExists(ctx, models.AuditTypeExternal)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestAuditRepository_ListOrderedBySN(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))

	records, err := repo.List(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "A-01", records[0].SN)
	assert.Equal(t, "B-02", records[1].SN)
}

func TestAuditRepository_ReplaceAllSwapsContents(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))

	date := mustDate(t, "2026-02-01")
	upload := models.Timestamp{Time: time.Now()}
	replacement := []models.AuditRecord{
		{SN: "C-03", Location: "Plant 3", DateOfAudit: &date, NCMinI: "MiN", ObservationDescription: "New finding", UploadDate: &upload},
	}
	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, replacement))

	records, err := repo.List(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "C-03", records[0].SN)
}

func TestAuditRepository_ReplaceAllEmpty(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))
	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, nil))

	records, err := repo.List(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestAuditRepository_LastUploadDate(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	// Missing table: no error, just nil
	last, err := repo.LastUploadDate(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.Nil(t, last)

	stamp := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, stamp)))

	last, err = repo.LastUploadDate(ctx, models.AuditTypeInternal)
	assert.NoError(t, err)
	assert.NotNil(t, last)
	assert.Equal(t, stamp.Unix(), last.Unix())
}

func TestAuditRepository_UpdateByKey(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))

	key := AuditKey{SN: "A-01", Location: "Plant 1", DateOfAudit: mustDate(t, "2026-01-15")}
	rows, err := repo.UpdateByKey(ctx, models.AuditTypeInternal, key, map[string]interface{}{
		"corrective_action": "Retrain staff",
		"status":            models.StatusClosed,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	records, _ := repo.List(ctx, models.AuditTypeInternal)
	assert.Equal(t, "Retrain staff", *records[0].CorrectiveAction)
	assert.Equal(t, models.StatusClosed, *records[0].Status)
	assert.Nil(t, records[1].CorrectiveAction, "other rows stay untouched")

	// Unknown key matches nothing
	missing := AuditKey{SN: "Z-99", Location: "Plant 1", DateOfAudit: mustDate(t, "2026-01-15")}
	rows, err = repo.UpdateByKey(ctx, models.AuditTypeInternal, missing, map[string]interface{}{"status": models.StatusOpen})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestAuditRepository_UpdateByKeyMultipleMatches(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	date := mustDate(t, "2026-01-15")
	upload := models.Timestamp{Time: time.Now()}
	dupes := []models.AuditRecord{
		{SN: "A-01", Location: "Plant 1", DateOfAudit: &date, ObservationDescription: "First", UploadDate: &upload},
		{SN: "A-01", Location: "Plant 1", DateOfAudit: &date, ObservationDescription: "Second", UploadDate: &upload},
	}
	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, dupes))

	key := AuditKey{SN: "A-01", Location: "Plant 1", DateOfAudit: date}
	rows, err := repo.UpdateByKey(ctx, models.AuditTypeInternal, key, map[string]interface{}{"responsibility": "QA lead"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), rows, "a shared natural key updates every matching row")
}

func TestAuditRepository_AttachEvidence(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceAll(ctx, models.AuditTypeInternal, sampleRecords(t, time.Now())))
	records, _ := repo.List(ctx, models.AuditTypeInternal)

	rows, err := repo.AttachEvidence(ctx, models.AuditTypeInternal, records[0].ID, "evidence_1_abcd1234.pdf")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	updated, _ := repo.List(ctx, models.AuditTypeInternal)
	assert.Equal(t, "evidence_1_abcd1234.pdf", *updated[0].Evidence)
	assert.Equal(t, models.StatusClosed, *updated[0].Status)

	rows, err = repo.AttachEvidence(ctx, models.AuditTypeInternal, 9999, "evidence_9999_x.pdf")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
