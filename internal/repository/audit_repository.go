package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/audittrack/audittrack-api/internal/models"
	"gorm.io/gorm"
)

// AuditKey is the natural key used to locate rows for remediation
// updates. It is not unique: one key may match several rows, and all of
// them are updated identically.
type AuditKey struct {
	SN          string
	Location    string
	DateOfAudit models.Date
}

// AuditRepository defines data access for the per-type audit tables.
// Every method resolves its table through models.AuditType.TableName.
type AuditRepository interface {
	TableExists(ctx context.Context, t models.AuditType) (bool, error)
	List(ctx context.Context, t models.AuditType) ([]models.AuditRecord, error)
	LastUploadDate(ctx context.Context, t models.AuditType) (*time.Time, error)
	ReplaceAll(ctx context.Context, t models.AuditType, records []models.AuditRecord) error
	UpdateByKey(ctx context.Context, t models.AuditType, key AuditKey, fields map[string]interface{}) (int64, error)
	AttachEvidence(ctx context.Context, t models.AuditType, id uint, filename string) (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// TableExists reports whether the type's table has been provisioned yet.
// Tables are created lazily by the first bulk import.
func (r *auditRepository) TableExists(ctx context.Context, t models.AuditType) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(t.TableName()), nil
}

func (r *auditRepository) List(ctx context.Context, t models.AuditType) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.WithContext(ctx).
		Table(t.TableName()).
		Order("sn ASC").
		Find(&records).Error
	return records, err
}

func (r *auditRepository) LastUploadDate(ctx context.Context, t models.AuditType) (*time.Time, error) {
	if exists, _ := r.TableExists(ctx, t); !exists {
		return nil, nil
	}
	var last sql.NullTime
	err := r.db.WithContext(ctx).
		Table(t.TableName()).
		Select("MAX(upload_date)").
		Scan(&last).Error
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// ReplaceAll swaps the entire table contents for new records in one
// transaction. Any insert failure rolls the whole import back, leaving
// the prior contents untouched.
func (r *auditRepository) ReplaceAll(ctx context.Context, t models.AuditType, records []models.AuditRecord) error {
	name := t.TableName()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !tx.Migrator().HasTable(name) {
			if err := tx.Table(name).AutoMigrate(&models.AuditRecord{}); err != nil {
				return err
			}
		}
		if err := tx.Table(name).Where("1 = 1").Delete(&models.AuditRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Table(name).Create(&records).Error
	})
}

func (r *auditRepository) UpdateByKey(ctx context.Context, t models.AuditType, key AuditKey, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Table(t.TableName()).
		Where("sn = ? AND location = ? AND date_of_audit = ?", key.SN, key.Location, key.DateOfAudit).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// AttachEvidence records the stored filename and closes the finding
func (r *auditRepository) AttachEvidence(ctx context.Context, t models.AuditType, id uint, filename string) (int64, error) {
	result := r.db.WithContext(ctx).
		Table(t.TableName()).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"evidence": filename,
			"status":   models.StatusClosed,
		})
	return result.RowsAffected, result.Error
}
