package models

import (
	"fmt"
)

// AuditType selects which physical audit table an operation targets.
// Table names come from a fixed switch so request text is never
// interpolated into query identifiers.
type AuditType string

const (
	AuditTypeInternal AuditType = "internal"
	AuditTypeExternal AuditType = "external"
)

// ParseAuditType validates a request-supplied audit type
func ParseAuditType(s string) (AuditType, error) {
	switch AuditType(s) {
	case AuditTypeInternal:
		return AuditTypeInternal, nil
	case AuditTypeExternal:
		return AuditTypeExternal, nil
	}
	return "", fmt.Errorf("invalid audit type %q", s)
}

// TableName returns the backing table for the audit type
func (t AuditType) TableName() string {
	switch t {
	case AuditTypeExternal:
		return "external_audits"
	default:
		return "internal_audits"
	}
}

// AuditRecord is one finding row. Internal and external audits share
// this schema in disjoint tables. JSON keys keep the original report
// column names the frontend binds to.
type AuditRecord struct {
	ID                     uint       `gorm:"primaryKey" json:"ID"`
	SN                     string     `gorm:"column:sn" json:"SN"`
	Location               string     `gorm:"column:location" json:"Location"`
	DomainClauses          string     `gorm:"column:domain_clauses" json:"DomainClauses"`
	DateOfAudit            *Date      `gorm:"column:date_of_audit" json:"DateOfAudit"`
	DateOfSubmission       *Date      `gorm:"column:date_of_submission" json:"DateOfSubmission"`
	NCMinI                 string     `gorm:"column:nc_min_i" json:"NCMinI"`
	ObservationDescription string     `gorm:"column:observation_description" json:"ObservationDescription"`
	RootCauseAnalysis      *string    `gorm:"column:root_cause_analysis" json:"RootCauseAnalysis"`
	CorrectiveAction       *string    `gorm:"column:corrective_action" json:"CorrectiveAction"`
	PreventiveAction       *string    `gorm:"column:preventive_action" json:"PreventiveAction"`
	Responsibility         *string    `gorm:"column:responsibility" json:"Responsibility"`
	ClosingDates           *Date      `gorm:"column:closing_dates" json:"ClosingDates"`
	Status                 *string    `gorm:"column:status" json:"Status"`
	Evidence               *string    `gorm:"column:evidence" json:"Evidence"`
	UploadDate             *Timestamp `gorm:"column:upload_date" json:"UploadDate"`
}

// Record status values. Status is stored verbatim; these are the two
// the workflow itself writes.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)
