package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/google/uuid"
)

// LocalStorage handles the upload directory on the local filesystem.
// Bulk-import source files and retained evidence attachments share the
// one directory, mirroring the /uploads namespace the frontend expects.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// BasePath returns the upload directory root
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// SaveImportFile writes an uploaded spreadsheet to a temp file named
// {type}_audit_{timestamp}{ext}. The caller removes it after parsing.
func (s *LocalStorage) SaveImportFile(t models.AuditType, ext string, src io.Reader) (string, error) {
	name := fmt.Sprintf("%s_audit_%s%s", t, time.Now().Format("20060102_150405"), ext)
	if err := s.save(name, src); err != nil {
		return "", err
	}
	return name, nil
}

// SaveEvidence stores an evidence attachment under a unique name tied
// to the owning record id.
func (s *LocalStorage) SaveEvidence(recordID uint, ext string, src io.Reader) (string, error) {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	name := fmt.Sprintf("evidence_%d_%s.%s", recordID, suffix, ext)
	if err := s.save(name, src); err != nil {
		return "", err
	}
	return name, nil
}

func (s *LocalStorage) save(name string, src io.Reader) error {
	dst, err := os.Create(filepath.Join(s.basePath, name))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// Path returns the absolute path for a stored file name
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// Remove deletes a stored file by name. Missing files are not an error.
func (s *LocalStorage) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists checks if a stored file exists
func (s *LocalStorage) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// SweepImportTemp removes leftover bulk-import temp files older than
// the cutoff. Imports delete their own temp file; this catches files
// orphaned by a crash mid-import.
func (s *LocalStorage) SweepImportTemp(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isImportTempName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func isImportTempName(name string) bool {
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".csv") {
		return false
	}
	return strings.HasPrefix(name, string(models.AuditTypeInternal)+"_audit_") ||
		strings.HasPrefix(name, string(models.AuditTypeExternal)+"_audit_")
}

// evidenceExtensions are the attachment types a finding may be closed with
var evidenceExtensions = map[string]bool{
	"pdf":  true,
	"pptx": true,
	"png":  true,
	"jpeg": true,
	"jpg":  true,
}

// IsAllowedEvidenceExt checks an evidence file extension (without dot)
func IsAllowedEvidenceExt(ext string) bool {
	return evidenceExtensions[strings.ToLower(ext)]
}
