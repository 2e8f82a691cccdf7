package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLocalStorage_SaveEvidenceNaming(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	assert.NoError(t, err)

	name, err := store.SaveEvidence(42, "pdf", bytes.NewReader([]byte("%PDF")))
	assert.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^evidence_42_[0-9a-f]{8}\.pdf$`), name)
	assert.True(t, store.Exists(name))

	// Two uploads for the same record never collide
	other, err := store.SaveEvidence(42, "pdf", bytes.NewReader([]byte("%PDF")))
	assert.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestLocalStorage_SaveImportFileNaming(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	assert.NoError(t, err)

	name, err := store.SaveImportFile(models.AuditTypeExternal, ".xlsx", bytes.NewReader([]byte("data")))
	assert.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^external_audit_\d{8}_\d{6}\.xlsx$`), name)
	assert.True(t, store.Exists(name))
}

func TestLocalStorage_Remove(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	assert.NoError(t, err)

	name, _ := store.SaveEvidence(1, "png", bytes.NewReader([]byte("png")))
	assert.NoError(t, store.Remove(name))
	assert.False(t, store.Exists(name))

	// Removing again is not an error
	assert.NoError(t, store.Remove(name))
}

func TestLocalStorage_PathEscapesBlocked(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	assert.NoError(t, err)

	p := store.Path("../../etc/passwd")
	assert.Equal(t, filepath.Join(dir, "passwd"), p)
}

func TestLocalStorage_SweepImportTemp(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	assert.NoError(t, err)

	stale, _ := store.SaveImportFile(models.AuditTypeInternal, ".csv", bytes.NewReader([]byte("a")))
	fresh, _ := store.SaveImportFile(models.AuditTypeExternal, ".xlsx", bytes.NewReader([]byte("b")))
	evidence, _ := store.SaveEvidence(1, "pdf", bytes.NewReader([]byte("c")))

	old := time.Now().Add(-3 * time.Hour)
	assert.NoError(t, os.Chtimes(store.Path(stale), old, old))

	removed, err := store.SweepImportTemp(2 * time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.False(t, store.Exists(stale))
	assert.True(t, store.Exists(fresh), "recent imports are left alone")
	assert.True(t, store.Exists(evidence), "evidence files are never swept")
}

func TestIsAllowedEvidenceExt(t *testing.T) {
	for _, ext := range []string{"pdf", "pptx", "png", "jpeg", "jpg", "PDF", "Jpg"} {
		assert.True(t, IsAllowedEvidenceExt(ext), ext)
	}
	for _, ext := range []string{"exe", "docx", "xlsx", "sh", ""} {
		assert.False(t, IsAllowedEvidenceExt(ext), ext)
	}
}
