package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService  *services.AuditService
	importService *services.ImportService
	exportService *services.ExportService
}

func NewAuditHandler(auditService *services.AuditService, importService *services.ImportService, exportService *services.ExportService) *AuditHandler {
	return &AuditHandler{
		auditService:  auditService,
		importService: importService,
		exportService: exportService,
	}
}

// auditType reads and validates the audit type for the endpoints where
// an absent value means internal: the read endpoints and the bulk
// upload (form field first, then query). Writes the 400 itself when the
// value is unknown. The per-record mutations use requireAuditType
// instead, which has no default.
func auditType(c *gin.Context) (models.AuditType, bool) {
	raw := c.PostForm("type")
	if raw == "" {
		raw = c.DefaultQuery("type", string(models.AuditTypeInternal))
	}
	t, err := models.ParseAuditType(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audit type"})
		return "", false
	}
	return t, true
}

// requireAuditType validates an explicitly supplied audit type. A
// missing type is rejected rather than defaulted: the callers mutate
// rows, and a forgotten type must not silently target the internal
// table.
func requireAuditType(c *gin.Context, raw string) (models.AuditType, bool) {
	t, err := models.ParseAuditType(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audit type"})
		return "", false
	}
	return t, true
}

// @Summary List Audits
// @Description Returns all audit records of a type with the last upload date
// @Tags Audits
// @Produce json
// @Param type query string false "Audit type (internal or external)"
// @Success 200 {object} services.AuditListResult
// @Failure 404 {object} services.AuditListResult
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	t, ok := auditType(c)
	if !ok {
		return
	}

	result, err := h.auditService.List(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audits"})
		return
	}

	// No import has created the table yet: 404, but with the same
	// body shape so the frontend can render an empty state.
	if result.TableMissing {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Last Upload Date
// @Description Returns the most recent bulk upload timestamp for a type
// @Tags Audits
// @Produce json
// @Param type query string false "Audit type (internal or external)"
// @Success 200 {object} map[string]interface{}
// @Router /audits/last-upload [get]
func (h *AuditHandler) LastUpload(c *gin.Context) {
	t, ok := auditType(c)
	if !ok {
		return
	}

	last, err := h.auditService.LastUploadDate(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch last upload date"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastUploadDate": last})
}

// @Summary Upload Audits
// @Description Replaces all records of a type from an uploaded spreadsheet (admin only)
// @Tags Audits
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param type query string false "Audit type (internal or external)"
// @Param file formData file true "Spreadsheet (.xlsx or .csv)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /audits/upload [post]
func (h *AuditHandler) Upload(c *gin.Context) {
	t, ok := auditType(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	count, err := h.importService.ImportFile(c.Request.Context(), t, fileHeader.Filename, src)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFileType) || errors.Is(err, services.ErrInvalidTemplate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"message": "Successfully uploaded " + strconv.Itoa(count) + " records",
	})
}

type UpdateRecordRequest struct {
	Type   string             `json:"type"`
	Record models.AuditRecord `json:"record"`
}

// @Summary Update Audit Record
// @Description Updates remediation fields of the records matching a natural key
// @Tags Audits
// @Accept json
// @Produce json
// @Param request body UpdateRecordRequest true "Audit type and record"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /audits/update [post]
func (h *AuditHandler) UpdateRecord(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required record data"})
		return
	}

	t, ok := requireAuditType(c, req.Type)
	if !ok {
		return
	}

	r := req.Record
	if r.SN == "" || r.Location == "" || r.DateOfAudit == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required record data"})
		return
	}

	if err := h.auditService.UpdateRecord(c.Request.Context(), t, r); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Record updated successfully",
	})
}

// @Summary Upload Evidence
// @Description Attaches an evidence file to a record and marks it Closed
// @Tags Audits
// @Accept multipart/form-data
// @Produce json
// @Param audit_type formData string true "Audit type (internal or external)"
// @Param record_id formData int true "Record ID"
// @Param file formData file true "Evidence file (pdf, pptx, png, jpeg, jpg)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /audits/upload-evidence [post]
func (h *AuditHandler) UploadEvidence(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	recordID, err := strconv.ParseUint(c.PostForm("record_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	t, ok := requireAuditType(c, c.PostForm("audit_type"))
	if !ok {
		return
	}

	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	filename, err := h.auditService.AttachEvidence(c.Request.Context(), t, uint(recordID), ext, src)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEvidenceType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload evidence"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"filename": filename,
	})
}

// @Summary Export Audits
// @Description Downloads the current records of a type as a spreadsheet (admin only)
// @Tags Audits
// @Produce application/octet-stream
// @Security BearerAuth
// @Param type query string false "Audit type (internal or external)"
// @Param format query string false "Export format (xlsx or csv)"
// @Success 200 {file} binary
// @Router /audits/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	t, ok := auditType(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch format {
	case "xlsx":
		data, filename, err = h.exportService.ExportXLSX(c.Request.Context(), t)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		data, filename, err = h.exportService.ExportCSV(c.Request.Context(), t)
		contentType = "text/csv"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid export format"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export audits"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Audit Summary Report
// @Description Downloads a PDF summary of open findings for a type (admin only)
// @Tags Audits
// @Produce application/pdf
// @Security BearerAuth
// @Param type query string false "Audit type (internal or external)"
// @Success 200 {file} binary
// @Router /audits/report [get]
func (h *AuditHandler) Report(c *gin.Context) {
	t, ok := auditType(c)
	if !ok {
		return
	}

	data, filename, err := h.exportService.SummaryPDF(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
