package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskville/internal/repository"
	"taskville/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	audit         *repository.AuditWriter
}

func NewReportHandler(reportService *services.ReportService, audit *repository.AuditWriter) *ReportHandler {
	return &ReportHandler{reportService: reportService, audit: audit}
}

func (h *ReportHandler) Overview(c *gin.Context) {
	overview, err := h.reportService.Overview()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, overview)
}

func (h *ReportHandler) Project(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	report, err := h.reportService.ProjectReport(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, report)
}

func (h *ReportHandler) Workload(c *gin.Context) {
	entries, err := h.reportService.Workload()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"workload": entries})
}

// AuditLog returns recent audit entries for admins.
func (h *ReportHandler) AuditLog(c *gin.Context) {
	days := 30
	entries, err := h.audit.Recent(time.Now().AddDate(0, 0, -days), 500)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"entries": entries})
}
