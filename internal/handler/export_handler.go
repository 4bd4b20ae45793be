package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/navmenu-api/internal/service"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/response"
)

// ExportHandler streams menu configuration dumps and manages async export
// jobs.
type ExportHandler struct {
	service *service.ExportService
	jobs    *service.ExportJobService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService, jobs *service.ExportJobService) *ExportHandler {
	return &ExportHandler{service: svc, jobs: jobs}
}

// Export godoc
// @Summary Export menu configuration
// @Description Dump every menu and item as CSV or PDF
// @Tags Menus
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /menus/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Payload)
}

type exportJobRequest struct {
	Format string `json:"format"`
}

// CreateJob godoc
// @Summary Schedule an async export
// @Description Queue a full configuration dump; poll the job for a download link
// @Tags Menus
// @Accept json
// @Produce json
// @Param payload body exportJobRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /menus/export/jobs [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	var req exportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	job, err := h.jobs.Enqueue(service.ExportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// GetJob godoc
// @Summary Get export job status
// @Tags Menus
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /menus/export/jobs/{id} [get]
func (h *ExportHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export
// @Description The signed token issued with the job record authorizes access
// @Tags Menus
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Router /menus/export/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Validation(map[string]string{"token": "field is required"}))
		return
	}
	file, filename, err := h.jobs.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
