package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/middleware"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	"github.com/noah-isme/attendance-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
	"github.com/noah-isme/attendance-dashboard-api/pkg/response"
)

type attendanceService interface {
	Dashboard(ctx context.Context, tr models.TimeRange) (*models.AttendanceDashboard, error)
}

type exportService interface {
	Export(ctx context.Context, query dto.AttendanceExportQuery) (*service.ExportFile, error)
}

// AttendanceHandler serves the dashboard metrics.
type AttendanceHandler struct {
	service attendanceService
	export  exportService
}

// NewAttendanceHandler constructs the handler. export may be nil to disable downloads.
func NewAttendanceHandler(svc attendanceService, export exportService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, export: export}
}

// Dashboard godoc
// @Summary Attendance dashboard
// @Description Check-in trend, late distribution, overtime, batch distribution and snapshot for a time range. Degraded series are listed under degraded.
// @Tags Attendance
// @Produce json
// @Param timeRange query string false "today, week, month or quarter" default(today)
// @Success 200 {object} response.Envelope{data=models.AttendanceDashboard}
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Dashboard(c *gin.Context) {
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	tr, ok := models.ParseTimeRange(query.TimeRange)
	if !ok {
		response.Error(c, appErrors.ErrInvalidTimeRange)
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), tr)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "degraded_series", len(dashboard.Degraded))
	response.JSON(c, http.StatusOK, dashboard, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download one dashboard series
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param timeRange query string false "today, week, month or quarter" default(today)
// @Param series query string true "checkinTrend, lateDistribution, overtimeData, batchDistribution or attendanceStats"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.ErrExportDisabled)
		return
	}
	var query dto.AttendanceExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	file, err := h.export.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
