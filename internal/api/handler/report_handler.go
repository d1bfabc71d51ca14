package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 报表与日历导出 HTTP 处理器
type ReportHandler struct {
	exportSvc service.ExportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(exportSvc service.ExportService) *ReportHandler {
	return &ReportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出排班报表
// GET /api/reports/schedule.xlsx?from=2026-03-01&to=2026-03-31
func (h *ReportHandler) ExportSchedule(c *gin.Context) {
	var req dto.ScheduleReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from and to are required (YYYY-MM-DD)")
		return
	}

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), req.From, req.To)
	if err != nil {
		handleReportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// UserCalendar 用户班次 iCalendar 订阅
// GET /api/users/:userid/calendar.ics
func (h *ReportHandler) UserCalendar(c *gin.Context) {
	userID, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.UserCalendar(c.Request.Context(), userID, callerID, callerRole)
	if err != nil {
		handleReportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename="+filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportInvalidRange):
		response.BadRequest(c, 17001, "Invalid date range (to must not precede from, at most 366 days)")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 17002, "User not found")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "Access denied")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
