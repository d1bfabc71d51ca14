package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

// OvertimeHandler 加班申请模块 HTTP 处理器
type OvertimeHandler struct {
	svc service.OvertimeService
}

// NewOvertimeHandler 创建 OvertimeHandler
func NewOvertimeHandler(svc service.OvertimeService) *OvertimeHandler {
	return &OvertimeHandler{svc: svc}
}

// ListOvertime 全部加班申请（管理员）
// GET /api/overtime
func (h *OvertimeHandler) ListOvertime(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalErrorWithDetails(c, err)
		return
	}
	response.OK(c, list)
}

// ListUserOvertime 用户的加班申请
// GET /api/overtime/user/:userid
func (h *OvertimeHandler) ListUserOvertime(c *gin.Context) {
	userID, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUser(c.Request.Context(), userID, callerID, callerRole)
	if err != nil {
		handleOvertimeError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateOvertime 提交加班申请
// POST /api/overtime
func (h *OvertimeHandler) CreateOvertime(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateOvertimeRequest
	if !bindJSON(c, &req, "Missing required fields") {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		handleOvertimeError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateOvertimeStatus 审批加班申请（管理员）
// PUT /api/overtime/:requestid/status
func (h *OvertimeHandler) UpdateOvertimeStatus(c *gin.Context) {
	id, ok := uuidParam(c, "requestid", "Invalid request ID format")
	if !ok {
		return
	}

	var req dto.UpdateOvertimeStatusRequest
	if !bindJSON(c, &req, `Invalid status. Must be either "approved" or "rejected"`) {
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleOvertimeError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteOvertime 删除加班申请，本人或管理员
// DELETE /api/overtime/:requestid
func (h *OvertimeHandler) DeleteOvertime(c *gin.Context) {
	id, ok := uuidParam(c, "requestid", "Invalid request ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		handleOvertimeError(c, err)
		return
	}
	response.OKWithMessage(c, "Overtime request deleted successfully", nil)
}

func handleOvertimeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOvertimeNotFound):
		response.NotFound(c, 15001, "Overtime request not found")
	case errors.Is(err, service.ErrShiftNotOvertimeEligible):
		response.BadRequest(c, 15002, "Shift not found or not eligible for overtime")
	case errors.Is(err, service.ErrOvertimeNotPending):
		response.BadRequest(c, 15003, "Cannot update status of non-pending request")
	case errors.Is(err, service.ErrInvalidOvertimeStatus):
		response.BadRequest(c, 15004, `Invalid status. Must be either "approved" or "rejected"`)
	case errors.Is(err, service.ErrInvalidShiftTime):
		response.BadRequest(c, 15005, "Shift has no positive duration")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15006, "User not found")
	case errors.Is(err, service.ErrInvalidUserReference):
		response.BadRequest(c, 15007, "Invalid user references")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "Access denied")
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
