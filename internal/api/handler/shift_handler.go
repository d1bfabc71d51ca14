package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	svc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(svc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{svc: svc}
}

// ListUserShifts 用户的班次列表
// GET /api/users/:userid/shifts
func (h *ShiftHandler) ListUserShifts(c *gin.Context) {
	userID, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	shifts, err := h.svc.ListByUser(c.Request.Context(), userID, callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}
	response.OK(c, shifts)
}

// CreateShift 为用户排一个班次
// POST /api/users/:userid/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	userID, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if !bindJSON(c, &req, "Missing required fields") {
		return
	}

	shift, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleShiftError(c, err)
		return
	}
	response.Created(c, shift)
}

// CreateRecurringShifts 按 RRULE 批量排班
// POST /api/users/:userid/shifts/recurring
func (h *ShiftHandler) CreateRecurringShifts(c *gin.Context) {
	userID, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}

	var req dto.CreateRecurringShiftRequest
	if !bindJSON(c, &req, "Missing required fields") {
		return
	}

	result, err := h.svc.CreateRecurring(c.Request.Context(), userID, &req)
	if err != nil {
		handleShiftError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateShift 更新班次
// PUT /api/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid shift ID format")
	if !ok {
		return
	}

	var req dto.UpdateShiftRequest
	if !bindJSON(c, &req, "Invalid shift data") {
		return
	}

	shift, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleShiftError(c, err)
		return
	}
	response.OK(c, shift)
}

// DeleteShift 删除班次及相关换班申请
// DELETE /api/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid shift ID format")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleShiftError(c, err)
		return
	}
	response.OKWithMessage(c, "Shift and associated swap requests deleted successfully", nil)
}

func handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 14001, "Shift not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 14002, "User not found")
	case errors.Is(err, service.ErrInvalidShiftTime):
		response.BadRequest(c, 14003, "End time must be after start time")
	case errors.Is(err, service.ErrInvalidUserReference):
		response.BadRequest(c, 14004, "Invalid user references")
	case errors.Is(err, service.ErrInvalidShiftTypeReference):
		response.BadRequest(c, 14005, "Invalid shift type reference")
	case errors.Is(err, service.ErrShiftUserMismatch):
		response.BadRequest(c, 14006, "User ID in body does not match the URL")
	case errors.Is(err, service.ErrShiftInUse):
		response.BadRequest(c, 14007, "Cannot delete shift that is referenced by overtime requests")
	case errors.Is(err, service.ErrTooManyOccurrences):
		response.BadRequest(c, 14009, "Recurrence rule produces too many shifts")
	case errors.Is(err, service.ErrInvalidRecurrenceRule):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14008, "Invalid recurrence rule", err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "Access denied")
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
