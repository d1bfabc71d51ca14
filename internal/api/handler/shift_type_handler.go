package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

// ShiftTypeHandler 班次类型模块 HTTP 处理器
type ShiftTypeHandler struct {
	svc service.ShiftTypeService
}

// NewShiftTypeHandler 创建 ShiftTypeHandler
func NewShiftTypeHandler(svc service.ShiftTypeService) *ShiftTypeHandler {
	return &ShiftTypeHandler{svc: svc}
}

// ListShiftTypes 班次类型列表
// GET /api/shift-types
func (h *ShiftTypeHandler) ListShiftTypes(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalErrorWithDetails(c, err)
		return
	}
	response.OK(c, list)
}

// CreateShiftType 创建班次类型
// POST /api/shift-types
func (h *ShiftTypeHandler) CreateShiftType(c *gin.Context) {
	var req dto.CreateShiftTypeRequest
	if !bindJSON(c, &req, "Missing required fields") {
		return
	}

	st, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handleShiftTypeError(c, err)
		return
	}
	response.Created(c, st)
}

// UpdateShiftType 更新班次类型
// PUT /api/shift-types/:id
func (h *ShiftTypeHandler) UpdateShiftType(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid shift type ID format")
	if !ok {
		return
	}

	var req dto.UpdateShiftTypeRequest
	if !bindJSON(c, &req, "Invalid shift type data") {
		return
	}

	st, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleShiftTypeError(c, err)
		return
	}
	response.OK(c, st)
}

// DeleteShiftType 删除班次类型
// DELETE /api/shift-types/:id
func (h *ShiftTypeHandler) DeleteShiftType(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid shift type ID format")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleShiftTypeError(c, err)
		return
	}
	response.OKWithMessage(c, "Shift type deleted successfully", nil)
}

func handleShiftTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.NotFound(c, 13001, "Shift type not found")
	case errors.Is(err, service.ErrShiftTypeInUse):
		response.BadRequest(c, 13002, "Cannot delete shift type that is being used by shifts")
	case errors.Is(err, service.ErrInvalidDefaultDuration):
		response.BadRequest(c, 13003, "Default duration must be a positive number")
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
