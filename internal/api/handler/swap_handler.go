package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

// SwapHandler 换班申请模块 HTTP 处理器
type SwapHandler struct {
	svc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(svc service.SwapService) *SwapHandler {
	return &SwapHandler{svc: svc}
}

// ListSwapRequests 全部换班申请（管理员）
// GET /api/shift-swap-requests
func (h *SwapHandler) ListSwapRequests(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalErrorWithDetails(c, err)
		return
	}
	response.OK(c, list)
}

// ListUserSwapRequests 用户作为申请人或同事参与的换班申请
// GET /api/shift-swap-requests/user/:userid
func (h *SwapHandler) ListUserSwapRequests(c *gin.Context) {
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
		handleSwapError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateSwapRequest 发起换班申请
// POST /api/shift-swap-requests
func (h *SwapHandler) CreateSwapRequest(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateSwapRequest
	if !bindJSON(c, &req, "Missing required fields") {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		handleSwapError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateSwapStatus 审批换班申请（管理员）
// PUT /api/shift-swap-requests/:id
func (h *SwapHandler) UpdateSwapStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid swap request ID format")
	if !ok {
		return
	}

	var req dto.UpdateSwapStatusRequest
	if !bindJSON(c, &req, "Invalid status. Must be one of: Pending, Approved, Rejected") {
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleSwapError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteSwapRequest 删除换班申请（管理员）
// DELETE /api/shift-swap-requests/:id
func (h *SwapHandler) DeleteSwapRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid swap request ID format")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleSwapError(c, err)
		return
	}
	response.OKWithMessage(c, "Shift swap request deleted successfully", nil)
}

func handleSwapError(c *gin.Context, err error) {
	var missing *service.SwapShiftsMissingError
	switch {
	case errors.As(err, &missing):
		response.ErrorWithDetails(c, http.StatusNotFound, 16002, "One or both shifts not found", gin.H{
			"requestedShift": !missing.RequestedShift,
			"colleagueShift": !missing.ColleagueShift,
		})
	case errors.Is(err, service.ErrSwapRequestNotFound):
		response.NotFound(c, 16001, "Shift swap request not found")
	case errors.Is(err, service.ErrSwapShiftNotFound):
		response.NotFound(c, 16002, "One or both shifts not found")
	case errors.Is(err, service.ErrRequestedShiftNotOwned):
		response.Forbidden(c, 16003, "Requested shift does not belong to the requesting user")
	case errors.Is(err, service.ErrColleagueShiftNotOwned):
		response.Forbidden(c, 16004, "Colleague shift does not belong to the selected colleague")
	case errors.Is(err, service.ErrSwapSameUser):
		response.BadRequest(c, 16005, "Cannot swap shifts with yourself")
	case errors.Is(err, service.ErrInvalidSwapStatus):
		response.BadRequest(c, 16006, "Invalid status. Must be one of: Pending, Approved, Rejected")
	case errors.Is(err, service.ErrSwapRequestNotPending):
		response.BadRequest(c, 16007, "Shift swap request has already been processed")
	case errors.Is(err, service.ErrSwapOwnershipChanged):
		response.BadRequest(c, 16008, "Shift ownership changed since the request was made")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 16009, "User not found")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "Access denied")
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
