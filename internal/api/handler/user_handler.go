package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表（管理员）
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.InternalErrorWithDetails(c, err)
		return
	}
	response.OK(c, users)
}

// CreateUser 创建用户（管理员）
// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req, "Error creating user") {
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.Created(c, user)
}

// UpdateUser 更新用户，管理员或本人
// PUT /api/users/:userid
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, "Error updating user") {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser 删除用户（管理员）
// DELETE /api/users/:userid
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		handleUserError(c, err)
		return
	}
	response.OKWithMessage(c, "User deleted", nil)
}

// UpdatePassword 修改密码，本人或管理员
// PUT /api/users/:userid/update-password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	id, ok := uuidParam(c, "userid", "Invalid user ID format")
	if !ok {
		return
	}
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req, "All password fields are required") {
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), id, &req, callerID, callerRole); err != nil {
		handleUserError(c, err)
		return
	}
	response.OKWithMessage(c, "Password updated successfully", nil)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "User not found")
	case errors.Is(err, service.ErrEmailExists):
		response.BadRequest(c, 12002, "Email address already in use")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12003, "You cannot delete your own account")
	case errors.Is(err, service.ErrUserInUse):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12004,
			"Error deleting user. Please ensure the user has no shifts or pending overtime/shift swap requests", err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 12005, "Access denied")
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 12006, "New passwords do not match")
	case errors.Is(err, service.ErrCurrentPasswordIncorrect):
		response.BadRequest(c, 12007, "Current password is incorrect")
	default:
		response.InternalErrorWithDetails(c, err)
	}
}
