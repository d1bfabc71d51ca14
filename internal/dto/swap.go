package dto

// ── 换班申请模块 DTO ──

// CreateSwapRequest 创建换班申请
type CreateSwapRequest struct {
	RequestingUserID string `json:"requestingUserId" binding:"required,uuid4"`
	RequestedShiftID string `json:"requestedShiftId" binding:"required,uuid4"`
	ColleagueID      string `json:"colleagueId"      binding:"required,uuid4"`
	ColleagueShiftID string `json:"colleagueShiftId" binding:"required,uuid4"`
	Reason           string `json:"reason"           binding:"required,notblank,max=1000"`
	Status           string `json:"status"           binding:"omitempty,oneof=Pending"`
}

// UpdateSwapStatusRequest 审批换班申请
type UpdateSwapStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Approved Rejected"`
}

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID               string      `json:"id"`
	RequestingUserID string      `json:"requesting_user_id"`
	RequestedShiftID string      `json:"requested_shift_id"`
	ColleagueID      string      `json:"colleague_id"`
	ColleagueShiftID string      `json:"colleague_shift_id"`
	Reason           string      `json:"reason"`
	Status           string      `json:"status"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
	RequestingUser   *UserBrief  `json:"requestingUser,omitempty"`
	Colleague        *UserBrief  `json:"colleague,omitempty"`
	RequestedShift   *ShiftBrief `json:"requestedShift,omitempty"`
	ColleagueShift   *ShiftBrief `json:"colleagueShift,omitempty"`
}
