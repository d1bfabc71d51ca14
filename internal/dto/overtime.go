package dto

// ── 加班申请模块 DTO ──

// CreateOvertimeRequest 创建加班申请
// userid 为空时取当前登录用户
type CreateOvertimeRequest struct {
	UserID  string `json:"userid"  binding:"omitempty,uuid4"`
	ShiftID string `json:"shiftid" binding:"required,uuid4"`
}

// UpdateOvertimeStatusRequest 审批加班申请
type UpdateOvertimeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OvertimeResponse 加班申请响应
type OvertimeResponse struct {
	RequestID        string         `json:"requestid"`
	UserID           string         `json:"userid"`
	ShiftID          string         `json:"shiftid"`
	OvertimeDuration int            `json:"overtimeduration"`
	OvertimeHours    string         `json:"overtime_hours"` // 小时，保留两位小数
	Status           string         `json:"status"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	User             *UserBrief     `json:"User,omitempty"`
	Shift            *ShiftResponse `json:"Shift,omitempty"`
}
