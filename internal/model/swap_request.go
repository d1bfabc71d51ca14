package model

import "time"

// ShiftSwapRequest 换班申请表 — 对应 shift_swap_requests
type ShiftSwapRequest struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestingUserID string    `gorm:"column:requesting_user_id;type:uuid;not null"             json:"requesting_user_id"`
	RequestedShiftID string    `gorm:"column:requested_shift_id;type:uuid;not null"             json:"requested_shift_id"`
	ColleagueID      string    `gorm:"column:colleague_id;type:uuid;not null"                   json:"colleague_id"`
	ColleagueShiftID string    `gorm:"column:colleague_shift_id;type:uuid;not null"             json:"colleague_shift_id"`
	Reason           string    `gorm:"column:reason;type:text;not null"                         json:"reason"`
	Status           string    `gorm:"column:status;type:varchar(20);not null;default:'Pending'" json:"status"` // Pending | Approved | Rejected
	CreatedAt        time.Time `gorm:"column:created_at;not null"                               json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"                               json:"updated_at"`

	// 关联
	RequestingUser *User  `gorm:"foreignKey:RequestingUserID;references:UserID"  json:"requestingUser,omitempty"`
	Colleague      *User  `gorm:"foreignKey:ColleagueID;references:UserID"       json:"colleague,omitempty"`
	RequestedShift *Shift `gorm:"foreignKey:RequestedShiftID;references:ShiftID" json:"requestedShift,omitempty"`
	ColleagueShift *Shift `gorm:"foreignKey:ColleagueShiftID;references:ShiftID" json:"colleagueShift,omitempty"`
}

// TableName 指定表名
func (ShiftSwapRequest) TableName() string { return "shift_swap_requests" }

// IsTerminal 已审批或已拒绝的申请不可再变更
func (r *ShiftSwapRequest) IsTerminal() bool {
	return r.Status == SwapStatusApproved || r.Status == SwapStatusRejected
}
