package dto

import "time"

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// userid 取自路径参数，请求体中若出现必须一致
type CreateShiftRequest struct {
	ShiftTypeID    string    `json:"shifttypeid"    binding:"required,uuid4"`
	UserID         string    `json:"userid"         binding:"omitempty,uuid4"`
	ShiftStartTime time.Time `json:"shiftstarttime" binding:"required"`
	ShiftEndTime   time.Time `json:"shiftendtime"   binding:"required"`
	ShiftLocation  string    `json:"shiftlocation"  binding:"required,notblank,max=255"`
	AssignedBy     string    `json:"assignedby"     binding:"required,uuid4"`
}

// CreateRecurringShiftRequest 按 RRULE 批量创建班次
// 每次出现沿用首个班次的时长
type CreateRecurringShiftRequest struct {
	CreateShiftRequest
	RRule string `json:"rrule" binding:"required,max=500"`
}

// UpdateShiftRequest 更新班次请求（部分更新）
type UpdateShiftRequest struct {
	ShiftTypeID    *string    `json:"shifttypeid"    binding:"omitempty,uuid4"`
	UserID         *string    `json:"userid"         binding:"omitempty,uuid4"`
	ShiftStartTime *time.Time `json:"shiftstarttime"`
	ShiftEndTime   *time.Time `json:"shiftendtime"`
	ShiftLocation  *string    `json:"shiftlocation"  binding:"omitempty,max=255"`
	AssignedBy     *string    `json:"assignedby"     binding:"omitempty,uuid4"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ShiftID        string             `json:"shiftid"`
	ShiftTypeID    string             `json:"shifttypeid"`
	UserID         string             `json:"userid"`
	ShiftStartTime string             `json:"shiftstarttime"`
	ShiftEndTime   string             `json:"shiftendtime"`
	ShiftDuration  int                `json:"shiftduration"`
	ShiftLocation  string             `json:"shiftlocation"`
	AssignedBy     string             `json:"assignedby"`
	CreatedDate    string             `json:"createddate,omitempty"`
	UpdatedDate    string             `json:"updateddate,omitempty"`
	ShiftType      *ShiftTypeResponse `json:"ShiftType,omitempty"`
}

// ShiftBrief 关联展示用的班次简要信息
type ShiftBrief struct {
	ShiftID        string `json:"shiftid"`
	ShiftStartTime string `json:"shiftstarttime"`
	ShiftEndTime   string `json:"shiftendtime"`
	ShiftLocation  string `json:"shiftlocation"`
}

// RecurringShiftResponse 批量创建结果
type RecurringShiftResponse struct {
	Created int             `json:"created"`
	Shifts  []ShiftResponse `json:"shifts"`
}
