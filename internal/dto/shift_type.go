package dto

// ── 班次类型模块 DTO ──

// CreateShiftTypeRequest 创建班次类型请求
type CreateShiftTypeRequest struct {
	ShiftName       string  `json:"shiftname"       binding:"required,min=1,max=100"`
	DefaultDuration *int    `json:"defaultduration" binding:"required"`
	ShiftCategory   *string `json:"shiftcategory"   binding:"omitempty,max=50"`
}

// UpdateShiftTypeRequest 更新班次类型请求
type UpdateShiftTypeRequest struct {
	ShiftName       *string `json:"shiftname"       binding:"omitempty,min=1,max=100"`
	DefaultDuration *int    `json:"defaultduration"`
	ShiftCategory   *string `json:"shiftcategory"   binding:"omitempty,max=50"`
}

// ShiftTypeResponse 班次类型响应
type ShiftTypeResponse struct {
	ShiftTypeID     string  `json:"shifttypeid"`
	ShiftName       string  `json:"shiftname"`
	DefaultDuration int     `json:"defaultduration"`
	ShiftCategory   *string `json:"shiftcategory"`
	CreatedDate     string  `json:"createddate,omitempty"`
	UpdatedDate     string  `json:"updateddate,omitempty"`
}
