package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	FirstName      string   `json:"firstname"      binding:"required,min=1,max=100"`
	LastName       string   `json:"lastname"       binding:"required,min=1,max=100"`
	EmailAddress   string   `json:"emailaddress"   binding:"required,email,max=255"`
	Password       string   `json:"password"       binding:"required,min=8,max=72"`
	Role           string   `json:"role"           binding:"required,oneof=Admin Agent"`
	EligibleShifts []string `json:"eligibleshifts" binding:"omitempty,dive,min=1,max=50"`
}

// UpdateUserRequest 更新用户信息请求（仅更新非 nil 字段）
type UpdateUserRequest struct {
	FirstName      *string   `json:"firstname"      binding:"omitempty,min=1,max=100"`
	LastName       *string   `json:"lastname"       binding:"omitempty,min=1,max=100"`
	EmailAddress   *string   `json:"emailaddress"   binding:"omitempty,email,max=255"`
	Password       *string   `json:"password"       binding:"omitempty,min=8,max=72"`
	Role           *string   `json:"role"           binding:"omitempty,oneof=Admin Agent"`
	EligibleShifts *[]string `json:"eligibleshifts" binding:"omitempty,dive,min=1,max=50"`
}

// UserResponse 用户信息响应（不含密码哈希）
type UserResponse struct {
	UserID         string   `json:"userid"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	EmailAddress   string   `json:"emailaddress"`
	Role           string   `json:"role"`
	EligibleShifts []string `json:"eligibleshifts"`
	CreatedDate    string   `json:"createddate,omitempty"`
	UpdatedDate    string   `json:"updateddate,omitempty"`
}

// UserBrief 关联展示用的用户简要信息
type UserBrief struct {
	UserID       string `json:"userid"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	EmailAddress string `json:"emailaddress"`
}
