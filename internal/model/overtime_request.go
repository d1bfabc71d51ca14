package model

import "time"

// OvertimeRequest 加班申请表 — 对应 overtime_requests
type OvertimeRequest struct {
	RequestID        string    `gorm:"column:requestid;type:uuid;primaryKey;default:gen_random_uuid()" json:"requestid"`
	UserID           string    `gorm:"column:userid;type:uuid;not null"                                json:"userid"`
	ShiftID          string    `gorm:"column:shiftid;type:uuid;not null"                               json:"shiftid"`
	OvertimeDuration int       `gorm:"column:overtimeduration;not null"                                json:"overtimeduration"` // 分钟，创建时快照
	Status           string    `gorm:"column:status;type:varchar(20);not null;default:'pending'"       json:"status"`           // pending | approved | rejected
	CreatedAt        time.Time `gorm:"column:created_at;not null"                                      json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"                                      json:"updated_at"`

	// 关联
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"User,omitempty"`
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"Shift,omitempty"`
}

// TableName 指定表名
func (OvertimeRequest) TableName() string { return "overtime_requests" }
