package model

import "time"

// Shift 班次表 — 对应 shift
type Shift struct {
	ShiftID        string    `gorm:"column:shiftid;type:uuid;primaryKey;default:gen_random_uuid()" json:"shiftid"`
	ShiftTypeID    string    `gorm:"column:shifttypeid;type:uuid;not null"                         json:"shifttypeid"`
	UserID         string    `gorm:"column:userid;type:uuid;not null"                              json:"userid"` // 当前持有人
	ShiftStartTime time.Time `gorm:"column:shiftstarttime;not null"                                json:"shiftstarttime"`
	ShiftEndTime   time.Time `gorm:"column:shiftendtime;not null"                                  json:"shiftendtime"`
	ShiftDuration  int       `gorm:"column:shiftduration;not null"                                 json:"shiftduration"` // 分钟
	ShiftLocation  string    `gorm:"column:shiftlocation;type:varchar(255)"                        json:"shiftlocation"`
	AssignedBy     string    `gorm:"column:assignedby;type:uuid;not null"                          json:"assignedby"`
	CreatedDate    time.Time `gorm:"column:createddate;not null"                                   json:"createddate"`
	UpdatedDate    time.Time `gorm:"column:updateddate;not null"                                   json:"updateddate"`

	// 关联
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID" json:"ShiftType,omitempty"`
	User      *User      `gorm:"foreignKey:UserID;references:UserID"           json:"User,omitempty"`
	Assigner  *User      `gorm:"foreignKey:AssignedBy;references:UserID"       json:"AssignedByUser,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shift" }
