package model

import "time"

// ShiftType 班次类型表 — 对应 shifttype
type ShiftType struct {
	ShiftTypeID     string    `gorm:"column:shifttypeid;type:uuid;primaryKey;default:gen_random_uuid()" json:"shifttypeid"`
	ShiftName       string    `gorm:"column:shiftname;type:varchar(100);not null"                       json:"shiftname"`
	DefaultDuration int       `gorm:"column:defaultduration;not null"                                   json:"defaultduration"` // 分钟
	ShiftCategory   *string   `gorm:"column:shiftcategory;type:varchar(50)"                             json:"shiftcategory"`
	CreatedDate     time.Time `gorm:"column:createddate;not null"                                       json:"createddate"`
	UpdatedDate     time.Time `gorm:"column:updateddate;not null"                                       json:"updateddate"`
}

// TableName 指定表名
func (ShiftType) TableName() string { return "shifttype" }

// IsOvertime 该类型的班次是否可申请加班
func (t *ShiftType) IsOvertime() bool {
	return t.ShiftCategory != nil && *t.ShiftCategory == ShiftCategoryOvertime
}
