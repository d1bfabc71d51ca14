package model

import "time"

// User 用户表 — 对应 users
type User struct {
	UserID         string     `gorm:"column:userid;type:uuid;primaryKey;default:gen_random_uuid()" json:"userid"`
	FirstName      string     `gorm:"column:firstname;type:varchar(100);not null"                  json:"firstname"`
	LastName       string     `gorm:"column:lastname;type:varchar(100);not null"                   json:"lastname"`
	EmailAddress   string     `gorm:"column:emailaddress;type:varchar(255);not null;uniqueIndex"   json:"emailaddress"`
	Role           string     `gorm:"column:role;type:varchar(20);not null"                        json:"role"` // Admin | Agent
	PasswordHash   string     `gorm:"column:passwordhash;type:text;not null"                       json:"-"`
	EligibleShifts StringList `gorm:"column:eligibleshifts;type:text"                              json:"eligibleshifts"`
	CreatedDate    time.Time  `gorm:"column:createddate;not null"                                  json:"createddate"`
	UpdatedDate    time.Time  `gorm:"column:updateddate;not null"                                  json:"updateddate"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
