package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ── 角色与状态常量 ──

const (
	RoleAdmin = "Admin"
	RoleAgent = "Agent"
)

// ShiftCategoryOvertime 可申请加班的班次类别
const ShiftCategoryOvertime = "Overtime"

// 加班申请状态（小写，沿用原有数据）
const (
	OvertimeStatusPending  = "pending"
	OvertimeStatusApproved = "approved"
	OvertimeStatusRejected = "rejected"
)

// 换班申请状态
const (
	SwapStatusPending  = "Pending"
	SwapStatusApproved = "Approved"
	SwapStatusRejected = "Rejected"
)

// ── JSON 文本列自定义类型 ──

// StringList 以 JSON 数组文本存储的字符串列表，实现 GORM Scanner/Valuer 接口。
// 对应 users.eligibleshifts 这类 TEXT 列，NULL 映射为 nil。
type StringList []string

// Scan 将 ["a","b"] 文本解析为 []string。
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList.Scan: invalid json %q: %w", raw, err)
	}
	*l = out
	return nil
}

// Value 将 []string 序列化为 JSON 文本。
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
