package service

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidShiftTime 结束时间不晚于开始时间，或时长四舍五入后不为正
var ErrInvalidShiftTime = errors.New("结束时间必须晚于开始时间")

// CalculateShiftDuration 计算班次时长（分钟，四舍五入）
func CalculateShiftDuration(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, ErrInvalidShiftTime
	}
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes <= 0 {
		return 0, ErrInvalidShiftTime
	}
	return minutes, nil
}

// minutesToHours 分钟换算为小时，保留两位小数
func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}
