package handler

import "github.com/SimbaKVis/backend-main/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	ShiftType *ShiftTypeHandler
	Shift     *ShiftHandler
	Overtime  *OvertimeHandler
	Swap      *SwapHandler
	Report    *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User),
		ShiftType: NewShiftTypeHandler(svc.ShiftType),
		Shift:     NewShiftHandler(svc.Shift),
		Overtime:  NewOvertimeHandler(svc.Overtime),
		Swap:      NewSwapHandler(svc.Swap),
		Report:    NewReportHandler(svc.Export),
	}
}
