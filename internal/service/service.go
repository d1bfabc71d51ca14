package service

import (
	"go.uber.org/zap"

	"github.com/SimbaKVis/backend-main/config"
	"github.com/SimbaKVis/backend-main/internal/repository"
	"github.com/SimbaKVis/backend-main/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	User      UserService
	ShiftType ShiftTypeService
	Shift     ShiftService
	Overtime  OvertimeService
	Swap      SwapService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:      NewUserService(repo, cfg.Auth.BcryptCost, logger),
		ShiftType: NewShiftTypeService(repo, logger),
		Shift:     NewShiftService(repo, logger),
		Overtime:  NewOvertimeService(repo, logger),
		Swap:      NewSwapService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
