package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
)

// ── 加班申请模块业务错误 ──

var (
	ErrOvertimeNotFound         = errors.New("加班申请不存在")
	ErrShiftNotOvertimeEligible = errors.New("班次不存在或不可申请加班")
	ErrOvertimeNotPending       = errors.New("只能审批待处理的加班申请")
	ErrInvalidOvertimeStatus    = errors.New("状态只能为 approved 或 rejected")
)

// OvertimeService 加班申请业务接口
type OvertimeService interface {
	List(ctx context.Context) ([]dto.OvertimeResponse, error)
	ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.OvertimeResponse, error)
	Create(ctx context.Context, req *dto.CreateOvertimeRequest, callerID, callerRole string) (*dto.OvertimeResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*dto.OvertimeResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type overtimeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOvertimeService 创建 OvertimeService 实例
func NewOvertimeService(repo *repository.Repository, logger *zap.Logger) OvertimeService {
	return &overtimeService{repo: repo, logger: logger}
}

func (s *overtimeService) List(ctx context.Context) ([]dto.OvertimeResponse, error) {
	reqs, err := s.repo.Overtime.List(ctx)
	if err != nil {
		s.logger.Error("列出加班申请失败", zap.Error(err))
		return nil, err
	}
	return toOvertimeResponses(reqs), nil
}

func (s *overtimeService) ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.OvertimeResponse, error) {
	if callerRole != model.RoleAdmin && callerID != userID {
		return nil, ErrNoPermission
	}

	reqs, err := s.repo.Overtime.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户加班申请失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toOvertimeResponses(reqs), nil
}

// ────────────────────── Create ──────────────────────

func (s *overtimeService) Create(ctx context.Context, req *dto.CreateOvertimeRequest, callerID, callerRole string) (*dto.OvertimeResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = callerID
	}
	// 非管理员只能为自己申请
	if callerRole != model.RoleAdmin && userID != callerID {
		return nil, ErrNoPermission
	}

	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotOvertimeEligible
		}
		s.logger.Error("查询班次失败", zap.String("id", req.ShiftID), zap.Error(err))
		return nil, err
	}
	if shift.ShiftType == nil || !shift.ShiftType.IsOvertime() {
		return nil, ErrShiftNotOvertimeEligible
	}

	duration, err := CalculateShiftDuration(shift.ShiftStartTime, shift.ShiftEndTime)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidUserReference
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	ot := &model.OvertimeRequest{
		UserID:           userID,
		ShiftID:          shift.ShiftID,
		OvertimeDuration: duration,
		Status:           model.OvertimeStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Overtime.Create(ctx, ot); err != nil {
		s.logger.Error("创建加班申请失败", zap.Error(err))
		return nil, err
	}

	ot.User = user
	ot.Shift = shift
	return toOvertimeResponse(ot), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *overtimeService) UpdateStatus(ctx context.Context, id, status string) (*dto.OvertimeResponse, error) {
	if status != model.OvertimeStatusApproved && status != model.OvertimeStatusRejected {
		return nil, ErrInvalidOvertimeStatus
	}

	ot, err := s.repo.Overtime.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOvertimeNotFound
		}
		s.logger.Error("查询加班申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// pending 之外的状态均为终态
	if ot.Status != model.OvertimeStatusPending {
		return nil, ErrOvertimeNotPending
	}

	// 条件更新：并发审批时只有一方能从 pending 转出
	now := time.Now().UTC()
	updated, err := s.repo.Overtime.UpdateStatusIfPending(ctx, id, status, now)
	if err != nil {
		s.logger.Error("更新加班申请状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !updated {
		return nil, ErrOvertimeNotPending
	}
	ot.Status = status
	ot.UpdatedAt = now

	s.logger.Info("加班申请已审批", zap.String("id", id), zap.String("status", status))
	return toOvertimeResponse(ot), nil
}

// ────────────────────── Delete ──────────────────────

func (s *overtimeService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	ot, err := s.repo.Overtime.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOvertimeNotFound
		}
		s.logger.Error("查询加班申请失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if callerRole != model.RoleAdmin && ot.UserID != callerID {
		return ErrNoPermission
	}

	if err := s.repo.Overtime.Delete(ctx, id); err != nil {
		s.logger.Error("删除加班申请失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toOvertimeResponses(reqs []model.OvertimeRequest) []dto.OvertimeResponse {
	result := make([]dto.OvertimeResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toOvertimeResponse(&reqs[i]))
	}
	return result
}

func toOvertimeResponse(ot *model.OvertimeRequest) *dto.OvertimeResponse {
	resp := &dto.OvertimeResponse{
		RequestID:        ot.RequestID,
		UserID:           ot.UserID,
		ShiftID:          ot.ShiftID,
		OvertimeDuration: ot.OvertimeDuration,
		OvertimeHours:    minutesToHours(ot.OvertimeDuration).StringFixed(2),
		Status:           ot.Status,
		CreatedAt:        formatTime(ot.CreatedAt),
		UpdatedAt:        formatTime(ot.UpdatedAt),
		User:             toUserBrief(ot.User),
	}
	if ot.Shift != nil {
		resp.Shift = toShiftResponse(ot.Shift)
	}
	return resp
}
