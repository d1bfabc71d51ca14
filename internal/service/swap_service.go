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

// ── 换班模块业务错误 ──

var (
	ErrSwapRequestNotFound    = errors.New("换班申请不存在")
	ErrSwapShiftNotFound      = errors.New("换班涉及的班次不存在")
	ErrRequestedShiftNotOwned = errors.New("申请换出的班次不属于申请人")
	ErrColleagueShiftNotOwned = errors.New("换入的班次不属于所选同事")
	ErrSwapSameUser           = errors.New("不能与自己换班")
	ErrInvalidSwapStatus      = errors.New("状态只能为 Pending、Approved 或 Rejected")
	ErrSwapRequestNotPending  = errors.New("换班申请已处理，不能再变更")
	ErrSwapOwnershipChanged   = errors.New("班次持有人已变更，无法完成换班")
)

// SwapShiftsMissingError 标明哪一侧班次不存在
type SwapShiftsMissingError struct {
	RequestedShift bool
	ColleagueShift bool
}

func (e *SwapShiftsMissingError) Error() string { return ErrSwapShiftNotFound.Error() }

func (e *SwapShiftsMissingError) Unwrap() error { return ErrSwapShiftNotFound }

// SwapService 换班申请业务接口
type SwapService interface {
	List(ctx context.Context) ([]dto.SwapRequestResponse, error)
	ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.SwapRequestResponse, error)
	Create(ctx context.Context, req *dto.CreateSwapRequest, callerID, callerRole string) (*dto.SwapRequestResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*dto.SwapRequestResponse, error)
	Delete(ctx context.Context, id string) error
}

type swapService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, logger: logger}
}

func (s *swapService) List(ctx context.Context) ([]dto.SwapRequestResponse, error) {
	reqs, err := s.repo.SwapRequest.List(ctx)
	if err != nil {
		s.logger.Error("列出换班申请失败", zap.Error(err))
		return nil, err
	}
	return toSwapResponses(reqs), nil
}

func (s *swapService) ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.SwapRequestResponse, error) {
	if callerRole != model.RoleAdmin && callerID != userID {
		return nil, ErrNoPermission
	}

	reqs, err := s.repo.SwapRequest.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户换班申请失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toSwapResponses(reqs), nil
}

// ────────────────────── Create ──────────────────────

func (s *swapService) Create(ctx context.Context, req *dto.CreateSwapRequest, callerID, callerRole string) (*dto.SwapRequestResponse, error) {
	// 非管理员只能以自己的身份发起
	if callerRole != model.RoleAdmin && req.RequestingUserID != callerID {
		return nil, ErrNoPermission
	}
	if req.RequestingUserID == req.ColleagueID {
		return nil, ErrSwapSameUser
	}

	requested, err := s.findShift(ctx, req.RequestedShiftID)
	if err != nil {
		return nil, err
	}
	colleague, err := s.findShift(ctx, req.ColleagueShiftID)
	if err != nil {
		return nil, err
	}
	if requested == nil || colleague == nil {
		return nil, &SwapShiftsMissingError{
			RequestedShift: requested == nil,
			ColleagueShift: colleague == nil,
		}
	}

	if requested.UserID != req.RequestingUserID {
		return nil, ErrRequestedShiftNotOwned
	}
	if colleague.UserID != req.ColleagueID {
		return nil, ErrColleagueShiftNotOwned
	}

	now := time.Now().UTC()
	swap := &model.ShiftSwapRequest{
		RequestingUserID: req.RequestingUserID,
		RequestedShiftID: req.RequestedShiftID,
		ColleagueID:      req.ColleagueID,
		ColleagueShiftID: req.ColleagueShiftID,
		Reason:           req.Reason,
		Status:           model.SwapStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.SwapRequest.Create(ctx, swap); err != nil {
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}

	return s.loadDetail(ctx, swap.ID)
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 审批换班申请
// 批准时在同一事务内锁定申请与双方班次，复核持有人后互换
func (s *swapService) UpdateStatus(ctx context.Context, id, status string) (*dto.SwapRequestResponse, error) {
	switch status {
	case model.SwapStatusPending, model.SwapStatusApproved, model.SwapStatusRejected:
	default:
		return nil, ErrInvalidSwapStatus
	}

	err := s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		swap, err := txRepo.SwapRequest.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSwapRequestNotFound
			}
			return err
		}

		if swap.IsTerminal() {
			return ErrSwapRequestNotPending
		}
		if status == model.SwapStatusPending {
			return nil
		}

		now := time.Now().UTC()
		swap.Status = status
		swap.UpdatedAt = now
		if err := txRepo.SwapRequest.Update(ctx, swap); err != nil {
			return err
		}

		if status == model.SwapStatusApproved {
			return swapOwners(ctx, txRepo, swap, now)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSwapRequestNotFound),
			errors.Is(err, ErrSwapRequestNotPending),
			errors.Is(err, ErrSwapOwnershipChanged):
		default:
			s.logger.Error("审批换班申请失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("换班申请状态更新", zap.String("id", id), zap.String("status", status))
	return s.loadDetail(ctx, id)
}

// swapOwners 互换两个班次的持有人
// 按主键顺序加锁，避免两个审批交叉等待
func swapOwners(ctx context.Context, txRepo *repository.Repository, swap *model.ShiftSwapRequest, now time.Time) error {
	firstID, secondID := swap.RequestedShiftID, swap.ColleagueShiftID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	locked := make(map[string]*model.Shift, 2)
	for _, id := range []string{firstID, secondID} {
		sh, err := txRepo.Shift.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSwapOwnershipChanged
			}
			return err
		}
		locked[id] = sh
	}

	requested := locked[swap.RequestedShiftID]
	colleague := locked[swap.ColleagueShiftID]
	if requested.UserID != swap.RequestingUserID || colleague.UserID != swap.ColleagueID {
		return ErrSwapOwnershipChanged
	}

	if err := txRepo.Shift.UpdateOwner(ctx, requested.ShiftID, colleague.UserID, now); err != nil {
		return err
	}
	return txRepo.Shift.UpdateOwner(ctx, colleague.ShiftID, requested.UserID, now)
}

// ────────────────────── Delete ──────────────────────

func (s *swapService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.SwapRequest.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapRequestNotFound
		}
		s.logger.Error("查询换班申请失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.SwapRequest.Delete(ctx, id); err != nil {
		s.logger.Error("删除换班申请失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// findShift 班次不存在时返回 nil, nil
func (s *swapService) findShift(ctx context.Context, id string) (*model.Shift, error) {
	sh, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sh, nil
}

func (s *swapService) loadDetail(ctx context.Context, id string) (*dto.SwapRequestResponse, error) {
	swap, err := s.repo.SwapRequest.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapRequestNotFound
		}
		s.logger.Error("加载换班申请详情失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSwapResponse(swap), nil
}

func toSwapResponses(reqs []model.ShiftSwapRequest) []dto.SwapRequestResponse {
	result := make([]dto.SwapRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toSwapResponse(&reqs[i]))
	}
	return result
}

func toSwapResponse(r *model.ShiftSwapRequest) *dto.SwapRequestResponse {
	return &dto.SwapRequestResponse{
		ID:               r.ID,
		RequestingUserID: r.RequestingUserID,
		RequestedShiftID: r.RequestedShiftID,
		ColleagueID:      r.ColleagueID,
		ColleagueShiftID: r.ColleagueShiftID,
		Reason:           r.Reason,
		Status:           r.Status,
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
		RequestingUser:   toUserBrief(r.RequestingUser),
		Colleague:        toUserBrief(r.Colleague),
		RequestedShift:   toShiftBrief(r.RequestedShift),
		ColleagueShift:   toShiftBrief(r.ColleagueShift),
	}
}
