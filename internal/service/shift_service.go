package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
)

// maxRecurringOccurrences 单次批量创建的班次上限
const maxRecurringOccurrences = 366

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound             = errors.New("班次不存在")
	ErrInvalidUserReference      = errors.New("用户引用无效")
	ErrInvalidShiftTypeReference = errors.New("班次类型引用无效")
	ErrShiftUserMismatch         = errors.New("请求体中的 userid 与路径参数不一致")
	ErrShiftInUse                = errors.New("班次仍被加班申请引用")
	ErrInvalidRecurrenceRule     = errors.New("重复规则无效")
	ErrTooManyOccurrences        = fmt.Errorf("重复规则生成的班次超过上限 %d 个", maxRecurringOccurrences)
)

// ShiftService 班次业务接口
type ShiftService interface {
	ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.ShiftResponse, error)
	Create(ctx context.Context, userID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	CreateRecurring(ctx context.Context, userID string, req *dto.CreateRecurringShiftRequest) (*dto.RecurringShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string) error
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

// ────────────────────── ListByUser ──────────────────────

func (s *shiftService) ListByUser(ctx context.Context, userID, callerID, callerRole string) ([]dto.ShiftResponse, error) {
	if callerRole != model.RoleAdmin && callerID != userID {
		return nil, ErrNoPermission
	}

	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户班次失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, userID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if req.UserID != "" && req.UserID != userID {
		return nil, ErrShiftUserMismatch
	}

	duration, err := CalculateShiftDuration(req.ShiftStartTime, req.ShiftEndTime)
	if err != nil {
		return nil, err
	}

	shiftType, err := s.checkReferences(ctx, userID, req.AssignedBy, req.ShiftTypeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shift := &model.Shift{
		ShiftTypeID:    req.ShiftTypeID,
		UserID:         userID,
		ShiftStartTime: req.ShiftStartTime.UTC(),
		ShiftEndTime:   req.ShiftEndTime.UTC(),
		ShiftDuration:  duration,
		ShiftLocation:  req.ShiftLocation,
		AssignedBy:     req.AssignedBy,
		CreatedDate:    now,
		UpdatedDate:    now,
	}

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	shift.ShiftType = shiftType
	return toShiftResponse(shift), nil
}

// ────────────────────── CreateRecurring ──────────────────────

func (s *shiftService) CreateRecurring(ctx context.Context, userID string, req *dto.CreateRecurringShiftRequest) (*dto.RecurringShiftResponse, error) {
	if req.UserID != "" && req.UserID != userID {
		return nil, ErrShiftUserMismatch
	}

	// 每次出现沿用首个班次的时长
	duration, err := CalculateShiftDuration(req.ShiftStartTime, req.ShiftEndTime)
	if err != nil {
		return nil, err
	}
	length := req.ShiftEndTime.Sub(req.ShiftStartTime)

	starts, err := expandRecurrence(req.RRule, req.ShiftStartTime)
	if err != nil {
		return nil, err
	}

	shiftType, err := s.checkReferences(ctx, userID, req.AssignedBy, req.ShiftTypeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shifts := make([]model.Shift, 0, len(starts))
	for _, start := range starts {
		shifts = append(shifts, model.Shift{
			ShiftTypeID:    req.ShiftTypeID,
			UserID:         userID,
			ShiftStartTime: start.UTC(),
			ShiftEndTime:   start.Add(length).UTC(),
			ShiftDuration:  duration,
			ShiftLocation:  req.ShiftLocation,
			AssignedBy:     req.AssignedBy,
			CreatedDate:    now,
			UpdatedDate:    now,
		})
	}

	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		return txRepo.Shift.CreateBatch(ctx, shifts)
	})
	if err != nil {
		s.logger.Error("批量创建班次失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量创建班次",
		zap.String("user_id", userID),
		zap.Int("count", len(shifts)),
	)

	result := &dto.RecurringShiftResponse{
		Created: len(shifts),
		Shifts:  make([]dto.ShiftResponse, 0, len(shifts)),
	}
	for i := range shifts {
		shifts[i].ShiftType = shiftType
		result.Shifts = append(result.Shifts, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// expandRecurrence 按 RFC 5545 RRULE 展开开始时间，首次出现即 dtstart
func expandRecurrence(rule string, dtstart time.Time) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrenceRule, err)
	}
	opt.Dtstart = dtstart
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrenceRule, err)
	}

	var starts []time.Time
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(starts) == maxRecurringOccurrences {
			return nil, ErrTooManyOccurrences
		}
		starts = append(starts, t)
	}

	if len(starts) == 0 {
		return nil, ErrInvalidRecurrenceRule
	}
	return starts, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	fields := make(map[string]interface{})

	if req.UserID != nil {
		if err := s.checkUser(ctx, *req.UserID); err != nil {
			return nil, err
		}
		fields["userid"] = *req.UserID
	}
	if req.AssignedBy != nil {
		if err := s.checkUser(ctx, *req.AssignedBy); err != nil {
			return nil, err
		}
		fields["assignedby"] = *req.AssignedBy
	}
	if req.ShiftTypeID != nil {
		if _, err := s.repo.ShiftType.GetByID(ctx, *req.ShiftTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidShiftTypeReference
			}
			return nil, err
		}
		fields["shifttypeid"] = *req.ShiftTypeID
	}
	if req.ShiftLocation != nil {
		fields["shiftlocation"] = *req.ShiftLocation
	}

	// 行锁与换班审批互斥；只写入提交的列，持有人不会被旧值覆盖
	err := s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		current, err := txRepo.Shift.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShiftNotFound
			}
			return err
		}

		// 任一时间字段变更都重新计算时长
		if req.ShiftStartTime != nil || req.ShiftEndTime != nil {
			start, end := current.ShiftStartTime, current.ShiftEndTime
			if req.ShiftStartTime != nil {
				start = req.ShiftStartTime.UTC()
				fields["shiftstarttime"] = start
			}
			if req.ShiftEndTime != nil {
				end = req.ShiftEndTime.UTC()
				fields["shiftendtime"] = end
			}
			duration, err := CalculateShiftDuration(start, end)
			if err != nil {
				return err
			}
			fields["shiftduration"] = duration
		}
		fields["updateddate"] = time.Now().UTC()

		return txRepo.Shift.Update(ctx, id, fields)
	})
	if err != nil {
		if !errors.Is(err, ErrShiftNotFound) && !errors.Is(err, ErrInvalidShiftTime) {
			s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toShiftResponse(shift), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id string) error {
	var removedSwaps int64

	err := s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Shift.GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShiftNotFound
			}
			return err
		}

		n, err := txRepo.SwapRequest.DeleteByShift(ctx, id)
		if err != nil {
			return err
		}
		removedSwaps = n

		if err := txRepo.Shift.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrShiftInUse
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrShiftNotFound) && !errors.Is(err, ErrShiftInUse) {
			s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("班次已删除",
		zap.String("id", id),
		zap.Int64("removed_swap_requests", removedSwaps),
	)
	return nil
}

// ── 内部辅助方法 ──

// checkReferences 校验持有人、指派人与班次类型均存在
func (s *shiftService) checkReferences(ctx context.Context, userID, assignedBy, shiftTypeID string) (*model.ShiftType, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, assignedBy); err != nil {
		return nil, err
	}

	st, err := s.repo.ShiftType.GetByID(ctx, shiftTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidShiftTypeReference
		}
		s.logger.Error("查询班次类型失败", zap.String("id", shiftTypeID), zap.Error(err))
		return nil, err
	}
	return st, nil
}

func (s *shiftService) checkUser(ctx context.Context, id string) error {
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidUserReference
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toShiftResponse(sh *model.Shift) *dto.ShiftResponse {
	return &dto.ShiftResponse{
		ShiftID:        sh.ShiftID,
		ShiftTypeID:    sh.ShiftTypeID,
		UserID:         sh.UserID,
		ShiftStartTime: formatTime(sh.ShiftStartTime),
		ShiftEndTime:   formatTime(sh.ShiftEndTime),
		ShiftDuration:  sh.ShiftDuration,
		ShiftLocation:  sh.ShiftLocation,
		AssignedBy:     sh.AssignedBy,
		CreatedDate:    formatTime(sh.CreatedDate),
		UpdatedDate:    formatTime(sh.UpdatedDate),
		ShiftType:      toShiftTypeResponse(sh.ShiftType),
	}
}

func toShiftBrief(sh *model.Shift) *dto.ShiftBrief {
	if sh == nil {
		return nil
	}
	return &dto.ShiftBrief{
		ShiftID:        sh.ShiftID,
		ShiftStartTime: formatTime(sh.ShiftStartTime),
		ShiftEndTime:   formatTime(sh.ShiftEndTime),
		ShiftLocation:  sh.ShiftLocation,
	}
}
