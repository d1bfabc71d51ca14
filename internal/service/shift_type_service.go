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

// ── 班次类型模块业务错误 ──

var (
	ErrShiftTypeNotFound      = errors.New("班次类型不存在")
	ErrShiftTypeInUse         = errors.New("班次类型仍被班次使用")
	ErrInvalidDefaultDuration = errors.New("默认时长必须为正数")
)

// ShiftTypeService 班次类型业务接口
type ShiftTypeService interface {
	List(ctx context.Context) ([]dto.ShiftTypeResponse, error)
	Create(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type shiftTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftTypeService 创建 ShiftTypeService 实例
func NewShiftTypeService(repo *repository.Repository, logger *zap.Logger) ShiftTypeService {
	return &shiftTypeService{repo: repo, logger: logger}
}

func (s *shiftTypeService) List(ctx context.Context) ([]dto.ShiftTypeResponse, error) {
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("列出班次类型失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftTypeResponse, 0, len(types))
	for i := range types {
		result = append(result, *toShiftTypeResponse(&types[i]))
	}
	return result, nil
}

func (s *shiftTypeService) Create(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	if req.DefaultDuration == nil || *req.DefaultDuration <= 0 {
		return nil, ErrInvalidDefaultDuration
	}

	now := time.Now().UTC()
	st := &model.ShiftType{
		ShiftName:       req.ShiftName,
		DefaultDuration: *req.DefaultDuration,
		ShiftCategory:   req.ShiftCategory,
		CreatedDate:     now,
		UpdatedDate:     now,
	}

	if err := s.repo.ShiftType.Create(ctx, st); err != nil {
		s.logger.Error("创建班次类型失败", zap.Error(err))
		return nil, err
	}

	return toShiftTypeResponse(st), nil
}

func (s *shiftTypeService) Update(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	st, err := s.repo.ShiftType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.DefaultDuration != nil {
		if *req.DefaultDuration <= 0 {
			return nil, ErrInvalidDefaultDuration
		}
		st.DefaultDuration = *req.DefaultDuration
		fields["defaultduration"] = st.DefaultDuration
	}
	if req.ShiftName != nil {
		st.ShiftName = *req.ShiftName
		fields["shiftname"] = st.ShiftName
	}
	if req.ShiftCategory != nil {
		st.ShiftCategory = req.ShiftCategory
		fields["shiftcategory"] = *st.ShiftCategory
	}
	st.UpdatedDate = time.Now().UTC()
	fields["updateddate"] = st.UpdatedDate

	if err := s.repo.ShiftType.Update(ctx, id, fields); err != nil {
		s.logger.Error("更新班次类型失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toShiftTypeResponse(st), nil
}

func (s *shiftTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.ShiftType.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.String("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Shift.CountByShiftType(ctx, id)
	if err != nil {
		s.logger.Error("统计班次引用失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrShiftTypeInUse
	}

	if err := s.repo.ShiftType.Delete(ctx, id); err != nil {
		// 统计与删除之间有新班次引用时由外键兜底
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrShiftTypeInUse
		}
		s.logger.Error("删除班次类型失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

func toShiftTypeResponse(st *model.ShiftType) *dto.ShiftTypeResponse {
	if st == nil {
		return nil
	}
	return &dto.ShiftTypeResponse{
		ShiftTypeID:     st.ShiftTypeID,
		ShiftName:       st.ShiftName,
		DefaultDuration: st.DefaultDuration,
		ShiftCategory:   st.ShiftCategory,
		CreatedDate:     formatTime(st.CreatedDate),
		UpdatedDate:     formatTime(st.UpdatedDate),
	}
}
