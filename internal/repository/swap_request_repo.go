package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimbaKVis/backend-main/internal/model"
)

// SwapRequestRepository 换班申请数据访问接口
type SwapRequestRepository interface {
	Create(ctx context.Context, req *model.ShiftSwapRequest) error
	GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	// GetByIDForUpdate 加行锁读取，须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	// GetDetail 带双方用户与班次的展示字段
	GetDetail(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	Update(ctx context.Context, req *model.ShiftSwapRequest) error
	Delete(ctx context.Context, id string) error
	// DeleteByShift 删除任一侧引用该班次的申请
	DeleteByShift(ctx context.Context, shiftID string) (int64, error)
	List(ctx context.Context) ([]model.ShiftSwapRequest, error)
	ListByUser(ctx context.Context, userID string) ([]model.ShiftSwapRequest, error)
}

type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实例
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("RequestingUser", selectUserBrief).
		Preload("Colleague", selectUserBrief).
		Preload("RequestedShift", selectShiftBrief).
		Preload("ColleagueShift", selectShiftBrief)
}

func (r *swapRequestRepo) Create(ctx context.Context, req *model.ShiftSwapRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) GetDetail(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := r.withDetails(ctx).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) Update(ctx context.Context, req *model.ShiftSwapRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

func (r *swapRequestRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ShiftSwapRequest{}).Error
}

func (r *swapRequestRepo) DeleteByShift(ctx context.Context, shiftID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("requested_shift_id = ? OR colleague_shift_id = ?", shiftID, shiftID).
		Delete(&model.ShiftSwapRequest{})
	return result.RowsAffected, result.Error
}

func (r *swapRequestRepo) List(ctx context.Context) ([]model.ShiftSwapRequest, error) {
	var reqs []model.ShiftSwapRequest
	err := r.withDetails(ctx).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *swapRequestRepo) ListByUser(ctx context.Context, userID string) ([]model.ShiftSwapRequest, error) {
	var reqs []model.ShiftSwapRequest
	err := r.withDetails(ctx).
		Where("requesting_user_id = ? OR colleague_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}
