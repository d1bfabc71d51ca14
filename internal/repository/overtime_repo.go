package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimbaKVis/backend-main/internal/model"
)

// OvertimeRepository 加班申请数据访问接口
type OvertimeRepository interface {
	Create(ctx context.Context, req *model.OvertimeRequest) error
	GetByID(ctx context.Context, id string) (*model.OvertimeRequest, error)
	// GetDetail 带用户与班次（含类型）关联
	GetDetail(ctx context.Context, id string) (*model.OvertimeRequest, error)
	// UpdateStatusIfPending 仅当申请仍为 pending 时写入新状态，返回是否命中
	UpdateStatusIfPending(ctx context.Context, id, status string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.OvertimeRequest, error)
	ListByUser(ctx context.Context, userID string) ([]model.OvertimeRequest, error)
	ListByShiftRange(ctx context.Context, from, to time.Time) ([]model.OvertimeRequest, error)
}

type overtimeRepo struct {
	db *gorm.DB
}

// NewOvertimeRepo 创建 OvertimeRepository 实例
func NewOvertimeRepo(db *gorm.DB) OvertimeRepository {
	return &overtimeRepo{db: db}
}

func (r *overtimeRepo) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User", selectUserBrief).
		Preload("Shift").
		Preload("Shift.ShiftType")
}

func (r *overtimeRepo) Create(ctx context.Context, req *model.OvertimeRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *overtimeRepo) GetByID(ctx context.Context, id string) (*model.OvertimeRequest, error) {
	var req model.OvertimeRequest
	err := r.db.WithContext(ctx).
		Where("requestid = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *overtimeRepo) GetDetail(ctx context.Context, id string) (*model.OvertimeRequest, error) {
	var req model.OvertimeRequest
	err := r.withDetails(ctx).
		Where("requestid = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *overtimeRepo) UpdateStatusIfPending(ctx context.Context, id, status string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OvertimeRequest{}).
		Where("requestid = ? AND status = ?", id, model.OvertimeStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *overtimeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("requestid = ?", id).
		Delete(&model.OvertimeRequest{}).Error
}

func (r *overtimeRepo) List(ctx context.Context) ([]model.OvertimeRequest, error) {
	var reqs []model.OvertimeRequest
	err := r.withDetails(ctx).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *overtimeRepo) ListByUser(ctx context.Context, userID string) ([]model.OvertimeRequest, error) {
	var reqs []model.OvertimeRequest
	err := r.withDetails(ctx).
		Where("userid = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListByShiftRange 查询班次开始时间落在 [from, to) 内的加班申请
func (r *overtimeRepo) ListByShiftRange(ctx context.Context, from, to time.Time) ([]model.OvertimeRequest, error) {
	var reqs []model.OvertimeRequest
	err := r.withDetails(ctx).
		Joins("JOIN shift ON shift.shiftid = overtime_requests.shiftid").
		Where("shift.shiftstarttime >= ? AND shift.shiftstarttime < ?", from, to).
		Order("shift.shiftstarttime ASC").
		Find(&reqs).Error
	return reqs, err
}
