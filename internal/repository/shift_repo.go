package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimbaKVis/backend-main/internal/model"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	CreateBatch(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	// GetByIDForUpdate 加行锁读取，须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Shift, error)
	// Update 只写入 fields 中的列，未提交的列（如持有人）保持库中当前值
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateOwner(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]model.Shift, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Shift, error)
	CountByShiftType(ctx context.Context, shiftTypeID string) (int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shift).Error
}

func (r *shiftRepo) CreateBatch(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(shifts, 100).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("shiftid = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shiftid = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shiftid = ?", id).
		Updates(fields).Error
}

func (r *shiftRepo) UpdateOwner(ctx context.Context, id, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shiftid = ?", id).
		Updates(map[string]interface{}{
			"userid":      userID,
			"updateddate": at,
		}).Error
}

// Delete 仍被加班申请引用时返回 gorm.ErrForeignKeyViolated
func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shiftid = ?", id).
		Delete(&model.Shift{}).Error
}

func (r *shiftRepo) ListByUser(ctx context.Context, userID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("userid = ?", userID).
		Order("shiftstarttime DESC").
		Find(&shifts).Error
	return shifts, err
}

// ListInRange 查询 [from, to) 内开始的班次，按开始时间升序
func (r *shiftRepo) ListInRange(ctx context.Context, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Preload("User", selectUserBrief).
		Where("shiftstarttime >= ? AND shiftstarttime < ?", from, to).
		Order("shiftstarttime ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CountByShiftType(ctx context.Context, shiftTypeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shifttypeid = ?", shiftTypeID).
		Count(&count).Error
	return count, err
}

// selectUserBrief 关联预加载时只取展示字段
func selectUserBrief(db *gorm.DB) *gorm.DB {
	return db.Select("userid", "firstname", "lastname", "emailaddress")
}

// selectShiftBrief 关联预加载时只取展示字段
func selectShiftBrief(db *gorm.DB) *gorm.DB {
	return db.Select("shiftid", "shiftstarttime", "shiftendtime", "shiftlocation")
}
