package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/model"
)

// ShiftTypeRepository 班次类型数据访问接口
type ShiftTypeRepository interface {
	Create(ctx context.Context, st *model.ShiftType) error
	GetByID(ctx context.Context, id string) (*model.ShiftType, error)
	List(ctx context.Context) ([]model.ShiftType, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type shiftTypeRepo struct {
	db *gorm.DB
}

// NewShiftTypeRepo 创建 ShiftTypeRepository 实例
func NewShiftTypeRepo(db *gorm.DB) ShiftTypeRepository {
	return &shiftTypeRepo{db: db}
}

func (r *shiftTypeRepo) Create(ctx context.Context, st *model.ShiftType) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *shiftTypeRepo) GetByID(ctx context.Context, id string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := r.db.WithContext(ctx).
		Where("shifttypeid = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepo) List(ctx context.Context) ([]model.ShiftType, error) {
	var types []model.ShiftType
	err := r.db.WithContext(ctx).Order("shiftname ASC").Find(&types).Error
	return types, err
}

func (r *shiftTypeRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.ShiftType{}).
		Where("shifttypeid = ?", id).
		Updates(fields).Error
}

func (r *shiftTypeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shifttypeid = ?", id).
		Delete(&model.ShiftType{}).Error
}
