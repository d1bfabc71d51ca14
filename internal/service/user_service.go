package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrEmailExists              = errors.New("邮箱已被使用")
	ErrUserSelfDelete           = errors.New("不能删除自己")
	ErrUserInUse                = errors.New("用户仍被班次或申请引用")
	ErrNoPermission             = errors.New("无权操作")
	ErrPasswordMismatch         = errors.New("两次输入的新密码不一致")
	ErrCurrentPasswordIncorrect = errors.New("当前密码错误")
)

// UserService 用户业务接口
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ChangePassword(ctx context.Context, id string, req *dto.ChangePasswordRequest, callerID, callerRole string) error
}

type userService struct {
	repo       *repository.Repository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, bcryptCost int, logger *zap.Logger) UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.EmailAddress); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		EmailAddress:   req.EmailAddress,
		Role:           req.Role,
		PasswordHash:   string(hash),
		EligibleShifts: model.StringList(req.EligibleShifts),
		CreatedDate:    now,
		UpdatedDate:    now,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一约束兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	// 非管理员只能修改自己，且不能修改角色
	isAdmin := callerRole == model.RoleAdmin
	if !isAdmin && callerID != id {
		return nil, ErrNoPermission
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Role != nil && *req.Role != user.Role && !isAdmin {
		return nil, ErrNoPermission
	}

	fields := make(map[string]interface{})
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
		fields["firstname"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
		fields["lastname"] = user.LastName
	}
	if req.EmailAddress != nil && *req.EmailAddress != user.EmailAddress {
		existing, err := s.repo.User.GetByEmail(ctx, *req.EmailAddress)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.EmailAddress = *req.EmailAddress
		fields["emailaddress"] = user.EmailAddress
	}
	if req.Role != nil {
		user.Role = *req.Role
		fields["role"] = user.Role
	}
	if req.EligibleShifts != nil {
		user.EligibleShifts = model.StringList(*req.EligibleShifts)
		fields["eligibleshifts"] = user.EligibleShifts
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
		fields["passwordhash"] = user.PasswordHash
	}
	user.UpdatedDate = time.Now().UTC()
	fields["updateddate"] = user.UpdatedDate

	if err := s.repo.User.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrUserInUse
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("用户已删除", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *userService) ChangePassword(ctx context.Context, id string, req *dto.ChangePasswordRequest, callerID, callerRole string) error {
	if callerRole != model.RoleAdmin && callerID != id {
		return ErrNoPermission
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrCurrentPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	// 只写密码列，避免覆盖并发的资料修改
	if err := s.repo.User.Update(ctx, id, map[string]interface{}{
		"passwordhash": string(hash),
		"updateddate":  time.Now().UTC(),
	}); err != nil {
		s.logger.Error("修改密码失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toUserResponse(u *model.User) *dto.UserResponse {
	eligible := []string(u.EligibleShifts)
	if eligible == nil {
		eligible = []string{}
	}
	return &dto.UserResponse{
		UserID:         u.UserID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		EmailAddress:   u.EmailAddress,
		Role:           u.Role,
		EligibleShifts: eligible,
		CreatedDate:    formatTime(u.CreatedDate),
		UpdatedDate:    formatTime(u.UpdatedDate),
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		UserID:       u.UserID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
	}
}

// formatTime 统一输出 RFC 3339，零值返回空串
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
