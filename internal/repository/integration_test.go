//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=shift_scheduler_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用与生产一致的 SQL 迁移，外键与级联规则由迁移定义
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

type fixture struct {
	admin, alice, bob *model.User
	shiftType         *model.ShiftType
	overtimeType      *model.ShiftType
}

// setupFixture 创建用户与班次类型，返回清理函数
func setupFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()
	now := time.Now().UTC()

	mkUser := func(name, role string) *model.User {
		u := &model.User{
			FirstName:    name,
			LastName:     "Test",
			EmailAddress: fmt.Sprintf("%s-%d@example.com", name, suffix),
			Role:         role,
			PasswordHash: "x",
			CreatedDate:  now,
			UpdatedDate:  now,
		}
		if err := testDB.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
		return u
	}

	category := model.ShiftCategoryOvertime
	f := &fixture{
		admin: mkUser("admin", model.RoleAdmin),
		alice: mkUser("alice", model.RoleAgent),
		bob:   mkUser("bob", model.RoleAgent),
		shiftType: &model.ShiftType{
			ShiftName: fmt.Sprintf("Morning-%d", suffix), DefaultDuration: 480, CreatedDate: now, UpdatedDate: now,
		},
		overtimeType: &model.ShiftType{
			ShiftName: fmt.Sprintf("OT-%d", suffix), DefaultDuration: 240, ShiftCategory: &category, CreatedDate: now, UpdatedDate: now,
		},
	}
	for _, st := range []*model.ShiftType{f.shiftType, f.overtimeType} {
		if err := testDB.WithContext(ctx).Create(st).Error; err != nil {
			t.Fatalf("创建班次类型失败: %v", err)
		}
	}

	cleanup := func() {
		ids := []string{f.admin.UserID, f.alice.UserID, f.bob.UserID}
		testDB.Exec("DELETE FROM overtime_requests WHERE userid IN ?", ids)
		testDB.Exec("DELETE FROM shift_swap_requests WHERE requesting_user_id IN ? OR colleague_id IN ?", ids, ids)
		testDB.Exec("DELETE FROM shift WHERE userid IN ?", ids)
		testDB.Exec("DELETE FROM shifttype WHERE shifttypeid IN ?", []string{f.shiftType.ShiftTypeID, f.overtimeType.ShiftTypeID})
		testDB.Exec("DELETE FROM users WHERE userid IN ?", ids)
	}
	return f, cleanup
}

func (f *fixture) createShift(t *testing.T, repo *repository.Repository, owner *model.User, st *model.ShiftType, start time.Time) *model.Shift {
	t.Helper()
	now := time.Now().UTC()
	sh := &model.Shift{
		ShiftTypeID:    st.ShiftTypeID,
		UserID:         owner.UserID,
		ShiftStartTime: start,
		ShiftEndTime:   start.Add(8 * time.Hour),
		ShiftDuration:  480,
		ShiftLocation:  "Front desk",
		AssignedBy:     f.admin.UserID,
		CreatedDate:    now,
		UpdatedDate:    now,
	}
	if err := repo.Shift.Create(context.Background(), sh); err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}
	return sh
}

// ═══════════════════════════════════════════════════════════
// Swap approval
// ═══════════════════════════════════════════════════════════

func TestIntegration_SwapApproval_SwapsOwnership(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	svc := service.NewSwapService(repo, zap.NewNop())

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	aliceShift := f.createShift(t, repo, f.alice, f.shiftType, start)
	bobShift := f.createShift(t, repo, f.bob, f.shiftType, start.Add(24*time.Hour))

	created, err := svc.Create(ctx, &dto.CreateSwapRequest{
		RequestingUserID: f.alice.UserID,
		RequestedShiftID: aliceShift.ShiftID,
		ColleagueID:      f.bob.UserID,
		ColleagueShiftID: bobShift.ShiftID,
		Reason:           "Dentist",
	}, f.alice.UserID, model.RoleAgent)
	if err != nil {
		t.Fatalf("创建换班申请失败: %v", err)
	}

	approved, err := svc.UpdateStatus(ctx, created.ID, model.SwapStatusApproved)
	if err != nil {
		t.Fatalf("审批失败: %v", err)
	}
	if approved.Status != model.SwapStatusApproved {
		t.Errorf("期望 Approved，实际 %s", approved.Status)
	}
	if approved.RequestingUser == nil || approved.RequestedShift == nil {
		t.Error("审批结果应包含关联信息")
	}

	got1, _ := repo.Shift.GetByID(ctx, aliceShift.ShiftID)
	got2, _ := repo.Shift.GetByID(ctx, bobShift.ShiftID)
	if got1.UserID != f.bob.UserID || got2.UserID != f.alice.UserID {
		t.Errorf("班次持有人未互换: %s / %s", got1.UserID, got2.UserID)
	}

	// 终态不可再变更
	if _, err := svc.UpdateStatus(ctx, created.ID, model.SwapStatusRejected); !errors.Is(err, service.ErrSwapRequestNotPending) {
		t.Errorf("期望 ErrSwapRequestNotPending，实际: %v", err)
	}
}

func TestIntegration_SwapApproval_OwnershipChangedRollsBack(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	svc := service.NewSwapService(repo, zap.NewNop())

	start := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	aliceShift := f.createShift(t, repo, f.alice, f.shiftType, start)
	bobShift := f.createShift(t, repo, f.bob, f.shiftType, start.Add(24*time.Hour))

	created, err := svc.Create(ctx, &dto.CreateSwapRequest{
		RequestingUserID: f.alice.UserID,
		RequestedShiftID: aliceShift.ShiftID,
		ColleagueID:      f.bob.UserID,
		ColleagueShiftID: bobShift.ShiftID,
		Reason:           "Exam",
	}, f.alice.UserID, model.RoleAgent)
	if err != nil {
		t.Fatalf("创建换班申请失败: %v", err)
	}

	// 申请后班次被重新分配给管理员
	if err := repo.Shift.UpdateOwner(ctx, bobShift.ShiftID, f.admin.UserID, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateOwner 失败: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, created.ID, model.SwapStatusApproved); !errors.Is(err, service.ErrSwapOwnershipChanged) {
		t.Fatalf("期望 ErrSwapOwnershipChanged，实际: %v", err)
	}

	// 状态写入随事务一起回滚
	req, _ := repo.SwapRequest.GetByID(ctx, created.ID)
	if req.Status != model.SwapStatusPending {
		t.Errorf("失败后状态应保持 Pending，实际 %s", req.Status)
	}
	got, _ := repo.Shift.GetByID(ctx, aliceShift.ShiftID)
	if got.UserID != f.alice.UserID {
		t.Error("失败后班次持有人不应变化")
	}
}

// ═══════════════════════════════════════════════════════════
// Transactions
// ═══════════════════════════════════════════════════════════

func TestIntegration_RunInTx_Rollback(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	var shiftID string
	sentinel := errors.New("boom")
	err := repo.RunInTx(ctx, func(tx *repository.Repository) error {
		sh := f.createShift(t, tx, f.alice, f.shiftType, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
		shiftID = sh.ShiftID
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("期望返回 fn 的错误，实际: %v", err)
	}

	if _, err := repo.Shift.GetByID(ctx, shiftID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("回滚后班次不应存在，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Shift delete / foreign keys
// ═══════════════════════════════════════════════════════════

func TestIntegration_ShiftDelete_RemovesSwapRequests(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	shifts := service.NewShiftService(repo, zap.NewNop())

	start := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	aliceShift := f.createShift(t, repo, f.alice, f.shiftType, start)
	bobShift := f.createShift(t, repo, f.bob, f.shiftType, start.Add(24*time.Hour))

	now := time.Now().UTC()
	req := &model.ShiftSwapRequest{
		RequestingUserID: f.alice.UserID,
		RequestedShiftID: aliceShift.ShiftID,
		ColleagueID:      f.bob.UserID,
		ColleagueShiftID: bobShift.ShiftID,
		Reason:           "Travel",
		Status:           model.SwapStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.SwapRequest.Create(ctx, req); err != nil {
		t.Fatalf("创建换班申请失败: %v", err)
	}

	// 删除同事一侧的班次
	if err := shifts.Delete(ctx, bobShift.ShiftID); err != nil {
		t.Fatalf("删除班次失败: %v", err)
	}
	if _, err := repo.SwapRequest.GetByID(ctx, req.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("换班申请应随班次删除，实际: %v", err)
	}
}

func TestIntegration_ShiftDelete_BlockedByOvertime(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	overtime := service.NewOvertimeService(repo, zap.NewNop())
	shifts := service.NewShiftService(repo, zap.NewNop())

	otShift := f.createShift(t, repo, f.alice, f.overtimeType, time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC))
	ot, err := overtime.Create(ctx, &dto.CreateOvertimeRequest{ShiftID: otShift.ShiftID}, f.alice.UserID, model.RoleAgent)
	if err != nil {
		t.Fatalf("创建加班申请失败: %v", err)
	}
	if ot.OvertimeDuration != 480 || ot.Status != model.OvertimeStatusPending {
		t.Errorf("加班申请字段不符: %+v", ot)
	}

	if err := shifts.Delete(ctx, otShift.ShiftID); !errors.Is(err, service.ErrShiftInUse) {
		t.Errorf("期望 ErrShiftInUse，实际: %v", err)
	}
}

func TestIntegration_UserDelete_ForeignKey(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	users := service.NewUserService(repo, 4, zap.NewNop())

	f.createShift(t, repo, f.bob, f.shiftType, time.Date(2026, 3, 23, 8, 0, 0, 0, time.UTC))

	if err := users.Delete(ctx, f.bob.UserID, f.admin.UserID); !errors.Is(err, service.ErrUserInUse) {
		t.Errorf("期望 ErrUserInUse，实际: %v", err)
	}

	_, err := users.Create(ctx, &dto.CreateUserRequest{
		FirstName:    "Dup",
		LastName:     "User",
		EmailAddress: f.alice.EmailAddress,
		Password:     "password123",
		Role:         model.RoleAgent,
	})
	if !errors.Is(err, service.ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Column-scoped writes
// ═══════════════════════════════════════════════════════════

func TestIntegration_ShiftUpdate_LeavesOwnerUntouched(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	sh := f.createShift(t, repo, f.alice, f.shiftType, time.Date(2026, 3, 25, 8, 0, 0, 0, time.UTC))

	// 持有人先被改为 bob，随后只更新地点
	if err := repo.Shift.UpdateOwner(ctx, sh.ShiftID, f.bob.UserID, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateOwner 失败: %v", err)
	}
	if err := repo.Shift.Update(ctx, sh.ShiftID, map[string]interface{}{"shiftlocation": "Lobby"}); err != nil {
		t.Fatalf("Update 失败: %v", err)
	}

	got, _ := repo.Shift.GetByID(ctx, sh.ShiftID)
	if got.UserID != f.bob.UserID || got.ShiftLocation != "Lobby" {
		t.Errorf("期望 owner=bob location=Lobby，实际 %s / %s", got.UserID, got.ShiftLocation)
	}
}

func TestIntegration_OvertimeStatus_OnlyFromPending(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	sh := f.createShift(t, repo, f.alice, f.overtimeType, time.Date(2026, 3, 28, 10, 0, 0, 0, time.UTC))
	now := time.Now().UTC()
	ot := &model.OvertimeRequest{
		UserID: f.alice.UserID, ShiftID: sh.ShiftID, OvertimeDuration: 480,
		Status: model.OvertimeStatusPending, CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Overtime.Create(ctx, ot); err != nil {
		t.Fatalf("创建加班申请失败: %v", err)
	}

	ok, err := repo.Overtime.UpdateStatusIfPending(ctx, ot.RequestID, model.OvertimeStatusRejected, now)
	if err != nil || !ok {
		t.Fatalf("首次审批应命中: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Overtime.UpdateStatusIfPending(ctx, ot.RequestID, model.OvertimeStatusApproved, now)
	if err != nil || ok {
		t.Fatalf("终态不应再被覆盖: ok=%v err=%v", ok, err)
	}

	got, _ := repo.Overtime.GetByID(ctx, ot.RequestID)
	if got.Status != model.OvertimeStatusRejected {
		t.Errorf("期望 rejected，实际 %s", got.Status)
	}
}
