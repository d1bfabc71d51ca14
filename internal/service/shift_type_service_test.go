package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SimbaKVis/backend-main/internal/dto"
)

func setupTestShiftTypeService() (ShiftTypeService, *mockRepos) {
	repos := newMockRepos()
	svc := NewShiftTypeService(repos.aggregate, zap.NewNop())
	return svc, repos
}

func intPtr(n int) *int { return &n }

func TestShiftTypeService_Create(t *testing.T) {
	svc, repos := setupTestShiftTypeService()

	result, err := svc.Create(context.Background(), &dto.CreateShiftTypeRequest{
		ShiftName:       "Weekend overtime",
		DefaultDuration: intPtr(240),
		ShiftCategory:   strPtr("Overtime"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.DefaultDuration != 240 || result.ShiftCategory == nil || *result.ShiftCategory != "Overtime" {
		t.Errorf("返回值不符: %+v", result)
	}
	if stored := repos.types.types["morning"]; stored.DefaultDuration != 300 || stored.ShiftName != "Morning" {
		t.Errorf("存储值不符: %+v", stored)
	}
}

func TestShiftTypeService_Create_InvalidDuration(t *testing.T) {
	svc, _ := setupTestShiftTypeService()

	for _, d := range []int{0, -30} {
		_, err := svc.Create(context.Background(), &dto.CreateShiftTypeRequest{
			ShiftName:       "Broken",
			DefaultDuration: intPtr(d),
		})
		if !errors.Is(err, ErrInvalidDefaultDuration) {
			t.Errorf("duration=%d 期望 ErrInvalidDefaultDuration，实际: %v", d, err)
		}
	}
}

func TestShiftTypeService_Update_Partial(t *testing.T) {
	svc, repos := setupTestShiftTypeService()
	repos.addShiftType("morning", "Morning", nil)

	result, err := svc.Update(context.Background(), "morning", &dto.UpdateShiftTypeRequest{DefaultDuration: intPtr(300)})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.ShiftName != "Morning" || result.DefaultDuration != 300 {
		t.Errorf("返回值不符: %+v", result)
	}

	if _, err := svc.Update(context.Background(), "morning", &dto.UpdateShiftTypeRequest{DefaultDuration: intPtr(0)}); !errors.Is(err, ErrInvalidDefaultDuration) {
		t.Errorf("期望 ErrInvalidDefaultDuration，实际: %v", err)
	}
	if _, err := svc.Update(context.Background(), "ghost", &dto.UpdateShiftTypeRequest{}); !errors.Is(err, ErrShiftTypeNotFound) {
		t.Errorf("期望 ErrShiftTypeNotFound，实际: %v", err)
	}
}

func TestShiftTypeService_Delete_InUse(t *testing.T) {
	svc, repos := setupTestShiftTypeService()
	repos.addShiftType("morning", "Morning", nil)
	repos.addShiftType("unused", "Unused", nil)
	repos.addShift("s1", "morning", "u1", testBase, 8*time.Hour)

	if err := svc.Delete(context.Background(), "morning"); !errors.Is(err, ErrShiftTypeInUse) {
		t.Errorf("期望 ErrShiftTypeInUse，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), "unused"); err != nil {
		t.Errorf("Delete 应成功: %v", err)
	}
	if _, ok := repos.types.types["unused"]; ok {
		t.Error("班次类型应已删除")
	}
	if err := svc.Delete(context.Background(), "unused"); !errors.Is(err, ErrShiftTypeNotFound) {
		t.Errorf("期望 ErrShiftTypeNotFound，实际: %v", err)
	}
}
