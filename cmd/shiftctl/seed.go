package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SimbaKVis/backend-main/internal/dto"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
	"github.com/SimbaKVis/backend-main/internal/service"
	"github.com/SimbaKVis/backend-main/pkg/database"
)

// defaultUsers 初始账号，密码取 seed.default_password
var defaultUsers = []dto.CreateUserRequest{
	{FirstName: "Chrissy", LastName: "Smith", EmailAddress: "chrissy@example.com", Role: model.RoleAdmin},
	{FirstName: "Lewis", LastName: "Luwi", EmailAddress: "lewis@example.com", Role: model.RoleAdmin,
		EligibleShifts: []string{"morning", "afternoon"}},
	{FirstName: "Vanessa", LastName: "Doe", EmailAddress: "vanessa@example.com", Role: model.RoleAgent},
}

func seedCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and agent accounts",
		Long:  `Creates the default accounts. Accounts whose email already exists are skipped, so the command can be re-run safely.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = app.cfg.Seed.DefaultPassword
			}
			if len(password) < 8 {
				return fmt.Errorf("默认密码长度不能少于 8 位")
			}

			db, err := database.NewDB(&app.cfg.Database, app.cfg.Log.Level, app.logger)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			defer sqlDB.Close()

			users := service.NewUserService(repository.NewRepository(db), app.cfg.Auth.BcryptCost, app.logger)
			created, err := seedUsers(cmd.Context(), users, password, app.logger)
			if err != nil {
				return err
			}
			fmt.Printf("%d users seeded successfully\n", created)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for every seeded account (default seed.default_password)")
	return cmd
}

// seedUsers 创建默认账号，已存在的邮箱跳过
func seedUsers(ctx context.Context, users service.UserService, password string, logger *zap.Logger) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	created := 0
	for _, u := range defaultUsers {
		req := u
		req.Password = password
		if _, err := users.Create(ctx, &req); err != nil {
			if errors.Is(err, service.ErrEmailExists) {
				logger.Info("用户已存在，跳过", zap.String("email", req.EmailAddress))
				continue
			}
			return created, fmt.Errorf("创建用户 %s 失败: %w", req.EmailAddress, err)
		}
		logger.Info("已创建用户", zap.String("email", req.EmailAddress), zap.String("role", req.Role))
		created++
	}
	return created, nil
}
