package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SimbaKVis/backend-main/config"
	"github.com/SimbaKVis/backend-main/internal/api/handler"
	"github.com/SimbaKVis/backend-main/internal/api/middleware"
	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/pkg/jwt"
	"github.com/SimbaKVis/backend-main/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时跳过 Token 黑名单与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := middleware.RoleAuth(model.RoleAdmin)
	selfOrAdmin := middleware.SelfOrRole("userid", model.RoleAdmin)

	api := r.Group("/api")
	{
		// 认证模块（无需认证）
		api.POST("/auth/login",
			middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
			h.Auth.Login)

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", admin, h.User.ListUsers)
				users.POST("", admin, h.User.CreateUser)
				users.PUT("/:userid", selfOrAdmin, h.User.UpdateUser) // 角色变更在 Service 层鉴权
				users.DELETE("/:userid", admin, h.User.DeleteUser)
				users.PUT("/:userid/update-password", selfOrAdmin, h.User.UpdatePassword)

				// 用户的班次
				users.GET("/:userid/shifts", selfOrAdmin, h.Shift.ListUserShifts)
				users.POST("/:userid/shifts", admin, h.Shift.CreateShift)
				users.POST("/:userid/shifts/recurring", admin, h.Shift.CreateRecurringShifts)
				users.GET("/:userid/calendar.ics", selfOrAdmin, h.Report.UserCalendar)
			}

			// 班次类型模块
			shiftTypes := authorized.Group("/shift-types")
			{
				shiftTypes.GET("", h.ShiftType.ListShiftTypes)
				shiftTypes.POST("", admin, h.ShiftType.CreateShiftType)
				shiftTypes.PUT("/:id", admin, h.ShiftType.UpdateShiftType)
				shiftTypes.DELETE("/:id", admin, h.ShiftType.DeleteShiftType)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.PUT("/:id", admin, h.Shift.UpdateShift)
				shifts.DELETE("/:id", admin, h.Shift.DeleteShift)
			}

			// 加班申请模块
			overtime := authorized.Group("/overtime")
			{
				overtime.GET("", admin, h.Overtime.ListOvertime)
				overtime.GET("/user/:userid", selfOrAdmin, h.Overtime.ListUserOvertime)
				overtime.POST("", h.Overtime.CreateOvertime)
				overtime.PUT("/:requestid/status", admin, h.Overtime.UpdateOvertimeStatus)
				overtime.DELETE("/:requestid", h.Overtime.DeleteOvertime) // 本人或管理员（Service 层鉴权）
			}

			// 换班申请模块
			swaps := authorized.Group("/shift-swap-requests")
			{
				swaps.GET("", admin, h.Swap.ListSwapRequests)
				swaps.GET("/user/:userid", selfOrAdmin, h.Swap.ListUserSwapRequests)
				swaps.POST("", h.Swap.CreateSwapRequest)
				swaps.PUT("/:id", admin, h.Swap.UpdateSwapStatus)
				swaps.DELETE("/:id", admin, h.Swap.DeleteSwapRequest)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/schedule.xlsx", admin, h.Report.ExportSchedule)
			}
		}
	}

	return r
}
