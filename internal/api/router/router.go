package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fisker/officehub-backend/internal/api/handler"
	"github.com/fisker/officehub-backend/internal/api/middleware"
	authService "github.com/fisker/officehub-backend/internal/service/auth"
)

func Setup(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	attendanceHandler *handler.AttendanceHandler,
	leaveHandler *handler.LeaveHandler,
	parkingHandler *handler.ParkingHandler,
	workspaceHandler *handler.WorkspaceHandler,
	cafeteriaHandler *handler.CafeteriaHandler,
	itSupportHandler *handler.ITSupportHandler,
	projectHandler *handler.ProjectHandler,
	holidayHandler *handler.HolidayHandler,
	auditHandler *handler.AuditHandler,
	authSvc *authService.AuthService,
	mode string,
) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()

	// 使用自定义的 recovery 中间件（打印详细错误信息）
	r.Use(middleware.RecoveryMiddleware())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.MetricsMiddleware())

	// 健康检查与指标
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 认证相关（公开）
	api.POST("/auth/login", authHandler.Login)

	// 以下路由需要登录
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authSvc))
	authed.Use(middleware.PermissionMiddleware())
	authed.Use(middleware.OperationLogMiddleware())

	auth := authed.Group("/auth")
	{
		auth.GET("/me", authHandler.GetCurrentUser)
		auth.POST("/change-password", authHandler.ChangePassword)
		auth.POST("/2fa/setup", authHandler.SetupTwoFactor)
		auth.POST("/2fa/enable", authHandler.EnableTwoFactor)
		auth.POST("/2fa/disable", authHandler.DisableTwoFactor)
	}

	// 员工档案与组织层级
	users := authed.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.GET("/subordinates", userHandler.Subordinates)
		users.GET("/:code", userHandler.Get)
		users.PUT("/:code", userHandler.Update)
		users.DELETE("/:code", userHandler.Deactivate)
		users.GET("/:code/approver-chain", userHandler.ApproverChain)
	}

	// 考勤
	attendance := authed.Group("/attendance")
	{
		attendance.POST("/check-in", attendanceHandler.CheckIn)
		attendance.POST("/check-out", attendanceHandler.CheckOut)
		attendance.GET("/today", attendanceHandler.Today)
		attendance.GET("/mine", attendanceHandler.ListMine)
		attendance.GET("/subordinates", attendanceHandler.ListSubordinates)
		attendance.POST("/:id/submit", attendanceHandler.Submit)
		attendance.POST("/:id/decide", attendanceHandler.Decide)
		attendance.GET("/:id/history", attendanceHandler.History)
	}

	// 请假
	leave := authed.Group("/leave")
	{
		leave.POST("/requests", leaveHandler.Apply)
		leave.GET("/requests/mine", leaveHandler.ListMine)
		leave.GET("/requests/subordinates", leaveHandler.ListSubordinates)
		leave.GET("/requests/:id", leaveHandler.Get)
		leave.POST("/requests/:id/decide", leaveHandler.Decide)
		leave.POST("/requests/:id/cancel", leaveHandler.Cancel)
		leave.GET("/requests/:id/history", leaveHandler.History)
		leave.GET("/balances", leaveHandler.Balances)
		leave.POST("/balances/adjust", middleware.AdminMiddleware(), leaveHandler.AdjustBalance)
	}

	// 停车
	parking := authed.Group("/parking")
	{
		parking.GET("/slots", parkingHandler.ListSlots)
		parking.POST("/slots", parkingHandler.CreateSlot)
		parking.PUT("/slots/:id/status", parkingHandler.SetSlotStatus)
		parking.DELETE("/slots/:id", parkingHandler.DeleteSlot)
		parking.GET("/summary", parkingHandler.Summary)
		parking.POST("/allocations", parkingHandler.RequestSlot)
		parking.POST("/visitors", parkingHandler.RegisterVisitor)
		parking.GET("/allocations/mine", parkingHandler.MyAllocation)
		parking.GET("/allocations", parkingHandler.ListAllocations)
		parking.POST("/allocations/:id/release", parkingHandler.Release)
	}

	// 工位与会议室
	workspace := authed.Group("/workspace")
	{
		workspace.GET("/desks", workspaceHandler.ListDesks)
		workspace.POST("/desks", workspaceHandler.CreateDesk)
		workspace.GET("/desks/:id", workspaceHandler.GetDesk)
		workspace.PUT("/desks/:id", workspaceHandler.UpdateDesk)
		workspace.DELETE("/desks/:id", workspaceHandler.DeleteDesk)
		workspace.POST("/desk-bookings", workspaceHandler.BookDesk)
		workspace.GET("/desk-bookings/mine", workspaceHandler.ListMyDeskBookings)
		workspace.POST("/desk-bookings/:id/cancel", workspaceHandler.CancelDeskBooking)

		workspace.GET("/rooms", workspaceHandler.ListRooms)
		workspace.POST("/rooms", workspaceHandler.CreateRoom)
		workspace.PUT("/rooms/:id", workspaceHandler.UpdateRoom)
		workspace.DELETE("/rooms/:id", workspaceHandler.DeleteRoom)
		workspace.POST("/room-bookings", workspaceHandler.BookRoom)
		workspace.GET("/room-bookings", workspaceHandler.ListRoomBookings)
		workspace.POST("/room-bookings/:id/decide", workspaceHandler.DecideRoomBooking)
		workspace.POST("/room-bookings/:id/cancel", workspaceHandler.CancelRoomBooking)
	}

	// 餐厅
	cafeteria := authed.Group("/cafeteria")
	{
		cafeteria.GET("/menu", cafeteriaHandler.ListMenu)
		cafeteria.POST("/items", cafeteriaHandler.CreateItem)
		cafeteria.PUT("/items/:id", cafeteriaHandler.UpdateItem)
		cafeteria.POST("/orders", cafeteriaHandler.PlaceOrder)
		cafeteria.GET("/orders", cafeteriaHandler.ListAllOrders)
		cafeteria.GET("/orders/mine", cafeteriaHandler.ListMyOrders)
		cafeteria.GET("/orders/:id", cafeteriaHandler.GetOrder)
		cafeteria.PUT("/orders/:id/status", cafeteriaHandler.UpdateOrderStatus)
		cafeteria.GET("/tables", cafeteriaHandler.ListTables)
		cafeteria.POST("/tables", cafeteriaHandler.CreateTable)
		cafeteria.PUT("/tables/:id", cafeteriaHandler.UpdateTable)
		cafeteria.DELETE("/tables/:id", cafeteriaHandler.DeleteTable)
		cafeteria.POST("/bookings", cafeteriaHandler.BookTable)
		cafeteria.GET("/bookings", cafeteriaHandler.ListAllTableBookings)
		cafeteria.GET("/bookings/mine", cafeteriaHandler.ListMyTableBookings)
		cafeteria.POST("/bookings/:id/cancel", cafeteriaHandler.CancelTableBooking)
	}

	// IT资产与工单
	it := authed.Group("/it")
	{
		it.GET("/assets", itSupportHandler.ListAssets)
		it.POST("/assets", itSupportHandler.CreateAsset)
		it.GET("/assets/:id", itSupportHandler.GetAsset)
		it.PUT("/assets/:id", itSupportHandler.UpdateAsset)
		it.POST("/assets/:id/assign", itSupportHandler.AssignAsset)
		it.POST("/assets/:id/unassign", itSupportHandler.UnassignAsset)
		it.GET("/assets/:id/history", itSupportHandler.AssetHistory)

		it.GET("/requests", itSupportHandler.ListRequests)
		it.POST("/requests", itSupportHandler.CreateRequest)
		it.GET("/requests/:id", itSupportHandler.GetRequest)
		it.POST("/requests/:id/decide", itSupportHandler.DecideRequest)
		it.POST("/requests/:id/assign", itSupportHandler.AssignRequest)
		it.GET("/requests/:id/history", itSupportHandler.RequestHistory)
	}

	// 项目立项
	projects := authed.Group("/projects")
	{
		projects.POST("", projectHandler.Create)
		projects.GET("", projectHandler.List)
		projects.GET("/:id", projectHandler.Get)
		projects.POST("/:id/decide", projectHandler.Decide)
		projects.POST("/:id/cancel", projectHandler.Cancel)
		projects.PUT("/:id/status", projectHandler.UpdateStatus)
		projects.GET("/:id/history", projectHandler.History)
	}

	// 节假日日历
	holidays := authed.Group("/holidays")
	{
		holidays.GET("", holidayHandler.List)
		holidays.POST("", middleware.AdminMiddleware(), holidayHandler.Create)
		holidays.PUT("/:id", middleware.AdminMiddleware(), holidayHandler.Update)
		holidays.DELETE("/:id", middleware.AdminMiddleware(), holidayHandler.Delete)
	}

	// 操作日志（仅管理员）
	audit := authed.Group("/audit", middleware.AdminMiddleware())
	{
		audit.GET("/operation-logs", auditHandler.ListOperationLogs)
	}

	return r
}
