// Package handler 提供统一的 handler 导出
// 所有 handler 按功能模块分类到子目录中
package handler

// 重新导出所有 handler 类型，便于 app 层统一装配
import (
	attendanceHandler "github.com/fisker/officehub-backend/internal/api/handler/attendance"
	auditHandler "github.com/fisker/officehub-backend/internal/api/handler/audit"
	authHandler "github.com/fisker/officehub-backend/internal/api/handler/auth"
	cafeteriaHandler "github.com/fisker/officehub-backend/internal/api/handler/cafeteria"
	holidayHandler "github.com/fisker/officehub-backend/internal/api/handler/holiday"
	itsupportHandler "github.com/fisker/officehub-backend/internal/api/handler/itsupport"
	leaveHandler "github.com/fisker/officehub-backend/internal/api/handler/leave"
	parkingHandler "github.com/fisker/officehub-backend/internal/api/handler/parking"
	projectHandler "github.com/fisker/officehub-backend/internal/api/handler/project"
	userHandler "github.com/fisker/officehub-backend/internal/api/handler/user"
	workspaceHandler "github.com/fisker/officehub-backend/internal/api/handler/workspace"
)

// Auth handlers
type AuthHandler = authHandler.AuthHandler

var NewAuthHandler = authHandler.NewAuthHandler

// User handlers
type UserHandler = userHandler.UserHandler

var NewUserHandler = userHandler.NewUserHandler

// Attendance handlers
type AttendanceHandler = attendanceHandler.AttendanceHandler

var NewAttendanceHandler = attendanceHandler.NewAttendanceHandler

// Leave handlers
type LeaveHandler = leaveHandler.LeaveHandler

var NewLeaveHandler = leaveHandler.NewLeaveHandler

// Parking handlers
type ParkingHandler = parkingHandler.ParkingHandler

var NewParkingHandler = parkingHandler.NewParkingHandler

// Workspace handlers
type WorkspaceHandler = workspaceHandler.WorkspaceHandler

var NewWorkspaceHandler = workspaceHandler.NewWorkspaceHandler

// Cafeteria handlers
type CafeteriaHandler = cafeteriaHandler.CafeteriaHandler

var NewCafeteriaHandler = cafeteriaHandler.NewCafeteriaHandler

// IT support handlers
type ITSupportHandler = itsupportHandler.ITSupportHandler

var NewITSupportHandler = itsupportHandler.NewITSupportHandler

// Project handlers
type ProjectHandler = projectHandler.ProjectHandler

var NewProjectHandler = projectHandler.NewProjectHandler

// Holiday handlers
type HolidayHandler = holidayHandler.HolidayHandler

var NewHolidayHandler = holidayHandler.NewHolidayHandler

// Audit handlers
type AuditHandler = auditHandler.AuditHandler

var NewAuditHandler = auditHandler.NewAuditHandler
