package app

import (
	"github.com/fisker/officehub-backend/internal/api/handler"
)

// Handlers 包含所有 Handler 实例
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Attendance *handler.AttendanceHandler
	Leave      *handler.LeaveHandler
	Parking    *handler.ParkingHandler
	Workspace  *handler.WorkspaceHandler
	Cafeteria  *handler.CafeteriaHandler
	ITSupport  *handler.ITSupportHandler
	Project    *handler.ProjectHandler
	Holiday    *handler.HolidayHandler
	Audit      *handler.AuditHandler
}

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(repos *Repositories, services *Services) *Handlers {
	return &Handlers{
		Auth:       handler.NewAuthHandler(services.Auth),
		User:       handler.NewUserHandler(services.User, repos.User),
		Attendance: handler.NewAttendanceHandler(services.Attendance, repos.User),
		Leave:      handler.NewLeaveHandler(services.Leave, repos.User),
		Parking:    handler.NewParkingHandler(services.Parking, repos.User),
		Workspace:  handler.NewWorkspaceHandler(services.Workspace, repos.User),
		Cafeteria:  handler.NewCafeteriaHandler(services.Cafeteria, repos.User),
		ITSupport:  handler.NewITSupportHandler(services.ITSupport, repos.User),
		Project:    handler.NewProjectHandler(services.Project, repos.User),
		Holiday:    handler.NewHolidayHandler(services.Holiday, repos.User),
		Audit:      handler.NewAuditHandler(repos.Audit),
	}
}
