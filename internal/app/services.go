package app

import (
	attendanceService "github.com/fisker/officehub-backend/internal/service/attendance"
	authService "github.com/fisker/officehub-backend/internal/service/auth"
	cafeteriaService "github.com/fisker/officehub-backend/internal/service/cafeteria"
	holidayService "github.com/fisker/officehub-backend/internal/service/holiday"
	itsupportService "github.com/fisker/officehub-backend/internal/service/itsupport"
	leaveService "github.com/fisker/officehub-backend/internal/service/leave"
	parkingService "github.com/fisker/officehub-backend/internal/service/parking"
	projectService "github.com/fisker/officehub-backend/internal/service/project"
	userService "github.com/fisker/officehub-backend/internal/service/user"
	workspaceService "github.com/fisker/officehub-backend/internal/service/workspace"
	"github.com/fisker/officehub-backend/pkg/config"
)

// Services 包含所有 Service 实例
type Services struct {
	Auth       *authService.AuthService
	User       *userService.UserService
	Attendance *attendanceService.AttendanceService
	Leave      *leaveService.LeaveService
	Parking    *parkingService.ParkingService
	Workspace  *workspaceService.WorkspaceService
	Cafeteria  *cafeteriaService.CafeteriaService
	ITSupport  *itsupportService.ITSupportService
	Project    *projectService.ProjectService
	Holiday    *holidayService.HolidayService
}

// InitializeServices 初始化所有 Service
func InitializeServices(repos *Repositories, cfg *config.Config) *Services {
	dir := repos.Directory

	return &Services{
		Auth:       authService.NewAuthService(repos.User, cfg.Security.JWTSecret, cfg.Security.TokenExpireHours, cfg.Security.TwoFactorIssuer),
		User:       userService.NewUserService(repos.User, repos.Leave, dir, cfg.Leave),
		Attendance: attendanceService.NewAttendanceService(repos.Attendance, repos.Stage, dir),
		Leave:      leaveService.NewLeaveService(repos.Leave, repos.Stage, repos.Holiday, dir),
		Parking:    parkingService.NewParkingService(repos.Parking, dir),
		Workspace:  workspaceService.NewWorkspaceService(repos.Desk, repos.Stage, dir),
		Cafeteria:  cafeteriaService.NewCafeteriaService(repos.Cafeteria, dir),
		ITSupport:  itsupportService.NewITSupportService(repos.Asset, repos.ITRequest, repos.Stage, dir),
		Project:    projectService.NewProjectService(repos.Project, repos.Stage, dir),
		Holiday:    holidayService.NewHolidayService(repos.Holiday),
	}
}
