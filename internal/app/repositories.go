package app

import (
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	User       *repository.UserRepository
	Stage      *repository.StageRepository
	Attendance *repository.AttendanceRepository
	Leave      *repository.LeaveRepository
	Holiday    *repository.HolidayRepository
	Parking    *repository.ParkingRepository
	Desk       *repository.DeskRepository
	Cafeteria  *repository.CafeteriaRepository
	Asset      *repository.AssetRepository
	ITRequest  *repository.ITRequestRepository
	Project    *repository.ProjectRepository
	Audit      *repository.AuditRepository

	// Directory 是组织层级解析使用的员工目录快照
	Directory *repository.DirectoryAdapter
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	userRepo := repository.NewUserRepository(database.DB)
	return &Repositories{
		User:       userRepo,
		Stage:      repository.NewStageRepository(database.DB),
		Attendance: repository.NewAttendanceRepository(database.DB),
		Leave:      repository.NewLeaveRepository(database.DB),
		Holiday:    repository.NewHolidayRepository(database.DB),
		Parking:    repository.NewParkingRepository(database.DB),
		Desk:       repository.NewDeskRepository(database.DB),
		Cafeteria:  repository.NewCafeteriaRepository(database.DB),
		Asset:      repository.NewAssetRepository(database.DB),
		ITRequest:  repository.NewITRequestRepository(database.DB),
		Project:    repository.NewProjectRepository(database.DB),
		Audit:      repository.NewAuditRepository(database.DB),
		Directory:  repository.NewDirectoryAdapter(userRepo),
	}
}
