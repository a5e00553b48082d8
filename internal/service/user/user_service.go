package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/authz"
	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/config"
	"github.com/fisker/officehub-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrRoleTooHigh 目标角色不低于操作者自身
	ErrRoleTooHigh = errors.New("target role must be lower than actor role")
)

// UserService 用户目录管理
type UserService struct {
	repo      *repository.UserRepository
	leaveRepo *repository.LeaveRepository
	dir       hierarchy.Directory
	leaveCfg  config.LeaveConfig
}

func NewUserService(repo *repository.UserRepository, leaveRepo *repository.LeaveRepository, dir hierarchy.Directory, leaveCfg config.LeaveConfig) *UserService {
	return &UserService{repo: repo, leaveRepo: leaveRepo, dir: dir, leaveCfg: leaveCfg}
}

// CreateUser 创建用户（仅 admin/super_admin）。
// 工号自动分配，上级链路在创建时即校验，避免产生天生残缺的审批链。
// 创建成功后初始化当年的请假余额。
func (s *UserService) CreateUser(actor *model.User, req *model.CreateUserRequest) (*model.User, error) {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		return nil, ErrForbidden
	}

	if !req.Role.Valid() {
		return nil, fmt.Errorf("无效的角色: %s", req.Role)
	}
	// 只能创建比自己低阶的角色：admin 不能造出平级或 super_admin
	if req.Role.Rank() >= actor.Role.Rank() {
		return nil, ErrRoleTooHigh
	}
	if req.Role == model.RoleManager && !req.ManagerType.Valid() {
		return nil, errors.New("manager 必须指定合法的 manager_type")
	}
	if req.Role != model.RoleManager && req.ManagerType != "" {
		return nil, errors.New("仅 manager 可以设置 manager_type")
	}
	if req.Role == model.RoleTeamLead && req.Department == "" {
		return nil, errors.New("team_lead 必须指定 department")
	}

	// 邮箱唯一
	if _, err := s.repo.FindByEmail(req.Email); err == nil {
		return nil, errors.New("邮箱已被使用")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("检查邮箱失败: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	code, err := s.repo.NextEmployeeCode()
	if err != nil {
		return nil, fmt.Errorf("分配工号失败: %w", err)
	}

	user := &model.User{
		ID:            uuid.New().String(),
		EmployeeCode:  code,
		Email:         req.Email,
		Password:      string(hashedPassword),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		ManagerType:   req.ManagerType,
		Department:    req.Department,
		TeamLeadCode:  req.TeamLeadCode,
		ManagerCode:   req.ManagerCode,
		AdminCode:     req.AdminCode,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		IsActive:      true,
	}

	// 上级链路完整性在创建时校验
	if _, err := hierarchy.ResolveApproverChain(s.dir, user); err != nil {
		var integrity *hierarchy.IntegrityError
		if errors.As(err, &integrity) {
			return nil, fmt.Errorf("上级链路不完整: %w", integrity)
		}
		return nil, err
	}

	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	if err := s.initBalances(user.EmployeeCode, time.Now().Year()); err != nil {
		// 余额初始化失败不回滚用户创建，可由管理员补建
		logger.Errorf("初始化请假余额失败: user=%s, err=%v", user.EmployeeCode, err)
	}

	logger.Infof("创建用户: %s (%s, %s)", user.EmployeeCode, user.Email, user.Role)
	return user, nil
}

// initBalances 按配置初始化某年的三类请假余额
func (s *UserService) initBalances(userCode string, year int) error {
	defaults := map[model.LeaveType]int{
		model.LeaveTypeCasual: s.leaveCfg.DefaultCasualDays,
		model.LeaveTypeSick:   s.leaveCfg.DefaultSickDays,
		model.LeaveTypeEarned: s.leaveCfg.DefaultEarnedDays,
	}
	for leaveType, days := range defaults {
		balance := &model.LeaveBalance{
			UserCode:  userCode,
			LeaveType: leaveType,
			Year:      year,
			TotalDays: days,
		}
		if err := s.leaveRepo.CreateBalance(balance); err != nil {
			return err
		}
	}
	return nil
}

// GetByCode 查看用户档案：本人、上级（下属只读）或管理员
func (s *UserService) GetByCode(actor *model.User, code string) (*model.User, error) {
	target, err := s.repo.FindByCode(code)
	if err != nil {
		return nil, err
	}

	if actor.EmployeeCode == code {
		return target, nil
	}

	decision, err := authz.CanAct(s.dir, actor, authz.Action{Kind: authz.ActionReadOther}, authz.ResourceRef{OwnerCode: code})
	if err != nil {
		logger.Warnf("查看用户档案时目录解析异常: actor=%s target=%s err=%v", actor.EmployeeCode, code, err)
	}
	if !decision.Allowed {
		return nil, ErrForbidden
	}
	return target, nil
}

// List 用户列表（仅管理员）
func (s *UserService) List(actor *model.User, page, pageSize int, role, department string) ([]model.User, int64, error) {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		return nil, 0, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.List(page, pageSize, role, department)
}

// UpdateUser 更新用户信息（仅 admin/super_admin，角色不可改）
func (s *UserService) UpdateUser(actor *model.User, code string, req *model.UpdateUserRequest) (*model.User, error) {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		return nil, ErrForbidden
	}

	user, err := s.repo.FindByCode(code)
	if err != nil {
		return nil, err
	}
	// 不能修改平级或更高阶的账号
	if user.Role.Rank() >= actor.Role.Rank() {
		return nil, ErrRoleTooHigh
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.ManagerType != nil {
		if user.Role != model.RoleManager {
			return nil, errors.New("仅 manager 可以设置 manager_type")
		}
		if !req.ManagerType.Valid() {
			return nil, fmt.Errorf("无效的 manager_type: %s", *req.ManagerType)
		}
		user.ManagerType = *req.ManagerType
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.TeamLeadCode != nil {
		user.TeamLeadCode = *req.TeamLeadCode
	}
	if req.ManagerCode != nil {
		user.ManagerCode = *req.ManagerCode
	}
	if req.AdminCode != nil {
		user.AdminCode = *req.AdminCode
	}
	if req.VehicleNumber != nil {
		user.VehicleNumber = *req.VehicleNumber
	}
	if req.VehicleType != nil {
		user.VehicleType = *req.VehicleType
	}

	// 链路变更后重新校验完整性
	if _, err := hierarchy.ResolveApproverChain(s.dir, user); err != nil {
		var integrity *hierarchy.IntegrityError
		if errors.As(err, &integrity) {
			return nil, fmt.Errorf("上级链路不完整: %w", integrity)
		}
		return nil, err
	}

	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}

// Deactivate 软停用用户（仅 admin/super_admin，不可停用自己）
func (s *UserService) Deactivate(actor *model.User, code string) error {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		return ErrForbidden
	}
	if actor.EmployeeCode == code {
		return errors.New("不能停用自己的账号")
	}

	target, err := s.repo.FindByCode(code)
	if err != nil {
		return err
	}
	// 不能停用平级或更高阶的账号
	if target.Role.Rank() >= actor.Role.Rank() {
		return ErrRoleTooHigh
	}

	if err := s.repo.Deactivate(code); err != nil {
		return err
	}
	logger.Infof("停用用户: %s (操作人 %s)", code, actor.EmployeeCode)
	return nil
}

// ApproverChain 查看某用户的审批链（本人或管理员）。
// 链路不完整时把截断链和完整性错误一并返回，便于运营端展示。
func (s *UserService) ApproverChain(actor *model.User, code string) ([]hierarchy.ChainEntry, error) {
	if actor.EmployeeCode != code && actor.Role.Rank() < model.RoleAdmin.Rank() {
		return nil, ErrForbidden
	}

	target, err := s.dir.Get(code)
	if err != nil {
		return nil, err
	}
	return hierarchy.ResolveApproverChain(s.dir, target)
}

// Subordinates 查看下属列表
func (s *UserService) Subordinates(actor *model.User) ([]model.User, error) {
	subs, err := hierarchy.ResolveSubordinates(s.dir, actor)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []model.User{}, nil
	}

	codes := make([]string, 0, len(subs))
	for code := range subs {
		codes = append(codes, code)
	}
	return s.repo.FindByCodes(codes)
}
