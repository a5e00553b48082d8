package model

import (
	"time"
)

// Role 用户角色（封闭枚举，按等级从高到低排列）
type Role string

const (
	RoleSuperAdmin Role = "super_admin" // 超级管理员
	RoleAdmin      Role = "admin"       // 管理员
	RoleManager    Role = "manager"     // 部门经理（必须指定 manager_type）
	RoleTeamLead   Role = "team_lead"   // 团队负责人（必须指定 department）
	RoleEmployee   Role = "employee"    // 普通员工
)

// Rank 角色等级，数值越大权限越高
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 5
	case RoleAdmin:
		return 4
	case RoleManager:
		return 3
	case RoleTeamLead:
		return 2
	case RoleEmployee:
		return 1
	default:
		return 0
	}
}

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ManagerType 经理专业领域（仅 role=manager 时有意义）
type ManagerType string

const (
	ManagerTypeParking        ManagerType = "parking"         // 停车管理
	ManagerTypeAttendance     ManagerType = "attendance"      // 考勤管理
	ManagerTypeDeskConference ManagerType = "desk_conference" // 工位与会议室管理
	ManagerTypeCafeteria      ManagerType = "cafeteria"       // 餐厅管理
	ManagerTypeITSupport      ManagerType = "it_support"      // IT支持
)

// Valid 判断经理类型是否合法
func (m ManagerType) Valid() bool {
	switch m {
	case ManagerTypeParking, ManagerTypeAttendance, ManagerTypeDeskConference,
		ManagerTypeCafeteria, ManagerTypeITSupport:
		return true
	}
	return false
}

// User 平台用户（身份目录的数据载体）
// 上级链路字段 TeamLeadCode/ManagerCode/AdminCode 指向更高等级用户的工号，
// 审批链完全由角色与这三个字段推导，不做任何缓存。
type User struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EmployeeCode string      `json:"employee_code" gorm:"type:varchar(20);uniqueIndex;not null"` // 工号 EMP-XXXX
	Email        string      `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password     string      `json:"-" gorm:"type:varchar(255);not null"` // 不在JSON中暴露
	FirstName    string      `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName     string      `json:"last_name" gorm:"type:varchar(50)"`
	Role         Role        `json:"role" gorm:"type:varchar(20);not null;index"`
	ManagerType  ManagerType `json:"manager_type,omitempty" gorm:"type:varchar(20);index"` // 仅 role=manager 时有值
	Department   string      `json:"department,omitempty" gorm:"type:varchar(50)"`         // 仅 role=team_lead 时有值

	// 上级链路（可为空：链路顶端的 admin/super_admin 没有上级）
	TeamLeadCode string `json:"team_lead_code,omitempty" gorm:"type:varchar(20);index"`
	ManagerCode  string `json:"manager_code,omitempty" gorm:"type:varchar(20);index"`
	AdminCode    string `json:"admin_code,omitempty" gorm:"type:varchar(20);index"`

	// 车辆信息（停车模块使用）
	VehicleNumber string `json:"vehicle_number,omitempty" gorm:"type:varchar(20)"`
	VehicleType   string `json:"vehicle_type,omitempty" gorm:"type:varchar(10)"` // car, bike

	// 软停用标记：保留历史审批记录，永不物理删除
	IsActive bool `json:"is_active" gorm:"default:true;index"`

	// 2FA相关字段
	TwoFactorEnabled bool   `json:"two_factor_enabled" gorm:"column:two_factor_enabled;default:false"`
	TwoFactorSecret  string `json:"-" gorm:"column:two_factor_secret;type:varchar(255)"` // 不在JSON中暴露

	LastLoginTime *time.Time `json:"last_login_time,omitempty" gorm:"type:timestamp"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// FullName 用户全名
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// 2FA验证码（启用2FA的用户必填）
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken       string `json:"access_token"`
	User              User   `json:"user"`
	RequiresTwoFactor bool   `json:"requires_two_factor,omitempty"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=6"`
	FirstName   string      `json:"first_name" binding:"required"`
	LastName    string      `json:"last_name"`
	Role        Role        `json:"role" binding:"required"`
	ManagerType ManagerType `json:"manager_type"`
	Department  string      `json:"department"`

	TeamLeadCode string `json:"team_lead_code"`
	ManagerCode  string `json:"manager_code"`
	AdminCode    string `json:"admin_code"`

	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// UpdateUserRequest 更新用户请求（仅允许修改的字段）
type UpdateUserRequest struct {
	FirstName     *string      `json:"first_name"`
	LastName      *string      `json:"last_name"`
	ManagerType   *ManagerType `json:"manager_type"`
	Department    *string      `json:"department"`
	TeamLeadCode  *string      `json:"team_lead_code"`
	ManagerCode   *string      `json:"manager_code"`
	AdminCode     *string      `json:"admin_code"`
	VehicleNumber *string      `json:"vehicle_number"`
	VehicleType   *string      `json:"vehicle_type"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}
