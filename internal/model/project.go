package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectPendingApproval ProjectStatus = "pending_approval" // 待审批
	ProjectApproved        ProjectStatus = "approved"         // 已批准（未启动）
	ProjectInProgress      ProjectStatus = "in_progress"      // 进行中
	ProjectOnHold          ProjectStatus = "on_hold"          // 暂停
	ProjectCompleted       ProjectStatus = "completed"        // 已完成
	ProjectRejected        ProjectStatus = "rejected"         // 已拒绝
	ProjectCancelled       ProjectStatus = "cancelled"        // 已取消
)

// Terminal 是否为终态
func (s ProjectStatus) Terminal() bool {
	switch s {
	case ProjectCompleted, ProjectRejected, ProjectCancelled:
		return true
	}
	return false
}

// Project 项目申请
// 扁平审批：任意 admin/super_admin 可批准，不走上级链路。
// 批准后进入执行生命周期 in_progress <-> on_hold -> completed。
type Project struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProjectCode           string          `json:"project_code" gorm:"type:varchar(20);uniqueIndex;not null"` // PRJ-XXXX
	OwnerCode             string          `json:"owner_code" gorm:"type:varchar(20);not null;index"`
	ProjectName           string          `json:"project_name" gorm:"type:varchar(200);not null"`
	Description           string          `json:"description,omitempty" gorm:"type:text"`
	StartDate             *time.Time      `json:"start_date,omitempty" gorm:"type:date"`
	EndDate               *time.Time      `json:"end_date,omitempty" gorm:"type:date"`
	EstimatedBudget       decimal.Decimal `json:"estimated_budget" gorm:"type:decimal(14,2)"`
	ApprovedBudget        decimal.Decimal `json:"approved_budget" gorm:"type:decimal(14,2)"`
	TeamSize              int             `json:"team_size" gorm:"default:0"`
	RequiredSkills        datatypes.JSON  `json:"required_skills,omitempty" gorm:"type:json"`
	BusinessJustification string          `json:"business_justification,omitempty" gorm:"type:text"`
	Status                ProjectStatus   `json:"status" gorm:"type:varchar(20);default:pending_approval;index"` // 状态投影，由审批记录推导
	CreatedAt             time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ProjectName           string          `json:"project_name" binding:"required"`
	Description           string          `json:"description"`
	StartDate             string          `json:"start_date"` // YYYY-MM-DD
	EndDate               string          `json:"end_date"`   // YYYY-MM-DD
	EstimatedBudget       decimal.Decimal `json:"estimated_budget"`
	TeamSize              int             `json:"team_size"`
	RequiredSkills        []string        `json:"required_skills"`
	BusinessJustification string          `json:"business_justification"`
}

// ProjectDecisionRequest 项目审批请求（可附带核定预算）
type ProjectDecisionRequest struct {
	Action          StageAction      `json:"action" binding:"required"`
	Notes           string           `json:"notes"`
	RejectionReason string           `json:"rejection_reason"`
	ApprovedBudget  *decimal.Decimal `json:"approved_budget"`
}

// UpdateProjectStatusRequest 项目执行状态更新请求
type UpdateProjectStatusRequest struct {
	Status ProjectStatus `json:"status" binding:"required"`
	Notes  string        `json:"notes"`
}
