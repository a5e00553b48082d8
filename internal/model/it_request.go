package model

import (
	"time"
)

// ITRequestStatus IT请求状态
type ITRequestStatus string

const (
	ITRequestPending  ITRequestStatus = "pending"  // 待审批
	ITRequestApproved ITRequestStatus = "approved" // 已批准
	ITRequestRejected ITRequestStatus = "rejected" // 已拒绝
)

// Terminal 是否为终态
func (s ITRequestStatus) Terminal() bool {
	return s == ITRequestApproved || s == ITRequestRejected
}

// ITRequest IT支持请求
// 单级审批，且绕过审批链：唯一的审批资格是 it_support 专业领域
// （或 admin/super_admin），与申请人的上级链路无关。
type ITRequest struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RequestNumber string          `json:"request_number" gorm:"type:varchar(20);uniqueIndex;not null"` // REQ-XXXX
	UserCode      string          `json:"user_code" gorm:"type:varchar(20);not null;index"`
	RequestType   string          `json:"request_type" gorm:"type:varchar(20);index"` // new_asset, repair, software, access, other
	Title         string          `json:"title" gorm:"type:varchar(200);not null"`
	Description   string          `json:"description,omitempty" gorm:"type:text"`
	Priority      string          `json:"priority" gorm:"type:varchar(10);default:normal"` // low, normal, high, urgent
	Status        ITRequestStatus `json:"status" gorm:"type:varchar(10);default:pending;index"` // 状态投影，由审批记录推导
	AssignedTo    string          `json:"assigned_to,omitempty" gorm:"type:varchar(20)"` // 批准后的处理人（不影响状态）
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ITRequest) TableName() string {
	return "it_requests"
}

// CreateITRequestRequest 创建IT请求
type CreateITRequestRequest struct {
	RequestType string `json:"request_type" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}
