package model

import (
	"time"
)

// RequestDomain 审批请求所属的业务域
type RequestDomain string

const (
	DomainAttendance  RequestDomain = "attendance"
	DomainLeave       RequestDomain = "leave"
	DomainITRequest   RequestDomain = "it_request"
	DomainProject     RequestDomain = "project"
	DomainRoomBooking RequestDomain = "room_booking"
	DomainParking     RequestDomain = "parking"
	DomainDesk        RequestDomain = "desk"
	DomainCafeteria   RequestDomain = "cafeteria"
)

// StageAction 审批动作
type StageAction string

const (
	StageActionSubmit  StageAction = "submit"  // 提交
	StageActionApprove StageAction = "approve" // 批准
	StageActionReject  StageAction = "reject"  // 拒绝
	StageActionCancel  StageAction = "cancel"  // 取消
)

// ApprovalStage 审批环节记录（不可变，只追加）
// 每条记录对应工作流的一次状态推进，请求的当前状态由其
// 按序累积的环节记录唯一推导，status 列仅是该推导的投影。
type ApprovalStage struct {
	ID          uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain      RequestDomain `json:"domain" gorm:"type:varchar(20);not null;index:idx_stage_request"`
	RequestID   string        `json:"request_id" gorm:"type:varchar(36);not null;index:idx_stage_request"`
	StageNo     int           `json:"stage_no" gorm:"not null"` // 审批级别，提交/取消记为0
	Action      StageAction   `json:"action" gorm:"type:varchar(10);not null"`
	ActorCode   string        `json:"actor_code" gorm:"type:varchar(20);not null"`
	ActorRole   Role          `json:"actor_role" gorm:"type:varchar(20)"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
}

func (ApprovalStage) TableName() string {
	return "approval_stages"
}

// DecisionRequest 审批决定请求体
type DecisionRequest struct {
	Action StageAction `json:"action" binding:"required"` // approve / reject
	Notes  string      `json:"notes"`
	// 拒绝时必须给出原因（notes 为空时使用）
	RejectionReason string `json:"rejection_reason"`
}

// Reason 拒绝原因（兼容 notes 与 rejection_reason 两种字段）
func (r *DecisionRequest) Reason() string {
	if r.RejectionReason != "" {
		return r.RejectionReason
	}
	return r.Notes
}
