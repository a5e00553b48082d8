package model

import (
	"time"
)

// LeaveStatus 请假状态
type LeaveStatus string

const (
	LeaveStatusPendingLevel1  LeaveStatus = "pending_level1"  // 待一级审批
	LeaveStatusApprovedLevel1 LeaveStatus = "approved_level1" // 一级已批准，待二级审批
	LeaveStatusApprovedFinal  LeaveStatus = "approved_final"  // 终审通过
	LeaveStatusRejected       LeaveStatus = "rejected"        // 已拒绝
	LeaveStatusCancelled      LeaveStatus = "cancelled"       // 已取消
)

// Terminal 是否为终态
func (s LeaveStatus) Terminal() bool {
	switch s {
	case LeaveStatusApprovedFinal, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	}
	return false
}

// LeaveType 请假类型
type LeaveType string

const (
	LeaveTypeCasual LeaveType = "casual" // 事假
	LeaveTypeSick   LeaveType = "sick"   // 病假
	LeaveTypeEarned LeaveType = "earned" // 年假
)

// Valid 判断请假类型是否合法
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeCasual, LeaveTypeSick, LeaveTypeEarned:
		return true
	}
	return false
}

// LeaveRequest 请假申请
// 两级审批：一级为审批链第一位（通常 team_lead），二级为第二位（通常 manager）。
// 两级必须由不同的审批人完成，余额在终审通过时一次性扣减。
type LeaveRequest struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserCode  string      `json:"user_code" gorm:"type:varchar(20);not null;index"`
	LeaveType LeaveType   `json:"leave_type" gorm:"type:varchar(10);not null"`
	StartDate time.Time   `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time   `json:"end_date" gorm:"type:date;not null"`
	TotalDays int         `json:"total_days" gorm:"not null"`
	Reason    string      `json:"reason" gorm:"type:text"`
	Status    LeaveStatus `json:"status" gorm:"type:varchar(20);default:pending_level1;index"` // 状态投影，由审批记录推导
	CreatedAt time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// LeaveBalance 请假余额账本
// 扣减仅发生在对应申请到达 approved_final 的事务内，允许的取消会恢复余额。
type LeaveBalance struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserCode  string    `json:"user_code" gorm:"type:varchar(20);not null;uniqueIndex:idx_balance_user_type_year"`
	LeaveType LeaveType `json:"leave_type" gorm:"type:varchar(10);not null;uniqueIndex:idx_balance_user_type_year"`
	Year      int       `json:"year" gorm:"not null;uniqueIndex:idx_balance_user_type_year"`
	TotalDays int       `json:"total_days" gorm:"not null"`
	UsedDays  int       `json:"used_days" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// Remaining 剩余天数
func (b *LeaveBalance) Remaining() int {
	return b.TotalDays - b.UsedDays
}

// CreateLeaveRequest 请假申请请求体
type CreateLeaveRequest struct {
	LeaveType LeaveType `json:"leave_type" binding:"required"`
	StartDate string    `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string    `json:"end_date" binding:"required"`   // YYYY-MM-DD
	Reason    string    `json:"reason" binding:"required"`
}
