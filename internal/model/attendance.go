package model

import (
	"time"
)

// AttendanceStatus 考勤记录状态
type AttendanceStatus string

const (
	AttendanceStatusDraft           AttendanceStatus = "draft"            // 草稿（已打卡，未提交）
	AttendanceStatusPendingApproval AttendanceStatus = "pending_approval" // 待审批
	AttendanceStatusApproved        AttendanceStatus = "approved"         // 已批准
	AttendanceStatusRejected        AttendanceStatus = "rejected"         // 已拒绝
)

// AttendanceRecord 考勤记录
// 单级审批：提交后由审批链第一级（通常是 team_lead）或考勤经理批准。
type AttendanceRecord struct {
	ID           string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserCode     string           `json:"user_code" gorm:"type:varchar(20);not null;index:idx_attendance_user_date"`
	WorkDate     time.Time        `json:"work_date" gorm:"type:date;not null;index:idx_attendance_user_date"`
	CheckInTime  time.Time        `json:"check_in_time" gorm:"not null"`
	CheckOutTime *time.Time       `json:"check_out_time,omitempty"`
	TotalHours   *float64         `json:"total_hours,omitempty"`
	Status       AttendanceStatus `json:"status" gorm:"type:varchar(20);default:draft;index"` // 状态投影，由审批记录推导
	Notes        string           `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// AttendanceStatusResponse 今日考勤状态
type AttendanceStatusResponse struct {
	CheckedIn  bool              `json:"checked_in"`
	CheckedOut bool              `json:"checked_out"`
	Record     *AttendanceRecord `json:"record,omitempty"`
}
