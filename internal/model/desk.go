package model

import (
	"time"
)

// BookingStatus 预订状态（工位/会议室通用）
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // 待审批（仅会议室）
	BookingStatusConfirmed BookingStatus = "confirmed" // 已确认
	BookingStatusRejected  BookingStatus = "rejected"  // 已拒绝
	BookingStatusCancelled BookingStatus = "cancelled" // 已取消
)

// Terminal 是否为终态
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// Desk 工位
type Desk struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DeskCode          string    `json:"desk_code" gorm:"type:varchar(20);uniqueIndex;not null"` // DSK-XXXX
	DeskLabel         string    `json:"desk_label" gorm:"type:varchar(50);not null"`
	Zone              string    `json:"zone,omitempty" gorm:"type:varchar(50)"`
	HasMonitor        bool      `json:"has_monitor" gorm:"default:false"`
	HasDockingStation bool      `json:"has_docking_station" gorm:"default:false"`
	Notes             string    `json:"notes,omitempty" gorm:"type:text"`
	IsActive          bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Desk) TableName() string {
	return "desks"
}

// DeskBooking 工位预订
// 不走审批，创建即确认；同一工位的已确认预订日期区间（闭区间）不得重叠，
// 重叠检查与写入必须在同一事务内原子完成。
type DeskBooking struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DeskID    string        `json:"desk_id" gorm:"type:varchar(36);not null;index"`
	UserCode  string        `json:"user_code" gorm:"type:varchar(20);not null;index"`
	StartDate time.Time     `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time     `json:"end_date" gorm:"type:date;not null"`
	Purpose   string        `json:"purpose,omitempty" gorm:"type:text"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(10);default:confirmed;index"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Desk *Desk `json:"desk,omitempty" gorm:"foreignKey:DeskID"`
}

func (DeskBooking) TableName() string {
	return "desk_bookings"
}

// ConferenceRoom 会议室
type ConferenceRoom struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RoomCode           string    `json:"room_code" gorm:"type:varchar(20);uniqueIndex;not null"` // ROOM-XXXX
	RoomLabel          string    `json:"room_label" gorm:"type:varchar(100);not null"`
	Capacity           int       `json:"capacity" gorm:"default:0"`
	Zone               string    `json:"zone,omitempty" gorm:"type:varchar(50)"`
	HasProjector       bool      `json:"has_projector" gorm:"default:false"`
	HasWhiteboard      bool      `json:"has_whiteboard" gorm:"default:false"`
	HasVideoConference bool      `json:"has_video_conference" gorm:"default:false"`
	IsActive           bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ConferenceRoom) TableName() string {
	return "conference_rooms"
}

// RoomBooking 会议室预订
// 需要 desk_conference 经理审批：pending -> confirmed/rejected。
// 确认时同样做闭区间重叠检查。
type RoomBooking struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RoomID    string        `json:"room_id" gorm:"type:varchar(36);not null;index"`
	UserCode  string        `json:"user_code" gorm:"type:varchar(20);not null;index"`
	StartDate time.Time     `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time     `json:"end_date" gorm:"type:date;not null"`
	Purpose   string        `json:"purpose,omitempty" gorm:"type:text"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(10);default:pending;index"` // 状态投影，由审批记录推导
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Room *ConferenceRoom `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

func (RoomBooking) TableName() string {
	return "room_bookings"
}

// CreateBookingRequest 预订请求（工位/会议室通用）
type CreateBookingRequest struct {
	DeskID    string `json:"desk_id"`
	RoomID    string `json:"room_id"`
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	Purpose   string `json:"purpose"`
}
