package model

import (
	"time"
)

// ParkingSlotStatus 车位状态
type ParkingSlotStatus string

const (
	ParkingSlotAvailable ParkingSlotStatus = "available" // 空闲
	ParkingSlotOccupied  ParkingSlotStatus = "occupied"  // 已占用
	ParkingSlotInactive  ParkingSlotStatus = "inactive"  // 停用（维修等）
)

// ParkingType 车位类型
type ParkingType string

const (
	ParkingTypeEmployee ParkingType = "employee" // 员工车位
	ParkingTypeVisitor  ParkingType = "visitor"  // 访客车位
)

// ParkingSlot 停车位
// "找到第一个空闲车位并占用"必须在同一事务内完成（行级锁），
// 多实例部署时再叠加 Redis 分布式锁，避免两人抢到同一车位。
type ParkingSlot struct {
	ID          string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SlotCode    string            `json:"slot_code" gorm:"type:varchar(20);uniqueIndex;not null"` // PKG-XXXX 或管理员指定
	SlotLabel   string            `json:"slot_label" gorm:"type:varchar(50)"`
	ParkingType ParkingType       `json:"parking_type" gorm:"type:varchar(10);default:employee;index"`
	Status      ParkingSlotStatus `json:"status" gorm:"type:varchar(10);default:available;index"`
	IsActive    bool              `json:"is_active" gorm:"default:true;index"`
	CreatedAt   time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ParkingSlot) TableName() string {
	return "parking_slots"
}

// ParkingAllocation 停车分配记录
type ParkingAllocation struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SlotID   string `json:"slot_id" gorm:"type:varchar(36);not null;index"`
	UserCode string `json:"user_code,omitempty" gorm:"type:varchar(20);index"` // 访客停车时为空

	// 访客信息（仅访客停车）
	VisitorName    string `json:"visitor_name,omitempty" gorm:"type:varchar(100)"`
	VisitorPhone   string `json:"visitor_phone,omitempty" gorm:"type:varchar(20)"`
	VisitorCompany string `json:"visitor_company,omitempty" gorm:"type:varchar(100)"`

	VehicleNumber string     `json:"vehicle_number" gorm:"type:varchar(20)"`
	VehicleType   string     `json:"vehicle_type" gorm:"type:varchar(10)"`
	EntryTime     time.Time  `json:"entry_time" gorm:"not null"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	IsActive      bool       `json:"is_active" gorm:"default:true;index"`
	Notes         string     `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Slot *ParkingSlot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
}

func (ParkingAllocation) TableName() string {
	return "parking_allocations"
}

// ParkingSummary 车位统计
type ParkingSummary struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Occupied  int64 `json:"occupied"`
	Inactive  int64 `json:"inactive"`
}

// VisitorParkingRequest 访客停车请求
type VisitorParkingRequest struct {
	SlotID         string `json:"slot_id"` // 可选，为空时自动分配访客车位
	VisitorName    string `json:"visitor_name" binding:"required"`
	VisitorPhone   string `json:"visitor_phone"`
	VisitorCompany string `json:"visitor_company"`
	VehicleNumber  string `json:"vehicle_number" binding:"required"`
	VehicleType    string `json:"vehicle_type"`
	Notes          string `json:"notes"`
}
