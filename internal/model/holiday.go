package model

import (
	"time"
)

// Holiday 节假日
type Holiday struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	HolidayName string    `json:"holiday_name" gorm:"type:varchar(100);not null"`
	HolidayDate time.Time `json:"holiday_date" gorm:"type:date;not null;index"`
	IsMandatory bool      `json:"is_mandatory" gorm:"default:true"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// CreateHolidayRequest 创建节假日请求
type CreateHolidayRequest struct {
	HolidayName string `json:"holiday_name" binding:"required"`
	HolidayDate string `json:"holiday_date" binding:"required"` // YYYY-MM-DD
	IsMandatory *bool  `json:"is_mandatory"`
	Description string `json:"description"`
}
