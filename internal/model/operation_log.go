package model

import (
	"time"
)

// OperationLog 操作日志（写操作审计）
type OperationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserCode  string    `json:"user_code" gorm:"type:varchar(20);index"`
	IP        string    `json:"ip" gorm:"type:varchar(45)"`
	Method    string    `json:"method" gorm:"type:varchar(10)"`
	Path      string    `json:"path" gorm:"type:varchar(200);index"`
	Status    int       `json:"status"`
	TimeCost  int64     `json:"time_cost"` // 毫秒
	UserAgent string    `json:"user_agent" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (OperationLog) TableName() string {
	return "operation_logs"
}
