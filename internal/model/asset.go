package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AssetStatus IT资产状态
type AssetStatus string

const (
	AssetStatusAvailable AssetStatus = "available" // 可分配
	AssetStatusAssigned  AssetStatus = "assigned"  // 已分配
	AssetStatusRepair    AssetStatus = "repair"    // 维修中
	AssetStatusRetired   AssetStatus = "retired"   // 已报废
)

// ITAsset IT资产
type ITAsset struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AssetCode      string          `json:"asset_code" gorm:"type:varchar(20);uniqueIndex;not null"` // AST-XXXX
	Name           string          `json:"name" gorm:"type:varchar(100);not null"`
	AssetType      string          `json:"asset_type" gorm:"type:varchar(20);index"` // laptop, desktop, monitor, phone, other
	Manufacturer   string          `json:"manufacturer,omitempty" gorm:"type:varchar(50)"`
	Model          string          `json:"model,omitempty" gorm:"type:varchar(50)"`
	SerialNumber   string          `json:"serial_number,omitempty" gorm:"type:varchar(50);index"`
	PurchaseDate   *time.Time      `json:"purchase_date,omitempty" gorm:"type:date"`
	PurchasePrice  decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2)"`
	WarrantyUntil  *time.Time      `json:"warranty_until,omitempty" gorm:"type:date"`
	Specifications datatypes.JSON  `json:"specifications,omitempty" gorm:"type:json"`
	Status         AssetStatus     `json:"status" gorm:"type:varchar(10);default:available;index"`
	AssignedTo     string          `json:"assigned_to,omitempty" gorm:"type:varchar(20);index"` // 当前持有人工号
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ITAsset) TableName() string {
	return "it_assets"
}

// AssetAssignment 资产分配历史（只追加）
type AssetAssignment struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetID   string    `json:"asset_id" gorm:"type:varchar(36);not null;index"`
	UserCode  string    `json:"user_code" gorm:"type:varchar(20);not null;index"`
	Action    string    `json:"action" gorm:"type:varchar(10);not null"` // assign, unassign
	ActorCode string    `json:"actor_code" gorm:"type:varchar(20)"`      // 操作人
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (AssetAssignment) TableName() string {
	return "asset_assignments"
}

// AssignAssetRequest 资产分配请求
type AssignAssetRequest struct {
	UserCode string `json:"user_code" binding:"required"`
	Notes    string `json:"notes"`
}
