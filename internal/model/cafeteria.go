package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FoodOrderStatus 餐食订单状态
type FoodOrderStatus string

const (
	FoodOrderPending   FoodOrderStatus = "pending"   // 待处理
	FoodOrderPreparing FoodOrderStatus = "preparing" // 制作中
	FoodOrderReady     FoodOrderStatus = "ready"     // 待取餐
	FoodOrderDelivered FoodOrderStatus = "delivered" // 已送达
	FoodOrderCancelled FoodOrderStatus = "cancelled" // 已取消
)

// Valid 判断订单状态是否合法
func (s FoodOrderStatus) Valid() bool {
	switch s {
	case FoodOrderPending, FoodOrderPreparing, FoodOrderReady, FoodOrderDelivered, FoodOrderCancelled:
		return true
	}
	return false
}

// FoodItem 菜单项
type FoodItem struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	Description  string          `json:"description,omitempty" gorm:"type:text"`
	Category     string          `json:"category" gorm:"type:varchar(20);index"` // breakfast, lunch, snacks, dinner
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsVegetarian bool            `json:"is_vegetarian" gorm:"default:false"`
	IsAvailable  bool            `json:"is_available" gorm:"default:true;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FoodItem) TableName() string {
	return "food_items"
}

// FoodOrder 餐食订单（购物车式多菜品）
type FoodOrder struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber  string          `json:"order_number" gorm:"type:varchar(20);uniqueIndex;not null"` // ORD-XXXX
	UserCode     string          `json:"user_code" gorm:"type:varchar(20);not null;index"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status       FoodOrderStatus `json:"status" gorm:"type:varchar(10);default:pending;index"`
	DeliveryTime string          `json:"delivery_time,omitempty" gorm:"type:varchar(10)"` // HH:MM:SS
	Notes        string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Items []FoodOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (FoodOrder) TableName() string {
	return "food_orders"
}

// FoodOrderItem 订单明细行
// 单价在下单时固化，后续菜单调价不影响已生成的订单。
type FoodOrderItem struct {
	ID                  uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID             string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ItemID              string          `json:"item_id" gorm:"type:varchar(36);not null"`
	ItemName            string          `json:"item_name" gorm:"type:varchar(100)"`
	Quantity            int             `json:"quantity" gorm:"not null"`
	UnitPrice           decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	LineTotal           decimal.Decimal `json:"line_total" gorm:"type:decimal(10,2);not null"`
	SpecialInstructions string          `json:"special_instructions,omitempty" gorm:"type:text"`
}

func (FoodOrderItem) TableName() string {
	return "food_order_items"
}

// CreateFoodOrderRequest 下单请求
type CreateFoodOrderRequest struct {
	OrderItems   []OrderItemInput `json:"order_items" binding:"required,min=1"`
	DeliveryTime string           `json:"delivery_time"`
	Notes        string           `json:"notes"`
}

// OrderItemInput 下单请求中的单个菜品
type OrderItemInput struct {
	ItemID              string `json:"item_id" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"special_instructions"`
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status FoodOrderStatus `json:"status" binding:"required"`
}

// TableType 餐桌类型
type TableType string

const (
	TableTypeRegular TableType = "regular" // 普通桌
	TableTypeBooth   TableType = "booth"   // 卡座
)

// CafeteriaTable 餐桌
// 容量限定 1-20 人，桌号 TBL-XXXX 自动分配或管理员指定
type CafeteriaTable struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TableCode  string    `json:"table_code" gorm:"type:varchar(20);uniqueIndex;not null"` // TBL-XXXX
	TableLabel string    `json:"table_label" gorm:"type:varchar(50)"`
	Capacity   int       `json:"capacity" gorm:"not null"`
	TableType  TableType `json:"table_type" gorm:"type:varchar(10);default:regular"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`
	IsActive   bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CafeteriaTable) TableName() string {
	return "cafeteria_tables"
}

// TableBooking 餐桌预订（自动确认，受容量约束）
type TableBooking struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TableID     string        `json:"table_id" gorm:"type:varchar(36);not null;index"`
	UserCode    string        `json:"user_code" gorm:"type:varchar(20);not null;index"`
	BookingDate time.Time     `json:"booking_date" gorm:"type:date;not null;index"`
	StartTime   string        `json:"start_time" gorm:"type:varchar(10);not null"` // HH:MM
	EndTime     string        `json:"end_time" gorm:"type:varchar(10);not null"`
	GuestCount  int           `json:"guest_count" gorm:"not null"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(10);default:confirmed;index"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Table *CafeteriaTable `json:"table,omitempty" gorm:"foreignKey:TableID"`
}

func (TableBooking) TableName() string {
	return "table_bookings"
}

// CreateTableRequest 创建餐桌请求
type CreateTableRequest struct {
	TableCode  string    `json:"table_code"`
	TableLabel string    `json:"table_label" binding:"required"`
	Capacity   int       `json:"capacity" binding:"required,min=1,max=20"`
	TableType  TableType `json:"table_type"`
	Notes      string    `json:"notes"`
}

// CreateTableBookingRequest 餐桌预订请求
type CreateTableBookingRequest struct {
	TableID     string `json:"table_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"` // YYYY-MM-DD
	StartTime   string `json:"start_time" binding:"required"`   // HH:MM
	EndTime     string `json:"end_time" binding:"required"`
	GuestCount  int    `json:"guest_count" binding:"required,min=1"`
	Notes       string `json:"notes"`
}
