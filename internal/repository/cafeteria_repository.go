package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

type CafeteriaRepository struct {
	db *gorm.DB
}

func NewCafeteriaRepository(db *gorm.DB) *CafeteriaRepository {
	return &CafeteriaRepository{db: db}
}

func (r *CafeteriaRepository) DB() *gorm.DB {
	return r.db
}

// ===== Menu Methods =====

func (r *CafeteriaRepository) CreateItem(item *model.FoodItem) error {
	return r.db.Create(item).Error
}

func (r *CafeteriaRepository) FindItemByID(id string) (*model.FoodItem, error) {
	var item model.FoodItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemsByIDs 批量查菜单项（下单时固化单价用）
func (r *CafeteriaRepository) FindItemsByIDs(ids []string) ([]model.FoodItem, error) {
	var items []model.FoodItem
	err := r.db.Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *CafeteriaRepository) UpdateItem(item *model.FoodItem) error {
	return r.db.Save(item).Error
}

// ListItems 查菜单（可按分类过滤，默认只返回可售菜品）
func (r *CafeteriaRepository) ListItems(category string, includeUnavailable bool) ([]model.FoodItem, error) {
	var items []model.FoodItem
	query := r.db.Model(&model.FoodItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if !includeUnavailable {
		query = query.Where("is_available = ?", true)
	}
	err := query.Order("category ASC, name ASC").Find(&items).Error
	return items, err
}

// ===== Order Methods =====

// CreateOrder 在事务内创建订单及其明细行
func (r *CafeteriaRepository) CreateOrder(tx *gorm.DB, order *model.FoodOrder, items []model.FoodOrderItem) error {
	if err := tx.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	return tx.Create(&items).Error
}

func (r *CafeteriaRepository) FindOrderByID(id string) (*model.FoodOrder, error) {
	var order model.FoodOrder
	err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *CafeteriaRepository) UpdateOrderStatus(id string, status model.FoodOrderStatus) error {
	result := r.db.Model(&model.FoodOrder{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOrdersByUser 查某人的订单
func (r *CafeteriaRepository) ListOrdersByUser(userCode string, page, pageSize int) ([]model.FoodOrder, int64, error) {
	var orders []model.FoodOrder
	var total int64

	query := r.db.Model(&model.FoodOrder{}).Where("user_code = ?", userCode)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Offset(offset).Limit(pageSize).
		Order("created_at DESC").Find(&orders).Error
	return orders, total, err
}

// ListAllOrders 全部订单（餐厅经理视图，可按状态过滤）
func (r *CafeteriaRepository) ListAllOrders(status model.FoodOrderStatus, page, pageSize int) ([]model.FoodOrder, int64, error) {
	var orders []model.FoodOrder
	var total int64

	query := r.db.Model(&model.FoodOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Offset(offset).Limit(pageSize).
		Order("created_at DESC").Find(&orders).Error
	return orders, total, err
}

// CountOrders 订单计数（生成订单号用）
func (r *CafeteriaRepository) CountOrders() (int64, error) {
	var count int64
	err := r.db.Model(&model.FoodOrder{}).Count(&count).Error
	return count, err
}

// ===== Table Methods =====

func (r *CafeteriaRepository) CreateTable(table *model.CafeteriaTable) error {
	return r.db.Create(table).Error
}

func (r *CafeteriaRepository) FindTableByID(id string) (*model.CafeteriaTable, error) {
	var table model.CafeteriaTable
	err := r.db.Where("id = ?", id).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *CafeteriaRepository) UpdateTable(table *model.CafeteriaTable) error {
	return r.db.Save(table).Error
}

// ListTables 餐桌列表，可按最小容量过滤
func (r *CafeteriaRepository) ListTables(minCapacity int) ([]model.CafeteriaTable, error) {
	var tables []model.CafeteriaTable
	query := r.db.Where("is_active = ?", true)
	if minCapacity > 0 {
		query = query.Where("capacity >= ?", minCapacity)
	}
	err := query.Order("table_code ASC").Find(&tables).Error
	return tables, err
}

func (r *CafeteriaRepository) CountTables() (int64, error) {
	var count int64
	err := r.db.Model(&model.CafeteriaTable{}).Count(&count).Error
	return count, err
}

// ===== Table Booking Methods =====

func (r *CafeteriaRepository) CreateTableBooking(booking *model.TableBooking) error {
	return r.db.Create(booking).Error
}

func (r *CafeteriaRepository) FindTableBookingByID(id string) (*model.TableBooking, error) {
	var booking model.TableBooking
	err := r.db.Preload("Table").Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *CafeteriaRepository) UpdateTableBookingStatus(id string, status model.BookingStatus) error {
	result := r.db.Model(&model.TableBooking{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTableBookings 餐桌预订列表（userCode 为空时查全部）
func (r *CafeteriaRepository) ListTableBookings(userCode string, page, pageSize int) ([]model.TableBooking, int64, error) {
	var bookings []model.TableBooking
	var total int64

	query := r.db.Model(&model.TableBooking{})
	if userCode != "" {
		query = query.Where("user_code = ?", userCode)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Table").Offset(offset).Limit(pageSize).
		Order("booking_date DESC, start_time DESC").Find(&bookings).Error
	return bookings, total, err
}
