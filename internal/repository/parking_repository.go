package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParkingRepository struct {
	db *gorm.DB
}

func NewParkingRepository(db *gorm.DB) *ParkingRepository {
	return &ParkingRepository{db: db}
}

func (r *ParkingRepository) DB() *gorm.DB {
	return r.db
}

// ===== Slot Methods =====

func (r *ParkingRepository) CreateSlot(slot *model.ParkingSlot) error {
	return r.db.Create(slot).Error
}

func (r *ParkingRepository) FindSlotByID(id string) (*model.ParkingSlot, error) {
	var slot model.ParkingSlot
	err := r.db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *ParkingRepository) UpdateSlot(slot *model.ParkingSlot) error {
	return r.db.Save(slot).Error
}

// ListSlots 查车位列表（可按类型、状态过滤）
func (r *ParkingRepository) ListSlots(parkingType model.ParkingType, status model.ParkingSlotStatus) ([]model.ParkingSlot, error) {
	var slots []model.ParkingSlot
	query := r.db.Where("is_active = ?", true)
	if parkingType != "" {
		query = query.Where("parking_type = ?", parkingType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("slot_code ASC").Find(&slots).Error
	return slots, err
}

// CountSlots 车位总数（生成车位编号用，含已停用）
func (r *ParkingRepository) CountSlots() (int64, error) {
	var count int64
	err := r.db.Model(&model.ParkingSlot{}).Count(&count).Error
	return count, err
}

// ClaimFirstFreeSlot 在事务内找到第一个空闲车位并占用。
// SELECT ... FOR UPDATE 锁定候选行，状态翻转在同一事务内完成，
// 两个并发请求不可能抢到同一个车位。
func (r *ParkingRepository) ClaimFirstFreeSlot(tx *gorm.DB, parkingType model.ParkingType) (*model.ParkingSlot, error) {
	var slot model.ParkingSlot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("parking_type = ? AND status = ? AND is_active = ?", parkingType, model.ParkingSlotAvailable, true).
		Order("slot_code ASC").
		First(&slot).Error
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&model.ParkingSlot{}).
		Where("id = ?", slot.ID).
		Update("status", model.ParkingSlotOccupied).Error; err != nil {
		return nil, err
	}
	slot.Status = model.ParkingSlotOccupied
	return &slot, nil
}

// ClaimSlotByID 在事务内占用指定车位（访客停车指定车位时使用）
func (r *ParkingRepository) ClaimSlotByID(tx *gorm.DB, slotID string) (*model.ParkingSlot, error) {
	var slot model.ParkingSlot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status = ? AND is_active = ?", slotID, model.ParkingSlotAvailable, true).
		First(&slot).Error
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&model.ParkingSlot{}).
		Where("id = ?", slot.ID).
		Update("status", model.ParkingSlotOccupied).Error; err != nil {
		return nil, err
	}
	slot.Status = model.ParkingSlotOccupied
	return &slot, nil
}

// ReleaseSlot 在事务内释放车位
func (r *ParkingRepository) ReleaseSlot(tx *gorm.DB, slotID string) error {
	return tx.Model(&model.ParkingSlot{}).
		Where("id = ? AND status = ?", slotID, model.ParkingSlotOccupied).
		Update("status", model.ParkingSlotAvailable).Error
}

// Summary 车位统计
func (r *ParkingRepository) Summary(parkingType model.ParkingType) (*model.ParkingSummary, error) {
	var summary model.ParkingSummary
	query := r.db.Model(&model.ParkingSlot{}).Where("is_active = ?", true)
	if parkingType != "" {
		query = query.Where("parking_type = ?", parkingType)
	}

	if err := query.Count(&summary.Total).Error; err != nil {
		return nil, err
	}
	if err := query.Session(&gorm.Session{}).Where("status = ?", model.ParkingSlotAvailable).Count(&summary.Available).Error; err != nil {
		return nil, err
	}
	if err := query.Session(&gorm.Session{}).Where("status = ?", model.ParkingSlotOccupied).Count(&summary.Occupied).Error; err != nil {
		return nil, err
	}
	if err := query.Session(&gorm.Session{}).Where("status = ?", model.ParkingSlotInactive).Count(&summary.Inactive).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// ===== Allocation Methods =====

func (r *ParkingRepository) CreateAllocation(tx *gorm.DB, alloc *model.ParkingAllocation) error {
	return tx.Create(alloc).Error
}

func (r *ParkingRepository) FindAllocationByID(id string) (*model.ParkingAllocation, error) {
	var alloc model.ParkingAllocation
	err := r.db.Preload("Slot").Where("id = ?", id).First(&alloc).Error
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// FindActiveAllocationByUser 查某人当前的在场停车记录
func (r *ParkingRepository) FindActiveAllocationByUser(userCode string) (*model.ParkingAllocation, error) {
	var alloc model.ParkingAllocation
	err := r.db.Preload("Slot").
		Where("user_code = ? AND is_active = ?", userCode, true).
		First(&alloc).Error
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// FindActiveAllocationForUpdate 带行锁查在场停车记录（离场事务内使用）
func (r *ParkingRepository) FindActiveAllocationForUpdate(tx *gorm.DB, id string) (*model.ParkingAllocation, error) {
	var alloc model.ParkingAllocation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&alloc).Error
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// CloseAllocation 在事务内关闭停车记录（记录离场时间）
func (r *ParkingRepository) CloseAllocation(tx *gorm.DB, alloc *model.ParkingAllocation) error {
	return tx.Model(&model.ParkingAllocation{}).
		Where("id = ?", alloc.ID).
		Updates(map[string]interface{}{
			"is_active": false,
			"exit_time": alloc.ExitTime,
		}).Error
}

// ListAllocations 分页查分配记录（管理视图）
func (r *ParkingRepository) ListAllocations(activeOnly bool, page, pageSize int) ([]model.ParkingAllocation, int64, error) {
	var allocations []model.ParkingAllocation
	var total int64

	query := r.db.Model(&model.ParkingAllocation{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Slot").Offset(offset).Limit(pageSize).
		Order("entry_time DESC").Find(&allocations).Error
	return allocations, total, err
}
