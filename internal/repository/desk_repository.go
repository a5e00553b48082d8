package repository

import (
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeskRepository struct {
	db *gorm.DB
}

func NewDeskRepository(db *gorm.DB) *DeskRepository {
	return &DeskRepository{db: db}
}

func (r *DeskRepository) DB() *gorm.DB {
	return r.db
}

// ===== Desk Methods =====

func (r *DeskRepository) CreateDesk(desk *model.Desk) error {
	return r.db.Create(desk).Error
}

func (r *DeskRepository) FindDeskByID(id string) (*model.Desk, error) {
	var desk model.Desk
	err := r.db.Where("id = ?", id).First(&desk).Error
	if err != nil {
		return nil, err
	}
	return &desk, nil
}

func (r *DeskRepository) UpdateDesk(desk *model.Desk) error {
	return r.db.Save(desk).Error
}

func (r *DeskRepository) ListDesks(zone string) ([]model.Desk, error) {
	var desks []model.Desk
	query := r.db.Where("is_active = ?", true)
	if zone != "" {
		query = query.Where("zone = ?", zone)
	}
	err := query.Order("desk_code ASC").Find(&desks).Error
	return desks, err
}

// CountDesks 工位总数（生成工位编号用，含已停用）
func (r *DeskRepository) CountDesks() (int64, error) {
	var count int64
	err := r.db.Model(&model.Desk{}).Count(&count).Error
	return count, err
}

// ===== Desk Booking Methods =====

func (r *DeskRepository) CreateBooking(tx *gorm.DB, booking *model.DeskBooking) error {
	return tx.Create(booking).Error
}

func (r *DeskRepository) FindBookingByID(id string) (*model.DeskBooking, error) {
	var booking model.DeskBooking
	err := r.db.Preload("Desk").Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountOverlappingDeskBookings 统计与给定闭区间重叠的已确认预订。
// 区间 [s1,e1] 与 [s2,e2] 重叠当且仅当 s1 <= e2 且 s2 <= e1。
// 必须在持有工位相关行锁的事务内调用，检查与写入才是原子的。
func (r *DeskRepository) CountOverlappingDeskBookings(tx *gorm.DB, deskID string, start, end time.Time, excludeID string) (int64, error) {
	var count int64
	query := tx.Model(&model.DeskBooking{}).
		Where("desk_id = ? AND status = ?", deskID, model.BookingStatusConfirmed).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// LockDesk 锁定工位行，串行化同一工位的并发预订
func (r *DeskRepository) LockDesk(tx *gorm.DB, deskID string) (*model.Desk, error) {
	var desk model.Desk
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", deskID, true).
		First(&desk).Error
	if err != nil {
		return nil, err
	}
	return &desk, nil
}

func (r *DeskRepository) UpdateBookingStatus(tx *gorm.DB, id string, status model.BookingStatus) error {
	return tx.Model(&model.DeskBooking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListDeskBookingsByUser 查某人的工位预订
func (r *DeskRepository) ListDeskBookingsByUser(userCode string, page, pageSize int) ([]model.DeskBooking, int64, error) {
	var bookings []model.DeskBooking
	var total int64

	query := r.db.Model(&model.DeskBooking{}).Where("user_code = ?", userCode)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Desk").Offset(offset).Limit(pageSize).
		Order("start_date DESC").Find(&bookings).Error
	return bookings, total, err
}

// ===== Conference Room Methods =====

func (r *DeskRepository) CreateRoom(room *model.ConferenceRoom) error {
	return r.db.Create(room).Error
}

func (r *DeskRepository) FindRoomByID(id string) (*model.ConferenceRoom, error) {
	var room model.ConferenceRoom
	err := r.db.Where("id = ?", id).First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *DeskRepository) UpdateRoom(room *model.ConferenceRoom) error {
	return r.db.Save(room).Error
}

// LockRoom 在事务内锁住会议室行。冲突检查与确认写入必须
// 在同一把锁内完成，并发审批同一会议室时串行化。
func (r *DeskRepository) LockRoom(tx *gorm.DB, roomID string) (*model.ConferenceRoom, error) {
	var room model.ConferenceRoom
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", roomID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *DeskRepository) ListRooms(zone string) ([]model.ConferenceRoom, error) {
	var rooms []model.ConferenceRoom
	query := r.db.Where("is_active = ?", true)
	if zone != "" {
		query = query.Where("zone = ?", zone)
	}
	err := query.Order("room_code ASC").Find(&rooms).Error
	return rooms, err
}

// CountRooms 会议室总数（生成会议室编号用，含已停用）
func (r *DeskRepository) CountRooms() (int64, error) {
	var count int64
	err := r.db.Model(&model.ConferenceRoom{}).Count(&count).Error
	return count, err
}

// ===== Room Booking Methods =====

func (r *DeskRepository) CreateRoomBooking(tx *gorm.DB, booking *model.RoomBooking) error {
	return tx.Create(booking).Error
}

func (r *DeskRepository) FindRoomBookingByID(id string) (*model.RoomBooking, error) {
	var booking model.RoomBooking
	err := r.db.Preload("Room").Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindRoomBookingForUpdate 带行锁查会议室预订（审批事务内使用）
func (r *DeskRepository) FindRoomBookingForUpdate(tx *gorm.DB, id string) (*model.RoomBooking, error) {
	var booking model.RoomBooking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountOverlappingRoomBookings 统计与给定闭区间重叠的已确认会议室预订
func (r *DeskRepository) CountOverlappingRoomBookings(tx *gorm.DB, roomID string, start, end time.Time, excludeID string) (int64, error) {
	var count int64
	query := tx.Model(&model.RoomBooking{}).
		Where("room_id = ? AND status = ?", roomID, model.BookingStatusConfirmed).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *DeskRepository) UpdateRoomBookingStatus(tx *gorm.DB, id string, status model.BookingStatus) error {
	return tx.Model(&model.RoomBooking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListRoomBookings 查会议室预订（审批人视图可按状态过滤）
func (r *DeskRepository) ListRoomBookings(userCode string, status model.BookingStatus, page, pageSize int) ([]model.RoomBooking, int64, error) {
	var bookings []model.RoomBooking
	var total int64

	query := r.db.Model(&model.RoomBooking{})
	if userCode != "" {
		query = query.Where("user_code = ?", userCode)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Room").Offset(offset).Limit(pageSize).
		Order("start_date DESC").Find(&bookings).Error
	return bookings, total, err
}
