package repository

import (
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) DB() *gorm.DB {
	return r.db
}

func (r *AttendanceRepository) Create(record *model.AttendanceRecord) error {
	return r.db.Create(record).Error
}

func (r *AttendanceRepository) FindByID(id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDForUpdate 带行锁查询（审批事务内使用）
func (r *AttendanceRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUserAndDate 查某人某天的考勤记录
func (r *AttendanceRepository) FindByUserAndDate(userCode string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.Where("user_code = ? AND work_date = ?", userCode, date.Format("2006-01-02")).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) Update(record *model.AttendanceRecord) error {
	return r.db.Save(record).Error
}

// UpdateStatus 在事务内回写状态投影
func (r *AttendanceRepository) UpdateStatus(tx *gorm.DB, id string, status model.AttendanceStatus) error {
	return tx.Model(&model.AttendanceRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListByUser 查某人的考勤记录（按日期倒序，可限定月份）
func (r *AttendanceRepository) ListByUser(userCode string, month string, page, pageSize int) ([]model.AttendanceRecord, int64, error) {
	var records []model.AttendanceRecord
	var total int64

	query := r.db.Model(&model.AttendanceRecord{}).Where("user_code = ?", userCode)
	if month != "" {
		// month 格式 YYYY-MM
		query = query.Where("work_date >= ? AND work_date < ?", month+"-01", nextMonth(month))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("work_date DESC").Find(&records).Error
	return records, total, err
}

// ListByUsers 查一组用户的考勤记录（下属视图）
func (r *AttendanceRepository) ListByUsers(userCodes []string, status model.AttendanceStatus, page, pageSize int) ([]model.AttendanceRecord, int64, error) {
	var records []model.AttendanceRecord
	var total int64

	query := r.db.Model(&model.AttendanceRecord{}).Where("user_code IN ?", userCodes)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("work_date DESC").Find(&records).Error
	return records, total, err
}

// nextMonth YYYY-MM 的下一个月
func nextMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.AddDate(0, 1, 0).Format("2006-01")
}
