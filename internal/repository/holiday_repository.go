package repository

import (
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) Create(holiday *model.Holiday) error {
	return r.db.Create(holiday).Error
}

func (r *HolidayRepository) FindByID(id string) (*model.Holiday, error) {
	var holiday model.Holiday
	err := r.db.Where("id = ?", id).First(&holiday).Error
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *HolidayRepository) Update(holiday *model.Holiday) error {
	return r.db.Save(holiday).Error
}

func (r *HolidayRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&model.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByYear 查某年的节假日
func (r *HolidayRepository) ListByYear(year int) ([]model.Holiday, error) {
	var holidays []model.Holiday
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	err := r.db.Where("holiday_date >= ? AND holiday_date < ?", start, end).
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}

// ListBetween 查日期区间内的节假日（请假天数计算用）
func (r *HolidayRepository) ListBetween(start, end time.Time) ([]model.Holiday, error) {
	var holidays []model.Holiday
	err := r.db.Where("holiday_date >= ? AND holiday_date <= ?",
		start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}
