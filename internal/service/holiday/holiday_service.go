package holiday

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/metrics"
)

var (
	ErrForbidden   = errors.New("无权执行此操作")
	ErrInvalidDate = errors.New("日期格式错误, 应为 YYYY-MM-DD")
)

// HolidayService 节假日日历管理, 请假工作日计算依赖此日历
type HolidayService struct {
	repo *repository.HolidayRepository
}

func NewHolidayService(repo *repository.HolidayRepository) *HolidayService {
	return &HolidayService{repo: repo}
}

// Create 创建节假日, 仅管理员可操作
func (s *HolidayService) Create(actor *model.User, req *model.CreateHolidayRequest) (*model.Holiday, error) {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		metrics.PermissionDenials.WithLabelValues("holiday", "create").Inc()
		return nil, ErrForbidden
	}

	date, err := time.Parse("2006-01-02", req.HolidayDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	mandatory := true
	if req.IsMandatory != nil {
		mandatory = *req.IsMandatory
	}

	holiday := &model.Holiday{
		ID:          uuid.New().String(),
		HolidayName: req.HolidayName,
		HolidayDate: date,
		IsMandatory: mandatory,
		Description: req.Description,
	}
	if err := s.repo.Create(holiday); err != nil {
		return nil, err
	}
	return holiday, nil
}

// Update 修改节假日信息
func (s *HolidayService) Update(actor *model.User, id string, req *model.CreateHolidayRequest) (*model.Holiday, error) {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		metrics.PermissionDenials.WithLabelValues("holiday", "update").Inc()
		return nil, ErrForbidden
	}

	holiday, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.HolidayName != "" {
		holiday.HolidayName = req.HolidayName
	}
	if req.HolidayDate != "" {
		date, err := time.Parse("2006-01-02", req.HolidayDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		holiday.HolidayDate = date
	}
	if req.IsMandatory != nil {
		holiday.IsMandatory = *req.IsMandatory
	}
	if req.Description != "" {
		holiday.Description = req.Description
	}

	if err := s.repo.Update(holiday); err != nil {
		return nil, err
	}
	return holiday, nil
}

// Delete 删除节假日
func (s *HolidayService) Delete(actor *model.User, id string) error {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		metrics.PermissionDenials.WithLabelValues("holiday", "delete").Inc()
		return ErrForbidden
	}
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// ListByYear 按年份查询节假日, 所有登录用户可见
func (s *HolidayService) ListByYear(year int) ([]model.Holiday, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	return s.repo.ListByYear(year)
}
