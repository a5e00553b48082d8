package parking

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/authz"
	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/distributed"
	"github.com/fisker/officehub-backend/pkg/logger"
	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/fisker/officehub-backend/pkg/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrNoFreeSlot 没有空闲车位
	ErrNoFreeSlot = errors.New("no free parking slot available")
	// ErrAlreadyParked 已有在场停车记录
	ErrAlreadyParked = errors.New("active parking allocation already exists")
	// ErrNoVehicle 用户档案中没有登记车辆
	ErrNoVehicle = errors.New("no vehicle registered on user profile")
	// ErrSlotOccupied 车位仍被占用，不能下线
	ErrSlotOccupied = errors.New("parking slot is currently occupied")
)

// 分布式锁的key（按车位类型分段，员工和访客互不阻塞）
const (
	claimLockKeyEmployee = "officehub:parking:claim:employee"
	claimLockKeyVisitor  = "officehub:parking:claim:visitor"
	claimLockExpiry      = 10 * time.Second
)

// ParkingService 停车位管理与分配
type ParkingService struct {
	repo *repository.ParkingRepository
	dir  hierarchy.Directory
}

func NewParkingService(repo *repository.ParkingRepository, dir hierarchy.Directory) *ParkingService {
	return &ParkingService{repo: repo, dir: dir}
}

// ===== Slot Management =====

// CreateSlot 创建车位（admin 或停车经理）
func (s *ParkingService) CreateSlot(actor *model.User, slotCode, slotLabel string, parkingType model.ParkingType) (*model.ParkingSlot, error) {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainParking})
	if !decision.Allowed {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainParking), decision.Reason).Inc()
		return nil, ErrForbidden
	}

	if parkingType == "" {
		parkingType = model.ParkingTypeEmployee
	}
	if parkingType != model.ParkingTypeEmployee && parkingType != model.ParkingTypeVisitor {
		return nil, fmt.Errorf("无效的车位类型: %s", parkingType)
	}

	if slotCode == "" {
		count, err := s.repo.CountSlots()
		if err != nil {
			return nil, err
		}
		slotCode = fmt.Sprintf("PKG-%04d", count+1)
	}

	slot := &model.ParkingSlot{
		ID:          uuid.New().String(),
		SlotCode:    slotCode,
		SlotLabel:   slotLabel,
		ParkingType: parkingType,
		Status:      model.ParkingSlotAvailable,
		IsActive:    true,
	}
	if err := s.repo.CreateSlot(slot); err != nil {
		return nil, fmt.Errorf("创建车位失败: %w", err)
	}
	return slot, nil
}

// SetSlotStatus 手工调整车位状态（维修停用等，admin 或停车经理）
func (s *ParkingService) SetSlotStatus(actor *model.User, slotID string, status model.ParkingSlotStatus) (*model.ParkingSlot, error) {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainParking})
	if !decision.Allowed {
		return nil, ErrForbidden
	}

	slot, err := s.repo.FindSlotByID(slotID)
	if err != nil {
		return nil, err
	}
	slot.Status = status
	if err := s.repo.UpdateSlot(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// DeleteSlot 下线车位（软删除）。被占用的车位必须先释放。
func (s *ParkingService) DeleteSlot(actor *model.User, slotID string) error {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainParking})
	if !decision.Allowed {
		return ErrForbidden
	}

	slot, err := s.repo.FindSlotByID(slotID)
	if err != nil {
		return err
	}
	if slot.Status == model.ParkingSlotOccupied {
		return ErrSlotOccupied
	}
	slot.IsActive = false
	slot.Status = model.ParkingSlotInactive
	return s.repo.UpdateSlot(slot)
}

// ListSlots 车位列表（登录用户均可查看）
func (s *ParkingService) ListSlots(parkingType model.ParkingType, status model.ParkingSlotStatus) ([]model.ParkingSlot, error) {
	return s.repo.ListSlots(parkingType, status)
}

// Summary 车位统计，同时刷新占用量指标
func (s *ParkingService) Summary(parkingType model.ParkingType) (*model.ParkingSummary, error) {
	summary, err := s.repo.Summary(parkingType)
	if err != nil {
		return nil, err
	}
	label := string(parkingType)
	if label == "" {
		label = "all"
	}
	metrics.ParkingSlotsOccupied.WithLabelValues(label).Set(float64(summary.Occupied))
	return summary, nil
}

// ===== Allocation =====

// RequestSlot 员工自助申请车位：找到第一个空闲员工车位并占用。
// Redis 锁用于多实例下减少无效争抢，行锁保证同一车位不会被占两次。
func (s *ParkingService) RequestSlot(actor *model.User) (*model.ParkingAllocation, error) {
	if actor.VehicleNumber == "" {
		return nil, ErrNoVehicle
	}

	// 一人同时只能占一个车位
	if _, err := s.repo.FindActiveAllocationByUser(actor.EmployeeCode); err == nil {
		return nil, ErrAlreadyParked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var alloc *model.ParkingAllocation
	err := distributed.WithLock(redis.GetClient(), claimLockKeyEmployee, claimLockExpiry, func() error {
		return s.repo.DB().Transaction(func(tx *gorm.DB) error {
			slot, err := s.repo.ClaimFirstFreeSlot(tx, model.ParkingTypeEmployee)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					metrics.ParkingAllocationConflicts.Inc()
					return ErrNoFreeSlot
				}
				return err
			}

			alloc = &model.ParkingAllocation{
				ID:            uuid.New().String(),
				SlotID:        slot.ID,
				UserCode:      actor.EmployeeCode,
				VehicleNumber: actor.VehicleNumber,
				VehicleType:   actor.VehicleType,
				EntryTime:     time.Now(),
				IsActive:      true,
			}
			if err := s.repo.CreateAllocation(tx, alloc); err != nil {
				return err
			}
			alloc.Slot = slot
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("分配车位: %s -> %s", alloc.Slot.SlotCode, actor.EmployeeCode)
	return alloc, nil
}

// RegisterVisitor 登记访客停车（admin 或停车经理）。
// 指定了 slot_id 则占用该车位，否则自动分配第一个空闲访客车位。
func (s *ParkingService) RegisterVisitor(actor *model.User, req *model.VisitorParkingRequest) (*model.ParkingAllocation, error) {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainParking})
	if !decision.Allowed {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainParking), decision.Reason).Inc()
		return nil, ErrForbidden
	}

	var alloc *model.ParkingAllocation
	err := distributed.WithLock(redis.GetClient(), claimLockKeyVisitor, claimLockExpiry, func() error {
		return s.repo.DB().Transaction(func(tx *gorm.DB) error {
			var slot *model.ParkingSlot
			var err error
			if req.SlotID != "" {
				slot, err = s.repo.ClaimSlotByID(tx, req.SlotID)
			} else {
				slot, err = s.repo.ClaimFirstFreeSlot(tx, model.ParkingTypeVisitor)
			}
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					metrics.ParkingAllocationConflicts.Inc()
					return ErrNoFreeSlot
				}
				return err
			}

			alloc = &model.ParkingAllocation{
				ID:             uuid.New().String(),
				SlotID:         slot.ID,
				VisitorName:    req.VisitorName,
				VisitorPhone:   req.VisitorPhone,
				VisitorCompany: req.VisitorCompany,
				VehicleNumber:  req.VehicleNumber,
				VehicleType:    req.VehicleType,
				EntryTime:      time.Now(),
				IsActive:       true,
				Notes:          req.Notes,
			}
			if err := s.repo.CreateAllocation(tx, alloc); err != nil {
				return err
			}
			alloc.Slot = slot
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// Release 释放车位（离场）。本人或停车管理可操作。
func (s *ParkingService) Release(actor *model.User, allocationID string) (*model.ParkingAllocation, error) {
	existing, err := s.repo.FindAllocationByID(allocationID)
	if err != nil {
		return nil, err
	}

	// 员工本人可以释放自己的车位，访客停车由管理人员释放
	if existing.UserCode != actor.EmployeeCode {
		decision, _ := authz.CanAct(s.dir, actor,
			authz.Action{Kind: authz.ActionManage},
			authz.ResourceRef{Domain: model.DomainParking})
		if !decision.Allowed {
			return nil, ErrForbidden
		}
	}

	var alloc *model.ParkingAllocation
	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = s.repo.FindActiveAllocationForUpdate(tx, allocationID)
		if err != nil {
			return err
		}

		now := time.Now()
		alloc.ExitTime = &now
		alloc.IsActive = false
		if err := s.repo.CloseAllocation(tx, alloc); err != nil {
			return err
		}
		return s.repo.ReleaseSlot(tx, alloc.SlotID)
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// MyAllocation 查自己当前的停车记录
func (s *ParkingService) MyAllocation(actor *model.User) (*model.ParkingAllocation, error) {
	return s.repo.FindActiveAllocationByUser(actor.EmployeeCode)
}

// ListAllocations 分配记录列表（admin 或停车经理）
func (s *ParkingService) ListAllocations(actor *model.User, activeOnly bool, page, pageSize int) ([]model.ParkingAllocation, int64, error) {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainParking})
	if !decision.Allowed {
		return nil, 0, ErrForbidden
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListAllocations(activeOnly, page, pageSize)
}
