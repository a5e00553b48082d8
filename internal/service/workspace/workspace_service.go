package workspace

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/authz"
	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/internal/workflow"
	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidDateRange 日期区间非法
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrBookingConflict 与已确认预订的日期重叠
	ErrBookingConflict = errors.New("booking dates conflict with an existing confirmed booking")
)

// WorkspaceService 工位与会议室管理
type WorkspaceService struct {
	repo      *repository.DeskRepository
	stageRepo *repository.StageRepository
	dir       hierarchy.Directory
}

func NewWorkspaceService(repo *repository.DeskRepository, stageRepo *repository.StageRepository, dir hierarchy.Directory) *WorkspaceService {
	return &WorkspaceService{repo: repo, stageRepo: stageRepo, dir: dir}
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", ErrInvalidDateRange, startStr)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", ErrInvalidDateRange, endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// canManage 工位/会议室领域管理权（admin 或 desk_conference 经理）
func (s *WorkspaceService) canManage(actor *model.User) bool {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainDesk})
	return decision.Allowed
}

// ===== Desk Management =====

// CreateDesk 创建工位（admin 或 desk_conference 经理）
func (s *WorkspaceService) CreateDesk(actor *model.User, desk *model.Desk) (*model.Desk, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}

	if desk.DeskCode == "" {
		count, err := s.repo.CountDesks()
		if err != nil {
			return nil, err
		}
		desk.DeskCode = fmt.Sprintf("DSK-%04d", count+1)
	}
	desk.ID = uuid.New().String()
	desk.IsActive = true

	if err := s.repo.CreateDesk(desk); err != nil {
		return nil, fmt.Errorf("创建工位失败: %w", err)
	}
	return desk, nil
}

// UpdateDesk 更新工位信息
func (s *WorkspaceService) UpdateDesk(actor *model.User, desk *model.Desk) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	return s.repo.UpdateDesk(desk)
}

// DeleteDesk 下线工位（软删除），已有预订保持不变
func (s *WorkspaceService) DeleteDesk(actor *model.User, id string) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	desk, err := s.repo.FindDeskByID(id)
	if err != nil {
		return err
	}
	desk.IsActive = false
	return s.repo.UpdateDesk(desk)
}

// GetDesk 查工位
func (s *WorkspaceService) GetDesk(id string) (*model.Desk, error) {
	return s.repo.FindDeskByID(id)
}

// ListDesks 工位列表
func (s *WorkspaceService) ListDesks(zone string) ([]model.Desk, error) {
	return s.repo.ListDesks(zone)
}

// ===== Desk Booking =====

// BookDesk 预订工位。不走审批，创建即确认。
// 锁定工位行后做闭区间重叠检查，检查与写入在同一事务内原子完成。
func (s *WorkspaceService) BookDesk(actor *model.User, req *model.CreateBookingRequest) (*model.DeskBooking, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.DeskID == "" {
		return nil, errors.New("desk_id 不能为空")
	}

	booking := &model.DeskBooking{
		ID:        uuid.New().String(),
		DeskID:    req.DeskID,
		UserCode:  actor.EmployeeCode,
		StartDate: start,
		EndDate:   end,
		Purpose:   req.Purpose,
		Status:    model.BookingStatusConfirmed,
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.LockDesk(tx, req.DeskID); err != nil {
			return err
		}

		overlap, err := s.repo.CountOverlappingDeskBookings(tx, req.DeskID, start, end, "")
		if err != nil {
			return err
		}
		if overlap > 0 {
			metrics.BookingConflicts.WithLabelValues("desk").Inc()
			return ErrBookingConflict
		}
		return s.repo.CreateBooking(tx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelDeskBooking 取消工位预订（本人或管理）
func (s *WorkspaceService) CancelDeskBooking(actor *model.User, bookingID string) (*model.DeskBooking, error) {
	booking, err := s.repo.FindBookingByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserCode != actor.EmployeeCode && !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, workflow.ErrInvalidStateTransition
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		return s.repo.UpdateBookingStatus(tx, bookingID, model.BookingStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = model.BookingStatusCancelled
	return booking, nil
}

// ListMyDeskBookings 查自己的工位预订
func (s *WorkspaceService) ListMyDeskBookings(actor *model.User, page, pageSize int) ([]model.DeskBooking, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListDeskBookingsByUser(actor.EmployeeCode, page, pageSize)
}

// ===== Conference Room Management =====

// CreateRoom 创建会议室（admin 或 desk_conference 经理）
func (s *WorkspaceService) CreateRoom(actor *model.User, room *model.ConferenceRoom) (*model.ConferenceRoom, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}

	if room.RoomCode == "" {
		count, err := s.repo.CountRooms()
		if err != nil {
			return nil, err
		}
		room.RoomCode = fmt.Sprintf("ROOM-%04d", count+1)
	}
	room.ID = uuid.New().String()
	room.IsActive = true

	if err := s.repo.CreateRoom(room); err != nil {
		return nil, fmt.Errorf("创建会议室失败: %w", err)
	}
	return room, nil
}

// UpdateRoom 更新会议室信息
func (s *WorkspaceService) UpdateRoom(actor *model.User, room *model.ConferenceRoom) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	return s.repo.UpdateRoom(room)
}

// DeleteRoom 下线会议室（软删除）
func (s *WorkspaceService) DeleteRoom(actor *model.User, id string) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	room, err := s.repo.FindRoomByID(id)
	if err != nil {
		return err
	}
	room.IsActive = false
	return s.repo.UpdateRoom(room)
}

// ListRooms 会议室列表
func (s *WorkspaceService) ListRooms(zone string) ([]model.ConferenceRoom, error) {
	return s.repo.ListRooms(zone)
}

// ===== Room Booking =====

// BookRoom 申请会议室。进入待审批状态，由 desk_conference 经理确认。
// 创建时先对已确认预订做一次重叠预检，确认时在事务内再查一次。
func (s *WorkspaceService) BookRoom(actor *model.User, req *model.CreateBookingRequest) (*model.RoomBooking, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, errors.New("room_id 不能为空")
	}
	room, err := s.repo.FindRoomByID(req.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, gorm.ErrRecordNotFound
	}

	booking := &model.RoomBooking{
		ID:        uuid.New().String(),
		RoomID:    req.RoomID,
		UserCode:  actor.EmployeeCode,
		StartDate: start,
		EndDate:   end,
		Purpose:   req.Purpose,
		Status:    model.BookingStatusPending,
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		overlap, err := s.repo.CountOverlappingRoomBookings(tx, req.RoomID, start, end, "")
		if err != nil {
			return err
		}
		if overlap > 0 {
			metrics.BookingConflicts.WithLabelValues("room").Inc()
			return ErrBookingConflict
		}

		if err := s.repo.CreateRoomBooking(tx, booking); err != nil {
			return err
		}
		stage := &model.ApprovalStage{
			Domain:    model.DomainRoomBooking,
			RequestID: booking.ID,
			StageNo:   0,
			Action:    model.StageActionSubmit,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Purpose,
		}
		return s.stageRepo.Append(tx, stage)
	})
	if err != nil {
		return nil, err
	}

	metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainRoomBooking), string(model.StageActionSubmit)).Inc()
	return booking, nil
}

// DecideRoomBooking 审批会议室预订（admin 或 desk_conference 经理）。
// 确认时在同一事务内重做重叠检查：两个申请同一时段的预订，
// 只有先确认的那个生效。
func (s *WorkspaceService) DecideRoomBooking(actor *model.User, bookingID string, req *model.DecisionRequest) (*model.RoomBooking, error) {
	if req.Action != model.StageActionApprove && req.Action != model.StageActionReject {
		return nil, workflow.ErrInvalidStateTransition
	}

	// 会议室审批不走上级链，资格即领域管理权
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainRoomBooking})
	if !decision.Allowed {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainRoomBooking), decision.Reason).Inc()
		return nil, ErrForbidden
	}

	var booking *model.RoomBooking
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.repo.FindRoomBookingForUpdate(tx, bookingID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainRoomBooking, bookingID)
		if err != nil {
			return err
		}

		_, next, err := workflow.NextRoomBookingStage(history, req.Action, actor.EmployeeCode, booking.UserCode, req.Reason())
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainRoomBooking)).Inc()
			return err
		}

		if next == model.BookingStatusConfirmed {
			// 先锁会议室行再查重叠：两个待审批预订各自锁自己的
			// 预订行时，重叠检查会互相看不见对方
			if _, err := s.repo.LockRoom(tx, booking.RoomID); err != nil {
				return err
			}
			overlap, err := s.repo.CountOverlappingRoomBookings(tx, booking.RoomID, booking.StartDate, booking.EndDate, bookingID)
			if err != nil {
				return err
			}
			if overlap > 0 {
				metrics.BookingConflicts.WithLabelValues("room").Inc()
				return ErrBookingConflict
			}
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainRoomBooking,
			RequestID: bookingID,
			StageNo:   1,
			Action:    req.Action,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Reason(),
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		booking.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainRoomBooking), string(req.Action)).Inc()
		return s.repo.UpdateRoomBookingStatus(tx, bookingID, next)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelRoomBooking 取消会议室预订。只有申请人本人可以取消，终态后不可取消。
func (s *WorkspaceService) CancelRoomBooking(actor *model.User, bookingID string) (*model.RoomBooking, error) {
	var booking *model.RoomBooking
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.repo.FindRoomBookingForUpdate(tx, bookingID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainRoomBooking, bookingID)
		if err != nil {
			return err
		}

		_, next, err := workflow.NextRoomBookingStage(history, model.StageActionCancel, actor.EmployeeCode, booking.UserCode, "")
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainRoomBooking)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainRoomBooking,
			RequestID: bookingID,
			StageNo:   0,
			Action:    model.StageActionCancel,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		booking.Status = next
		return s.repo.UpdateRoomBookingStatus(tx, bookingID, next)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListRoomBookings 会议室预订列表。
// 普通用户只能看自己的，管理可以按状态查全部。
func (s *WorkspaceService) ListRoomBookings(actor *model.User, status model.BookingStatus, page, pageSize int) ([]model.RoomBooking, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if s.canManage(actor) {
		return s.repo.ListRoomBookings("", status, page, pageSize)
	}
	return s.repo.ListRoomBookings(actor.EmployeeCode, status, page, pageSize)
}
