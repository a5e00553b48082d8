package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/authz"
	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/internal/workflow"
	"github.com/fisker/officehub-backend/pkg/logger"
	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrAlreadyCheckedIn 当天已打过上班卡
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	// ErrNotCheckedIn 当天尚未打上班卡
	ErrNotCheckedIn = errors.New("not checked in today")
	// ErrAlreadyCheckedOut 当天已打过下班卡
	ErrAlreadyCheckedOut = errors.New("already checked out today")
)

// AttendanceService 考勤打卡与审批
type AttendanceService struct {
	repo      *repository.AttendanceRepository
	stageRepo *repository.StageRepository
	dir       hierarchy.Directory
}

func NewAttendanceService(repo *repository.AttendanceRepository, stageRepo *repository.StageRepository, dir hierarchy.Directory) *AttendanceService {
	return &AttendanceService{repo: repo, stageRepo: stageRepo, dir: dir}
}

// today 当天零点（日期语义）
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CheckIn 上班打卡。打卡永远是本人动作，超管也不能替别人打卡。
func (s *AttendanceService) CheckIn(actor *model.User, notes string) (*model.AttendanceRecord, error) {
	if _, err := s.repo.FindByUserAndDate(actor.EmployeeCode, today()); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &model.AttendanceRecord{
		ID:          uuid.New().String(),
		UserCode:    actor.EmployeeCode,
		WorkDate:    today(),
		CheckInTime: time.Now(),
		Status:      model.AttendanceStatusDraft,
		Notes:       notes,
	}
	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("创建考勤记录失败: %w", err)
	}
	return record, nil
}

// CheckOut 下班打卡，计算当天工时
func (s *AttendanceService) CheckOut(actor *model.User) (*model.AttendanceRecord, error) {
	record, err := s.repo.FindByUserAndDate(actor.EmployeeCode, today())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	if record.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	now := time.Now()
	hours := now.Sub(record.CheckInTime).Hours()
	record.CheckOutTime = &now
	record.TotalHours = &hours

	if err := s.repo.Update(record); err != nil {
		return nil, fmt.Errorf("更新考勤记录失败: %w", err)
	}
	return record, nil
}

// TodayStatus 今日打卡状态
func (s *AttendanceService) TodayStatus(actor *model.User) (*model.AttendanceStatusResponse, error) {
	record, err := s.repo.FindByUserAndDate(actor.EmployeeCode, today())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.AttendanceStatusResponse{}, nil
		}
		return nil, err
	}
	return &model.AttendanceStatusResponse{
		CheckedIn:  true,
		CheckedOut: record.CheckOutTime != nil,
		Record:     record,
	}, nil
}

// Submit 提交考勤记录进入审批。只有记录归属人本人可以提交。
func (s *AttendanceService) Submit(actor *model.User, recordID string) (*model.AttendanceRecord, error) {
	var record *model.AttendanceRecord
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.repo.FindByIDForUpdate(tx, recordID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainAttendance, recordID)
		if err != nil {
			return err
		}

		stageNo, next, err := workflow.NextAttendanceStage(history, model.StageActionSubmit, actor.EmployeeCode, record.UserCode, "")
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainAttendance)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainAttendance,
			RequestID: recordID,
			StageNo:   stageNo,
			Action:    model.StageActionSubmit,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		record.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainAttendance), string(model.StageActionSubmit)).Inc()
		return s.repo.UpdateStatus(tx, recordID, next)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Decide 审批考勤记录（approve/reject）。
// 审批资格：归属人审批链上的任意一级，或考勤领域的通用审批人。
func (s *AttendanceService) Decide(actor *model.User, recordID string, req *model.DecisionRequest) (*model.AttendanceRecord, error) {
	if req.Action != model.StageActionApprove && req.Action != model.StageActionReject {
		return nil, workflow.ErrInvalidStateTransition
	}

	current, err := s.repo.FindByID(recordID)
	if err != nil {
		return nil, err
	}

	decision, err := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionApprove, Stage: 1},
		authz.ResourceRef{Domain: model.DomainAttendance, OwnerCode: current.UserCode})
	if err != nil {
		metrics.HierarchyIntegrityErrors.Inc()
		logger.Errorf("考勤审批链路异常: record=%s owner=%s err=%v", recordID, current.UserCode, err)
	}
	if !decision.Allowed {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainAttendance), decision.Reason).Inc()
		return nil, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}

	var record *model.AttendanceRecord
	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.repo.FindByIDForUpdate(tx, recordID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainAttendance, recordID)
		if err != nil {
			return err
		}

		stageNo, next, err := workflow.NextAttendanceStage(history, req.Action, actor.EmployeeCode, record.UserCode, req.Reason())
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainAttendance)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainAttendance,
			RequestID: recordID,
			StageNo:   stageNo,
			Action:    req.Action,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Reason(),
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		record.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainAttendance), string(req.Action)).Inc()
		return s.repo.UpdateStatus(tx, recordID, next)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListMine 查自己的考勤记录
func (s *AttendanceService) ListMine(actor *model.User, month string, page, pageSize int) ([]model.AttendanceRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListByUser(actor.EmployeeCode, month, page, pageSize)
}

// ListSubordinates 查下属的考勤记录（审批人视图）。
// 考勤经理可以跨链查看全部待审批记录。
func (s *AttendanceService) ListSubordinates(actor *model.User, status model.AttendanceStatus, page, pageSize int) ([]model.AttendanceRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if actor.Role == model.RoleSuperAdmin || authz.IsUniversalApprover(actor, model.DomainAttendance) {
		users, err := s.dir.List()
		if err != nil {
			return nil, 0, err
		}
		codes := make([]string, 0, len(users))
		for _, u := range users {
			codes = append(codes, u.EmployeeCode)
		}
		return s.repo.ListByUsers(codes, status, page, pageSize)
	}

	subs, err := hierarchy.ResolveSubordinates(s.dir, actor)
	if err != nil {
		return nil, 0, err
	}
	if len(subs) == 0 {
		return []model.AttendanceRecord{}, 0, nil
	}
	codes := make([]string, 0, len(subs))
	for code := range subs {
		codes = append(codes, code)
	}
	return s.repo.ListByUsers(codes, status, page, pageSize)
}

// History 查某条考勤记录的审批历史（本人、审批链成员或管理员）
func (s *AttendanceService) History(actor *model.User, recordID string) ([]model.ApprovalStage, error) {
	record, err := s.repo.FindByID(recordID)
	if err != nil {
		return nil, err
	}

	if actor.EmployeeCode != record.UserCode {
		decision, _ := authz.CanAct(s.dir, actor,
			authz.Action{Kind: authz.ActionReadOther},
			authz.ResourceRef{Domain: model.DomainAttendance, OwnerCode: record.UserCode})
		if !decision.Allowed {
			return nil, ErrForbidden
		}
	}
	return s.stageRepo.History(s.repo.DB(), model.DomainAttendance, recordID)
}
