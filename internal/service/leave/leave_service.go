package leave

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
	// ErrInvalidDateRange 日期区间非法
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrOverlappingLeave 与已有请假申请的日期重叠
	ErrOverlappingLeave = errors.New("overlapping leave request exists")
	// ErrInsufficientBalance 余额不足
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	// ErrZeroWorkingDays 区间内没有工作日
	ErrZeroWorkingDays = errors.New("leave range contains no working days")
)

// LeaveService 请假申请与两级审批
type LeaveService struct {
	repo        *repository.LeaveRepository
	stageRepo   *repository.StageRepository
	holidayRepo *repository.HolidayRepository
	dir         hierarchy.Directory
}

func NewLeaveService(repo *repository.LeaveRepository, stageRepo *repository.StageRepository, holidayRepo *repository.HolidayRepository, dir hierarchy.Directory) *LeaveService {
	return &LeaveService{repo: repo, stageRepo: stageRepo, holidayRepo: holidayRepo, dir: dir}
}

// CountWorkingDays 统计闭区间内的工作日天数。
// 周六日和节假日不计入，跨周末/跨节假日的申请只扣实际工作日。
func CountWorkingDays(start, end time.Time, holidays []model.Holiday) int {
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.HolidayDate.Format("2006-01-02")] = struct{}{}
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidaySet[d.Format("2006-01-02")]; ok {
			continue
		}
		days++
	}
	return days
}

// Apply 提交请假申请。
// 天数按工作日计算，提交时做余额预检，真正的扣减发生在终审事务内。
func (s *LeaveService) Apply(actor *model.User, req *model.CreateLeaveRequest) (*model.LeaveRequest, error) {
	if !req.LeaveType.Valid() {
		return nil, fmt.Errorf("无效的请假类型: %s", req.LeaveType)
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q", ErrInvalidDateRange, req.StartDate)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date %q", ErrInvalidDateRange, req.EndDate)
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	holidays, err := s.holidayRepo.ListBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("查询节假日失败: %w", err)
	}
	totalDays := CountWorkingDays(start, end, holidays)
	if totalDays == 0 {
		return nil, ErrZeroWorkingDays
	}

	// 与未终结/已通过的申请不得日期重叠
	overlap, err := s.repo.CountOverlapping(actor.EmployeeCode, start, end)
	if err != nil {
		return nil, err
	}
	if overlap > 0 {
		return nil, ErrOverlappingLeave
	}

	// 余额预检（并发安全由终审扣减时的条件更新保证）
	balance, err := s.repo.FindBalance(actor.EmployeeCode, req.LeaveType, start.Year())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 未初始化 %d 年 %s 余额", ErrInsufficientBalance, start.Year(), req.LeaveType)
		}
		return nil, err
	}
	if balance.Remaining() < totalDays {
		return nil, fmt.Errorf("%w: 剩余 %d 天，申请 %d 天", ErrInsufficientBalance, balance.Remaining(), totalDays)
	}

	request := &model.LeaveRequest{
		ID:        uuid.New().String(),
		UserCode:  actor.EmployeeCode,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		TotalDays: totalDays,
		Reason:    req.Reason,
		Status:    model.LeaveStatusPendingLevel1,
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		stage := &model.ApprovalStage{
			Domain:    model.DomainLeave,
			RequestID: request.ID,
			StageNo:   0,
			Action:    model.StageActionSubmit,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Reason,
		}
		return s.stageRepo.Append(tx, stage)
	})
	if err != nil {
		return nil, fmt.Errorf("创建请假申请失败: %w", err)
	}

	metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainLeave), string(model.StageActionSubmit)).Inc()
	return request, nil
}

// Decide 审批请假申请（approve/reject）。
// 一级由审批链第一位处理，二级由第二位处理；更高环节的审批人可以
// 越级处理较低环节，但同一个人不能完成两级（环节验证器强制）。
// 终审通过时在同一事务内扣减余额，扣减失败则整个审批回滚。
func (s *LeaveService) Decide(actor *model.User, requestID string, req *model.DecisionRequest) (*model.LeaveRequest, error) {
	if req.Action != model.StageActionApprove && req.Action != model.StageActionReject {
		return nil, workflow.ErrInvalidStateTransition
	}

	current, err := s.repo.FindByID(requestID)
	if err != nil {
		return nil, err
	}

	// 当前状态决定目标环节：pending_level1 -> 1, approved_level1 -> 2
	stageNo := 1
	if current.Status == model.LeaveStatusApprovedLevel1 {
		stageNo = 2
	}

	decision, err := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionApprove, Stage: stageNo},
		authz.ResourceRef{Domain: model.DomainLeave, OwnerCode: current.UserCode})
	if err != nil {
		metrics.HierarchyIntegrityErrors.Inc()
		logger.Errorf("请假审批链路异常: request=%s owner=%s err=%v", requestID, current.UserCode, err)
	}
	if !decision.Allowed {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainLeave), decision.Reason).Inc()
		return nil, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}

	var request *model.LeaveRequest
	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.repo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainLeave, requestID)
		if err != nil {
			return err
		}

		appliedStage, next, err := workflow.NextLeaveStage(history, req.Action, actor.EmployeeCode, request.UserCode, req.Reason())
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainLeave)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainLeave,
			RequestID: requestID,
			StageNo:   appliedStage,
			Action:    req.Action,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Reason(),
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(tx, requestID, next); err != nil {
			return err
		}
		request.Status = next

		// 终审通过：同一事务内扣减余额，恰好一次
		if next == model.LeaveStatusApprovedFinal {
			if err := s.repo.DeductBalance(tx, request.UserCode, request.LeaveType, request.StartDate.Year(), request.TotalDays); err != nil {
				return fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
			}
			metrics.LeaveBalanceDeductions.WithLabelValues(string(request.LeaveType)).Inc()
		}
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainLeave), string(req.Action)).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Cancel 取消请假申请。只有申请人本人可以取消，且仅限终审前。
// 终审通过后的申请不可取消：余额已扣，事后撤销需走管理员余额调整。
func (s *LeaveService) Cancel(actor *model.User, requestID string) (*model.LeaveRequest, error) {
	var request *model.LeaveRequest
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.repo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainLeave, requestID)
		if err != nil {
			return err
		}

		_, next, err := workflow.NextLeaveStage(history, model.StageActionCancel, actor.EmployeeCode, request.UserCode, "")
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainLeave)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainLeave,
			RequestID: requestID,
			StageNo:   0,
			Action:    model.StageActionCancel,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		request.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainLeave), string(model.StageActionCancel)).Inc()
		return s.repo.UpdateStatus(tx, requestID, next)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Get 查看申请详情（本人、审批链成员或领域管理）
func (s *LeaveService) Get(actor *model.User, requestID string) (*model.LeaveRequest, error) {
	request, err := s.repo.FindByID(requestID)
	if err != nil {
		return nil, err
	}

	if actor.EmployeeCode != request.UserCode {
		decision, _ := authz.CanAct(s.dir, actor,
			authz.Action{Kind: authz.ActionReadOther},
			authz.ResourceRef{Domain: model.DomainLeave, OwnerCode: request.UserCode})
		if !decision.Allowed {
			return nil, ErrForbidden
		}
	}
	return request, nil
}

// History 查申请的审批历史
func (s *LeaveService) History(actor *model.User, requestID string) ([]model.ApprovalStage, error) {
	if _, err := s.Get(actor, requestID); err != nil {
		return nil, err
	}
	return s.stageRepo.History(s.repo.DB(), model.DomainLeave, requestID)
}

// ListMine 查自己的请假申请
func (s *LeaveService) ListMine(actor *model.User, status model.LeaveStatus, page, pageSize int) ([]model.LeaveRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListByUser(actor.EmployeeCode, status, page, pageSize)
}

// ListSubordinates 查下属的请假申请（审批人视图）
func (s *LeaveService) ListSubordinates(actor *model.User, status model.LeaveStatus, page, pageSize int) ([]model.LeaveRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if actor.Role == model.RoleSuperAdmin {
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
		return []model.LeaveRequest{}, 0, nil
	}
	codes := make([]string, 0, len(subs))
	for code := range subs {
		codes = append(codes, code)
	}
	return s.repo.ListByUsers(codes, status, page, pageSize)
}

// Balances 查余额（本人、上级或管理员）
func (s *LeaveService) Balances(actor *model.User, userCode string, year int) ([]model.LeaveBalance, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	if actor.EmployeeCode != userCode {
		decision, _ := authz.CanAct(s.dir, actor,
			authz.Action{Kind: authz.ActionReadOther},
			authz.ResourceRef{Domain: model.DomainLeave, OwnerCode: userCode})
		if !decision.Allowed {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListBalances(userCode, year)
}

// AdjustBalance 管理员手工调整已用天数（delta 为正扣减、为负恢复）。
// 用于事后撤销已通过的请假等需要人工介入的场景。
func (s *LeaveService) AdjustBalance(actor *model.User, userCode string, leaveType model.LeaveType, year, delta int) error {
	if actor.Role.Rank() < model.RoleAdmin.Rank() {
		return ErrForbidden
	}
	if !leaveType.Valid() {
		return fmt.Errorf("无效的请假类型: %s", leaveType)
	}
	if delta == 0 {
		return nil
	}

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindBalanceForUpdate(tx, userCode, leaveType, year); err != nil {
			return err
		}
		if delta > 0 {
			return s.repo.DeductBalance(tx, userCode, leaveType, year, delta)
		}
		return s.repo.RestoreBalance(tx, userCode, leaveType, year, -delta)
	})
}
