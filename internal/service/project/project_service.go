package project

import (
	"encoding/json"
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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidDate 日期格式非法
	ErrInvalidDate = errors.New("invalid date")
)

// ProjectService 项目申请、审批与执行生命周期
type ProjectService struct {
	repo      *repository.ProjectRepository
	stageRepo *repository.StageRepository
	dir       hierarchy.Directory
}

func NewProjectService(repo *repository.ProjectRepository, stageRepo *repository.StageRepository, dir hierarchy.Directory) *ProjectService {
	return &ProjectService{repo: repo, stageRepo: stageRepo, dir: dir}
}

// canManage 项目审批权：没有通用审批人，只有 admin/super_admin
func (s *ProjectService) canManage(actor *model.User) bool {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainProject})
	return decision.Allowed
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return &t, nil
}

// Create 提交项目申请
func (s *ProjectService) Create(actor *model.User, req *model.CreateProjectRequest) (*model.Project, error) {
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: 结束日期早于开始日期", ErrInvalidDate)
	}
	if req.EstimatedBudget.IsNegative() {
		return nil, errors.New("预算不能为负")
	}

	var skills datatypes.JSON
	if len(req.RequiredSkills) > 0 {
		raw, err := json.Marshal(req.RequiredSkills)
		if err != nil {
			return nil, err
		}
		skills = datatypes.JSON(raw)
	}

	count, err := s.repo.Count()
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:                    uuid.New().String(),
		ProjectCode:           fmt.Sprintf("PRJ-%04d", count+1),
		OwnerCode:             actor.EmployeeCode,
		ProjectName:           req.ProjectName,
		Description:           req.Description,
		StartDate:             start,
		EndDate:               end,
		EstimatedBudget:       req.EstimatedBudget,
		TeamSize:              req.TeamSize,
		RequiredSkills:        skills,
		BusinessJustification: req.BusinessJustification,
		Status:                model.ProjectPendingApproval,
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		stage := &model.ApprovalStage{
			Domain:    model.DomainProject,
			RequestID: project.ID,
			StageNo:   0,
			Action:    model.StageActionSubmit,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
		}
		return s.stageRepo.Append(tx, stage)
	})
	if err != nil {
		return nil, fmt.Errorf("创建项目申请失败: %w", err)
	}

	metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainProject), string(model.StageActionSubmit)).Inc()
	return project, nil
}

// Decide 审批项目（平级审批：任意 admin/super_admin，不走上级链）。
// 批准时可附带核定预算，未给出时默认等于申请预算。
func (s *ProjectService) Decide(actor *model.User, projectID string, req *model.ProjectDecisionRequest) (*model.Project, error) {
	if req.Action != model.StageActionApprove && req.Action != model.StageActionReject {
		return nil, workflow.ErrInvalidStateTransition
	}
	if !s.canManage(actor) {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainProject), authz.ReasonInsufficientRole).Inc()
		return nil, ErrForbidden
	}

	reason := req.RejectionReason
	if reason == "" {
		reason = req.Notes
	}

	var project *model.Project
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = s.repo.FindByIDForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainProject, projectID)
		if err != nil {
			return err
		}

		_, next, err := workflow.NextProjectStage(history, req.Action, actor.EmployeeCode, project.OwnerCode, reason)
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainProject)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainProject,
			RequestID: projectID,
			StageNo:   1,
			Action:    req.Action,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     reason,
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}

		if next == model.ProjectApproved {
			approved := project.EstimatedBudget
			if req.ApprovedBudget != nil {
				if req.ApprovedBudget.IsNegative() {
					return errors.New("核定预算不能为负")
				}
				approved = *req.ApprovedBudget
			}
			project.ApprovedBudget = approved
			project.Status = next
			metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainProject), string(req.Action)).Inc()
			return s.repo.UpdateApproval(tx, projectID, next, approved)
		}

		project.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainProject), string(req.Action)).Inc()
		return s.repo.UpdateStatus(tx, projectID, next)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Cancel 取消项目申请（审批阶段仅申请人本人；审批后走生命周期转移）
func (s *ProjectService) Cancel(actor *model.User, projectID string) (*model.Project, error) {
	var project *model.Project
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = s.repo.FindByIDForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		if project.Status == model.ProjectPendingApproval {
			history, err := s.stageRepo.History(tx, model.DomainProject, projectID)
			if err != nil {
				return err
			}
			_, next, err := workflow.NextProjectStage(history, model.StageActionCancel, actor.EmployeeCode, project.OwnerCode, "")
			if err != nil {
				metrics.InvalidTransitions.WithLabelValues(string(model.DomainProject)).Inc()
				return err
			}

			stage := &model.ApprovalStage{
				Domain:    model.DomainProject,
				RequestID: projectID,
				StageNo:   0,
				Action:    model.StageActionCancel,
				ActorCode: actor.EmployeeCode,
				ActorRole: actor.Role,
			}
			if err := s.stageRepo.Append(tx, stage); err != nil {
				return err
			}
			project.Status = next
			return s.repo.UpdateStatus(tx, projectID, next)
		}

		// 审批后的取消属于执行生命周期转移
		if actor.EmployeeCode != project.OwnerCode && !s.canManage(actor) {
			return ErrForbidden
		}
		if err := workflow.CanTransitionProject(project.Status, model.ProjectCancelled); err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainProject)).Inc()
			return err
		}
		project.Status = model.ProjectCancelled
		return s.repo.UpdateStatus(tx, projectID, model.ProjectCancelled)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateStatus 推进项目执行生命周期（启动/暂停/恢复/完成）。
// 项目负责人或 admin 可操作，转移合法性由显式转移表约束。
func (s *ProjectService) UpdateStatus(actor *model.User, projectID string, req *model.UpdateProjectStatusRequest) (*model.Project, error) {
	var project *model.Project
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = s.repo.FindByIDForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		if actor.EmployeeCode != project.OwnerCode && !s.canManage(actor) {
			return ErrForbidden
		}

		if err := workflow.CanTransitionProject(project.Status, req.Status); err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainProject)).Inc()
			return err
		}
		project.Status = req.Status
		return s.repo.UpdateStatus(tx, projectID, req.Status)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Get 查项目（负责人、上级或管理）
func (s *ProjectService) Get(actor *model.User, projectID string) (*model.Project, error) {
	project, err := s.repo.FindByID(projectID)
	if err != nil {
		return nil, err
	}

	if actor.EmployeeCode != project.OwnerCode {
		decision, _ := authz.CanAct(s.dir, actor,
			authz.Action{Kind: authz.ActionReadOther},
			authz.ResourceRef{Domain: model.DomainProject, OwnerCode: project.OwnerCode})
		if !decision.Allowed && !s.canManage(actor) {
			return nil, ErrForbidden
		}
	}
	return project, nil
}

// History 查项目的审批历史
func (s *ProjectService) History(actor *model.User, projectID string) ([]model.ApprovalStage, error) {
	if _, err := s.Get(actor, projectID); err != nil {
		return nil, err
	}
	return s.stageRepo.History(s.repo.DB(), model.DomainProject, projectID)
}

// List 项目列表。管理查全部，普通用户查自己负责的。
func (s *ProjectService) List(actor *model.User, status model.ProjectStatus, page, pageSize int) ([]model.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if s.canManage(actor) {
		return s.repo.ListAll(status, page, pageSize)
	}
	return s.repo.ListByOwner(actor.EmployeeCode, status, page, pageSize)
}
