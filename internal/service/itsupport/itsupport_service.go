package itsupport

import (
	"errors"
	"fmt"

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
	// ErrAssetNotAvailable 资产当前不可分配
	ErrAssetNotAvailable = errors.New("asset is not available for assignment")
	// ErrAssetNotAssigned 资产当前未分配
	ErrAssetNotAssigned = errors.New("asset is not assigned")
)

// ITSupportService IT资产与支持请求
type ITSupportService struct {
	assetRepo   *repository.AssetRepository
	requestRepo *repository.ITRequestRepository
	stageRepo   *repository.StageRepository
	dir         hierarchy.Directory
}

func NewITSupportService(assetRepo *repository.AssetRepository, requestRepo *repository.ITRequestRepository, stageRepo *repository.StageRepository, dir hierarchy.Directory) *ITSupportService {
	return &ITSupportService{assetRepo: assetRepo, requestRepo: requestRepo, stageRepo: stageRepo, dir: dir}
}

// canManage IT领域管理权（admin 或 it_support 经理）
func (s *ITSupportService) canManage(actor *model.User) bool {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainITRequest})
	return decision.Allowed
}

// ===== Assets =====

// CreateAsset 登记资产（admin 或 it_support 经理）
func (s *ITSupportService) CreateAsset(actor *model.User, asset *model.ITAsset) (*model.ITAsset, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}

	if asset.AssetCode == "" {
		count, err := s.assetRepo.CountAssets()
		if err != nil {
			return nil, err
		}
		asset.AssetCode = fmt.Sprintf("AST-%04d", count+1)
	}
	asset.ID = uuid.New().String()
	if asset.Status == "" {
		asset.Status = model.AssetStatusAvailable
	}

	if err := s.assetRepo.Create(asset); err != nil {
		return nil, fmt.Errorf("登记资产失败: %w", err)
	}
	return asset, nil
}

// UpdateAsset 更新资产信息
func (s *ITSupportService) UpdateAsset(actor *model.User, asset *model.ITAsset) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	return s.assetRepo.Update(asset)
}

// GetAsset 查资产（管理人员或当前持有人）
func (s *ITSupportService) GetAsset(actor *model.User, id string) (*model.ITAsset, error) {
	asset, err := s.assetRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if asset.AssignedTo != actor.EmployeeCode && !s.canManage(actor) {
		return nil, ErrForbidden
	}
	return asset, nil
}

// ListAssets 资产列表。管理人员可以查全部，普通用户只看分配给自己的。
func (s *ITSupportService) ListAssets(actor *model.User, assetType string, status model.AssetStatus, page, pageSize int) ([]model.ITAsset, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if s.canManage(actor) {
		return s.assetRepo.List(assetType, status, "", page, pageSize)
	}
	return s.assetRepo.List(assetType, status, actor.EmployeeCode, page, pageSize)
}

// AssignAsset 分配资产给用户。状态翻转和分配历史在同一事务内写入。
func (s *ITSupportService) AssignAsset(actor *model.User, assetID string, req *model.AssignAssetRequest) (*model.ITAsset, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if _, err := s.dir.Get(req.UserCode); err != nil {
		return nil, fmt.Errorf("用户不存在或已停用: %s", req.UserCode)
	}

	var asset *model.ITAsset
	err := s.assetRepo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		asset, err = s.assetRepo.FindByIDForUpdate(tx, assetID)
		if err != nil {
			return err
		}
		if asset.Status != model.AssetStatusAvailable {
			return ErrAssetNotAvailable
		}

		if err := s.assetRepo.UpdateAssignment(tx, assetID, model.AssetStatusAssigned, req.UserCode); err != nil {
			return err
		}
		asset.Status = model.AssetStatusAssigned
		asset.AssignedTo = req.UserCode

		return s.assetRepo.AppendAssignment(tx, &model.AssetAssignment{
			AssetID:   assetID,
			UserCode:  req.UserCode,
			Action:    "assign",
			ActorCode: actor.EmployeeCode,
			Notes:     req.Notes,
		})
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// UnassignAsset 回收资产
func (s *ITSupportService) UnassignAsset(actor *model.User, assetID, notes string) (*model.ITAsset, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}

	var asset *model.ITAsset
	err := s.assetRepo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		asset, err = s.assetRepo.FindByIDForUpdate(tx, assetID)
		if err != nil {
			return err
		}
		if asset.Status != model.AssetStatusAssigned || asset.AssignedTo == "" {
			return ErrAssetNotAssigned
		}

		holder := asset.AssignedTo
		if err := s.assetRepo.UpdateAssignment(tx, assetID, model.AssetStatusAvailable, ""); err != nil {
			return err
		}
		asset.Status = model.AssetStatusAvailable
		asset.AssignedTo = ""

		return s.assetRepo.AppendAssignment(tx, &model.AssetAssignment{
			AssetID:   assetID,
			UserCode:  holder,
			Action:    "unassign",
			ActorCode: actor.EmployeeCode,
			Notes:     notes,
		})
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// AssetHistory 资产分配历史
func (s *ITSupportService) AssetHistory(actor *model.User, assetID string) ([]model.AssetAssignment, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}
	return s.assetRepo.AssignmentHistory(assetID)
}

// ===== IT Requests =====

// CreateRequest 提交IT支持请求
func (s *ITSupportService) CreateRequest(actor *model.User, req *model.CreateITRequestRequest) (*model.ITRequest, error) {
	count, err := s.requestRepo.Count()
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	request := &model.ITRequest{
		ID:            uuid.New().String(),
		RequestNumber: fmt.Sprintf("REQ-%04d", count+1),
		UserCode:      actor.EmployeeCode,
		RequestType:   req.RequestType,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      priority,
		Status:        model.ITRequestPending,
	}

	err = s.requestRepo.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		stage := &model.ApprovalStage{
			Domain:    model.DomainITRequest,
			RequestID: request.ID,
			StageNo:   0,
			Action:    model.StageActionSubmit,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
		}
		return s.stageRepo.Append(tx, stage)
	})
	if err != nil {
		return nil, fmt.Errorf("创建IT请求失败: %w", err)
	}

	metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainITRequest), string(model.StageActionSubmit)).Inc()
	return request, nil
}

// DecideRequest 审批IT请求。
// 绕过审批链：资格仅看 it_support 专业领域（或 admin/super_admin），
// 申请人的上级无权审批。
func (s *ITSupportService) DecideRequest(actor *model.User, requestID string, req *model.DecisionRequest) (*model.ITRequest, error) {
	if req.Action != model.StageActionApprove && req.Action != model.StageActionReject {
		return nil, workflow.ErrInvalidStateTransition
	}

	if !s.canManage(actor) {
		metrics.PermissionDenials.WithLabelValues(string(model.DomainITRequest), authz.ReasonInsufficientRole).Inc()
		return nil, ErrForbidden
	}

	var request *model.ITRequest
	err := s.requestRepo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.requestRepo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			return err
		}

		history, err := s.stageRepo.History(tx, model.DomainITRequest, requestID)
		if err != nil {
			return err
		}

		_, next, err := workflow.NextITRequestStage(history, req.Action, req.Reason())
		if err != nil {
			metrics.InvalidTransitions.WithLabelValues(string(model.DomainITRequest)).Inc()
			return err
		}

		stage := &model.ApprovalStage{
			Domain:    model.DomainITRequest,
			RequestID: requestID,
			StageNo:   1,
			Action:    req.Action,
			ActorCode: actor.EmployeeCode,
			ActorRole: actor.Role,
			Notes:     req.Reason(),
		}
		if err := s.stageRepo.Append(tx, stage); err != nil {
			return err
		}
		request.Status = next
		metrics.ApprovalStagesTotal.WithLabelValues(string(model.DomainITRequest), string(req.Action)).Inc()
		return s.requestRepo.UpdateStatus(tx, requestID, next)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// AssignRequest 指派处理人（仅限已批准的请求，不影响状态）
func (s *ITSupportService) AssignRequest(actor *model.User, requestID, assignee string) (*model.ITRequest, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if _, err := s.dir.Get(assignee); err != nil {
		return nil, fmt.Errorf("处理人不存在或已停用: %s", assignee)
	}

	if err := s.requestRepo.UpdateAssignedTo(requestID, assignee); err != nil {
		return nil, err
	}
	return s.requestRepo.FindByID(requestID)
}

// GetRequest 查IT请求（本人或管理）
func (s *ITSupportService) GetRequest(actor *model.User, requestID string) (*model.ITRequest, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.UserCode != actor.EmployeeCode && !s.canManage(actor) {
		return nil, ErrForbidden
	}
	return request, nil
}

// RequestHistory 查IT请求的审批历史
func (s *ITSupportService) RequestHistory(actor *model.User, requestID string) ([]model.ApprovalStage, error) {
	if _, err := s.GetRequest(actor, requestID); err != nil {
		return nil, err
	}
	return s.stageRepo.History(s.requestRepo.DB(), model.DomainITRequest, requestID)
}

// ListRequests IT请求列表。管理人员查全部，普通用户查自己的。
func (s *ITSupportService) ListRequests(actor *model.User, status model.ITRequestStatus, page, pageSize int) ([]model.ITRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if s.canManage(actor) {
		return s.requestRepo.ListAll(status, page, pageSize)
	}
	return s.requestRepo.ListByUser(actor.EmployeeCode, status, page, pageSize)
}
