package workflow

import (
	"github.com/fisker/officehub-backend/internal/model"
)

// ProjectProjectStatus 折叠项目审批环节历史得到审批阶段的状态。
// 审批通过后的执行生命周期（启动/暂停/完成）不走环节记录，
// 由 CanTransitionProject 的显式转移表约束。
func ProjectProjectStatus(history []model.ApprovalStage) model.ProjectStatus {
	status := model.ProjectPendingApproval
	for _, s := range history {
		switch s.Action {
		case model.StageActionApprove:
			status = model.ProjectApproved
		case model.StageActionReject:
			status = model.ProjectRejected
		case model.StageActionCancel:
			status = model.ProjectCancelled
		}
	}
	return status
}

// NextProjectStage 校验项目审批动作并计算推进结果。
// 审批人是任意 admin/super_admin（平级审批，不走链），资格由 authz 判定。
func NextProjectStage(history []model.ApprovalStage, action model.StageAction, actorCode, ownerCode, reason string) (int, model.ProjectStatus, error) {
	current := ProjectProjectStatus(history)
	if current != model.ProjectPendingApproval {
		return 0, current, ErrInvalidStateTransition
	}

	switch action {
	case model.StageActionApprove:
		return 1, model.ProjectApproved, nil
	case model.StageActionReject:
		if reason == "" {
			return 0, current, ErrReasonRequired
		}
		return 1, model.ProjectRejected, nil
	case model.StageActionCancel:
		if actorCode != ownerCode {
			return 0, current, ErrNotOwner
		}
		return 0, model.ProjectCancelled, nil
	default:
		return 0, current, ErrInvalidStateTransition
	}
}

// projectTransitions 项目执行生命周期的合法转移表
var projectTransitions = map[model.ProjectStatus][]model.ProjectStatus{
	model.ProjectApproved:   {model.ProjectInProgress, model.ProjectCancelled},
	model.ProjectInProgress: {model.ProjectOnHold, model.ProjectCompleted, model.ProjectCancelled},
	model.ProjectOnHold:     {model.ProjectInProgress, model.ProjectCancelled},
}

// CanTransitionProject 判断项目执行状态转移是否合法。
// cancelled 可从任意非终态到达，终态之后不允许任何转移。
func CanTransitionProject(from, to model.ProjectStatus) error {
	if from == model.ProjectPendingApproval {
		// 审批阶段的推进必须走 NextProjectStage
		return ErrInvalidStateTransition
	}
	for _, t := range projectTransitions[from] {
		if t == to {
			return nil
		}
	}
	return ErrInvalidStateTransition
}
