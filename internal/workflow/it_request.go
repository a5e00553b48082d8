package workflow

import (
	"github.com/fisker/officehub-backend/internal/model"
)

// ProjectITRequestStatus 折叠IT请求环节历史得到当前状态。
// 单级审批，创建即 pending。
func ProjectITRequestStatus(history []model.ApprovalStage) model.ITRequestStatus {
	status := model.ITRequestPending
	for _, s := range history {
		switch s.Action {
		case model.StageActionApprove:
			status = model.ITRequestApproved
		case model.StageActionReject:
			status = model.ITRequestRejected
		}
	}
	return status
}

// NextITRequestStage 校验IT请求审批动作并计算推进结果
func NextITRequestStage(history []model.ApprovalStage, action model.StageAction, reason string) (int, model.ITRequestStatus, error) {
	current := ProjectITRequestStatus(history)
	if current.Terminal() {
		return 0, current, ErrInvalidStateTransition
	}

	switch action {
	case model.StageActionApprove:
		return 1, model.ITRequestApproved, nil
	case model.StageActionReject:
		if reason == "" {
			return 0, current, ErrReasonRequired
		}
		return 1, model.ITRequestRejected, nil
	default:
		return 0, current, ErrInvalidStateTransition
	}
}
