package workflow

import (
	"github.com/fisker/officehub-backend/internal/model"
)

// ProjectLeaveStatus 折叠请假环节历史得到当前状态。
// 两级审批：submit -> pending_level1, 一级批准 -> approved_level1,
// 二级批准 -> approved_final；任一级拒绝 -> rejected；终审前可取消。
func ProjectLeaveStatus(history []model.ApprovalStage) model.LeaveStatus {
	status := model.LeaveStatusPendingLevel1
	for _, s := range history {
		switch s.Action {
		case model.StageActionSubmit:
			status = model.LeaveStatusPendingLevel1
		case model.StageActionApprove:
			if s.StageNo == 1 {
				status = model.LeaveStatusApprovedLevel1
			} else {
				status = model.LeaveStatusApprovedFinal
			}
		case model.StageActionReject:
			status = model.LeaveStatusRejected
		case model.StageActionCancel:
			status = model.LeaveStatusCancelled
		}
	}
	return status
}

// NextLeaveStage 校验请假审批动作并计算推进结果。
// 返回应追加环节的序号和推进后的状态。
//   - 终态（approved_final/rejected/cancelled）后任何动作都是非法转移，
//     包括终审通过后的取消（不支持事后撤销已扣减的假期）
//   - 二级批准人必须与一级批准人不同
//   - 拒绝必须附带非空原因
//   - 取消只能由申请人本人发起
func NextLeaveStage(history []model.ApprovalStage, action model.StageAction, actorCode, ownerCode, reason string) (int, model.LeaveStatus, error) {
	current := ProjectLeaveStatus(history)
	if current.Terminal() {
		return 0, current, ErrInvalidStateTransition
	}

	switch action {
	case model.StageActionApprove:
		switch current {
		case model.LeaveStatusPendingLevel1:
			return 1, model.LeaveStatusApprovedLevel1, nil
		case model.LeaveStatusApprovedLevel1:
			if actorCode == lastApprover(history, 1) {
				return 0, current, ErrDuplicateApprover
			}
			return 2, model.LeaveStatusApprovedFinal, nil
		}
		return 0, current, ErrInvalidStateTransition

	case model.StageActionReject:
		if reason == "" {
			return 0, current, ErrReasonRequired
		}
		switch current {
		case model.LeaveStatusPendingLevel1:
			return 1, model.LeaveStatusRejected, nil
		case model.LeaveStatusApprovedLevel1:
			return 2, model.LeaveStatusRejected, nil
		}
		return 0, current, ErrInvalidStateTransition

	case model.StageActionCancel:
		if actorCode != ownerCode {
			return 0, current, ErrNotOwner
		}
		// pending_level1 和 approved_level1 都可取消
		return 0, model.LeaveStatusCancelled, nil

	default:
		return 0, current, ErrInvalidStateTransition
	}
}
