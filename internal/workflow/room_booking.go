package workflow

import (
	"github.com/fisker/officehub-backend/internal/model"
)

// ProjectRoomBookingStatus 折叠会议室预订环节历史得到当前状态。
// 单级审批：pending -> confirmed/rejected，确认前可由本人取消。
// 普通工位预订不走这台状态机（冲突检查通过即自动确认）。
func ProjectRoomBookingStatus(history []model.ApprovalStage) model.BookingStatus {
	status := model.BookingStatusPending
	for _, s := range history {
		switch s.Action {
		case model.StageActionApprove:
			status = model.BookingStatusConfirmed
		case model.StageActionReject:
			status = model.BookingStatusRejected
		case model.StageActionCancel:
			status = model.BookingStatusCancelled
		}
	}
	return status
}

// NextRoomBookingStage 校验会议室预订动作并计算推进结果
func NextRoomBookingStage(history []model.ApprovalStage, action model.StageAction, actorCode, ownerCode, reason string) (int, model.BookingStatus, error) {
	current := ProjectRoomBookingStatus(history)
	if current.Terminal() {
		return 0, current, ErrInvalidStateTransition
	}

	switch action {
	case model.StageActionApprove:
		return 1, model.BookingStatusConfirmed, nil
	case model.StageActionReject:
		if reason == "" {
			return 0, current, ErrReasonRequired
		}
		return 1, model.BookingStatusRejected, nil
	case model.StageActionCancel:
		if actorCode != ownerCode {
			return 0, current, ErrNotOwner
		}
		return 0, model.BookingStatusCancelled, nil
	default:
		return 0, current, ErrInvalidStateTransition
	}
}
