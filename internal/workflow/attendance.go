package workflow

import (
	"github.com/fisker/officehub-backend/internal/model"
)

// ProjectAttendanceStatus 折叠考勤环节历史得到当前状态。
// 单级审批：打卡记录为 draft，提交后 pending_approval，
// 一次批准或拒绝即终态。
func ProjectAttendanceStatus(history []model.ApprovalStage) model.AttendanceStatus {
	status := model.AttendanceStatusDraft
	for _, s := range history {
		switch s.Action {
		case model.StageActionSubmit:
			status = model.AttendanceStatusPendingApproval
		case model.StageActionApprove:
			status = model.AttendanceStatusApproved
		case model.StageActionReject:
			status = model.AttendanceStatusRejected
		}
	}
	return status
}

// NextAttendanceStage 校验考勤动作并计算推进结果
func NextAttendanceStage(history []model.ApprovalStage, action model.StageAction, actorCode, ownerCode, reason string) (int, model.AttendanceStatus, error) {
	current := ProjectAttendanceStatus(history)

	switch action {
	case model.StageActionSubmit:
		if current != model.AttendanceStatusDraft {
			return 0, current, ErrInvalidStateTransition
		}
		if actorCode != ownerCode {
			return 0, current, ErrNotOwner
		}
		return 0, model.AttendanceStatusPendingApproval, nil

	case model.StageActionApprove:
		if current != model.AttendanceStatusPendingApproval {
			return 0, current, ErrInvalidStateTransition
		}
		return 1, model.AttendanceStatusApproved, nil

	case model.StageActionReject:
		if current != model.AttendanceStatusPendingApproval {
			return 0, current, ErrInvalidStateTransition
		}
		if reason == "" {
			return 0, current, ErrReasonRequired
		}
		return 1, model.AttendanceStatusRejected, nil

	default:
		return 0, current, ErrInvalidStateTransition
	}
}
