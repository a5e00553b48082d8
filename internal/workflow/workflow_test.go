package workflow

import (
	"errors"
	"testing"

	"github.com/fisker/officehub-backend/internal/model"
)

func stage(no int, action model.StageAction, actor string) model.ApprovalStage {
	return model.ApprovalStage{StageNo: no, Action: action, ActorCode: actor}
}

func TestProjectLeaveStatus(t *testing.T) {
	tests := []struct {
		name    string
		history []model.ApprovalStage
		want    model.LeaveStatus
	}{
		{"空历史为待一级审批", nil, model.LeaveStatusPendingLevel1},
		{"提交后待一级审批", []model.ApprovalStage{stage(0, model.StageActionSubmit, "EMP-1001")}, model.LeaveStatusPendingLevel1},
		{
			"一级批准后待二级",
			[]model.ApprovalStage{
				stage(0, model.StageActionSubmit, "EMP-1001"),
				stage(1, model.StageActionApprove, "EMP-2001"),
			},
			model.LeaveStatusApprovedLevel1,
		},
		{
			"二级批准后终审通过",
			[]model.ApprovalStage{
				stage(0, model.StageActionSubmit, "EMP-1001"),
				stage(1, model.StageActionApprove, "EMP-2001"),
				stage(2, model.StageActionApprove, "EMP-3001"),
			},
			model.LeaveStatusApprovedFinal,
		},
		{
			"一级拒绝即终态",
			[]model.ApprovalStage{
				stage(0, model.StageActionSubmit, "EMP-1001"),
				stage(1, model.StageActionReject, "EMP-2001"),
			},
			model.LeaveStatusRejected,
		},
		{
			"一级批准后取消",
			[]model.ApprovalStage{
				stage(0, model.StageActionSubmit, "EMP-1001"),
				stage(1, model.StageActionApprove, "EMP-2001"),
				stage(0, model.StageActionCancel, "EMP-1001"),
			},
			model.LeaveStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectLeaveStatus(tt.history); got != tt.want {
				t.Errorf("ProjectLeaveStatus() = %s, 期望 %s", got, tt.want)
			}
		})
	}
}

func TestNextLeaveStage(t *testing.T) {
	submitted := []model.ApprovalStage{stage(0, model.StageActionSubmit, "EMP-1001")}
	level1 := append(append([]model.ApprovalStage{}, submitted...), stage(1, model.StageActionApprove, "EMP-2001"))
	final := append(append([]model.ApprovalStage{}, level1...), stage(2, model.StageActionApprove, "EMP-3001"))

	t.Run("一级批准推进到approved_level1", func(t *testing.T) {
		no, next, err := NextLeaveStage(submitted, model.StageActionApprove, "EMP-2001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if no != 1 || next != model.LeaveStatusApprovedLevel1 {
			t.Errorf("got (%d, %s)", no, next)
		}
	})

	t.Run("二级批准推进到approved_final", func(t *testing.T) {
		no, next, err := NextLeaveStage(level1, model.StageActionApprove, "EMP-3001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if no != 2 || next != model.LeaveStatusApprovedFinal {
			t.Errorf("got (%d, %s)", no, next)
		}
	})

	t.Run("同一人不能连批两级", func(t *testing.T) {
		_, _, err := NextLeaveStage(level1, model.StageActionApprove, "EMP-2001", "EMP-1001", "")
		if !errors.Is(err, ErrDuplicateApprover) {
			t.Errorf("期望 ErrDuplicateApprover, 得到 %v", err)
		}
	})

	t.Run("终态后重放批准失败", func(t *testing.T) {
		_, _, err := NextLeaveStage(final, model.StageActionApprove, "EMP-4001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("终审通过后不可取消", func(t *testing.T) {
		_, _, err := NextLeaveStage(final, model.StageActionCancel, "EMP-1001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("拒绝必须附带原因", func(t *testing.T) {
		_, _, err := NextLeaveStage(submitted, model.StageActionReject, "EMP-2001", "EMP-1001", "")
		if !errors.Is(err, ErrReasonRequired) {
			t.Errorf("期望 ErrReasonRequired, 得到 %v", err)
		}
	})

	t.Run("非本人取消被拒", func(t *testing.T) {
		_, _, err := NextLeaveStage(submitted, model.StageActionCancel, "EMP-2001", "EMP-1001", "")
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("期望 ErrNotOwner, 得到 %v", err)
		}
	})

	t.Run("本人在一级批准后仍可取消", func(t *testing.T) {
		_, next, err := NextLeaveStage(level1, model.StageActionCancel, "EMP-1001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if next != model.LeaveStatusCancelled {
			t.Errorf("next = %s", next)
		}
	})
}

func TestNextAttendanceStage(t *testing.T) {
	submitted := []model.ApprovalStage{stage(0, model.StageActionSubmit, "EMP-1001")}
	approved := append(append([]model.ApprovalStage{}, submitted...), stage(1, model.StageActionApprove, "EMP-2001"))

	t.Run("草稿由本人提交", func(t *testing.T) {
		no, next, err := NextAttendanceStage(nil, model.StageActionSubmit, "EMP-1001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if no != 0 || next != model.AttendanceStatusPendingApproval {
			t.Errorf("got (%d, %s)", no, next)
		}
	})

	t.Run("他人不能代为提交", func(t *testing.T) {
		_, _, err := NextAttendanceStage(nil, model.StageActionSubmit, "EMP-2001", "EMP-1001", "")
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("期望 ErrNotOwner, 得到 %v", err)
		}
	})

	t.Run("草稿不可直接批准", func(t *testing.T) {
		_, _, err := NextAttendanceStage(nil, model.StageActionApprove, "EMP-2001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("单级批准即终态", func(t *testing.T) {
		no, next, err := NextAttendanceStage(submitted, model.StageActionApprove, "EMP-2001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if no != 1 || next != model.AttendanceStatusApproved {
			t.Errorf("got (%d, %s)", no, next)
		}
	})

	t.Run("已批准后重复批准失败", func(t *testing.T) {
		_, _, err := NextAttendanceStage(approved, model.StageActionApprove, "EMP-3001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("重复提交失败", func(t *testing.T) {
		_, _, err := NextAttendanceStage(submitted, model.StageActionSubmit, "EMP-1001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})
}

func TestNextITRequestStage(t *testing.T) {
	rejected := []model.ApprovalStage{stage(1, model.StageActionReject, "EMP-3003")}

	t.Run("待审批可直接批准", func(t *testing.T) {
		no, next, err := NextITRequestStage(nil, model.StageActionApprove, "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if no != 1 || next != model.ITRequestApproved {
			t.Errorf("got (%d, %s)", no, next)
		}
	})

	t.Run("拒绝需要原因", func(t *testing.T) {
		_, _, err := NextITRequestStage(nil, model.StageActionReject, "")
		if !errors.Is(err, ErrReasonRequired) {
			t.Errorf("期望 ErrReasonRequired, 得到 %v", err)
		}
	})

	t.Run("已拒绝后不可再批准", func(t *testing.T) {
		_, _, err := NextITRequestStage(rejected, model.StageActionApprove, "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})
}

func TestNextRoomBookingStage(t *testing.T) {
	t.Run("批准推进到confirmed", func(t *testing.T) {
		_, next, err := NextRoomBookingStage(nil, model.StageActionApprove, "EMP-3004", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if next != model.BookingStatusConfirmed {
			t.Errorf("next = %s", next)
		}
	})

	t.Run("确认前本人可取消", func(t *testing.T) {
		_, next, err := NextRoomBookingStage(nil, model.StageActionCancel, "EMP-1001", "EMP-1001", "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if next != model.BookingStatusCancelled {
			t.Errorf("next = %s", next)
		}
	})

	t.Run("确认后不可再取消", func(t *testing.T) {
		confirmed := []model.ApprovalStage{stage(1, model.StageActionApprove, "EMP-3004")}
		_, _, err := NextRoomBookingStage(confirmed, model.StageActionCancel, "EMP-1001", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("确认后不可重复批准", func(t *testing.T) {
		confirmed := []model.ApprovalStage{stage(1, model.StageActionApprove, "EMP-3004")}
		_, _, err := NextRoomBookingStage(confirmed, model.StageActionApprove, "EMP-3005", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})

	t.Run("拒绝后不可再批准", func(t *testing.T) {
		rejected := []model.ApprovalStage{stage(1, model.StageActionReject, "EMP-3004")}
		_, _, err := NextRoomBookingStage(rejected, model.StageActionApprove, "EMP-3004", "EMP-1001", "")
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("期望 ErrInvalidStateTransition, 得到 %v", err)
		}
	})
}

func TestCanTransitionProject(t *testing.T) {
	tests := []struct {
		name    string
		from    model.ProjectStatus
		to      model.ProjectStatus
		wantErr bool
	}{
		{"批准后可启动", model.ProjectApproved, model.ProjectInProgress, false},
		{"进行中可暂停", model.ProjectInProgress, model.ProjectOnHold, false},
		{"暂停后可恢复", model.ProjectOnHold, model.ProjectInProgress, false},
		{"进行中可完成", model.ProjectInProgress, model.ProjectCompleted, false},
		{"非终态可取消", model.ProjectOnHold, model.ProjectCancelled, false},
		{"批准后不能直接完成", model.ProjectApproved, model.ProjectCompleted, true},
		{"已完成后不可转移", model.ProjectCompleted, model.ProjectInProgress, true},
		{"已取消后不可恢复", model.ProjectCancelled, model.ProjectInProgress, true},
		{"待审批不走执行转移", model.ProjectPendingApproval, model.ProjectApproved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransitionProject(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanTransitionProject(%s, %s) = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}
