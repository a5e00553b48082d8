package authz

import (
	"testing"

	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
)

type mapDirectory map[string]*model.User

func (d mapDirectory) Get(code string) (*model.User, error) {
	u, ok := d[code]
	if !ok {
		return nil, hierarchy.ErrUserNotFound
	}
	return u, nil
}

func (d mapDirectory) List() ([]model.User, error) {
	users := make([]model.User, 0, len(d))
	for _, u := range d {
		users = append(users, *u)
	}
	return users, nil
}

func testDirectory() mapDirectory {
	return mapDirectory{
		"EMP-1001": {EmployeeCode: "EMP-1001", Role: model.RoleEmployee, TeamLeadCode: "EMP-2001", ManagerCode: "EMP-3001", AdminCode: "EMP-4001", IsActive: true},
		"EMP-1002": {EmployeeCode: "EMP-1002", Role: model.RoleEmployee, TeamLeadCode: "EMP-2002", ManagerCode: "EMP-3002", AdminCode: "EMP-4001", IsActive: true},
		"EMP-2001": {EmployeeCode: "EMP-2001", Role: model.RoleTeamLead, ManagerCode: "EMP-3001", AdminCode: "EMP-4001", IsActive: true},
		"EMP-2002": {EmployeeCode: "EMP-2002", Role: model.RoleTeamLead, ManagerCode: "EMP-3002", AdminCode: "EMP-4001", IsActive: true},
		"EMP-3001": {EmployeeCode: "EMP-3001", Role: model.RoleManager, AdminCode: "EMP-4001", IsActive: true},
		"EMP-3002": {EmployeeCode: "EMP-3002", Role: model.RoleManager, ManagerType: model.ManagerTypeAttendance, AdminCode: "EMP-4001", IsActive: true},
		"EMP-3003": {EmployeeCode: "EMP-3003", Role: model.RoleManager, ManagerType: model.ManagerTypeITSupport, AdminCode: "EMP-4001", IsActive: true},
		"EMP-4001": {EmployeeCode: "EMP-4001", Role: model.RoleAdmin, IsActive: true},
		"EMP-9001": {EmployeeCode: "EMP-9001", Role: model.RoleSuperAdmin, IsActive: true},
	}
}

func TestCanAct(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		name       string
		actor      string
		action     Action
		target     ResourceRef
		wantAllow  bool
		wantReason string
	}{
		{
			"超管放行一切",
			"EMP-9001",
			Action{Kind: ActionManage},
			ResourceRef{Domain: model.DomainParking},
			true, "",
		},
		{
			"超管豁免动作照样拒绝",
			"EMP-9001",
			Action{Kind: ActionSelfService, SuperAdminExempt: true},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1001"},
			false, ReasonInsufficientRole,
		},
		{
			"本人自助放行",
			"EMP-1001",
			Action{Kind: ActionSelfService},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1001"},
			true, "",
		},
		{
			"替他人自助被拒",
			"EMP-1001",
			Action{Kind: ActionSelfService},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1002"},
			false, ReasonInsufficientRole,
		},
		{
			"管理员可做领域管理",
			"EMP-4001",
			Action{Kind: ActionManage},
			ResourceRef{Domain: model.DomainCafeteria},
			true, "",
		},
		{
			"专业匹配的经理可做领域管理",
			"EMP-3002",
			Action{Kind: ActionManage},
			ResourceRef{Domain: model.DomainAttendance},
			true, "",
		},
		{
			"专业不匹配的经理做领域管理被拒",
			"EMP-3001",
			Action{Kind: ActionManage},
			ResourceRef{Domain: model.DomainAttendance},
			false, ReasonInsufficientRole,
		},
		{
			"员工做领域管理被拒",
			"EMP-1001",
			Action{Kind: ActionManage},
			ResourceRef{Domain: model.DomainParking},
			false, ReasonInsufficientRole,
		},
		{
			"链上第一环可审批第一环节",
			"EMP-2001",
			Action{Kind: ActionApprove, Stage: 1, ExactStage: true},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1001"},
			true, "",
		},
		{
			"链上第二环审批第一环节被拒",
			"EMP-3001",
			Action{Kind: ActionApprove, Stage: 1, ExactStage: true},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1001"},
			false, ReasonWrongStage,
		},
		{
			"非精确匹配时更高环节可审批",
			"EMP-3001",
			Action{Kind: ActionApprove, Stage: 1},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1001"},
			true, "",
		},
		{
			"不在链上的经理审批被拒",
			"EMP-3002",
			Action{Kind: ActionApprove, Stage: 1},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1001"},
			false, ReasonNotInHierarchy,
		},
		{
			"通用审批人跨链审批本领域",
			"EMP-3002",
			Action{Kind: ActionApprove, Stage: 1},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1001"},
			true, "",
		},
		{
			"IT支持经理独占IT申请审批",
			"EMP-3003",
			Action{Kind: ActionApprove, Stage: 1},
			ResourceRef{Domain: model.DomainITRequest, OwnerCode: "EMP-1002"},
			true, "",
		},
		{
			"组长可查看直接下属",
			"EMP-2001",
			Action{Kind: ActionReadOther},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1001"},
			true, "",
		},
		{
			"组长查看非下属被拒",
			"EMP-2001",
			Action{Kind: ActionReadOther},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1002"},
			false, ReasonNotInHierarchy,
		},
		{
			"管理员可查看闭包内任意下属",
			"EMP-4001",
			Action{Kind: ActionReadOther},
			ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1002"},
			true, "",
		},
		{
			"通用审批人可查看本领域非下属申请",
			"EMP-3002",
			Action{Kind: ActionReadOther},
			ResourceRef{Domain: model.DomainAttendance, OwnerCode: "EMP-1001"},
			true, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanAct(dir, dir[tt.actor], tt.action, tt.target)
			if err != nil {
				t.Fatalf("CanAct() error = %v", err)
			}
			if got.Allowed != tt.wantAllow {
				t.Errorf("Allowed = %v, 期望 %v (reason=%s)", got.Allowed, tt.wantAllow, got.Reason)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %s, 期望 %s", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanActIntegrityFailClosed(t *testing.T) {
	dir := testDirectory()
	// 经理链路缺失的员工
	dir["EMP-1003"] = &model.User{EmployeeCode: "EMP-1003", Role: model.RoleEmployee, TeamLeadCode: "EMP-2001", AdminCode: "EMP-4001", IsActive: true}

	t.Run("截断点之前的环节照常放行", func(t *testing.T) {
		got, err := CanAct(dir, dir["EMP-2001"], Action{Kind: ActionApprove, Stage: 1, ExactStage: true}, ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1003"})
		if err != nil {
			t.Fatalf("CanAct() error = %v", err)
		}
		if !got.Allowed {
			t.Errorf("期望放行, 得到拒绝 reason=%s", got.Reason)
		}
	})

	t.Run("越过截断点的审批带完整性错误拒绝", func(t *testing.T) {
		got, err := CanAct(dir, dir["EMP-4001"], Action{Kind: ActionApprove, Stage: 2}, ResourceRef{Domain: model.DomainLeave, OwnerCode: "EMP-1003"})
		if got.Allowed {
			t.Fatal("期望 fail closed 拒绝")
		}
		if err == nil {
			t.Error("期望带出完整性错误")
		}
		if got.Reason != ReasonIntegrity {
			t.Errorf("Reason = %s, 期望 %s", got.Reason, ReasonIntegrity)
		}
	})
}

func TestIsUniversalApprover(t *testing.T) {
	tests := []struct {
		name   string
		actor  *model.User
		domain model.RequestDomain
		want   bool
	}{
		{"考勤经理对考勤领域", &model.User{Role: model.RoleManager, ManagerType: model.ManagerTypeAttendance}, model.DomainAttendance, true},
		{"工位会议经理同时覆盖工位和会议室", &model.User{Role: model.RoleManager, ManagerType: model.ManagerTypeDeskConference}, model.DomainRoomBooking, true},
		{"请假领域没有通用审批人", &model.User{Role: model.RoleManager, ManagerType: model.ManagerTypeAttendance}, model.DomainLeave, false},
		{"项目领域没有通用审批人", &model.User{Role: model.RoleManager, ManagerType: model.ManagerTypeITSupport}, model.DomainProject, false},
		{"非经理即使挂了专业也不算", &model.User{Role: model.RoleTeamLead, ManagerType: model.ManagerTypeParking}, model.DomainParking, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniversalApprover(tt.actor, tt.domain); got != tt.want {
				t.Errorf("IsUniversalApprover() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}
