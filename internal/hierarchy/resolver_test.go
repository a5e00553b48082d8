package hierarchy

import (
	"errors"
	"testing"

	"github.com/fisker/officehub-backend/internal/model"
)

// mapDirectory 测试用的内存目录
type mapDirectory map[string]*model.User

func (d mapDirectory) Get(code string) (*model.User, error) {
	u, ok := d[code]
	if !ok {
		return nil, ErrUserNotFound
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

func user(code string, role model.Role, teamLead, manager, admin string) *model.User {
	return &model.User{
		EmployeeCode: code,
		Role:         role,
		TeamLeadCode: teamLead,
		ManagerCode:  manager,
		AdminCode:    admin,
		IsActive:     true,
	}
}

// 标准三级目录：员工 -> 组长 -> 经理 -> 管理员
func standardDirectory() mapDirectory {
	return mapDirectory{
		"EMP-1001": user("EMP-1001", model.RoleEmployee, "EMP-2001", "EMP-3001", "EMP-4001"),
		"EMP-2001": user("EMP-2001", model.RoleTeamLead, "", "EMP-3001", "EMP-4001"),
		"EMP-3001": user("EMP-3001", model.RoleManager, "", "", "EMP-4001"),
		"EMP-4001": user("EMP-4001", model.RoleAdmin, "", "", ""),
		"EMP-9001": user("EMP-9001", model.RoleSuperAdmin, "", "", ""),
	}
}

func TestResolveApproverChain(t *testing.T) {
	dir := standardDirectory()

	tests := []struct {
		name      string
		owner     string
		wantChain []string
	}{
		{"员工从组长开始三级链", "EMP-1001", []string{"EMP-2001", "EMP-3001", "EMP-4001"}},
		{"组长跳过自身等级从经理开始", "EMP-2001", []string{"EMP-3001", "EMP-4001"}},
		{"经理链中只有管理员", "EMP-3001", []string{"EMP-4001"}},
		{"管理员链为空", "EMP-4001", nil},
		{"超管链为空", "EMP-9001", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := ResolveApproverChain(dir, dir[tt.owner])
			if err != nil {
				t.Fatalf("ResolveApproverChain() error = %v", err)
			}
			if len(chain) != len(tt.wantChain) {
				t.Fatalf("链长 = %d, 期望 %d", len(chain), len(tt.wantChain))
			}
			for i, code := range tt.wantChain {
				if chain[i].UserCode != code {
					t.Errorf("第%d环 = %s, 期望 %s", i+1, chain[i].UserCode, code)
				}
			}
		})
	}
}

func TestResolveApproverChainIntegrity(t *testing.T) {
	t.Run("链路工号缺失时返回完整性错误和截断链", func(t *testing.T) {
		dir := standardDirectory()
		dir["EMP-1002"] = user("EMP-1002", model.RoleEmployee, "EMP-2001", "", "EMP-4001")

		chain, err := ResolveApproverChain(dir, dir["EMP-1002"])
		var integrity *IntegrityError
		if !errors.As(err, &integrity) {
			t.Fatalf("期望 IntegrityError, 得到 %v", err)
		}
		if integrity.ExpectedRole != model.RoleManager {
			t.Errorf("ExpectedRole = %s, 期望 manager", integrity.ExpectedRole)
		}
		if len(chain) != 1 || chain[0].UserCode != "EMP-2001" {
			t.Errorf("截断链 = %v, 期望只含组长", chain)
		}
	})

	t.Run("链路指向错误等级的用户", func(t *testing.T) {
		dir := standardDirectory()
		// 组长链路错误地指向了另一个员工
		dir["EMP-1003"] = user("EMP-1003", model.RoleEmployee, "EMP-1001", "EMP-3001", "EMP-4001")

		chain, err := ResolveApproverChain(dir, dir["EMP-1003"])
		var integrity *IntegrityError
		if !errors.As(err, &integrity) {
			t.Fatalf("期望 IntegrityError, 得到 %v", err)
		}
		if integrity.LinkCode != "EMP-1001" {
			t.Errorf("LinkCode = %s, 期望 EMP-1001", integrity.LinkCode)
		}
		if len(chain) != 0 {
			t.Errorf("截断链长 = %d, 期望 0", len(chain))
		}
	})

	t.Run("链路指向已停用的用户", func(t *testing.T) {
		dir := standardDirectory()
		dir["EMP-2001"].IsActive = false

		_, err := ResolveApproverChain(dir, dir["EMP-1001"])
		var integrity *IntegrityError
		if !errors.As(err, &integrity) {
			t.Fatalf("期望 IntegrityError, 得到 %v", err)
		}
	})

	t.Run("链路指向目录中不存在的工号", func(t *testing.T) {
		dir := standardDirectory()
		dir["EMP-1004"] = user("EMP-1004", model.RoleEmployee, "EMP-7777", "EMP-3001", "EMP-4001")

		_, err := ResolveApproverChain(dir, dir["EMP-1004"])
		var integrity *IntegrityError
		if !errors.As(err, &integrity) {
			t.Fatalf("期望 IntegrityError, 得到 %v", err)
		}
		if integrity.LinkCode != "EMP-7777" {
			t.Errorf("LinkCode = %s, 期望 EMP-7777", integrity.LinkCode)
		}
	})
}

func TestResolveSubordinates(t *testing.T) {
	dir := standardDirectory()
	// 第二条链：另一个经理带一个组长和一个员工，挂在同一个管理员下
	dir["EMP-3002"] = user("EMP-3002", model.RoleManager, "", "", "EMP-4001")
	dir["EMP-2002"] = user("EMP-2002", model.RoleTeamLead, "", "EMP-3002", "EMP-4001")
	dir["EMP-1005"] = user("EMP-1005", model.RoleEmployee, "EMP-2002", "EMP-3002", "EMP-4001")

	tests := []struct {
		name  string
		actor string
		want  []string
	}{
		{"员工无下属", "EMP-1001", nil},
		{"组长只有直接下属", "EMP-2001", []string{"EMP-1001"}},
		{"经理只有直接下属", "EMP-3001", []string{"EMP-1001", "EMP-2001"}},
		{"管理员是完整向下闭包", "EMP-4001", []string{"EMP-1001", "EMP-2001", "EMP-3001", "EMP-3002", "EMP-2002", "EMP-1005"}},
		{"超管是除自己外全员", "EMP-9001", []string{"EMP-1001", "EMP-2001", "EMP-3001", "EMP-4001", "EMP-3002", "EMP-2002", "EMP-1005"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSubordinates(dir, dir[tt.actor])
			if err != nil {
				t.Fatalf("ResolveSubordinates() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("下属数 = %d, 期望 %d (%v)", len(got), len(tt.want), got)
			}
			for _, code := range tt.want {
				if _, ok := got[code]; !ok {
					t.Errorf("下属集合缺少 %s", code)
				}
			}
		})
	}
}
