// Package hierarchy 根据身份目录解析审批链与下属关系。
// 所有函数都是对目录快照的纯只读计算：每次鉴权都重新解析，
// 不做任何缓存，目录变更（调岗、换上级）立即生效。
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/fisker/officehub-backend/internal/model"
)

// ErrUserNotFound 目录中不存在该工号
var ErrUserNotFound = errors.New("user not found in directory")

// Directory 身份目录快照（显式传入，不使用全局状态）
type Directory interface {
	// Get 按工号取在职用户
	Get(code string) (*model.User, error)
	// List 所有在职用户
	List() ([]model.User, error)
}

// IntegrityError 目录数据不完整：缺少必需的上级链路，或链路指向了错误等级的用户。
// 这是需要运营人员修正的数据错误，不是临时故障，调用方必须向上抛出而不能静默跳过。
type IntegrityError struct {
	OwnerCode    string
	ExpectedRole model.Role
	LinkCode     string // 为空表示链路缺失，非空表示链路指向的用户等级不符
}

func (e *IntegrityError) Error() string {
	if e.LinkCode == "" {
		return fmt.Sprintf("hierarchy integrity: user %s is missing required %s link", e.OwnerCode, e.ExpectedRole)
	}
	return fmt.Sprintf("hierarchy integrity: link %s of user %s does not resolve to an active %s", e.LinkCode, e.OwnerCode, e.ExpectedRole)
}

// ChainEntry 审批链中的一环
type ChainEntry struct {
	UserCode string     `json:"user_code"`
	Role     model.Role `json:"role"`
}

// ResolveApproverChain 解析 owner 的有序审批链。
// 从 owner 的角色开始沿上级链路逐级上行（team_lead -> manager -> admin），
// 已越过的等级自动跳过：employee 的链从 team_lead 开始，team_lead 的链从
// manager 开始，manager 的链只有 admin，admin 之上是隐式的 super_admin
// （不出现在链中，由权限评估的超管规则覆盖）。
//
// 链路缺失时 fail closed：返回已解析出的截断链和 *IntegrityError，
// 调用方在需要越过截断点的环节时必须把错误暴露给运营人员。
func ResolveApproverChain(dir Directory, owner *model.User) ([]ChainEntry, error) {
	type link struct {
		code string
		role model.Role
	}

	var links []link
	switch owner.Role {
	case model.RoleEmployee:
		links = []link{
			{owner.TeamLeadCode, model.RoleTeamLead},
			{owner.ManagerCode, model.RoleManager},
			{owner.AdminCode, model.RoleAdmin},
		}
	case model.RoleTeamLead:
		links = []link{
			{owner.ManagerCode, model.RoleManager},
			{owner.AdminCode, model.RoleAdmin},
		}
	case model.RoleManager:
		links = []link{
			{owner.AdminCode, model.RoleAdmin},
		}
	case model.RoleAdmin, model.RoleSuperAdmin:
		// 链路顶端，审批由超管规则覆盖
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown role %q for user %s", owner.Role, owner.EmployeeCode)
	}

	chain := make([]ChainEntry, 0, len(links))
	for _, l := range links {
		if l.code == "" {
			// 链路缺失，截断并上报数据完整性错误
			return chain, &IntegrityError{OwnerCode: owner.EmployeeCode, ExpectedRole: l.role}
		}
		linked, err := dir.Get(l.code)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return chain, &IntegrityError{OwnerCode: owner.EmployeeCode, ExpectedRole: l.role, LinkCode: l.code}
			}
			return nil, err
		}
		if linked.Role != l.role || !linked.IsActive {
			return chain, &IntegrityError{OwnerCode: owner.EmployeeCode, ExpectedRole: l.role, LinkCode: l.code}
		}
		chain = append(chain, ChainEntry{UserCode: linked.EmployeeCode, Role: linked.Role})
	}
	return chain, nil
}

// ChainContains 判断审批链中是否包含指定工号，返回其 1 起始的环节序号
func ChainContains(chain []ChainEntry, code string) (int, bool) {
	for i, e := range chain {
		if e.UserCode == code {
			return i + 1, true
		}
	}
	return 0, false
}

// ResolveSubordinates 解析 actor 可以查看/管理的下属集合（工号集合）。
//   - super_admin: 除自己外的所有在职用户
//   - admin: 完整的向下闭包（审批链中包含自己的所有用户）
//   - team_lead / manager: 仅直接下属（一跳链路）
//   - employee: 空集
//
// 经理的专业领域带来的跨链查看权由权限评估的通用审批人规则单独授予，
// 不混入下属集合。
func ResolveSubordinates(dir Directory, actor *model.User) (map[string]struct{}, error) {
	result := make(map[string]struct{})

	switch actor.Role {
	case model.RoleSuperAdmin:
		users, err := dir.List()
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.EmployeeCode != actor.EmployeeCode {
				result[u.EmployeeCode] = struct{}{}
			}
		}
		return result, nil

	case model.RoleAdmin:
		users, err := dir.List()
		if err != nil {
			return nil, err
		}
		for i := range users {
			u := &users[i]
			if u.EmployeeCode == actor.EmployeeCode {
				continue
			}
			// 截断的链也要检查已解析的部分：数据不完整不应该让
			// 已经明确挂在该 admin 之下的用户凭空消失
			chain, err := ResolveApproverChain(dir, u)
			var integrity *IntegrityError
			if err != nil && !errors.As(err, &integrity) {
				return nil, err
			}
			if _, ok := ChainContains(chain, actor.EmployeeCode); ok {
				result[u.EmployeeCode] = struct{}{}
			}
		}
		return result, nil

	case model.RoleTeamLead, model.RoleManager:
		users, err := dir.List()
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if actor.Role == model.RoleTeamLead && u.TeamLeadCode == actor.EmployeeCode {
				result[u.EmployeeCode] = struct{}{}
			}
			if actor.Role == model.RoleManager && u.ManagerCode == actor.EmployeeCode {
				result[u.EmployeeCode] = struct{}{}
			}
		}
		return result, nil

	case model.RoleEmployee:
		return result, nil

	default:
		return nil, fmt.Errorf("unknown role %q for user %s", actor.Role, actor.EmployeeCode)
	}
}
