// Package authz 权限评估器。
// 对 (操作者, 动作, 目标资源) 做纯函数判定，按固定顺序首条命中即返回：
// 超管放行 -> 本人自助 -> 领域管理 -> 审批资格 -> 下属只读 -> 拒绝。
// 拒绝是正常结果而不是错误，理由码随响应返回便于排查。
package authz

import (
	"errors"

	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
)

// ActionKind 动作类别
type ActionKind string

const (
	// ActionSelfService 本人发起的自助操作（打卡、请假、申请车位、查自己档案）
	ActionSelfService ActionKind = "self_service"
	// ActionManage 领域资源管理（建车位、建工位、维护菜单、管理资产）
	ActionManage ActionKind = "manage"
	// ActionApprove 审批动作（批准/驳回某一环节）
	ActionApprove ActionKind = "approve"
	// ActionReadOther 查看他人资源
	ActionReadOther ActionKind = "read_other"
)

// 拒绝理由码
const (
	ReasonInsufficientRole = "insufficient_role"
	ReasonNotInHierarchy   = "not_in_hierarchy"
	ReasonWrongStage       = "wrong_stage"
	ReasonIntegrity        = "hierarchy_integrity"
)

// Action 待评估的动作
type Action struct {
	Kind ActionKind
	// Stage 审批动作对应的环节序号（1 起始），仅 ActionApprove 使用
	Stage int
	// ExactStage 为真时要求操作者恰好位于链上第 Stage 环；
	// 为假时位于第 Stage 环或更高环节也可（请假的越级审批）
	ExactStage bool
	// SuperAdminExempt 标记超管也不可越权的动作（例如不能替他人打卡）
	SuperAdminExempt bool
}

// ResourceRef 目标资源
type ResourceRef struct {
	Domain    model.RequestDomain
	OwnerCode string // 归属人工号，领域级资源（车位、菜单）可为空
}

// Decision 评估结果
type Decision struct {
	Allowed bool
	Reason  string // 拒绝理由码，放行时为空
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// universalSpecialization 领域 -> 通用审批人专业类型。
// 命中该专业的经理对整个领域拥有越过审批链的审批权。
// 请假和项目没有通用审批人：请假只走链，项目由管理员平级审批。
var universalSpecialization = map[model.RequestDomain]model.ManagerType{
	model.DomainAttendance:  model.ManagerTypeAttendance,
	model.DomainParking:     model.ManagerTypeParking,
	model.DomainDesk:        model.ManagerTypeDeskConference,
	model.DomainRoomBooking: model.ManagerTypeDeskConference,
	model.DomainCafeteria:   model.ManagerTypeCafeteria,
	model.DomainITRequest:   model.ManagerTypeITSupport,
}

// IsUniversalApprover 判断操作者是否为该领域的通用审批人
func IsUniversalApprover(actor *model.User, domain model.RequestDomain) bool {
	spec, ok := universalSpecialization[domain]
	if !ok {
		return false
	}
	return actor.Role == model.RoleManager && actor.ManagerType == spec
}

// CanAct 权限判定。目录快照显式传入，每次调用重新解析审批链。
// 输入合法时永远不返回 error；只有目录数据完整性问题才会带出错误，
// 此时同时返回 fail-closed 的拒绝结果。
func CanAct(dir hierarchy.Directory, actor *model.User, action Action, target ResourceRef) (Decision, error) {
	// 规则1：超管放行（除明确豁免的动作）
	if actor.Role == model.RoleSuperAdmin {
		if action.SuperAdminExempt {
			return deny(ReasonInsufficientRole), nil
		}
		return allow, nil
	}

	// 规则2：本人自助
	if action.Kind == ActionSelfService && target.OwnerCode == actor.EmployeeCode {
		return allow, nil
	}

	// 规则3：领域管理
	if action.Kind == ActionManage {
		if actor.Role == model.RoleAdmin || IsUniversalApprover(actor, target.Domain) {
			return allow, nil
		}
		return deny(ReasonInsufficientRole), nil
	}

	// 规则4：审批资格，链位匹配或通用审批人
	if action.Kind == ActionApprove {
		if IsUniversalApprover(actor, target.Domain) {
			return allow, nil
		}
		owner, err := dir.Get(target.OwnerCode)
		if err != nil {
			return deny(ReasonNotInHierarchy), err
		}
		chain, err := hierarchy.ResolveApproverChain(dir, owner)
		if err != nil {
			var integrity *hierarchy.IntegrityError
			if errors.As(err, &integrity) {
				// 截断链上仍可命中的环节照常判定，越过截断点则 fail closed
				if pos, ok := hierarchy.ChainContains(chain, actor.EmployeeCode); ok && stageMatches(action, pos) {
					return allow, nil
				}
				return deny(ReasonIntegrity), err
			}
			return deny(ReasonNotInHierarchy), err
		}
		pos, ok := hierarchy.ChainContains(chain, actor.EmployeeCode)
		if !ok {
			return deny(ReasonNotInHierarchy), nil
		}
		if !stageMatches(action, pos) {
			return deny(ReasonWrongStage), nil
		}
		return allow, nil
	}

	// 规则5：下属只读
	if action.Kind == ActionReadOther {
		subs, err := hierarchy.ResolveSubordinates(dir, actor)
		if err != nil {
			return deny(ReasonNotInHierarchy), err
		}
		if _, ok := subs[target.OwnerCode]; ok {
			return allow, nil
		}
		// 通用审批人可以查看本领域内所有申请
		if IsUniversalApprover(actor, target.Domain) {
			return allow, nil
		}
		return deny(ReasonNotInHierarchy), nil
	}

	// 规则6：兜底拒绝
	return deny(ReasonInsufficientRole), nil
}

func stageMatches(action Action, chainPos int) bool {
	if action.Stage <= 0 {
		return true
	}
	if action.ExactStage {
		return chainPos == action.Stage
	}
	return chainPos >= action.Stage
}
