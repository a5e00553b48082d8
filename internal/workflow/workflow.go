// Package workflow 审批工作流引擎。
// 每个业务域一台有限状态机：请求的当前状态不是独立维护的字段，
// 而是对其不可变环节记录按序折叠（fold）得到的投影。数据库里的
// status 列只在追加环节记录的同一事务内回写投影值，消除状态漂移。
//
// 各状态机对外暴露两个纯函数：
//   - Project*Status(history): 折叠环节历史得到当前状态
//   - Next*Stage(history, action, ...): 校验动作合法性，返回应追加的
//     环节序号和推进后的状态
//
// 引擎只管状态推进的合法性，审批人资格由 authz 判定，台账副作用
// （假期扣减、车位翻转）由服务层在终态转移时执行。
package workflow

import (
	"errors"

	"github.com/fisker/officehub-backend/internal/model"
)

var (
	// ErrInvalidStateTransition 当前状态下不允许该动作（含终态重放）
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrReasonRequired 拒绝必须附带非空原因
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrDuplicateApprover 两级审批的两个环节不能是同一人
	ErrDuplicateApprover = errors.New("stage approver must differ from previous stage")
	// ErrNotOwner 取消只能由申请人本人发起
	ErrNotOwner = errors.New("only the request owner may cancel")
)

// lastApprover 返回指定环节的批准人工号，未找到返回空串
func lastApprover(history []model.ApprovalStage, stageNo int) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].StageNo == stageNo && history[i].Action == model.StageActionApprove {
			return history[i].ActorCode
		}
	}
	return ""
}
