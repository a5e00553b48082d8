package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

// StageRepository 审批环节记录仓库。
// 记录只追加不修改：请求状态永远可以由环节历史重新推导。
type StageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

// Append 追加一条环节记录（必须在与状态投影回写相同的事务内调用）
func (r *StageRepository) Append(tx *gorm.DB, stage *model.ApprovalStage) error {
	return tx.Create(stage).Error
}

// History 按时间顺序取某请求的完整环节历史
func (r *StageRepository) History(tx *gorm.DB, domain model.RequestDomain, requestID string) ([]model.ApprovalStage, error) {
	var stages []model.ApprovalStage
	err := tx.Where("domain = ? AND request_id = ?", domain, requestID).
		Order("id ASC").
		Find(&stages).Error
	return stages, err
}

// HistoryForRequests 批量取多个请求的环节历史（列表页展示用）
func (r *StageRepository) HistoryForRequests(domain model.RequestDomain, requestIDs []string) (map[string][]model.ApprovalStage, error) {
	var stages []model.ApprovalStage
	err := r.db.Where("domain = ? AND request_id IN ?", domain, requestIDs).
		Order("id ASC").
		Find(&stages).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string][]model.ApprovalStage, len(requestIDs))
	for _, s := range stages {
		result[s.RequestID] = append(result[s.RequestID], s)
	}
	return result, nil
}
