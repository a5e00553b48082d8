package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// ListOperationLogs 分页查操作日志（可按用户、路径过滤）
func (r *AuditRepository) ListOperationLogs(userCode, path string, page, pageSize int) ([]model.OperationLog, int64, error) {
	var logs []model.OperationLog
	var total int64

	query := r.db.Model(&model.OperationLog{})
	if userCode != "" {
		query = query.Where("user_code = ?", userCode)
	}
	if path != "" {
		query = query.Where("path LIKE ?", path+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&logs).Error
	return logs, total, err
}
