package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ITRequestRepository struct {
	db *gorm.DB
}

func NewITRequestRepository(db *gorm.DB) *ITRequestRepository {
	return &ITRequestRepository{db: db}
}

func (r *ITRequestRepository) DB() *gorm.DB {
	return r.db
}

func (r *ITRequestRepository) Create(req *model.ITRequest) error {
	return r.db.Create(req).Error
}

func (r *ITRequestRepository) FindByID(id string) (*model.ITRequest, error) {
	var req model.ITRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate 带行锁查询（审批事务内使用）
func (r *ITRequestRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*model.ITRequest, error) {
	var req model.ITRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus 在事务内回写状态投影
func (r *ITRequestRepository) UpdateStatus(tx *gorm.DB, id string, status model.ITRequestStatus) error {
	return tx.Model(&model.ITRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateAssignedTo 批准后的处理人标注（不影响状态）
func (r *ITRequestRepository) UpdateAssignedTo(id, assignedTo string) error {
	result := r.db.Model(&model.ITRequest{}).
		Where("id = ? AND status = ?", id, model.ITRequestApproved).
		Update("assigned_to", assignedTo)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser 查某人的IT请求
func (r *ITRequestRepository) ListByUser(userCode string, status model.ITRequestStatus, page, pageSize int) ([]model.ITRequest, int64, error) {
	var requests []model.ITRequest
	var total int64

	query := r.db.Model(&model.ITRequest{}).Where("user_code = ?", userCode)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error
	return requests, total, err
}

// ListAll 全部IT请求（IT支持经理视图）
func (r *ITRequestRepository) ListAll(status model.ITRequestStatus, page, pageSize int) ([]model.ITRequest, int64, error) {
	var requests []model.ITRequest
	var total int64

	query := r.db.Model(&model.ITRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error
	return requests, total, err
}

// Count 请求计数（生成请求编号用）
func (r *ITRequestRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.ITRequest{}).Count(&count).Error
	return count, err
}
