package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) DB() *gorm.DB {
	return r.db
}

func (r *ProjectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) FindByID(id string) (*model.Project, error) {
	var project model.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDForUpdate 带行锁查询（审批/状态转移事务内使用）
func (r *ProjectRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*model.Project, error) {
	var project model.Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateStatus 在事务内回写状态投影
func (r *ProjectRepository) UpdateStatus(tx *gorm.DB, id string, status model.ProjectStatus) error {
	return tx.Model(&model.Project{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateApproval 在审批事务内回写状态和核定预算
func (r *ProjectRepository) UpdateApproval(tx *gorm.DB, id string, status model.ProjectStatus, approvedBudget interface{}) error {
	updates := map[string]interface{}{"status": status}
	if approvedBudget != nil {
		updates["approved_budget"] = approvedBudget
	}
	return tx.Model(&model.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListByOwner 查某人发起的项目
func (r *ProjectRepository) ListByOwner(ownerCode string, status model.ProjectStatus, page, pageSize int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	query := r.db.Model(&model.Project{}).Where("owner_code = ?", ownerCode)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error
	return projects, total, err
}

// ListAll 全部项目（管理员审批视图）
func (r *ProjectRepository) ListAll(status model.ProjectStatus, page, pageSize int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	query := r.db.Model(&model.Project{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error
	return projects, total, err
}

// Count 项目计数（生成项目编号用）
func (r *ProjectRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Project{}).Count(&count).Error
	return count, err
}
