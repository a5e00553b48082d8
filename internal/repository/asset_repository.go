package repository

import (
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) DB() *gorm.DB {
	return r.db
}

func (r *AssetRepository) Create(asset *model.ITAsset) error {
	return r.db.Create(asset).Error
}

func (r *AssetRepository) FindByID(id string) (*model.ITAsset, error) {
	var asset model.ITAsset
	err := r.db.Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByIDForUpdate 带行锁查资产（分配/回收事务内使用，防止并发重复分配）
func (r *AssetRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*model.ITAsset, error) {
	var asset model.ITAsset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepository) Update(asset *model.ITAsset) error {
	return r.db.Save(asset).Error
}

// UpdateAssignment 在事务内更新资产的分配状态
func (r *AssetRepository) UpdateAssignment(tx *gorm.DB, id string, status model.AssetStatus, assignedTo string) error {
	return tx.Model(&model.ITAsset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"assigned_to": assignedTo,
		}).Error
}

// List 分页查资产（可按类型、状态、持有人过滤）
func (r *AssetRepository) List(assetType string, status model.AssetStatus, assignedTo string, page, pageSize int) ([]model.ITAsset, int64, error) {
	var assets []model.ITAsset
	var total int64

	query := r.db.Model(&model.ITAsset{})
	if assetType != "" {
		query = query.Where("asset_type = ?", assetType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("asset_code ASC").Find(&assets).Error
	return assets, total, err
}

// AppendAssignment 在事务内追加分配历史记录
func (r *AssetRepository) AppendAssignment(tx *gorm.DB, record *model.AssetAssignment) error {
	return tx.Create(record).Error
}

// AssignmentHistory 查资产的分配历史
func (r *AssetRepository) AssignmentHistory(assetID string) ([]model.AssetAssignment, error) {
	var records []model.AssetAssignment
	err := r.db.Where("asset_id = ?", assetID).Order("id ASC").Find(&records).Error
	return records, err
}

// CountAssets 资产计数（生成资产编号用）
func (r *AssetRepository) CountAssets() (int64, error) {
	var count int64
	err := r.db.Model(&model.ITAsset{}).Count(&count).Error
	return count, err
}
