package repository

import (
	"fmt"

	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByCode 按工号查找在职用户（身份目录查询入口）
func (r *UserRepository) FindByCode(code string) (*model.User, error) {
	var user model.User
	err := r.db.Where("employee_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAllActive 所有在职用户（目录快照）
func (r *UserRepository) FindAllActive() ([]model.User, error) {
	var users []model.User
	err := r.db.Where("is_active = ?", true).Order("employee_code ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// Deactivate 软停用（保留历史审批记录，永不物理删除）
func (r *UserRepository) Deactivate(code string) error {
	result := r.db.Model(&model.User{}).
		Where("employee_code = ? AND is_active = ?", code, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 分页查询用户（可按角色、部门过滤）
func (r *UserRepository) List(page, pageSize int, role, department string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.Model(&model.User{}).Where("is_active = ?", true)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if department != "" {
		query = query.Where("department = ?", department)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("employee_code ASC").Find(&users).Error

	return users, total, err
}

// FindByCodes 批量按工号查询
func (r *UserRepository) FindByCodes(codes []string) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("employee_code IN ?", codes).Find(&users).Error
	return users, err
}

// NextEmployeeCode 生成下一个工号（EMP-XXXX，从最大序号递增）
func (r *UserRepository) NextEmployeeCode() (string, error) {
	var last model.User
	err := r.db.Unscoped().
		Where("employee_code LIKE ?", "EMP-%").
		Order("employee_code DESC").
		First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "EMP-0001", nil
		}
		return "", err
	}

	var seq int
	if _, err := fmt.Sscanf(last.EmployeeCode, "EMP-%d", &seq); err != nil {
		return "", fmt.Errorf("unexpected employee code format %q: %w", last.EmployeeCode, err)
	}
	return fmt.Sprintf("EMP-%04d", seq+1), nil
}
