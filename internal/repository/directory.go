package repository

import (
	"errors"

	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
)

// DirectoryAdapter 把用户仓库适配成审批链解析所需的身份目录。
// 停用用户在目录中视同不存在，历史记录里引用其工号不受影响。
type DirectoryAdapter struct {
	users *UserRepository
}

func NewDirectoryAdapter(users *UserRepository) *DirectoryAdapter {
	return &DirectoryAdapter{users: users}
}

// Get 按工号取在职用户
func (d *DirectoryAdapter) Get(code string) (*model.User, error) {
	user, err := d.users.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, hierarchy.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, hierarchy.ErrUserNotFound
	}
	return user, nil
}

// List 所有在职用户
func (d *DirectoryAdapter) List() ([]model.User, error) {
	return d.users.FindAllActive()
}
