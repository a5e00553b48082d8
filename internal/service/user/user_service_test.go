package user

import (
	"errors"
	"testing"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/pkg/config"
)

// 角色与权限校验发生在任何持久化操作之前，
// 因此拒绝路径可以在不连库的情况下直接测试。
func TestCreateUserRoleGuard(t *testing.T) {
	svc := NewUserService(nil, nil, nil, config.LeaveConfig{})

	tests := []struct {
		name    string
		actor   model.Role
		target  model.Role
		wantErr error
	}{
		{"admin不能创建super_admin", model.RoleAdmin, model.RoleSuperAdmin, ErrRoleTooHigh},
		{"admin不能创建平级admin", model.RoleAdmin, model.RoleAdmin, ErrRoleTooHigh},
		{"manager无创建权限", model.RoleManager, model.RoleEmployee, ErrForbidden},
		{"employee无创建权限", model.RoleEmployee, model.RoleEmployee, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := &model.User{EmployeeCode: "EMP-9001", Role: tt.actor}
			req := &model.CreateUserRequest{
				Email:    "someone@example.com",
				Password: "secret123",
				Role:     tt.target,
			}
			_, err := svc.CreateUser(actor, req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateUser() error = %v, 期望 %v", err, tt.wantErr)
			}
		})
	}
}
