package repository

import (
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) DB() *gorm.DB {
	return r.db
}

func (r *LeaveRepository) Create(req *model.LeaveRequest) error {
	return r.db.Create(req).Error
}

func (r *LeaveRepository) FindByID(id string) (*model.LeaveRequest, error) {
	var req model.LeaveRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate 带行锁查询（审批事务内使用，防止并发审批交错）
func (r *LeaveRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*model.LeaveRequest, error) {
	var req model.LeaveRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus 在事务内回写状态投影
func (r *LeaveRepository) UpdateStatus(tx *gorm.DB, id string, status model.LeaveStatus) error {
	return tx.Model(&model.LeaveRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListByUser 查某人的请假申请
func (r *LeaveRepository) ListByUser(userCode string, status model.LeaveStatus, page, pageSize int) ([]model.LeaveRequest, int64, error) {
	var requests []model.LeaveRequest
	var total int64

	query := r.db.Model(&model.LeaveRequest{}).Where("user_code = ?", userCode)
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

// ListByUsers 查一组用户的请假申请（审批人视图）
func (r *LeaveRepository) ListByUsers(userCodes []string, status model.LeaveStatus, page, pageSize int) ([]model.LeaveRequest, int64, error) {
	var requests []model.LeaveRequest
	var total int64

	query := r.db.Model(&model.LeaveRequest{}).Where("user_code IN ?", userCodes)
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

// CountOverlapping 统计与给定闭区间重叠的未终结或已终审通过的请假申请。
// 已拒绝和已取消的申请不占用日期。
func (r *LeaveRepository) CountOverlapping(userCode string, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.LeaveRequest{}).
		Where("user_code = ?", userCode).
		Where("status NOT IN ?", []model.LeaveStatus{model.LeaveStatusRejected, model.LeaveStatusCancelled}).
		Where("start_date <= ? AND end_date >= ?", end.Format("2006-01-02"), start.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}

// ===== Leave Balance Methods =====

// FindBalance 查余额
func (r *LeaveRepository) FindBalance(userCode string, leaveType model.LeaveType, year int) (*model.LeaveBalance, error) {
	var balance model.LeaveBalance
	err := r.db.Where("user_code = ? AND leave_type = ? AND year = ?", userCode, leaveType, year).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// FindBalanceForUpdate 带行锁查余额（扣减事务内使用）
func (r *LeaveRepository) FindBalanceForUpdate(tx *gorm.DB, userCode string, leaveType model.LeaveType, year int) (*model.LeaveBalance, error) {
	var balance model.LeaveBalance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_code = ? AND leave_type = ? AND year = ?", userCode, leaveType, year).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// ListBalances 查某人某年的全部余额
func (r *LeaveRepository) ListBalances(userCode string, year int) ([]model.LeaveBalance, error) {
	var balances []model.LeaveBalance
	err := r.db.Where("user_code = ? AND year = ?", userCode, year).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

// CreateBalance 初始化余额记录
func (r *LeaveRepository) CreateBalance(balance *model.LeaveBalance) error {
	return r.db.Create(balance).Error
}

// DeductBalance 在事务内扣减余额。
// 条件更新带余额校验，并发下重复扣减或超扣会因影响行数为0而失败。
func (r *LeaveRepository) DeductBalance(tx *gorm.DB, userCode string, leaveType model.LeaveType, year, days int) error {
	result := tx.Model(&model.LeaveBalance{}).
		Where("user_code = ? AND leave_type = ? AND year = ? AND total_days - used_days >= ?",
			userCode, leaveType, year, days).
		Update("used_days", gorm.Expr("used_days + ?", days))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("insufficient %s leave balance for %s in %d", leaveType, userCode, year)
	}
	return nil
}

// RestoreBalance 在事务内恢复余额（允许的取消路径）
func (r *LeaveRepository) RestoreBalance(tx *gorm.DB, userCode string, leaveType model.LeaveType, year, days int) error {
	result := tx.Model(&model.LeaveBalance{}).
		Where("user_code = ? AND leave_type = ? AND year = ? AND used_days >= ?",
			userCode, leaveType, year, days).
		Update("used_days", gorm.Expr("used_days - ?", days))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cannot restore %d days of %s leave for %s in %d", days, leaveType, userCode, year)
	}
	return nil
}
