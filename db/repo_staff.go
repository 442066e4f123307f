// db/repo_staff.go
package db

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
)

// FindProfile 没有档案时返回 nil, nil（早期用户可能没有）
func (r *Repo) FindProfile(ctx context.Context, userID string) (*models.StaffProfile, error) {
	var p models.StaffProfile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LogActivity 只追加
func (r *Repo) LogActivity(ctx context.Context, userID, action string) error {
	if userID == "" {
		return nil
	}
	action = strings.TrimSpace(action)
	// 按字符截断，避免切开多字节字符
	if utf8.RuneCountInString(action) > 255 {
		action = string([]rune(action)[:255])
	}
	return r.DB.WithContext(ctx).Create(&models.ActivityLog{UserID: userID, Action: action}).Error
}

func (r *Repo) RecentActivity(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var ls []models.ActivityLog
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&ls).Error
	return ls, err
}

func (r *Repo) AddTimesheet(ctx context.Context, t *models.Timesheet) error {
	return wrap("add timesheet", r.DB.WithContext(ctx).Create(t).Error)
}

func (r *Repo) AddExpense(ctx context.Context, e *models.Expense) error {
	return wrap("add expense", r.DB.WithContext(ctx).Create(e).Error)
}

func (r *Repo) ListTimesheets(ctx context.Context, userID string, limit int) ([]models.Timesheet, error) {
	var ts []models.Timesheet
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&ts).Error
	return ts, err
}

func (r *Repo) ListExpenses(ctx context.Context, userID string, limit int) ([]models.Expense, error) {
	var es []models.Expense
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&es).Error
	return es, err
}
