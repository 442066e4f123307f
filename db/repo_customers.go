// db/repo_customers.go
package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_fleet_tool/models"
)

func (r *Repo) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return wrap("create customer", r.DB.WithContext(ctx).Create(c).Error)
}

func (r *Repo) FindCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrap("find customer", err)
	}
	return &c, nil
}

// SearchCustomers 名/姓/电话/邮箱 模糊匹配，按姓名排序
func (r *Repo) SearchCustomers(ctx context.Context, q string, limit int) ([]models.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	tx := r.DB.WithContext(ctx).Model(&models.Customer{})
	if strings.TrimSpace(q) != "" {
		cond, args := likeAny(q, "first_name", "last_name", "phone", "email")
		tx = tx.Where(cond, args...)
	}
	var cs []models.Customer
	if err := tx.Order("last_name, first_name").Limit(limit).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}
