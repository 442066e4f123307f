// db/repo_specs.go
package db

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
)

func (r *Repo) SearchSpecs(ctx context.Context, q string) ([]models.MachineSpecification, error) {
	tx := r.DB.WithContext(ctx).Model(&models.MachineSpecification{})
	if strings.TrimSpace(q) != "" {
		cond, args := likeAny(q, "brand", "model")
		tx = tx.Where(cond, args...)
	}
	var ss []models.MachineSpecification
	if err := tx.Order("brand, model").Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *Repo) CreateSpec(ctx context.Context, s *models.MachineSpecification) error {
	return wrap("create spec", r.DB.WithContext(ctx).Create(s).Error)
}

func (r *Repo) FindSpecByID(ctx context.Context, id uint) (*models.MachineSpecification, error) {
	var s models.MachineSpecification
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, wrap("find spec", err)
	}
	return &s, nil
}

// UpdateSpec 全字段覆盖（包括清空）；brand+model 撞车返回 ErrConflict
func (r *Repo) UpdateSpec(ctx context.Context, s *models.MachineSpecification) error {
	res := r.DB.WithContext(ctx).Model(&models.MachineSpecification{ID: s.ID}).
		Select("*").Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		return wrap("update spec", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update spec: %w", models.ErrNotFound)
	}
	return nil
}

// MachinesUsingSpec 详情页展示哪些车队机器挂了这份参数
func (r *Repo) MachinesUsingSpec(ctx context.Context, specID uint) ([]models.RentalMachine, error) {
	var ms []models.RentalMachine
	err := r.DB.WithContext(ctx).
		Where("specification_id = ?", specID).
		Order("serial_number").
		Find(&ms).Error
	return ms, err
}

// DeleteSpec 引用置空后删除，返回被删记录（调用方清理附件）
func (r *Repo) DeleteSpec(ctx context.Context, id uint) (*models.MachineSpecification, error) {
	var s models.MachineSpecification
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return wrap("delete spec", err)
		}
		for _, m := range []any{&models.RentalMachine{}, &models.Treadmill{}} {
			if err := tx.Model(m).
				Where("specification_id = ?", id).
				Update("specification_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.MachineSpecification{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
