// db/repo_machines.go
package db

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
)

type MachineFilter struct {
	Q      string // 模糊搜索：brand/model/serial
	Status string
	Tier   string
}

func (r *Repo) CreateMachine(ctx context.Context, m *models.RentalMachine) error {
	return wrap("create machine", r.DB.WithContext(ctx).Create(m).Error)
}

func (r *Repo) FindMachineByID(ctx context.Context, id uint) (*models.RentalMachine, error) {
	var m models.RentalMachine
	if err := r.DB.WithContext(ctx).Preload("Specification").First(&m, id).Error; err != nil {
		return nil, wrap("find machine", err)
	}
	return &m, nil
}

func (r *Repo) ListMachines(ctx context.Context, f MachineFilter) ([]models.RentalMachine, error) {
	q := r.DB.WithContext(ctx).Model(&models.RentalMachine{})
	if strings.TrimSpace(f.Q) != "" {
		cond, args := likeAny(f.Q, "brand", "model", "serial_number")
		q = q.Where(cond, args...)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Tier != "" {
		q = q.Where("value_tier = ?", f.Tier)
	}
	var ms []models.RentalMachine
	if err := q.Order("brand, model, serial_number").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// StatusSummary 全部机器按状态计数（不受筛选影响）
func (r *Repo) StatusSummary(ctx context.Context) (map[models.MachineStatus]int64, error) {
	var rows []struct {
		Status models.MachineStatus
		Total  int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.RentalMachine{}).
		Select("status, COUNT(id) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[models.MachineStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// UpdateMachineDetails 编辑页可改的字段
func (r *Repo) UpdateMachineDetails(ctx context.Context, m *models.RentalMachine) error {
	res := r.DB.WithContext(ctx).Model(&models.RentalMachine{ID: m.ID}).
		Select("status", "location", "notes", "condition", "value_tier", "specification_id").
		Updates(m)
	if res.Error != nil {
		return wrap("update machine", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update machine: %w", models.ErrNotFound)
	}
	return nil
}

func (r *Repo) ApplyQuickEdit(ctx context.Context, id uint, qe models.QuickEdit) error {
	col := qe.Column()
	if col == "" {
		return models.Invalid("field", "Invalid field")
	}
	res := r.DB.WithContext(ctx).Model(&models.RentalMachine{}).
		Where("id = ?", id).
		Update(col, qe.Value)
	if res.Error != nil {
		return wrap("quick edit", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("quick edit: %w", models.ErrNotFound)
	}
	return nil
}

// DeleteMachine 级联删除：领用记录 → 工单 → 出租记录 → 机器
func (r *Repo) DeleteMachine(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.RentalMachine
		if err := tx.Select("id").First(&m, id).Error; err != nil {
			return wrap("delete machine", err)
		}
		hires := tx.Model(&models.RentalRecord{}).Select("id").Where("machine_id = ?", id)
		jobs := tx.Model(&models.Job{}).Select("id").Where("rental_machine_id = ?", id)
		if err := tx.Where("rental_record_id IN (?) OR job_id IN (?)", hires, jobs).
			Delete(&models.PartUsage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rental_machine_id = ?", id).Delete(&models.Job{}).Error; err != nil {
			return err
		}
		if err := tx.Where("machine_id = ?", id).Delete(&models.RentalRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.RentalMachine{}, id).Error
	})
}

type MachineHistory struct {
	Hires []models.RentalRecord `json:"rentalHistory"`
	Jobs  []models.Job          `json:"serviceHistory"`
}

// MachineHistory 出租历史 + 维修历史（含旧跑步机表里同序列号的工单）
func (r *Repo) MachineHistory(ctx context.Context, m *models.RentalMachine) (*MachineHistory, error) {
	db := r.DB.WithContext(ctx)
	var h MachineHistory
	if err := db.Preload("Customer").
		Where("machine_id = ?", m.ID).
		Order("start_date DESC").
		Find(&h.Hires).Error; err != nil {
		return nil, err
	}
	legacy := db.Model(&models.Treadmill{}).Select("id").Where("serial_number = ?", m.SerialNumber)
	if err := db.
		Where("rental_machine_id = ? OR treadmill_id IN (?)", m.ID, legacy).
		Order("created_at DESC").
		Find(&h.Jobs).Error; err != nil {
		return nil, err
	}
	return &h, nil
}
