// db/repo_hire.go
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HireInput 新建出租：已有客户 或 新客户（二选一，由表单层校验）
type HireInput struct {
	MachineID   uint
	CustomerID  *uint
	NewCustomer *models.Customer
	StartDate   time.Time
	DueDate     time.Time
	Notes       string
}

// CreateHire 一个事务内：可选建客户 → 建出租记录 → 机器改为 rented 并更新位置
func (r *Repo) CreateHire(ctx context.Context, in HireInput) (*models.RentalRecord, error) {
	var rec *models.RentalRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.RentalMachine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, in.MachineID).Error; err != nil {
			return wrap("find machine", err)
		}

		var cust models.Customer
		switch {
		case in.NewCustomer != nil:
			cust = *in.NewCustomer
			if err := tx.Create(&cust).Error; err != nil {
				return wrap("create customer", err)
			}
		case in.CustomerID != nil:
			if err := tx.First(&cust, *in.CustomerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.Invalid("customer", "Select a valid customer")
				}
				return err
			}
		default:
			return models.Invalid("customer", "Select an existing customer or enter a new one")
		}

		cid := cust.ID
		rec = &models.RentalRecord{
			MachineID:  m.ID,
			CustomerID: &cid,
			StartDate:  in.StartDate,
			DueDate:    in.DueDate,
			Notes:      in.Notes,
		}
		// 部分唯一索引保证一台机器只有一条未归还记录
		if err := tx.Create(rec).Error; err != nil {
			return wrap("create hire", err)
		}

		if err := tx.Model(&models.RentalMachine{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{
				"status":   models.StatusRented,
				"location": cust.OnHireLocation(),
			}).Error; err != nil {
			return err
		}
		rec.Customer = &cust
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReturnHire 归还：写 return_date，机器回到 available + 仓库位置
func (r *Repo) ReturnHire(ctx context.Context, machineID uint, on time.Time, location string) (*models.RentalRecord, error) {
	var rec models.RentalRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("machine_id = ? AND return_date IS NULL", machineID).
			First(&rec).Error; err != nil {
			return wrap("find open hire", err)
		}
		if on.Before(rec.StartDate) {
			return models.Invalid("return_date", "Return date cannot be before the start date")
		}
		if err := tx.Model(&rec).Update("return_date", on).Error; err != nil {
			return err
		}
		rec.ReturnDate = &on
		return tx.Model(&models.RentalMachine{}).
			Where("id = ?", machineID).
			Updates(map[string]any{
				"status":   models.StatusAvailable,
				"location": location,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// OpenHire 当前未归还的出租（没有时返回 nil, nil）
func (r *Repo) OpenHire(ctx context.Context, machineID uint) (*models.RentalRecord, error) {
	var rec models.RentalRecord
	err := r.DB.WithContext(ctx).Preload("Customer").
		Where("machine_id = ? AND return_date IS NULL", machineID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open hire: %w", err)
	}
	return &rec, nil
}

// ListOverdueHires 仪表盘提醒用
func (r *Repo) ListOverdueHires(ctx context.Context, today time.Time) ([]models.RentalRecord, error) {
	var recs []models.RentalRecord
	err := r.DB.WithContext(ctx).
		Preload("Machine").Preload("Customer").
		Where("return_date IS NULL AND due_date < ?", today.Format("2006-01-02")).
		Order("due_date").
		Find(&recs).Error
	return recs, err
}
