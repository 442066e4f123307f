// db/repo_inventory.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 并发扣减失败后重新读库存、重新截断的次数上限
const maxTakeAttempts = 3

func (r *Repo) CreatePart(ctx context.Context, p *models.Part) error {
	if p.QuantityInStock < 0 {
		return models.Invalid("quantity_in_stock", "Stock cannot be negative")
	}
	return wrap("create part", r.DB.WithContext(ctx).Create(p).Error)
}

func (r *Repo) FindPartByID(ctx context.Context, id uint) (*models.Part, error) {
	var p models.Part
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrap("find part", err)
	}
	return &p, nil
}

// ListParts 名称/零件号模糊搜索
func (r *Repo) ListParts(ctx context.Context, q string) ([]models.Part, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Part{})
	if strings.TrimSpace(q) != "" {
		cond, args := likeAny(q, "name", "part_number")
		tx = tx.Where(cond, args...)
	}
	var ps []models.Part
	if err := tx.Order("name").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *Repo) ListPartUsages(ctx context.Context, partID uint, limit int) ([]models.PartUsage, error) {
	if limit <= 0 {
		limit = 20
	}
	var us []models.PartUsage
	err := r.DB.WithContext(ctx).
		Where("part_id = ?", partID).
		Order("date_used DESC, id DESC").
		Limit(limit).
		Find(&us).Error
	return us, err
}

// DeletePart 先删领用记录再删零件
func (r *Repo) DeletePart(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("part_id = ?", id).Delete(&models.PartUsage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Part{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete part: %w", models.ErrNotFound)
		}
		return nil
	})
}

type TakeInput struct {
	PartID         uint
	Quantity       int
	JobID          *uint
	RentalRecordID *uint
	TakenBy        string
	On             time.Time
}

// TakePart 领用零件：数量截断到现有库存；扣减与领用记录同一事务。
// 扣减是带条件的单条 UPDATE，影响 0 行说明被并发抢先，重读后再截断。
func (r *Repo) TakePart(ctx context.Context, in TakeInput) (*models.PartUsage, error) {
	if in.Quantity <= 0 {
		return nil, models.Invalid("quantity", "Quantity must be at least 1")
	}
	if in.On.IsZero() {
		in.On = time.Now()
	}

	var usage *models.PartUsage
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUsageLinks(tx, in); err != nil {
			return err
		}
		for attempt := 0; attempt < maxTakeAttempts; attempt++ {
			var p models.Part
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, in.PartID).Error; err != nil {
				return wrap("find part", err)
			}
			if p.QuantityInStock <= 0 {
				return models.ErrNoStock
			}
			qty := min(in.Quantity, p.QuantityInStock)

			res := tx.Model(&models.Part{}).
				Where("id = ? AND quantity_in_stock >= ?", p.ID, qty).
				Update("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}

			usage = &models.PartUsage{
				PartID:         p.ID,
				JobID:          in.JobID,
				RentalRecordID: in.RentalRecordID,
				QuantityUsed:   qty,
				DateUsed:       in.On,
			}
			if in.TakenBy != "" {
				by := in.TakenBy
				usage.TakenBy = &by
			}
			return tx.Create(usage).Error
		}
		return fmt.Errorf("take part: stock changed concurrently: %w", models.ErrConflict)
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

func checkUsageLinks(tx *gorm.DB, in TakeInput) error {
	if in.JobID != nil {
		err := tx.Select("id").First(&models.Job{}, *in.JobID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invalid("job", "Select a valid job")
		}
		if err != nil {
			return err
		}
	}
	if in.RentalRecordID != nil {
		err := tx.Select("id").First(&models.RentalRecord{}, *in.RentalRecordID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invalid("rental_record", "Select a valid hire")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
