// db/repo_jobs.go
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/gorm"
)

// CreateJob 持久化工单；归属方必须存在
func (r *Repo) CreateJob(ctx context.Context, j *models.Job) error {
	owner := j.Owner()
	if owner == nil {
		return models.Invalid("owner_type", "Select either a company machine or a customer")
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch o := owner.(type) {
		case models.CompanyOwner:
			err = tx.Select("id").First(&models.RentalMachine{}, o.MachineID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Invalid("rental_machine", "Select a valid machine")
			}
		case models.CustomerOwned:
			err = tx.Select("id").First(&models.Customer{}, o.CustomerID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Invalid("customer", "Select a valid customer")
			}
		}
		if err != nil {
			return err
		}
		if j.Status == "" {
			j.Status = models.JobToAssess
		}
		return wrap("create job", tx.Create(j).Error)
	})
}

type JobFilter struct {
	Status    string
	MachineID uint
}

func (r *Repo) ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error) {
	tx := r.DB.WithContext(ctx).Preload("RentalMachine").Preload("Customer")
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.MachineID != 0 {
		tx = tx.Where("rental_machine_id = ?", f.MachineID)
	}
	var js []models.Job
	if err := tx.Order("created_at DESC").Find(&js).Error; err != nil {
		return nil, err
	}
	return js, nil
}

type JobDetail struct {
	Job    models.Job         `json:"job"`
	Usages []models.PartUsage `json:"partsUsed"`
}

func (r *Repo) FindJobByID(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := r.DB.WithContext(ctx).
		Preload("RentalMachine").
		Preload("Customer").
		First(&j, id).Error; err != nil {
		return nil, wrap("find job", err)
	}
	return &j, nil
}

// JobDetail 工单 + 领用的零件
func (r *Repo) JobDetail(ctx context.Context, id uint) (*JobDetail, error) {
	j, err := r.FindJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &JobDetail{Job: *j}
	if err := r.DB.WithContext(ctx).
		Preload("Part").
		Where("job_id = ?", id).
		Order("date_used DESC, id DESC").
		Find(&d.Usages).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateJobStatus complete 时记完成时间，离开 complete 时清空
func (r *Repo) UpdateJobStatus(ctx context.Context, id uint, status models.JobStatus, now time.Time) error {
	if !status.Valid() {
		return models.Invalid("status", "Invalid status")
	}
	updates := map[string]any{"status": status, "date_completed": nil}
	if status == models.JobComplete {
		updates["date_completed"] = now
	}
	res := r.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update job: %w", models.ErrNotFound)
	}
	return nil
}
