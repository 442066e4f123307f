package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/models"
)

func (r *Repo) CreateInvite(ctx context.Context, inv *models.Invite) error {
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	return wrap("create invite", r.DB.WithContext(ctx).Create(inv).Error)
}

// GetUsableInvite 未使用且未过期
func (r *Repo) GetUsableInvite(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	var inv models.Invite
	if err := r.DB.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		First(&inv).Error; err != nil {
		return nil, wrap("invite", err)
	}
	return &inv, nil
}

func (r *Repo) MarkInviteUsed(ctx context.Context, token string) error {
	now := time.Now()
	res := r.DB.WithContext(ctx).Model(&models.Invite{}).
		Where("token = ? AND used_at IS NULL", token).
		Update("used_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invite already used or missing: %w", models.ErrConflict)
	}
	return nil
}
