package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_fleet_tool/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// wrap 把驱动错误统一成 models 的哨兵错误
func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, models.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", what, models.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// 用户输入里的 % _ \ 按字面匹配
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// likeAny 多列不区分大小写的子串匹配（OR），返回条件和参数
func likeAny(q string, cols ...string) (string, []any) {
	pat := likePattern(q)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		conds[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pat
	}
	return strings.Join(conds, " OR "), args
}

func normalizePage(page, size, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > max {
		size = 20
	}
	return page, size
}

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	// 数据库时间 + 计数自增，避免并发覆盖
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"last_seen_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrap("find user", err)
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error; err != nil {
		return nil, wrap("find user", err)
	}
	return &u, nil
}

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// ListUsers 分页 + 关键词（用户名/显示名），带员工档案
func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	page, size = normalizePage(page, size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if strings.TrimSpace(q) != "" {
		cond, args := likeAny(q, "username", "display_name")
		tx = tx.Where(cond, args...)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Preload("Profile").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// DeleteUserByID 显式删除附属数据，再删用户
func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Credential{}, &models.StaffProfile{}, &models.Timesheet{}, &models.Expense{}, &models.ActivityLog{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{ID: id})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete user: %w", models.ErrNotFound)
		}
		return nil
	})
}

// CreateStaffUser 注册时创建用户 + 员工档案（用户名即邀请邮箱）
func (r *Repo) CreateStaffUser(ctx context.Context, u *models.User, position string) error {
	u.Username = strings.ToLower(u.Username)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", u.Username).First(&existing).Error
		switch {
		case err == nil:
			*u = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(u).Error; err != nil {
				return wrap("create user", err)
			}
		default:
			return err
		}
		if strings.TrimSpace(position) == "" {
			return nil
		}
		var n int64
		if err := tx.Model(&models.StaffProfile{}).Where("user_id = ?", u.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		return tx.Create(&models.StaffProfile{UserID: u.ID, Position: position}).Error
	})
}

func (r *Repo) LoadUserCredentials(ctx context.Context, userID string) ([]models.Credential, error) {
	var cs []models.Credential
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

// Credentials

func (r *Repo) AddCredential(ctx context.Context, c *models.Credential) error {
	return wrap("add credential", r.DB.WithContext(ctx).Create(c).Error)
}

func (r *Repo) UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32, cloneWarn bool) error {
	return r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Updates(map[string]any{
			"sign_count":    newCount,
			"clone_warning": cloneWarn,
			"last_used_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *Repo) FindUserByCredentialID(ctx context.Context, credID []byte) (*models.User, error) {
	var c models.Credential
	if err := r.DB.WithContext(ctx).Where("credential_id = ?", credID).First(&c).Error; err != nil {
		return nil, wrap("find credential", err)
	}
	return r.FindUserByID(ctx, c.UserID)
}

func (r *Repo) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set admin: %w", models.ErrNotFound)
	}
	return nil
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&n).Error
	return n, err
}
