package models

import "time"

// Invite 员工注册邀请；Position 注册成功后写入 StaffProfile
type Invite struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index;size:255;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	Position  string    `gorm:"size:100"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedBy string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Invite) TableName() string { return "staff_invites" }
