// models/staff.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StaffProfile 与用户一对一
type StaffProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Position  string    `gorm:"size:100;not null" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ActivityLog 员工操作审计，只追加
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

type Timesheet struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;index;not null" json:"userId"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	HoursWorked decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"hoursWorked"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;index;not null" json:"userId"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (StaffProfile) TableName() string { return "staff_profiles" }
func (ActivityLog) TableName() string  { return "staff_activity_log" }
func (Timesheet) TableName() string    { return "staff_timesheets" }
func (Expense) TableName() string      { return "staff_expenses" }
