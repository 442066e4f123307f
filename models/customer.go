package models

import (
	"strings"
	"time"
)

const CustomerTable = "customers"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"firstName"`
	LastName  string    `gorm:"size:100;not null" json:"lastName"`
	Phone     string    `gorm:"size:20" json:"phone,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Address   string    `gorm:"type:text" json:"address,omitempty"` // 街道地址
	Suburb    string    `gorm:"size:100" json:"suburb,omitempty"`
	Postcode  string    `gorm:"size:10" json:"postcode,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Customer) TableName() string { return CustomerTable }

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// OnHireLocation 出租后机器所在位置：郊区 > 街道 > 占位符
func (c Customer) OnHireLocation() string {
	if s := strings.TrimSpace(c.Suburb); s != "" {
		return s
	}
	if s := strings.TrimSpace(c.Address); s != "" {
		return s
	}
	return OnHirePlaceholder
}

const OnHirePlaceholder = "On Hire"
