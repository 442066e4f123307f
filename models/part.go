// models/part.go
package models

import "time"

const (
	PartTable  = "parts"
	UsageTable = "part_usages"
)

type Part struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null;index" json:"name"`
	PartNumber       string    `gorm:"size:100;uniqueIndex;not null" json:"partNumber"`
	QuantityInStock  int       `gorm:"not null;default:0;check:chk_parts_stock_floor,quantity_in_stock >= 0" json:"quantityInStock"`
	Location         string    `gorm:"size:100" json:"location,omitempty"`
	CompatibleModels string    `gorm:"type:text" json:"compatibleModels,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PartUsage 领用记录；写入时必须与库存扣减在同一事务
type PartUsage struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	PartID         uint          `gorm:"index;not null" json:"partId"`
	Part           *Part         `gorm:"constraint:OnDelete:CASCADE" json:"part,omitempty"`
	JobID          *uint         `gorm:"index" json:"jobId,omitempty"`
	Job            *Job          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RentalRecordID *uint         `gorm:"index" json:"rentalRecordId,omitempty"`
	RentalRecord   *RentalRecord `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TakenBy        *string       `gorm:"type:uuid" json:"takenBy,omitempty"`
	QuantityUsed   int           `gorm:"not null;check:chk_part_usages_qty,quantity_used > 0" json:"quantityUsed"`
	DateUsed       time.Time     `gorm:"type:date;not null;index" json:"dateUsed"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (Part) TableName() string      { return PartTable }
func (PartUsage) TableName() string { return UsageTable }
