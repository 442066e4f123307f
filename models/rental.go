// models/rental.go
package models

import "time"

const RentalTable = "rental_records"

// RentalRecord 一次出租（hire）
type RentalRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MachineID  uint           `gorm:"index;not null" json:"machineId"`
	Machine    *RentalMachine `gorm:"constraint:OnDelete:CASCADE" json:"machine,omitempty"`
	CustomerID *uint          `gorm:"index" json:"customerId,omitempty"`
	Customer   *Customer      `gorm:"constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	StartDate  time.Time      `gorm:"type:date;not null;index" json:"startDate"`
	DueDate    time.Time      `gorm:"type:date;not null" json:"dueDate"`
	ReturnDate *time.Time     `gorm:"type:date" json:"returnDate,omitempty"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (RentalRecord) TableName() string { return RentalTable }

// Open 尚未归还
func (r RentalRecord) Open() bool { return r.ReturnDate == nil }

// Overdue reports whether an open hire is past its due date on day now.
func (r RentalRecord) Overdue(now time.Time) bool {
	if !r.Open() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := r.DueDate.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(today)
}
