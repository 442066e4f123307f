// models/machine.go
package models

import "time"

const (
	MachineTable   = "fleet_machines"
	SpecTable      = "machine_specs"
	TreadmillTable = "legacy_treadmills"
)

type MachineType string

const (
	TypeTreadmill  MachineType = "treadmill"
	TypeElliptical MachineType = "elliptical"
	TypeBike       MachineType = "bike"
)

func (t MachineType) Valid() bool {
	switch t {
	case TypeTreadmill, TypeElliptical, TypeBike:
		return true
	}
	return false
}

type MachineStatus string

const (
	StatusAvailable   MachineStatus = "available"
	StatusRented      MachineStatus = "rented"
	StatusMaintenance MachineStatus = "maintenance"
	StatusRetired     MachineStatus = "retired"
)

var MachineStatuses = []MachineStatus{StatusAvailable, StatusRented, StatusMaintenance, StatusRetired}

func (s MachineStatus) Valid() bool {
	for _, v := range MachineStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type ValueTier string

const (
	TierLow        ValueTier = "low"
	TierMedium     ValueTier = "medium"
	TierHigh       ValueTier = "high"
	TierCommercial ValueTier = "commercial"
)

var ValueTiers = []ValueTier{TierLow, TierMedium, TierHigh, TierCommercial}

func (t ValueTier) Valid() bool {
	for _, v := range ValueTiers {
		if t == v {
			return true
		}
	}
	return false
}

// MachineSpecification 技术参数表，(brand, model) 唯一
type MachineSpecification struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Brand           string `gorm:"size:100;not null;uniqueIndex:idx_spec_brand_model" json:"brand"`
	Model           string `gorm:"size:100;not null;uniqueIndex:idx_spec_brand_model" json:"model"`
	BoltTypes       string `gorm:"type:text" json:"boltTypes"`
	RunningBeltSize string `gorm:"size:100" json:"runningBeltSize"`
	MotorModel      string `gorm:"size:100" json:"motorModel"`
	LCBModel        string `gorm:"column:lcb_model;size:100" json:"lcbModel"`
	InclineMotor    string `gorm:"size:100" json:"inclineMotor"`
	SpeedSensor     string `gorm:"size:100" json:"speedSensor"`
	LubricantType   string `gorm:"size:100" json:"lubricantType"`
	VoltageRating   string `gorm:"size:50" json:"voltageRating"`
	CurrentRating   string `gorm:"size:50" json:"currentRating"`
	Notes           string `gorm:"type:text" json:"notes"`
	// blob 存储里的相对路径
	ManualFile string    `gorm:"size:255" json:"manualFile,omitempty"`
	Image      string    `gorm:"size:255" json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type RentalMachine struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	Type            MachineType           `gorm:"size:20;not null" json:"type"`
	Brand           string                `gorm:"size:100;not null;index" json:"brand"`
	Model           string                `gorm:"size:100;not null" json:"model"`
	SerialNumber    string                `gorm:"size:100;uniqueIndex;not null" json:"serialNumber"`
	Condition       string                `gorm:"size:100;not null;default:'Good'" json:"condition"`
	Status          MachineStatus         `gorm:"size:20;not null;default:'available';index" json:"status"`
	Location        string                `gorm:"size:100" json:"location"`
	Notes           string                `gorm:"type:text" json:"notes"`
	ValueTier       ValueTier             `gorm:"size:20;not null;default:'low';index" json:"valueTier"`
	SpecificationID *uint                 `gorm:"index" json:"specificationId,omitempty"`
	Specification   *MachineSpecification `gorm:"constraint:OnDelete:SET NULL" json:"specification,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// Treadmill 旧系统遗留的跑步机记录，只用于历史工单关联
type Treadmill struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	Brand           string                `gorm:"size:100;not null" json:"brand"`
	Model           string                `gorm:"size:100;not null" json:"model"`
	SerialNumber    string                `gorm:"size:100;index;not null" json:"serialNumber"`
	SpecificationID *uint                 `gorm:"index" json:"specificationId,omitempty"`
	Specification   *MachineSpecification `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (MachineSpecification) TableName() string { return SpecTable }
func (RentalMachine) TableName() string        { return MachineTable }
func (Treadmill) TableName() string            { return TreadmillTable }
