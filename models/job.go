// models/job.go
package models

import "time"

const JobTable = "service_jobs"

type JobStatus string

const (
	JobToAssess   JobStatus = "to_assess"
	JobInProgress JobStatus = "in_progress"
	JobComplete   JobStatus = "complete"
	JobCancelled  JobStatus = "cancelled"
)

var JobStatuses = []JobStatus{JobToAssess, JobInProgress, JobComplete, JobCancelled}

func (s JobStatus) Valid() bool {
	for _, v := range JobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type OwnerKind string

const (
	OwnerCompany  OwnerKind = "company"
	OwnerCustomer OwnerKind = "customer"
)

// JobOwner 工单归属：公司机器 或 客户自有机器，二选一
type JobOwner interface {
	Kind() OwnerKind
	apply(j *Job)
}

// CompanyOwner 车队机器
type CompanyOwner struct {
	MachineID uint
}

// CustomerOwned 客户自带的机器，外部品牌/型号/序列号可选
type CustomerOwned struct {
	CustomerID     uint
	ExternalBrand  string
	ExternalModel  string
	ExternalSerial string
}

func (CompanyOwner) Kind() OwnerKind  { return OwnerCompany }
func (CustomerOwned) Kind() OwnerKind { return OwnerCustomer }

func (o CompanyOwner) apply(j *Job) {
	id := o.MachineID
	j.OwnerKind = OwnerCompany
	j.RentalMachineID = &id
	j.CustomerID = nil
	j.ExternalBrand, j.ExternalModel, j.ExternalSerial = "", "", ""
}

func (o CustomerOwned) apply(j *Job) {
	id := o.CustomerID
	j.OwnerKind = OwnerCustomer
	j.CustomerID = &id
	j.RentalMachineID = nil
	j.ExternalBrand, j.ExternalModel, j.ExternalSerial = o.ExternalBrand, o.ExternalModel, o.ExternalSerial
}

// Job 维修/检测工单。owner 列由 SetOwner 写入，数据库 CHECK 兜底保证二选一。
type Job struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OwnerKind       OwnerKind      `gorm:"size:10;not null;check:chk_service_jobs_owner,(owner_kind = 'company' AND rental_machine_id IS NOT NULL AND customer_id IS NULL) OR (owner_kind = 'customer' AND customer_id IS NOT NULL AND rental_machine_id IS NULL)" json:"ownerType"`
	RentalMachineID *uint          `gorm:"index" json:"rentalMachineId,omitempty"`
	RentalMachine   *RentalMachine `gorm:"constraint:OnDelete:CASCADE" json:"rentalMachine,omitempty"`
	CustomerID      *uint          `gorm:"index" json:"customerId,omitempty"`
	Customer        *Customer      `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	ExternalBrand   string         `gorm:"size:100" json:"externalBrand,omitempty"`
	ExternalModel   string         `gorm:"size:100" json:"externalModel,omitempty"`
	ExternalSerial  string         `gorm:"size:100" json:"externalSerial,omitempty"`
	TreadmillID     *uint          `gorm:"index" json:"treadmillId,omitempty"`
	Treadmill       *Treadmill     `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	Status        JobStatus  `gorm:"size:20;not null;default:'to_assess';index" json:"status"`
	BookingDate   *time.Time `gorm:"type:date" json:"bookingDate,omitempty"`
	Confirmed     bool       `gorm:"not null;default:false" json:"confirmed"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"dateCreated"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Job) TableName() string { return JobTable }

// NewJob builds a job whose owner columns come only from the given variant.
func NewJob(owner JobOwner) *Job {
	j := &Job{Status: JobToAssess}
	j.SetOwner(owner)
	return j
}

func (j *Job) SetOwner(owner JobOwner) { owner.apply(j) }

// Owner 从持久化列还原变体；列不一致时返回 nil
func (j Job) Owner() JobOwner {
	switch j.OwnerKind {
	case OwnerCompany:
		if j.RentalMachineID != nil && j.CustomerID == nil {
			return CompanyOwner{MachineID: *j.RentalMachineID}
		}
	case OwnerCustomer:
		if j.CustomerID != nil && j.RentalMachineID == nil {
			return CustomerOwned{
				CustomerID:     *j.CustomerID,
				ExternalBrand:  j.ExternalBrand,
				ExternalModel:  j.ExternalModel,
				ExternalSerial: j.ExternalSerial,
			}
		}
	}
	return nil
}
