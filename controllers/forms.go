// controllers/forms.go
package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// 校验错误的字段名用 form/json 标签，和前端表单字段一致
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "gte", "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		switch fe.Field() {
		case "status":
			return "Invalid status"
		case "value_tier":
			return "Invalid value tier"
		}
		return "Select a valid choice."
	}
	return "Invalid value."
}

// bindErrors 把 gin 绑定错误转换成字段级错误
func bindErrors(err error) *models.ValidationError {
	ve := &models.ValidationError{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			ve.Add(fe.Field(), fieldMessage(fe))
		}
		return ve
	}
	ve.Add("form", "Malformed input.")
	return ve
}

// bind 按 Content-Type 绑定（JSON / form / multipart），返回收集到的字段错误（可能为空）
func bind(c *gin.Context, dst any) *models.ValidationError {
	if err := c.ShouldBind(dst); err != nil {
		return bindErrors(err)
	}
	return &models.ValidationError{}
}

// 表单里的空下拉框会绑定成 0
func idOrNil(p *uint) *uint {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func parseDate(ve *models.ValidationError, field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		ve.Add(field, "Enter a valid date.")
		return time.Time{}, false
	}
	return t, true
}

// ---------- machines ----------

type machineForm struct {
	Type            string `form:"type" json:"type" binding:"required,oneof=treadmill elliptical bike"`
	Brand           string `form:"brand" json:"brand" binding:"required,max=100"`
	Model           string `form:"model" json:"model" binding:"required,max=100"`
	SerialNumber    string `form:"serial_number" json:"serial_number" binding:"required,max=100"`
	Condition       string `form:"condition" json:"condition" binding:"max=100"`
	Status          string `form:"status" json:"status" binding:"omitempty,oneof=available rented maintenance retired"`
	Location        string `form:"location" json:"location" binding:"max=100"`
	Notes           string `form:"notes" json:"notes"`
	ValueTier       string `form:"value_tier" json:"value_tier" binding:"omitempty,oneof=low medium high commercial"`
	SpecificationID *uint  `form:"specification" json:"specification"`
}

func (f machineForm) toModel() *models.RentalMachine {
	m := &models.RentalMachine{
		Type:            models.MachineType(f.Type),
		Brand:           strings.TrimSpace(f.Brand),
		Model:           strings.TrimSpace(f.Model),
		SerialNumber:    strings.TrimSpace(f.SerialNumber),
		Condition:       strings.TrimSpace(f.Condition),
		Status:          models.MachineStatus(f.Status),
		Location:        strings.TrimSpace(f.Location),
		Notes:           f.Notes,
		ValueTier:       models.ValueTier(f.ValueTier),
		SpecificationID: idOrNil(f.SpecificationID),
	}
	if m.Condition == "" {
		m.Condition = "Good"
	}
	if m.Status == "" {
		m.Status = models.StatusAvailable
	}
	if m.ValueTier == "" {
		m.ValueTier = models.TierLow
	}
	return m
}

// machineEditForm 编辑页：状态/位置/备注/成色/档位
type machineEditForm struct {
	Status          string `form:"status" json:"status" binding:"required,oneof=available rented maintenance retired"`
	Location        string `form:"location" json:"location" binding:"max=100"`
	Notes           string `form:"notes" json:"notes"`
	Condition       string `form:"condition" json:"condition" binding:"required,max=100"`
	ValueTier       string `form:"value_tier" json:"value_tier" binding:"required,oneof=low medium high commercial"`
	SpecificationID *uint  `form:"specification" json:"specification"`
}

func (f machineEditForm) apply(m *models.RentalMachine) {
	m.Status = models.MachineStatus(f.Status)
	m.Location = strings.TrimSpace(f.Location)
	m.Notes = f.Notes
	m.Condition = strings.TrimSpace(f.Condition)
	m.ValueTier = models.ValueTier(f.ValueTier)
	m.SpecificationID = idOrNil(f.SpecificationID)
}

type quickEditReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ---------- customers ----------

type customerForm struct {
	FirstName string `form:"first_name" json:"first_name" binding:"required,max=100"`
	LastName  string `form:"last_name" json:"last_name" binding:"required,max=100"`
	Phone     string `form:"phone" json:"phone" binding:"max=20"`
	Email     string `form:"email" json:"email" binding:"omitempty,email,max=255"`
	Address   string `form:"address" json:"address"`
	Suburb    string `form:"suburb" json:"suburb" binding:"max=100"`
	Postcode  string `form:"postcode" json:"postcode" binding:"max=10"`
	Notes     string `form:"notes" json:"notes"`
}

func (f customerForm) toModel() *models.Customer {
	return &models.Customer{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     strings.TrimSpace(f.Phone),
		Email:     strings.TrimSpace(f.Email),
		Address:   strings.TrimSpace(f.Address),
		Suburb:    strings.TrimSpace(f.Suburb),
		Postcode:  strings.TrimSpace(f.Postcode),
		Notes:     f.Notes,
	}
}

// ---------- hires ----------

// hireForm 选已有客户，或勾选 add_customer 现场新建
type hireForm struct {
	AddCustomer bool   `form:"add_customer" json:"add_customer"`
	CustomerID  *uint  `form:"customer" json:"customer"`
	FirstName   string `form:"first_name" json:"first_name" binding:"max=100"`
	LastName    string `form:"last_name" json:"last_name" binding:"max=100"`
	Phone       string `form:"phone" json:"phone" binding:"max=20"`
	Email       string `form:"email" json:"email" binding:"omitempty,email,max=255"`
	Address     string `form:"address" json:"address"`
	Suburb      string `form:"suburb" json:"suburb" binding:"max=100"`
	Postcode    string `form:"postcode" json:"postcode" binding:"max=10"`
	StartDate   string `form:"start_date" json:"start_date" binding:"required"`
	DueDate     string `form:"due_date" json:"due_date" binding:"required"`
	Notes       string `form:"notes" json:"notes"`
}

func (f hireForm) newCustomer() *models.Customer {
	return customerForm{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Phone:     f.Phone,
		Email:     f.Email,
		Address:   f.Address,
		Suburb:    f.Suburb,
		Postcode:  f.Postcode,
	}.toModel()
}

// input 在已有绑定错误基础上继续校验，返回可交给仓储的出租输入
func (f hireForm) input(ve *models.ValidationError, machineID uint) db.HireInput {
	in := db.HireInput{MachineID: machineID, Notes: f.Notes}
	if f.AddCustomer {
		if strings.TrimSpace(f.FirstName) == "" {
			ve.Add("first_name", "This field is required.")
		}
		if strings.TrimSpace(f.LastName) == "" {
			ve.Add("last_name", "This field is required.")
		}
		in.NewCustomer = f.newCustomer()
	} else if in.CustomerID = idOrNil(f.CustomerID); in.CustomerID == nil {
		ve.Add("customer", "Select an existing customer or add a new one.")
	}

	start, okStart := parseDate(ve, "start_date", f.StartDate)
	due, okDue := parseDate(ve, "due_date", f.DueDate)
	if okStart && okDue && due.Before(start) {
		ve.Add("due_date", "Due date cannot be before the start date.")
	}
	in.StartDate, in.DueDate = start, due
	return in
}

type returnForm struct {
	ReturnDate string `form:"return_date" json:"return_date"`
	Location   string `form:"location" json:"location" binding:"max=100"`
}

// ---------- jobs ----------

type jobForm struct {
	OwnerType      string `form:"owner_type" json:"owner_type" binding:"omitempty,oneof=company customer"`
	RentalMachine  *uint  `form:"rental_machine" json:"rental_machine"`
	Customer       *uint  `form:"customer" json:"customer"`
	ExternalBrand  string `form:"external_brand" json:"external_brand" binding:"max=100"`
	ExternalModel  string `form:"external_model" json:"external_model" binding:"max=100"`
	ExternalSerial string `form:"external_serial" json:"external_serial" binding:"max=100"`
	Status         string `form:"status" json:"status" binding:"omitempty,oneof=to_assess in_progress complete cancelled"`
	BookingDate    string `form:"booking_date" json:"booking_date"`
	Confirmed      bool   `form:"confirmed" json:"confirmed"`
	Notes          string `form:"notes" json:"notes"`
}

// owner 表单 → 归属变体。未选中分支的字段被清空，不会进入仓储。
func (f *jobForm) owner(ve *models.ValidationError) models.JobOwner {
	machine, cust := idOrNil(f.RentalMachine), idOrNil(f.Customer)
	kind := models.OwnerKind(f.OwnerType)
	if kind == "" {
		switch {
		case machine != nil && cust != nil:
			ve.Add("owner_type", "A job belongs to either a company machine or a customer, not both.")
			return nil
		case machine != nil:
			kind = models.OwnerCompany
		case cust != nil:
			kind = models.OwnerCustomer
		default:
			ve.Add("owner_type", "Select a company machine or a customer.")
			return nil
		}
	}

	switch kind {
	case models.OwnerCompany:
		f.Customer = nil
		f.ExternalBrand, f.ExternalModel, f.ExternalSerial = "", "", ""
		if machine == nil {
			ve.Add("rental_machine", "Select a machine for a company job.")
			return nil
		}
		return models.CompanyOwner{MachineID: *machine}
	case models.OwnerCustomer:
		f.RentalMachine = nil
		if cust == nil {
			ve.Add("customer", "Select the customer who owns the machine.")
			return nil
		}
		return models.CustomerOwned{
			CustomerID:     *cust,
			ExternalBrand:  strings.TrimSpace(f.ExternalBrand),
			ExternalModel:  strings.TrimSpace(f.ExternalModel),
			ExternalSerial: strings.TrimSpace(f.ExternalSerial),
		}
	}
	return nil
}

func (f *jobForm) toJob(ve *models.ValidationError) *models.Job {
	owner := f.owner(ve)
	booking, hasBooking := parseDate(ve, "booking_date", f.BookingDate)
	if owner == nil {
		return nil
	}
	j := models.NewJob(owner)
	if f.Status != "" {
		j.Status = models.JobStatus(f.Status)
	}
	if hasBooking {
		j.BookingDate = &booking
	}
	j.Confirmed = f.Confirmed
	j.Notes = f.Notes
	return j
}

type jobStatusForm struct {
	Status string `form:"status" json:"status" binding:"required,oneof=to_assess in_progress complete cancelled"`
}

// ---------- inventory ----------

type partForm struct {
	Name             string `form:"name" json:"name" binding:"required,max=100"`
	PartNumber       string `form:"part_number" json:"part_number" binding:"required,max=100"`
	QuantityInStock  int    `form:"quantity_in_stock" json:"quantity_in_stock" binding:"gte=0"`
	Location         string `form:"location" json:"location" binding:"max=100"`
	CompatibleModels string `form:"compatible_models" json:"compatible_models"`
}

func (f partForm) toModel() *models.Part {
	return &models.Part{
		Name:             strings.TrimSpace(f.Name),
		PartNumber:       strings.TrimSpace(f.PartNumber),
		QuantityInStock:  f.QuantityInStock,
		Location:         strings.TrimSpace(f.Location),
		CompatibleModels: f.CompatibleModels,
	}
}

type takeForm struct {
	Quantity     int    `form:"quantity" json:"quantity"`
	Job          *uint  `form:"job" json:"job"`
	RentalRecord *uint  `form:"rental_record" json:"rental_record"`
	DateUsed     string `form:"date_used" json:"date_used"`
}

// ---------- specs ----------

type specForm struct {
	Brand           string `form:"brand" json:"brand" binding:"required,max=100"`
	Model           string `form:"model" json:"model" binding:"required,max=100"`
	MotorModel      string `form:"motor_model" json:"motor_model" binding:"max=100"`
	LCBModel        string `form:"lcb_model" json:"lcb_model" binding:"max=100"`
	RunningBeltSize string `form:"running_belt_size" json:"running_belt_size" binding:"max=100"`
	BoltTypes       string `form:"bolt_types" json:"bolt_types"`
	InclineMotor    string `form:"incline_motor" json:"incline_motor" binding:"max=100"`
	SpeedSensor     string `form:"speed_sensor" json:"speed_sensor" binding:"max=100"`
	LubricantType   string `form:"lubricant_type" json:"lubricant_type" binding:"max=100"`
	VoltageRating   string `form:"voltage_rating" json:"voltage_rating" binding:"max=50"`
	CurrentRating   string `form:"current_rating" json:"current_rating" binding:"max=50"`
	Notes           string `form:"notes" json:"notes"`
	ClearImage      bool   `form:"image-clear" json:"image_clear"`
	ClearManual     bool   `form:"manual_file-clear" json:"manual_file_clear"`
}

// apply 覆盖文本字段；附件由控制器单独处理
func (f specForm) apply(s *models.MachineSpecification) {
	s.Brand = strings.TrimSpace(f.Brand)
	s.Model = strings.TrimSpace(f.Model)
	s.MotorModel = f.MotorModel
	s.LCBModel = f.LCBModel
	s.RunningBeltSize = f.RunningBeltSize
	s.BoltTypes = f.BoltTypes
	s.InclineMotor = f.InclineMotor
	s.SpeedSensor = f.SpeedSensor
	s.LubricantType = f.LubricantType
	s.VoltageRating = f.VoltageRating
	s.CurrentRating = f.CurrentRating
	s.Notes = f.Notes
}

// ---------- profile ----------

type expenseForm struct {
	Description string `form:"description" json:"description" binding:"required,max=255"`
	Amount      string `form:"amount" json:"amount" binding:"required"`
	Date        string `form:"date" json:"date"`
}

func (f expenseForm) toModel(ve *models.ValidationError, userID string, today time.Time) *models.Expense {
	e := &models.Expense{UserID: userID, Description: strings.TrimSpace(f.Description), Date: today}
	if d, ok := parseDate(ve, "date", f.Date); ok {
		e.Date = d
	}
	if strings.TrimSpace(f.Amount) != "" {
		amt, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
		switch {
		case err != nil:
			ve.Add("amount", "Enter a number.")
		case !amt.IsPositive():
			ve.Add("amount", "Amount must be greater than zero.")
		case amt.Exponent() < -2:
			ve.Add("amount", "Ensure that there are no more than 2 decimal places.")
		case amt.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
			ve.Add("amount", "Ensure that there are no more than 8 digits in total.")
		default:
			e.Amount = amt
		}
	}
	return e
}

type timesheetForm struct {
	Date        string `form:"date" json:"date" binding:"required"`
	HoursWorked string `form:"hours_worked" json:"hours_worked" binding:"required"`
}

var maxDayHours = decimal.NewFromInt(24)

func (f timesheetForm) toModel(ve *models.ValidationError, userID string) *models.Timesheet {
	t := &models.Timesheet{UserID: userID}
	if d, ok := parseDate(ve, "date", f.Date); ok {
		t.Date = d
	}
	if strings.TrimSpace(f.HoursWorked) != "" {
		h, err := decimal.NewFromString(strings.TrimSpace(f.HoursWorked))
		switch {
		case err != nil:
			ve.Add("hours_worked", "Enter a number.")
		case !h.IsPositive() || h.GreaterThan(maxDayHours):
			ve.Add("hours_worked", "Hours must be between 0 and 24.")
		case h.Exponent() < -2:
			ve.Add("hours_worked", "Ensure that there are no more than 2 decimal places.")
		default:
			t.HoursWorked = h
		}
	}
	return t
}
