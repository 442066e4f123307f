package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// location / condition 列宽
const maxQuickTextLen = 100

// QuickEditField 允许快速修改的字段（白名单）
type QuickEditField string

const (
	QuickStatus    QuickEditField = "status"
	QuickValueTier QuickEditField = "value_tier"
	QuickLocation  QuickEditField = "location"
	QuickCondition QuickEditField = "condition"
	QuickNotes     QuickEditField = "notes"
)

// QuickEdit is a validated single-column update on a RentalMachine.
type QuickEdit struct {
	Field QuickEditField
	Value string
}

// Column 对应的数据库列名
func (q QuickEdit) Column() string {
	switch q.Field {
	case QuickStatus:
		return "status"
	case QuickValueTier:
		return "value_tier"
	case QuickLocation:
		return "location"
	case QuickCondition:
		return "condition"
	case QuickNotes:
		return "notes"
	}
	return ""
}

// ParseQuickEdit turns a raw {field, value} pair into a command, rejecting
// unknown fields, out-of-enum status/tier values and over-long text.
func ParseQuickEdit(field, value string) (QuickEdit, error) {
	f := QuickEditField(strings.TrimSpace(field))
	switch f {
	case QuickStatus:
		if !MachineStatus(value).Valid() {
			return QuickEdit{}, Invalid("value", "Invalid status")
		}
	case QuickValueTier:
		if !ValueTier(value).Valid() {
			return QuickEdit{}, Invalid("value", "Invalid value tier")
		}
	case QuickCondition:
		value = strings.TrimSpace(value)
		if value == "" {
			return QuickEdit{}, Invalid("value", "Condition cannot be empty")
		}
		if utf8.RuneCountInString(value) > maxQuickTextLen {
			return QuickEdit{}, Invalid("value", fmt.Sprintf("Ensure this value has at most %d characters", maxQuickTextLen))
		}
	case QuickLocation:
		if utf8.RuneCountInString(value) > maxQuickTextLen {
			return QuickEdit{}, Invalid("value", fmt.Sprintf("Ensure this value has at most %d characters", maxQuickTextLen))
		}
	case QuickNotes:
	default:
		return QuickEdit{}, Invalid("field", "Invalid field")
	}
	return QuickEdit{Field: f, Value: value}, nil
}

// Apply sets the field on m, mirroring what the store writes.
func (q QuickEdit) Apply(m *RentalMachine) {
	switch q.Field {
	case QuickStatus:
		m.Status = MachineStatus(q.Value)
	case QuickValueTier:
		m.ValueTier = ValueTier(q.Value)
	case QuickLocation:
		m.Location = q.Value
	case QuickCondition:
		m.Condition = q.Value
	case QuickNotes:
		m.Notes = q.Value
	}
}
