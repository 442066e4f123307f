package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuickEdit(t *testing.T) {
	cases := []struct {
		name, field, value string
		wantErr            string
	}{
		{"status ok", "status", "maintenance", ""},
		{"status archived", "status", "archived", "Invalid status"},
		{"tier ok", "value_tier", "commercial", ""},
		{"tier bad", "value_tier", "gold", "Invalid value tier"},
		{"location empty allowed", "location", "", ""},
		{"condition blank", "condition", "  ", "Condition cannot be empty"},
		{"unknown field", "serial_number", "X", "Invalid field"},
		{"location at limit", "location", strings.Repeat("a", 100), ""},
		{"location too long", "location", strings.Repeat("a", 101), "at most 100 characters"},
		{"condition too long", "condition", strings.Repeat("b", 101), "at most 100 characters"},
		{"multibyte location at limit", "location", strings.Repeat("é", 100), ""},
		{"notes unbounded", "notes", strings.Repeat("n", 5000), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qe, err := ParseQuickEdit(tc.field, tc.value)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, QuickEditField(tc.field), qe.Field)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Error(), tc.wantErr)
		})
	}
}

func TestQuickEditApply(t *testing.T) {
	m := &RentalMachine{Status: StatusAvailable, ValueTier: TierLow}
	qe, err := ParseQuickEdit("status", "rented")
	require.NoError(t, err)
	qe.Apply(m)
	assert.Equal(t, StatusRented, m.Status)
	assert.Equal(t, "status", qe.Column())
}

func TestJobOwnerVariants(t *testing.T) {
	j := NewJob(CompanyOwner{MachineID: 7})
	assert.Equal(t, OwnerCompany, j.OwnerKind)
	require.NotNil(t, j.RentalMachineID)
	assert.Nil(t, j.CustomerID)
	assert.Equal(t, CompanyOwner{MachineID: 7}, j.Owner())

	// 切换归属时清空另一边
	j.ExternalBrand = "leftover"
	j.SetOwner(CustomerOwned{CustomerID: 3, ExternalModel: "T5"})
	assert.Equal(t, OwnerCustomer, j.OwnerKind)
	assert.Nil(t, j.RentalMachineID)
	assert.Equal(t, "", j.ExternalBrand)
	assert.Equal(t, CustomerOwned{CustomerID: 3, ExternalModel: "T5"}, j.Owner())
	assert.Equal(t, JobToAssess, j.Status)
}

func TestJobOwnerInconsistentColumns(t *testing.T) {
	m, c := uint(1), uint(2)
	j := Job{OwnerKind: OwnerCompany, RentalMachineID: &m, CustomerID: &c}
	assert.Nil(t, j.Owner())
	assert.Nil(t, Job{OwnerKind: OwnerCustomer}.Owner())
}

func TestOnHireLocation(t *testing.T) {
	assert.Equal(t, "Northside", Customer{Suburb: "Northside", Address: "1 Main St"}.OnHireLocation())
	assert.Equal(t, "1 Main St", Customer{Address: " 1 Main St "}.OnHireLocation())
	assert.Equal(t, OnHirePlaceholder, Customer{}.OnHireLocation())
}

func TestRentalOverdue(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	r := RentalRecord{DueDate: due}
	assert.False(t, r.Overdue(due.Add(23*time.Hour)))
	assert.True(t, r.Overdue(due.AddDate(0, 0, 1)))

	ret := due
	r.ReturnDate = &ret
	assert.False(t, r.Overdue(due.AddDate(0, 0, 5)))
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.OrNil())
	ve.Add("b", "first")
	ve.Add("b", "second")
	ve.Add("a", "x")
	assert.Equal(t, "first", ve.Fields["b"])
	assert.Equal(t, "validation failed: a: x; b: first", ve.Error())
	var nilVE *ValidationError
	assert.NoError(t, nilVE.OrNil())
}
