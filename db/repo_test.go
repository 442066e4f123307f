package db

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"Gin_postgres_redis_fleet_tool/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo 每个测试一份独立的内存库
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := Open(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewRepo(conn)
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seedMachine(t *testing.T, r *Repo, serial string) *models.RentalMachine {
	t.Helper()
	m := &models.RentalMachine{
		Type: models.TypeTreadmill, Brand: "Johnson", Model: "T5", SerialNumber: serial,
		Condition: "Good", Status: models.StatusAvailable, ValueTier: models.TierMedium,
	}
	require.NoError(t, r.CreateMachine(context.Background(), m))
	return m
}

func TestMachineRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-001")

	got, err := r.FindMachineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "SN-001", got.SerialNumber)
	assert.Equal(t, models.StatusAvailable, got.Status)

	list, err := r.ListMachines(ctx, MachineFilter{Q: "sn-0"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = r.ListMachines(ctx, MachineFilter{Status: string(models.StatusRented)})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = r.FindMachineByID(ctx, m.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateSerialConflicts(t *testing.T) {
	r := newTestRepo(t)
	seedMachine(t, r, "SN-001")
	err := r.CreateMachine(context.Background(), &models.RentalMachine{
		Type: models.TypeBike, Brand: "X", Model: "Y", SerialNumber: "SN-001",
		Status: models.StatusAvailable, ValueTier: models.TierLow,
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestQuickEditPersists(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-002")

	qe, err := models.ParseQuickEdit("status", "maintenance")
	require.NoError(t, err)
	require.NoError(t, r.ApplyQuickEdit(ctx, m.ID, qe))

	got, err := r.FindMachineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenance, got.Status)

	summary, err := r.StatusSummary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary[models.StatusMaintenance])
}

func TestHireLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-010")

	rec, err := r.CreateHire(ctx, HireInput{
		MachineID:   m.ID,
		NewCustomer: &models.Customer{FirstName: "Ana", LastName: "Lee", Suburb: "Northside"},
		StartDate:   day(2024, 3, 1),
		DueDate:     day(2024, 3, 8),
	})
	require.NoError(t, err)
	require.NotNil(t, rec.CustomerID)
	assert.Equal(t, "Ana Lee", rec.Customer.FullName())

	got, err := r.FindMachineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRented, got.Status)
	assert.Equal(t, "Northside", got.Location)

	// 同一台机器不能同时有两条未归还出租
	_, err = r.CreateHire(ctx, HireInput{
		MachineID: m.ID, CustomerID: rec.CustomerID,
		StartDate: day(2024, 3, 2), DueDate: day(2024, 3, 9),
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	overdue, err := r.ListOverdueHires(ctx, day(2024, 3, 10))
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	_, err = r.ReturnHire(ctx, m.ID, day(2024, 2, 1), "Warehouse")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "return_date")

	_, err = r.ReturnHire(ctx, m.ID, day(2024, 3, 9), "Warehouse")
	require.NoError(t, err)
	got, err = r.FindMachineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)
	assert.Equal(t, "Warehouse", got.Location)

	open, err := r.OpenHire(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, open)

	_, err = r.ReturnHire(ctx, m.ID, day(2024, 3, 9), "Warehouse")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHireMissingCustomer(t *testing.T) {
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-011")
	missing := uint(999)
	_, err := r.CreateHire(context.Background(), HireInput{
		MachineID: m.ID, CustomerID: &missing,
		StartDate: day(2024, 3, 1), DueDate: day(2024, 3, 2),
	})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "customer")

	got, err := r.FindMachineByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)
}

func TestTakePartClampsToStock(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	p := &models.Part{Name: "Belt-X", PartNumber: "BX-1", QuantityInStock: 5}
	require.NoError(t, r.CreatePart(ctx, p))

	u, err := r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 10, On: day(2024, 3, 1)})
	require.NoError(t, err)
	assert.Equal(t, 5, u.QuantityUsed)

	got, err := r.FindPartByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityInStock)

	_, err = r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNoStock)

	usages, err := r.ListPartUsages(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Len(t, usages, 1)
}

func TestTakePartRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	p := &models.Part{Name: "Motor", PartNumber: "M-1", QuantityInStock: 2}
	require.NoError(t, r.CreatePart(ctx, p))

	_, err := r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 0})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "quantity")

	job := uint(42)
	_, err = r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 1, JobID: &job})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "job")

	got, err := r.FindPartByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.QuantityInStock)

	assert.Error(t, r.CreatePart(ctx, &models.Part{Name: "Neg", PartNumber: "N-1", QuantityInStock: -1}))
}

func TestConcurrentTakesNeverOversell(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	p := &models.Part{Name: "Roller", PartNumber: "R-1", QuantityInStock: 7}
	require.NoError(t, r.CreatePart(ctx, p))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 2})
			if err != nil {
				return
			}
			mu.Lock()
			taken += u.QuantityUsed
			mu.Unlock()
		}()
	}
	wg.Wait()

	got, err := r.FindPartByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityInStock)
	assert.Equal(t, 7, taken)
}

func TestDeleteMachineCascades(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-020")
	keep := seedMachine(t, r, "SN-021")

	rec, err := r.CreateHire(ctx, HireInput{
		MachineID:   m.ID,
		NewCustomer: &models.Customer{FirstName: "Bo", LastName: "Chen"},
		StartDate:   day(2024, 1, 1), DueDate: day(2024, 1, 5),
	})
	require.NoError(t, err)
	job := models.NewJob(models.CompanyOwner{MachineID: m.ID})
	require.NoError(t, r.CreateJob(ctx, job))
	other := models.NewJob(models.CompanyOwner{MachineID: keep.ID})
	require.NoError(t, r.CreateJob(ctx, other))

	p := &models.Part{Name: "Belt", PartNumber: "B-9", QuantityInStock: 10}
	require.NoError(t, r.CreatePart(ctx, p))
	_, err = r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 1, JobID: &job.ID})
	require.NoError(t, err)
	_, err = r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 1, RentalRecordID: &rec.ID})
	require.NoError(t, err)
	_, err = r.TakePart(ctx, TakeInput{PartID: p.ID, Quantity: 1, JobID: &other.ID})
	require.NoError(t, err)

	require.NoError(t, r.DeleteMachine(ctx, m.ID))

	_, err = r.FindMachineByID(ctx, m.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = r.FindJobByID(ctx, job.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	usages, err := r.ListPartUsages(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, other.ID, *usages[0].JobID)

	var hires int64
	require.NoError(t, r.DB.Model(&models.RentalRecord{}).Count(&hires).Error)
	assert.Zero(t, hires)
}

func TestJobOwnerChecks(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	m := seedMachine(t, r, "SN-030")

	err := r.CreateJob(ctx, models.NewJob(models.CompanyOwner{MachineID: m.ID + 50}))
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "rental_machine")

	cid := uint(1)
	both := &models.Job{OwnerKind: models.OwnerCompany, RentalMachineID: &m.ID, CustomerID: &cid, Status: models.JobToAssess}
	require.ErrorAs(t, r.CreateJob(ctx, both), &ve)
	assert.Contains(t, ve.Fields, "owner_type")

	// 绕过仓库直接写库，CHECK 兜底
	assert.Error(t, r.DB.Create(both).Error)
}

func TestJobStatusCompletion(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	c := &models.Customer{FirstName: "Cy", LastName: "Ng"}
	require.NoError(t, r.CreateCustomer(ctx, c))
	j := models.NewJob(models.CustomerOwned{CustomerID: c.ID, ExternalBrand: "Life Fitness"})
	require.NoError(t, r.CreateJob(ctx, j))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateJobStatus(ctx, j.ID, models.JobComplete, now))
	got, err := r.FindJobByID(ctx, j.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateCompleted)

	require.NoError(t, r.UpdateJobStatus(ctx, j.ID, models.JobInProgress, now))
	got, err = r.FindJobByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DateCompleted)
	assert.Equal(t, models.OwnerCustomer, got.OwnerKind)
}

func TestDeleteSpecNullsReferences(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	s := &models.MachineSpecification{Brand: "Johnson", Model: "T5", Image: "spec_images/a.png"}
	require.NoError(t, r.CreateSpec(ctx, s))
	assert.ErrorIs(t, r.CreateSpec(ctx, &models.MachineSpecification{Brand: "Johnson", Model: "T5"}), models.ErrConflict)

	m := seedMachine(t, r, "SN-040")
	m.SpecificationID = &s.ID
	require.NoError(t, r.UpdateMachineDetails(ctx, m))
	using, err := r.MachinesUsingSpec(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, using, 1)

	deleted, err := r.DeleteSpec(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "spec_images/a.png", deleted.Image)

	got, err := r.FindMachineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SpecificationID)

	_, err = r.DeleteSpec(ctx, s.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStaffUserAndTimesheets(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := &models.User{ID: uuid.NewString(), Username: "Tech@Example.com", DisplayName: "Tech"}
	require.NoError(t, r.CreateStaffUser(ctx, u, "Technician"))
	assert.Equal(t, "tech@example.com", u.Username)

	prof, err := r.FindProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, "Technician", prof.Position)

	require.NoError(t, r.LogActivity(ctx, u.ID, "Took 2 x Belt"))
	acts, err := r.RecentActivity(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)

	require.NoError(t, r.AddTimesheet(ctx, &models.Timesheet{UserID: u.ID, Date: day(2024, 4, 2), HoursWorked: decimal.RequireFromString("7.5")}))
	require.NoError(t, r.AddTimesheet(ctx, &models.Timesheet{UserID: u.ID, Date: day(2024, 4, 3), HoursWorked: decimal.NewFromInt(8)}))
	ts, err := r.ListTimesheets(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, day(2024, 4, 3).Format("2006-01-02"), ts[0].Date.Format("2006-01-02"))
	assert.True(t, ts[1].HoursWorked.Equal(decimal.RequireFromString("7.5")))

	n, err := r.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, r.SetUserAdmin(ctx, u.ID, true))
	n, err = r.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	seedMachine(t, r, "SN-001")
	seedMachine(t, r, "AB-100")
	seedMachine(t, r, "SN_002")

	cases := []struct {
		q    string
		want []string
	}{
		{"_", []string{"SN_002"}},
		{"%", nil},
		{"S_-", nil},
		{`\`, nil},
		{"n_0", []string{"SN_002"}},
	}
	for _, tc := range cases {
		list, err := r.ListMachines(ctx, MachineFilter{Q: tc.q})
		require.NoError(t, err, tc.q)
		var got []string
		for _, m := range list {
			got = append(got, m.SerialNumber)
		}
		assert.Equal(t, tc.want, got, "q=%q", tc.q)
	}

	require.NoError(t, r.CreatePart(ctx, &models.Part{Name: "Belt 100%", PartNumber: "BLT-1", QuantityInStock: 1}))
	require.NoError(t, r.CreatePart(ctx, &models.Part{Name: "Belt 1000", PartNumber: "BLT-2", QuantityInStock: 1}))
	parts, err := r.ListParts(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "BLT-1", parts[0].PartNumber)
}

func TestLogActivityTruncatesOnRuneBoundary(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := &models.User{ID: uuid.NewString(), Username: "tech@example.com", DisplayName: "Tech"}
	require.NoError(t, r.CreateStaffUser(ctx, u, "Technician"))

	require.NoError(t, r.LogActivity(ctx, u.ID, strings.Repeat("é", 300)))
	acts, err := r.RecentActivity(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.True(t, utf8.ValidString(acts[0].Action))
	assert.Equal(t, 255, utf8.RuneCountInString(acts[0].Action))
}
