// controllers/rental_controller.go
package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
)

// 归还时未填写位置的默认值
const defaultReturnLocation = "Warehouse"

// RentalController 车队机器 + 出租
type RentalController struct{ *Srv }

func NewRentalController(s *Srv) *RentalController { return &RentalController{Srv: s} }

func machineChoices() app.H {
	return app.H{
		"types":    []models.MachineType{models.TypeTreadmill, models.TypeElliptical, models.TypeBike},
		"statuses": models.MachineStatuses,
		"tiers":    models.ValueTiers,
	}
}

// GET /dashboard?q=&status=&tier=
func (rc *RentalController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	f := db.MachineFilter{
		Q:      strings.TrimSpace(c.Query("q")),
		Status: c.Query("status"),
		Tier:   c.Query("tier"),
	}
	machines, err := rc.Repo.ListMachines(ctx, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	// 汇总不受筛选影响
	summary, err := rc.Repo.StatusSummary(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	overdue, err := rc.Repo.ListOverdueHires(ctx, rc.today())
	if err != nil {
		respondErr(c, err)
		return
	}
	rc.view(c, app.H{
		"machines":      machines,
		"q":             f.Q,
		"statusFilter":  f.Status,
		"tierFilter":    f.Tier,
		"statusSummary": summary,
		"overdueHires":  overdue,
		"choices":       machineChoices(),
	})
}

// GET /rental/:id
func (rc *RentalController) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m, err := rc.Repo.FindMachineByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	hist, err := rc.Repo.MachineHistory(ctx, m)
	if err != nil {
		respondErr(c, err)
		return
	}
	open, err := rc.Repo.OpenHire(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	rc.view(c, app.H{
		"machine":        m,
		"currentHire":    open,
		"rentalHistory":  hist.Hires,
		"serviceHistory": hist.Jobs,
	})
}

// POST /rental/add（管理员）
func (rc *RentalController) Add(c *gin.Context) {
	var f machineForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	m := f.toModel()
	if err := rc.Repo.CreateMachine(c.Request.Context(), m); err != nil {
		if errors.Is(err, models.ErrConflict) {
			invalid(c, models.Invalid("serial_number", "A machine with this serial number already exists."), f)
			return
		}
		respondErr(c, err)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Added machine %s", m.SerialNumber))
	rc.done(c, "Machine added.", fmt.Sprintf("/rental/%d", m.ID))
}

// GET /rental/:id/edit
func (rc *RentalController) EditForm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := rc.Repo.FindMachineByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	rc.view(c, app.H{"machine": m, "choices": machineChoices()})
}

// POST /rental/:id/edit
func (rc *RentalController) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m, err := rc.Repo.FindMachineByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	var f machineEditForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	f.apply(m)
	if err := rc.Repo.UpdateMachineDetails(ctx, m); err != nil {
		respondErr(c, err)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Edited machine %s", m.SerialNumber))
	rc.done(c, "Machine updated.", fmt.Sprintf("/rental/%d", id))
}

// POST /rental/:id/quickedit  {"field": "status", "value": "maintenance"}
// 所有响应都是 {"success": bool, ...}，前端只看 success
func (rc *RentalController) QuickEdit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		quickEditFail(c, models.ErrNotFound)
		return
	}
	var req quickEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"success": false, "error": "Invalid request"})
		return
	}
	qe, err := models.ParseQuickEdit(req.Field, req.Value)
	if err != nil {
		quickEditFail(c, err)
		return
	}
	if err := rc.Repo.ApplyQuickEdit(c.Request.Context(), uint(id), qe); err != nil {
		quickEditFail(c, err)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Quick edit machine #%d: %s = %q", id, qe.Field, qe.Value))
	c.JSON(http.StatusOK, app.H{"success": true, "field": qe.Field, "value": qe.Value})
}

func quickEditFail(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := ve.Error()
		for _, m := range ve.Fields {
			msg = m
		}
		c.JSON(http.StatusUnprocessableEntity, app.H{"success": false, "error": msg})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"success": false, "error": "not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"success": false, "error": "changed concurrently"})
	default:
		_ = c.Error(err)
		app.Logger().Error("quick edit failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, app.H{"success": false, "error": "internal error"})
	}
}

// POST /rental/:id/delete（管理员）
func (rc *RentalController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := rc.Repo.DeleteMachine(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Deleted machine #%d", id))
	rc.done(c, "Machine deleted.", "/dashboard")
}

// GET /rental/:id/qr
func (rc *RentalController) QR(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := rc.Repo.FindMachineByID(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	rc.serveQR(c, "rental", id, "")
}

// GET /rental/:id/newhire
func (rc *RentalController) NewHireForm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m, err := rc.Repo.FindMachineByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	customers, err := rc.Repo.SearchCustomers(ctx, c.Query("q"), 200)
	if err != nil {
		respondErr(c, err)
		return
	}
	rc.view(c, app.H{"machine": m, "customers": customers})
}

// POST /rental/:id/newhire
func (rc *RentalController) NewHire(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var f hireForm
	ve := bind(c, &f)
	in := f.input(ve, id)
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}

	rec, err := rc.Repo.CreateHire(c.Request.Context(), in)
	switch {
	case errors.Is(err, models.ErrConflict):
		invalid(c, models.Invalid("machine", "This machine is already on hire."), f)
		return
	case err != nil:
		invalid(c, err, f)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Hired machine #%d to %s", id, rec.Customer.FullName()))
	rc.done(c, "Hire created.", fmt.Sprintf("/rental/%d", id))
}

// POST /rental/:id/return
func (rc *RentalController) Return(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var f returnForm
	ve := bind(c, &f)
	on, has := parseDate(ve, "return_date", f.ReturnDate)
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if !has {
		on = rc.today()
	}
	loc := strings.TrimSpace(f.Location)
	if loc == "" {
		loc = defaultReturnLocation
	}

	if _, err := rc.Repo.ReturnHire(c.Request.Context(), id, on, loc); err != nil {
		invalid(c, err, f)
		return
	}
	rc.logActivity(c, fmt.Sprintf("Returned machine #%d", id))
	rc.done(c, "Machine returned.", fmt.Sprintf("/rental/%d", id))
}
