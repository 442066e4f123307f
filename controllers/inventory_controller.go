package controllers

import (
	"errors"
	"fmt"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
)

// InventoryController 零件库存与领用
type InventoryController struct{ *Srv }

func NewInventoryController(s *Srv) *InventoryController { return &InventoryController{Srv: s} }

// GET /inventory?q=
func (ic *InventoryController) List(c *gin.Context) {
	q := c.Query("q")
	parts, err := ic.Repo.ListParts(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	ic.view(c, app.H{"parts": parts, "q": q})
}

// POST /inventory/add（管理员）
func (ic *InventoryController) Add(c *gin.Context) {
	var f partForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	p := f.toModel()
	if err := ic.Repo.CreatePart(c.Request.Context(), p); err != nil {
		if errors.Is(err, models.ErrConflict) {
			invalid(c, models.Invalid("part_number", "A part with this part number already exists."), f)
			return
		}
		invalid(c, err, f)
		return
	}
	ic.logActivity(c, fmt.Sprintf("Added part %s (%s)", p.Name, p.PartNumber))
	ic.done(c, "Part added.", "/inventory")
}

// GET /inventory/part/:id/qr  扫码直达领用页
func (ic *InventoryController) QR(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := ic.Repo.FindPartByID(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	ic.serveQR(c, "inventory/part", id, "/take")
}

// GET /inventory/part/:id/take
func (ic *InventoryController) TakeForm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := ic.Repo.FindPartByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	usages, err := ic.Repo.ListPartUsages(ctx, id, 20)
	if err != nil {
		respondErr(c, err)
		return
	}
	openJobs, err := ic.Repo.ListJobs(ctx, db.JobFilter{Status: string(models.JobInProgress)})
	if err != nil {
		respondErr(c, err)
		return
	}
	ic.view(c, app.H{"part": p, "recentUsage": usages, "jobs": openJobs})
}

// POST /inventory/part/:id/take
// 申请数量超过库存时按库存截断；库存为 0 直接拒绝
func (ic *InventoryController) Take(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var f takeForm
	ve := bind(c, &f)
	on, has := parseDate(ve, "date_used", f.DateUsed)
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if !has {
		on = ic.today()
	}

	u, err := ic.Repo.TakePart(c.Request.Context(), db.TakeInput{
		PartID:         id,
		Quantity:       f.Quantity,
		JobID:          idOrNil(f.Job),
		RentalRecordID: idOrNil(f.RentalRecord),
		TakenBy:        currentUserID(c),
		On:             on,
	})
	if err != nil {
		invalid(c, err, f)
		return
	}

	msg := fmt.Sprintf("Took %d from stock.", u.QuantityUsed)
	if u.QuantityUsed < f.Quantity {
		msg = fmt.Sprintf("Only %d in stock; took %d.", u.QuantityUsed, u.QuantityUsed)
	}
	ic.logActivity(c, fmt.Sprintf("Took %d x part #%d", u.QuantityUsed, id))
	ic.done(c, msg, "/inventory")
}

// POST /inventory/part/:id/delete（管理员）
func (ic *InventoryController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ic.Repo.DeletePart(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	ic.logActivity(c, fmt.Sprintf("Deleted part #%d", id))
	ic.done(c, "Part deleted.", "/inventory")
}
