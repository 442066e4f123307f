package controllers

import (
	"fmt"
	"strconv"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
)

// JobController 维修/检测工单
type JobController struct{ *Srv }

func NewJobController(s *Srv) *JobController { return &JobController{Srv: s} }

// GET /jobs?status=
func (jc *JobController) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.JobStatus(status).Valid() {
		invalid(c, models.Invalid("status", "Invalid status"), app.H{"status": status})
		return
	}
	jobs, err := jc.Repo.ListJobs(c.Request.Context(), db.JobFilter{Status: status})
	if err != nil {
		respondErr(c, err)
		return
	}
	jc.view(c, app.H{"jobs": jobs, "statusFilter": status, "statuses": models.JobStatuses})
}

// GET /jobs/:id
func (jc *JobController) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := jc.Repo.JobDetail(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	jc.view(c, app.H{"job": d.Job, "partsUsed": d.Usages, "statuses": models.JobStatuses})
}

// GET /jobs/:id/qr
func (jc *JobController) QR(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := jc.Repo.FindJobByID(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	jc.serveQR(c, "jobs", id, "")
}

// GET /jobs/new?machine=
func (jc *JobController) NewForm(c *gin.Context) {
	ctx := c.Request.Context()
	machines, err := jc.Repo.ListMachines(ctx, db.MachineFilter{})
	if err != nil {
		respondErr(c, err)
		return
	}
	customers, err := jc.Repo.SearchCustomers(ctx, "", 200)
	if err != nil {
		respondErr(c, err)
		return
	}
	f := jobForm{Status: string(models.JobToAssess)}
	if n, err := strconv.ParseUint(c.Query("machine"), 10, 64); err == nil && n > 0 {
		mid := uint(n)
		f.OwnerType, f.RentalMachine = string(models.OwnerCompany), &mid
	}
	jc.view(c, app.H{
		"form":       f,
		"machines":   machines,
		"customers":  customers,
		"statuses":   models.JobStatuses,
		"ownerTypes": []models.OwnerKind{models.OwnerCompany, models.OwnerCustomer},
	})
}

// POST /jobs/new
func (jc *JobController) Create(c *gin.Context) {
	var f jobForm
	ve := bind(c, &f)
	j := f.toJob(ve)
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if err := jc.Repo.CreateJob(c.Request.Context(), j); err != nil {
		invalid(c, err, f)
		return
	}
	jc.logActivity(c, fmt.Sprintf("Created service job #%d", j.ID))
	jc.done(c, fmt.Sprintf("Job #%d created.", j.ID), fmt.Sprintf("/jobs/%d", j.ID))
}

// POST /jobs/:id/status
func (jc *JobController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var f jobStatusForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if err := jc.Repo.UpdateJobStatus(c.Request.Context(), id, models.JobStatus(f.Status), jc.Now()); err != nil {
		invalid(c, err, f)
		return
	}
	jc.logActivity(c, fmt.Sprintf("Job #%d status -> %s", id, f.Status))
	jc.done(c, "Job updated.", fmt.Sprintf("/jobs/%d", id))
}
