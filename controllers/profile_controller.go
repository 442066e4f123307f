// controllers/profile_controller.go
package controllers

import (
	"fmt"

	"Gin_postgres_redis_fleet_tool/app"

	"github.com/gin-gonic/gin"
)

const (
	recentActivityLimit = 10
	profileListLimit    = 50
)

// ProfileController 当前员工：资料、操作记录、工时、报销
type ProfileController struct{ *Srv }

func NewProfileController(s *Srv) *ProfileController { return &ProfileController{Srv: s} }

// GET /profile
func (pc *ProfileController) Show(c *gin.Context) {
	pc.render(c, expenseForm{Date: pc.today().Format(dateLayout)})
}

func (pc *ProfileController) render(c *gin.Context, form expenseForm) {
	ctx := c.Request.Context()
	uid := currentUserID(c)
	profile, err := pc.Repo.FindProfile(ctx, uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	activity, err := pc.Repo.RecentActivity(ctx, uid, recentActivityLimit)
	if err != nil {
		respondErr(c, err)
		return
	}
	timesheets, err := pc.Repo.ListTimesheets(ctx, uid, profileListLimit)
	if err != nil {
		respondErr(c, err)
		return
	}
	expenses, err := pc.Repo.ListExpenses(ctx, uid, profileListLimit)
	if err != nil {
		respondErr(c, err)
		return
	}
	pc.view(c, app.H{
		"profile":        profile,
		"recentActivity": activity,
		"timesheets":     timesheets,
		"expenses":       expenses,
		"expenseForm":    form,
	})
}

// POST /profile  提交报销
func (pc *ProfileController) AddExpense(c *gin.Context) {
	var f expenseForm
	ve := bind(c, &f)
	e := f.toModel(ve, currentUserID(c), pc.today())
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if err := pc.Repo.AddExpense(c.Request.Context(), e); err != nil {
		respondErr(c, err)
		return
	}
	pc.logActivity(c, fmt.Sprintf("Submitted expense %s (%s)", e.Amount.StringFixed(2), e.Description))
	pc.done(c, "Expense submitted.", "/profile")
}

// POST /profile/timesheet
func (pc *ProfileController) AddTimesheet(c *gin.Context) {
	var f timesheetForm
	ve := bind(c, &f)
	t := f.toModel(ve, currentUserID(c))
	if ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	if err := pc.Repo.AddTimesheet(c.Request.Context(), t); err != nil {
		respondErr(c, err)
		return
	}
	pc.logActivity(c, fmt.Sprintf("Logged %s hours for %s", t.HoursWorked.StringFixed(2), t.Date.Format(dateLayout)))
	pc.done(c, "Timesheet saved.", "/profile")
}
