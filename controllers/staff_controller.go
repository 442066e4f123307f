package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_fleet_tool/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffController 员工账号管理（仅管理员）
type StaffController struct{ *Srv }

func NewStaffController(s *Srv) *StaffController { return &StaffController{Srv: s} }

// GET /admin/staff?q=alice&page=1&size=20
func (sc *StaffController) ListStaff(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := sc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.view(c, app.H{"total": res.Total, "staff": res.Users})
}

// GET /admin/staff/:id
func (sc *StaffController) GetStaff(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil { // 校验 UUID 格式
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}
	ctx := c.Request.Context()
	user, err := sc.Repo.FindUserByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	profile, err := sc.Repo.FindProfile(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	activity, err := sc.Repo.RecentActivity(ctx, id, 20)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.view(c, app.H{"staff": user, "profile": profile, "recentActivities": activity})
}

// POST /admin/staff/:id/admin  {"isAdmin": true}
func (sc *StaffController) SetAdmin(c *gin.Context) {
	var in struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if id == currentUserID(c) && !in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot remove your own admin rights"})
		return
	}
	if err := sc.Repo.SetUserAdmin(c.Request.Context(), id, in.IsAdmin); err != nil {
		respondErr(c, err)
		return
	}
	sc.logActivity(c, "Changed admin rights of "+id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// DELETE /admin/staff/:id
func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if id == currentUserID(c) {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	ctx := c.Request.Context()
	target, err := sc.Repo.FindUserByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if sc.Cfg.IsAdminEmail(target.Username) {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete a configured admin"})
		return
	}

	if err := sc.Repo.DeleteUserByID(ctx, id); err != nil {
		respondErr(c, err)
		return
	}
	// 撤销该员工的所有登录会话
	_ = sc.AppSess.RevokeAllForUser(ctx, id)
	sc.logActivity(c, "Deleted staff account "+target.Username)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
