package routes

import (
	"net/http"
	"time"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.NewSrv(a)
	RegisterWith(r, a, s)
}

// RegisterWith 使用给定的 Srv（测试里可替换 Now）
func RegisterWith(r *gin.Engine, a *app.App, s *controllers.Srv) {
	rental := controllers.NewRentalController(s)
	customers := controllers.NewCustomerController(s)
	jobs := controllers.NewJobController(s)
	inventory := controllers.NewInventoryController(s)
	specs := controllers.NewSpecController(s)
	profile := controllers.NewProfileController(s)
	staff := controllers.NewStaffController(s)
	inviteCtl := controllers.NewInviteController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a, 5*time.Minute)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}

	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.WhoAmI)
		waAuth.POST("/logout", s.Logout)
	}

	// 已登录员工添加新凭据（绑定手机等）
	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// ------------------------------
	// 邀请 + 员工管理（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)

		admin.GET("/staff", staff.ListStaff) // ?q=&page=&size=
		admin.GET("/staff/:id", staff.GetStaff)
		admin.POST("/staff/:id/admin", staff.SetAdmin)
		admin.DELETE("/staff/:id", staff.DeleteStaff)
	}

	// ------------------------------
	// 员工页面（需登录）
	// ------------------------------
	in := r.Group("", authMW, seenMW)
	only := in.Group("", adminMW)

	// 车队 + 出租
	in.GET("/dashboard", rental.Dashboard)
	in.GET("/rental/:id", rental.Detail)
	in.GET("/rental/:id/edit", rental.EditForm)
	in.POST("/rental/:id/edit", rental.Edit)
	in.POST("/rental/:id/quickedit", rental.QuickEdit)
	in.GET("/rental/:id/qr", rental.QR)
	in.GET("/rental/:id/newhire", rental.NewHireForm)
	in.POST("/rental/:id/newhire", rental.NewHire)
	in.POST("/rental/:id/return", rental.Return)
	only.POST("/rental/add", rental.Add)
	only.POST("/rental/:id/delete", rental.Delete)

	// 客户
	in.GET("/customers", customers.List) // ?q=
	in.GET("/customers/add", customers.AddForm)
	in.POST("/customers/add", customers.Add)

	// 维修工单
	in.GET("/jobs", jobs.List) // ?status=
	in.GET("/jobs/new", jobs.NewForm)
	in.POST("/jobs/new", jobs.Create)
	in.GET("/jobs/:id", jobs.Detail)
	in.GET("/jobs/:id/qr", jobs.QR)
	in.POST("/jobs/:id/status", jobs.UpdateStatus)

	// 配件库存
	in.GET("/inventory", inventory.List) // ?q=
	in.GET("/inventory/part/:id/qr", inventory.QR)
	in.GET("/inventory/part/:id/take", inventory.TakeForm)
	in.POST("/inventory/part/:id/take", inventory.Take)
	only.POST("/inventory/add", inventory.Add)
	only.POST("/inventory/part/:id/delete", inventory.Delete)

	// 机型参数 + 附件
	in.GET("/specs", specs.Search) // ?q=
	in.POST("/specs", specs.Create)
	in.GET("/spec/:id", specs.Detail)
	in.GET("/spec/:id/edit", specs.EditForm)
	in.POST("/spec/:id/edit", specs.Edit)
	only.POST("/spec/:id/delete", specs.Delete)
	in.GET("/media/*path", specs.Media)

	// 个人页
	in.GET("/profile", profile.Show)
	in.POST("/profile", profile.AddExpense)
	in.POST("/profile/timesheet", profile.AddTimesheet)
}
