package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/config"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
)

type InviteController struct{ *Srv }

func NewInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

// POST /admin/invites
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Position string `json:"position" binding:"required,max=100"`
		IsAdmin  bool   `json:"isAdmin"`
		Expires  int    `json:"expiresDays"` // 默认 1 天
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		invalid(c, bindErrors(err), in)
		return
	}
	if in.Expires <= 0 {
		in.Expires = 1
	}

	token, err := app.NewInviteToken()
	if err != nil {
		respondErr(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	inv := &models.Invite{
		Email:     in.Email,
		Token:     token,
		Position:  strings.TrimSpace(in.Position),
		IsAdmin:   in.IsAdmin,
		ExpiresAt: ic.Now().AddDate(0, 0, in.Expires),
		CreatedBy: c.GetString(app.CtxUsername),
	}
	if err := ic.Repo.CreateInvite(ctx, inv); err != nil {
		respondErr(c, err)
		return
	}

	link := ic.Cfg.InviteLink(token)
	// 未配置 SMTP 时只打印链接
	if err := sendInviteMail(loadSMTP(), inv, link, in.Expires); err != nil {
		app.Logger().Warn("invite email send failed", slog.String("to", inv.Email), slog.Any("err", err))
	}
	ic.logActivity(c, fmt.Sprintf("Invited %s as %s", inv.Email, inv.Position))

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"link":   link, // 方便开发环境直接点
		"invite": inv,
	})
}

// -------------------- 邮件发送 --------------------

type smtpConf struct {
	Host     string // SMTP_HOST
	Port     string // SMTP_PORT
	Username string // SMTP_USERNAME
	Password string // SMTP_PASSWORD
	From     string // SMTP_FROM，为空时回退 Username
	AppName  string // APP_NAME
}

func loadSMTP() smtpConf {
	return smtpConf{
		Host:     config.Get("SMTP_HOST", ""),
		Port:     config.Get("SMTP_PORT", "587"),
		Username: config.Get("SMTP_USERNAME", ""),
		Password: config.Get("SMTP_PASSWORD", ""),
		From:     config.Get("SMTP_FROM", ""),
		AppName:  config.Get("APP_NAME", "Fleet Staff"),
	}
}

func sendInviteMail(conf smtpConf, inv *models.Invite, link string, expiresDays int) error {
	if conf.Host == "" || (conf.Username == "" && conf.From == "") {
		app.Logger().Info("invite link (smtp not configured)",
			slog.String("email", inv.Email),
			slog.String("link", link),
			slog.Int("expiresDays", expiresDays),
		)
		return nil
	}

	fromAddr := conf.From
	if fromAddr == "" {
		fromAddr = conf.Username
	}
	subject := fmt.Sprintf("%s staff invitation", conf.AppName)
	msg := buildInviteMIME(conf.AppName, fromAddr, inv.Email, subject, inviteHTML(conf.AppName, inv.Position, link, expiresDays))

	auth := smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	return smtp.SendMail(conf.Host+":"+conf.Port, auth, fromAddr, []string{inv.Email}, []byte(msg))
}

func inviteHTML(appName, position, link string, expiresDays int) string {
	return fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>You have been invited to join <b>%s</b> as <b>%s</b>. Open the link below to create your passkey and sign in:</p>
  <p><a href="%s">%s</a></p>
  <p>This invitation expires in %d day(s).</p>
</div>
`, appName, position, link, link, expiresDays)
}

func buildInviteMIME(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
