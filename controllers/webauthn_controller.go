// controllers/webauthn_controller.go
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// WebAuthn: 员工账号 -> webauthn.User
type waUser struct {
	user  models.User
	creds []webauthn.Credential
}

func (u *waUser) WebAuthnID() []byte                         { id, _ := uuid.Parse(u.user.ID); return id[:] }
func (u *waUser) WebAuthnName() string                       { return u.user.Username }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWaCred(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Authenticator: webauthn.Authenticator{
			AAGUID:       c.AAGUID,
			SignCount:    c.SignCount,
			CloneWarning: c.CloneWarning,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
	}
}

func fromWaCred(userID string, cred *webauthn.Credential) *models.Credential {
	return &models.Credential{
		UserID:          userID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		CloneWarning:    cred.Authenticator.CloneWarning,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}
}

func (s *Srv) waUserFor(ctx context.Context, u *models.User) (*waUser, error) {
	cs, err := s.Repo.LoadUserCredentials(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}, nil
}

func (s *Srv) loadWAUserByID(ctx context.Context, id string) (*waUser, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.waUserFor(ctx, u)
}

func (s *Srv) loadWAUserByUsername(ctx context.Context, username string) (*waUser, error) {
	u, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.waUserFor(ctx, u)
}

func registrationOptions() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

func (s *Srv) WhoAmI(c *app.Ctx) {
	ctx := c.Request.Context()
	u, err := s.Repo.FindUserByID(ctx, currentUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	profile, _ := s.Repo.FindProfile(ctx, u.ID)
	c.JSON(http.StatusOK, app.H{
		"userID":      u.ID,
		"username":    u.Username,
		"displayName": u.DisplayName,
		"isAdmin":     c.GetBool(app.CtxIsAdmin),
		"profile":     profile,
	})
}

// ===== 注册（邀请制） =====

func (s *Srv) BeginRegistration(c *gin.Context) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	inv, err := s.Repo.GetUsableInvite(ctx, in.InviteToken, s.Now())
	if err != nil {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}

	// 用户名强制 = 邀请邮箱；员工档案职位来自邀请
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = inv.Email
	}
	u := &models.User{ID: app.NewUserID(), Username: inv.Email, DisplayName: display}
	if err := s.Repo.CreateStaffUser(ctx, u, inv.Position); err != nil {
		respondErr(c, err)
		return
	}

	wUser, err := s.waUserFor(ctx, u)
	if err != nil {
		respondErr(c, err)
		return
	}
	opts, sd, err := s.App.WA.BeginRegistration(wUser, registrationOptions()...)
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := s.Ceremonies.SaveRegistration(ctx, in.InviteToken, sd); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishRegistration(c *gin.Context) {
	token := c.Query("inviteToken")
	if token == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing inviteToken"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	inv, err := s.Repo.GetUsableInvite(ctx, token, s.Now())
	if err != nil {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}
	wUser, err := s.loadWAUserByUsername(ctx, inv.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	sd, err := s.Ceremonies.TakeRegistration(ctx, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.App.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		respondErr(c, err)
		return
	}
	if err := s.Repo.MarkInviteUsed(ctx, token); err != nil {
		respondErr(c, err)
		return
	}
	if inv.IsAdmin {
		if err := s.Repo.SetUserAdmin(ctx, wUser.user.ID, true); err != nil {
			respondErr(c, err)
			return
		}
	}

	// 注册即登录
	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	_ = s.Repo.LogActivity(ctx, wUser.user.ID, "Registered passkey")
	c.JSON(http.StatusOK, app.H{"ok": true, "username": wUser.user.Username, "redirect": "/dashboard"})
}

// ===== 添加新凭据（已登录） =====

func (s *Srv) BeginAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	opts, sd, err := s.App.WA.BeginRegistration(wUser, registrationOptions()...)
	if err != nil {
		respondErr(c, err)
		return
	}
	// 已登录场景按会话 id 存 challenge
	if err := s.Ceremonies.SaveRegistration(ctx, c.GetString(app.CtxSessionID), sd); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	sd, err := s.Ceremonies.TakeRegistration(ctx, c.GetString(app.CtxSessionID))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}
	cred, err := s.App.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		respondErr(c, err)
		return
	}
	s.logActivity(c, "Added a passkey")
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ===== 登录 =====

type loginBeginReq struct {
	Username     string `json:"username"`
	Discoverable bool   `json:"discoverable"`
}
type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	if req.Discoverable || req.Username == "" {
		opts, sd, err = s.App.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, err2 := s.loadWAUserByUsername(ctx, req.Username)
		if err2 != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		opts, sd, err = s.App.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		respondErr(c, err)
		return
	}

	sid := uuid.NewString()
	if err := s.Ceremonies.SaveLogin(ctx, sid, sd); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, loginBeginResp{Options: opts, SessionID: sid})
}

func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ip, ua := c.ClientIP(), c.Request.UserAgent()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	sd, err := s.Ceremonies.TakeLogin(ctx, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	var (
		userID string
		cred   *webauthn.Credential
	)
	if username := c.Query("username"); username != "" {
		wUser, err := s.loadWAUserByUsername(ctx, username)
		if err != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		cred, err = s.App.WA.FinishLogin(wUser, *sd, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = wUser.user.ID
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, err := s.Repo.FindUserByCredentialID(ctx, rawID)
			if err != nil {
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			return s.waUserFor(ctx, u)
		}
		user, passkey, err := s.App.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		wu, ok := user.(*waUser)
		if !ok {
			respondErr(c, errors.New("unexpected webauthn user type"))
			return
		}
		userID, cred = wu.user.ID, passkey
	}
	if err := s.Repo.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		app.Logger().Warn("credential counter", slog.String("user", userID), slog.Any("err", err))
	}

	if err := s.issueSession(ctx, c.Writer, userID, ip, ua); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	_ = s.Repo.LogActivity(ctx, userID, "Logged in")
	c.JSON(http.StatusOK, app.H{"ok": true, "redirect": "/dashboard"})
}

// Logout 删 Redis 会话，Cookie 置空
func (s *Srv) Logout(c *gin.Context) {
	if sid := c.GetString(app.CtxSessionID); sid != "" {
		_ = s.AppSess.Delete(c.Request.Context(), sid)
	}
	s.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
