package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req, "Missing username or password"); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issueTokens(c, u)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// refresh trades a refresh token for a new pair. The role comes from the
// user's current record, not the old token.
func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req, "Missing refresh token"); err != nil {
		h.fail(c, err)
		return
	}
	claims, err := h.opts.Issuer.ParseRefresh(req.RefreshToken)
	if err != nil {
		h.fail(c, attendance.Unauthorized("Invalid refresh token"))
		return
	}
	id, err := claims.UserID()
	if err != nil {
		h.fail(c, attendance.Unauthorized("Invalid refresh token"))
		return
	}
	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		if attendance.KindOf(err) == attendance.KindNotFound {
			err = attendance.Unauthorized("Invalid refresh token")
		}
		h.fail(c, err)
		return
	}
	h.issueTokens(c, u)
}

func (h *Handler) issueTokens(c *gin.Context, u attendance.User) {
	tokens, err := h.opts.Issuer.Issue(u.ID, u.Role)
	if err != nil {
		h.fail(c, attendance.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"user_id":       u.ID,
		"role":          u.Role,
	})
}

func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.opts.Checks {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
