package admin

import (
	"errors"

	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_rejected", "username", req.Username, "client_ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	requestLog(c).Infow("admin_login_succeeded", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前管理员密码
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID, ok := currentAdminID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "old password incorrect", nil)
		case errors.Is(err, service.ErrInvalidParam):
			respondError(c, response.CodeBadRequest, "new password too short", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "admin not found", nil)
		default:
			respondError(c, response.CodeInternal, "change password failed", err)
		}
		return
	}
	response.Success(c, nil)
}

// Me 当前管理员信息
func (h *Handler) Me(c *gin.Context) {
	adminID, ok := currentAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", err)
		return
	}
	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"last_login_at": admin.LastLoginAt,
	})
}

func currentAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	return id, true
}
