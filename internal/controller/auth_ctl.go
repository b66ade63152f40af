package controller

import (
	"strings"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthController 认证控制器
type AuthController struct {
	svc *service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// Register 注册
// @Summary 注册新用户
// @Description 在身份提供商创建账号并落本地用户行
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册参数"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "参数错误"
// @Failure 409 {object} response.Envelope "邮箱已注册"
// @Router /api/auth/register [post]
func (a *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := a.svc.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Registration successful", result)
}

// Login 登录
// @Summary 密码登录
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录参数"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope "邮箱或密码不正确"
// @Router /api/auth/login [post]
func (a *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := a.svc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Login successful", result)
}

// Refresh 刷新令牌
// POST /api/auth/refresh
func (a *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := a.svc.Refresh(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Token refreshed", result)
}

// Logout 注销
// POST /api/auth/logout
func (a *AuthController) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		response.Unauthorized(c, "missing bearer token")
		return
	}

	if err := a.svc.Logout(c.Request.Context(), token); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Logout successful", nil)
}

// Me 当前登录用户
// GET /api/auth/me
func (a *AuthController) Me(c *gin.Context) {
	result, err := a.svc.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// bearerToken 从 Authorization 头提取令牌
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
