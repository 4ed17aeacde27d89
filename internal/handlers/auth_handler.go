package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/jwt"
	"compliancehub/pkg/logger"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService   *services.UserService
	tenantService *services.TenantService
	gate          *services.Gate
	jwtManager    *jwt.Manager
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService, gate *services.Gate) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		tenantService: tenantService,
		gate:          gate,
		jwtManager:    jwt.GetManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login 用户登录。租户提示走X-Target-Tenant-ID头（slug或UUID），
// 缺省落到default_tenant。所有失败对客户端只回一种invalid credentials，
// 具体原因只进服务端日志。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	tenantHint := c.GetHeader("X-Target-Tenant-ID")

	user, tenant, err := h.userService.Authenticate(req.Username, req.Password, tenantHint)
	if err != nil {
		logger.GetLogger().WithError(err).
			WithField("username", req.Username).
			WithField("tenant_hint", tenantHint).
			Warn("login failed")
		response.FromError(c, apperrors.ErrInvalidCredentials)
		return
	}

	// 令牌中的tenant_id永远是内部UUID，slug在这里完成最后一次换算
	token, err := h.jwtManager.Generate(user.ID, user.Username, tenant.InternalTenantID, user.Role)
	if err != nil {
		logger.GetLogger().WithError(err).Error("failed to sign token")
		response.ServerError(c, "internal server error")
		return
	}

	h.userService.UpdateLastLogin(user.ID)

	c.JSON(200, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

type RegisterRequest struct {
	Username          string `json:"username" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Role              string `json:"role" binding:"required"`
	AllowedFrameworks string `json:"allowed_frameworks"`
}

// Register 在调用方租户下创建用户，管理员专用
func (h *AuthHandler) Register(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceUser,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	tenant, err := h.tenantService.Resolve(principal.TenantUUID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	user, err := h.userService.Create(tenant, services.CreateUserRequest{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		Role:              req.Role,
		AllowedFrameworks: req.AllowedFrameworks,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, user)
}
