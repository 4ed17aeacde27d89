package middleware

import (
	"errors"
	"strings"

	"compliancehub/internal/models"
	"compliancehub/internal/services"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/jwt"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	userService   *services.UserService
	tenantService *services.TenantService
	jwtManager    *jwt.Manager
}

func NewAuthMiddleware(userService *services.UserService, tenantService *services.TenantService) *AuthMiddleware {
	return &AuthMiddleware{
		userService:   userService,
		tenantService: tenantService,
		jwtManager:    jwt.GetManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 校验bearer令牌并构建principal。
// 令牌自包含，但租户状态以注册表实时为准：签发后被停用的租户直接拒绝。
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.Verify(tokenString)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		// 重新解析租户，签发后停用的租户令牌立即失效。
		// 租户被停用回403，令牌本身没问题；租户不存在视同令牌失效回401。
		tenant, err := m.tenantService.Resolve(claims.TenantID)
		if err != nil {
			if errors.Is(err, apperrors.ErrTenantInactive) {
				response.FromError(c, err)
			} else {
				response.Unauthorized(c, "token is no longer valid")
			}
			c.Abort()
			return
		}

		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "token is no longer valid")
			c.Abort()
			return
		}

		if !user.IsActive() {
			response.Unauthorized(c, "user is deactivated")
			c.Abort()
			return
		}

		principal := m.userService.BuildPrincipal(user, tenant)
		c.Set("principal", principal)

		c.Next()
	}
}

// RequireSuperuser 仅平台超级用户可用
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !principal.IsSuperuser() {
			response.Forbidden(c, "superuser privileges required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPrincipal 从请求上下文取principal
func GetPrincipal(c *gin.Context) *models.Principal {
	value, exists := c.Get("principal")
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
