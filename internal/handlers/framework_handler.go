package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type FrameworkHandler struct {
	frameworkService *services.FrameworkService
	gate             *services.Gate
}

func NewFrameworkHandler(frameworkService *services.FrameworkService, gate *services.Gate) *FrameworkHandler {
	return &FrameworkHandler{
		frameworkService: frameworkService,
		gate:             gate,
	}
}

// List 调用方可见的框架列表：租户已开通 ∩ 白名单
func (h *FrameworkHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceFramework,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	frameworks, err := h.frameworkService.ListFrameworks(principal)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, frameworks)
}
