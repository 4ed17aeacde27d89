package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type IntentHandler struct {
	intentService *services.IntentService
	gate          *services.Gate
}

func NewIntentHandler(intentService *services.IntentService, gate *services.Gate) *IntentHandler {
	return &IntentHandler{
		intentService: intentService,
		gate:          gate,
	}
}

// List 全部通用意图（租户无关目录）
func (h *IntentHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceIntent,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	intents, err := h.intentService.List()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, intents)
}

// Controls 意图关联的(框架, 控制项引用)列表
func (h *IntentHandler) Controls(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	intentID := c.Param("intent_id")

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceIntent,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	links, err := h.intentService.ControlsFor(intentID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, links)
}

// Status 意图在调用方租户下的完成状态
func (h *IntentHandler) Status(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	intentID := c.Param("intent_id")

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceIntent,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	status, err := h.intentService.StatusRollup(intentID, principal.TenantUUID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"intent_id": intentID,
		"status":    status,
	})
}
