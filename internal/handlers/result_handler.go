package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// ResultHandler 合规结论接口，写入方是外部扫描器集成
type ResultHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewResultHandler(complianceService *services.ComplianceService, gate *services.Gate) *ResultHandler {
	return &ResultHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

type ResultRequest struct {
	ControlID string                 `json:"control_id" binding:"required"`
	Status    string                 `json:"status" binding:"required"`
	Metadata  map[string]interface{} `json:"evidence_metadata"`
}

// Record 写入扫描结论，按(tenant_id, control_id)原地更新
func (h *ResultHandler) Record(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceComplianceResult,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.complianceService.RecordResult(principal, req.ControlID, req.Status, req.Metadata)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// Get 按控制项编号取最新结论
func (h *ResultHandler) Get(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	controlID := c.Param("control_id")

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceComplianceResult,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	view, err := h.complianceService.GetResult(principal, controlID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, view)
}
