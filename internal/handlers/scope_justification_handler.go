package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ScopeJustificationHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewScopeJustificationHandler(complianceService *services.ComplianceService, gate *services.Gate) *ScopeJustificationHandler {
	return &ScopeJustificationHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

// List 范围裁剪记录列表
func (h *ScopeJustificationHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceScopeJustification,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	justifications, err := h.complianceService.ListScopeJustifications(principal)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, justifications)
}

type ScopeJustificationRequest struct {
	StandardType      string `json:"standard_type" binding:"required"`
	CriteriaID        string `json:"criteria_id" binding:"required"`
	ReasonCode        string `json:"reason_code" binding:"required"`
	JustificationText string `json:"justification_text" binding:"required"`
}

// Create 记录范围裁剪
func (h *ScopeJustificationHandler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req ScopeJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: req.StandardType,
		Resource:      services.ResourceScopeJustification,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	justification, err := h.complianceService.RecordScopeJustification(principal,
		req.StandardType, req.CriteriaID, req.ReasonCode, req.JustificationText)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, justification)
}
