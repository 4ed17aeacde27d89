package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/pagination"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditAssessmentHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewAuditAssessmentHandler(complianceService *services.ComplianceService, gate *services.Gate) *AuditAssessmentHandler {
	return &AuditAssessmentHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

// List 审计结论列表
func (h *AuditAssessmentHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceAuditAssessment,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	params := pagination.ParsePageParams(c)
	assessments, total, err := h.complianceService.ListAuditAssessments(principal, params.GetOffset(), params.GetLimit())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, assessments, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type AuditAssessmentRequest struct {
	FrameworkCode       string `json:"framework_code" binding:"required"`
	ControlID           string `json:"control_id" binding:"required"`
	Status              string `json:"status" binding:"required"`
	Remarks             string `json:"remarks"`
	EvidenceRequestFlag bool   `json:"evidence_request_flag"`
}

// Create 录入审计结论。audit_assessments是auditor角色唯一可写的表
func (h *AuditAssessmentHandler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req AuditAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: req.FrameworkCode,
		Resource:      services.ResourceAuditAssessment,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	assessment, err := h.complianceService.RecordAuditAssessment(principal, services.AuditAssessmentInput{
		FrameworkCode:       req.FrameworkCode,
		ControlID:           req.ControlID,
		Status:              req.Status,
		Remarks:             req.Remarks,
		EvidenceRequestFlag: req.EvidenceRequestFlag,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, assessment)
}
