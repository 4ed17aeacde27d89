package handlers

import (
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/pagination"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewAssessmentHandler(complianceService *services.ComplianceService, gate *services.Gate) *AssessmentHandler {
	return &AssessmentHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

// List 评估列表
func (h *AssessmentHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceAssessment,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	params := pagination.ParsePageParams(c)
	assessments, total, err := h.complianceService.ListAssessments(principal, params.GetOffset(), params.GetLimit())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, assessments, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type AssessmentRequest struct {
	FrameworkCode   string `json:"framework_code" binding:"required"`
	ControlID       string `json:"control_id" binding:"required"`
	ComplianceScore int    `json:"compliance_score" binding:"min=0,max=100"`
	Gaps            string `json:"gaps"`
	Recommendations string `json:"recommendations"`
}

// Create 录入评估结论
func (h *AssessmentHandler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: req.FrameworkCode,
		Resource:      services.ResourceAssessment,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	assessment, err := h.complianceService.RecordAssessment(principal,
		req.FrameworkCode, req.ControlID, req.ComplianceScore, req.Gaps, req.Recommendations)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, assessment)
}
