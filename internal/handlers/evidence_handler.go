package handlers

import (
	"time"

	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/pagination"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type EvidenceHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewEvidenceHandler(complianceService *services.ComplianceService, gate *services.Gate) *EvidenceHandler {
	return &EvidenceHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

// List 证据列表，metadata解密后返回
func (h *EvidenceHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceEvidence,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	params := pagination.ParsePageParams(c)
	views, total, err := h.complianceService.ListEvidence(principal, params.GetOffset(), params.GetLimit())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, views, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type EvidenceRequest struct {
	FrameworkCode  string                 `json:"framework_code" binding:"required"`
	ControlID      string                 `json:"control_id" binding:"required"`
	Filename       string                 `json:"filename"`
	FilePath       string                 `json:"file_path"`
	MasterIntentID *string                `json:"master_intent_id"`
	Description    string                 `json:"description"`
	Tags           []string               `json:"tags"`
	CollectionDate *time.Time             `json:"collection_date"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// Create 录入证据。文件本体由上传服务处理，这里只登记元数据，
// metadata入库前信封加密。
func (h *EvidenceHandler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req EvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: req.FrameworkCode,
		Resource:      services.ResourceEvidence,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	evidence, err := h.complianceService.RecordEvidence(principal, req.FrameworkCode, req.ControlID,
		services.EvidenceInput{
			Filename:       req.Filename,
			FilePath:       req.FilePath,
			MasterIntentID: req.MasterIntentID,
			Description:    req.Description,
			Tags:           req.Tags,
			CollectionDate: req.CollectionDate,
			Metadata:       req.Metadata,
		})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, evidence)
}
