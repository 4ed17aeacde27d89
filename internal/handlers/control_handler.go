package handlers

import (
	"strconv"

	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/pagination"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ControlHandler struct {
	frameworkService *services.FrameworkService
	gate             *services.Gate
}

func NewControlHandler(frameworkService *services.FrameworkService, gate *services.Gate) *ControlHandler {
	return &ControlHandler{
		frameworkService: frameworkService,
		gate:             gate,
	}
}

// List 控制项列表。framework_id必填，框架是命名资源，
// 白名单拒绝回403而不是404。
func (h *ControlHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	frameworkIDStr := c.Query("framework_id")
	if frameworkIDStr == "" {
		response.BadRequest(c, "framework_id is required")
		return
	}
	frameworkID, err := strconv.ParseUint(frameworkIDStr, 10, 32)
	if err != nil {
		response.BadRequest(c, "framework_id must be an integer")
		return
	}

	framework, err := h.frameworkService.GetByID(uint(frameworkID))
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: framework.Code,
		Resource:      services.ResourceControl,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	filters := services.ControlFilters{Category: c.Query("category")}
	if applicableStr := c.Query("is_applicable"); applicableStr != "" {
		applicable := applicableStr == "true"
		filters.IsApplicable = &applicable
	}

	params := pagination.ParsePageParams(c)
	controls, total, err := h.frameworkService.ListControls(principal, framework.ID, filters, params.GetOffset(), params.GetLimit())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, controls, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type ApplicabilityRequest struct {
	FrameworkCode        string  `json:"framework_code" binding:"required"`
	ControlID            string  `json:"control_id" binding:"required"`
	IsApplicable         *bool   `json:"is_applicable"`
	Justification        *string `json:"justification"`
	ImplementationMethod *string `json:"implementation_method"`
}

// UpdateApplicability 更新控制项适用性，控制项寻址必须带框架代码
func (h *ControlHandler) UpdateApplicability(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req ApplicabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID:    principal.TenantUUID,
		FrameworkCode: req.FrameworkCode,
		Resource:      services.ResourceControlApplicability,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	control, err := h.frameworkService.UpsertControlApplicability(
		principal.TenantUUID, req.FrameworkCode, req.ControlID,
		services.ApplicabilityPatch{
			IsApplicable:         req.IsApplicable,
			Justification:        req.Justification,
			ImplementationMethod: req.ImplementationMethod,
		})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, control)
}
