package handlers

import (
	"strconv"

	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// MasterTemplateHandler 策略文档母版只读接口
type MasterTemplateHandler struct {
	frameworkService *services.FrameworkService
	gate             *services.Gate
}

func NewMasterTemplateHandler(frameworkService *services.FrameworkService, gate *services.Gate) *MasterTemplateHandler {
	return &MasterTemplateHandler{
		frameworkService: frameworkService,
		gate:             gate,
	}
}

// List 母版列表
func (h *MasterTemplateHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceMasterTemplate,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	templates, err := h.frameworkService.ListMasterTemplates()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, templates)
}

// Get 按ID获取母版
func (h *MasterTemplateHandler) Get(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "id must be an integer")
		return
	}

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceMasterTemplate,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	template, err := h.frameworkService.GetMasterTemplate(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, template)
}
