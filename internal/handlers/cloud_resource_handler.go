package handlers

import (
	"errors"
	"strconv"

	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CloudResourceHandler struct {
	complianceService *services.ComplianceService
	gate              *services.Gate
}

func NewCloudResourceHandler(complianceService *services.ComplianceService, gate *services.Gate) *CloudResourceHandler {
	return &CloudResourceHandler{
		complianceService: complianceService,
		gate:              gate,
	}
}

// Get 按ID获取云资源。可猜测的整数ID配403会泄露跨租户行的存在性，
// 这里租户不匹配和行不存在统一回404同一响应体。
func (h *CloudResourceHandler) Get(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.HiddenNotFound(c)
		return
	}

	if err := h.gate.Authorize(principal, services.OpRead, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceCloudResource,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	view, err := h.complianceService.GetCloudResource(principal, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.HiddenNotFound(c)
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, view)
}

type CloudResourceRequest struct {
	Provider     string                 `json:"provider" binding:"required"`
	ResourceType string                 `json:"resource_type" binding:"required"`
	ResourceID   string                 `json:"resource_id" binding:"required"`
	Payload      map[string]interface{} `json:"payload"`
}

// Create 录入云资源快照，载荷在边界脱敏后信封加密
func (h *CloudResourceHandler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req CloudResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authorize(principal, services.OpWrite, services.Target{
		TenantUUID: principal.TenantUUID,
		Resource:   services.ResourceCloudResource,
	}); err != nil {
		response.FromError(c, err)
		return
	}

	resource, err := h.complianceService.RecordCloudResource(principal,
		req.Provider, req.ResourceType, req.ResourceID, req.Payload)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, resource)
}
