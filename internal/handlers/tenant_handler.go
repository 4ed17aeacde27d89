package handlers

import (
	"strconv"

	"compliancehub/internal/services"
	"compliancehub/pkg/pagination"
	"compliancehub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// TenantHandler 租户管理接口，仅超级用户
type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

type ProvisionRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Slug           string                 `json:"slug" binding:"required"`
	AdminEmail     string                 `json:"admin_email" binding:"required,email"`
	FrameworkCodes []string               `json:"framework_codes"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// Provision 开通租户：新UUID、新租户级密钥、框架挂接、默认管理员，整体原子
func (h *TenantHandler) Provision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "invalid provision request"
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Name":
					errorMsg = "tenant name is required"
				case "Slug":
					errorMsg = "tenant slug is required"
				case "AdminEmail":
					errorMsg = "admin_email must be a valid email address"
				}
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.tenantService.Provision(req.Name, req.Slug, req.AdminEmail, req.FrameworkCodes, req.Metadata)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, result)
}

// List 租户列表（分页）
func (h *TenantHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenants, total, err := h.tenantService.GetWithPage(params.Page, params.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Deactivate 停用租户。租户永不删除。
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "id must be an integer")
		return
	}

	tenant, err := h.tenantService.Deactivate(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// Activate 重新激活租户
func (h *TenantHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "id must be an integer")
		return
	}

	tenant, err := h.tenantService.Activate(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// Features 租户的激活特性键
func (h *TenantHandler) Features(c *gin.Context) {
	features, err := h.tenantService.Features(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"features": features})
}
