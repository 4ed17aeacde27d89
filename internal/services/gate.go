package services

import (
	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"
)

// Operation 操作类型
type Operation string

const (
	OpRead   Operation = "READ"
	OpWrite  Operation = "WRITE"
	OpDelete Operation = "DELETE"
)

// Resource 资源类型
type Resource string

const (
	ResourceFramework            Resource = "framework"
	ResourceControl              Resource = "control"
	ResourceControlApplicability Resource = "control_applicability"
	ResourceEvidence             Resource = "evidence"
	ResourceAssessment           Resource = "assessment"
	ResourceComplianceResult     Resource = "compliance_result"
	ResourceAuditAssessment      Resource = "audit_assessment"
	ResourceCloudResource        Resource = "cloud_resource"
	ResourceScopeJustification   Resource = "scope_justification"
	ResourcePolicy               Resource = "policy"
	ResourceMasterTemplate       Resource = "master_template"
	ResourceIntent               Resource = "intent"
	ResourceTenant               Resource = "tenant"
	ResourceUser                 Resource = "user"
)

// Target 授权目标描述
type Target struct {
	TenantUUID    string   // 空表示平台级资源（如母版目录）
	FrameworkCode string   // 可选，命名资源的框架白名单检查
	Resource      Resource
}

// Gate 授权闸门：所有组件读写前的唯一执法点。
// 规则按序检查，第一条失败即拒绝。
type Gate struct {
	tenants *TenantService
}

func NewGate(tenants *TenantService) *Gate {
	return &Gate{tenants: tenants}
}

// Authorize 按顺序执行四条规则：
// 1. 租户一致或超级用户；2. 框架白名单；3. 角色矩阵；4. 目标租户仍激活。
// 拒绝返回Forbidden族错误，按ID查询的调用方自行降级为NotFound做资源隐匿。
func (g *Gate) Authorize(p *models.Principal, op Operation, target Target) error {
	// 规则1：租户边界
	if target.TenantUUID != "" && target.TenantUUID != p.TenantUUID && !p.IsSuperuser() {
		return apperrors.ErrWrongTenant
	}

	// 规则2：框架白名单（ALL为全集）
	if target.FrameworkCode != "" && !p.AllowsFramework(target.FrameworkCode) {
		return apperrors.ErrFrameworkNotAllowed
	}

	// 规则3：角色矩阵
	if err := g.checkRole(p, op, target.Resource); err != nil {
		return err
	}

	// 规则4：目标租户必须仍处于激活状态，以注册表为准
	if target.TenantUUID != "" {
		if _, err := g.tenants.Resolve(target.TenantUUID); err != nil {
			return apperrors.ErrTenantInactive
		}
	}

	return nil
}

func (g *Gate) checkRole(p *models.Principal, op Operation, resource Resource) error {
	switch p.Role {
	case models.RoleSuperuser:
		return nil

	case models.RoleAdmin:
		// 租户内全权，租户边界由规则1保证；租户开通/停用是平台操作
		if resource == ResourceTenant && op != OpRead {
			return apperrors.ErrRoleDenied
		}
		return nil

	case models.RoleUser:
		if op == OpRead {
			return nil
		}
		if op == OpDelete && resource == ResourceUser {
			return apperrors.ErrRoleDenied
		}
		// 范围豁免改变审计边界，只有管理员可写
		switch resource {
		case ResourceEvidence, ResourceAssessment, ResourceComplianceResult,
			ResourceControlApplicability:
			return nil
		}
		return apperrors.ErrRoleDenied

	case models.RoleAuditor:
		if op == OpRead {
			switch resource {
			case ResourceControl, ResourceControlApplicability, ResourceEvidence,
				ResourcePolicy, ResourceMasterTemplate, ResourceFramework,
				ResourceAssessment, ResourceAuditAssessment, ResourceIntent:
				return nil
			}
			return apperrors.ErrRoleDenied
		}
		// 审计员唯一可写的资源
		if resource == ResourceAuditAssessment && op != OpDelete {
			return nil
		}
		return apperrors.ErrRoleDenied
	}

	return apperrors.ErrRoleDenied
}
