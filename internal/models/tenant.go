package models

import (
	"gorm.io/datatypes"
)

// Tenant 租户模型。Slug是登录时使用的人类可读标识，
// InternalTenantID是所有租户隔离行上使用的稳定UUID，两者一一对应。
type Tenant struct {
	BaseModel
	Name             string         `json:"name" gorm:"not null;size:100"`
	Slug             string         `json:"slug" gorm:"unique;not null;size:50;index"`
	InternalTenantID string         `json:"internal_tenant_id" gorm:"unique;not null;size:36;index"`
	EncryptionKey    string         `json:"-" gorm:"size:100"` // 租户级密钥，密钥轮换的扩展点，当前信封加密仍使用进程级密钥
	Status           string         `json:"status" gorm:"default:'active';size:20"`
	Metadata         datatypes.JSON `json:"metadata"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// DefaultTenantSlug 登录未携带租户提示时使用的默认租户
const DefaultTenantSlug = "default_tenant"

// IsActive 租户是否激活
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
