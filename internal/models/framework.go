package models

// Framework 合规框架（ISO 27001、SOC 2等）
type Framework struct {
	BaseModel
	Code     string `json:"code" gorm:"unique;not null;size:50;index"`
	Name     string `json:"name" gorm:"not null;size:200"`
	Version  string `json:"version" gorm:"size:50"`
	TenantID string `json:"tenant_id" gorm:"size:50;index"` // 空表示平台级目录框架
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (f *Framework) TableName() string {
	return "frameworks"
}

// 内置框架代码
const (
	FrameworkISO27001    = "ISO27001"
	FrameworkSOC2        = "SOC2"
	FrameworkNISTCSF     = "NIST_CSF"
	FrameworkAIFramework = "AI_FRAMEWORK"
)

// TenantFramework 租户级框架开通记录
type TenantFramework struct {
	BaseModel
	TenantID    string `json:"tenant_id" gorm:"not null;size:36;uniqueIndex:idx_tenant_framework"` // 租户内部UUID
	FrameworkID uint   `json:"framework_id" gorm:"not null;uniqueIndex:idx_tenant_framework"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsLocked    bool   `json:"is_locked" gorm:"default:false"`

	Framework Framework `json:"framework,omitempty" gorm:"foreignKey:FrameworkID"`
}

// TableName 表名
func (tf *TenantFramework) TableName() string {
	return "tenant_frameworks"
}
