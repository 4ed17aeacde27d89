package models

// CloudResource 云资源快照。ComplianceMetadata只保留安全相关字段，
// 在入库边界脱敏并信封加密。
type CloudResource struct {
	BaseModel
	TenantID           string `json:"tenant_id" gorm:"not null;size:36;index"`
	Provider           string `json:"provider" gorm:"not null;size:50"` // aws / azure / gcp
	ResourceType       string `json:"resource_type" gorm:"not null;size:100"`
	ResourceID         string `json:"resource_id" gorm:"not null;size:500"`
	ComplianceMetadata string `json:"-" gorm:"type:text"` // 信封加密后的不透明token
}

// TableName 表名
func (r *CloudResource) TableName() string {
	return "cloud_resources"
}
