package models

// Control 框架内的单条控制项。ControlID是框架内部编号（如 "A.5.1"、"CC6.1"），
// 跨框架可重复，寻址必须带framework，唯一性约束是(framework_id, control_id, tenant_id)。
type Control struct {
	BaseModel
	ControlID            string `json:"control_id" gorm:"not null;size:50;uniqueIndex:idx_fw_control_tenant"`
	FrameworkID          uint   `json:"framework_id" gorm:"not null;uniqueIndex:idx_fw_control_tenant;index"`
	TenantID             string `json:"tenant_id" gorm:"not null;size:36;uniqueIndex:idx_fw_control_tenant;index"` // 租户内部UUID
	Title                string `json:"title" gorm:"not null;size:500"`
	Description          string `json:"description" gorm:"type:text"`
	Category             string `json:"category" gorm:"size:200"`
	IsApplicable         bool   `json:"is_applicable" gorm:"default:true"`
	Justification        string `json:"justification" gorm:"type:text"` // 不适用时必填
	ImplementationMethod string `json:"implementation_method" gorm:"type:text"`
	AIExplanation        string `json:"ai_explanation" gorm:"type:text"`
	AIRequirements       string `json:"ai_requirements" gorm:"type:text"`

	Framework Framework `json:"framework,omitempty" gorm:"foreignKey:FrameworkID"`
}

// TableName 表名
func (c *Control) TableName() string {
	return "controls"
}
