package models

// 范围裁剪理由常量
const (
	ReasonNotApplicable       = "NOT_APPLICABLE"
	ReasonOutOfScope          = "OUT_OF_SCOPE"
	ReasonPartiallyApplicable = "PARTIALLY_APPLICABLE"
)

// ScopeJustification 租户对某标准条款的范围裁剪说明
type ScopeJustification struct {
	BaseModel
	TenantID          string `json:"tenant_id" gorm:"not null;size:36;index"`
	StandardType      string `json:"standard_type" gorm:"not null;size:50"` // 框架代码
	CriteriaID        string `json:"criteria_id" gorm:"not null;size:50"`
	ReasonCode        string `json:"reason_code" gorm:"not null;size:30"`
	JustificationText string `json:"justification_text" gorm:"type:text"`
}

// TableName 表名
func (s *ScopeJustification) TableName() string {
	return "scope_justifications"
}

// IsValidReasonCode 裁剪理由是否合法
func IsValidReasonCode(code string) bool {
	switch code {
	case ReasonNotApplicable, ReasonOutOfScope, ReasonPartiallyApplicable:
		return true
	default:
		return false
	}
}
