package models

import (
	"time"
)

// 合规结果状态常量
const (
	ResultStatusPass       = "PASS"
	ResultStatusFail       = "FAIL"
	ResultStatusWarning    = "WARNING"
	ResultStatusNotScanned = "NOT_SCANNED"
)

// ComplianceResult 每次扫描后的控制项合规结论，
// 按(tenant_id, control_id)唯一并原地更新。ControlID是框架内部编号，
// 由各控制项扫描器产出，不做主键外联。
type ComplianceResult struct {
	BaseModel
	TenantID         string    `json:"tenant_id" gorm:"not null;size:36;uniqueIndex:idx_tenant_control;index"`
	ControlID        string    `json:"control_id" gorm:"not null;size:50;uniqueIndex:idx_tenant_control"`
	Status           string    `json:"status" gorm:"default:'NOT_SCANNED';size:20"`
	EvidenceMetadata string    `json:"-" gorm:"type:text"` // 信封加密后的不透明token，为空或可解密二选一
	LastScannedAt    time.Time `json:"last_scanned_at"`
}

// TableName 表名
func (r *ComplianceResult) TableName() string {
	return "compliance_results"
}

// IsValidResultStatus 结果状态是否合法
func IsValidResultStatus(status string) bool {
	switch status {
	case ResultStatusPass, ResultStatusFail, ResultStatusWarning, ResultStatusNotScanned:
		return true
	default:
		return false
	}
}
