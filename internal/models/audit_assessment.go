package models

import (
	"time"
)

// 审计评估状态常量
const (
	AuditStatusPending       = "PENDING"
	AuditStatusCompliant     = "COMPLIANT"
	AuditStatusNonConformity = "NON_CONFORMITY"
	AuditStatusOFI           = "OFI" // 改进机会
)

// AuditAssessment 审计员录入的控制项审计结论，auditor角色唯一可写的资源
type AuditAssessment struct {
	ID                  string    `json:"id" gorm:"primarykey;size:36"` // UUID
	TenantID            string    `json:"tenant_id" gorm:"not null;size:36;index"`
	FrameworkID         uint      `json:"framework_id" gorm:"not null;index"`
	ControlID           string    `json:"control_id" gorm:"not null;size:50"` // 框架内部编号
	AuditorID           uint      `json:"auditor_id" gorm:"not null"`
	Status              string    `json:"status" gorm:"default:'PENDING';size:20"`
	Remarks             string    `json:"remarks" gorm:"type:text"`
	EvidenceRequestFlag bool      `json:"evidence_request_flag" gorm:"default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Framework Framework `json:"framework,omitempty" gorm:"foreignKey:FrameworkID"`
}

// TableName 表名
func (a *AuditAssessment) TableName() string {
	return "audit_assessments"
}

// IsValidAuditStatus 审计状态是否合法
func IsValidAuditStatus(status string) bool {
	switch status {
	case AuditStatusPending, AuditStatusCompliant, AuditStatusNonConformity, AuditStatusOFI:
		return true
	default:
		return false
	}
}
