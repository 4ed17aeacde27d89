package models

import (
	"time"
)

// Assessment AI生成的控制项评估，追加写入
type Assessment struct {
	BaseModel
	TenantID        string    `json:"tenant_id" gorm:"not null;size:36;index"`
	ControlID       uint      `json:"control_id" gorm:"not null;index"` // Control主键
	ComplianceScore int       `json:"compliance_score"`                 // 0-100
	Gaps            string    `json:"gaps" gorm:"type:text"`
	Recommendations string    `json:"recommendations" gorm:"type:text"`
	AssessedAt      time.Time `json:"assessed_at"`

	Control Control `json:"control,omitempty" gorm:"foreignKey:ControlID"`
}

// TableName 表名
func (a *Assessment) TableName() string {
	return "assessments"
}
