package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evidence 合规证据，追加写入。MasterIntentID可选，
// 设置后证据通过通用意图在多个框架间复用。
type Evidence struct {
	BaseModel
	TenantID          string         `json:"tenant_id" gorm:"not null;size:36;index"` // 租户内部UUID
	ControlID         uint           `json:"control_id" gorm:"not null;index"`        // Control主键，写入时由(framework_code, control_id)解析
	Filename          string         `json:"filename" gorm:"size:255"`
	FilePath          string         `json:"file_path" gorm:"size:500"`
	MasterIntentID    *string        `json:"master_intent_id" gorm:"size:50;index"` // UniversalIntent.IntentID
	UploadedBy        uint           `json:"uploaded_by"`
	CollectionDate    *time.Time     `json:"collection_date"`
	Description       string         `json:"description" gorm:"type:text"`
	Tags              datatypes.JSON `json:"tags"`
	EncryptedMetadata string         `json:"-" gorm:"type:text"` // 信封加密后的不透明token

	Control Control `json:"control,omitempty" gorm:"foreignKey:ControlID"`
}

// TableName 表名
func (e *Evidence) TableName() string {
	return "evidences"
}
