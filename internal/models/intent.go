package models

// 通用意图状态常量
const (
	IntentStatusPending   = "PENDING"
	IntentStatusCompleted = "COMPLETED"
)

// UniversalIntent 租户无关的通用合规意图，一个意图对应多个框架的具体控制项，
// 一次合规动作可以同时满足多个标准。
type UniversalIntent struct {
	BaseModel
	IntentID    string `json:"intent_id" gorm:"unique;not null;size:50;index"` // 稳定编码，如 INT-001-ACCESS
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"size:200"` // 如 "Access Control (IAM)"
	Status      string `json:"status" gorm:"default:'PENDING';size:20"`
}

// TableName 表名
func (i *UniversalIntent) TableName() string {
	return "universal_intents"
}

// IntentFrameworkCrosswalk 意图与框架控制项的N:M桥接。
// 同一个control_reference可以出现在不同框架下，各条链接相互独立。
type IntentFrameworkCrosswalk struct {
	BaseModel
	IntentID         string `json:"intent_id" gorm:"not null;size:50;uniqueIndex:idx_intent_fw_ref;index"`
	FrameworkID      uint   `json:"framework_id" gorm:"not null;uniqueIndex:idx_intent_fw_ref"`
	ControlReference string `json:"control_reference" gorm:"not null;size:50;uniqueIndex:idx_intent_fw_ref"` // 对应Control.control_id

	Framework Framework `json:"framework,omitempty" gorm:"foreignKey:FrameworkID"`
}

// TableName 表名
func (x *IntentFrameworkCrosswalk) TableName() string {
	return "intent_framework_crosswalks"
}
