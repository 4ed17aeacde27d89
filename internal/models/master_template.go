package models

import (
	"gorm.io/datatypes"
)

// MasterTemplate 策略文档母版，只读目录，文档生成器在核心之外消费
type MasterTemplate struct {
	BaseModel
	Name         string         `json:"name" gorm:"not null;size:200"`
	DocumentType string         `json:"document_type" gorm:"size:50"` // policy / procedure / standard
	Description  string         `json:"description" gorm:"type:text"`
	Sections     datatypes.JSON `json:"sections"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (m *MasterTemplate) TableName() string {
	return "master_templates"
}
