package services

import (
	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"

	"gorm.io/gorm"
)

// FrameworkService 框架与控制项注册表。
// 控制项对外只用(framework_code, control_id)二元组寻址，
// 裸control_id跨框架会碰撞（如 "4.1"），绝不作为键。
type FrameworkService struct {
	db *gorm.DB
}

func NewFrameworkService(db *gorm.DB) *FrameworkService {
	return &FrameworkService{db: db}
}

// ListFrameworks 列出调用方可见的框架：
// 租户已开通且激活的框架 ∩ 调用方白名单。
func (s *FrameworkService) ListFrameworks(p *models.Principal) ([]models.Framework, error) {
	var links []models.TenantFramework
	err := s.db.Preload("Framework").
		Where("tenant_id = ? AND is_active = ?", p.TenantUUID, true).
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	frameworks := make([]models.Framework, 0, len(links))
	for _, link := range links {
		if !link.Framework.IsActive {
			continue
		}
		if !p.AllowsFramework(link.Framework.Code) {
			continue
		}
		frameworks = append(frameworks, link.Framework)
	}
	return frameworks, nil
}

// GetByID 按主键获取框架
func (s *FrameworkService) GetByID(id uint) (*models.Framework, error) {
	var framework models.Framework
	err := s.db.First(&framework, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &framework, nil
}

// GetByCode 按框架代码获取框架
func (s *FrameworkService) GetByCode(code string) (*models.Framework, error) {
	var framework models.Framework
	err := s.db.Where("code = ?", code).First(&framework).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &framework, nil
}

// ControlFilters 控制项查询过滤
type ControlFilters struct {
	Category     string
	IsApplicable *bool
}

// ListControls 按租户UUID和框架成员过滤的控制项列表。
// framework_id相同也绝不返回其他租户的行。
func (s *FrameworkService) ListControls(p *models.Principal, frameworkID uint, filters ControlFilters, offset, limit int) ([]models.Control, int64, error) {
	query := s.db.Model(&models.Control{}).
		Where("tenant_id = ? AND framework_id = ?", p.TenantUUID, frameworkID)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.IsApplicable != nil {
		query = query.Where("is_applicable = ?", *filters.IsApplicable)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var controls []models.Control
	err := query.Order("control_id").Offset(offset).Limit(limit).Find(&controls).Error
	if err != nil {
		return nil, 0, err
	}
	return controls, total, nil
}

// GetControlByRef 用(framework_code, control_id)在租户范围内定位控制项
func (s *FrameworkService) GetControlByRef(tenantUUID, frameworkCode, controlID string) (*models.Control, error) {
	framework, err := s.GetByCode(frameworkCode)
	if err != nil {
		return nil, err
	}

	var control models.Control
	err = s.db.Where("framework_id = ? AND control_id = ? AND tenant_id = ?",
		framework.ID, controlID, tenantUUID).First(&control).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &control, nil
}

// ApplicabilityPatch 适用性更新。控制项在框架播种后只允许改这些字段。
type ApplicabilityPatch struct {
	IsApplicable         *bool
	Justification        *string
	ImplementationMethod *string
}

// UpsertControlApplicability 更新控制项适用性。
// 标记不适用时必须给出理由。
func (s *FrameworkService) UpsertControlApplicability(tenantUUID, frameworkCode, controlID string, patch ApplicabilityPatch) (*models.Control, error) {
	control, err := s.GetControlByRef(tenantUUID, frameworkCode, controlID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.IsApplicable != nil {
		updates["is_applicable"] = *patch.IsApplicable
	}
	if patch.Justification != nil {
		updates["justification"] = *patch.Justification
	}
	if patch.ImplementationMethod != nil {
		updates["implementation_method"] = *patch.ImplementationMethod
	}

	if applicable, ok := updates["is_applicable"].(bool); ok && !applicable {
		justification := control.Justification
		if j, ok := updates["justification"].(string); ok {
			justification = j
		}
		if justification == "" {
			return nil, apperrors.Validation("marking a control not applicable requires a justification")
		}
	}

	if len(updates) == 0 {
		return control, nil
	}

	if err := s.db.Model(control).Updates(updates).Error; err != nil {
		return nil, err
	}
	return control, nil
}

// SeedFramework 创建框架和平台目录级控制项（tenant_id为空）。
// 违反(framework_id, control_id, tenant_id)唯一约束返回DuplicateControl。
func (s *FrameworkService) SeedFramework(code, name, version string, controls []models.Control) (*models.Framework, error) {
	var framework models.Framework

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("code = ?", code).First(&framework).Error
		if err == gorm.ErrRecordNotFound {
			framework = models.Framework{Code: code, Name: name, Version: version, IsActive: true}
			if err := tx.Create(&framework).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for i := range controls {
			controls[i].FrameworkID = framework.ID
			controls[i].TenantID = ""
			controls[i].IsApplicable = true

			var count int64
			tx.Model(&models.Control{}).
				Where("framework_id = ? AND control_id = ? AND tenant_id = ''",
					framework.ID, controls[i].ControlID).
				Count(&count)
			if count > 0 {
				return apperrors.ErrDuplicateControl
			}

			if err := tx.Create(&controls[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &framework, nil
}

// ========== 策略文档母版（只读目录） ==========

// ListMasterTemplates 列出激活的母版
func (s *FrameworkService) ListMasterTemplates() ([]models.MasterTemplate, error) {
	var templates []models.MasterTemplate
	err := s.db.Where("is_active = ?", true).Order("name").Find(&templates).Error
	return templates, err
}

// GetMasterTemplate 按ID获取母版
func (s *FrameworkService) GetMasterTemplate(id uint) (*models.MasterTemplate, error) {
	var template models.MasterTemplate
	err := s.db.Where("is_active = ?", true).First(&template, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}
