package services

import (
	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"

	"gorm.io/gorm"
)

// IntentService 通用意图纵横表：控制项之上的租户无关抽象层，
// 回答"这个意图被哪些框架的哪些控制项满足"。
type IntentService struct {
	db *gorm.DB
}

func NewIntentService(db *gorm.DB) *IntentService {
	return &IntentService{db: db}
}

// GetByIntentID 按意图编码获取意图
func (s *IntentService) GetByIntentID(intentID string) (*models.UniversalIntent, error) {
	var intent models.UniversalIntent
	err := s.db.Where("intent_id = ?", intentID).First(&intent).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// List 全部意图
func (s *IntentService) List() ([]models.UniversalIntent, error) {
	var intents []models.UniversalIntent
	err := s.db.Order("intent_id").Find(&intents).Error
	return intents, err
}

// IntentsFor 给定框架控制项反查关联的意图
func (s *IntentService) IntentsFor(frameworkID uint, controlReference string) ([]models.UniversalIntent, error) {
	var links []models.IntentFrameworkCrosswalk
	err := s.db.Where("framework_id = ? AND control_reference = ?", frameworkID, controlReference).
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	intents := make([]models.UniversalIntent, 0, len(links))
	for _, link := range links {
		var intent models.UniversalIntent
		if err := s.db.Where("intent_id = ?", link.IntentID).First(&intent).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

// ControlsFor 意图关联的(框架, 控制项引用)列表
func (s *IntentService) ControlsFor(intentID string) ([]models.IntentFrameworkCrosswalk, error) {
	if _, err := s.GetByIntentID(intentID); err != nil {
		return nil, err
	}

	var links []models.IntentFrameworkCrosswalk
	err := s.db.Preload("Framework").Where("intent_id = ?", intentID).Find(&links).Error
	return links, err
}

// Link 建立意图到框架控制项的链接，同一引用可出现在不同框架下
func (s *IntentService) Link(intentID string, frameworkID uint, controlReference string) error {
	if _, err := s.GetByIntentID(intentID); err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.IntentFrameworkCrosswalk{}).
		Where("intent_id = ? AND framework_id = ? AND control_reference = ?",
			intentID, frameworkID, controlReference).
		Count(&count)
	if count > 0 {
		return nil
	}

	return s.db.Create(&models.IntentFrameworkCrosswalk{
		IntentID:         intentID,
		FrameworkID:      frameworkID,
		ControlReference: controlReference,
	}).Error
}

// StatusRollup 计算意图在某租户下的完成状态。
// COMPLETED当且仅当每条链接的控制项满足其一：
// 最新ComplianceResult为PASS，或控制项被标记不适用且有理由。
func (s *IntentService) StatusRollup(intentID, tenantUUID string) (string, error) {
	links, err := s.ControlsFor(intentID)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return models.IntentStatusPending, nil
	}

	for _, link := range links {
		satisfied, err := s.linkSatisfied(&link, tenantUUID)
		if err != nil {
			return "", err
		}
		if !satisfied {
			return models.IntentStatusPending, nil
		}
	}
	return models.IntentStatusCompleted, nil
}

func (s *IntentService) linkSatisfied(link *models.IntentFrameworkCrosswalk, tenantUUID string) (bool, error) {
	var control models.Control
	err := s.db.Where("framework_id = ? AND control_id = ? AND tenant_id = ?",
		link.FrameworkID, link.ControlReference, tenantUUID).First(&control).Error
	if err == gorm.ErrRecordNotFound {
		// 租户没有这个控制项，意图不可能完成
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !control.IsApplicable && control.Justification != "" {
		return true, nil
	}

	var result models.ComplianceResult
	err = s.db.Where("tenant_id = ? AND control_id = ?", tenantUUID, link.ControlReference).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return result.Status == models.ResultStatusPass, nil
}
