package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/cache"
	"compliancehub/pkg/crypto"
	"compliancehub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantService 租户注册表：租户身份和特性开关的唯一可信来源。
// slug/UUID到租户的换算只经过这里。
type TenantService struct {
	db    *gorm.DB
	cache *cache.Client // 可为nil，降级为纯数据库查询
}

func NewTenantService(db *gorm.DB, cacheClient *cache.Client) *TenantService {
	return &TenantService{db: db, cache: cacheClient}
}

// ProvisionResult 租户开通结果
type ProvisionResult struct {
	Tenant               *models.Tenant `json:"tenant"`
	AdminUsername        string         `json:"admin_username"`
	AdminInitialPassword string         `json:"admin_initial_password"` // 仅在开通响应中出现一次
}

// Resolve 按UUID优先、slug兜底解析租户。
// 未知返回TenantUnknown，已停用返回TenantInactive。
func (s *TenantService) Resolve(slugOrUUID string) (*models.Tenant, error) {
	if slugOrUUID == "" {
		return nil, apperrors.ErrTenantUnknown
	}

	if tenant := s.cacheGet(slugOrUUID); tenant != nil {
		if !tenant.IsActive() {
			return nil, apperrors.ErrTenantInactive
		}
		return tenant, nil
	}

	var tenant models.Tenant
	err := s.db.Where("internal_tenant_id = ?", slugOrUUID).First(&tenant).Error
	if err == gorm.ErrRecordNotFound {
		err = s.db.Where("slug = ?", slugOrUUID).First(&tenant).Error
	}
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrTenantUnknown
	}
	if err != nil {
		return nil, err
	}

	s.cacheSet(&tenant)

	if !tenant.IsActive() {
		return nil, apperrors.ErrTenantInactive
	}
	return &tenant, nil
}

// Provision 开通租户：生成新UUID和租户级加密密钥、挂接框架、
// 克隆控制项目录、创建默认管理员。整体一个事务，失败全部回滚。
func (s *TenantService) Provision(name, slug, adminEmail string, frameworkCodes []string, metadata map[string]interface{}) (*ProvisionResult, error) {
	if err := s.validateProvisionParams(name, slug); err != nil {
		return nil, err
	}

	encryptionKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	adminPassword, err := crypto.GenerateKey() // 随机初始口令，开通后必须轮换
	if err != nil {
		return nil, err
	}
	adminPassword = adminPassword[:16]

	var metadataJSON datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, apperrors.Validation("metadata is not serializable")
		}
		metadataJSON = raw
	}

	tenant := &models.Tenant{
		Name:             name,
		Slug:             slug,
		InternalTenantID: uuid.NewString(),
		EncryptionKey:    encryptionKey,
		Status:           models.TenantStatusActive,
		Metadata:         metadataJSON,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count)
		if count > 0 {
			return apperrors.ErrSlugTaken
		}

		if err := tx.Create(tenant).Error; err != nil {
			return err
		}

		for _, code := range frameworkCodes {
			var framework models.Framework
			if err := tx.Where("code = ?", code).First(&framework).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperrors.Validation(fmt.Sprintf("unknown framework code: %s", code))
				}
				return err
			}

			link := &models.TenantFramework{
				TenantID:    tenant.InternalTenantID,
				FrameworkID: framework.ID,
				IsActive:    true,
			}
			if err := tx.Create(link).Error; err != nil {
				return err
			}

			// 把平台目录里的控制项克隆到租户范围，适用性按租户维护
			if err := cloneCatalogControls(tx, tenant.InternalTenantID, framework.ID); err != nil {
				return err
			}
		}

		admin := &models.User{
			Username:          "admin",
			TenantID:          tenant.InternalTenantID, // 新写入一律用UUID形式
			Email:             adminEmail,
			Role:              models.RoleAdmin,
			AllowedFrameworks: models.AllowedFrameworksAll,
			Status:            models.UserStatusActive,
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			return err
		}
		return tx.Create(admin).Error
	})
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(tenant)
	logger.GetLogger().WithField("slug", slug).Info("tenant provisioned")

	return &ProvisionResult{
		Tenant:               tenant,
		AdminUsername:        "admin",
		AdminInitialPassword: adminPassword,
	}, nil
}

// cloneCatalogControls 将框架的目录控制项（tenant_id为空）复制到租户名下
func cloneCatalogControls(tx *gorm.DB, tenantUUID string, frameworkID uint) error {
	var catalog []models.Control
	if err := tx.Where("framework_id = ? AND tenant_id = ''", frameworkID).Find(&catalog).Error; err != nil {
		return err
	}
	for _, c := range catalog {
		clone := models.Control{
			ControlID:    c.ControlID,
			FrameworkID:  c.FrameworkID,
			TenantID:     tenantUUID,
			Title:        c.Title,
			Description:  c.Description,
			Category:     c.Category,
			IsApplicable: true,
		}
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}
	}
	return nil
}

// Features 返回租户的激活特性键集合，取自Tenant.Metadata的features字段
func (s *TenantService) Features(tenantUUID string) ([]string, error) {
	tenant, err := s.Resolve(tenantUUID)
	if err != nil {
		return nil, err
	}

	if len(tenant.Metadata) == 0 {
		return []string{}, nil
	}

	var metadata struct {
		Features map[string]bool `json:"features"`
	}
	if err := json.Unmarshal(tenant.Metadata, &metadata); err != nil {
		return []string{}, nil
	}

	features := make([]string, 0, len(metadata.Features))
	for key, enabled := range metadata.Features {
		if enabled {
			features = append(features, key)
		}
	}
	sort.Strings(features)
	return features, nil
}

// Deactivate 停用租户。租户永不删除，只停用。
func (s *TenantService) Deactivate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusInactive)
}

// Activate 重新激活租户
func (s *TenantService) Activate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusActive)
}

func (s *TenantService) setStatus(id uint, status string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTenantUnknown
		}
		return nil, err
	}

	tenant.Status = status
	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	s.cacheInvalidate(&tenant)
	return &tenant, nil
}

// GetAllActive 获取所有激活的租户
func (s *TenantService) GetAllActive() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.Where("status = ?", models.TenantStatusActive).
		Order("created_at DESC").Find(&tenants).Error
	return tenants, err
}

// GetWithPage 租户列表（分页），仅超级用户使用
func (s *TenantService) GetWithPage(page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	if err := s.db.Model(&models.Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// ========== 缓存 ==========

func (s *TenantService) cacheGet(key string) *models.Tenant {
	if s.cache == nil {
		return nil
	}
	raw, ok := s.cache.Get(context.Background(), "tenant", key)
	if !ok {
		return nil
	}
	var tenant models.Tenant
	if err := json.Unmarshal(raw, &tenant); err != nil {
		return nil
	}
	return &tenant
}

func (s *TenantService) cacheSet(tenant *models.Tenant) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	ctx := context.Background()
	s.cache.Set(ctx, raw, "tenant", tenant.Slug)
	s.cache.Set(ctx, raw, "tenant", tenant.InternalTenantID)
}

// cacheInvalidate 开通和状态变更后必须失效，slug和UUID两个键一起删
func (s *TenantService) cacheInvalidate(tenant *models.Tenant) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(context.Background(),
		[]string{"tenant", tenant.Slug},
		[]string{"tenant", tenant.InternalTenantID},
	)
}

// ========== 验证 ==========

// ValidateSlug slug只允许小写字母、数字、下划线和连字符
func (s *TenantService) ValidateSlug(slug string) bool {
	if len(slug) < 2 || len(slug) > 50 {
		return false
	}
	for _, r := range slug {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

func (s *TenantService) validateProvisionParams(name, slug string) error {
	runeCount := utf8.RuneCountInString(name)
	if runeCount < 2 || runeCount > 100 {
		return apperrors.Validation("tenant name must be 2-100 characters")
	}
	if !s.ValidateSlug(slug) {
		return apperrors.Validation("tenant slug must be 2-50 lowercase letters, digits, '_' or '-'")
	}
	return nil
}
