package database

import (
	"compliancehub/internal/models"
	"compliancehub/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Framework{},
		&models.TenantFramework{},
		&models.Control{},
		&models.UniversalIntent{},
		&models.IntentFrameworkCrosswalk{},
		&models.Evidence{},
		&models.ComplianceResult{},
		&models.Assessment{},
		&models.AuditAssessment{},
		&models.CloudResource{},
		&models.ScopeJustification{},
		&models.MasterTemplate{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}

// AuditTenantAddressing 启动时清点tenant_id列仍为slug形式的用户并告警。
// 历史数据混存slug和UUID，按约定不做静默改写，只暴露不一致。
func AuditTenantAddressing() error {
	appLogger := logger.GetLogger()

	var tenants []models.Tenant
	if err := DB.Find(&tenants).Error; err != nil {
		return err
	}

	for _, tenant := range tenants {
		var count int64
		if err := DB.Model(&models.User{}).Where("tenant_id = ?", tenant.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			appLogger.Warnf("tenant %q has %d user(s) addressed by slug instead of internal UUID; reads accept both, new writes use the UUID", tenant.Slug, count)
		}
	}

	return nil
}
