package main

import (
	"compliancehub/internal/database"
	"compliancehub/internal/models"
	"compliancehub/internal/services"
	"compliancehub/pkg/logger"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()
	frameworkService := services.NewFrameworkService(db)
	tenantService := services.NewTenantService(db, database.GetCache())
	userService := services.NewUserService(db, tenantService)

	// 1. 平台目录级框架和控制项
	if err := seedFrameworks(db, frameworkService); err != nil {
		return fmt.Errorf("初始化合规框架失败: %v", err)
	}

	// 2. 统一意图和交叉映射
	if err := seedIntents(db); err != nil {
		return fmt.Errorf("初始化统一意图失败: %v", err)
	}

	// 3. 策略文档母版
	if err := seedMasterTemplates(db); err != nil {
		return fmt.Errorf("初始化策略母版失败: %v", err)
	}

	// 4. 开通默认租户（含租户管理员）
	if err := seedDefaultTenant(db, tenantService); err != nil {
		return fmt.Errorf("开通默认租户失败: %v", err)
	}

	// 5. 创建平台超级管理员
	if err := seedSuperuser(db, tenantService, userService); err != nil {
		return fmt.Errorf("创建平台管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// seedFrameworks 创建内置框架和目录级控制项，已存在的框架跳过
func seedFrameworks(db *gorm.DB, frameworkService *services.FrameworkService) error {
	type frameworkSeed struct {
		code     string
		name     string
		version  string
		controls []models.Control
	}

	seeds := []frameworkSeed{
		{
			code:    models.FrameworkISO27001,
			name:    "ISO/IEC 27001 Information Security Management",
			version: "2022",
			controls: []models.Control{
				{ControlID: "A.5.15", Title: "Access control", Category: "Organizational controls",
					Description: "Rules to control physical and logical access to information and other associated assets shall be established and implemented."},
				{ControlID: "A.5.17", Title: "Authentication information", Category: "Organizational controls",
					Description: "Allocation and management of authentication information shall be controlled by a management process."},
				{ControlID: "A.8.24", Title: "Use of cryptography", Category: "Technological controls",
					Description: "Rules for the effective use of cryptography, including cryptographic key management, shall be defined and implemented."},
			},
		},
		{
			code:    models.FrameworkSOC2,
			name:    "SOC 2 Trust Services Criteria",
			version: "2017",
			controls: []models.Control{
				{ControlID: "CC6.1", Title: "Logical access security", Category: "Common Criteria",
					Description: "The entity implements logical access security software, infrastructure, and architectures over protected information assets."},
				{ControlID: "CC6.6", Title: "External access boundaries", Category: "Common Criteria",
					Description: "The entity implements logical access security measures to protect against threats from sources outside its system boundaries."},
			},
		},
		{
			code:    models.FrameworkNISTCSF,
			name:    "NIST Cybersecurity Framework",
			version: "2.0",
			controls: []models.Control{
				{ControlID: "PR.AA-01", Title: "Identity and credential management", Category: "Protect",
					Description: "Identities and credentials for authorized users, services, and hardware are managed by the organization."},
				{ControlID: "PR.DS-01", Title: "Data-at-rest protection", Category: "Protect",
					Description: "The confidentiality, integrity, and availability of data-at-rest are protected."},
			},
		},
		{
			code:    models.FrameworkAIFramework,
			name:    "AI Governance Framework",
			version: "1.0",
			controls: []models.Control{
				{ControlID: "AI-1.1", Title: "AI system inventory", Category: "Govern",
					Description: "An inventory of AI systems and their intended purposes is maintained and kept current."},
				{ControlID: "AI-2.3", Title: "Training data governance", Category: "Map",
					Description: "Provenance, quality, and access restrictions of training data are documented and enforced."},
			},
		},
	}

	for _, seed := range seeds {
		var count int64
		db.Model(&models.Framework{}).Where("code = ?", seed.code).Count(&count)
		if count > 0 {
			continue
		}

		if _, err := frameworkService.SeedFramework(seed.code, seed.name, seed.version, seed.controls); err != nil {
			return err
		}
		logger.GetLogger().Infof("Framework %s seeded with %d catalog controls", seed.code, len(seed.controls))
	}
	return nil
}

// seedIntents 创建统一意图及其跨框架交叉映射
func seedIntents(db *gorm.DB) error {
	intents := []models.UniversalIntent{
		{IntentID: "INT-001-ACCESS", Category: "Access Control (IAM)",
			Description: "Restrict logical access to information assets to authorized identities."},
		{IntentID: "INT-002-CRYPTO", Category: "Cryptography & Key Management",
			Description: "Protect data at rest and in transit with managed cryptographic controls."},
	}

	for i := range intents {
		var count int64
		db.Model(&models.UniversalIntent{}).Where("intent_id = ?", intents[i].IntentID).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&intents[i]).Error; err != nil {
			return err
		}
	}

	// intent_id -> 框架代码 -> 控制项引用
	crosswalk := map[string]map[string]string{
		"INT-001-ACCESS": {
			models.FrameworkISO27001: "A.5.15",
			models.FrameworkSOC2:     "CC6.1",
			models.FrameworkNISTCSF:  "PR.AA-01",
		},
		"INT-002-CRYPTO": {
			models.FrameworkISO27001: "A.8.24",
			models.FrameworkNISTCSF:  "PR.DS-01",
		},
	}

	intentService := services.NewIntentService(db)
	for intentID, refs := range crosswalk {
		for code, controlRef := range refs {
			var framework models.Framework
			if err := db.Where("code = ?", code).First(&framework).Error; err != nil {
				return err
			}
			if err := intentService.Link(intentID, framework.ID, controlRef); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedMasterTemplates 创建策略文档母版目录
func seedMasterTemplates(db *gorm.DB) error {
	var count int64
	db.Model(&models.MasterTemplate{}).Count(&count)
	if count > 0 {
		return nil
	}

	templates := []models.MasterTemplate{
		{
			Name:         "Information Security Policy",
			DocumentType: "policy",
			Description:  "Organization-wide information security policy master document.",
			Sections:     mustJSON([]string{"Purpose", "Scope", "Roles and Responsibilities", "Policy Statements", "Review Cycle"}),
		},
		{
			Name:         "Access Control Procedure",
			DocumentType: "procedure",
			Description:  "Procedure for granting, reviewing and revoking access to systems.",
			Sections:     mustJSON([]string{"Provisioning", "Periodic Review", "Revocation", "Emergency Access"}),
		},
	}

	for i := range templates {
		if err := db.Create(&templates[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedDefaultTenant 开通默认租户，初始管理员口令仅在首次开通时打印一次
func seedDefaultTenant(db *gorm.DB, tenantService *services.TenantService) error {
	var count int64
	db.Model(&models.Tenant{}).Where("slug = ?", models.DefaultTenantSlug).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}

	result, err := tenantService.Provision(
		"Default Tenant",
		models.DefaultTenantSlug,
		"admin@example.com",
		[]string{models.FrameworkISO27001, models.FrameworkSOC2, models.FrameworkNISTCSF, models.FrameworkAIFramework},
		nil,
	)
	if err != nil {
		return err
	}

	logger.GetLogger().Infof("默认租户创建成功 - 管理员: %s, 初始口令: %s（请立即轮换）",
		result.AdminUsername, result.AdminInitialPassword)
	return nil
}

// seedSuperuser 在默认租户下创建平台超级管理员
func seedSuperuser(db *gorm.DB, tenantService *services.TenantService, userService *services.UserService) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSuperuser).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("平台管理员已存在，跳过创建")
		return nil
	}

	tenant, err := tenantService.Resolve(models.DefaultTenantSlug)
	if err != nil {
		return err
	}

	user, err := userService.Create(tenant, services.CreateUserRequest{
		Username:          "superadmin",
		Email:             "superadmin@example.com",
		Password:          "Admin@123",
		Role:              models.RoleSuperuser,
		AllowedFrameworks: "ALL",
	})
	if err != nil {
		return err
	}

	logger.GetLogger().Infof("平台管理员创建成功 - 用户名: %s, 密码: Admin@123（请立即修改）", user.Username)
	return nil
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
