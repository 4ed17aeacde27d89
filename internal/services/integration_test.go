package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/crypto"
)

func getTestDSN() string {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=compliancehub_test sslmode=disable"
	}
	return dsn
}

// skipIfNoTestDB 测试数据库不可达时跳过
func skipIfNoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.Open(getTestDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping test, database not available: %v", err)
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		t.Skipf("Skipping test, database not reachable: %v", err)
		return nil
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Framework{},
		&models.TenantFramework{},
		&models.Control{},
		&models.UniversalIntent{},
		&models.IntentFrameworkCrosswalk{},
		&models.ComplianceResult{},
		&models.Evidence{},
		&models.CloudResource{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func testEnvelope(t *testing.T) *crypto.Envelope {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	env, err := crypto.New(key)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

// 每个测试使用独立的租户UUID和框架代码，互不污染
func uniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func TestIntentStatusRollup(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	tenantUUID := uuid.NewString()
	fwCode := uniqueCode("FW")
	intentID := uniqueCode("INT")

	framework := models.Framework{Code: fwCode, Name: "Rollup Test Framework", IsActive: true}
	if err := db.Create(&framework).Error; err != nil {
		t.Fatal(err)
	}

	controls := []models.Control{
		{ControlID: "C-1", FrameworkID: framework.ID, TenantID: tenantUUID, Title: "First control", IsApplicable: true},
		{ControlID: "C-2", FrameworkID: framework.ID, TenantID: tenantUUID, Title: "Second control", IsApplicable: true},
	}
	for i := range controls {
		if err := db.Create(&controls[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := db.Create(&models.UniversalIntent{IntentID: intentID, Description: "rollup test"}).Error; err != nil {
		t.Fatal(err)
	}

	svc := NewIntentService(db)
	for _, ref := range []string{"C-1", "C-2"} {
		if err := svc.Link(intentID, framework.ID, ref); err != nil {
			t.Fatal(err)
		}
	}

	// 无任何结论：PENDING
	status, err := svc.StatusRollup(intentID, tenantUUID)
	if err != nil {
		t.Fatal(err)
	}
	if status != models.IntentStatusPending {
		t.Errorf("no results: status = %q, want PENDING", status)
	}

	// C-1通过，C-2未扫描：仍然PENDING
	if err := db.Create(&models.ComplianceResult{
		TenantID: tenantUUID, ControlID: "C-1", Status: models.ResultStatusPass,
	}).Error; err != nil {
		t.Fatal(err)
	}
	status, _ = svc.StatusRollup(intentID, tenantUUID)
	if status != models.IntentStatusPending {
		t.Errorf("one of two passing: status = %q, want PENDING", status)
	}

	// C-2标记为不适用且有理由：COMPLETED
	if err := db.Model(&controls[1]).Updates(map[string]interface{}{
		"is_applicable": false,
		"justification": "covered by upstream provider",
	}).Error; err != nil {
		t.Fatal(err)
	}
	status, _ = svc.StatusRollup(intentID, tenantUUID)
	if status != models.IntentStatusCompleted {
		t.Errorf("all satisfied: status = %q, want COMPLETED", status)
	}

	// 不适用但没有理由：回到PENDING
	if err := db.Model(&controls[1]).Update("justification", "").Error; err != nil {
		t.Fatal(err)
	}
	status, _ = svc.StatusRollup(intentID, tenantUUID)
	if status != models.IntentStatusPending {
		t.Errorf("inapplicable without justification: status = %q, want PENDING", status)
	}
}

func TestStatusRollupIsolatedPerTenant(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	fwCode := uniqueCode("FW")
	intentID := uniqueCode("INT")

	framework := models.Framework{Code: fwCode, Name: "Isolation Test", IsActive: true}
	if err := db.Create(&framework).Error; err != nil {
		t.Fatal(err)
	}

	for _, tenant := range []string{tenantA, tenantB} {
		control := models.Control{ControlID: "C-1", FrameworkID: framework.ID, TenantID: tenant, Title: "Shared ref", IsApplicable: true}
		if err := db.Create(&control).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := db.Create(&models.UniversalIntent{IntentID: intentID}).Error; err != nil {
		t.Fatal(err)
	}

	svc := NewIntentService(db)
	if err := svc.Link(intentID, framework.ID, "C-1"); err != nil {
		t.Fatal(err)
	}

	// 只有租户A通过
	if err := db.Create(&models.ComplianceResult{
		TenantID: tenantA, ControlID: "C-1", Status: models.ResultStatusPass,
	}).Error; err != nil {
		t.Fatal(err)
	}

	statusA, _ := svc.StatusRollup(intentID, tenantA)
	statusB, _ := svc.StatusRollup(intentID, tenantB)
	if statusA != models.IntentStatusCompleted {
		t.Errorf("tenant A: status = %q, want COMPLETED", statusA)
	}
	if statusB != models.IntentStatusPending {
		t.Errorf("tenant B: status = %q, want PENDING", statusB)
	}
}

func TestUserDualTenantAddressing(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	slug := uniqueCode("slug")
	tenantUUID := uuid.NewString()
	tenant := models.Tenant{
		Name:             "Addressing Test",
		Slug:             slug,
		InternalTenantID: tenantUUID,
		Status:           models.TenantStatusActive,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatal(err)
	}

	// 历史行：tenant_id存的是slug而不是UUID
	legacy := models.User{
		Username: "legacy-" + uuid.NewString()[:8],
		TenantID: slug,
		Email:    "legacy@example.com",
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := legacy.SetPassword("pw123456"); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatal(err)
	}

	tenants := NewTenantService(db, nil)
	users := NewUserService(db, tenants)

	// 按租户查询要同时命中slug寻址的历史行
	found, err := users.GetByUsernameAndTenant(legacy.Username, &tenant)
	if err != nil {
		t.Fatalf("legacy slug-addressed user not found: %v", err)
	}
	if found.ID != legacy.ID {
		t.Errorf("found wrong user: %d", found.ID)
	}

	// 新建用户的tenant_id必须归一化为内部UUID
	created, err := users.Create(&tenant, CreateUserRequest{
		Username: "fresh-" + uuid.NewString()[:8],
		Email:    "fresh@example.com",
		Password: "pw123456",
		Role:     models.RoleUser,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.TenantID != tenantUUID {
		t.Errorf("new user tenant_id = %q, want internal UUID %q", created.TenantID, tenantUUID)
	}
}

func TestCloudResourceExistenceHiding(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	svc := NewComplianceService(db, NewFrameworkService(db), testEnvelope(t))

	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	owner := principal(models.RoleAdmin, tenantA, nil)

	resource, err := svc.RecordCloudResource(owner, "aws", "s3_bucket", "arn:aws:s3:::bucket-"+uuid.NewString()[:8],
		map[string]interface{}{"encryption": "AES256", "public_access": false})
	if err != nil {
		t.Fatal(err)
	}

	// 本租户可见
	if _, err := svc.GetCloudResource(owner, resource.ID); err != nil {
		t.Fatalf("owner cannot read own resource: %v", err)
	}

	// 跨租户按ID查询与行不存在不可区分：同一个NotFound
	stranger := principal(models.RoleAdmin, tenantB, nil)
	_, crossErr := svc.GetCloudResource(stranger, resource.ID)
	_, missingErr := svc.GetCloudResource(stranger, resource.ID+99999)
	if !errors.Is(crossErr, apperrors.ErrNotFound) {
		t.Errorf("cross-tenant read: expected not found, got %v", crossErr)
	}
	if !errors.Is(missingErr, apperrors.ErrNotFound) {
		t.Errorf("missing row read: expected not found, got %v", missingErr)
	}
	if crossErr.Error() != missingErr.Error() {
		t.Errorf("cross-tenant and missing-row errors differ: %q vs %q", crossErr, missingErr)
	}

	// 超级用户不受租户边界限制
	super := principal(models.RoleSuperuser, tenantB, nil)
	if _, err := svc.GetCloudResource(super, resource.ID); err != nil {
		t.Errorf("superuser read rejected: %v", err)
	}
}

func TestRecordResultUpsert(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	svc := NewComplianceService(db, NewFrameworkService(db), testEnvelope(t))

	tenantUUID := uuid.NewString()
	p := principal(models.RoleUser, tenantUUID, nil)
	controlLabel := "C-" + uuid.NewString()[:8]

	first, err := svc.RecordResult(p, controlLabel, models.ResultStatusFail, nil)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := svc.RecordResult(p, controlLabel, models.ResultStatusPass,
		map[string]interface{}{"scanner": "nightly"}); err != nil {
		t.Fatal(err)
	}

	// 同键重写必须原地更新而不是新增行
	var count int64
	db.Model(&models.ComplianceResult{}).
		Where("tenant_id = ? AND control_id = ?", tenantUUID, controlLabel).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", count)
	}

	var row models.ComplianceResult
	if err := db.Where("tenant_id = ? AND control_id = ?", tenantUUID, controlLabel).
		First(&row).Error; err != nil {
		t.Fatal(err)
	}
	if row.Status != models.ResultStatusPass {
		t.Errorf("status = %q, want PASS", row.Status)
	}
	if !row.LastScannedAt.After(first.LastScannedAt) {
		t.Errorf("last_scanned_at not refreshed: %v -> %v", first.LastScannedAt, row.LastScannedAt)
	}

	view, err := svc.GetResult(p, controlLabel)
	if err != nil {
		t.Fatal(err)
	}
	if view.EvidenceMetadata["scanner"] != "nightly" {
		t.Errorf("metadata lost on upsert: %v", view.EvidenceMetadata)
	}
}

func TestEvidenceMetadataEncryptedAtRest(t *testing.T) {
	db := skipIfNoTestDB(t)
	if db == nil {
		return
	}

	env := testEnvelope(t)
	frameworks := NewFrameworkService(db)
	svc := NewComplianceService(db, frameworks, env)

	tenantUUID := uuid.NewString()
	fwCode := uniqueCode("FW")
	p := principal(models.RoleUser, tenantUUID, nil)

	framework := models.Framework{Code: fwCode, Name: "Evidence Test", IsActive: true}
	if err := db.Create(&framework).Error; err != nil {
		t.Fatal(err)
	}
	control := models.Control{ControlID: "C-1", FrameworkID: framework.ID, TenantID: tenantUUID, Title: "Evidence control", IsApplicable: true}
	if err := db.Create(&control).Error; err != nil {
		t.Fatal(err)
	}

	metadata := map[string]interface{}{
		"source":     "s3-audit",
		"account_id": "123456789012",
	}
	evidence, err := svc.RecordEvidence(p, fwCode, "C-1", EvidenceInput{
		Filename: "audit.json",
		Metadata: metadata,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 落库的是密文token，不是明文
	var stored models.Evidence
	if err := db.First(&stored, evidence.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.EncryptedMetadata == "" {
		t.Fatal("metadata was not persisted")
	}
	if strings.Contains(stored.EncryptedMetadata, "s3-audit") ||
		strings.Contains(stored.EncryptedMetadata, "123456789012") {
		t.Error("stored metadata contains plaintext")
	}
	if decrypted, err := env.Decrypt(stored.EncryptedMetadata); err != nil || decrypted["source"] != "s3-audit" {
		t.Errorf("stored token does not decrypt to input: %v %v", decrypted, err)
	}

	// 读路径解密还原
	views, _, err := svc.ListEvidence(p, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 evidence row, got %d", len(views))
	}
	if views[0].Metadata["source"] != "s3-audit" || views[0].Metadata["account_id"] != "123456789012" {
		t.Errorf("round trip lost metadata: %v", views[0].Metadata)
	}
}
