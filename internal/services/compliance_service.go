package services

import (
	"encoding/json"
	"strings"
	"time"

	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/crypto"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplianceService 租户级证据、评估和合规结果的存取。
// 不透明载荷的加解密只发生在这里的出入口，落库的永远是密文token。
type ComplianceService struct {
	db         *gorm.DB
	frameworks *FrameworkService
	envelope   *crypto.Envelope // nil则惰性取进程级实例
}

func NewComplianceService(db *gorm.DB, frameworks *FrameworkService, envelope *crypto.Envelope) *ComplianceService {
	return &ComplianceService{db: db, frameworks: frameworks, envelope: envelope}
}

func (s *ComplianceService) ee() (*crypto.Envelope, error) {
	if s.envelope != nil {
		return s.envelope, nil
	}
	return crypto.Default()
}

// ========== 证据 ==========

// EvidenceInput 证据录入参数
type EvidenceInput struct {
	Filename       string
	FilePath       string
	MasterIntentID *string
	Description    string
	Tags           []string
	CollectionDate *time.Time
	Metadata       map[string]interface{}
}

// EvidenceView 解密后的证据视图
type EvidenceView struct {
	models.Evidence
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RecordEvidence 录入证据。metadata先信封加密再落库，
// master_intent_id可选，设置后证据跨框架复用。
func (s *ComplianceService) RecordEvidence(p *models.Principal, frameworkCode, controlID string, input EvidenceInput) (*models.Evidence, error) {
	control, err := s.frameworks.GetControlByRef(p.TenantUUID, frameworkCode, controlID)
	if err != nil {
		return nil, err
	}

	var encrypted string
	if len(input.Metadata) > 0 {
		envelope, err := s.ee()
		if err != nil {
			return nil, err
		}
		encrypted, err = envelope.Encrypt(input.Metadata)
		if err != nil {
			return nil, err
		}
	}

	var tags datatypes.JSON
	if len(input.Tags) > 0 {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, apperrors.Validation("tags are not serializable")
		}
		tags = raw
	}

	evidence := &models.Evidence{
		TenantID:          p.TenantUUID,
		ControlID:         control.ID,
		Filename:          input.Filename,
		FilePath:          input.FilePath,
		MasterIntentID:    input.MasterIntentID,
		UploadedBy:        p.UserID,
		CollectionDate:    input.CollectionDate,
		Description:       input.Description,
		Tags:              tags,
		EncryptedMetadata: encrypted,
	}

	if err := s.db.Create(evidence).Error; err != nil {
		return nil, err
	}
	return evidence, nil
}

// ListEvidence 租户范围内的证据列表，metadata按需解密
func (s *ComplianceService) ListEvidence(p *models.Principal, offset, limit int) ([]EvidenceView, int64, error) {
	query := s.db.Model(&models.Evidence{}).Where("tenant_id = ?", p.TenantUUID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Evidence
	err := query.Preload("Control").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]EvidenceView, 0, len(rows))
	for _, row := range rows {
		view := EvidenceView{Evidence: row}
		if row.EncryptedMetadata != "" {
			envelope, err := s.ee()
			if err != nil {
				return nil, 0, err
			}
			metadata, err := envelope.Decrypt(row.EncryptedMetadata)
			if err != nil {
				// 密文不可解密说明密钥或数据出了问题，整个操作失败
				return nil, 0, err
			}
			view.Metadata = metadata
		}
		views = append(views, view)
	}
	return views, total, nil
}

// ========== 评估 ==========

// RecordAssessment 录入AI评估结论
func (s *ComplianceService) RecordAssessment(p *models.Principal, frameworkCode, controlID string, score int, gaps, recommendations string) (*models.Assessment, error) {
	if score < 0 || score > 100 {
		return nil, apperrors.Validation("compliance_score must be between 0 and 100")
	}

	control, err := s.frameworks.GetControlByRef(p.TenantUUID, frameworkCode, controlID)
	if err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		TenantID:        p.TenantUUID,
		ControlID:       control.ID,
		ComplianceScore: score,
		Gaps:            gaps,
		Recommendations: recommendations,
		AssessedAt:      time.Now(),
	}

	if err := s.db.Create(assessment).Error; err != nil {
		return nil, err
	}
	return assessment, nil
}

// ListAssessments 租户范围内的评估列表
func (s *ComplianceService) ListAssessments(p *models.Principal, offset, limit int) ([]models.Assessment, int64, error) {
	query := s.db.Model(&models.Assessment{}).Where("tenant_id = ?", p.TenantUUID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Assessment
	err := query.Preload("Control").Order("assessed_at DESC").
		Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ========== 合规结果 ==========

// RecordResult 写入扫描结论。按(tenant_id, control_id)原地更新，
// 行级upsert由存储引擎串行化，每次写入刷新last_scanned_at。
func (s *ComplianceService) RecordResult(p *models.Principal, controlID, status string, metadata map[string]interface{}) (*models.ComplianceResult, error) {
	if !models.IsValidResultStatus(status) {
		return nil, apperrors.Validation("invalid result status")
	}

	var encrypted string
	if len(metadata) > 0 {
		envelope, err := s.ee()
		if err != nil {
			return nil, err
		}
		encrypted, err = envelope.Encrypt(metadata)
		if err != nil {
			return nil, err
		}
	}

	result := &models.ComplianceResult{
		TenantID:         p.TenantUUID,
		ControlID:        controlID,
		Status:           status,
		EvidenceMetadata: encrypted,
		LastScannedAt:    time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "control_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "evidence_metadata", "last_scanned_at", "updated_at",
		}),
	}).Create(result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResultView 解密后的合规结果视图
type ResultView struct {
	models.ComplianceResult
	EvidenceMetadata map[string]interface{} `json:"evidence_metadata,omitempty"`
}

// GetResult 按控制项编号取租户的最新结论
func (s *ComplianceService) GetResult(p *models.Principal, controlID string) (*ResultView, error) {
	var result models.ComplianceResult
	err := s.db.Where("tenant_id = ? AND control_id = ?", p.TenantUUID, controlID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &ResultView{ComplianceResult: result}
	if result.EvidenceMetadata != "" {
		envelope, err := s.ee()
		if err != nil {
			return nil, err
		}
		view.EvidenceMetadata, err = envelope.Decrypt(result.EvidenceMetadata)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

// MarkStaleResults 把超过截止时间未扫描的结论改为NOT_SCANNED，
// 由定时任务以租户级服务账号身份调用。返回受影响行数。
func (s *ComplianceService) MarkStaleResults(p *models.Principal, cutoff time.Time) (int64, error) {
	result := s.db.Model(&models.ComplianceResult{}).
		Where("tenant_id = ? AND last_scanned_at < ? AND status <> ?",
			p.TenantUUID, cutoff, models.ResultStatusNotScanned).
		Update("status", models.ResultStatusNotScanned)
	return result.RowsAffected, result.Error
}

// ========== 云资源快照 ==========

// 入库前保留的安全相关键，其余全部丢弃
var cloudSecurityKeys = map[string]bool{
	"encryption":         true,
	"encryption_at_rest": true,
	"kms_key_id":         true,
	"key_rotation":       true,
	"public_access":      true,
	"versioning":         true,
	"logging":            true,
	"mfa_delete":         true,
	"tls_version":        true,
	"iam_policies":       true,
	"network_exposure":   true,
	"retention":          true,
	"backup_enabled":     true,
	"tags":               true,
	"region":             true,
	"compliance_status":  true,
}

// ScrubCloudPayload 把云资源原始载荷裁剪到安全相关键
func ScrubCloudPayload(payload map[string]interface{}) map[string]interface{} {
	scrubbed := make(map[string]interface{})
	for key, value := range payload {
		if cloudSecurityKeys[strings.ToLower(key)] {
			scrubbed[key] = value
		}
	}
	return scrubbed
}

// RecordCloudResource 录入云资源快照：边界处脱敏，入库前信封加密
func (s *ComplianceService) RecordCloudResource(p *models.Principal, provider, resourceType, resourceID string, payload map[string]interface{}) (*models.CloudResource, error) {
	if provider == "" || resourceType == "" || resourceID == "" {
		return nil, apperrors.Validation("provider, resource_type and resource_id are required")
	}

	var encrypted string
	scrubbed := ScrubCloudPayload(payload)
	if len(scrubbed) > 0 {
		envelope, err := s.ee()
		if err != nil {
			return nil, err
		}
		encrypted, err = envelope.Encrypt(scrubbed)
		if err != nil {
			return nil, err
		}
	}

	resource := &models.CloudResource{
		TenantID:           p.TenantUUID,
		Provider:           provider,
		ResourceType:       resourceType,
		ResourceID:         resourceID,
		ComplianceMetadata: encrypted,
	}

	if err := s.db.Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// CloudResourceView 解密后的云资源视图
type CloudResourceView struct {
	models.CloudResource
	ComplianceMetadata map[string]interface{} `json:"compliance_metadata,omitempty"`
}

// GetCloudResource 按主键获取云资源。租户不匹配和行不存在返回同一个NotFound，
// 跨租户猜ID探测不到行的存在性。
func (s *ComplianceService) GetCloudResource(p *models.Principal, id uint) (*CloudResourceView, error) {
	var resource models.CloudResource
	err := s.db.First(&resource, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if resource.TenantID != p.TenantUUID && !p.IsSuperuser() {
		return nil, apperrors.ErrNotFound
	}

	view := &CloudResourceView{CloudResource: resource}
	if resource.ComplianceMetadata != "" {
		envelope, err := s.ee()
		if err != nil {
			return nil, err
		}
		view.ComplianceMetadata, err = envelope.Decrypt(resource.ComplianceMetadata)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

// ========== 审计评估 ==========

// AuditAssessmentInput 审计结论录入参数
type AuditAssessmentInput struct {
	FrameworkCode       string
	ControlID           string
	Status              string
	Remarks             string
	EvidenceRequestFlag bool
}

// RecordAuditAssessment 录入审计员结论，auditor角色唯一可写的资源
func (s *ComplianceService) RecordAuditAssessment(p *models.Principal, input AuditAssessmentInput) (*models.AuditAssessment, error) {
	if !models.IsValidAuditStatus(input.Status) {
		return nil, apperrors.Validation("invalid audit status")
	}

	framework, err := s.frameworks.GetByCode(input.FrameworkCode)
	if err != nil {
		return nil, err
	}

	assessment := &models.AuditAssessment{
		ID:                  uuid.NewString(),
		TenantID:            p.TenantUUID,
		FrameworkID:         framework.ID,
		ControlID:           input.ControlID,
		AuditorID:           p.UserID,
		Status:              input.Status,
		Remarks:             input.Remarks,
		EvidenceRequestFlag: input.EvidenceRequestFlag,
	}

	if err := s.db.Create(assessment).Error; err != nil {
		return nil, err
	}
	return assessment, nil
}

// ListAuditAssessments 租户范围内的审计结论列表
func (s *ComplianceService) ListAuditAssessments(p *models.Principal, offset, limit int) ([]models.AuditAssessment, int64, error) {
	query := s.db.Model(&models.AuditAssessment{}).Where("tenant_id = ?", p.TenantUUID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditAssessment
	err := query.Preload("Framework").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ========== 范围裁剪 ==========

// RecordScopeJustification 记录租户对标准条款的范围裁剪
func (s *ComplianceService) RecordScopeJustification(p *models.Principal, standardType, criteriaID, reasonCode, text string) (*models.ScopeJustification, error) {
	if !models.IsValidReasonCode(reasonCode) {
		return nil, apperrors.Validation("invalid reason_code")
	}
	if text == "" {
		return nil, apperrors.Validation("justification_text is required")
	}

	justification := &models.ScopeJustification{
		TenantID:          p.TenantUUID,
		StandardType:      standardType,
		CriteriaID:        criteriaID,
		ReasonCode:        reasonCode,
		JustificationText: text,
	}

	if err := s.db.Create(justification).Error; err != nil {
		return nil, err
	}
	return justification, nil
}

// ListScopeJustifications 租户范围内的裁剪记录
func (s *ComplianceService) ListScopeJustifications(p *models.Principal) ([]models.ScopeJustification, error) {
	var rows []models.ScopeJustification
	err := s.db.Where("tenant_id = ?", p.TenantUUID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}
