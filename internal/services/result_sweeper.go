package services

import (
	"time"

	"compliancehub/internal/models"
	"compliancehub/pkg/config"
	"compliancehub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ResultSweeper 定期把长期未扫描的合规结论降级为NOT_SCANNED。
// 每个租户以独立的服务账号身份走授权闸门，不绕过租户隔离。
type ResultSweeper struct {
	tenants    *TenantService
	compliance *ComplianceService
	gate       *Gate
	staleAfter time.Duration
	cronExpr   string
	cron       *cron.Cron
}

func NewResultSweeper(tenants *TenantService, compliance *ComplianceService, gate *Gate, cfg *config.SweepConfig) *ResultSweeper {
	staleAfter, err := time.ParseDuration(cfg.StaleAfter)
	if err != nil || staleAfter <= 0 {
		staleAfter = 30 * 24 * time.Hour
	}

	return &ResultSweeper{
		tenants:    tenants,
		compliance: compliance,
		gate:       gate,
		staleAfter: staleAfter,
		cronExpr:   cfg.Cron,
	}
}

// Start 注册定时任务
func (s *ResultSweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cronExpr, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	logger.GetLogger().Infof("result sweeper started, cron=%q stale_after=%s", s.cronExpr, s.staleAfter)
	return nil
}

// Stop 停止定时任务
func (s *ResultSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep 扫一遍所有激活租户的过期结论
func (s *ResultSweeper) Sweep() {
	appLogger := logger.GetLogger()

	tenants, err := s.tenants.GetAllActive()
	if err != nil {
		appLogger.WithError(err).Error("result sweep: failed to list tenants")
		return
	}

	cutoff := time.Now().Add(-s.staleAfter)
	for _, tenant := range tenants {
		principal := serviceAccountPrincipal(tenant.InternalTenantID)

		if err := s.gate.Authorize(principal, OpWrite, Target{
			TenantUUID: tenant.InternalTenantID,
			Resource:   ResourceComplianceResult,
		}); err != nil {
			appLogger.WithError(err).WithField("tenant", tenant.Slug).
				Warn("result sweep: authorization denied")
			continue
		}

		affected, err := s.compliance.MarkStaleResults(principal, cutoff)
		if err != nil {
			appLogger.WithError(err).WithField("tenant", tenant.Slug).
				Error("result sweep: failed to mark stale results")
			continue
		}
		if affected > 0 {
			appLogger.WithField("tenant", tenant.Slug).
				Infof("result sweep: %d result(s) marked NOT_SCANNED", affected)
		}
	}
}

// serviceAccountPrincipal 租户级服务账号：超级角色但只携带单个租户范围
func serviceAccountPrincipal(tenantUUID string) *models.Principal {
	return &models.Principal{
		Username:   "svc-result-sweeper",
		TenantUUID: tenantUUID,
		Role:       models.RoleSuperuser,
	}
}
