package router

import (
	"compliancehub/internal/database"
	"compliancehub/internal/handlers"
	"compliancehub/internal/middleware"
	"compliancehub/internal/services"
	"compliancehub/pkg/response"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()

	// 服务层：租户解析带Redis缓存，合规服务使用进程级信封密钥
	tenantService := services.NewTenantService(db, database.GetCache())
	userService := services.NewUserService(db, tenantService)
	frameworkService := services.NewFrameworkService(db)
	intentService := services.NewIntentService(db)
	complianceService := services.NewComplianceService(db, frameworkService, nil)
	gate := services.NewGate(tenantService)

	auth := middleware.NewAuthMiddleware(userService, tenantService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由（login无需认证，register需要管理员）
		authHandler := handlers.NewAuthHandler(userService, tenantService, gate)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", auth.RequireLogin(), authHandler.Register)
		}

		// 框架与控制项
		frameworkHandler := handlers.NewFrameworkHandler(frameworkService, gate)
		api.GET("/frameworks", auth.RequireLogin(), frameworkHandler.List)

		controlHandler := handlers.NewControlHandler(frameworkService, gate)
		controls := api.Group("/controls", auth.RequireLogin())
		{
			controls.GET("", controlHandler.List)
			controls.PUT("/applicability", controlHandler.UpdateApplicability)
		}

		// 证据与评估
		evidenceHandler := handlers.NewEvidenceHandler(complianceService, gate)
		evidence := api.Group("/evidence", auth.RequireLogin())
		{
			evidence.GET("", evidenceHandler.List)
			evidence.POST("", evidenceHandler.Create)
		}

		assessmentHandler := handlers.NewAssessmentHandler(complianceService, gate)
		assessments := api.Group("/assessments", auth.RequireLogin())
		{
			assessments.GET("", assessmentHandler.List)
			assessments.POST("", assessmentHandler.Create)
		}

		auditHandler := handlers.NewAuditAssessmentHandler(complianceService, gate)
		audits := api.Group("/audit_assessments", auth.RequireLogin())
		{
			audits.GET("", auditHandler.List)
			audits.POST("", auditHandler.Create)
		}

		// 扫描结论（外部扫描器写入）
		resultHandler := handlers.NewResultHandler(complianceService, gate)
		results := api.Group("/compliance_results", auth.RequireLogin())
		{
			results.POST("", resultHandler.Record)
			results.GET("/:control_id", resultHandler.Get)
		}

		// 云资源（敏感负载字段级加密）
		cloudHandler := handlers.NewCloudResourceHandler(complianceService, gate)
		cloud := api.Group("/cloud_resources", auth.RequireLogin())
		{
			cloud.POST("", cloudHandler.Create)
			cloud.GET("/:id", cloudHandler.Get)
		}

		// 范围豁免说明
		scopeHandler := handlers.NewScopeJustificationHandler(complianceService, gate)
		scopes := api.Group("/scope_justifications", auth.RequireLogin())
		{
			scopes.GET("", scopeHandler.List)
			scopes.POST("", scopeHandler.Create)
		}

		// 统一意图交叉映射
		intentHandler := handlers.NewIntentHandler(intentService, gate)
		intents := api.Group("/intents", auth.RequireLogin())
		{
			intents.GET("", intentHandler.List)
			intents.GET("/:intent_id/controls", intentHandler.Controls)
			intents.GET("/:intent_id/status", intentHandler.Status)
		}

		// 主模板
		templateHandler := handlers.NewMasterTemplateHandler(frameworkService, gate)
		templates := api.Group("/master_templates", auth.RequireLogin())
		{
			templates.GET("", templateHandler.List)
			templates.GET("/:id", templateHandler.Get)
		}

		// 租户生命周期（仅平台管理员）
		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := api.Group("/tenants", auth.RequireLogin(), auth.RequireSuperuser())
		{
			tenants.POST("", tenantHandler.Provision)
			tenants.GET("", tenantHandler.List)
			tenants.POST("/:id/deactivate", tenantHandler.Deactivate)
			tenants.POST("/:id/activate", tenantHandler.Activate)
			tenants.GET("/:id/features", tenantHandler.Features)
		}
	}
}

// 健康检查
func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "ComplianceHub",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

// ping测试
func ping(c *gin.Context) {
	response.Success(c, "pong")
}
