package services

import (
	"time"

	"compliancehub/internal/models"
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/logger"

	"gorm.io/gorm"
)

// dummyPasswordHash 用户不存在时也跑一次bcrypt比较，
// 让用户未命中和口令错误的耗时不可区分。
// 对应明文是随机串，永远比对失败。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService 用户与凭证解析服务
type UserService struct {
	db      *gorm.DB
	tenants *TenantService
}

func NewUserService(db *gorm.DB, tenants *TenantService) *UserService {
	return &UserService{db: db, tenants: tenants}
}

// Authenticate 把登录凭证换算成(用户, 租户)。
// 失败返回具体分类错误供日志区分，HTTP边界统一映射为invalid credentials。
func (s *UserService) Authenticate(username, password, tenantHint string) (*models.User, *models.Tenant, error) {
	if tenantHint == "" {
		tenantHint = models.DefaultTenantSlug
	}

	tenant, err := s.tenants.Resolve(tenantHint)
	if err != nil {
		// 保持与用户未命中一致的KDF耗时
		_ = (&models.User{PasswordHash: dummyPasswordHash}).CheckPassword(password)
		return nil, nil, err
	}

	user, err := s.GetByUsernameAndTenant(username, tenant)
	if err != nil {
		_ = (&models.User{PasswordHash: dummyPasswordHash}).CheckPassword(password)
		return nil, nil, err
	}

	if !user.CheckPassword(password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, nil, apperrors.ErrUserInactive
	}

	return user, tenant, nil
}

// GetByUsernameAndTenant 按(用户名, 租户)定位用户。
// tenant_id列历史上混存slug和UUID，两种寻址都接受。
func (s *UserService) GetByUsernameAndTenant(username string, tenant *models.Tenant) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND tenant_id IN (?, ?)",
		username, tenant.Slug, tenant.InternalTenantID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID 按主键获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserRequest 用户创建参数
type CreateUserRequest struct {
	Username          string
	Email             string
	Password          string
	Role              string
	AllowedFrameworks string
}

// Create 在指定租户下创建用户。写入时tenant_id一律归一化为内部UUID。
func (s *UserService) Create(tenant *models.Tenant, req CreateUserRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperrors.Validation("username and password are required")
	}
	if !models.IsValidRole(req.Role) {
		return nil, apperrors.Validation("invalid role")
	}

	allowedFrameworks := req.AllowedFrameworks
	if allowedFrameworks == "" {
		allowedFrameworks = models.AllowedFrameworksAll
	}

	var count int64
	s.db.Model(&models.User{}).
		Where("username = ? AND tenant_id IN (?, ?)", req.Username, tenant.Slug, tenant.InternalTenantID).
		Count(&count)
	if count > 0 {
		return nil, apperrors.ErrUsernameTaken
	}

	user := &models.User{
		Username:          req.Username,
		TenantID:          tenant.InternalTenantID,
		Email:             req.Email,
		Role:              req.Role,
		AllowedFrameworks: allowedFrameworks,
		Status:            models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPrincipal 把用户和租户固化为请求级授权上下文。
// 白名单从数据库实时读取，不信任令牌签发时的快照。
func (s *UserService) BuildPrincipal(user *models.User, tenant *models.Tenant) *models.Principal {
	return &models.Principal{
		UserID:            user.ID,
		Username:          user.Username,
		TenantUUID:        tenant.InternalTenantID,
		Role:              user.Role,
		AllowedFrameworks: user.FrameworkAllowList(),
	}
}

// UpdateLastLogin 更新最后登录时间，失败只记日志不影响登录
func (s *UserService) UpdateLastLogin(userID uint) {
	now := time.Now()
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", &now).Error; err != nil {
		logger.GetLogger().WithError(err).Warn("failed to update last login time")
	}
}
