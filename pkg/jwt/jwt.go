package jwt

import (
	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/config"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问令牌声明。tenant_id始终是租户内部UUID，
// 不携带slug，登录时由租户注册表完成换算。
type Claims struct {
	UserID   uint   `json:"user_id"`
	TenantID string `json:"tenant_id"` // 租户内部UUID
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager JWT管理器
type Manager struct {
	secret        string
	tokenDuration time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret string, tokenDuration time.Duration) *Manager {
	return &Manager{
		secret:        secret,
		tokenDuration: tokenDuration,
	}
}

// Generate 签发令牌，sub=用户名
func (m *Manager) Generate(userID uint, username, tenantUUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		TenantID: tenantUUID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "compliancehub",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// Verify 校验令牌签名和有效期
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// 只接受HMAC签名
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(m.secret), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.ErrTokenExpired, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenMalformed
	}

	return claims, nil
}

// TokenDuration 获取令牌有效期
func (m *Manager) TokenDuration() time.Duration {
	return m.tokenDuration
}

// 单例实现
var (
	defaultManager *Manager
	once           sync.Once
)

// GetManager 获取全局JWT管理器实例
func GetManager() *Manager {
	once.Do(func() {
		cfg := config.GetConfig()
		defaultManager = NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute)
	})
	return defaultManager
}
