package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// 角色常量
const (
	RoleSuperuser = "superuser"
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleAuditor   = "auditor"
)

// AllowedFrameworksAll 框架白名单的全集标记
const AllowedFrameworksAll = "ALL"

// User 用户模型。TenantID列历史上混存租户slug和内部UUID两种形式，
// 读取时两种都接受，换算只经过租户注册表。
type User struct {
	BaseModel
	Username          string     `json:"username" gorm:"not null;size:50;uniqueIndex:idx_username_tenant"`
	TenantID          string     `json:"tenant_id" gorm:"not null;size:50;uniqueIndex:idx_username_tenant;index"`
	Email             string     `json:"email" gorm:"not null;size:100;index"`
	PasswordHash      string     `json:"-" gorm:"not null;size:255"`
	Role              string     `json:"role" gorm:"not null;default:'user';size:20"`
	AllowedFrameworks string     `json:"allowed_frameworks" gorm:"default:'ALL';size:500"` // 逗号分隔的框架代码，或字面量ALL
	Status            string     `json:"status" gorm:"default:'active';size:20"`
	LastLoginAt       *time.Time `json:"last_login_at"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsActive 用户是否激活
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// FrameworkAllowList 解析框架白名单，全集返回nil
func (u *User) FrameworkAllowList() []string {
	raw := strings.TrimSpace(u.AllowedFrameworks)
	if raw == "" || raw == AllowedFrameworksAll {
		return nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if code := strings.TrimSpace(p); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// IsValidRole 角色是否合法
func IsValidRole(role string) bool {
	switch role {
	case RoleSuperuser, RoleAdmin, RoleUser, RoleAuditor:
		return true
	default:
		return false
	}
}
