package models

// Principal 认证后的调用方，贯穿一次请求的授权上下文。
// TenantUUID永远是租户内部UUID，不会是slug。
type Principal struct {
	UserID            uint     `json:"user_id"`
	Username          string   `json:"username"`
	TenantUUID        string   `json:"tenant_id"`
	Role              string   `json:"role"`
	AllowedFrameworks []string `json:"allowed_frameworks"` // nil表示ALL
}

// IsSuperuser 是否平台超级用户
func (p *Principal) IsSuperuser() bool {
	return p.Role == RoleSuperuser
}

// AllowsFramework 框架代码是否在白名单内
func (p *Principal) AllowsFramework(code string) bool {
	if p.AllowedFrameworks == nil {
		return true
	}
	for _, allowed := range p.AllowedFrameworks {
		if allowed == code {
			return true
		}
	}
	return false
}
