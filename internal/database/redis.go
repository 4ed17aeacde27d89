package database

import (
	"compliancehub/pkg/cache"
	"compliancehub/pkg/config"
	"sync"
)

var (
	cacheInstance *cache.Client
	cacheOnce     sync.Once
)

// GetCache 获取Redis缓存的单例实例
func GetCache() *cache.Client {
	cacheOnce.Do(func() {
		cfg := config.GetConfig()
		cacheInstance = cache.New(&cfg.Redis)
	})
	return cacheInstance
}

// CloseCache 关闭Redis连接
func CloseCache() error {
	if cacheInstance != nil {
		return cacheInstance.Close()
	}
	return nil
}
