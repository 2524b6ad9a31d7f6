package container

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// ServiceContainer 全サービスの依存性注入を管理する
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// 基盤サービス
	jwtService     services.InterfaceJWTService
	cacheService   services.InterfaceRecordCacheService
	storageService services.InterfaceStorageService

	// 業務サービス
	recordService services.InterfaceRecordService
	queryService  services.InterfaceQueryService
	plantService  services.InterfacePlantService
	userService   services.InterfaceUserService

	mu sync.RWMutex
}

// NewServiceContainer 新しいサービスコンテナを作成する
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("データベース接続がありません")
	}

	if cfg == nil {
		panic("設定がありません")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 全サービスを初期化する
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 基盤サービスを初期化
	c.jwtService = services.NewJWTService(c.config)

	// Redis接続を確認。失敗してもキャッシュ無しで継続する
	cache := services.NewRecordCacheService(c.config)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rcs, ok := cache.(*services.RecordCacheService); ok {
		if err := rcs.Ping(ctx); err != nil {
			logger.Warning("Redis接続に失敗しました: %v。キャッシュ無しで起動します", err)
			cache = nil
		}
	}
	c.cacheService = cache

	// MinIOストレージを初期化。失敗しても画像機能無しで継続する
	storage, err := services.NewStorageService(c.config)
	if err != nil {
		logger.Warning("ストレージ初期化に失敗しました: %v。画像機能無しで起動します", err)
		storage = nil
	}
	c.storageService = storage

	// 業務サービスを初期化
	c.recordService = services.NewRecordService(c.db, c.config)
	c.queryService = services.NewQueryService(c.db, c.config, c.cacheService)
	c.plantService = services.NewPlantService(c.db, c.config)
	c.userService = services.NewUserService(c.db, c.config)
}

// GetService 指定した名前のサービスを取得する
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "cache":
		return c.cacheService
	case "storage":
		return c.storageService
	case "record":
		return c.recordService
	case "query":
		return c.queryService
	case "plant":
		return c.plantService
	case "user":
		return c.userService
	default:
		return nil
	}
}

// SetService 指定した名前のサービスを差し替える
func (c *ServiceContainer) SetService(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "jwt":
		c.jwtService, _ = service.(services.InterfaceJWTService)
	case "cache":
		c.cacheService, _ = service.(services.InterfaceRecordCacheService)
	case "storage":
		c.storageService, _ = service.(services.InterfaceStorageService)
	case "record":
		c.recordService, _ = service.(services.InterfaceRecordService)
	case "query":
		c.queryService, _ = service.(services.InterfaceQueryService)
	case "plant":
		c.plantService, _ = service.(services.InterfacePlantService)
	case "user":
		c.userService, _ = service.(services.InterfaceUserService)
	}
}

// GetDB データベース接続を取得する
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
