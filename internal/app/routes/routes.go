package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/makino-seiya/kansatsunikki/internal/app/controllers"
	"github.com/makino-seiya/kansatsunikki/internal/app/middleware"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/database"
)

// SetupRouter ルーターを初期化して返す
func SetupRouter(pool *database.ConnectionPool, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// CORSミドルウェア
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// サービスコンテナを作成
	serviceContainer := container.NewServiceContainer(pool.GetDB(), cfg)
	// 認証ミドルウェアを初期化
	middleware.InitAuthMiddleware(cfg)
	// Swaggerドキュメントのルート
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer, pool)
	return r
}

// registerRoutes 全APIルートを設定する
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
	pool *database.ConnectionPool,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container, pool)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 公開ルートを登録する
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
	pool *database.ConnectionPool,
) {
	// IP単位の流量制限。毎秒10リクエスト、バースト20まで
	api.Use(middleware.IPRateLimiter(10, 20))

	// ヘルスチェック
	api.GET("/ping", controllers.HandleHealthFunc(container, pool, "ping"))
	api.GET("/health", controllers.HandleHealthFunc(container, pool, "status"))

	// 認証
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 植物一覧（公開）
	api.GET("/plants", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}),
		controllers.HandlePlantFunc(container, "getActivePlants"))

	// 観察記録
	recordGroup := api.Group("/records")
	recordGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}),
		controllers.HandleRecordFunc(container, "getRecords"))
	recordGroup.GET("/today", controllers.HandleRecordFunc(container, "getTodayStatus"))
	recordGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}),
		controllers.HandleRecordFunc(container, "getRecord"))
	recordGroup.POST("", controllers.HandleRecordFunc(container, "createRecord"))
	recordGroup.PUT("/:id", controllers.HandleRecordFunc(container, "updateRecord"))
	recordGroup.DELETE("/:id", controllers.HandleRecordFunc(container, "deleteRecord"))

	// 画像
	api.POST("/upload/image", middleware.PathRateLimiter(5, 10), controllers.HandleImageFunc(container, "uploadImage"))
	api.GET("/images/:filename", controllers.HandleImageFunc(container, "getImage"))
}

// registerAuthenticatedRoutes 認証が必要なルートを登録する
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/admin")
	auth.Use(middleware.AuthenticateAdmin())
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 植物管理
	auth.GET("/plants", controllers.HandlePlantFunc(container, "getAllPlants"))
	auth.POST("/plants", controllers.HandlePlantFunc(container, "createPlant"))
	auth.PUT("/plants/:id", controllers.HandlePlantFunc(container, "updatePlant"))
	auth.DELETE("/plants/:id", controllers.HandlePlantFunc(container, "deactivatePlant"))

	// ユーザー管理
	auth.GET("/users", controllers.HandleUserFunc(container, "getUsers"))
	auth.POST("/users", controllers.HandleUserFunc(container, "createUser"))
}
