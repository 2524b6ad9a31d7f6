package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/app/middleware"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/database"
)

// HealthCheckController ヘルスチェックコントローラ
type HealthCheckController struct {
	Ctx  *gin.Context
	Pool *database.ConnectionPool
}

// NewHealthCheckController ヘルスチェックコントローラを作成する
func NewHealthCheckController(ctx *gin.Context, pool *database.ConnectionPool) *HealthCheckController {
	return &HealthCheckController{
		Ctx:  ctx,
		Pool: pool,
	}
}

// HandleHealthFunc ヘルスチェックリクエストを処理するGinハンドラを返す
func HandleHealthFunc(container *container.ServiceContainer, pool *database.ConnectionPool, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, pool)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. Ping 疎通確認エンドポイント
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// 2. Status データベース接続とキャッシュの状態を返す
func (h *HealthCheckController) Status() {
	dbStatus := "ok"
	if err := h.Pool.HealthCheck(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	poolStats, _ := h.Pool.Stats()

	response.Success(h.Ctx, gin.H{
		"database":       dbStatus,
		"db_pool":        poolStats,
		"response_cache": middleware.CacheStats(),
	})
}
