package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 認証ミドルウェアを初期化する
func InitAuthMiddleware(cfg *config.Config) {
	jwtService = services.NewJWTService(cfg)
}

// extractToken Authorizationヘッダーからトークンを取り出す
func extractToken(authHeader string) string {
	// "Bearer " プレフィックスを取り除く
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// AuthenticateAdmin 管理者権限を検証する
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "認証トークンが必要です")
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			response.Unauthorized(c, "トークンが無効か期限切れです")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c, "トークンのクレームが不正です")
			c.Abort()
			return
		}

		// 管理者ロールかどうかを確認する
		if role, exists := claims["role"].(string); !exists || role != "admin" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "管理者権限が必要です", nil)
			c.Abort()
			return
		}

		// クレームをコンテキストに保存する
		c.Set("userID", claims["user_id"])
		c.Set("username", claims["username"])
		c.Set("claims", claims)
		c.Next()
	}
}
