package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
)

// InterfaceJWTController 認証コントローラのインターフェース
type InterfaceJWTController interface {
	Login()
}

// JWTController 管理者ログインを処理する
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 新しい認証コントローラを作成する
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest ログインリクエスト
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// HandleJWTFunc 認証リクエストを処理するGinハンドラを返す
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. Login 管理者としてログインしてJWTトークンを取得する
// @Summary 管理者ログイン
// @Description ユーザー名とパスワードで認証してJWTトークンを発行する
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "ログイン情報"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "ユーザー名とパスワードが必要です", nil)
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthFailed) {
			response.Fail(c.Ctx, code.ErrAuthFailed, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "認証処理に失敗しました", nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	token, err := jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		response.ServerError(c.Ctx)
		return
	}

	response.Success(c.Ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}
