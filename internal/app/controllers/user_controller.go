package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// InterfaceUserController 管理ユーザーコントローラのインターフェース
type InterfaceUserController interface {
	GetUsers()
	CreateUser()
}

// UserController 管理ユーザー関連のリクエストを処理する
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 新しいユーザーコントローラを作成する
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateUserRequest ユーザー作成リクエスト
type CreateUserRequest struct {
	Username string `json:"username" binding:"required" example:"admin2"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// HandleUserFunc ユーザーリクエストを処理するGinハンドラを返す
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "createUser":
			controller.CreateUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. GetUsers 管理ユーザーの一覧を取得する
// @Summary ユーザー一覧の取得
// @Description 管理ユーザーの一覧を取得する
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/users [get]
func (c *UserController) GetUsers() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)
	users, err := userService.GetAllUsers()
	if err != nil {
		logger.Error("ユーザー一覧の取得に失敗しました: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, users)
}

// 2. CreateUser 管理ユーザーを作成する
// @Summary ユーザーの作成
// @Description 新しい管理ユーザーを作成する
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "ユーザー情報"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /admin/users [post]
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "ユーザー名とパスワードが必要です", nil)
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.CreateUser(req.Username, req.Password)
	if err != nil {
		var validation *services.ValidationError
		if errors.As(err, &validation) {
			response.FailWithMessage(c.Ctx, code.ErrValidation, validation.Message, gin.H{"field": validation.Field})
			return
		}
		logger.Error("ユーザーの作成に失敗しました: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}
