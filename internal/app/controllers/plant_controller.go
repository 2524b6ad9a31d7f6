package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// InterfacePlantController 植物コントローラのインターフェース
type InterfacePlantController interface {
	GetActivePlants()
	GetAllPlants()
	CreatePlant()
	UpdatePlant()
	DeactivatePlant()
}

// PlantController 植物関連のリクエストを処理する
type PlantController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPlantController 新しい植物コントローラを作成する
func NewPlantController(ctx *gin.Context, container *container.ServiceContainer) *PlantController {
	return &PlantController{
		Ctx:       ctx,
		Container: container,
	}
}

// PlantRequest 植物の作成・更新リクエスト
type PlantRequest struct {
	Name         string `json:"name" example:"向日葵（ひまわり）"`
	DisplayOrder *int   `json:"display_order" example:"1"`
	IsActive     *bool  `json:"is_active" example:"true"`
}

// HandlePlantFunc 植物リクエストを処理するGinハンドラを返す
func HandlePlantFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPlantController(ctx, container)

		switch method {
		case "getActivePlants":
			controller.GetActivePlants()
		case "getAllPlants":
			controller.GetAllPlants()
		case "createPlant":
			controller.CreatePlant()
		case "updatePlant":
			controller.UpdatePlant()
		case "deactivatePlant":
			controller.DeactivatePlant()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. GetActivePlants 有効な植物を表示順で取得する（公開API）
// @Summary 植物一覧の取得
// @Description 有効な植物を表示順で取得する
// @Tags Plant
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /plants [get]
func (c *PlantController) GetActivePlants() {
	queryService := c.Container.GetService("query").(services.InterfaceQueryService)
	plants, err := queryService.ListActivePlants()
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, plants)
}

// 2. GetAllPlants 無効なものも含めて全植物を取得する（管理API）
// @Summary 全植物の取得
// @Description 無効化済みも含めた全植物を取得する
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/plants [get]
func (c *PlantController) GetAllPlants() {
	plantService := c.Container.GetService("plant").(services.InterfacePlantService)
	plants, err := plantService.GetAllPlants()
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, plants)
}

// 3. CreatePlant 植物を登録する
// @Summary 植物の登録
// @Description 新しい植物種類を登録する
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plant body PlantRequest true "植物情報"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /admin/plants [post]
func (c *PlantController) CreatePlant() {
	var req PlantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "無効なリクエスト形式です: "+err.Error(), nil)
		return
	}

	displayOrder := 0
	if req.DisplayOrder != nil {
		displayOrder = *req.DisplayOrder
	}

	plantService := c.Container.GetService("plant").(services.InterfacePlantService)
	plant, err := plantService.CreatePlant(req.Name, displayOrder)
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Created(c.Ctx, plant)
}

// 4. UpdatePlant 植物情報を更新する
// @Summary 植物の更新
// @Description 植物の名前・表示順・有効状態を更新する
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "植物ID"
// @Param plant body PlantRequest true "植物情報"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/plants/{id} [put]
func (c *PlantController) UpdatePlant() {
	plantID, ok := c.paramID()
	if !ok {
		return
	}

	var req PlantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "無効なリクエスト形式です: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	plantService := c.Container.GetService("plant").(services.InterfacePlantService)
	plant, err := plantService.UpdatePlant(plantID, updates)
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, plant)
}

// 5. DeactivatePlant 植物を無効化する（論理削除）
// @Summary 植物の無効化
// @Description 植物を無効化する。過去の記録は残る
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "植物ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/plants/{id} [delete]
func (c *PlantController) DeactivatePlant() {
	plantID, ok := c.paramID()
	if !ok {
		return
	}

	plantService := c.Container.GetService("plant").(services.InterfacePlantService)
	if err := plantService.DeactivatePlant(plantID); err != nil {
		c.handleDomainError(err)
		return
	}

	response.SuccessWithMessage(c.Ctx, "植物を無効化しました", nil)
}

func (c *PlantController) paramID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.ParamError(c.Ctx, "無効な植物IDです")
		return 0, false
	}
	return uint(id), true
}

func (c *PlantController) handleDomainError(err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		response.FailWithMessage(c.Ctx, code.ErrValidation, validation.Message, gin.H{"field": validation.Field})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		response.NotFound(c.Ctx, notFound.Error())
		return
	}

	logger.Error("植物操作で想定外のエラーが発生しました: %v", err)
	response.Fail(c.Ctx, code.ErrDatabase, nil)
}
