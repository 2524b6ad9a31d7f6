package controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/app/middleware"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// InterfaceRecordController 観察記録コントローラのインターフェース
type InterfaceRecordController interface {
	GetRecords()
	GetRecord()
	GetTodayStatus()
	CreateRecord()
	UpdateRecord()
	DeleteRecord()
}

// RecordController 観察記録関連のリクエストを処理する
type RecordController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRecordController 新しい記録コントローラを作成する
func NewRecordController(ctx *gin.Context, container *container.ServiceContainer) *RecordController {
	return &RecordController{
		Ctx:       ctx,
		Container: container,
	}
}

// FlexString JSON文字列・数値のどちらでも受け取れる文字列。
// フロントのフォームは数値フィールドを文字列で送ることも数値で送ることもある
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// PlantEntryRequest 植物1件分の入力
type PlantEntryRequest struct {
	Height        FlexString `json:"height"`
	Comment       string     `json:"comment"`
	ImageFilename string     `json:"imageFilename"`
}

// CreateRecordRequest 記録作成リクエスト
type CreateRecordRequest struct {
	Weather      *string                      `json:"weather"`
	Temperature  *FlexString                  `json:"temperature"`
	PlantRecords map[string]PlantEntryRequest `json:"plantRecords"`
}

// UpdateRecordRequest 記録更新リクエスト。nilのフィールドは変更しない
type UpdateRecordRequest struct {
	Weather      *string                       `json:"weather"`
	Temperature  *FlexString                   `json:"temperature"`
	Date         *string                       `json:"date"`
	PlantRecords *map[string]PlantEntryRequest `json:"plantRecords"`
}

// HandleRecordFunc 記録リクエストを処理するGinハンドラを返す
func HandleRecordFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRecordController(ctx, container)

		switch method {
		case "getRecords":
			controller.GetRecords()
		case "getRecord":
			controller.GetRecord()
		case "getTodayStatus":
			controller.GetTodayStatus()
		case "createRecord":
			controller.CreateRecord()
		case "updateRecord":
			controller.UpdateRecord()
		case "deleteRecord":
			controller.DeleteRecord()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. GetRecords 全記録を日付の新しい順で取得する
// @Summary 記録一覧の取得
// @Description 全ての観察記録を日付の降順で取得する
// @Tags Record
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /records [get]
func (c *RecordController) GetRecords() {
	queryService := c.Container.GetService("query").(services.InterfaceQueryService)
	views, err := queryService.ListRecords()
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, views)
}

// 2. GetRecord IDで記録を1件取得する
// @Summary 記録詳細の取得
// @Description IDを指定して観察記録を取得する
// @Tags Record
// @Accept json
// @Produce json
// @Param id path int true "記録ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /records/{id} [get]
func (c *RecordController) GetRecord() {
	recordID, ok := c.paramID()
	if !ok {
		return
	}

	queryService := c.Container.GetService("query").(services.InterfaceQueryService)
	view, err := queryService.GetRecordByID(recordID)
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, view)
}

// 3. GetTodayStatus 今日（またはforce_dateで指定した日）の記録の有無を取得する
// @Summary 今日の記録状態の取得
// @Description 実効日付の記録が存在するかを返す。force_dateで日付を上書きできる
// @Tags Record
// @Accept json
// @Produce json
// @Param force_date query string false "日付の上書き（YYYY-MM-DD）"
// @Success 200 {object} map[string]interface{}
// @Router /records/today [get]
func (c *RecordController) GetTodayStatus() {
	queryService := c.Container.GetService("query").(services.InterfaceQueryService)
	status, err := queryService.GetTodayStatus(c.Ctx.Query("force_date"))
	if err != nil {
		c.handleDomainError(err)
		return
	}

	response.Success(c.Ctx, status)
}

// 4. CreateRecord 今日の記録を作成する
// @Summary 記録の作成
// @Description 実効日付の観察記録と植物記録をまとめて作成する
// @Tags Record
// @Accept json
// @Produce json
// @Param record body CreateRecordRequest true "記録の内容"
// @Param force_date query string false "日付の上書き（YYYY-MM-DD）"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /records [post]
func (c *RecordController) CreateRecord() {
	var req CreateRecordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "無効なリクエスト形式です: "+err.Error(), nil)
		return
	}

	queryService := c.Container.GetService("query").(services.InterfaceQueryService)
	recordService := c.Container.GetService("record").(services.InterfaceRecordService)

	effectiveDate := queryService.ResolveEffectiveDate(c.Ctx.Query("force_date"))

	recordID, err := recordService.CreateDailyRecord(
		effectiveDate, req.Weather, flexToStringPtr(req.Temperature), toEntryInputs(req.PlantRecords))
	if err != nil {
		c.handleDomainError(err)
		return
	}

	c.purgeRecordCaches()
	response.Created(c.Ctx, gin.H{"id": recordID, "date": effectiveDate})
}

// 5. UpdateRecord 記録を更新する。植物記録が与えられた場合は全置換する
// @Summary 記録の更新
// @Description 観察記録を部分更新する。plantRecordsを指定すると植物記録を置き換える
// @Tags Record
// @Accept json
// @Produce json
// @Param id path int true "記録ID"
// @Param record body UpdateRecordRequest true "更新内容"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /records/{id} [put]
func (c *RecordController) UpdateRecord() {
	recordID, ok := c.paramID()
	if !ok {
		return
	}

	var req UpdateRecordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "無効なリクエスト形式です: "+err.Error(), nil)
		return
	}

	in := services.UpdateRecordInput{
		Weather:     req.Weather,
		Temperature: flexToStringPtr(req.Temperature),
		Date:        req.Date,
	}
	if req.PlantRecords != nil {
		in.PlantEntries = toEntryInputs(*req.PlantRecords)
		in.HasPlantEntries = true
	}

	recordService := c.Container.GetService("record").(services.InterfaceRecordService)
	id, err := recordService.ReplaceDailyRecord(recordID, in)
	if err != nil {
		c.handleDomainError(err)
		return
	}

	c.purgeRecordCaches()
	response.SuccessWithMessage(c.Ctx, "記録を更新しました", gin.H{"id": id})
}

// 6. DeleteRecord 記録を削除する
// @Summary 記録の削除
// @Description 観察記録と従属する植物記録をまとめて削除する
// @Tags Record
// @Accept json
// @Produce json
// @Param id path int true "記録ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /records/{id} [delete]
func (c *RecordController) DeleteRecord() {
	recordID, ok := c.paramID()
	if !ok {
		return
	}

	recordService := c.Container.GetService("record").(services.InterfaceRecordService)
	if err := recordService.DeleteDailyRecord(recordID); err != nil {
		c.handleDomainError(err)
		return
	}

	c.purgeRecordCaches()
	response.SuccessWithMessage(c.Ctx, "記録を削除しました", nil)
}

// paramID パスパラメータの記録IDを解釈する
func (c *RecordController) paramID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.ParamError(c.Ctx, "無効な記録IDです")
		return 0, false
	}
	return uint(id), true
}

// purgeRecordCaches レスポンスキャッシュとRedisキャッシュをまとめて無効化する
func (c *RecordController) purgeRecordCaches() {
	middleware.PurgeCache()

	if cache, ok := c.Container.GetService("cache").(services.InterfaceRecordCacheService); ok && cache != nil {
		if err := cache.InvalidateRecords(); err != nil {
			// キャッシュ無効化の失敗は応答を妨げない。TTLで回収される
			return
		}
	}
}

// handleDomainError ドメインエラーを統一エラーレスポンスに変換する
func (c *RecordController) handleDomainError(err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		response.FailWithMessage(c.Ctx, code.ErrValidation, validation.Message, gin.H{"field": validation.Field})
		return
	}

	var duplicate *services.DuplicateRecordError
	if errors.As(err, &duplicate) {
		response.Fail(c.Ctx, code.ErrDuplicateRecord, gin.H{
			"id":         duplicate.ExistingID,
			"date":       duplicate.ExistingDate,
			"created_at": duplicate.CreatedAt,
		})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		response.NotFound(c.Ctx, notFound.Error())
		return
	}

	var storage *services.StorageError
	if errors.As(err, &storage) {
		logger.Error("ストレージ操作に失敗しました: %v", err)
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}

	// 想定外のエラーは詳細をログにだけ残し、呼び出し側には一般メッセージを返す
	logger.Error("記録操作で想定外のエラーが発生しました: %v", err)
	response.Fail(c.Ctx, code.ErrDatabase, nil)
}

// flexToStringPtr FlexStringポインタをサービス層の文字列ポインタに変換する
func flexToStringPtr(f *FlexString) *string {
	if f == nil {
		return nil
	}
	s := strings.TrimSpace(string(*f))
	return &s
}

// toEntryInputs リクエストの植物記録をサービス層の入力に変換する
func toEntryInputs(entries map[string]PlantEntryRequest) map[string]services.PlantEntryInput {
	if entries == nil {
		return nil
	}

	inputs := make(map[string]services.PlantEntryInput, len(entries))
	for ref, entry := range entries {
		inputs[ref] = services.PlantEntryInput{
			Height:        string(entry.Height),
			Comment:       entry.Comment,
			ImageFilename: entry.ImageFilename,
		}
	}
	return inputs
}
