package controllers

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
)

// 画像アップロードの上限サイズ（3MB）
const maxImageSize = 3 << 20

// InterfaceImageController 画像コントローラのインターフェース
type InterfaceImageController interface {
	UploadImage()
	GetImage()
}

// ImageController 画像の保存・配信リクエストを処理する
type ImageController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewImageController 新しい画像コントローラを作成する
func NewImageController(ctx *gin.Context, container *container.ServiceContainer) *ImageController {
	return &ImageController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleImageFunc 画像リクエストを処理するGinハンドラを返す
func HandleImageFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewImageController(ctx, container)

		switch method {
		case "uploadImage":
			controller.UploadImage()
		case "getImage":
			controller.GetImage()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "無効なメソッドです", nil)
		}
	}
}

// 1. UploadImage 画像をアップロードして保存ファイル名を返す
// @Summary 画像のアップロード
// @Description multipart/form-dataで画像を受け取り、オブジェクトストレージに保存する
// @Tags Image
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "画像ファイル（3MBまで）"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /upload/image [post]
func (c *ImageController) UploadImage() {
	storageService, ok := c.Container.GetService("storage").(services.InterfaceStorageService)
	if !ok || storageService == nil {
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}

	fileHeader, err := c.Ctx.FormFile("file")
	if err != nil {
		response.ParamError(c.Ctx, "画像ファイルが必要です")
		return
	}

	if fileHeader.Size > maxImageSize {
		response.ParamError(c.Ctx, "画像サイズは3MB以下にしてください")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.ParamError(c.Ctx, "画像ファイルのみアップロードできます")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}
	if len(data) > maxImageSize {
		response.ParamError(c.Ctx, "画像サイズは3MB以下にしてください")
		return
	}

	// 拡張子は元のファイル名から取り、無ければjpgにする
	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}

	filename, err := storageService.UploadImage(data, ext)
	if err != nil {
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"filename": filename,
		"url":      "/api/images/" + filename,
	})
}

// 2. GetImage ファイル名で画像を配信する
// @Summary 画像の取得
// @Description 保存済みの画像をそのまま返す
// @Tags Image
// @Produce image/jpeg
// @Param filename path string true "画像ファイル名"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /images/{filename} [get]
func (c *ImageController) GetImage() {
	storageService, ok := c.Container.GetService("storage").(services.InterfaceStorageService)
	if !ok || storageService == nil {
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}

	filename := c.Ctx.Param("filename")
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		response.ParamError(c.Ctx, "無効なファイル名です")
		return
	}

	data, err := storageService.GetImage(filename)
	if err != nil {
		response.NotFound(c.Ctx, "画像が見つかりません")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	c.Ctx.Data(200, contentType, data)
}
