package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/error/code"
)

// ErrorBody 統一エラーレスポンスの error 部
type ErrorBody struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code"`
	Details    interface{} `json:"details,omitempty"`
}

// Envelope 統一レスポンス形式
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// Success 成功レスポンス
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage 成功レスポンス（メッセージ付き）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Created 作成成功レスポンス
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Data:    data,
	})
}

// Fail 失敗レスポンス
func Fail(c *gin.Context, errorCode string, details interface{}) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode), details)
}

// FailWithMessage 失敗レスポンス（カスタムメッセージ）
func FailWithMessage(c *gin.Context, errorCode string, message string, details interface{}) {
	httpStatus := code.GetStatus(errorCode)

	c.JSON(httpStatus, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:       errorCode,
			Message:    message,
			StatusCode: httpStatus,
			Details:    details,
		},
	})
}

// ParamError パラメータエラーレスポンス
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError サーバエラーレスポンス
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound リソース不存在レスポンス
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrNotFound)
	}
	FailWithMessage(c, code.ErrNotFound, message, nil)
}

// Unauthorized 未認証レスポンス
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrTokenInvalid)
	}
	FailWithMessage(c, code.ErrTokenInvalid, message, nil)
}
