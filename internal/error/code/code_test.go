package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMessage(t *testing.T) {
	assert.Equal(t, "今日の記録は既に存在します", GetMessage(ErrDuplicateRecord))
	assert.Equal(t, "記録が見つかりません", GetMessage(ErrNotFound))

	// 未登録のコードは内部エラーのメッセージに落ちる
	assert.Equal(t, GetMessage(ErrUnknown), GetMessage("NO_SUCH_CODE"))
}

func TestGetStatus(t *testing.T) {
	assert.Equal(t, StatusBadRequest, GetStatus(ErrValidation))
	assert.Equal(t, StatusBadRequest, GetStatus(ErrDuplicateRecord))
	assert.Equal(t, StatusNotFound, GetStatus(ErrNotFound))
	assert.Equal(t, StatusUnauthorized, GetStatus(ErrAuthFailed))
	assert.Equal(t, StatusUnauthorized, GetStatus(ErrTokenInvalid))
	assert.Equal(t, StatusTooManyRequests, GetStatus(ErrTooManyRequests))
	assert.Equal(t, StatusInternalServerError, GetStatus(ErrStorage))

	// 未登録のコードは500に落ちる
	assert.Equal(t, StatusInternalServerError, GetStatus("NO_SUCH_CODE"))
}
