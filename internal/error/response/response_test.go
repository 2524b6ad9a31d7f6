package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makino-seiya/kansatsunikki/internal/error/code"
)

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Success(c, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, true, env["success"])
	assert.NotNil(t, env["data"])
	// 成功時にerrorキーは出さない
	assert.NotContains(t, env, "error")
}

func TestCreatedEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Created(c, gin.H{"id": 7})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestFailEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Fail(c, code.ErrDuplicateRecord, gin.H{"id": 3})
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code       string                 `json:"code"`
			Message    string                 `json:"message"`
			StatusCode int                    `json:"status_code"`
			Details    map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "DUPLICATE_RECORD", env.Error.Code)
	assert.Equal(t, "今日の記録は既に存在します", env.Error.Message)
	assert.Equal(t, http.StatusBadRequest, env.Error.StatusCode)
	assert.EqualValues(t, 3, env.Error.Details["id"])
}

func TestFailWithoutDetailsOmitsKey(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Fail(c, code.ErrNotFound, nil)
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "details")
}

func TestParamError(t *testing.T) {
	w := perform(func(c *gin.Context) {
		ParamError(c, "無効なIDです")
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "無効なIDです")
}
