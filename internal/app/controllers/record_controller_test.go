package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/makino-seiya/kansatsunikki/internal/app/middleware"
	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services"
	"github.com/makino-seiya/kansatsunikki/internal/domain/services/container"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

// envelope テストで検証する統一レスポンス形式
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code       string          `json:"code"`
		Message    string          `json:"message"`
		StatusCode int             `json:"status_code"`
		Details    json.RawMessage `json:"details"`
	} `json:"error"`
}

// fakeClock テスト用の固定時計
type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

// fakeStorage インメモリのストレージサービス
type fakeStorage struct {
	objects map[string][]byte
	counter int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) UploadImage(data []byte, extension string) (string, error) {
	s.counter++
	filename := fmt.Sprintf("test-%d.%s", s.counter, extension)
	s.objects[filename] = data
	return filename, nil
}

func (s *fakeStorage) GetImage(filename string) ([]byte, error) {
	data, ok := s.objects[filename]
	if !ok {
		return nil, &services.StorageError{Op: "get", Err: errors.New("not found")}
	}
	return data, nil
}

func (s *fakeStorage) GetImageURL(filename string) string {
	return "http://localhost:9002/plant-images/" + filename
}

func (s *fakeStorage) DeleteImage(filename string) error {
	delete(s.objects, filename)
	return nil
}

// setupTestRouter SQLiteとフェイクのストレージ・時計でテスト用ルーターを組み立てる
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *fakeStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Plant{},
		&models.Record{},
		&models.PlantRecord{},
		&models.User{},
	))

	for _, plant := range []models.Plant{
		{Name: "向日葵（ひまわり）", DisplayOrder: 1, IsActive: true},
		{Name: "秋桜（コスモス）", DisplayOrder: 2, IsActive: true},
		{Name: "朝顔（あさがお）", DisplayOrder: 3, IsActive: true},
	} {
		require.NoError(t, db.Create(&plant).Error)
	}

	cfg := &config.Config{
		JWTSecretKey: "test-secret-key",
		RedisHost:    "localhost",
		RedisPort:    "1", // 接続させない。キャッシュ無しで動く
	}

	c := container.NewServiceContainer(db, cfg)

	// 時計を2024-07-15に固定した参照サービスに差し替える
	c.SetService("query", &services.QueryService{
		DB:     db,
		Config: cfg,
		Clock:  fakeClock{now: time.Date(2024, 7, 15, 10, 0, 0, 0, services.JST)},
	})

	storage := newFakeStorage()
	c.SetService("storage", storage)

	middleware.InitAuthMiddleware(cfg)
	middleware.PurgeCache()

	r := gin.New()
	api := r.Group("/api")
	api.GET("/plants", HandlePlantFunc(c, "getActivePlants"))
	api.POST("/auth/login", HandleJWTFunc(c, "login"))

	api.GET("/records", HandleRecordFunc(c, "getRecords"))
	api.GET("/records/today", HandleRecordFunc(c, "getTodayStatus"))
	api.GET("/records/:id", HandleRecordFunc(c, "getRecord"))
	api.POST("/records", HandleRecordFunc(c, "createRecord"))
	api.PUT("/records/:id", HandleRecordFunc(c, "updateRecord"))
	api.DELETE("/records/:id", HandleRecordFunc(c, "deleteRecord"))

	api.POST("/upload/image", HandleImageFunc(c, "uploadImage"))
	api.GET("/images/:filename", HandleImageFunc(c, "getImage"))

	auth := api.Group("/admin")
	auth.Use(middleware.AuthenticateAdmin())
	auth.GET("/plants", HandlePlantFunc(c, "getAllPlants"))
	auth.POST("/plants", HandlePlantFunc(c, "createPlant"))
	auth.PUT("/plants/:id", HandlePlantFunc(c, "updatePlant"))
	auth.DELETE("/plants/:id", HandlePlantFunc(c, "deactivatePlant"))
	auth.GET("/users", HandleUserFunc(c, "getUsers"))
	auth.POST("/users", HandleUserFunc(c, "createUser"))

	return r, db, storage
}

func doRequest(r *gin.Engine, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreateRecordEndpoint(t *testing.T) {
	r, db, _ := setupTestRouter(t)

	body := `{"weather":"晴れ","temperature":25.5,"plantRecords":{"1":{"height":"12.3","comment":"芽が出た"}}}`
	w, env := doRequest(r, http.MethodPost, "/api/records?force_date=2024-07-01", body, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var data struct {
		ID   uint   `json:"id"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotZero(t, data.ID)
	assert.Equal(t, "2024-07-01", data.Date)

	var record models.Record
	require.NoError(t, db.Preload("PlantRecords").First(&record, data.ID).Error)
	assert.Equal(t, models.WeatherSunny, record.Weather)
	assert.Len(t, record.PlantRecords, 1)
}

func TestCreateRecordDuplicate(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	body := `{"weather":"sunny","temperature":"25.0"}`
	w, env := doRequest(r, http.MethodPost, "/api/records?force_date=2024-07-01", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var first struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))

	// 同じ日付の2回目は重複エラー。既存記録の情報が付く
	w, env = doRequest(r, http.MethodPost, "/api/records?force_date=2024-07-01", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_RECORD", env.Error.Code)
	assert.Equal(t, http.StatusBadRequest, env.Error.StatusCode)

	var details struct {
		ID        uint      `json:"id"`
		Date      string    `json:"date"`
		CreatedAt time.Time `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, first.ID, details.ID)
	assert.Equal(t, "2024-07-01", details.Date)
}

func TestCreateRecordValidation(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	// 天気が無い
	w, env := doRequest(r, http.MethodPost, "/api/records", `{"temperature":25.0}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	// 未知の天気
	w, env = doRequest(r, http.MethodPost, "/api/records", `{"weather":"snow","temperature":25.0}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestGetRecordsAndDetail(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	for _, date := range []string{"2024-07-01", "2024-07-03", "2024-07-02"} {
		body := `{"weather":"cloudy","temperature":"20.0"}`
		w, _ := doRequest(r, http.MethodPost, "/api/records?force_date="+date, body, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := doRequest(r, http.MethodGet, "/api/records", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var views []struct {
		ID   uint   `json:"id"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 3)
	assert.Equal(t, "2024-07-03", views[0].Date)
	assert.Equal(t, "2024-07-01", views[2].Date)

	w, env = doRequest(r, http.MethodGet, fmt.Sprintf("/api/records/%d", views[0].ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	// 存在しないIDは404
	w, env = doRequest(r, http.MethodGet, "/api/records/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestTodayStatusEndpoint(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	// 固定時計の今日(2024-07-15)にはまだ記録が無い
	w, env := doRequest(r, http.MethodGet, "/api/records/today", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Exists bool `json:"exists"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Exists)

	body := `{"weather":"sunny","temperature":"30.0"}`
	w, _ = doRequest(r, http.MethodPost, "/api/records", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = doRequest(r, http.MethodGet, "/api/records/today", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Exists)

	// 無効なforce_dateは今日に戻るので exists=true のまま
	w, env = doRequest(r, http.MethodGet, "/api/records/today?force_date=2024-02-30", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Exists)

	// 有効なforce_dateで別の日を見る
	w, env = doRequest(r, http.MethodGet, "/api/records/today?force_date=2024-01-01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Exists)
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	r, db, _ := setupTestRouter(t)

	body := `{"weather":"sunny","temperature":"25.0","plantRecords":{"1":{"height":"10.0"},"2":{"height":"20.0"}}}`
	w, env := doRequest(r, http.MethodPost, "/api/records?force_date=2024-07-01", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// 植物記録を全置換して天気を変える
	update := `{"weather":"雨","plantRecords":{"3":{"height":"30.0","comment":"置換後"}}}`
	w, env = doRequest(r, http.MethodPut, fmt.Sprintf("/api/records/%d", created.ID), update, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var record models.Record
	require.NoError(t, db.Preload("PlantRecords").First(&record, created.ID).Error)
	assert.Equal(t, models.WeatherRainy, record.Weather)
	require.Len(t, record.PlantRecords, 1)
	assert.Equal(t, "置換後", record.PlantRecords[0].Comment)

	// 削除
	w, env = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/records/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/records/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestListActivePlantsEndpoint(t *testing.T) {
	r, db, _ := setupTestRouter(t)

	// 1つ無効化しておく
	require.NoError(t, db.Model(&models.Plant{}).Where("display_order = ?", 2).Update("is_active", false).Error)

	w, env := doRequest(r, http.MethodGet, "/api/plants", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var plants []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plants))
	require.Len(t, plants, 2)
	assert.Equal(t, "向日葵（ひまわり）", plants[0].Name)
	assert.Equal(t, "朝顔（あさがお）", plants[1].Name)
}

// multipartImage 指定Content-Typeのfileパートを持つmultipartボディを作る
func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	r, _, storage := setupTestRouter(t)

	body, contentType := multipartImage(t, "flower.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)

	var data struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, strings.HasSuffix(data.Filename, ".png"))
	assert.Equal(t, "/api/images/"+data.Filename, data.URL)
	assert.Equal(t, []byte("png-bytes"), storage.objects[data.Filename])
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	body, contentType := multipartImage(t, "doc.txt", "text/plain", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImageRejectsOversize(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	// 3MB超
	body, contentType := multipartImage(t, "big.jpg", "image/jpeg", make([]byte, 3<<20+1))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetImage(t *testing.T) {
	r, _, storage := setupTestRouter(t)
	storage.objects["saved.jpg"] = []byte("jpeg-bytes")

	req := httptest.NewRequest(http.MethodGet, "/api/images/saved.jpg", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "image/jpeg")

	// 存在しない画像は404
	req = httptest.NewRequest(http.MethodGet, "/api/images/missing.jpg", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func seedAdmin(t *testing.T, db *gorm.DB) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username:     "admin",
		PasswordHash: string(hashed),
	}).Error)
}

func TestLogin(t *testing.T) {
	r, db, _ := setupTestRouter(t)
	seedAdmin(t, db)

	// パスワード不一致
	w, env := doRequest(r, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_FAILED", env.Error.Code)

	// 存在しないユーザーも同じ応答
	w, env = doRequest(r, http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"admin123"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 正しい認証情報ならトークンが返る
	w, env = doRequest(r, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
}

func loginToken(t *testing.T, r *gin.Engine) string {
	t.Helper()

	w, env := doRequest(r, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, db, _ := setupTestRouter(t)
	seedAdmin(t, db)

	// トークン無しは401
	w, env := doRequest(r, http.MethodGet, "/api/admin/plants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)

	// 不正なトークンも401
	w, _ = doRequest(r, http.MethodGet, "/api/admin/plants", "", map[string]string{
		"Authorization": "Bearer invalid-token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := loginToken(t, r)
	headers := map[string]string{"Authorization": "Bearer " + token}

	w, env = doRequest(r, http.MethodGet, "/api/admin/plants", "", headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var plants []models.Plant
	require.NoError(t, json.Unmarshal(env.Data, &plants))
	assert.Len(t, plants, 3)
}

func TestAdminPlantManagement(t *testing.T) {
	r, db, _ := setupTestRouter(t)
	seedAdmin(t, db)
	token := loginToken(t, r)
	headers := map[string]string{"Authorization": "Bearer " + token}

	// 登録
	w, env := doRequest(r, http.MethodPost, "/api/admin/plants", `{"name":"チューリップ","display_order":4}`, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Plant
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "チューリップ", created.Name)
	assert.True(t, created.IsActive)

	// 更新
	w, env = doRequest(r, http.MethodPut, fmt.Sprintf("/api/admin/plants/%d", created.ID), `{"display_order":10}`, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Plant
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 10, updated.DisplayOrder)

	// 無効化（論理削除）
	w, _ = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/plants/%d", created.ID), "", headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var plant models.Plant
	require.NoError(t, db.First(&plant, created.ID).Error)
	assert.False(t, plant.IsActive)

	// 名前が空の登録は検証エラー
	w, env = doRequest(r, http.MethodPost, "/api/admin/plants", `{"name":""}`, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAdminUserManagement(t *testing.T) {
	r, db, _ := setupTestRouter(t)
	seedAdmin(t, db)
	token := loginToken(t, r)
	headers := map[string]string{"Authorization": "Bearer " + token}

	w, env := doRequest(r, http.MethodPost, "/api/admin/users", `{"username":"hanako","password":"secret123"}`, headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	// パスワードハッシュは応答に含めない
	assert.NotContains(t, string(env.Data), "password")

	// 同名ユーザーは作れない
	w, env = doRequest(r, http.MethodPost, "/api/admin/users", `{"username":"hanako","password":"other"}`, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = doRequest(r, http.MethodGet, "/api/admin/users", "", headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 2, count)
}
