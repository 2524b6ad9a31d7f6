package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

// キャッシュキーと有効期限。記録は更新頻度が低いので短めの期限で十分
const (
	recordListCacheKey  = "records:list"
	recordViewKeyFormat = "records:view:%d"
	recordCacheTTL      = 30 * time.Second
)

// InterfaceRecordCacheService 記録ビューのキャッシュサービスのインターフェース
type InterfaceRecordCacheService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	GetRecordList() ([]RecordView, error)
	CacheRecordList(views []RecordView) error
	GetRecordView(recordID uint) (*RecordView, error)
	CacheRecordView(view *RecordView) error
	InvalidateRecords() error
}

// RecordCacheService Redisを使った記録ビューのキャッシュ
type RecordCacheService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRecordCacheService 新しいキャッシュサービスを作成する
func NewRecordCacheService(cfg *config.Config) InterfaceRecordCacheService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	return &RecordCacheService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// 1. Set キーと値を有効期限付きで保存する
func (s *RecordCacheService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2. Get キーに対応する値を取得する
func (s *RecordCacheService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3. Delete キーを削除する
func (s *RecordCacheService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4. GetRecordList 記録一覧ビューをキャッシュから取得する
func (s *RecordCacheService) GetRecordList() ([]RecordView, error) {
	var views []RecordView
	if err := s.Get(recordListCacheKey, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// 5. CacheRecordList 記録一覧ビューをキャッシュする
func (s *RecordCacheService) CacheRecordList(views []RecordView) error {
	return s.Set(recordListCacheKey, views, recordCacheTTL)
}

// 6. GetRecordView 記録ビューをIDでキャッシュから取得する
func (s *RecordCacheService) GetRecordView(recordID uint) (*RecordView, error) {
	var view RecordView
	key := fmt.Sprintf(recordViewKeyFormat, recordID)
	if err := s.Get(key, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// 7. CacheRecordView 記録ビューをキャッシュする
func (s *RecordCacheService) CacheRecordView(view *RecordView) error {
	key := fmt.Sprintf(recordViewKeyFormat, view.ID)
	return s.Set(key, view, recordCacheTTL)
}

// 8. InvalidateRecords 記録系のキャッシュをまとめて無効化する。
// 作成・更新・削除の成功後に呼ぶ
func (s *RecordCacheService) InvalidateRecords() error {
	iter := s.Client.Scan(s.Ctx, 0, "records:*", 0).Iterator()
	for iter.Next(s.Ctx) {
		if err := s.Client.Del(s.Ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping 接続確認
func (s *RecordCacheService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
