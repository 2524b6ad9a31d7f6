package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// InterfaceStorageService 画像オブジェクトストレージのインターフェース。
// グローバルなクライアントは持たず、コンテナ経由で注入する
type InterfaceStorageService interface {
	UploadImage(data []byte, extension string) (string, error)
	GetImage(filename string) ([]byte, error)
	GetImageURL(filename string) string
	DeleteImage(filename string) error
}

// StorageService MinIOを使った画像ストレージサービス
type StorageService struct {
	Client *minio.Client
	Config *config.Config
}

// NewStorageService MinIOクライアントを初期化し、バケットが無ければ作成する
func NewStorageService(cfg *config.Config) (InterfaceStorageService, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, &StorageError{Op: "connect", Err: err}
	}

	s := &StorageService{
		Client: client,
		Config: cfg,
	}

	if err := s.ensureBucket(); err != nil {
		return nil, err
	}

	return s, nil
}

// ensureBucket バケットの存在を確認し、無ければ作成する
func (s *StorageService) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := s.Client.BucketExists(ctx, s.Config.MinioBucket)
	if err != nil {
		return &StorageError{Op: "bucket_exists", Err: err}
	}
	if !exists {
		if err := s.Client.MakeBucket(ctx, s.Config.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return &StorageError{Op: "make_bucket", Err: err}
		}
		logger.Info("バケットを作成しました: %s", s.Config.MinioBucket)
	}

	return nil
}

// 1. UploadImage 画像をアップロードして生成したオブジェクト名を返す
func (s *StorageService) UploadImage(data []byte, extension string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	filename := uuid.New().String() + "." + ext

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.Client.PutObject(ctx, s.Config.MinioBucket, filename,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/" + ext})
	if err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}

	logger.Info("画像をアップロードしました: %s", filename)
	return filename, nil
}

// 2. GetImage オブジェクト名で画像データを取得する
func (s *StorageService) GetImage(filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	obj, err := s.Client.GetObject(ctx, s.Config.MinioBucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	return data, nil
}

// 3. GetImageURL 画像の公開URLを組み立てる
func (s *StorageService) GetImageURL(filename string) string {
	return s.Config.MinioPublicURL + "/" + s.Config.MinioBucket + "/" + filename
}

// 4. DeleteImage 画像を削除する
func (s *StorageService) DeleteImage(filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Client.RemoveObject(ctx, s.Config.MinioBucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	logger.Info("画像を削除しました: %s", filename)
	return nil
}
