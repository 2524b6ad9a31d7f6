package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

// ErrAuthFailed 認証失敗。ユーザーの有無を呼び出し側に漏らさない
var ErrAuthFailed = errors.New("ユーザー名またはパスワードが正しくありません")

// InterfaceUserService 管理ユーザーサービスのインターフェース
type InterfaceUserService interface {
	Authenticate(username, password string) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	CreateUser(username, password string) (*models.User, error)
}

// UserService 管理画面ユーザー関連のサービスを提供する
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 新しいユーザーサービスを作成する
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1. Authenticate ユーザー名とパスワードで認証する
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}

	return &user, nil
}

// 2. GetAllUsers 全ユーザーを取得する
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// 3. CreateUser 新しいユーザーを作成する
func (s *UserService) CreateUser(username, password string) (*models.User, error) {
	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "ユーザー名が必要です"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "パスワードが必要です"}
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ValidationError{Field: "username", Message: "ユーザー名は既に使われています"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
