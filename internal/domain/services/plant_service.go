package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

// InterfacePlantService 植物管理サービスのインターフェース。
// 管理画面からの種類メンテナンス用で、削除は無効化のみ
type InterfacePlantService interface {
	GetAllPlants() ([]models.Plant, error)
	GetPlantByID(id uint) (*models.Plant, error)
	CreatePlant(name string, displayOrder int) (*models.Plant, error)
	UpdatePlant(id uint, updates map[string]interface{}) (*models.Plant, error)
	DeactivatePlant(id uint) error
}

// PlantService 植物種類関連のサービスを提供する
type PlantService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewPlantService 新しい植物サービスを作成する
func NewPlantService(db *gorm.DB, cfg *config.Config) InterfacePlantService {
	return &PlantService{
		DB:     db,
		Config: cfg,
	}
}

// 1. GetAllPlants 無効なものも含めて全植物を表示順で取得する
func (s *PlantService) GetAllPlants() ([]models.Plant, error) {
	var plants []models.Plant
	if err := s.DB.Order("display_order asc").Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

// 2. GetPlantByID IDで植物を取得する
func (s *PlantService) GetPlantByID(id uint) (*models.Plant, error) {
	var plant models.Plant
	if err := s.DB.First(&plant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "plant", ID: id}
		}
		return nil, err
	}
	return &plant, nil
}

// 3. CreatePlant 新しい植物種類を登録する
func (s *PlantService) CreatePlant(name string, displayOrder int) (*models.Plant, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "植物名が必要です"}
	}

	plant := models.Plant{
		Name:         name,
		DisplayOrder: displayOrder,
		IsActive:     true,
	}
	if err := s.DB.Create(&plant).Error; err != nil {
		return nil, err
	}

	return &plant, nil
}

// 4. UpdatePlant 植物情報を更新する
func (s *PlantService) UpdatePlant(id uint, updates map[string]interface{}) (*models.Plant, error) {
	plant, err := s.GetPlantByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(plant).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetPlantByID(id)
}

// 5. DeactivatePlant 植物を無効化する。過去の記録を壊さないため物理削除はしない
func (s *PlantService) DeactivatePlant(id uint) error {
	plant, err := s.GetPlantByID(id)
	if err != nil {
		return err
	}

	return s.DB.Model(plant).Update("is_active", false).Error
}
