package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// PlantEntryView 記録ビュー内の植物1件分。
// 全エンドポイントで植物IDと表示名の両方を返す（表現を統一）
type PlantEntryView struct {
	PlantID   uint     `json:"plantId"`
	PlantName string   `json:"plantName"`
	Height    *float64 `json:"height"`
	Comment   string   `json:"comment"`
	Image     *string  `json:"image"`
}

// RecordView 1日分の記録ビュー
type RecordView struct {
	ID          uint             `json:"id"`
	Date        string           `json:"date"`
	CreatedAt   time.Time        `json:"createdAt"`
	Weather     string           `json:"weather"`
	Temperature float64          `json:"temperature"`
	Plants      []PlantEntryView `json:"plants"`
}

// TodayStatus 今日の記録の有無
type TodayStatus struct {
	Exists bool        `json:"exists"`
	Record *RecordView `json:"record,omitempty"`
}

// PlantView 植物一覧の1件分
type PlantView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// InterfaceQueryService 記録・植物の参照サービスのインターフェース
type InterfaceQueryService interface {
	ResolveEffectiveDate(override string) string
	GetTodayStatus(override string) (*TodayStatus, error)
	ListRecords() ([]RecordView, error)
	GetRecordByID(recordID uint) (*RecordView, error)
	ListActivePlants() ([]PlantView, error)
}

// QueryService 記録の参照系を提供する。「今日」の解決は注入された時計に従う
type QueryService struct {
	DB     *gorm.DB
	Config *config.Config
	Clock  InterfaceClock
	Cache  InterfaceRecordCacheService // nilの場合はキャッシュなしで動作する
}

// NewQueryService 新しい参照サービスを作成する（JST実時計）
func NewQueryService(db *gorm.DB, cfg *config.Config, cache InterfaceRecordCacheService) InterfaceQueryService {
	return &QueryService{
		DB:     db,
		Config: cfg,
		Clock:  NewJSTClock(),
		Cache:  cache,
	}
}

// 1. ResolveEffectiveDate 実効日付を解決する。上書き日付が有効ならそれを、
// 無効または未指定ならJSTの今日を返す。無効な上書きはエラーにしない
func (s *QueryService) ResolveEffectiveDate(override string) string {
	if override != "" {
		if d, err := parseCalendarDate(override); err == nil {
			logger.Info("強制指定された日付を使用します: %s", d)
			return d
		}
		logger.Warning("無効な日付形式のためJSTの今日に戻します: %q", override)
	}
	return s.Clock.Now().Format(models.DateLayout)
}

// 2. GetTodayStatus 実効日付の記録が存在するかを返す
func (s *QueryService) GetTodayStatus(override string) (*TodayStatus, error) {
	today := s.ResolveEffectiveDate(override)

	var record models.Record
	err := s.DB.Preload("PlantRecords.Plant").Where("record_date = ?", today).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &TodayStatus{Exists: false}, nil
		}
		return nil, err
	}

	view := buildRecordView(&record)
	return &TodayStatus{Exists: true, Record: &view}, nil
}

// 3. ListRecords 全記録を日付の降順で返す
func (s *QueryService) ListRecords() ([]RecordView, error) {
	if s.Cache != nil {
		if views, err := s.Cache.GetRecordList(); err == nil {
			return views, nil
		}
	}

	var records []models.Record
	if err := s.DB.Preload("PlantRecords.Plant").Order("record_date desc").Find(&records).Error; err != nil {
		return nil, err
	}

	views := make([]RecordView, 0, len(records))
	for i := range records {
		views = append(views, buildRecordView(&records[i]))
	}

	if s.Cache != nil {
		if err := s.Cache.CacheRecordList(views); err != nil {
			logger.Warning("記録一覧のキャッシュ保存に失敗しました: %v", err)
		}
	}

	return views, nil
}

// 4. GetRecordByID IDで記録を1件取得する
func (s *QueryService) GetRecordByID(recordID uint) (*RecordView, error) {
	if s.Cache != nil {
		if view, err := s.Cache.GetRecordView(recordID); err == nil {
			return view, nil
		}
	}

	var record models.Record
	err := s.DB.Preload("PlantRecords.Plant").First(&record, recordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "record", ID: recordID}
		}
		return nil, err
	}

	view := buildRecordView(&record)

	if s.Cache != nil {
		if err := s.Cache.CacheRecordView(&view); err != nil {
			logger.Warning("記録キャッシュの保存に失敗しました: %v", err)
		}
	}

	return &view, nil
}

// 5. ListActivePlants 有効な植物を表示順で返す
func (s *QueryService) ListActivePlants() ([]PlantView, error) {
	var plants []models.Plant
	if err := s.DB.Where("is_active = ?", true).Order("display_order asc").Find(&plants).Error; err != nil {
		return nil, err
	}

	views := make([]PlantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, PlantView{
			ID:           p.ID,
			Name:         p.Name,
			DisplayOrder: p.DisplayOrder,
		})
	}
	return views, nil
}

// buildRecordView 記録とプリロード済みの植物記録からビューを組み立てる
func buildRecordView(record *models.Record) RecordView {
	plants := make([]PlantEntryView, 0, len(record.PlantRecords))
	for _, pr := range record.PlantRecords {
		name := ""
		if pr.Plant != nil {
			name = pr.Plant.Name
		}

		var image *string
		if pr.ImageFilename != "" {
			path := "/api/images/" + pr.ImageFilename
			image = &path
		}

		plants = append(plants, PlantEntryView{
			PlantID:   pr.PlantID,
			PlantName: name,
			Height:    pr.Height,
			Comment:   pr.Comment,
			Image:     image,
		})
	}

	return RecordView{
		ID:          record.ID,
		Date:        record.RecordDate,
		CreatedAt:   record.CreatedAt,
		Weather:     record.Weather.String(),
		Temperature: record.Temperature,
		Plants:      plants,
	}
}

// parseCalendarDate YYYY-MM-DD形式の実在する暦日として解釈する。
// 2024-02-30 のような存在しない日付はエラーになる
func parseCalendarDate(s string) (string, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}
