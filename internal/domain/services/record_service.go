package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/pkg/logger"
)

// PlantEntryInput クライアントから送られる植物1件分の入力。
// 空文字列は「未入力」として扱う
type PlantEntryInput struct {
	Height        string
	Comment       string
	ImageFilename string
}

// UpdateRecordInput 記録更新の入力。nilのフィールドは変更しない。
// PlantEntries が与えられた場合は全置換になる
type UpdateRecordInput struct {
	Weather         *string
	Temperature     *string
	Date            *string
	PlantEntries    map[string]PlantEntryInput
	HasPlantEntries bool
}

// InterfaceRecordService 観察記録の作成・更新・削除サービスのインターフェース
type InterfaceRecordService interface {
	CreateDailyRecord(effectiveDate string, weather, temperature *string, entries map[string]PlantEntryInput) (uint, error)
	ReplaceDailyRecord(recordID uint, in UpdateRecordInput) (uint, error)
	DeleteDailyRecord(recordID uint) error
}

// RecordService 観察記録関連のサービスを提供する。
// 記録日は呼び出し側（タイムゾーンポリシー）が解決済みのものを受け取る
type RecordService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewRecordService 新しい記録サービスを作成する
func NewRecordService(db *gorm.DB, cfg *config.Config) InterfaceRecordService {
	return &RecordService{
		DB:     db,
		Config: cfg,
	}
}

// 1. CreateDailyRecord 指定日の記録と植物記録を1トランザクションで作成する。
// 同じ日付の記録が既にある場合は DuplicateRecordError を返す
func (s *RecordService) CreateDailyRecord(effectiveDate string, weather, temperature *string, entries map[string]PlantEntryInput) (uint, error) {
	parsedWeather, err := parseWeatherInput(weather)
	if err != nil {
		return 0, err
	}

	parsedTemperature, err := parseTemperatureInput(temperature)
	if err != nil {
		return 0, err
	}

	var recordID uint
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		// 先行チェック。同時リクエストの競合は一意制約が最終的に防ぐ
		var existing models.Record
		if err := tx.Where("record_date = ?", effectiveDate).First(&existing).Error; err == nil {
			return &DuplicateRecordError{
				ExistingID:   existing.ID,
				ExistingDate: existing.RecordDate,
				CreatedAt:    existing.CreatedAt,
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := models.Record{
			RecordDate:  effectiveDate,
			Weather:     parsedWeather,
			Temperature: parsedTemperature,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := s.insertPlantRecords(tx, record.ID, entries); err != nil {
			return err
		}

		recordID = record.ID
		return nil
	})

	if txErr != nil {
		// 一意制約違反はチェックと挿入の競合でも起きる。
		// ドメインエラーに変換して既存記録の情報を添える
		var dup *DuplicateRecordError
		if errors.As(txErr, &dup) {
			return 0, dup
		}
		if conflict := s.duplicateForDate(effectiveDate, txErr); conflict != nil {
			return 0, conflict
		}
		return 0, txErr
	}

	return recordID, nil
}

// 2. ReplaceDailyRecord 記録を部分更新する。植物記録が与えられた場合は
// 既存の植物記録を全て削除してから作り直す（全置換）
func (s *RecordService) ReplaceDailyRecord(recordID uint, in UpdateRecordInput) (uint, error) {
	var record models.Record
	if err := s.DB.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "record", ID: recordID}
		}
		return 0, err
	}

	updates := map[string]interface{}{}

	if in.Weather != nil {
		w, err := parseWeatherInput(in.Weather)
		if err != nil {
			return 0, err
		}
		updates["weather"] = w
	}

	if in.Temperature != nil {
		t, err := parseTemperatureInput(in.Temperature)
		if err != nil {
			return 0, err
		}
		updates["temperature"] = t
	}

	if in.Date != nil {
		d, err := parseDateInput(*in.Date)
		if err != nil {
			return 0, err
		}
		updates["record_date"] = d
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Record{}).Where("id = ?", recordID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.HasPlantEntries {
			if err := tx.Where("record_id = ?", recordID).Delete(&models.PlantRecord{}).Error; err != nil {
				return err
			}
			if err := s.insertPlantRecords(tx, recordID, in.PlantEntries); err != nil {
				return err
			}
		}

		return nil
	})

	if txErr != nil {
		// 日付変更が他の記録と衝突した場合も一意制約違反になる
		if newDate, ok := updates["record_date"].(string); ok {
			if conflict := s.duplicateForDate(newDate, txErr); conflict != nil {
				return 0, conflict
			}
		}
		return 0, txErr
	}

	return recordID, nil
}

// 3. DeleteDailyRecord 記録と従属する植物記録をまとめて削除する
func (s *RecordService) DeleteDailyRecord(recordID uint) error {
	var record models.Record
	if err := s.DB.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "record", ID: recordID}
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		// 外部キー制約の順序に合わせて子から削除する
		if err := tx.Where("record_id = ?", recordID).Delete(&models.PlantRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
}

// insertPlantRecords 植物入力を解決して植物記録を挿入する。
// 高さ・コメント・画像が全て空の項目と、植物参照が解決できない項目は読み飛ばす
func (s *RecordService) insertPlantRecords(tx *gorm.DB, recordID uint, entries map[string]PlantEntryInput) error {
	if len(entries) == 0 {
		return nil
	}

	var plants []models.Plant
	if err := tx.Find(&plants).Error; err != nil {
		return err
	}
	plantIDs := make(map[uint]bool, len(plants))
	for _, p := range plants {
		plantIDs[p.ID] = true
	}

	for ref, entry := range entries {
		height := strings.TrimSpace(entry.Height)
		comment := strings.TrimSpace(entry.Comment)
		image := strings.TrimSpace(entry.ImageFilename)

		// 意味のあるデータが無い項目は保存しない
		if height == "" && comment == "" && image == "" {
			continue
		}

		plantID, ok := resolvePlantRef(ref, plantIDs)
		if !ok {
			logger.Warning("解決できない植物参照のためスキップします: %q", ref)
			continue
		}

		var heightValue *float64
		if height != "" {
			if v, err := strconv.ParseFloat(height, 64); err == nil {
				rounded := math.Round(v*10) / 10
				heightValue = &rounded
			} else {
				// 不正な高さは項目全体を失敗させず、未入力として扱う
				logger.Warning("不正な高さの値を無視します: %q", height)
			}
		}

		plantRecord := models.PlantRecord{
			RecordID:      recordID,
			PlantID:       plantID,
			Height:        heightValue,
			Comment:       comment,
			ImageFilename: image,
		}
		if err := tx.Create(&plantRecord).Error; err != nil {
			return err
		}
	}

	return nil
}

// duplicateForDate 指定日付の既存記録を探し、見つかれば DuplicateRecordError を組み立てる。
// 一意制約違反からの変換に使うベストエフォートの再取得
func (s *RecordService) duplicateForDate(date string, cause error) *DuplicateRecordError {
	var existing models.Record
	if err := s.DB.Where("record_date = ?", date).First(&existing).Error; err != nil {
		logger.Error("重複記録の再取得に失敗しました: %v (原因: %v)", err, cause)
		return nil
	}
	return &DuplicateRecordError{
		ExistingID:   existing.ID,
		ExistingDate: existing.RecordDate,
		CreatedAt:    existing.CreatedAt,
	}
}

// resolvePlantRef 植物参照（短縮コードまたは植物ID）を保存済み植物のIDに解決する
func resolvePlantRef(ref string, plantIDs map[uint]bool) (uint, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil || n <= 0 {
		return 0, false
	}
	id := uint(n)
	if !plantIDs[id] {
		return 0, false
	}
	return id, true
}

// parseWeatherInput 天気入力を検証して正規の天気に解決する
func parseWeatherInput(weather *string) (models.Weather, error) {
	if weather == nil {
		return "", &ValidationError{Field: "weather", Message: "天気データが必要です"}
	}
	w, ok := models.ParseWeather(strings.TrimSpace(*weather))
	if !ok {
		return "", &ValidationError{Field: "weather", Message: "無効な天気値: " + *weather}
	}
	return w, nil
}

// parseTemperatureInput 気温入力を検証して小数1桁に丸める
func parseTemperatureInput(temperature *string) (float64, error) {
	if temperature == nil {
		return 0, &ValidationError{Field: "temperature", Message: "気温データが必要です"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*temperature), 64)
	if err != nil {
		return 0, &ValidationError{Field: "temperature", Message: "無効な気温値: " + *temperature}
	}
	return math.Round(v*10) / 10, nil
}

// parseDateInput 日付入力をYYYY-MM-DD形式として検証する
func parseDateInput(date string) (string, error) {
	d, err := parseCalendarDate(strings.TrimSpace(date))
	if err != nil {
		return "", &ValidationError{Field: "date", Message: "無効な日付形式: " + date}
	}
	return d, nil
}
