package models

// Record 1日分の観察記録。record_date の一意制約が「1日1件」の不変条件を守る
type Record struct {
	BaseModel
	RecordDate  string  `gorm:"type:date;uniqueIndex;not null" json:"record_date"` // 記録日（YYYY-MM-DD）
	Weather     Weather `gorm:"type:varchar(10);not null" json:"weather"`          // 天気（正規トークン）
	Temperature float64 `gorm:"type:decimal(4,1);not null" json:"temperature"`     // 気温（小数1桁）

	// Relations - 親の削除で植物記録も削除される（コンポジション）
	PlantRecords []PlantRecord `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"plant_records,omitempty"`
}
