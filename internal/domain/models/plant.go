package models

// Plant 観察対象の植物種類。初期化時に登録され、通常は無効化のみで削除しない
type Plant struct {
	BaseModel
	Name         string `gorm:"type:varchar(50);not null" json:"name"`      // 表示名（例: 向日葵（ひまわり））
	DisplayOrder int    `gorm:"default:0" json:"display_order"`             // 表示順（昇順）
	IsActive     bool   `gorm:"default:true" json:"is_active"`              // 有効フラグ（ソフト削除）

	// Relations
	PlantRecords []PlantRecord `gorm:"foreignKey:PlantID" json:"plant_records,omitempty"` // この植物の観察記録（一対多）
}
