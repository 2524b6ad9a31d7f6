package models

// PlantRecord 1つの植物の観察値。親Recordの作成・更新と同時にまとめて書き換えられ、
// 単独では作成されない。高さ・コメント・画像が全て空の行は保存しない
type PlantRecord struct {
	BaseModel
	RecordID      uint     `gorm:"not null;index" json:"record_id"`
	PlantID       uint     `gorm:"not null;index" json:"plant_id"`
	Height        *float64 `gorm:"type:decimal(5,1)" json:"height"`              // 高さcm（小数1桁、任意）
	Comment       string   `gorm:"type:text" json:"comment"`                     // 自由コメント（任意）
	ImageFilename string   `gorm:"type:varchar(255)" json:"image_filename"`      // ストレージ上のオブジェクト名（任意、所有はしない）

	// Relations
	Record *Record `gorm:"foreignKey:RecordID" json:"record,omitempty"`
	Plant  *Plant  `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
}
