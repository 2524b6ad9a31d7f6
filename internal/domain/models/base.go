package models

import "time"

// BaseModel 全テーブル共通のカラム
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateLayout 記録日付の表記形式
const DateLayout = "2006-01-02"
