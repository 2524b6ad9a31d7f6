package models

// User 管理画面ログイン用のユーザー。観察記録のドメインモデルには関与しない
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}
