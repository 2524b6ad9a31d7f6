package services

import (
	"fmt"
	"time"
)

// ValidationError 入力値の不備。Fieldに問題のあったフィールド名を持つ
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// DuplicateRecordError 記録日の一意制約違反。既存記録への参照を持ち、
// 「今日は既に記録済み」の案内に使う
type DuplicateRecordError struct {
	ExistingID   uint
	ExistingDate string
	CreatedAt    time.Time
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("record already exists for date %s (id=%d)", e.ExistingDate, e.ExistingID)
}

// NotFoundError 対象リソースが解決できない
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (id=%d)", e.Resource, e.ID)
}

// StorageError オブジェクトストレージの操作失敗
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
