package code

// エラーコードとメッセージの対応表
var codeMessageMap = map[string]string{
	ErrSuccess:         "成功",
	ErrBind:            "リクエストの形式が正しくありません",
	ErrValidation:      "入力値が正しくありません",
	ErrDuplicateRecord: "今日の記録は既に存在します",
	ErrNotFound:        "記録が見つかりません",
	ErrAuthFailed:      "ユーザー名またはパスワードが正しくありません",
	ErrTokenInvalid:    "無効な認証トークンです",
	ErrTooManyRequests: "リクエスト頻度が高すぎます。しばらくしてから再試行してください",
	ErrStorage:         "画像ストレージでエラーが発生しました",
	ErrDatabase:        "データベースエラーが発生しました",
	ErrUnknown:         "内部サーバーエラーが発生しました",
}

// エラーコードとHTTPステータスコードの対応表
var codeStatusMap = map[string]int{
	ErrSuccess:         StatusOK,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrDuplicateRecord: StatusBadRequest,
	ErrNotFound:        StatusNotFound,
	ErrAuthFailed:      StatusUnauthorized,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrStorage:         StatusInternalServerError,
	ErrDatabase:        StatusInternalServerError,
	ErrUnknown:         StatusInternalServerError,
}

// GetMessage エラーコードに対応するメッセージを取得する
func GetMessage(code string) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus エラーコードに対応するHTTPステータスコードを取得する
func GetStatus(code string) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
