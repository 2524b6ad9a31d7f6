package code

// HTTPステータスコード.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 作成成功.
	StatusCreated = 201
	// StatusBadRequest - 400: リクエストパラメータ不正.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未認証.
	StatusUnauthorized = 401
	// StatusForbidden - 403: アクセス禁止.
	StatusForbidden = 403
	// StatusNotFound - 404: リソースが存在しない.
	StatusNotFound = 404
	// StatusTooManyRequests - 429: リクエスト過多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: サーバ内部エラー.
	StatusInternalServerError = 500
)

// APIエラーコード。クライアントが分岐に使う安定した文字列コード.
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess = "SUCCESS"
	// ErrBind - 400: リクエストボディの解析に失敗.
	ErrBind = "BIND_ERROR"
	// ErrValidation - 400: 入力値の検証エラー.
	ErrValidation = "VALIDATION_ERROR"
	// ErrDuplicateRecord - 400: 同じ日付の記録が既に存在する.
	ErrDuplicateRecord = "DUPLICATE_RECORD"
	// ErrNotFound - 404: 対象リソースが存在しない.
	ErrNotFound = "NOT_FOUND"
	// ErrAuthFailed - 401: 認証失敗（ユーザー名またはパスワード不正）.
	ErrAuthFailed = "AUTH_FAILED"
	// ErrTokenInvalid - 401: トークンが無効.
	ErrTokenInvalid = "TOKEN_INVALID"
	// ErrTooManyRequests - 429: リクエスト頻度が高すぎる.
	ErrTooManyRequests = "TOO_MANY_REQUESTS"
	// ErrStorage - 500: オブジェクトストレージエラー.
	ErrStorage = "STORAGE_ERROR"
	// ErrDatabase - 500: データベースエラー.
	ErrDatabase = "DATABASE_ERROR"
	// ErrUnknown - 500: 予期しないエラー.
	ErrUnknown = "INTERNAL_SERVER_ERROR"
)
