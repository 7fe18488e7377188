// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidToken          = "INVALID_TOKEN"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeEmailDomainNotAllowed = "EMAIL_DOMAIN_NOT_ALLOWED"
	ErrCodeRegistrationRequired  = "REGISTRATION_REQUIRED"
	ErrCodeAlreadyRegistered     = "ALREADY_REGISTERED"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeHostelNotFound        = "HOSTEL_NOT_FOUND"
	ErrCodeRoomNotFound          = "ROOM_NOT_FOUND"
	ErrCodeDuplicateHostel       = "DUPLICATE_HOSTEL"
	ErrCodeDuplicateRoom         = "DUPLICATE_ROOM"
	ErrCodeInvalidImageURL       = "INVALID_IMAGE_URL"
	ErrCodeInvalidCursor         = "INVALID_CURSOR"
	ErrCodeServiceUnavailable    = "SERVICE_UNAVAILABLE"
)

// NewUnauthorizedError はトークン未指定エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidTokenError は署名不正・期限切れトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者に問い合わせてください。",
	}
}

// NewRegistrationRequiredError は登録前トークンで保護リソースにアクセスした場合のエラーを生成する。
func NewRegistrationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeRegistrationRequired,
		Message:  "ユーザー登録が完了していません。",
		Category: "auth",
		Action:   "氏名と学籍番号を入力して登録を完了してください。",
	}
}

// NewEmailDomainNotAllowedError は許可されていないメールドメインのエラーを生成する。
func NewEmailDomainNotAllowedError(suffix string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailDomainNotAllowed,
		Message:  fmt.Sprintf("%s のアカウントのみ利用できます。", suffix),
		Category: "auth",
		Action:   "機関のGoogleアカウントでログインし直してください。",
	}
}

// NewAlreadyRegisteredError は登録済みユーザーの再登録エラーを生成する。
func NewAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyRegistered,
		Message:  "このアカウントは既に登録されています。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewHostelNotFoundError は寮が見つからない場合のエラーを生成する。
func NewHostelNotFoundError(key string) *APIError {
	return &APIError{
		Code:     ErrCodeHostelNotFound,
		Message:  fmt.Sprintf("指定された寮が見つかりません: %s", key),
		Category: "resource",
		Action:   "寮IDまたは寮名を確認してください。",
	}
}

// NewRoomNotFoundError は部屋が見つからない場合のエラーを生成する。
func NewRoomNotFoundError(key string) *APIError {
	return &APIError{
		Code:     ErrCodeRoomNotFound,
		Message:  fmt.Sprintf("指定された部屋が見つかりません: %s", key),
		Category: "resource",
		Action:   "寮と部屋タイプを確認してください。",
	}
}

// NewDuplicateHostelError は同名の寮が既に存在する場合のエラーを生成する。
func NewDuplicateHostelError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateHostel,
		Message:  fmt.Sprintf("同じ名前の寮が既に登録されています: %s", name),
		Category: "resource",
		Action:   "別の名前を指定するか、既存の寮を編集してください。",
	}
}

// NewDuplicateRoomError は同じ部屋タイプが既に存在する場合のエラーを生成する。
func NewDuplicateRoomError(roomType string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateRoom,
		Message:  fmt.Sprintf("この寮には既に部屋タイプ %s が登録されています。", roomType),
		Category: "resource",
		Action:   "既存の部屋情報を確認してください。",
	}
}

// NewInvalidImageURLError は画像URLが許可されない場合のエラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("画像URLが無効です: %s", reason),
		Category: "validation",
		Action:   "公開されている https:// の画像URLを指定してください。",
	}
}

// NewInvalidCursorError はページネーションカーソルが不正な場合のエラーを生成する。
func NewInvalidCursorError(cursor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  fmt.Sprintf("無効なカーソル値です: %s", cursor),
		Category: "validation",
		Action:   "前回のレスポンスで返されたカーソルを指定してください。",
	}
}

// NewServiceUnavailableError は一時的な障害（データストア接続不可など）のエラーを生成する。
func NewServiceUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeServiceUnavailable,
		Message:  "一時的にサービスを利用できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
