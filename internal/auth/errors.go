package auth

import (
	"errors"
	"fmt"
)

// 認証フローで返すエラー。呼び出し側はerrors.Isで判定する。
var (
	// ErrPolicyRejection はメールアドレスが許可ドメインに一致しないことを表す。
	ErrPolicyRejection = errors.New("email domain is not allowed")
	// ErrIdentityUnavailable はIdPから検証済みメールアドレスを取得できなかったことを表す。
	ErrIdentityUnavailable = errors.New("identity provider returned no verified email")
	// ErrMissingToken はBearerトークンが指定されていないことを表す。
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken は署名不正・期限切れ・形式不正のトークンを表す。
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden は要求レベルに対して権限が不足していることを表す。
	ErrForbidden = errors.New("insufficient privileges")
	// ErrRegistrationRequired は登録前トークンで会員向けリソースにアクセスしたことを表す。
	ErrRegistrationRequired = fmt.Errorf("%w: registration required", ErrForbidden)
	// ErrDuplicateRegistration は同じメールアドレスのユーザーが既に登録されていることを表す。
	ErrDuplicateRegistration = errors.New("email is already registered")
	// ErrStoreUnavailable はユーザーストアへのアクセス失敗を表す。再試行可能。
	ErrStoreUnavailable = errors.New("user store unavailable")
)
