// Package model はドメインモデルを定義する。
package model

import "time"

// User は寮レビューサービスの利用者を表す。
// 機関ドメインのGoogleアカウントで初回ログインし、登録完了手続きを終えた時点で作成される。
type User struct {
	ID                 string
	Email              string
	Name               string
	RegistrationNumber string
	IsAdmin            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Identity は外部IdPで検証済みのユーザー情報を表す。
// 永続化はせず、コールバック処理の間だけ保持する。
type Identity struct {
	Email         string
	EmailVerified bool
	DisplayName   string
}

// Caller はアクセスガードを通過したリクエストの呼び出し元を表す。
// 署名検証済みトークンのクレームからのみ構築される。
type Caller struct {
	UserID  string // 登録前トークンでは空
	Email   string
	IsAdmin bool
}

// IsRegistered は呼び出し元がユーザーレコードを持つ（本トークンで認証された）かを返す。
func (c *Caller) IsRegistered() bool {
	return c != nil && c.UserID != ""
}
