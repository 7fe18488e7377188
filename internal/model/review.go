package model

import "time"

// Review は部屋に対するレビューを表す。
// 1レビュー1行で保存し、親レコードに配列として持たない。
type Review struct {
	ID         string
	RoomID     string
	UserID     string
	AuthorName string // 投稿時点のユーザー名
	Rating     int    // 1〜5
	Body       string // プレーンテキストにサニタイズ済み
	CreatedAt  time.Time
}

const (
	// MinRating はレビュー評価の最小値。
	MinRating = 1
	// MaxRating はレビュー評価の最大値。
	MaxRating = 5
)
