// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はレビュー本文と寮の説明文をサニタイズし、
// 利用者が投稿したテキスト経由のXSSを防ぐ。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグのみを通過させる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー入力のサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// SanitizeText は全てのタグを除去したプレーンテキストを返す。
	// レビュー本文など、HTMLとして描画しない入力に使用する。
	// 前後の空白は除去する。
	SanitizeText(raw string) string

	// SanitizeDescription は寮の説明文を軽量な書式タグのみ残してサニタイズする。
	// 許可タグ: p, br, ul, ol, li, strong, em。リンクと画像は許可しない。
	SanitizeDescription(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	text        *bluemonday.Policy
	description *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	description := bluemonday.NewPolicy()
	description.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	return &contentSanitizer{
		text:        bluemonday.StrictPolicy(),
		description: description,
	}
}

// SanitizeText は全てのタグを除去したプレーンテキストを返す。
// bluemondayがエスケープした実体参照は元の文字に戻す。出力はテキストとして扱うこと。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.text.Sanitize(raw)))
}

// SanitizeDescription は寮の説明文をサニタイズする。
func (s *contentSanitizer) SanitizeDescription(rawHTML string) string {
	return strings.TrimSpace(s.description.Sanitize(rawHTML))
}
