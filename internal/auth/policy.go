package auth

import "strings"

// DefaultAllowedEmailSuffix は許可するメールアドレスのデフォルトサフィックス。
const DefaultAllowedEmailSuffix = "@vitstudent.ac.in"

// DomainPolicy はメールアドレスのサフィックスによる許可リスト。
// 比較は大文字小文字を区別する完全なサフィックス一致で、IdPのhdヒントには依存しない。
type DomainPolicy struct {
	suffix string
}

// NewDomainPolicy はDomainPolicyを生成する。suffixが空の場合はデフォルト値を使う。
func NewDomainPolicy(suffix string) DomainPolicy {
	if suffix == "" {
		suffix = DefaultAllowedEmailSuffix
	}
	return DomainPolicy{suffix: suffix}
}

// Allows はemailが許可サフィックスで終わる場合にtrueを返す。
func (p DomainPolicy) Allows(email string) bool {
	return email != "" && strings.HasSuffix(email, p.suffix)
}

// Suffix は許可サフィックスを返す。
func (p DomainPolicy) Suffix() string {
	return p.suffix
}
