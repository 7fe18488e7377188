package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/roomfinder/internal/model"
)

const tokenIssuer = "roomfinder"

// Claims はセッショントークンのクレーム。
// 登録前トークンはemailのみを持ち、idとisAdminを含まない。
type Claims struct {
	UserID  string `json:"id,omitempty"`
	Email   string `json:"email"`
	IsAdmin *bool  `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// IsPreRegistration は登録前トークンかどうかを返す。
func (c *Claims) IsPreRegistration() bool {
	return c.UserID == ""
}

// Caller はクレームをリクエストコンテキストに載せる呼び出し元情報に変換する。
func (c *Claims) Caller() *model.Caller {
	return &model.Caller{
		UserID:  c.UserID,
		Email:   c.Email,
		IsAdmin: c.IsAdmin != nil && *c.IsAdmin,
	}
}

// TokenManager はHS256で署名したセッショントークンの発行と検証を行う。
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// IssuePreRegistration は登録前トークンを発行する。
func (m *TokenManager) IssuePreRegistration(email string, ttl time.Duration) (string, error) {
	return m.sign(&Claims{Email: email}, email, ttl)
}

// IssueFull はユーザーレコードに基づく完全なセッショントークンを発行する。
func (m *TokenManager) IssueFull(user *model.User, ttl time.Duration) (string, error) {
	isAdmin := user.IsAdmin
	claims := &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: &isAdmin,
	}
	return m.sign(claims, user.ID, ttl)
}

func (m *TokenManager) sign(claims *Claims, subject string, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse はトークンの署名と有効期限を検証してクレームを返す。
// 検証に失敗した場合はErrInvalidTokenをラップして返す。
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}
	return claims, nil
}
