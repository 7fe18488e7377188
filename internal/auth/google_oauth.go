package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hitoshi/roomfinder/internal/model"
	"golang.org/x/oauth2"
)

const (
	defaultGoogleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	defaultGoogleTokenURL = "https://oauth2.googleapis.com/token"
	defaultGoogleIssuer   = "https://accounts.google.com"
	defaultGoogleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// HostedDomain はログイン画面に渡すhdヒント。認可判定には使わない。
	HostedDomain string

	// HTTPClient はトークン交換と公開鍵取得に使うクライアント。nilの場合はhttp.DefaultClient。
	HTTPClient *http.Client

	// テスト用にオーバーライド可能な値
	AuthURL  string
	TokenURL string
	Issuer   string
	JWKSURL  string
	KeySet   oidc.KeySet
}

// GoogleOAuthProvider はGoogle OAuth 2.0の認可コードフローとIDトークン検証を提供する。
type GoogleOAuthProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	hostedDomain string
	client       *http.Client
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
// ディスカバリは行わず、Googleの固定エンドポイントを使う。公開鍵は初回検証時に取得する。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) *GoogleOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultGoogleAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.Issuer == "" {
		config.Issuer = defaultGoogleIssuer
	}
	if config.JWKSURL == "" {
		config.JWKSURL = defaultGoogleJWKSURL
	}

	keySet := config.KeySet
	if keySet == nil {
		keySet = oidc.NewRemoteKeySet(withHTTPClient(context.Background(), config.HTTPClient), config.JWKSURL)
	}

	return &GoogleOAuthProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   config.AuthURL,
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		verifier:     oidc.NewVerifier(config.Issuer, keySet, &oidc.Config{ClientID: config.ClientID}),
		hostedDomain: config.HostedDomain,
		client:       config.HTTPClient,
	}
}

// GetLoginURL はGoogle OAuthの認証URLを生成する。
func (p *GoogleOAuthProvider) GetLoginURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if p.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.hostedDomain))
	}
	opts = append(opts, oauth2.SetAuthURLParam("prompt", "select_account"))
	return p.oauth2Config.AuthCodeURL(state, opts...)
}

// googleIDClaims はGoogleのIDトークンから取り出すクレーム。
type googleIDClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// ExchangeCode は認可コードをトークンに交換し、IDトークンを検証して本人情報を返す。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*model.Identity, error) {
	if code == "" {
		return nil, errors.New("empty authorization code")
	}
	ctx = withHTTPClient(ctx, p.client)

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("missing id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id_token: %w", err)
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token claims: %w", err)
	}

	return &model.Identity{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   claims.Name,
	}, nil
}

// withHTTPClient はoauth2とgo-oidcが参照するHTTPクライアントをコンテキストに設定する。
func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	return oidc.ClientContext(ctx, client)
}

// compile-time interface check
var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
