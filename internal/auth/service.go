// Package auth はOAuthログイン、ドメイン許可リスト、セッショントークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/roomfinder/internal/metrics"
	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードを交換し、IdPが検証した本人情報を返す。
	ExchangeCode(ctx context.Context, code string) (*model.Identity, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	LoginTokenTTL           time.Duration // ログイン時の完全トークンの有効期間
	PreRegistrationTokenTTL time.Duration // 登録前トークンの有効期間
	RegistrationTokenTTL    time.Duration // 登録完了時の完全トークンの有効期間
}

// SessionResult はセッション発行の結果。
type SessionResult struct {
	Token     string
	IsNewUser bool
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   *TokenManager
	policy   DomainPolicy
	metrics  metrics.MetricsCollector
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	tokens *TokenManager,
	policy DomainPolicy,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
		policy:   policy,
		metrics:  collector,
		config:   config,
	}
}

// Policy は適用中のドメイン許可リストを返す。
func (s *Service) Policy() DomainPolicy {
	return s.policy
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
// IdPが拒否した場合や検証済みメールアドレスが得られない場合はトークンを発行しない。
func (s *Service) HandleCallback(ctx context.Context, code string) (*SessionResult, error) {
	identity, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	if identity == nil || identity.Email == "" || !identity.EmailVerified {
		s.metrics.RecordLogin(metrics.OutcomeFailed)
		return nil, ErrIdentityUnavailable
	}

	return s.IssueSession(ctx, identity.Email)
}

// IssueSession は検証済みメールアドレスに対してトークンを発行する。
// 未登録ユーザーには登録前トークンを返し、ユーザーレコードは作成しない。
func (s *Service) IssueSession(ctx context.Context, email string) (*SessionResult, error) {
	if !s.policy.Allows(email) {
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		slog.Warn("login rejected by domain policy",
			slog.String("email", email),
			slog.String("allowed_suffix", s.policy.Suffix()),
		)
		return nil, ErrPolicyRejection
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeFailed)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if user == nil {
		token, err := s.tokens.IssuePreRegistration(email, s.config.PreRegistrationTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to issue pre-registration token: %w", err)
		}
		s.metrics.RecordLogin(metrics.OutcomeNewUser)
		slog.Info("pre-registration token issued", slog.String("email", email))
		return &SessionResult{Token: token, IsNewUser: true}, nil
	}

	token, err := s.tokens.IssueFull(user, s.config.LoginTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.metrics.RecordLogin(metrics.OutcomeExistingUser)
	slog.Info("existing user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return &SessionResult{Token: token, IsNewUser: false}, nil
}

// CompleteRegistration は登録前トークンのメールアドレスでユーザーレコードを作成し、完全トークンを返す。
// 同時登録の競合はストアの一意制約で検出し、ErrDuplicateRegistrationを返す。
func (s *Service) CompleteRegistration(ctx context.Context, preRegToken, name, registrationNumber string) (string, error) {
	claims, err := s.tokens.Parse(preRegToken)
	if err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeInvalidToken)
		return "", err
	}
	if !s.policy.Allows(claims.Email) {
		s.metrics.RecordRegistration(metrics.OutcomeFailed)
		return "", ErrPolicyRejection
	}

	name = strings.TrimSpace(name)
	registrationNumber = strings.TrimSpace(registrationNumber)
	if name == "" || registrationNumber == "" {
		return "", model.NewValidationError("name and registrationNumber are required")
	}

	user := &model.User{
		Email:              claims.Email,
		Name:               name,
		RegistrationNumber: registrationNumber,
		IsAdmin:            false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
			return "", ErrDuplicateRegistration
		}
		s.metrics.RecordRegistration(metrics.OutcomeFailed)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	token, err := s.tokens.IssueFull(user, s.config.RegistrationTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return token, nil
}
