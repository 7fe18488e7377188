// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/roomfinder/internal/auth"
	"github.com/hitoshi/roomfinder/internal/metrics"
	"github.com/hitoshi/roomfinder/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// callerContextKey はリクエストコンテキストに認証済みの呼び出し元を格納するためのキー。
	callerContextKey = contextKey("caller")
	// callerSlotContextKey はロギングミドルウェアが呼び出し元を受け取るためのスロットのキー。
	callerSlotContextKey = contextKey("caller_slot")
)

// callerSlot は内側のミドルウェアで確定した呼び出し元を外側のミドルウェアへ渡す。
type callerSlot struct {
	caller *model.Caller
}

// NewAccessGuard はAuthorizationヘッダーのBearerトークンを検証し、
// 要求レベルを満たすリクエストのみを通過させるミドルウェアを返す。
// 通過したリクエストのコンテキストには呼び出し元（model.Caller）を注入する。
// ハンドラーはCallerFromContext以外の方法で呼び出し元を知ることはない。
func NewAccessGuard(verifier auth.TokenVerifier, level auth.Level, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := auth.Authorize(verifier, r.Header.Get("Authorization"), level)
			if err != nil {
				status, apiErr, outcome := mapAuthorizationError(err)
				collector.RecordAuthorization(level.String(), outcome)
				slog.Debug("access denied",
					slog.String("path", r.URL.Path),
					slog.String("level", level.String()),
					slog.String("reason", err.Error()),
				)
				WriteErrorResponse(w, status, apiErr)
				return
			}

			collector.RecordAuthorization(level.String(), metrics.OutcomeAllowed)
			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
		})
	}
}

// mapAuthorizationError は認可エラーをHTTPステータスとAPIErrorに変換する。
func mapAuthorizationError(err error) (int, *model.APIError, string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, model.NewUnauthorizedError(), metrics.OutcomeMissingToken
	case errors.Is(err, auth.ErrRegistrationRequired):
		return http.StatusForbidden, model.NewRegistrationRequiredError(), metrics.OutcomeForbidden
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, model.NewForbiddenError(), metrics.OutcomeForbidden
	default:
		return http.StatusUnauthorized, model.NewInvalidTokenError(), metrics.OutcomeInvalidToken
	}
}

// CallerFromContext はリクエストコンテキストから呼び出し元を取得する。
// アクセスガードを通過したリクエストでのみ有効。
func CallerFromContext(ctx context.Context) (*model.Caller, error) {
	caller, ok := ctx.Value(callerContextKey).(*model.Caller)
	if !ok || caller == nil {
		return nil, fmt.Errorf("caller not found in context")
	}
	return caller, nil
}

// ContextWithCaller はコンテキストに呼び出し元を注入する。
// テストやミドルウェア以外のコンテキスト生成でも使用する。
func ContextWithCaller(ctx context.Context, caller *model.Caller) context.Context {
	if slot, ok := ctx.Value(callerSlotContextKey).(*callerSlot); ok {
		slot.caller = caller
	}
	return context.WithValue(ctx, callerContextKey, caller)
}
