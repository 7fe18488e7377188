package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// errUpstreamStatus はプロバイダーが5xxを返したことを遮断器に失敗として数えるための内部エラー。
var errUpstreamStatus = errors.New("upstream returned server error")

// BreakerConfig はプロバイダー呼び出し用サーキットブレーカーの設定。
type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32        // この回数連続で失敗するとオープンになる
	OpenTimeout         time.Duration // オープン状態からハーフオープンに移るまでの時間
}

// DefaultBreakerConfig はデフォルトのブレーカー設定を返す。
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// breakerTransport はhttp.RoundTripperをサーキットブレーカーで包む。
// 接続失敗と5xx応答を失敗として数え、オープン中は外部に出ずに即座にエラーを返す。
type breakerTransport struct {
	next    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerTransport はnextをサーキットブレーカーで包んだRoundTripperを返す。
// nextがnilの場合はhttp.DefaultTransportを使う。
func NewBreakerTransport(next http.RoundTripper, config BreakerConfig, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &breakerTransport{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// RoundTrip はhttp.RoundTripperを実装する。
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstreamStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, errUpstreamStatus):
		// 応答そのものは呼び出し元に返し、エラー処理を任せる
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%s: %w", t.breaker.Name(), err)
	}
	return resp, err
}
