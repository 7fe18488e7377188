package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/roomfinder/internal/model"
)

const testSecret = "test-secret-with-at-least-32-bytes!!"

func newTestTokenManager(now time.Time) *TokenManager {
	m := NewTokenManager(testSecret)
	m.now = func() time.Time { return now }
	return m
}

// decodePayload は署名を検証せずにJWTペイロードをmapとして取り出す。
func decodePayload(t *testing.T, token string) map[string]any {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token should have 3 segments, got %d", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	return payload
}

func TestIssuePreRegistration_HasOnlyEmail(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(now)

	token, err := m.IssuePreRegistration("alice@vitstudent.ac.in", time.Hour)
	if err != nil {
		t.Fatalf("IssuePreRegistration() error = %v", err)
	}

	payload := decodePayload(t, token)
	if payload["email"] != "alice@vitstudent.ac.in" {
		t.Errorf("email = %v", payload["email"])
	}
	if _, ok := payload["id"]; ok {
		t.Error("pre-registration token must not carry id")
	}
	if _, ok := payload["isAdmin"]; ok {
		t.Error("pre-registration token must not carry isAdmin")
	}
	if exp := int64(payload["exp"].(float64)); exp != now.Add(time.Hour).Unix() {
		t.Errorf("exp = %d, want %d", exp, now.Add(time.Hour).Unix())
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !claims.IsPreRegistration() {
		t.Error("expected pre-registration claims")
	}
	if claims.Caller().IsAdmin {
		t.Error("absent isAdmin must decode as false")
	}
}

func TestIssueFull_CarriesUserIdentity(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(now)

	user := &model.User{ID: "user-1", Email: "admin@vitstudent.ac.in", IsAdmin: true}
	token, err := m.IssueFull(user, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueFull() error = %v", err)
	}

	payload := decodePayload(t, token)
	if payload["id"] != "user-1" || payload["isAdmin"] != true {
		t.Errorf("payload = %v", payload)
	}
	if exp := int64(payload["exp"].(float64)); exp != now.Add(24*time.Hour).Unix() {
		t.Errorf("exp = %d, want 24h after issue", exp)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	caller := claims.Caller()
	if caller.UserID != "user-1" || caller.Email != "admin@vitstudent.ac.in" || !caller.IsAdmin {
		t.Errorf("caller = %+v", caller)
	}
}

func TestIssueFull_NonAdminHasExplicitFalse(t *testing.T) {
	m := newTestTokenManager(time.Now())

	token, err := m.IssueFull(&model.User{ID: "u", Email: "u@vitstudent.ac.in"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueFull() error = %v", err)
	}
	if v, ok := decodePayload(t, token)["isAdmin"]; !ok || v != false {
		t.Errorf("isAdmin = %v (present=%v), want explicit false", v, ok)
	}
}

func TestParse_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestTokenManager(issuedAt)
	token, err := issuer.IssuePreRegistration("alice@vitstudent.ac.in", time.Hour)
	if err != nil {
		t.Fatalf("IssuePreRegistration() error = %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"just issued", issuedAt, false},
		{"59 minutes later", issuedAt.Add(59 * time.Minute), false},
		{"61 minutes later", issuedAt.Add(61 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestTokenManager(tt.at).Parse(token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error should wrap ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestParse_RejectsTamperedAndForeignTokens(t *testing.T) {
	m := newTestTokenManager(time.Now())
	valid, err := m.IssueFull(&model.User{ID: "u", Email: "u@vitstudent.ac.in"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueFull() error = %v", err)
	}

	otherKey := NewTokenManager("another-secret-with-at-least-32-bytes")
	foreign, _ := otherKey.IssueFull(&model.User{ID: "u", Email: "u@vitstudent.ac.in", IsAdmin: true}, time.Hour)

	// ペイロードをisAdmin=trueに書き換えて元の署名を付けたトークン
	parts := strings.Split(valid, ".")
	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"id":"u","email":"u@vitstudent.ac.in","isAdmin":true,"iss":"roomfinder","exp":9999999999}`))
	tampered := parts[0] + "." + forgedPayload + "." + parts[2]

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "u@vitstudent.ac.in", "iss": "roomfinder", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"signed with another secret", foreign},
		{"tampered payload", tampered},
		{"alg none", none},
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestParse_RejectsTokenWithoutEmail(t *testing.T) {
	m := newTestTokenManager(time.Now())
	token, err := m.sign(&Claims{}, "", time.Hour)
	if err != nil {
		t.Fatalf("sign() error = %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}
