package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/roomfinder/internal/auth"
	"github.com/hitoshi/roomfinder/internal/metrics"
	"github.com/hitoshi/roomfinder/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func parseLogEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

// TestLoggingMiddleware_LogsRequestFields はリクエストログに必要なフィールドが含まれることを検証する。
func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/hostels", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := parseLogEntry(t, &buf)
	if entry["msg"] != "http_request" {
		t.Errorf("msg = %q, want %q", entry["msg"], "http_request")
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %q, want %q", entry["method"], "GET")
	}
	if entry["path"] != "/api/hostels" {
		t.Errorf("path = %q, want %q", entry["path"], "/api/hostels")
	}
	if status, ok := entry["status"].(float64); !ok || status != 200 {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if duration, ok := entry["duration_ms"].(float64); !ok || duration < 0 {
		t.Errorf("duration_ms = %v, want >= 0", entry["duration_ms"])
	}
	if _, ok := entry["email"]; ok {
		t.Error("email should be omitted for unauthenticated request")
	}
}

// TestLoggingMiddleware_IncludesCallerFromInnerGuard は内側のアクセスガードで確定した呼び出し元がログに含まれることを検証する。
func TestLoggingMiddleware_IncludesCallerFromInnerGuard(t *testing.T) {
	var buf bytes.Buffer
	tokens := auth.NewTokenManager(testSecret)
	token, err := tokens.IssueFull(&model.User{ID: "user-7", Email: "carol@vitstudent.ac.in"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueFull: %v", err)
	}

	inner := NewAccessGuard(tokens, auth.LevelMember, metrics.Nop{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := NewLoggingMiddleware(newTestLogger(&buf))(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := parseLogEntry(t, &buf)
	if entry["email"] != "carol@vitstudent.ac.in" {
		t.Errorf("email = %v, want %q", entry["email"], "carol@vitstudent.ac.in")
	}
	if entry["user_id"] != "user-7" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-7")
	}
}

// TestLoggingMiddleware_PreRegistrationCallerOmitsUserID は登録前トークンではuser_idを出力しないことを検証する。
func TestLoggingMiddleware_PreRegistrationCallerOmitsUserID(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ContextWithCaller(r.Context(), &model.Caller{Email: "new@vitstudent.ac.in"})
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/register", nil))

	entry := parseLogEntry(t, &buf)
	if entry["email"] != "new@vitstudent.ac.in" {
		t.Errorf("email = %v, want %q", entry["email"], "new@vitstudent.ac.in")
	}
	if _, ok := entry["user_id"]; ok {
		t.Error("user_id should be omitted for pre-registration caller")
	}
}

// TestLoggingMiddleware_LevelFromStatus はステータスコードに応じたログレベルで出力されることを検証する。
func TestLoggingMiddleware_LevelFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"200 OK", http.StatusOK, "INFO"},
		{"201 Created", http.StatusCreated, "INFO"},
		{"401 Unauthorized", http.StatusUnauthorized, "WARN"},
		{"404 Not Found", http.StatusNotFound, "WARN"},
		{"503 Service Unavailable", http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			entry := parseLogEntry(t, &buf)
			if status := int(entry["status"].(float64)); status != tt.statusCode {
				t.Errorf("status = %d, want %d", status, tt.statusCode)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %q", entry["level"], tt.wantLevel)
			}
		})
	}
}

// TestLoggingMiddleware_BodyWriteCapture はレスポンスボディ書き込み後もステータスが記録されることを検証する。
func TestLoggingMiddleware_BodyWriteCapture(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WriteHeaderを呼ばずにWriteすると暗黙的に200が設定される
		w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	entry := parseLogEntry(t, &buf)
	if status := int(entry["status"].(float64)); status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
}
