package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/roomfinder/internal/auth"
	"github.com/hitoshi/roomfinder/internal/middleware"
	"github.com/hitoshi/roomfinder/internal/model"
)

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := jsonEncode(w, body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// ストアやIdPの詳細はログにのみ記録し、クライアントには返さない。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	switch {
	case errors.Is(err, auth.ErrMissingToken):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
	case errors.Is(err, auth.ErrInvalidToken):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
	case errors.Is(err, auth.ErrRegistrationRequired):
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewRegistrationRequiredError())
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, auth.ErrPolicyRejection):
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
	case errors.Is(err, auth.ErrDuplicateRegistration):
		writeAPIErrorResponse(w, http.StatusConflict, model.NewAlreadyRegisteredError())
	case errors.Is(err, auth.ErrStoreUnavailable):
		slog.Error("store unavailable", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewServiceUnavailableError())
	default:
		slog.Error("internal server error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
	}
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeEmailDomainNotAllowed, model.ErrCodeRegistrationRequired:
		return http.StatusForbidden
	case model.ErrCodeAlreadyRegistered, model.ErrCodeDuplicateHostel, model.ErrCodeDuplicateRoom:
		return http.StatusConflict
	case model.ErrCodeInvalidRequest, model.ErrCodeValidationFailed,
		model.ErrCodeInvalidImageURL, model.ErrCodeInvalidCursor:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound, model.ErrCodeHostelNotFound, model.ErrCodeRoomNotFound:
		return http.StatusNotFound
	case model.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// callerOrUnauthorized はアクセスガードが注入した呼び出し元を返す。
// ガード外で呼ばれた場合は401を書き込みfalseを返す。
func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (*model.Caller, bool) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return nil, false
	}
	return caller, true
}
