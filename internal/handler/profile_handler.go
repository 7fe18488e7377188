package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/user"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, caller *model.Caller, cursor string, limit int) (*user.Profile, error)
}

// ProfileHandler はログインユーザーのプロフィールのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type profileResponse struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	RegistrationNumber string             `json:"registrationNumber"`
	IsAdmin            bool               `json:"isAdmin"`
	CreatedAt          time.Time          `json:"createdAt"`
	Reviews            reviewPageResponse `json:"reviews"`
}

// GetProfile は呼び出し元のユーザー情報と投稿レビューを返す。
// GET /api/profile?cursor=xxx&limit=20
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), caller, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	u := profile.User
	writeJSON(w, http.StatusOK, map[string]any{"user": profileResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		RegistrationNumber: u.RegistrationNumber,
		IsAdmin:            u.IsAdmin,
		CreatedAt:          u.CreatedAt,
		Reviews:            toReviewPageResponse(profile.Reviews),
	}})
}
