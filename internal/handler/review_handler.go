package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/review"
)

// ReviewServiceInterface はレビューハンドラーが必要とするサービスインターフェース。
type ReviewServiceInterface interface {
	Create(ctx context.Context, caller *model.Caller, roomID string, rating int, body string) (*model.Review, error)
	ListByRoom(ctx context.Context, roomID, cursor string, limit int) (*review.Page, error)
}

// ReviewHandler はレビューのHTTPハンドラー。
type ReviewHandler struct {
	service  ReviewServiceInterface
	validate *validator.Validate
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: newValidator(),
	}
}

// reviewRequest はレビュー投稿リクエストのボディ。
type reviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"required,max=8000"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review"`
	CreatedAt  time.Time `json:"createdAt"`
}

type reviewPageResponse struct {
	Reviews    []reviewResponse `json:"reviews"`
	NextCursor string           `json:"nextCursor,omitempty"`
	HasMore    bool             `json:"hasMore"`
}

// CreateReview は部屋にレビューを投稿する。
// POST /api/rooms/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	rv, err := h.service.Create(r.Context(), caller, chi.URLParam(r, "id"), req.Rating, req.Review)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": toReviewResponse(rv)})
}

// ListReviews は部屋のレビューを新しい順に返す。
// GET /api/rooms/{id}/reviews?cursor=xxx&limit=20
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	page, err := h.service.ListByRoom(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewPageResponse(page))
}

func toReviewResponse(rv *model.Review) reviewResponse {
	return reviewResponse{
		ID:         rv.ID,
		RoomID:     rv.RoomID,
		AuthorName: rv.AuthorName,
		Rating:     rv.Rating,
		Review:     rv.Body,
		CreatedAt:  rv.CreatedAt,
	}
}

func toReviewPageResponse(page *review.Page) reviewPageResponse {
	resp := reviewPageResponse{
		Reviews:    make([]reviewResponse, len(page.Reviews)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for i, rv := range page.Reviews {
		resp.Reviews[i] = toReviewResponse(rv)
	}
	return resp
}
