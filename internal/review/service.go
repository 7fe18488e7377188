// Package review は部屋レビューの投稿と閲覧のドメインロジックを提供する。
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/roomfinder/internal/metrics"
	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
)

const (
	// DefaultPageSize はlimit未指定時の1ページあたりの件数。
	DefaultPageSize = 20
	// MaxPageSize は1ページあたりの最大件数。
	MaxPageSize = 100
	// MaxBodyLength はレビュー本文の最大文字数（サニタイズ後）。
	MaxBodyLength = 2000
)

// TextSanitizer はレビュー本文のサニタイズインターフェース。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// Page はカーソルページネーションの結果。
type Page struct {
	Reviews    []*model.Review
	NextCursor string
	HasMore    bool
}

// Service はレビューのサービス層。
type Service struct {
	reviewRepo repository.ReviewRepository
	roomRepo   repository.RoomRepository
	userRepo   repository.UserRepository
	sanitizer  TextSanitizer
	collector  metrics.MetricsCollector
	pageSize   int
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// pageSizeが0以下の場合はDefaultPageSizeを使用する。
func NewService(
	reviewRepo repository.ReviewRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	sanitizer TextSanitizer,
	collector metrics.MetricsCollector,
	pageSize int,
) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Service{
		reviewRepo: reviewRepo,
		roomRepo:   roomRepo,
		userRepo:   userRepo,
		sanitizer:  sanitizer,
		collector:  collector,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// Create は呼び出し元のレビューを投稿する。
// 投稿者名はトークンではなくユーザーレコードから取得する。
func (s *Service) Create(ctx context.Context, caller *model.Caller, roomID string, rating int, body string) (*model.Review, error) {
	if !caller.IsRegistered() {
		return nil, model.NewRegistrationRequiredError()
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, model.NewValidationError(fmt.Sprintf("rating must be between %d and %d", model.MinRating, model.MaxRating))
	}

	text := s.sanitizer.SanitizeText(body)
	if text == "" {
		return nil, model.NewValidationError("review text is required")
	}
	if utf8.RuneCountInString(text) > MaxBodyLength {
		return nil, model.NewValidationError(fmt.Sprintf("review text must be at most %d characters", MaxBodyLength))
	}

	if _, err := uuid.Parse(roomID); err != nil {
		return nil, model.NewRoomNotFoundError(roomID)
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("部屋の取得に失敗しました: %w", err)
	}
	if room == nil {
		return nil, model.NewRoomNotFoundError(roomID)
	}

	author, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError()
	}

	rv := &model.Review{
		ID:         uuid.New().String(),
		RoomID:     room.ID,
		UserID:     author.ID,
		AuthorName: author.Name,
		Rating:     rating,
		Body:       text,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewRoomNotFoundError(roomID)
		}
		return nil, fmt.Errorf("レビューの投稿に失敗しました: %w", err)
	}

	s.collector.RecordReviewCreated(rating)
	slog.Info("review created",
		slog.String("review_id", rv.ID),
		slog.String("room_id", rv.RoomID),
		slog.String("user_id", rv.UserID),
		slog.Int("rating", rating),
	)
	return rv, nil
}

// ListByRoom は部屋のレビューを新しい順に返す。
func (s *Service) ListByRoom(ctx context.Context, roomID, cursor string, limit int) (*Page, error) {
	if _, err := uuid.Parse(roomID); err != nil {
		return nil, model.NewRoomNotFoundError(roomID)
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("部屋の取得に失敗しました: %w", err)
	}
	if room == nil {
		return nil, model.NewRoomNotFoundError(roomID)
	}
	return s.page(cursor, limit, func(after time.Time, n int) ([]*model.Review, error) {
		return s.reviewRepo.ListByRoom(ctx, roomID, after, n)
	})
}

// ListByUser はユーザーが投稿したレビューを新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID, cursor string, limit int) (*Page, error) {
	return s.page(cursor, limit, func(after time.Time, n int) ([]*model.Review, error) {
		return s.reviewRepo.ListByUser(ctx, userID, after, n)
	})
}

// page はlimit+1件を取得して次ページの有無を判定する。
func (s *Service) page(cursor string, limit int, fetch func(after time.Time, n int) ([]*model.Review, error)) (*Page, error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, model.NewInvalidCursorError(cursor)
	}

	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	reviews, err := fetch(after, limit+1)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}

	p := &Page{Reviews: reviews}
	if p.Reviews == nil {
		p.Reviews = []*model.Review{}
	}
	if len(p.Reviews) > limit {
		p.Reviews = p.Reviews[:limit]
		p.HasMore = true
		p.NextCursor = EncodeCursor(p.Reviews[limit-1].CreatedAt)
	}
	return p, nil
}

// EncodeCursor はレビューの投稿日時をカーソル文字列に変換する。
func EncodeCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeCursor はカーソル文字列を投稿日時に変換する。空文字列はゼロ値を返す。
func DecodeCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cursor %q: %w", cursor, err)
	}
	return t, nil
}
