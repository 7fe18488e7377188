// Package hostel は寮と部屋の管理に関するドメインロジックを提供する。
package hostel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
)

// URLValidator は管理者が入力した画像URLの静的検証インターフェース。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// DescriptionSanitizer は寮の説明文のサニタイズインターフェース。
type DescriptionSanitizer interface {
	SanitizeDescription(rawHTML string) string
	SanitizeText(raw string) string
}

// HostelInput は寮の作成・更新の入力値。
type HostelInput struct {
	Name        string
	Gender      string
	Description string
	RoomTypes   []string
	Amenities   []string
	ImageURL    string
}

// RoomInput は部屋の作成の入力値。
type RoomInput struct {
	RoomType  string
	Price     int
	Amenities []string
}

// Service は寮と部屋のサービス層。
type Service struct {
	hostelRepo repository.HostelRepository
	roomRepo   repository.RoomRepository
	urlGuard   URLValidator
	sanitizer  DescriptionSanitizer
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	hostelRepo repository.HostelRepository,
	roomRepo repository.RoomRepository,
	urlGuard URLValidator,
	sanitizer DescriptionSanitizer,
) *Service {
	return &Service{
		hostelRepo: hostelRepo,
		roomRepo:   roomRepo,
		urlGuard:   urlGuard,
		sanitizer:  sanitizer,
		now:        time.Now,
	}
}

// ListHostels は全寮を返す。
func (s *Service) ListHostels(ctx context.Context) ([]*model.Hostel, error) {
	hostels, err := s.hostelRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("寮一覧の取得に失敗しました: %w", err)
	}
	return hostels, nil
}

// GetHostel はIDで寮を取得する。
func (s *Service) GetHostel(ctx context.Context, id string) (*model.Hostel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewHostelNotFoundError(id)
	}
	h, err := s.hostelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("寮の取得に失敗しました: %w", err)
	}
	if h == nil {
		return nil, model.NewHostelNotFoundError(id)
	}
	return h, nil
}

// FindHostelByName は寮名の完全一致で寮を取得する。
func (s *Service) FindHostelByName(ctx context.Context, name string) (*model.Hostel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	h, err := s.hostelRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("寮の取得に失敗しました: %w", err)
	}
	if h == nil {
		return nil, model.NewHostelNotFoundError(name)
	}
	return h, nil
}

// CreateHostel は寮を登録する。
// 画像URLはhttpsかつ内部アドレスを指さないものに限り、説明文はサニタイズして保存する。
func (s *Service) CreateHostel(ctx context.Context, input HostelInput) (*model.Hostel, error) {
	now := s.now()
	h := &model.Hostel{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(h, input); err != nil {
		return nil, err
	}

	if err := s.hostelRepo.Create(ctx, h); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateHostelError(h.Name)
		}
		return nil, fmt.Errorf("寮の登録に失敗しました: %w", err)
	}

	slog.Info("hostel created",
		slog.String("hostel_id", h.ID),
		slog.String("name", h.Name),
	)
	return h, nil
}

// UpdateHostel は寮情報を上書き更新する。
func (s *Service) UpdateHostel(ctx context.Context, id string, input HostelInput) (*model.Hostel, error) {
	h, err := s.GetHostel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(h, input); err != nil {
		return nil, err
	}
	h.UpdatedAt = s.now()

	if err := s.hostelRepo.Update(ctx, h); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateHostelError(h.Name)
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewHostelNotFoundError(id)
		}
		return nil, fmt.Errorf("寮の更新に失敗しました: %w", err)
	}
	return h, nil
}

// apply は入力値を検証・正規化して寮に反映する。
func (s *Service) apply(h *model.Hostel, input HostelInput) error {
	name := s.sanitizer.SanitizeText(input.Name)
	if name == "" {
		return model.NewValidationError("name is required")
	}

	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL != "" {
		if err := s.urlGuard.ValidateURL(imageURL); err != nil {
			return model.NewInvalidImageURLError(err.Error())
		}
	}

	h.Name = name
	h.Gender = strings.TrimSpace(input.Gender)
	h.Description = s.sanitizer.SanitizeDescription(input.Description)
	h.RoomTypes = normalizeList(input.RoomTypes)
	h.Amenities = normalizeList(input.Amenities)
	h.ImageURL = imageURL
	return nil
}

// ListRooms は条件に一致する部屋を平均評価付きで返す。
func (s *Service) ListRooms(ctx context.Context, filter repository.RoomFilter) ([]model.RoomWithRating, error) {
	if filter.HostelID != "" {
		if _, err := uuid.Parse(filter.HostelID); err != nil {
			return []model.RoomWithRating{}, nil
		}
	}
	rooms, err := s.roomRepo.ListWithRatings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("部屋一覧の取得に失敗しました: %w", err)
	}
	return rooms, nil
}

// ListRoomsByHostel は寮に属する部屋を平均評価付きで返す。
// 寮が存在しない場合はHOSTEL_NOT_FOUNDを返す。
func (s *Service) ListRoomsByHostel(ctx context.Context, hostelID string) ([]model.RoomWithRating, error) {
	if _, err := s.GetHostel(ctx, hostelID); err != nil {
		return nil, err
	}
	return s.ListRooms(ctx, repository.RoomFilter{HostelID: hostelID})
}

// CreateRoom は寮に部屋タイプを追加する。
// 寮の部屋タイプ一覧に未登録であれば追記する。
func (s *Service) CreateRoom(ctx context.Context, hostelID string, input RoomInput) (*model.Room, error) {
	h, err := s.GetHostel(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	roomType := strings.TrimSpace(input.RoomType)
	if roomType == "" {
		return nil, model.NewValidationError("roomType is required")
	}
	if input.Price < 0 {
		return nil, model.NewValidationError("price must not be negative")
	}

	now := s.now()
	room := &model.Room{
		ID:        uuid.New().String(),
		HostelID:  h.ID,
		RoomType:  roomType,
		Price:     input.Price,
		Amenities: normalizeList(input.Amenities),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateRoomError(roomType)
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewHostelNotFoundError(hostelID)
		}
		return nil, fmt.Errorf("部屋の登録に失敗しました: %w", err)
	}

	if !slices.Contains(h.RoomTypes, roomType) {
		h.RoomTypes = append(h.RoomTypes, roomType)
		h.UpdatedAt = now
		if err := s.hostelRepo.Update(ctx, h); err != nil {
			// 部屋自体は登録済みのため、一覧の追記失敗はログのみ
			slog.Warn("failed to append room type to hostel",
				slog.String("hostel_id", h.ID),
				slog.String("room_type", roomType),
				slog.String("error", err.Error()),
			)
		}
	}

	return room, nil
}

// normalizeList は前後の空白を除去し、空要素と重複を取り除く。
func normalizeList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(result, v) {
			continue
		}
		result = append(result, v)
	}
	return result
}
