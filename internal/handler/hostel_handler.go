package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/roomfinder/internal/hostel"
	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
)

// HostelServiceInterface は寮・部屋ハンドラーが必要とするサービスインターフェース。
type HostelServiceInterface interface {
	ListHostels(ctx context.Context) ([]*model.Hostel, error)
	GetHostel(ctx context.Context, id string) (*model.Hostel, error)
	FindHostelByName(ctx context.Context, name string) (*model.Hostel, error)
	CreateHostel(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error)
	UpdateHostel(ctx context.Context, id string, input hostel.HostelInput) (*model.Hostel, error)
	ListRooms(ctx context.Context, filter repository.RoomFilter) ([]model.RoomWithRating, error)
	ListRoomsByHostel(ctx context.Context, hostelID string) ([]model.RoomWithRating, error)
	CreateRoom(ctx context.Context, hostelID string, input hostel.RoomInput) (*model.Room, error)
}

// HostelHandler は寮と部屋のHTTPハンドラー。
type HostelHandler struct {
	service  HostelServiceInterface
	validate *validator.Validate
}

// NewHostelHandler はHostelHandlerを生成する。
func NewHostelHandler(service HostelServiceInterface) *HostelHandler {
	return &HostelHandler{
		service:  service,
		validate: newValidator(),
	}
}

// hostelRequest は寮の作成・更新リクエストのボディ。
type hostelRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Gender      string   `json:"gender" validate:"omitempty,oneof=male female mixed"`
	Description string   `json:"description" validate:"max=5000"`
	RoomTypes   []string `json:"roomTypes" validate:"max=50,dive,max=50"`
	Amenities   []string `json:"amenities" validate:"max=50,dive,max=100"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

// roomRequest は部屋の作成リクエストのボディ。
type roomRequest struct {
	RoomType  string   `json:"roomType" validate:"required,max=50"`
	Price     int      `json:"price" validate:"gte=0"`
	Amenities []string `json:"amenities" validate:"max=50,dive,max=100"`
}

type hostelResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender"`
	Description string    `json:"description"`
	RoomTypes   []string  `json:"roomTypes"`
	Amenities   []string  `json:"amenities"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type roomResponse struct {
	ID            string   `json:"id"`
	HostelID      string   `json:"hostelId"`
	HostelName    string   `json:"hostelName,omitempty"`
	RoomType      string   `json:"roomType"`
	Price         int      `json:"price"`
	Amenities     []string `json:"amenities"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}

// ListHostels は寮一覧を返す。
// GET /api/hostels
func (h *HostelHandler) ListHostels(w http.ResponseWriter, r *http.Request) {
	hostels, err := h.service.ListHostels(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]hostelResponse, len(hostels))
	for i, hs := range hostels {
		resp[i] = toHostelResponse(hs)
	}
	writeJSON(w, http.StatusOK, map[string]any{"hostels": resp})
}

// GetHostel は寮の詳細を返す。
// GET /api/hostels/{id}
func (h *HostelHandler) GetHostel(w http.ResponseWriter, r *http.Request) {
	hs, err := h.service.GetHostel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hostel": toHostelResponse(hs)})
}

// FindHostelByName は寮名で寮を検索する。
// GET /api/hostel?name=xxx
func (h *HostelHandler) FindHostelByName(w http.ResponseWriter, r *http.Request) {
	hs, err := h.service.FindHostelByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hostel": toHostelResponse(hs)})
}

// CreateHostel は寮を登録する。
// POST /api/admin/hostels
func (h *HostelHandler) CreateHostel(w http.ResponseWriter, r *http.Request) {
	var req hostelRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	hs, err := h.service.CreateHostel(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"hostel": toHostelResponse(hs)})
}

// UpdateHostel は寮情報を更新する。
// PUT /api/admin/hostels/{id}
func (h *HostelHandler) UpdateHostel(w http.ResponseWriter, r *http.Request) {
	var req hostelRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	hs, err := h.service.UpdateHostel(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hostel": toHostelResponse(hs)})
}

// ListHostelRooms は寮の部屋一覧を平均評価付きで返す。
// GET /api/hostels/{id}/rooms
func (h *HostelHandler) ListHostelRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRoomsByHostel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": toRoomResponses(rooms)})
}

// ListRooms は寮IDと部屋タイプで絞り込んだ部屋一覧を返す。
// GET /api/rooms?hostelId=xxx&roomType=yyy
func (h *HostelHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rooms, err := h.service.ListRooms(r.Context(), repository.RoomFilter{
		HostelID: query.Get("hostelId"),
		RoomType: query.Get("roomType"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": toRoomResponses(rooms)})
}

// CreateRoom は寮に部屋タイプを追加する。
// POST /api/admin/hostels/{id}/rooms
func (h *HostelHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	room, err := h.service.CreateRoom(r.Context(), chi.URLParam(r, "id"), hostel.RoomInput{
		RoomType:  req.RoomType,
		Price:     req.Price,
		Amenities: req.Amenities,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"room": toRoomResponse(model.RoomWithRating{Room: *room})})
}

func (req hostelRequest) toInput() hostel.HostelInput {
	return hostel.HostelInput{
		Name:        req.Name,
		Gender:      req.Gender,
		Description: req.Description,
		RoomTypes:   req.RoomTypes,
		Amenities:   req.Amenities,
		ImageURL:    req.ImageURL,
	}
}

func toHostelResponse(h *model.Hostel) hostelResponse {
	return hostelResponse{
		ID:          h.ID,
		Name:        h.Name,
		Gender:      h.Gender,
		Description: h.Description,
		RoomTypes:   nonNilStrings(h.RoomTypes),
		Amenities:   nonNilStrings(h.Amenities),
		ImageURL:    h.ImageURL,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func toRoomResponse(r model.RoomWithRating) roomResponse {
	return roomResponse{
		ID:            r.ID,
		HostelID:      r.HostelID,
		HostelName:    r.HostelName,
		RoomType:      r.RoomType,
		Price:         r.Price,
		Amenities:     nonNilStrings(r.Amenities),
		AverageRating: r.AverageRating,
		ReviewCount:   r.ReviewCount,
	}
}

func toRoomResponses(rooms []model.RoomWithRating) []roomResponse {
	resp := make([]roomResponse, len(rooms))
	for i, r := range rooms {
		resp[i] = toRoomResponse(r)
	}
	return resp
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
