package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/roomfinder/internal/hostel"
	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
)

// --- モック定義 ---

type mockHostelService struct {
	listHostelsFn       func(ctx context.Context) ([]*model.Hostel, error)
	getHostelFn         func(ctx context.Context, id string) (*model.Hostel, error)
	findHostelByNameFn  func(ctx context.Context, name string) (*model.Hostel, error)
	createHostelFn      func(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error)
	updateHostelFn      func(ctx context.Context, id string, input hostel.HostelInput) (*model.Hostel, error)
	listRoomsFn         func(ctx context.Context, filter repository.RoomFilter) ([]model.RoomWithRating, error)
	listRoomsByHostelFn func(ctx context.Context, hostelID string) ([]model.RoomWithRating, error)
	createRoomFn        func(ctx context.Context, hostelID string, input hostel.RoomInput) (*model.Room, error)
}

func (m *mockHostelService) ListHostels(ctx context.Context) ([]*model.Hostel, error) {
	return m.listHostelsFn(ctx)
}
func (m *mockHostelService) GetHostel(ctx context.Context, id string) (*model.Hostel, error) {
	return m.getHostelFn(ctx, id)
}
func (m *mockHostelService) FindHostelByName(ctx context.Context, name string) (*model.Hostel, error) {
	return m.findHostelByNameFn(ctx, name)
}
func (m *mockHostelService) CreateHostel(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error) {
	return m.createHostelFn(ctx, input)
}
func (m *mockHostelService) UpdateHostel(ctx context.Context, id string, input hostel.HostelInput) (*model.Hostel, error) {
	return m.updateHostelFn(ctx, id, input)
}
func (m *mockHostelService) ListRooms(ctx context.Context, filter repository.RoomFilter) ([]model.RoomWithRating, error) {
	return m.listRoomsFn(ctx, filter)
}
func (m *mockHostelService) ListRoomsByHostel(ctx context.Context, hostelID string) ([]model.RoomWithRating, error) {
	return m.listRoomsByHostelFn(ctx, hostelID)
}
func (m *mockHostelService) CreateRoom(ctx context.Context, hostelID string, input hostel.RoomInput) (*model.Room, error) {
	return m.createRoomFn(ctx, hostelID, input)
}

var _ HostelServiceInterface = (*hostel.Service)(nil)

// withURLParam はchiのURLパラメータをリクエストに設定する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHostelHandler_ListHostels_ReturnsWrappedList(t *testing.T) {
	svc := &mockHostelService{
		listHostelsFn: func(ctx context.Context) ([]*model.Hostel, error) {
			return []*model.Hostel{{ID: "h-1", Name: "A Block"}}, nil
		},
	}
	h := NewHostelHandler(svc)

	w := httptest.NewRecorder()
	h.ListHostels(w, httptest.NewRequest(http.MethodGet, "/api/hostels", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Hostels []hostelResponse `json:"hostels"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Hostels) != 1 || body.Hostels[0].Name != "A Block" {
		t.Errorf("hostels = %+v", body.Hostels)
	}
	if body.Hostels[0].RoomTypes == nil || body.Hostels[0].Amenities == nil {
		t.Error("list fields should be encoded as empty arrays")
	}
}

func TestHostelHandler_GetHostel_NotFound(t *testing.T) {
	svc := &mockHostelService{
		getHostelFn: func(ctx context.Context, id string) (*model.Hostel, error) {
			return nil, model.NewHostelNotFoundError(id)
		},
	}
	h := NewHostelHandler(svc)

	w := httptest.NewRecorder()
	h.GetHostel(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/hostels/x", nil), "id", "x"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeHostelNotFound {
		t.Errorf("code = %q", body.Code)
	}
}

func TestHostelHandler_FindHostelByName_PassesQuery(t *testing.T) {
	var gotName string
	svc := &mockHostelService{
		findHostelByNameFn: func(ctx context.Context, name string) (*model.Hostel, error) {
			gotName = name
			return &model.Hostel{ID: "h-1", Name: name}, nil
		},
	}
	h := NewHostelHandler(svc)

	w := httptest.NewRecorder()
	h.FindHostelByName(w, httptest.NewRequest(http.MethodGet, "/api/hostel?name=A+Block", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotName != "A Block" {
		t.Errorf("name = %q, want %q", gotName, "A Block")
	}
}

func TestHostelHandler_CreateHostel(t *testing.T) {
	var gotInput hostel.HostelInput
	svc := &mockHostelService{
		createHostelFn: func(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error) {
			gotInput = input
			return &model.Hostel{ID: "h-new", Name: input.Name, RoomTypes: input.RoomTypes}, nil
		},
	}
	h := NewHostelHandler(svc)

	body := `{"name":"C Block","gender":"female","description":"<p>new</p>","roomTypes":["2-bed AC"],"amenities":["gym"],"imageUrl":"https://cdn.example.com/c.jpg"}`
	w := httptest.NewRecorder()
	h.CreateHostel(w, httptest.NewRequest(http.MethodPost, "/api/admin/hostels", strings.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotInput.Name != "C Block" || gotInput.ImageURL != "https://cdn.example.com/c.jpg" || len(gotInput.RoomTypes) != 1 {
		t.Errorf("input = %+v", gotInput)
	}
}

func TestHostelHandler_CreateHostel_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"gender":"male"}`},
		{"unknown gender", `{"name":"C Block","gender":"robot"}`},
		{"not a url", `{"name":"C Block","imageUrl":"not a url"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockHostelService{
				createHostelFn: func(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error) {
					t.Error("service must not be called")
					return nil, nil
				},
			}
			h := NewHostelHandler(svc)

			w := httptest.NewRecorder()
			h.CreateHostel(w, httptest.NewRequest(http.MethodPost, "/api/admin/hostels", strings.NewReader(tt.body)))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if body := decodeAPIError(t, w); body.Code != model.ErrCodeValidationFailed {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeValidationFailed)
			}
		})
	}
}

func TestHostelHandler_CreateHostel_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unsafe image", model.NewInvalidImageURLError("blocked IP address"), http.StatusBadRequest},
		{"duplicate", model.NewDuplicateHostelError("C Block"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockHostelService{
				createHostelFn: func(ctx context.Context, input hostel.HostelInput) (*model.Hostel, error) {
					return nil, tt.err
				},
			}
			h := NewHostelHandler(svc)

			w := httptest.NewRecorder()
			h.CreateHostel(w, httptest.NewRequest(http.MethodPost, "/api/admin/hostels", strings.NewReader(`{"name":"C Block"}`)))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHostelHandler_UpdateHostel_UsesPathID(t *testing.T) {
	var gotID string
	svc := &mockHostelService{
		updateHostelFn: func(ctx context.Context, id string, input hostel.HostelInput) (*model.Hostel, error) {
			gotID = id
			return &model.Hostel{ID: id, Name: input.Name}, nil
		},
	}
	h := NewHostelHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/hostels/h-1", strings.NewReader(`{"name":"A Block"}`))
	w := httptest.NewRecorder()
	h.UpdateHostel(w, withURLParam(req, "id", "h-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotID != "h-1" {
		t.Errorf("id = %q, want %q", gotID, "h-1")
	}
}

func TestHostelHandler_ListRooms_FilterAndRatings(t *testing.T) {
	var gotFilter repository.RoomFilter
	svc := &mockHostelService{
		listRoomsFn: func(ctx context.Context, filter repository.RoomFilter) ([]model.RoomWithRating, error) {
			gotFilter = filter
			return []model.RoomWithRating{{
				Room:          model.Room{ID: "r-1", HostelID: "h-1", RoomType: "2-bed AC", Price: 90000},
				HostelName:    "A Block",
				AverageRating: 4.25,
				ReviewCount:   4,
			}}, nil
		},
	}
	h := NewHostelHandler(svc)

	w := httptest.NewRecorder()
	h.ListRooms(w, httptest.NewRequest(http.MethodGet, "/api/rooms?hostelId=h-1&roomType=2-bed+AC", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFilter.HostelID != "h-1" || gotFilter.RoomType != "2-bed AC" {
		t.Errorf("filter = %+v", gotFilter)
	}
	var body struct {
		Rooms []roomResponse `json:"rooms"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rooms) != 1 || body.Rooms[0].AverageRating != 4.25 || body.Rooms[0].ReviewCount != 4 {
		t.Errorf("rooms = %+v", body.Rooms)
	}
}

func TestHostelHandler_CreateRoom(t *testing.T) {
	svc := &mockHostelService{
		createRoomFn: func(ctx context.Context, hostelID string, input hostel.RoomInput) (*model.Room, error) {
			if hostelID != "h-1" || input.RoomType != "4-bed" || input.Price != 70000 {
				t.Errorf("CreateRoom(%q, %+v)", hostelID, input)
			}
			return &model.Room{ID: "r-9", HostelID: hostelID, RoomType: input.RoomType, Price: input.Price}, nil
		},
	}
	h := NewHostelHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/hostels/h-1/rooms", strings.NewReader(`{"roomType":"4-bed","price":70000}`))
	w := httptest.NewRecorder()
	h.CreateRoom(w, withURLParam(req, "id", "h-1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestHostelHandler_CreateRoom_NegativePrice(t *testing.T) {
	h := NewHostelHandler(&mockHostelService{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/hostels/h-1/rooms", strings.NewReader(`{"roomType":"4-bed","price":-5}`))
	w := httptest.NewRecorder()
	h.CreateRoom(w, withURLParam(req, "id", "h-1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
