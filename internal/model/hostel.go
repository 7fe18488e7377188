package model

import "time"

// Hostel は寮（ブロック）を表す。
type Hostel struct {
	ID          string
	Name        string
	Gender      string
	Description string // サニタイズ済み
	RoomTypes   []string
	Amenities   []string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room は寮ごとの部屋タイプを表す。
// (hostel_id, room_type) の組で一意となる。
type Room struct {
	ID        string
	HostelID  string
	RoomType  string
	Price     int
	Amenities []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomWithRating は部屋と全レビューから集計した評価を結合したモデル。
type RoomWithRating struct {
	Room
	HostelName    string
	AverageRating float64
	ReviewCount   int
}
