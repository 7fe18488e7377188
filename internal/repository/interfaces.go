// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/roomfinder/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDとタイムスタンプをuserに書き戻す。
	// 同じメールアドレスが既に存在する場合はErrDuplicateをラップして返す。
	Create(ctx context.Context, user *model.User) error
}

// HostelRepository は寮データの永続化インターフェース。
type HostelRepository interface {
	// List は全寮を名前順で返す。
	List(ctx context.Context) ([]*model.Hostel, error)

	// FindByID は指定IDの寮を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Hostel, error)

	// FindByName は寮名の完全一致で寮を取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Hostel, error)

	// Create は寮を作成する。同名の寮が存在する場合はErrDuplicateをラップして返す。
	Create(ctx context.Context, hostel *model.Hostel) error

	// Update は寮情報を更新する。対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, hostel *model.Hostel) error
}

// RoomFilter は部屋一覧の絞り込み条件。空文字列の項目は条件に含めない。
type RoomFilter struct {
	HostelID string
	RoomType string
}

// RoomRepository は部屋データの永続化インターフェース。
type RoomRepository interface {
	// FindByID は指定IDの部屋を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Room, error)

	// ListWithRatings は部屋一覧を平均評価とレビュー数付きで返す。
	// 集計は全レビューを対象にSQLで行う。
	ListWithRatings(ctx context.Context, filter RoomFilter) ([]model.RoomWithRating, error)

	// Create は部屋を作成する。同じ寮に同じ部屋タイプが存在する場合はErrDuplicateをラップして返す。
	Create(ctx context.Context, room *model.Room) error
}

// ReviewRepository はレビューデータの永続化インターフェース。
type ReviewRepository interface {
	// Create はレビューを作成する。
	Create(ctx context.Context, review *model.Review) error

	// ListByRoom は部屋のレビューをcreated_at降順で返す。
	// cursorがゼロ値の場合は先頭から取得する。
	ListByRoom(ctx context.Context, roomID string, cursor time.Time, limit int) ([]*model.Review, error)

	// ListByUser はユーザーが投稿したレビューをcreated_at降順で返す。
	ListByUser(ctx context.Context, userID string, cursor time.Time, limit int) ([]*model.Review, error)
}
