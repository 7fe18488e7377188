package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/lib/pq"
)

// PostgresRoomRepo はPostgreSQLを使用した部屋リポジトリ。
type PostgresRoomRepo struct {
	db *sql.DB
}

// NewPostgresRoomRepo はPostgresRoomRepoを生成する。
func NewPostgresRoomRepo(db *sql.DB) *PostgresRoomRepo {
	return &PostgresRoomRepo{db: db}
}

// FindByID は指定IDの部屋を取得する。見つからない場合はnilを返す。
func (r *PostgresRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	room := &model.Room{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, hostel_id, room_type, price, amenities, created_at, updated_at
		 FROM rooms WHERE id = $1`,
		id,
	).Scan(&room.ID, &room.HostelID, &room.RoomType, &room.Price,
		pq.Array(&room.Amenities), &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("部屋の取得に失敗しました: %w", err)
	}
	return room, nil
}

// ListWithRatings は部屋一覧を平均評価とレビュー数付きで返す。
// レビューが0件の部屋は平均0、件数0として返す。
func (r *PostgresRoomRepo) ListWithRatings(ctx context.Context, filter RoomFilter) ([]model.RoomWithRating, error) {
	baseQuery := `
		SELECT r.id, r.hostel_id, r.room_type, r.price, r.amenities,
		       r.created_at, r.updated_at, h.name,
		       COALESCE(AVG(v.rating), 0)::float8 AS average_rating,
		       COUNT(v.id) AS review_count
		FROM rooms r
		JOIN hostels h ON h.id = r.hostel_id
		LEFT JOIN reviews v ON v.room_id = r.id
		WHERE 1 = 1`

	var args []any
	argIndex := 1

	if filter.HostelID != "" {
		baseQuery += fmt.Sprintf(" AND r.hostel_id = $%d", argIndex)
		args = append(args, filter.HostelID)
		argIndex++
	}
	if filter.RoomType != "" {
		baseQuery += fmt.Sprintf(" AND r.room_type = $%d", argIndex)
		args = append(args, filter.RoomType)
	}

	baseQuery += " GROUP BY r.id, h.name ORDER BY h.name, r.room_type"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("部屋一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var rooms []model.RoomWithRating
	for rows.Next() {
		var rw model.RoomWithRating
		if err := rows.Scan(
			&rw.ID, &rw.HostelID, &rw.RoomType, &rw.Price, pq.Array(&rw.Amenities),
			&rw.CreatedAt, &rw.UpdatedAt, &rw.HostelName,
			&rw.AverageRating, &rw.ReviewCount,
		); err != nil {
			return nil, fmt.Errorf("部屋行の読み取りに失敗しました: %w", err)
		}
		rooms = append(rooms, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("部屋一覧の走査に失敗しました: %w", err)
	}
	return rooms, nil
}

// Create は部屋を作成する。
// 寮が削除済みの場合（外部キー違反）はErrNotFoundをラップして返す。
func (r *PostgresRoomRepo) Create(ctx context.Context, room *model.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, hostel_id, room_type, price, amenities, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.ID, room.HostelID, room.RoomType, room.Price,
		pq.Array(nonNil(room.Amenities)), room.CreatedAt, room.UpdatedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("room %s/%s: %w", room.HostelID, room.RoomType, ErrDuplicate)
	case isForeignKeyViolation(err):
		return fmt.Errorf("hostel %s: %w", room.HostelID, ErrNotFound)
	case err != nil:
		return fmt.Errorf("部屋の作成に失敗しました: %w", err)
	}
	return nil
}
