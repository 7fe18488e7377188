package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/roomfinder/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// Create はレビューを作成する。
// 部屋またはユーザーが存在しない場合（外部キー違反）はErrNotFoundをラップして返す。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, room_id, user_id, author_name, rating, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID, review.RoomID, review.UserID, review.AuthorName,
		review.Rating, review.Body, review.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("review for room %s: %w", review.RoomID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByRoom は部屋のレビューをcreated_at降順のカーソルページネーションで返す。
func (r *PostgresReviewRepo) ListByRoom(ctx context.Context, roomID string, cursor time.Time, limit int) ([]*model.Review, error) {
	return r.list(ctx, "room_id", roomID, cursor, limit)
}

// ListByUser はユーザーのレビューをcreated_at降順のカーソルページネーションで返す。
func (r *PostgresReviewRepo) ListByUser(ctx context.Context, userID string, cursor time.Time, limit int) ([]*model.Review, error) {
	return r.list(ctx, "user_id", userID, cursor, limit)
}

// list はkeyColumn（room_idまたはuser_id）で絞り込んだレビュー一覧を返す。
// keyColumnは呼び出し側の定数のみを受け付ける。
func (r *PostgresReviewRepo) list(ctx context.Context, keyColumn, key string, cursor time.Time, limit int) ([]*model.Review, error) {
	baseQuery := fmt.Sprintf(`
		SELECT id, room_id, user_id, author_name, rating, body, created_at
		FROM reviews
		WHERE %s = $1`, keyColumn)

	args := []any{key}
	argIndex := 2

	if !cursor.IsZero() {
		baseQuery += fmt.Sprintf(" AND created_at < $%d", argIndex)
		args = append(args, cursor)
		argIndex++
	}

	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		rv := &model.Review{}
		if err := rows.Scan(&rv.ID, &rv.RoomID, &rv.UserID, &rv.AuthorName, &rv.Rating, &rv.Body, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("レビュー行の読み取りに失敗しました: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レビュー一覧の走査に失敗しました: %w", err)
	}
	return reviews, nil
}
