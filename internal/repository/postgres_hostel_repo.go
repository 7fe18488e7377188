package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/lib/pq"
)

// PostgresHostelRepo はPostgreSQLを使用した寮リポジトリ。
type PostgresHostelRepo struct {
	db *sql.DB
}

// NewPostgresHostelRepo はPostgresHostelRepoを生成する。
func NewPostgresHostelRepo(db *sql.DB) *PostgresHostelRepo {
	return &PostgresHostelRepo{db: db}
}

const hostelColumns = `id, name, gender, description, room_types, amenities, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHostel(row rowScanner) (*model.Hostel, error) {
	h := &model.Hostel{}
	err := row.Scan(
		&h.ID, &h.Name, &h.Gender, &h.Description,
		pq.Array(&h.RoomTypes), pq.Array(&h.Amenities),
		&h.ImageURL, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// List は全寮を名前順で返す。
func (r *PostgresHostelRepo) List(ctx context.Context) ([]*model.Hostel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hostelColumns+` FROM hostels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("寮一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var hostels []*model.Hostel
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			return nil, fmt.Errorf("寮行の読み取りに失敗しました: %w", err)
		}
		hostels = append(hostels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("寮一覧の走査に失敗しました: %w", err)
	}
	return hostels, nil
}

// FindByID は指定IDの寮を取得する。見つからない場合はnilを返す。
func (r *PostgresHostelRepo) FindByID(ctx context.Context, id string) (*model.Hostel, error) {
	h, err := scanHostel(r.db.QueryRowContext(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("寮の取得に失敗しました: %w", err)
	}
	return h, nil
}

// FindByName は寮名の完全一致で寮を取得する。見つからない場合はnilを返す。
func (r *PostgresHostelRepo) FindByName(ctx context.Context, name string) (*model.Hostel, error) {
	h, err := scanHostel(r.db.QueryRowContext(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE name = $1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("寮の取得に失敗しました: %w", err)
	}
	return h, nil
}

// Create は寮を作成する。
func (r *PostgresHostelRepo) Create(ctx context.Context, h *model.Hostel) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hostels (id, name, gender, description, room_types, amenities, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		h.ID, h.Name, h.Gender, h.Description,
		pq.Array(nonNil(h.RoomTypes)), pq.Array(nonNil(h.Amenities)),
		h.ImageURL, h.CreatedAt, h.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("hostel %s: %w", h.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("寮の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は寮情報を上書き更新する。
func (r *PostgresHostelRepo) Update(ctx context.Context, h *model.Hostel) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hostels SET
		    name = $2, gender = $3, description = $4, room_types = $5,
		    amenities = $6, image_url = $7, updated_at = $8
		 WHERE id = $1`,
		h.ID, h.Name, h.Gender, h.Description,
		pq.Array(nonNil(h.RoomTypes)), pq.Array(nonNil(h.Amenities)),
		h.ImageURL, h.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("hostel %s: %w", h.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("寮の更新に失敗しました: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("hostel %s: %w", h.ID, ErrNotFound)
	}
	return nil
}
