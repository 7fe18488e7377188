// Package user はユーザープロフィールのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"

	"github.com/hitoshi/roomfinder/internal/model"
	"github.com/hitoshi/roomfinder/internal/repository"
	"github.com/hitoshi/roomfinder/internal/review"
)

// ReviewLister はユーザーの投稿レビューを取得するインターフェース。
type ReviewLister interface {
	ListByUser(ctx context.Context, userID, cursor string, limit int) (*review.Page, error)
}

// Profile はユーザーレコードと投稿レビューを結合したドメインオブジェクト。
type Profile struct {
	User    *model.User
	Reviews *review.Page
}

// Service はユーザープロフィールのサービス層。
type Service struct {
	userRepo repository.UserRepository
	reviews  ReviewLister
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, reviews ReviewLister) *Service {
	return &Service{
		userRepo: userRepo,
		reviews:  reviews,
	}
}

// GetProfile は呼び出し元のユーザーレコードと直近のレビューを返す。
// トークン発行後にレコードが消えている場合はUSER_NOT_FOUNDを返す。
func (s *Service) GetProfile(ctx context.Context, caller *model.Caller, cursor string, limit int) (*Profile, error) {
	if !caller.IsRegistered() {
		return nil, model.NewRegistrationRequiredError()
	}

	u, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil || u.Email != caller.Email {
		return nil, model.NewUserNotFoundError()
	}

	page, err := s.reviews.ListByUser(ctx, u.ID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Reviews: page}, nil
}
